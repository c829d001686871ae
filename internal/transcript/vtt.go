package transcript

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// rollingCueMax is the longest cue treated as a scroll transition. Auto
// captions emit ~10ms cues that only repeat the line being scrolled up.
const rollingCueMax = 50 * time.Millisecond

var (
	vttHeaderRE = regexp.MustCompile(`(?m)^(WEBVTT.*|Kind:.*|Language:.*)$`)
	vttRangeRE  = regexp.MustCompile(`((?:\d{2}:)?\d{2}:\d{2}\.\d{3}) --> ((?:\d{2}:)?\d{2}:\d{2}\.\d{3})`)
	vttTagRE    = regexp.MustCompile(`<[^>]*>`)
	spacesRE    = regexp.MustCompile(`[ \t]+`)

	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&#39;", "'",
		"&quot;", `"`,
		"&nbsp;", " ",
	)
)

type cue struct {
	lines    []string
	duration time.Duration
	timed    bool
}

// carriesOver reports whether the first line of the cue is the previous
// cue's line scrolled up rather than new speech.
func (c cue) carriesOver() bool {
	return len(c.lines) > 1 || (c.timed && c.duration < rollingCueMax)
}

// CleanVTT turns a WebVTT (or tag-based TTML) subtitle document into plain
// text: header, cue timings and markup are removed and all line breaks fold
// into single spaces. A line that auto-captions carry over from the previous
// cue while scrolling is kept once; separate cues with the same text are not
// merged.
func CleanVTT(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = vttHeaderRE.ReplaceAllString(s, "")
	s = vttTagRE.ReplaceAllString(s, "")
	s = entityReplacer.Replace(s)

	var out []string
	for _, c := range splitCues(s) {
		lines := c.lines
		if len(lines) == 0 {
			continue
		}
		if n := len(out); n > 0 && lines[0] == out[n-1] && c.carriesOver() {
			lines = lines[1:]
		}
		out = append(out, lines...)
	}
	return strings.Join(out, " ")
}

// splitCues groups cleaned text lines by the timing line that opens each cue.
// Text before the first timing line forms an untimed cue.
func splitCues(s string) []cue {
	var cues []cue
	current := cue{}
	for _, line := range strings.Split(s, "\n") {
		if m := vttRangeRE.FindStringSubmatch(line); m != nil {
			cues = append(cues, current)
			current = cue{}
			start, okStart := parseVTTTime(m[1])
			end, okEnd := parseVTTTime(m[2])
			if okStart && okEnd {
				current.timed = true
				current.duration = end - start
			}
			continue
		}

		line = strings.TrimSpace(spacesRE.ReplaceAllString(line, " "))
		if line != "" {
			current.lines = append(current.lines, line)
		}
	}
	return append(cues, current)
}

// parseVTTTime parses HH:MM:SS.mmm or MM:SS.mmm
func parseVTTTime(s string) (time.Duration, bool) {
	parts := strings.Split(s, ":")
	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return 0, false
	}

	minutes := 0
	for _, p := range parts[:len(parts)-1] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, false
		}
		minutes = minutes*60 + n
	}
	return time.Duration(minutes)*time.Minute + time.Duration(math.Round(secs*1000))*time.Millisecond, true
}

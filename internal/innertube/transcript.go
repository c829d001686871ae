package innertube

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrMissingSegments is returned when a transcript response lacks any level
// between the transcript panel and its initial segments.
var ErrMissingSegments = errors.New("innertube: transcript response has no segments")

var transcriptParamsRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

// TranscriptInfo is the decoded /get_transcript result
type TranscriptInfo struct {
	Transcript *Transcript
}

// Transcript is the transcript panel
type Transcript struct {
	Content *Content
}

// Content wraps the search panel body
type Content struct {
	Body *Body
}

// Body holds the segment list
type Body struct {
	InitialSegments []Segment
}

// Segment is one transcript line. Section headers carry no snippet.
type Segment struct {
	StartMs string
	EndMs   string
	Snippet *Snippet
}

// Snippet is the text of a segment
type Snippet struct {
	Text string
}

// Segments walks the transcript structure and returns the initial segments.
func (t *TranscriptInfo) Segments() ([]Segment, error) {
	if t == nil || t.Transcript == nil {
		return nil, ErrMissingSegments
	}
	if t.Transcript.Content == nil {
		return nil, ErrMissingSegments
	}
	if t.Transcript.Content.Body == nil {
		return nil, ErrMissingSegments
	}
	if len(t.Transcript.Content.Body.InitialSegments) == 0 {
		return nil, ErrMissingSegments
	}
	return t.Transcript.Content.Body.InitialSegments, nil
}

// Text joins the snippet texts of all segments with single spaces
func (t *TranscriptInfo) Text() (string, error) {
	segments, err := t.Segments()
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Snippet == nil {
			continue
		}
		if text := strings.TrimSpace(seg.Snippet.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

func extractTranscriptParams(data []byte) (string, error) {
	m := transcriptParamsRE.FindSubmatch(data)
	if len(m) < 2 {
		return "", ErrTranscriptEndpointMissing
	}
	// /next returns the params URL-encoded; /get_transcript wants them raw
	decoded, err := url.QueryUnescape(string(m[1]))
	if err != nil {
		return string(m[1]), nil
	}
	return decoded, nil
}

// toTranscriptInfo maps the first transcript panel in the response onto the
// public structure, leaving absent levels nil.
func (r getTranscriptResponse) toTranscriptInfo() *TranscriptInfo {
	info := &TranscriptInfo{}
	for _, action := range r.Actions {
		panel := action.UpdateEngagementPanelAction
		if panel == nil || panel.Content == nil || panel.Content.TranscriptRenderer == nil {
			continue
		}
		info.Transcript = panel.Content.TranscriptRenderer.toTranscript()
		break
	}
	return info
}

func (r *rawTranscriptRenderer) toTranscript() *Transcript {
	t := &Transcript{}
	if r.Content == nil || r.Content.TranscriptSearchPanelRenderer == nil {
		return t
	}
	search := r.Content.TranscriptSearchPanelRenderer
	t.Content = &Content{}
	if search.Body == nil || search.Body.TranscriptSegmentListRenderer == nil {
		return t
	}

	raw := search.Body.TranscriptSegmentListRenderer.InitialSegments
	body := &Body{InitialSegments: make([]Segment, 0, len(raw))}
	for _, rs := range raw {
		renderer := rs.TranscriptSegmentRenderer
		if renderer == nil {
			body.InitialSegments = append(body.InitialSegments, Segment{})
			continue
		}
		seg := Segment{StartMs: renderer.StartMs, EndMs: renderer.EndMs}
		if renderer.Snippet != nil {
			var sb strings.Builder
			for _, run := range renderer.Snippet.Runs {
				sb.WriteString(run.Text)
			}
			seg.Snippet = &Snippet{Text: sb.String()}
		}
		body.InitialSegments = append(body.InitialSegments, seg)
	}
	t.Content.Body = body
	return t
}

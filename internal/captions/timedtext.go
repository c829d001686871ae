package captions

import (
	"encoding/xml"
	"fmt"
	"html"
	"strconv"
	"strings"
)

// timedTextDoc covers both timed-text layouts YouTube serves: the legacy
// <transcript><text start dur> form and the srv3 <timedtext><body><p t d> form.
type timedTextDoc struct {
	XMLName xml.Name
	Lines   []timedTextLine `xml:"text"`
	Body    *struct {
		Paragraphs []srv3Paragraph `xml:"p"`
	} `xml:"body"`
}

type timedTextLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

type srv3Paragraph struct {
	T        int64  `xml:"t,attr"`
	D        int64  `xml:"d,attr"`
	Text     string `xml:",chardata"`
	Segments []struct {
		Text string `xml:",chardata"`
	} `xml:"s"`
}

// ParseTimedText decodes a timed-text document into caption items. Cues whose
// text is empty after unescaping are dropped.
func ParseTimedText(data []byte) ([]Item, error) {
	var doc timedTextDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	var items []Item
	for _, line := range doc.Lines {
		text := cleanCueText(line.Text)
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(line.Start, 64)
		dur, _ := strconv.ParseFloat(line.Dur, 64)
		items = append(items, Item{Text: text, Start: start, Duration: dur})
	}

	if doc.Body != nil {
		for _, p := range doc.Body.Paragraphs {
			raw := p.Text
			if len(p.Segments) > 0 {
				var sb strings.Builder
				for _, s := range p.Segments {
					sb.WriteString(s.Text)
				}
				raw = sb.String()
			}
			text := cleanCueText(raw)
			if text == "" {
				continue
			}
			items = append(items, Item{
				Text:     text,
				Start:    float64(p.T) / 1000,
				Duration: float64(p.D) / 1000,
			})
		}
	}

	return items, nil
}

// cleanCueText undoes the second level of HTML escaping YouTube applies to cue
// text and folds line breaks inside a cue.
func cleanCueText(s string) string {
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

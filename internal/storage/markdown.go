package storage

import (
	"bytes"
	"fmt"
	"time"

	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

// RenderMarkdown renders a note as a standalone markdown document. The
// summary is already markdown and is embedded as is.
func RenderMarkdown(note *models.Note) []byte {
	var b bytes.Buffer

	title := note.VideoTitle
	if title == "" {
		title = models.UnknownVideoTitle
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Video: %s\n", note.VideoURL)
	if !note.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "- Created: %s\n", note.CreatedAt.UTC().Format(time.RFC3339))
	}
	b.WriteString("\n---\n\n")
	b.WriteString(note.Summary)
	if len(note.Summary) > 0 && note.Summary[len(note.Summary)-1] != '\n' {
		b.WriteByte('\n')
	}

	return b.Bytes()
}

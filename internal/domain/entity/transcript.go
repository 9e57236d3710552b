package entity

import (
	"fmt"
	"strings"
	"time"
)

// AttachmentRef points at a file posted in a workspace
type AttachmentRef struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// TranscriptEntry is one message of a workspace history
type TranscriptEntry struct {
	Timestamp   time.Time       `json:"timestamp"`
	AuthorID    string          `json:"author_id"`
	AuthorName  string          `json:"author_name"`
	Body        string          `json:"body"`
	Attachments []AttachmentRef `json:"attachments,omitempty"`
}

// Transcript is the flattened history of a workspace, oldest first
type Transcript struct {
	ChannelName string            `json:"channel_name"`
	Entries     []TranscriptEntry `json:"entries"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Render produces the plain-text artifact
func (t *Transcript) Render() string {
	if len(t.Entries) == 0 {
		return EmptyTranscriptMarker
	}

	lines := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		ts := e.Timestamp.UTC().Format("2006-01-02 15:04:05") + " UTC"
		body := strings.ReplaceAll(e.Body, "\n", "\n    ")
		lines = append(lines, fmt.Sprintf("[%s] %s [%s]:\n    %s", ts, e.AuthorName, e.AuthorID, body))
		for _, a := range e.Attachments {
			lines = append(lines, fmt.Sprintf("    [attachment] %s -> %s", a.Filename, a.URL))
		}
	}
	return strings.Join(lines, "\n")
}

// FileName returns the artifact file name
func (t *Transcript) FileName() string {
	return fmt.Sprintf("transcript_%s_%d.txt", t.ChannelName, t.GeneratedAt.Unix())
}

package extraction

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Document is the text recognized from a single receipt image
type Document struct {
	// Raw is the text exactly as it was received
	Raw string
	// Text is Raw folded to NFKC with line endings normalized; resolvers match against it
	Text string
	// Lines holds the trimmed, non-empty lines of Text in reading order
	Lines []string
}

// NewDocument splits raw recognized text into its ordered, non-empty lines
func NewDocument(raw string) *Document {
	text := norm.NFKC.String(raw)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := make([]string, 0, strings.Count(text, "\n")+1)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	return &Document{
		Raw:   raw,
		Text:  text,
		Lines: lines,
	}
}

// Header returns the first headerLines lines, or all of them for short documents
func (d *Document) Header() []string {
	if len(d.Lines) < headerLines {
		return d.Lines
	}
	return d.Lines[:headerLines]
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

package scanning

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrEmptyImage is returned when there are no bytes to recognize
	ErrEmptyImage = errors.New("empty image")
	// ErrUnsupportedFormat is returned for uploads that cannot be decoded as an image or PDF
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrClosed is returned by a recognizer used after Close
	ErrClosed = errors.New("recognizer closed")
)

// Recognizer turns an image into the text lines printed on it
type Recognizer interface {
	// Recognize returns the recognized lines in top-to-bottom reading order
	Recognize(ctx context.Context, imageData []byte, contentType string) ([]string, error)
	// Name identifies the engine
	Name() string
	// Close releases the engine's resources
	Close() error
}

// splitLines splits engine output into lines, dropping blank ones
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

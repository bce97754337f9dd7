package commands

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/zombor/receipt-ocr/internal/scanning"
)

// readReceiptText returns the text of a receipt file. Text files are read as-is;
// anything else goes through the recognition engine.
func readReceiptText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return string(data), nil
	}

	if recognizer == nil {
		recognizer, err = scanning.NewEngine(engineCfg)
		if err != nil {
			return "", err
		}
	}

	lines, err := recognizer.Recognize(ctx, data, contentTypeOf(path, data))
	if err != nil {
		return "", fmt.Errorf("recognizing %s: %w", filepath.Base(path), err)
	}
	return strings.Join(lines, "\n"), nil
}

// contentTypeOf guesses a MIME type from the extension, then the content
func contentTypeOf(path string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// isReceiptFile reports whether batch mode should pick up path
func isReceiptFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".png", ".jpg", ".jpeg", ".heic", ".heif", ".pdf", ".tif", ".tiff", ".bmp", ".gif", ".webp":
		return true
	}
	return false
}

package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// TesseractConfig configures the local Tesseract engine
type TesseractConfig struct {
	// Language is the traineddata language, "eng" when empty
	Language string
	// TessdataPrefix overrides the directory traineddata is loaded from
	TessdataPrefix string
}

// Tesseract implements the Recognizer interface with a local libtesseract client
type Tesseract struct {
	// The underlying client is not safe for concurrent use.
	mu     sync.Mutex
	client *gosseract.Client
	lang   string
}

// NewTesseract creates the engine; loading traineddata makes this expensive, so build it once
func NewTesseract(cfg TesseractConfig) (*Tesseract, error) {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}

	client := gosseract.NewClient()
	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("setting tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(cfg.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting page segmentation mode: %w", err)
	}

	return &Tesseract{
		client: client,
		lang:   cfg.Language,
	}, nil
}

// Recognize preprocesses the image and runs Tesseract over it
func (t *Tesseract) Recognize(ctx context.Context, imageData []byte, contentType string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := decodeImage(imageData, contentType)
	if err != nil {
		return nil, err
	}

	pngData, err := encodePNG(preprocess(img))
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	start := time.Now()
	if err := t.client.SetImageFromBytes(pngData); err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}

	lines := splitLines(text)
	slog.Debug("Tesseract recognition finished",
		"lines", len(lines),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return lines, nil
}

// Name identifies the engine
func (t *Tesseract) Name() string {
	return "tesseract"
}

// Close releases the Tesseract client
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}

package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/zombor/receipt-ocr/internal/extraction"
	"github.com/zombor/receipt-ocr/internal/scanning"
)

// IDGenerator generates request IDs for log correlation
type IDGenerator interface {
	Generate() string
}

// uuidGenerator generates random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// Service turns receipt images or text into structured results
type Service struct {
	recognizer  scanning.Recognizer
	extractor   *extraction.Extractor
	idGenerator IDGenerator
}

// NewService creates a new Service with a default extractor and ID generator
func NewService(recognizer scanning.Recognizer) *Service {
	return &Service{
		recognizer:  recognizer,
		extractor:   extraction.New(),
		idGenerator: &uuidGenerator{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(recognizer scanning.Recognizer, extractor *extraction.Extractor, idGen IDGenerator) *Service {
	return &Service{
		recognizer:  recognizer,
		extractor:   extractor,
		idGenerator: idGen,
	}
}

// EngineName reports the name of the configured recognition engine
func (s *Service) EngineName() string {
	return s.recognizer.Name()
}

// Scan recognizes the text on a receipt image and extracts its fields
func (s *Service) Scan(ctx context.Context, filename string, data []byte, contentType string) (*extraction.Result, error) {
	id := s.idGenerator.Generate()

	lines, err := s.recognizer.Recognize(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to recognize receipt",
			"request_id", id,
			"filename", filename,
			"content_type", contentType,
			"size_bytes", len(data),
			"error", err)
		return nil, fmt.Errorf("recognizing %s: %w", filename, err)
	}

	result := s.extractor.Extract(strings.Join(lines, "\n"))
	slog.Info("Receipt scanned",
		"request_id", id,
		"filename", filename,
		"engine", s.recognizer.Name(),
		"lines", len(lines),
		"confidence", result.Confidence.String())

	return result, nil
}

// ExtractText extracts fields from text that has already been recognized
func (s *Service) ExtractText(raw string) *extraction.Result {
	result := s.extractor.Extract(raw)
	slog.Debug("Text extracted",
		"request_id", s.idGenerator.Generate(),
		"confidence", result.Confidence.String())
	return result
}

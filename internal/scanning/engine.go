package scanning

import (
	"errors"
	"fmt"
)

// Supported recognition engines
const (
	EngineTesseract = "tesseract"
	EngineGemini    = "gemini"
	EngineOllama    = "ollama"
)

// ErrUnknownEngine is returned for engine names other than the supported ones
var ErrUnknownEngine = errors.New("unknown recognition engine")

// EngineConfig selects and configures a recognition engine
type EngineConfig struct {
	Engine string

	Language       string
	TessdataPrefix string

	GeminiKey   string
	GeminiModel string

	OllamaURL   string
	OllamaModel string

	// CachePath enables the BoltDB recognition cache when set
	CachePath string
}

// NewEngine validates cfg and returns a lazily constructed engine, wrapped in a
// recognition cache when cfg.CachePath is set.
func NewEngine(cfg EngineConfig) (Recognizer, error) {
	var construct func() (Recognizer, error)
	switch cfg.Engine {
	case EngineTesseract:
		construct = func() (Recognizer, error) {
			return NewTesseract(TesseractConfig{
				Language:       cfg.Language,
				TessdataPrefix: cfg.TessdataPrefix,
			})
		}
	case EngineGemini:
		if cfg.GeminiKey == "" {
			return nil, errors.New("gemini engine requires an API key")
		}
		construct = func() (Recognizer, error) {
			return NewGemini(cfg.GeminiKey, cfg.GeminiModel)
		}
	case EngineOllama:
		construct = func() (Recognizer, error) {
			return NewOllama(cfg.OllamaURL, cfg.OllamaModel)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}

	var rec Recognizer = NewLazy(cfg.Engine, construct)
	if cfg.CachePath == "" {
		return rec, nil
	}

	cached, err := NewCached(rec, cfg.CachePath)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

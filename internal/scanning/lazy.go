package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Lazy defers construction of an expensive Recognizer until its first use. The
// constructor runs exactly once; a construction error is returned to every caller.
type Lazy struct {
	name      string
	construct func() (Recognizer, error)

	once   sync.Once
	rec    Recognizer
	err    error
	closed atomic.Bool
}

// NewLazy wraps construct so the engine is built on first use and shared afterwards
func NewLazy(name string, construct func() (Recognizer, error)) *Lazy {
	return &Lazy{
		name:      name,
		construct: construct,
	}
}

func (l *Lazy) get() (Recognizer, error) {
	l.once.Do(func() {
		start := time.Now()
		slog.Info("Initializing recognition engine", "engine", l.name)
		l.rec, l.err = l.construct()
		if l.err != nil {
			l.rec = nil
			l.err = fmt.Errorf("initializing %s engine: %w", l.name, l.err)
			slog.Error("Failed to initialize recognition engine", "engine", l.name, "error", l.err)
			return
		}
		slog.Info("Recognition engine ready", "engine", l.name, "duration_ms", time.Since(start).Milliseconds())
	})
	return l.rec, l.err
}

// Recognize builds the engine if needed and delegates to it
func (l *Lazy) Recognize(ctx context.Context, imageData []byte, contentType string) ([]string, error) {
	if l.closed.Load() {
		return nil, ErrClosed
	}
	rec, err := l.get()
	if err != nil {
		return nil, err
	}
	return rec.Recognize(ctx, imageData, contentType)
}

// Name identifies the wrapped engine without constructing it
func (l *Lazy) Name() string {
	return l.name
}

// Close releases the engine if it was ever built; later calls to Recognize fail with ErrClosed
func (l *Lazy) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	l.once.Do(func() {
		l.err = ErrClosed
	})
	if l.rec == nil {
		return nil
	}
	return l.rec.Close()
}

package scanning

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
)

const recognitionBucketName = "recognitions"

// Cached remembers recognized lines by image content so identical uploads skip the engine.
// Only engine output is stored; extraction always runs fresh.
type Cached struct {
	next Recognizer
	db   *bbolt.DB
}

// NewCached opens (or creates) the BoltDB cache at path in front of next
func NewCached(next Recognizer, path string) (*Cached, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(recognitionBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Cached{next: next, db: db}, nil
}

// Recognize returns cached lines for previously seen images
func (c *Cached) Recognize(ctx context.Context, imageData []byte, contentType string) ([]string, error) {
	key := contentKey(c.next.Name(), imageData)

	lines, ok, err := c.lookup(key)
	if err != nil {
		slog.Warn("Failed to read recognition cache", "key", key, "error", err)
	}
	if ok {
		slog.Debug("Recognition cache hit", "key", key, "lines", len(lines))
		return lines, nil
	}

	lines, err = c.next.Recognize(ctx, imageData, contentType)
	if err != nil {
		return nil, err
	}

	if err := c.store(key, lines); err != nil {
		slog.Warn("Failed to write recognition cache", "key", key, "error", err)
	}
	return lines, nil
}

func (c *Cached) lookup(key string) ([]string, bool, error) {
	var lines []string
	var ok bool
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(recognitionBucketName)).Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("unmarshaling lines: %w", err)
		}
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return lines, ok, nil
}

func (c *Cached) store(key string, lines []string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(lines)
		if err != nil {
			return fmt.Errorf("marshaling lines: %w", err)
		}
		return tx.Bucket([]byte(recognitionBucketName)).Put([]byte(key), data)
	})
}

// Name identifies the wrapped engine
func (c *Cached) Name() string {
	return c.next.Name()
}

// Close closes the cache and the wrapped engine
func (c *Cached) Close() error {
	dbErr := c.db.Close()
	if err := c.next.Close(); err != nil {
		return err
	}
	if dbErr != nil {
		return fmt.Errorf("closing boltdb: %w", dbErr)
	}
	return nil
}

// contentKey scopes the hex SHA-256 of the image bytes to the engine that read them
func contentKey(engine string, data []byte) string {
	sum := sha256.Sum256(data)
	return engine + ":" + hex.EncodeToString(sum[:])
}

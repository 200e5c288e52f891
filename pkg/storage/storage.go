// Package storage persists research reports and syntheses keyed by an opaque
// research ID. Backends are swappable and invisible to the orchestrator: a
// local JSON-file store and a Badger document store are provided.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Kind namespaces stored documents.
type Kind string

const (
	KindReport    Kind = "research"
	KindSynthesis Kind = "synthesis"
)

// ErrInvalidID is returned when an ID contains path traversal or other
// characters unsafe for use as a storage key.
var ErrInvalidID = errors.New("invalid storage id: contains path traversal or invalid characters")

// Store persists JSON-serializable documents by kind and ID.
type Store interface {
	// Save persists data under (kind, id), overwriting any previous value.
	Save(ctx context.Context, kind Kind, id string, data any) error
	// Get loads the document at (kind, id) into out, reporting whether it
	// exists.
	Get(ctx context.Context, kind Kind, id string, out any) (bool, error)
	// Close releases backend resources.
	Close() error
}

// Backend names for Config.Type.
const (
	BackendLocal  = "local"
	BackendBadger = "badger"
)

// Config selects and configures a storage backend.
type Config struct {
	// Type is "local" (default) or "badger".
	Type string `mapstructure:"type"`
	// Path is the data directory. Empty with the badger backend means
	// in-memory, which is what tests use.
	Path string `mapstructure:"path"`
}

// New creates the configured storage backend.
func New(cfg Config) (Store, error) {
	switch cfg.Type {
	case BackendLocal, "":
		return NewLocalStore(cfg.Path)
	case BackendBadger:
		return NewBadgerStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s (supported: local, badger)", cfg.Type)
	}
}

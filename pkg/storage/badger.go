package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore persists documents in an embedded Badger key/value database.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at path. An empty path
// opens an in-memory database.
func NewBadgerStore(path string) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerKey(kind Kind, id string) ([]byte, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("%s/%s", kind, id)), nil
}

// Save implements Store.
func (s *BadgerStore) Save(ctx context.Context, kind Kind, id string, data any) error {
	key, err := badgerKey(kind, id)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, encoded)
	})
}

// Get implements Store.
func (s *BadgerStore) Get(ctx context.Context, kind Kind, id string, out any) (bool, error) {
	key, err := badgerKey(kind, id)
	if err != nil {
		return false, err
	}

	var encoded []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		encoded, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read document: %w", err)
	}

	if err := json.Unmarshal(encoded, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return true, nil
}

// Close implements Store.
func (s *BadgerStore) Close() error { return s.db.Close() }

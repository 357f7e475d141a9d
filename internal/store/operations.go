package store

import (
	"context"
	"encoding/json/v2"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

// Key prefix for the append-only operation log.
const operationPrefix = "operation:" // operation:{id} → OperationLogEntry JSON

// AppendOperation persists an audit record. Entries are never mutated
// after creation.
func (s *Store) AppendOperation(ctx context.Context, entry *domain.OperationLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(operationPrefix+entry.ID), entry)
}

// ListOperations returns all operation log entries newest-first.
func (s *Store) ListOperations(ctx context.Context) ([]*domain.OperationLogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(operationPrefix)
	var entries []*domain.OperationLogEntry

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry domain.OperationLogEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// PruneOperations deletes all but the retain most recent log entries.
func (s *Store) PruneOperations(ctx context.Context, retain int) error {
	if retain < 0 {
		retain = 0
	}

	entries, err := s.ListOperations(ctx)
	if err != nil {
		return err
	}
	if len(entries) <= retain {
		return nil
	}

	for _, entry := range entries[retain:] {
		if err := s.delete([]byte(operationPrefix + entry.ID)); err != nil {
			return err
		}
	}
	return nil
}

package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

// Key prefix for snapshot storage.
const snapshotPrefix = "snapshot:" // snapshot:{id} → Snapshot JSON

// PutSnapshot persists a snapshot. The write must complete before the
// caller proceeds to any destructive mutation.
func (s *Store) PutSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(snapshotPrefix+snap.ID), snap)
}

// GetSnapshot retrieves a snapshot by id, including its captured tree.
func (s *Store) GetSnapshot(ctx context.Context, snapshotID string) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snap domain.Snapshot
	err := s.get([]byte(snapshotPrefix+snapshotID), &snap)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListSnapshots returns all snapshots newest-first. The captured trees
// are omitted from the listing; use GetSnapshot for the full record.
func (s *Store) ListSnapshots(ctx context.Context) ([]*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(snapshotPrefix)
	var snapshots []*domain.Snapshot

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var snap domain.Snapshot
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &snap)
			})
			if err != nil {
				continue
			}
			snap.Tree = nil
			snapshots = append(snapshots, &snap)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})
	return snapshots, nil
}

// DeleteSnapshot removes a snapshot. Deleting a missing id is a no-op.
func (s *Store) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.delete([]byte(snapshotPrefix + snapshotID))
}

// PruneSnapshots deletes all but the retain most recent snapshots.
// Safe to call any time; a no-op at or under the limit.
func (s *Store) PruneSnapshots(ctx context.Context, retain int) error {
	if retain < 0 {
		retain = 0
	}

	snapshots, err := s.ListSnapshots(ctx)
	if err != nil {
		return err
	}
	if len(snapshots) <= retain {
		return nil
	}

	for _, snap := range snapshots[retain:] {
		if err := s.DeleteSnapshot(ctx, snap.ID); err != nil {
			return err
		}
		if s.logger != nil {
			s.logger.Info("pruned snapshot", "snapshot_id", snap.ID, "created_at", snap.CreatedAt)
		}
	}
	return nil
}

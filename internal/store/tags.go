package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

// Key prefixes for tag storage. Names are already normalized by the
// service layer before they reach the store.
const (
	tagPrefix       = "tag:"           // tag:{id} → Tag JSON
	tagByNamePrefix = "idx:tags:name:" // idx:tags:name:{name} → tagID
)

// CreateTag creates a new tag. The normalized name must be unique.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		nameKey := []byte(tagByNamePrefix + t.Name)
		if _, err := txn.Get(nameKey); err == nil {
			return ErrTagExists
		}

		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(tagPrefix+t.ID), data); err != nil {
			return err
		}
		return txn.Set(nameKey, []byte(t.ID))
	})
}

// GetTag retrieves a tag by id.
func (s *Store) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	err := s.get([]byte(tagPrefix+tagID), &t)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTagByName retrieves a tag by its normalized name.
func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tagID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tagByNamePrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTagNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			tagID = string(val)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetTag(ctx, tagID)
}

// UpdateTag persists an updated bookmark-id set.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := s.exists([]byte(tagPrefix + t.ID))
	if err != nil {
		return err
	}
	if !exists {
		return ErrTagNotFound
	}
	return s.set([]byte(tagPrefix+t.ID), t)
}

// DeleteTag removes a tag and its name index unconditionally.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t, err := s.GetTag(ctx, tagID)
	if errors.Is(err, ErrTagNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(tagPrefix + tagID)); err != nil {
			return err
		}
		err := txn.Delete([]byte(tagByNamePrefix + t.Name))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// ListTags returns all tags ordered newest-created-first.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(tagPrefix)
	var tags []*domain.Tag

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchSize = 100

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var t domain.Tag
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			})
			if err != nil {
				continue
			}
			tags = append(tags, &t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tags, func(i, j int) bool {
		if !tags[i].CreatedAt.Equal(tags[j].CreatedAt) {
			return tags[i].CreatedAt.After(tags[j].CreatedAt)
		}
		return tags[i].Name < tags[j].Name
	})
	return tags, nil
}

// TagsForBookmark returns all tags whose set contains the bookmark,
// ordered newest-created-first.
func (s *Store) TagsForBookmark(ctx context.Context, bookmarkID string) ([]*domain.Tag, error) {
	tags, err := s.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Tag, 0, len(tags))
	for _, t := range tags {
		if t.Has(bookmarkID) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/markwiseapp/markwise-server/internal/domain"
	apperrors "github.com/markwiseapp/markwise-server/internal/errors"
	"github.com/markwiseapp/markwise-server/internal/id"
	"github.com/markwiseapp/markwise-server/internal/store"
)

// TagService manages free-form tags over bookmark ids. Tag names are
// normalized before storage so "Reading", "reading" and " READING "
// are the same tag.
type TagService struct {
	tags   TagStore
	logger *slog.Logger

	folder cases.Caser
}

// NewTagService creates the tag manager.
func NewTagService(tags TagStore, logger *slog.Logger) *TagService {
	return &TagService{
		tags:   tags,
		logger: logger,
		folder: cases.Fold(),
	}
}

// NormalizeName canonicalizes a tag name: case-folded, trimmed, inner
// whitespace collapsed to single spaces.
func (s *TagService) NormalizeName(name string) string {
	folded := s.folder.String(name)
	return strings.Join(strings.Fields(folded), " ")
}

// AddTags attaches the named tags to a bookmark, creating tags that do
// not exist yet. Names that normalize to empty are skipped. Returns the
// affected tags.
func (s *TagService) AddTags(ctx context.Context, bookmarkID string, names []string) ([]*domain.Tag, error) {
	affected := make([]*domain.Tag, 0, len(names))
	for _, raw := range names {
		name := s.NormalizeName(raw)
		if name == "" {
			continue
		}

		tag, err := s.tags.GetTagByName(ctx, name)
		switch {
		case apperrors.Is(err, store.ErrTagNotFound):
			tag = &domain.Tag{
				ID:        id.MustGenerate("tag"),
				Name:      name,
				CreatedAt: time.Now().UTC(),
			}
			tag.Add(bookmarkID)
			if err := s.tags.CreateTag(ctx, tag); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			if tag.Add(bookmarkID) {
				if err := s.tags.UpdateTag(ctx, tag); err != nil {
					return nil, err
				}
			}
		}
		affected = append(affected, tag)
	}
	return affected, nil
}

// RemoveTag detaches one named tag from a bookmark. A tag left with an
// empty bookmark set is deleted. Unknown names are a no-op.
func (s *TagService) RemoveTag(ctx context.Context, bookmarkID, name string) error {
	tag, err := s.tags.GetTagByName(ctx, s.NormalizeName(name))
	if apperrors.Is(err, store.ErrTagNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if !tag.Remove(bookmarkID) {
		return nil
	}
	if tag.Empty() {
		return s.tags.DeleteTag(ctx, tag.ID)
	}
	return s.tags.UpdateTag(ctx, tag)
}

// Detach removes a bookmark from a tag addressed by id, with the same
// auto-delete rule as RemoveTag.
func (s *TagService) Detach(ctx context.Context, tagID, bookmarkID string) error {
	tag, err := s.tags.GetTag(ctx, tagID)
	if apperrors.Is(err, store.ErrTagNotFound) {
		return apperrors.NotFoundf("tag %s not found", tagID)
	}
	if err != nil {
		return err
	}

	if !tag.Remove(bookmarkID) {
		return nil
	}
	if tag.Empty() {
		return s.tags.DeleteTag(ctx, tag.ID)
	}
	return s.tags.UpdateTag(ctx, tag)
}

// RemoveBookmark strips a deleted bookmark out of every tag, deleting
// tags that end up empty.
func (s *TagService) RemoveBookmark(ctx context.Context, bookmarkID string) error {
	tags, err := s.tags.TagsForBookmark(ctx, bookmarkID)
	if err != nil {
		return err
	}
	for _, tag := range tags {
		if !tag.Remove(bookmarkID) {
			continue
		}
		if tag.Empty() {
			if err := s.tags.DeleteTag(ctx, tag.ID); err != nil {
				return err
			}
			continue
		}
		if err := s.tags.UpdateTag(ctx, tag); err != nil {
			return err
		}
	}
	return nil
}

// List returns all tags newest-created-first.
func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	return s.tags.ListTags(ctx)
}

// TagsFor returns the tags attached to a bookmark.
func (s *TagService) TagsFor(ctx context.Context, bookmarkID string) ([]*domain.Tag, error) {
	return s.tags.TagsForBookmark(ctx, bookmarkID)
}

// Delete removes a tag by id regardless of its bookmark set.
func (s *TagService) Delete(ctx context.Context, tagID string) error {
	return s.tags.DeleteTag(ctx, tagID)
}

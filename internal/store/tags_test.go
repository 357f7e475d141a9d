package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

func TestCreateAndGetTag(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	tag := &domain.Tag{
		ID:          "tag-1",
		Name:        "reading",
		BookmarkIDs: []string{"node-a"},
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.CreateTag(ctx, tag))

	byID, err := s.GetTag(ctx, "tag-1")
	require.NoError(t, err)
	assert.Equal(t, "reading", byID.Name)
	assert.True(t, byID.Has("node-a"))

	byName, err := s.GetTagByName(ctx, "reading")
	require.NoError(t, err)
	assert.Equal(t, "tag-1", byName.ID)
}

func TestCreateTag_DuplicateNameRejected(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateTag(ctx, &domain.Tag{ID: "tag-1", Name: "reading", CreatedAt: time.Now().UTC()}))

	err := s.CreateTag(ctx, &domain.Tag{ID: "tag-2", Name: "reading", CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, ErrTagExists)
}

func TestGetTag_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetTag(context.Background(), "tag-missing")
	assert.ErrorIs(t, err, ErrTagNotFound)

	_, err = s.GetTagByName(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestUpdateTag(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	tag := &domain.Tag{ID: "tag-1", Name: "reading", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateTag(ctx, tag))

	tag.Add("node-a")
	tag.Add("node-b")
	require.NoError(t, s.UpdateTag(ctx, tag))

	got, err := s.GetTag(ctx, "tag-1")
	require.NoError(t, err)
	assert.True(t, got.Has("node-a"))
	assert.True(t, got.Has("node-b"))
}

func TestUpdateTag_MissingRejected(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := s.UpdateTag(context.Background(), &domain.Tag{ID: "tag-missing", Name: "x"})
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestDeleteTag(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.CreateTag(ctx, &domain.Tag{ID: "tag-1", Name: "reading", CreatedAt: time.Now().UTC()}))

	require.NoError(t, s.DeleteTag(ctx, "tag-1"))

	_, err := s.GetTag(ctx, "tag-1")
	assert.ErrorIs(t, err, ErrTagNotFound)

	// Name index must be freed for reuse.
	require.NoError(t, s.CreateTag(ctx, &domain.Tag{ID: "tag-2", Name: "reading", CreatedAt: time.Now().UTC()}))

	// Deleting a missing tag is a no-op.
	assert.NoError(t, s.DeleteTag(ctx, "tag-missing"))
}

func TestListTags_NewestFirst(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now().UTC()
	require.NoError(t, s.CreateTag(ctx, &domain.Tag{ID: "tag-old", Name: "archive", CreatedAt: base.Add(-time.Hour)}))
	require.NoError(t, s.CreateTag(ctx, &domain.Tag{ID: "tag-new", Name: "reading", CreatedAt: base}))

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "tag-new", tags[0].ID)
	assert.Equal(t, "tag-old", tags[1].ID)
}

func TestTagsForBookmark(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, s.CreateTag(ctx, &domain.Tag{ID: "tag-1", Name: "reading", BookmarkIDs: []string{"node-a", "node-b"}, CreatedAt: now}))
	require.NoError(t, s.CreateTag(ctx, &domain.Tag{ID: "tag-2", Name: "work", BookmarkIDs: []string{"node-b"}, CreatedAt: now}))
	require.NoError(t, s.CreateTag(ctx, &domain.Tag{ID: "tag-3", Name: "idle", CreatedAt: now}))

	tags, err := s.TagsForBookmark(ctx, "node-a")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "tag-1", tags[0].ID)

	tags, err = s.TagsForBookmark(ctx, "node-b")
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	tags, err = s.TagsForBookmark(ctx, "node-zzz")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

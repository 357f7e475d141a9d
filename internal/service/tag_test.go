package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTagService() (*TagService, *memTagStore) {
	tags := newMemTagStore()
	return NewTagService(tags, testLogger()), tags
}

func TestNormalizeName(t *testing.T) {
	svc, _ := newTestTagService()

	assert.Equal(t, "reading", svc.NormalizeName(" Reading "))
	assert.Equal(t, "reading", svc.NormalizeName("READING"))
	assert.Equal(t, "to read", svc.NormalizeName("To   Read"))
	assert.Equal(t, "", svc.NormalizeName("   "))
}

func TestAddTags_CreatesAndReuses(t *testing.T) {
	svc, tags := newTestTagService()
	ctx := context.Background()

	first, err := svc.AddTags(ctx, "node-a", []string{"Reading"})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "reading", first[0].Name)

	// Same name in a different spelling lands on the same tag.
	second, err := svc.AddTags(ctx, "node-b", []string{" READING "})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Len(t, tags.tags, 1)

	tag, err := tags.GetTag(ctx, first[0].ID)
	require.NoError(t, err)
	assert.True(t, tag.Has("node-a"))
	assert.True(t, tag.Has("node-b"))
}

func TestAddTags_SkipsEmptyNames(t *testing.T) {
	svc, tags := newTestTagService()
	ctx := context.Background()

	// Blank entries vanish; the surrounding names still attach.
	affected, err := svc.AddTags(ctx, "node-a", []string{"Go", "   "})
	require.NoError(t, err)
	require.Len(t, affected, 1)
	assert.Equal(t, "go", affected[0].Name)
	assert.Len(t, tags.tags, 1)

	// All-blank input attaches nothing.
	affected, err = svc.AddTags(ctx, "node-a", []string{"", "  "})
	require.NoError(t, err)
	assert.Empty(t, affected)
	assert.Len(t, tags.tags, 1)
}

func TestRemoveTag_DeletesWhenEmpty(t *testing.T) {
	svc, tags := newTestTagService()
	ctx := context.Background()

	created, err := svc.AddTags(ctx, "node-a", []string{"reading"})
	require.NoError(t, err)
	_, err = svc.AddTags(ctx, "node-b", []string{"reading"})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveTag(ctx, "node-a", "reading"))
	tag, err := tags.GetTag(ctx, created[0].ID)
	require.NoError(t, err)
	assert.False(t, tag.Has("node-a"))

	// Removing the last bookmark deletes the tag itself.
	require.NoError(t, svc.RemoveTag(ctx, "node-b", "reading"))
	assert.Empty(t, tags.tags)

	// Unknown names are a no-op.
	assert.NoError(t, svc.RemoveTag(ctx, "node-a", "never-existed"))
}

func TestDetach_ByTagID(t *testing.T) {
	svc, tags := newTestTagService()
	ctx := context.Background()

	created, err := svc.AddTags(ctx, "node-a", []string{"reading"})
	require.NoError(t, err)
	_, err = svc.AddTags(ctx, "node-b", []string{"reading"})
	require.NoError(t, err)

	require.NoError(t, svc.Detach(ctx, created[0].ID, "node-a"))
	tag, err := tags.GetTag(ctx, created[0].ID)
	require.NoError(t, err)
	assert.False(t, tag.Has("node-a"))

	// Detaching the last bookmark deletes the tag.
	require.NoError(t, svc.Detach(ctx, created[0].ID, "node-b"))
	assert.Empty(t, tags.tags)

	assert.Error(t, svc.Detach(ctx, "tag-missing", "node-a"))
}

func TestRemoveBookmark_StripsAllTags(t *testing.T) {
	svc, tags := newTestTagService()
	ctx := context.Background()

	_, err := svc.AddTags(ctx, "node-a", []string{"reading", "work"})
	require.NoError(t, err)
	_, err = svc.AddTags(ctx, "node-b", []string{"work"})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveBookmark(ctx, "node-a"))

	// "reading" had only node-a and is gone; "work" survives with node-b.
	_, err = tags.GetTagByName(ctx, "reading")
	assert.Error(t, err)

	work, err := tags.GetTagByName(ctx, "work")
	require.NoError(t, err)
	assert.True(t, work.Has("node-b"))
	assert.False(t, work.Has("node-a"))
}

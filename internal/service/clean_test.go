package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markwiseapp/markwise-server/internal/domain"
	"github.com/markwiseapp/markwise-server/internal/tree"
)

type fakeLinkChecker struct {
	broken map[string]bool
}

func (c *fakeLinkChecker) Check(ctx context.Context, url string) error {
	if c.broken[url] {
		return fmt.Errorf("status 404")
	}
	return nil
}

func newTestCleanService(m *fakeMutator, checker LinkChecker) (*CleanService, *memSnapshotStore, *memOperationStore) {
	snapshots, snapStore, ops := newTestSnapshotService(m)
	return NewCleanService(m, snapshots, checker, nil, nil, testLogger()), snapStore, ops
}

func TestCleanPreview_DuplicatesKeepOldest(t *testing.T) {
	m := newFakeMutator()
	ctx := context.Background()
	bar := m.container(domain.ContainerBookmarksBar)

	oldest, err := m.Create(ctx, bar.ID, "First copy", "https://example.com/dup")
	require.NoError(t, err)
	dup1, err := m.Create(ctx, bar.ID, "Second copy", "https://example.com/dup")
	require.NoError(t, err)
	dup2, err := m.Create(ctx, bar.ID, "Third copy", "https://example.com/dup")
	require.NoError(t, err)
	_, err = m.Create(ctx, bar.ID, "Unique", "https://example.com/one")
	require.NoError(t, err)

	// Make creation order unambiguous.
	base := time.Now().UTC()
	tree.FindByID(m.roots, oldest.ID).CreatedAt = base.Add(-2 * time.Hour)
	tree.FindByID(m.roots, dup1.ID).CreatedAt = base.Add(-time.Hour)
	tree.FindByID(m.roots, dup2.ID).CreatedAt = base

	svc, _, _ := newTestCleanService(m, nil)
	candidates, err := svc.Preview(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	ids := []string{candidates[0].BookmarkID, candidates[1].BookmarkID}
	assert.ElementsMatch(t, []string{dup1.ID, dup2.ID}, ids)
	for _, c := range candidates {
		assert.Equal(t, "duplicate", c.Reason)
	}
}

func TestCleanPreview_BrokenLinks(t *testing.T) {
	m := newFakeMutator()
	ctx := context.Background()
	bar := m.container(domain.ContainerBookmarksBar)

	_, err := m.Create(ctx, bar.ID, "Alive", "https://example.com/ok")
	require.NoError(t, err)
	dead, err := m.Create(ctx, bar.ID, "Dead", "https://example.com/gone")
	require.NoError(t, err)

	checker := &fakeLinkChecker{broken: map[string]bool{"https://example.com/gone": true}}
	svc, _, _ := newTestCleanService(m, checker)

	candidates, err := svc.Preview(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, dead.ID, candidates[0].BookmarkID)
	assert.Equal(t, "broken", candidates[0].Reason)
}

func TestCleanApply(t *testing.T) {
	m := newFakeMutator()
	ctx := context.Background()
	bar := m.container(domain.ContainerBookmarksBar)

	doomed, err := m.Create(ctx, bar.ID, "Doomed", "https://example.com/x")
	require.NoError(t, err)
	kept, err := m.Create(ctx, bar.ID, "Kept", "https://example.com/y")
	require.NoError(t, err)

	svc, snapStore, ops := newTestCleanService(m, nil)
	result, err := svc.Apply(ctx, []string{doomed.ID, "node-missing"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.RemovedCount)
	assert.Equal(t, 1, result.FailedCount)
	require.NotEmpty(t, result.SnapshotID)

	// Snapshot captured the pre-clean state.
	snap, err := snapStore.GetSnapshot(ctx, result.SnapshotID)
	require.NoError(t, err)
	assert.NotNil(t, tree.FindByID(snap.Tree, doomed.ID))

	roots, err := m.GetTree(ctx)
	require.NoError(t, err)
	assert.Nil(t, tree.FindByID(roots, doomed.ID))
	assert.NotNil(t, tree.FindByID(roots, kept.ID))

	entries, err := ops.ListOperations(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, domain.OperationClean, entries[0].Kind)
}

func TestCleanApply_EmptySelection(t *testing.T) {
	svc, snapStore, _ := newTestCleanService(newFakeMutator(), nil)

	result, err := svc.Apply(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, result.RemovedCount)
	assert.Empty(t, snapStore.snaps)
}

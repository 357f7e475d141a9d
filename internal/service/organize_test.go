package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markwiseapp/markwise-server/internal/domain"
	"github.com/markwiseapp/markwise-server/internal/tree"
)

func newTestOrganizeService(m *fakeMutator, c *fakeClassifier, batchSize int) *OrganizeService {
	snapshots, _, _ := newTestSnapshotService(m)
	return NewOrganizeService(m, c, snapshots, nil, testLogger(), batchSize)
}

func seedBookmarks(t *testing.T, m *fakeMutator, n int) []*domain.BookmarkNode {
	t.Helper()
	bar := m.container(domain.ContainerBookmarksBar)
	out := make([]*domain.BookmarkNode, n)
	for i := 0; i < n; i++ {
		bm, err := m.Create(context.Background(), bar.ID, fmt.Sprintf("Bookmark %d", i), fmt.Sprintf("https://example.com/%d", i))
		require.NoError(t, err)
		out[i] = bm
	}
	m.createCalls = nil
	return out
}

func TestClassifyInBatches_PartitionCoverage(t *testing.T) {
	m := newFakeMutator()
	bms := seedBookmarks(t, m, 7)

	c := &fakeClassifier{fn: func(batch []*domain.BookmarkNode, _ []string) ([]domain.Suggestion, error) {
		out := make([]domain.Suggestion, len(batch))
		for i := range batch {
			out[i] = domain.Suggestion{Category: "Sorted"}
		}
		return out, nil
	}}
	svc := newTestOrganizeService(m, c, 3)

	var progress [][2]int
	results, err := svc.ClassifyInBatches(context.Background(), bms, nil, func(attempted, total int) {
		progress = append(progress, [2]int{attempted, total})
	})
	require.NoError(t, err)

	// ceil(7/3) = 3 calls, sizes 3+3+1, every bookmark exactly once.
	require.Len(t, c.calls, 3)
	assert.Len(t, c.calls[0], 3)
	assert.Len(t, c.calls[1], 3)
	assert.Len(t, c.calls[2], 1)

	seen := make(map[string]int)
	for _, batch := range c.calls {
		for _, id := range batch {
			seen[id]++
		}
	}
	require.Len(t, seen, 7)
	for id, count := range seen {
		assert.Equal(t, 1, count, "bookmark %s dispatched more than once", id)
	}

	assert.Len(t, results, 7)
	assert.Equal(t, [][2]int{{3, 7}, {6, 7}, {7, 7}}, progress)
}

func TestClassifyInBatches_BatchFailureTolerated(t *testing.T) {
	m := newFakeMutator()
	bms := seedBookmarks(t, m, 6)

	call := 0
	c := &fakeClassifier{fn: func(batch []*domain.BookmarkNode, _ []string) ([]domain.Suggestion, error) {
		call++
		if call == 2 {
			return nil, fmt.Errorf("classifier unavailable")
		}
		out := make([]domain.Suggestion, len(batch))
		for i := range batch {
			out[i] = domain.Suggestion{Category: "Sorted"}
		}
		return out, nil
	}}
	svc := newTestOrganizeService(m, c, 2)

	var last [2]int
	results, err := svc.ClassifyInBatches(context.Background(), bms, nil, func(attempted, total int) {
		last = [2]int{attempted, total}
	})
	require.NoError(t, err)

	// Failed batch's bookmarks are absent; the rest are classified and
	// progress still reaches the full total.
	assert.Len(t, results, 4)
	assert.NotContains(t, results, bms[2].ID)
	assert.NotContains(t, results, bms[3].ID)
	assert.Equal(t, [2]int{6, 6}, last)
}

func TestPreview_SubsetSelection(t *testing.T) {
	m := newFakeMutator()
	bms := seedBookmarks(t, m, 4)

	c := &fakeClassifier{fn: func(batch []*domain.BookmarkNode, _ []string) ([]domain.Suggestion, error) {
		out := make([]domain.Suggestion, len(batch))
		for i := range batch {
			out[i] = domain.Suggestion{Category: "Sorted", IsNewCategory: true}
		}
		return out, nil
	}}
	svc := newTestOrganizeService(m, c, 10)

	// Only the named bookmarks reach the classifier; unknown ids are
	// ignored rather than erroring.
	changes, err := svc.Preview(context.Background(), []string{bms[0].ID, bms[2].ID, "node-unknown"})
	require.NoError(t, err)
	require.Len(t, c.calls, 1)
	assert.ElementsMatch(t, []string{bms[0].ID, bms[2].ID}, c.calls[0])
	require.Len(t, changes, 2)

	// No selection means the whole tree.
	c.calls = nil
	changes, err = svc.Preview(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, changes, 4)
}

func TestClassifyInBatches_OversizedResponseTruncated(t *testing.T) {
	m := newFakeMutator()
	bms := seedBookmarks(t, m, 3)

	// A misbehaving backend returning extra entries must not panic; the
	// surplus is dropped.
	c := &fakeClassifier{fn: func(batch []*domain.BookmarkNode, _ []string) ([]domain.Suggestion, error) {
		out := make([]domain.Suggestion, len(batch)+2)
		for i := range out {
			out[i] = domain.Suggestion{Category: "Sorted"}
		}
		return out, nil
	}}
	svc := newTestOrganizeService(m, c, 10)

	results, err := svc.ClassifyInBatches(context.Background(), bms, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, bm := range bms {
		assert.Contains(t, results, bm.ID)
	}
}

func TestComputeChanges_FallbackToNoChange(t *testing.T) {
	m := newFakeMutator()
	ctx := context.Background()
	bar := m.container(domain.ContainerBookmarksBar)

	folder, err := m.Create(ctx, bar.ID, "Reading", "")
	require.NoError(t, err)
	inFolder, err := m.Create(ctx, folder.ID, "Article", "https://example.com/a")
	require.NoError(t, err)
	inBar, err := m.Create(ctx, bar.ID, "Loose", "https://example.com/b")
	require.NoError(t, err)

	roots, err := m.GetTree(ctx)
	require.NoError(t, err)
	bms := tree.Flatten(roots)

	changes := ComputeChanges(roots, bms, map[string]domain.Suggestion{
		inBar.ID: {Category: "News", IsNewCategory: true},
		// inFolder has no entry: falls back to no change.
	})
	require.Len(t, changes, 2)

	byID := make(map[string]domain.FolderClassification)
	for _, c := range changes {
		byID[c.BookmarkID] = c
	}

	assert.Equal(t, "Reading", byID[inFolder.ID].CurrentFolder)
	assert.Equal(t, "Reading", byID[inFolder.ID].SuggestedFolder)
	assert.False(t, byID[inFolder.ID].Changed())

	assert.Equal(t, "", byID[inBar.ID].CurrentFolder)
	assert.Equal(t, "News", byID[inBar.ID].SuggestedFolder)
	assert.True(t, byID[inBar.ID].Changed())
}

func TestPlan_DeduplicatesNewFolders(t *testing.T) {
	changes := make([]domain.FolderClassification, 5)
	for i := range changes {
		changes[i] = domain.FolderClassification{
			BookmarkID:      fmt.Sprintf("node-%d", i),
			CurrentFolder:   "",
			SuggestedFolder: "Research",
			IsNewCategory:   true,
		}
	}
	// Case variation still dedups.
	changes[4].SuggestedFolder = "research"

	plan := Plan(changes)
	assert.Len(t, plan.FoldersToCreate, 1)
	assert.Len(t, plan.Moves, 5)
}

func TestPlan_SkipsUnchanged(t *testing.T) {
	plan := Plan([]domain.FolderClassification{
		{BookmarkID: "node-1", CurrentFolder: "Reading", SuggestedFolder: "Reading"},
		{BookmarkID: "node-2", CurrentFolder: "Reading", SuggestedFolder: "News"},
	})
	assert.Empty(t, plan.FoldersToCreate)
	require.Len(t, plan.Moves, 1)
	assert.Equal(t, "node-2", plan.Moves[0].BookmarkID)
}

func TestApply_SingleCreatePerNewCategory(t *testing.T) {
	m := newFakeMutator()
	bms := seedBookmarks(t, m, 5)

	changes := make([]domain.FolderClassification, len(bms))
	for i, bm := range bms {
		changes[i] = domain.FolderClassification{
			BookmarkID:      bm.ID,
			SuggestedFolder: "Research",
			IsNewCategory:   true,
		}
	}

	svc := newTestOrganizeService(m, nil, 20)
	result, err := svc.Apply(context.Background(), changes)
	require.NoError(t, err)

	creates := 0
	for _, title := range m.createCalls {
		if title == "Research" {
			creates++
		}
	}
	assert.Equal(t, 1, creates, "one create call per distinct new category")
	assert.Equal(t, 5, result.MovedCount)
	require.Contains(t, result.CreatedFolders, "Research")
	assert.NotEmpty(t, result.SnapshotID)

	roots, err := m.GetTree(context.Background())
	require.NoError(t, err)
	research := tree.FindFolderByName(roots, "Research")
	require.NotNil(t, research)
	assert.Len(t, research.Children, 5)
}

func TestApply_SnapshotTakenBeforeMutation(t *testing.T) {
	m := newFakeMutator()
	bms := seedBookmarks(t, m, 1)

	snapshots, snapStore, _ := newTestSnapshotService(m)
	svc := NewOrganizeService(m, nil, snapshots, nil, testLogger(), 20)

	result, err := svc.Apply(context.Background(), []domain.FolderClassification{
		{BookmarkID: bms[0].ID, SuggestedFolder: "News", IsNewCategory: true},
	})
	require.NoError(t, err)

	snap, err := snapStore.GetSnapshot(context.Background(), result.SnapshotID)
	require.NoError(t, err)

	// The captured tree predates the mutation: the bookmark still sits
	// directly in the bar and no News folder exists.
	assert.Nil(t, tree.FindFolderByName(snap.Tree, "News"))
	captured := tree.FindByID(snap.Tree, bms[0].ID)
	require.NotNil(t, captured)
	assert.Equal(t, m.container(domain.ContainerBookmarksBar).ID, captured.ParentID)
}

func TestApply_MovesToExistingFolderAndSkipsNoops(t *testing.T) {
	m := newFakeMutator()
	ctx := context.Background()
	bar := m.container(domain.ContainerBookmarksBar)

	folder, err := m.Create(ctx, bar.ID, "Reading", "")
	require.NoError(t, err)
	already, err := m.Create(ctx, folder.ID, "In place", "https://example.com/a")
	require.NoError(t, err)
	loose, err := m.Create(ctx, bar.ID, "Loose", "https://example.com/b")
	require.NoError(t, err)
	m.createCalls = nil

	svc := newTestOrganizeService(m, nil, 20)
	result, err := svc.Apply(ctx, []domain.FolderClassification{
		{BookmarkID: already.ID, CurrentFolder: "reading", SuggestedFolder: "Reading"},
		{BookmarkID: loose.ID, CurrentFolder: "", SuggestedFolder: "Reading"},
	})
	require.NoError(t, err)

	assert.Empty(t, m.createCalls, "existing folder must not be recreated")
	assert.Equal(t, 1, result.MovedCount)
	assert.Equal(t, 1, result.SkippedCount)

	roots, err := m.GetTree(ctx)
	require.NoError(t, err)
	reading := tree.FindFolderByName(roots, "Reading")
	require.NotNil(t, reading)
	assert.Len(t, reading.Children, 2)
}

func TestApply_FolderCreationFailureLeavesBookmarksInPlace(t *testing.T) {
	m := newFakeMutator()
	bms := seedBookmarks(t, m, 2)
	m.failCreate["Doomed"] = true

	svc := newTestOrganizeService(m, nil, 20)
	result, err := svc.Apply(context.Background(), []domain.FolderClassification{
		{BookmarkID: bms[0].ID, SuggestedFolder: "Doomed", IsNewCategory: true},
		{BookmarkID: bms[1].ID, SuggestedFolder: "Fine", IsNewCategory: true},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.MovedCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.NotContains(t, result.CreatedFolders, "Doomed")

	roots, err := m.GetTree(context.Background())
	require.NoError(t, err)
	stayed := tree.FindByID(roots, bms[0].ID)
	require.NotNil(t, stayed)
	assert.Equal(t, m.container(domain.ContainerBookmarksBar).ID, stayed.ParentID)
}

func TestApply_EmptyPlanIsNoop(t *testing.T) {
	m := newFakeMutator()
	snapshots, snapStore, _ := newTestSnapshotService(m)
	svc := NewOrganizeService(m, nil, snapshots, nil, testLogger(), 20)

	result, err := svc.Apply(context.Background(), []domain.FolderClassification{
		{BookmarkID: "node-1", CurrentFolder: "A", SuggestedFolder: "A"},
	})
	require.NoError(t, err)
	assert.Zero(t, result.MovedCount)
	assert.Empty(t, result.SnapshotID)
	assert.Empty(t, snapStore.snaps, "no snapshot for an empty plan")
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/markwiseapp/markwise-server/internal/domain"
	"github.com/markwiseapp/markwise-server/internal/store"
	"github.com/markwiseapp/markwise-server/internal/tree"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeMutator is an in-memory bookmarks.Mutator with the three system
// containers pre-seeded. It mints sequential ids and records calls so
// tests can assert on call counts.
type fakeMutator struct {
	roots  []*domain.BookmarkNode
	nextID int

	createCalls []string // titles, in call order
	moveCalls   int
	failCreate  map[string]bool // titles whose creation fails
}

func newFakeMutator() *fakeMutator {
	m := &fakeMutator{failCreate: make(map[string]bool)}
	for _, t := range domain.SystemContainers {
		m.roots = append(m.roots, &domain.BookmarkNode{
			ID:       "container-" + string(t),
			ParentID: domain.RootID,
			Title:    string(t),
			Type:     t,
		})
	}
	return m
}

func (m *fakeMutator) container(t domain.ContainerType) *domain.BookmarkNode {
	return tree.ContainerByType(m.roots, t)
}

func (m *fakeMutator) GetTree(ctx context.Context) ([]*domain.BookmarkNode, error) {
	return tree.Clone(m.roots), nil
}

func (m *fakeMutator) GetChildren(ctx context.Context, folderID string) ([]*domain.BookmarkNode, error) {
	parent := tree.FindByID(m.roots, folderID)
	if parent == nil {
		return nil, store.ErrNodeNotFound
	}
	return tree.Clone(parent.Children), nil
}

func (m *fakeMutator) Create(ctx context.Context, parentID, title, url string) (*domain.BookmarkNode, error) {
	m.createCalls = append(m.createCalls, title)
	if m.failCreate[title] {
		return nil, fmt.Errorf("create %q refused", title)
	}
	parent := tree.FindByID(m.roots, parentID)
	if parent == nil {
		return nil, store.ErrNodeNotFound
	}
	m.nextID++
	node := &domain.BookmarkNode{
		ID:        fmt.Sprintf("node-%d", m.nextID),
		ParentID:  parentID,
		Title:     title,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
	parent.Children = append(parent.Children, node)
	copied := *node
	return &copied, nil
}

func (m *fakeMutator) Move(ctx context.Context, nodeID, newParentID string) (*domain.BookmarkNode, error) {
	m.moveCalls++
	node := tree.FindByID(m.roots, nodeID)
	target := tree.FindByID(m.roots, newParentID)
	if node == nil || target == nil {
		return nil, store.ErrNodeNotFound
	}
	m.detach(node)
	node.ParentID = newParentID
	target.Children = append(target.Children, node)
	copied := *node
	return &copied, nil
}

func (m *fakeMutator) Remove(ctx context.Context, nodeID string) error {
	node := tree.FindByID(m.roots, nodeID)
	if node == nil {
		return store.ErrNodeNotFound
	}
	if len(node.Children) > 0 {
		return store.ErrNotALeaf
	}
	m.detach(node)
	return nil
}

func (m *fakeMutator) RemoveSubtree(ctx context.Context, folderID string) error {
	node := tree.FindByID(m.roots, folderID)
	if node == nil {
		return store.ErrNodeNotFound
	}
	m.detach(node)
	return nil
}

func (m *fakeMutator) detach(node *domain.BookmarkNode) {
	parent := tree.FindByID(m.roots, node.ParentID)
	if parent == nil {
		return
	}
	for i, child := range parent.Children {
		if child.ID == node.ID {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return
		}
	}
}

// memSnapshotStore is an in-memory SnapshotStore.
type memSnapshotStore struct {
	snaps map[string]*domain.Snapshot
}

func newMemSnapshotStore() *memSnapshotStore {
	return &memSnapshotStore{snaps: make(map[string]*domain.Snapshot)}
}

func (s *memSnapshotStore) PutSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	s.snaps[snap.ID] = snap
	return nil
}

func (s *memSnapshotStore) GetSnapshot(ctx context.Context, snapshotID string) (*domain.Snapshot, error) {
	snap, ok := s.snaps[snapshotID]
	if !ok {
		return nil, store.ErrSnapshotNotFound
	}
	return snap, nil
}

func (s *memSnapshotStore) ListSnapshots(ctx context.Context) ([]*domain.Snapshot, error) {
	out := make([]*domain.Snapshot, 0, len(s.snaps))
	for _, snap := range s.snaps {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memSnapshotStore) DeleteSnapshot(ctx context.Context, snapshotID string) error {
	delete(s.snaps, snapshotID)
	return nil
}

func (s *memSnapshotStore) PruneSnapshots(ctx context.Context, retain int) error {
	snaps, _ := s.ListSnapshots(ctx)
	if retain < 0 {
		retain = 0
	}
	if len(snaps) <= retain {
		return nil
	}
	for _, snap := range snaps[retain:] {
		delete(s.snaps, snap.ID)
	}
	return nil
}

// memOperationStore is an in-memory OperationStore.
type memOperationStore struct {
	entries []*domain.OperationLogEntry
}

func (s *memOperationStore) AppendOperation(ctx context.Context, entry *domain.OperationLogEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memOperationStore) ListOperations(ctx context.Context) ([]*domain.OperationLogEntry, error) {
	out := make([]*domain.OperationLogEntry, len(s.entries))
	copy(out, s.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memOperationStore) PruneOperations(ctx context.Context, retain int) error {
	entries, _ := s.ListOperations(ctx)
	if len(entries) <= retain {
		return nil
	}
	s.entries = entries[:retain]
	return nil
}

// memTagStore is an in-memory TagStore.
type memTagStore struct {
	tags map[string]*domain.Tag
}

func newMemTagStore() *memTagStore {
	return &memTagStore{tags: make(map[string]*domain.Tag)}
}

func (s *memTagStore) CreateTag(ctx context.Context, t *domain.Tag) error {
	for _, existing := range s.tags {
		if existing.Name == t.Name {
			return store.ErrTagExists
		}
	}
	s.tags[t.ID] = t
	return nil
}

func (s *memTagStore) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	t, ok := s.tags[tagID]
	if !ok {
		return nil, store.ErrTagNotFound
	}
	return t, nil
}

func (s *memTagStore) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	for _, t := range s.tags {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, store.ErrTagNotFound
}

func (s *memTagStore) UpdateTag(ctx context.Context, t *domain.Tag) error {
	if _, ok := s.tags[t.ID]; !ok {
		return store.ErrTagNotFound
	}
	s.tags[t.ID] = t
	return nil
}

func (s *memTagStore) DeleteTag(ctx context.Context, tagID string) error {
	delete(s.tags, tagID)
	return nil
}

func (s *memTagStore) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	out := make([]*domain.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *memTagStore) TagsForBookmark(ctx context.Context, bookmarkID string) ([]*domain.Tag, error) {
	all, _ := s.ListTags(ctx)
	var out []*domain.Tag
	for _, t := range all {
		if t.Has(bookmarkID) {
			out = append(out, t)
		}
	}
	return out, nil
}

// fakeClassifier delegates to a function so each test scripts its own
// verdicts.
type fakeClassifier struct {
	fn    func(batch []*domain.BookmarkNode, folderNames []string) ([]domain.Suggestion, error)
	calls [][]string // bookmark ids per batch, in call order
}

func (c *fakeClassifier) ClassifyBatch(ctx context.Context, batch []*domain.BookmarkNode, folderNames []string) ([]domain.Suggestion, error) {
	ids := make([]string, len(batch))
	for i, bm := range batch {
		ids[i] = bm.ID
	}
	c.calls = append(c.calls, ids)
	return c.fn(batch, folderNames)
}

func newTestSnapshotService(m *fakeMutator) (*SnapshotService, *memSnapshotStore, *memOperationStore) {
	snaps := newMemSnapshotStore()
	ops := &memOperationStore{}
	svc := NewSnapshotService(m, snaps, ops, nil, testLogger(), 10, 100)
	return svc, snaps, ops
}

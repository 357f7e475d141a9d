package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/markwiseapp/markwise-server/internal/domain"
	"github.com/markwiseapp/markwise-server/internal/id"
)

// Key prefixes for the bookmark node tree.
const (
	nodePrefix     = "node:"           // node:{id} → nodeRecord JSON
	nodeTypePrefix = "idx:nodes:type:" // idx:nodes:type:{containerType} → nodeID
)

// nodeRecord is the persisted shape of one tree node. Children are kept
// as an ordered id list so sibling order survives round-trips.
type nodeRecord struct {
	ID        string               `json:"id"`
	ParentID  string               `json:"parent_id"`
	Title     string               `json:"title,omitempty"`
	URL       string               `json:"url,omitempty"`
	Type      domain.ContainerType `json:"type,omitempty"`
	ChildIDs  []string             `json:"child_ids,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

func (r *nodeRecord) isFolder() bool { return r.URL == "" }

func (r *nodeRecord) toNode() *domain.BookmarkNode {
	return &domain.BookmarkNode{
		ID:        r.ID,
		ParentID:  r.ParentID,
		Title:     r.Title,
		URL:       r.URL,
		Type:      r.Type,
		CreatedAt: r.CreatedAt,
	}
}

// containerTitles are the display names of the fixed system containers.
var containerTitles = map[domain.ContainerType]string{
	domain.ContainerBookmarksBar: "Bookmarks Bar",
	domain.ContainerOther:        "Other Bookmarks",
	domain.ContainerMobile:       "Mobile Bookmarks",
}

// EnsureContainers creates any missing system containers. Idempotent;
// called once at startup before the store serves tree reads.
func (s *Store) EnsureContainers(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, ct := range domain.SystemContainers {
			typeKey := []byte(nodeTypePrefix + string(ct))
			_, err := txn.Get(typeKey)
			if err == nil {
				continue
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			nodeID, err := id.Generate("node")
			if err != nil {
				return err
			}
			rec := &nodeRecord{
				ID:        nodeID,
				ParentID:  domain.RootID,
				Title:     containerTitles[ct],
				Type:      ct,
				CreatedAt: time.Now(),
			}
			if err := putNodeRecord(txn, rec); err != nil {
				return err
			}
			if err := txn.Set(typeKey, []byte(nodeID)); err != nil {
				return err
			}

			if s.logger != nil {
				s.logger.Info("created system container", "type", ct, "node_id", nodeID)
			}
		}
		return nil
	})
}

// GetTree returns the root's children: the three system containers with
// their full subtrees, assembled fresh on every call.
func (s *Store) GetTree(ctx context.Context) ([]*domain.BookmarkNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var roots []*domain.BookmarkNode
	err := s.db.View(func(txn *badger.Txn) error {
		for _, ct := range domain.SystemContainers {
			containerID, err := containerIDInTxn(txn, ct)
			if err != nil {
				return err
			}
			node, err := buildSubtree(txn, containerID)
			if err != nil {
				return err
			}
			roots = append(roots, node)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roots, nil
}

// GetChildren returns the ordered direct children of a folder, without
// grandchildren.
func (s *Store) GetChildren(ctx context.Context, folderID string) ([]*domain.BookmarkNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var children []*domain.BookmarkNode
	err := s.db.View(func(txn *badger.Txn) error {
		rec, err := getNodeRecord(txn, folderID)
		if err != nil {
			return err
		}
		if !rec.isFolder() {
			return ErrNotAFolder
		}
		children = make([]*domain.BookmarkNode, 0, len(rec.ChildIDs))
		for _, childID := range rec.ChildIDs {
			child, err := getNodeRecord(txn, childID)
			if err != nil {
				return err
			}
			children = append(children, child.toNode())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

// Create adds a node under parentID. A present url creates a bookmark;
// an empty url creates a folder. The store mints the new node's id.
func (s *Store) Create(ctx context.Context, parentID, title, url string) (*domain.BookmarkNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nodeID, err := id.Generate("node")
	if err != nil {
		return nil, err
	}

	rec := &nodeRecord{
		ID:        nodeID,
		ParentID:  parentID,
		Title:     title,
		URL:       url,
		CreatedAt: time.Now(),
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		parent, err := getNodeRecord(txn, parentID)
		if err != nil {
			return err
		}
		if !parent.isFolder() {
			return ErrNotAFolder
		}

		if err := putNodeRecord(txn, rec); err != nil {
			return err
		}

		parent.ChildIDs = append(parent.ChildIDs, nodeID)
		return putNodeRecord(txn, parent)
	})
	if err != nil {
		return nil, err
	}

	node := rec.toNode()
	if url != "" {
		s.indexAsync(node)
	}
	return node, nil
}

// Move reparents a node to the end of newParentID's children. Moving a
// node to its current parent is a no-op. System containers cannot move.
func (s *Store) Move(ctx context.Context, nodeID, newParentID string) (*domain.BookmarkNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var moved *domain.BookmarkNode
	err := s.db.Update(func(txn *badger.Txn) error {
		rec, err := getNodeRecord(txn, nodeID)
		if err != nil {
			return err
		}
		if rec.Type.Valid() {
			return ErrSystemContainer
		}
		if rec.ParentID == newParentID {
			moved = rec.toNode()
			return nil
		}

		newParent, err := getNodeRecord(txn, newParentID)
		if err != nil {
			return err
		}
		if !newParent.isFolder() {
			return ErrNotAFolder
		}

		// A folder must not become its own ancestor.
		if rec.isFolder() {
			if err := checkNotDescendant(txn, nodeID, newParentID); err != nil {
				return err
			}
		}

		oldParent, err := getNodeRecord(txn, rec.ParentID)
		if err != nil {
			return err
		}
		oldParent.ChildIDs = removeID(oldParent.ChildIDs, nodeID)
		if err := putNodeRecord(txn, oldParent); err != nil {
			return err
		}

		newParent.ChildIDs = append(newParent.ChildIDs, nodeID)
		if err := putNodeRecord(txn, newParent); err != nil {
			return err
		}

		rec.ParentID = newParentID
		if err := putNodeRecord(txn, rec); err != nil {
			return err
		}

		moved = rec.toNode()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// Remove deletes a leaf node (a bookmark or an empty folder).
func (s *Store) Remove(ctx context.Context, nodeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var wasBookmark bool
	err := s.db.Update(func(txn *badger.Txn) error {
		rec, err := getNodeRecord(txn, nodeID)
		if err != nil {
			return err
		}
		if rec.Type.Valid() {
			return ErrSystemContainer
		}
		if len(rec.ChildIDs) > 0 {
			return ErrNotALeaf
		}

		parent, err := getNodeRecord(txn, rec.ParentID)
		if err != nil {
			return err
		}
		parent.ChildIDs = removeID(parent.ChildIDs, nodeID)
		if err := putNodeRecord(txn, parent); err != nil {
			return err
		}

		wasBookmark = !rec.isFolder()
		return txn.Delete([]byte(nodePrefix + nodeID))
	})
	if err != nil {
		return err
	}

	if wasBookmark {
		s.deindexAsync(nodeID)
	}
	return nil
}

// RemoveSubtree deletes a folder and all its descendants, bottom-up.
func (s *Store) RemoveSubtree(ctx context.Context, folderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var removedBookmarks []string
	err := s.db.Update(func(txn *badger.Txn) error {
		rec, err := getNodeRecord(txn, folderID)
		if err != nil {
			return err
		}
		if rec.Type.Valid() {
			return ErrSystemContainer
		}
		if !rec.isFolder() {
			return ErrNotAFolder
		}

		parent, err := getNodeRecord(txn, rec.ParentID)
		if err != nil {
			return err
		}
		parent.ChildIDs = removeID(parent.ChildIDs, folderID)
		if err := putNodeRecord(txn, parent); err != nil {
			return err
		}

		return deleteSubtree(txn, rec, &removedBookmarks)
	})
	if err != nil {
		return err
	}

	for _, bookmarkID := range removedBookmarks {
		s.deindexAsync(bookmarkID)
	}
	return nil
}

// ContainerID returns the node id of a system container.
func (s *Store) ContainerID(ctx context.Context, ct domain.ContainerType) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var containerID string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		containerID, err = containerIDInTxn(txn, ct)
		return err
	})
	return containerID, err
}

// Internal helpers. All operate inside a caller-owned transaction.

func getNodeRecord(txn *badger.Txn, nodeID string) (*nodeRecord, error) {
	item, err := txn.Get([]byte(nodePrefix + nodeID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNodeNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec nodeRecord
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func putNodeRecord(txn *badger.Txn, rec *nodeRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set([]byte(nodePrefix+rec.ID), data)
}

func containerIDInTxn(txn *badger.Txn, ct domain.ContainerType) (string, error) {
	item, err := txn.Get([]byte(nodeTypePrefix + string(ct)))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNodeNotFound
	}
	if err != nil {
		return "", err
	}

	var containerID string
	err = item.Value(func(val []byte) error {
		containerID = string(val)
		return nil
	})
	return containerID, err
}

func buildSubtree(txn *badger.Txn, nodeID string) (*domain.BookmarkNode, error) {
	rec, err := getNodeRecord(txn, nodeID)
	if err != nil {
		return nil, err
	}

	node := rec.toNode()
	if rec.isFolder() {
		node.Children = make([]*domain.BookmarkNode, 0, len(rec.ChildIDs))
		for _, childID := range rec.ChildIDs {
			child, err := buildSubtree(txn, childID)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
	}
	return node, nil
}

// checkNotDescendant walks up from candidateID's ancestors; finding
// nodeID means the move would create a cycle.
func checkNotDescendant(txn *badger.Txn, nodeID, candidateID string) error {
	current := candidateID
	for current != domain.RootID && current != "" {
		if current == nodeID {
			return ErrCyclicMove
		}
		rec, err := getNodeRecord(txn, current)
		if err != nil {
			return err
		}
		current = rec.ParentID
	}
	return nil
}

func deleteSubtree(txn *badger.Txn, rec *nodeRecord, removedBookmarks *[]string) error {
	// Children removed before their parent.
	for _, childID := range rec.ChildIDs {
		child, err := getNodeRecord(txn, childID)
		if err != nil {
			if errors.Is(err, ErrNodeNotFound) {
				continue
			}
			return err
		}
		if err := deleteSubtree(txn, child, removedBookmarks); err != nil {
			return err
		}
	}

	if !rec.isFolder() {
		*removedBookmarks = append(*removedBookmarks, rec.ID)
	}
	return txn.Delete([]byte(nodePrefix + rec.ID))
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != target {
			out = append(out, candidate)
		}
	}
	return out
}

// indexAsync updates the search index without blocking the mutation.
func (s *Store) indexAsync(node *domain.BookmarkNode) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.IndexBookmark(context.Background(), node); err != nil && s.logger != nil {
			s.logger.Warn("failed to index bookmark", "node_id", node.ID, "error", err)
		}
	}()
}

func (s *Store) deindexAsync(nodeID string) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.DeleteBookmark(context.Background(), nodeID); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove bookmark from index", "node_id", nodeID, "error", err)
		}
	}()
}

package domain

import "time"

// RootID is the reserved identifier of the synthetic tree root.
// The root is never persisted as a node record; its children are the
// three fixed system containers.
const RootID = "root"

// ContainerType marks the fixed system containers that live directly
// under the root. They are never created, renamed, or deleted by this
// system — only their contents are mutated.
type ContainerType string

const (
	ContainerBookmarksBar ContainerType = "bookmarks-bar"
	ContainerOther        ContainerType = "other"
	ContainerMobile       ContainerType = "mobile"
)

// SystemContainers lists the container types in their fixed display order.
var SystemContainers = []ContainerType{
	ContainerBookmarksBar,
	ContainerOther,
	ContainerMobile,
}

// Valid reports whether t names a known system container.
func (t ContainerType) Valid() bool {
	switch t {
	case ContainerBookmarksBar, ContainerOther, ContainerMobile:
		return true
	}
	return false
}

// NodeRole is the resolved role of a node within the tree.
// Roles are computed once at the boundary (tree.Classify) instead of
// re-inspecting optional fields throughout the codebase.
type NodeRole string

const (
	RoleRoot            NodeRole = "root"
	RoleSystemContainer NodeRole = "systemContainer"
	RoleUserFolder      NodeRole = "userFolder"
	RoleBookmark        NodeRole = "bookmark"
)

// BookmarkNode is one entry in the hierarchical bookmark tree.
//
// A node is either a leaf bookmark (URL set, no children) or a folder
// (URL unset, ordered children). URL presence is authoritative: a
// malformed node with both is treated as a bookmark.
//
// Node ids are opaque and assigned exclusively by the bookmark store.
type BookmarkNode struct {
	ID        string          `json:"id"`
	ParentID  string          `json:"parent_id,omitempty"`
	Title     string          `json:"title,omitempty"`
	URL       string          `json:"url,omitempty"`
	Type      ContainerType   `json:"type,omitempty"` // set only on system containers
	Children  []*BookmarkNode `json:"children,omitempty"`
	CreatedAt time.Time       `json:"created_at,omitzero"`
}

// IsFolder reports whether the node can hold children.
func (n *BookmarkNode) IsFolder() bool {
	return n.URL == ""
}

// TreeStats aggregates counts over a tree. MaxDepth is measured relative
// to the nearest enclosing system container, not the absolute root, so
// the number stays meaningful to a user who never sees the root layer.
type TreeStats struct {
	BookmarkCount int `json:"bookmark_count"`
	FolderCount   int `json:"folder_count"`
	MaxDepth      int `json:"max_depth"`
}

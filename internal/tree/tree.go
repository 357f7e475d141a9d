// Package tree implements pure classification and statistics over a
// bookmark tree. Every function is a pure function of the supplied
// nodes — callers pass the current tree explicitly, which keeps the
// walking logic testable against fixture trees.
package tree

import (
	"strings"

	"github.com/markwiseapp/markwise-server/internal/domain"
)

// Classify resolves the role of a node. Rules apply in priority order:
//
//  1. the reserved root id is the root;
//  2. a direct child of the root is a system container — a user cannot
//     create folders directly under the root, so this check must come
//     before the generic folder check;
//  3. a node carrying a known container type marker is a system container;
//  4. a node without a URL is a user folder;
//  5. everything else is a bookmark.
//
// URL presence is authoritative for malformed input: a folder-shaped
// node with a URL classifies as a bookmark rather than crashing.
func Classify(node *domain.BookmarkNode) domain.NodeRole {
	switch {
	case node.ID == domain.RootID:
		return domain.RoleRoot
	case node.ParentID == domain.RootID:
		return domain.RoleSystemContainer
	case node.Type.Valid():
		return domain.RoleSystemContainer
	case node.URL == "":
		return domain.RoleUserFolder
	default:
		return domain.RoleBookmark
	}
}

// Walk visits every node under roots in pre-order. Returning false from
// fn stops the walk.
func Walk(roots []*domain.BookmarkNode, fn func(*domain.BookmarkNode) bool) {
	var visit func(*domain.BookmarkNode) bool
	visit = func(n *domain.BookmarkNode) bool {
		if !fn(n) {
			return false
		}
		for _, child := range n.Children {
			if !visit(child) {
				return false
			}
		}
		return true
	}
	for _, root := range roots {
		if !visit(root) {
			return
		}
	}
}

// Flatten returns all bookmark-role nodes in pre-order. The sequence is
// recomputed per call and deterministic for a stable input tree.
func Flatten(roots []*domain.BookmarkNode) []*domain.BookmarkNode {
	var bookmarks []*domain.BookmarkNode
	Walk(roots, func(n *domain.BookmarkNode) bool {
		if Classify(n) == domain.RoleBookmark {
			bookmarks = append(bookmarks, n)
		}
		return true
	})
	return bookmarks
}

// UserFolders returns all user folders in pre-order, excluding the root
// and system containers at any depth.
func UserFolders(roots []*domain.BookmarkNode) []*domain.BookmarkNode {
	var folders []*domain.BookmarkNode
	Walk(roots, func(n *domain.BookmarkNode) bool {
		if Classify(n) == domain.RoleUserFolder {
			folders = append(folders, n)
		}
		return true
	})
	return folders
}

// FolderNames returns the display names of all user folders in pre-order.
func FolderNames(roots []*domain.BookmarkNode) []string {
	folders := UserFolders(roots)
	names := make([]string, len(folders))
	for i, f := range folders {
		names[i] = f.Title
	}
	return names
}

// FindFolderByName returns the first user folder whose title matches
// name case-insensitively, in pre-order. Duplicate folder names are
// resolved by first match in tree order.
func FindFolderByName(roots []*domain.BookmarkNode, name string) *domain.BookmarkNode {
	var found *domain.BookmarkNode
	Walk(roots, func(n *domain.BookmarkNode) bool {
		if Classify(n) == domain.RoleUserFolder && strings.EqualFold(n.Title, name) {
			found = n
			return false
		}
		return true
	})
	return found
}

// ContainerByType returns the system container of the given type from
// the root's children, or nil if absent.
func ContainerByType(roots []*domain.BookmarkNode, t domain.ContainerType) *domain.BookmarkNode {
	for _, root := range roots {
		if root.Type == t {
			return root
		}
	}
	return nil
}

// ContainerOf returns the system container enclosing the node with the
// given id, or nil if the id is not in the tree.
func ContainerOf(roots []*domain.BookmarkNode, nodeID string) *domain.BookmarkNode {
	for _, root := range roots {
		if Classify(root) != domain.RoleSystemContainer {
			continue
		}
		if root.ID == nodeID {
			return root
		}
		found := false
		Walk(root.Children, func(n *domain.BookmarkNode) bool {
			if n.ID == nodeID {
				found = true
				return false
			}
			return true
		})
		if found {
			return root
		}
	}
	return nil
}

// FindByID returns the node with the given id, or nil.
func FindByID(roots []*domain.BookmarkNode, nodeID string) *domain.BookmarkNode {
	var found *domain.BookmarkNode
	Walk(roots, func(n *domain.BookmarkNode) bool {
		if n.ID == nodeID {
			found = n
			return false
		}
		return true
	})
	return found
}

// Stats computes aggregate counts. Depth is measured relative to the
// nearest enclosing system container: a folder directly under the
// bookmarks bar has depth 0, and each nesting level below it adds one.
func Stats(roots []*domain.BookmarkNode) domain.TreeStats {
	var stats domain.TreeStats

	var measure func(n *domain.BookmarkNode, depth int)
	measure = func(n *domain.BookmarkNode, depth int) {
		switch Classify(n) {
		case domain.RoleBookmark:
			stats.BookmarkCount++
			if depth > stats.MaxDepth {
				stats.MaxDepth = depth
			}
		case domain.RoleUserFolder:
			stats.FolderCount++
			if depth > stats.MaxDepth {
				stats.MaxDepth = depth
			}
			for _, child := range n.Children {
				measure(child, depth+1)
			}
			return
		}
		for _, child := range n.Children {
			measure(child, depth+1)
		}
	}

	for _, root := range roots {
		switch Classify(root) {
		case domain.RoleSystemContainer:
			// Depth counting resets at the container boundary.
			for _, child := range root.Children {
				measure(child, 0)
			}
		default:
			measure(root, 0)
		}
	}

	return stats
}

// Clone deep-copies a tree. Snapshots rely on this: the captured tree
// must share no pointers with the live one.
func Clone(roots []*domain.BookmarkNode) []*domain.BookmarkNode {
	if roots == nil {
		return nil
	}
	cloned := make([]*domain.BookmarkNode, len(roots))
	for i, n := range roots {
		cloned[i] = cloneNode(n)
	}
	return cloned
}

func cloneNode(n *domain.BookmarkNode) *domain.BookmarkNode {
	copied := *n
	copied.Children = Clone(n.Children)
	return &copied
}

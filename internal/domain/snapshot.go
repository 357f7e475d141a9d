package domain

import "time"

// Snapshot is a point-in-time deep copy of the bookmark tree.
//
// Tree holds the root's children (the system containers with their full
// subtrees) as captured — never a live reference. Once created a
// snapshot is immutable; restore reads it but never writes back.
type Snapshot struct {
	ID            string          `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	BookmarkCount int             `json:"bookmark_count"`
	Description   string          `json:"description,omitempty"`
	Tree          []*BookmarkNode `json:"tree"`
}

package domain

import "time"

// OperationKind names the bulk operations recorded in the audit log.
type OperationKind string

const (
	OperationReclassify OperationKind = "reclassify"
	OperationClean      OperationKind = "clean"
	OperationRollback   OperationKind = "rollback"
	OperationImport     OperationKind = "import"
)

// OperationLogEntry is one append-only audit record. Entries are never
// mutated after creation and are pruned under a bounded-count policy.
type OperationLogEntry struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	Kind          OperationKind `json:"kind"`
	AffectedCount int           `json:"affected_count"`
	Description   string        `json:"description,omitempty"`
	// SnapshotID references the snapshot taken immediately before the
	// operation, when one was taken.
	SnapshotID string `json:"snapshot_id,omitempty"`
}

// Package sse implements Server-Sent Events so the UI can follow
// long-running operations live: batch classification progress, snapshot
// creation, restore and clean completion.
package sse

import "time"

// EventType represents the type of SSE event.
type EventType string

const (
	// EventOrganizeProgress carries cumulative classification progress.
	EventOrganizeProgress EventType = "organize.progress"
	// EventSnapshotCreated announces a new snapshot.
	EventSnapshotCreated EventType = "snapshot.created"
	// EventRestoreCompleted announces a finished restore.
	EventRestoreCompleted EventType = "restore.completed"
	// EventCleanCompleted announces a finished clean run.
	EventCleanCompleted EventType = "clean.completed"
	// EventImportCompleted announces a finished import.
	EventImportCompleted EventType = "import.completed"
	// EventHeartbeat is a connection keepalive.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Type      EventType `json:"type"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, data any) Event {
	return Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return NewEvent(EventHeartbeat, nil)
}

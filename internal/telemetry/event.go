package telemetry

import "time"

type EventType string

const (
	EventTaskAdded     EventType = "task_added"
	EventTaskEdited    EventType = "task_edited"
	EventTaskChecked   EventType = "task_checked"
	EventTaskUnchecked EventType = "task_unchecked"
	EventTaskRemoved   EventType = "task_removed"
	EventTaskRestored  EventType = "task_restored"
	EventTrashEmptied  EventType = "trash_emptied"
	EventFilterChanged EventType = "filter_changed"
)

type Event struct {
	ID        int       `json:"id"`
	SessionID string    `json:"session_id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}

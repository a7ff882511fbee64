package telemetry

import (
	"github.com/charmbracelet/log"

	"github.com/ca-terumi-k/todo-app-v1/internal/todo"
)

var eventByChange = map[todo.ChangeKind]EventType{
	todo.ChangeAdded:        EventTaskAdded,
	todo.ChangeEdited:       EventTaskEdited,
	todo.ChangeChecked:      EventTaskChecked,
	todo.ChangeUnchecked:    EventTaskUnchecked,
	todo.ChangeRemoved:      EventTaskRemoved,
	todo.ChangeRestored:     EventTaskRestored,
	todo.ChangeTrashEmptied: EventTrashEmptied,
	todo.ChangeFilter:       EventFilterChanged,
}

// Recorder returns a store listener that records applied changes of one
// session. Changes that touched nothing (unknown ids, empty trash) are
// skipped.
func Recorder(repo Repository, sessionID string, logger *log.Logger) todo.Listener {
	if logger == nil {
		logger = log.Default()
	}
	return func(c todo.Change) {
		if !c.Applied {
			return
		}
		eventType, ok := eventByChange[c.Kind]
		if !ok {
			return
		}

		metadata := EventMetadata{}
		if c.TaskID != 0 {
			metadata["task_id"] = c.TaskID
		}
		switch c.Kind {
		case todo.ChangeTrashEmptied:
			metadata["purged"] = c.Purged
		case todo.ChangeFilter:
			metadata["filter"] = c.Snapshot.Filter.String()
		}

		if err := repo.RecordEvent(sessionID, eventType, metadata); err != nil {
			logger.Warn("telemetry_record_failed", "session", sessionID, "type", eventType, "err", err)
		}
	}
}

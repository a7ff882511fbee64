package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Since          string            `json:"since"`
	EventCounts    map[EventType]int `json:"event_counts"`
	TasksAdded     int               `json:"tasks_added"`
	TasksCompleted int               `json:"tasks_completed"`
	TasksRemoved   int               `json:"tasks_removed"`
	TasksRestored  int               `json:"tasks_restored"`
	TasksPurged    int               `json:"tasks_purged"`
	FilterUsage    map[string]int    `json:"filter_usage"`
}

// CalculateStats summarises a list of events.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Since:       since.UTC().Format(time.RFC3339),
		EventCounts: make(map[EventType]int),
		FilterUsage: make(map[string]int),
	}

	for _, event := range events {
		stats.EventCounts[event.Type]++

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventTaskAdded:
			stats.TasksAdded++
		case EventTaskChecked:
			stats.TasksCompleted++
		case EventTaskRemoved:
			stats.TasksRemoved++
		case EventTaskRestored:
			stats.TasksRestored++
		case EventTrashEmptied:
			// JSON numbers decode as float64.
			if purged, ok := metadata["purged"].(float64); ok {
				stats.TasksPurged += int(purged)
			}
		case EventFilterChanged:
			if filter, ok := metadata["filter"].(string); ok {
				stats.FilterUsage[filter]++
			}
		}
	}

	return stats, nil
}

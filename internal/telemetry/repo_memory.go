package telemetry

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ca-terumi-k/todo-app-v1/internal/clock"
)

// Repository stores telemetry events
type Repository interface {
	RecordEvent(sessionID string, eventType EventType, metadata EventMetadata) error
	GetEvents(sessionID string, since time.Time, eventTypes []EventType) ([]Event, error)
	ForgetSession(sessionID string) error
	Clear() error
}

// MemoryRepository stores events in memory. When limit is positive the
// oldest events are dropped once it is reached.
type MemoryRepository struct {
	mu     sync.RWMutex
	events []Event
	nextID int
	limit  int
	clock  clock.Clock
}

func NewMemoryRepository(limit int, c clock.Clock) *MemoryRepository {
	return &MemoryRepository{
		events: make([]Event, 0),
		nextID: 1,
		limit:  limit,
		clock:  clock.OrReal(c),
	}
}

func (r *MemoryRepository) RecordEvent(sessionID string, eventType EventType, metadata EventMetadata) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	event := Event{
		ID:        r.nextID,
		SessionID: sessionID,
		Type:      eventType,
		Timestamp: r.clock.Now(),
		Metadata:  string(metadataJSON),
	}

	r.events = append(r.events, event)
	r.nextID++

	if r.limit > 0 && len(r.events) > r.limit {
		drop := len(r.events) - r.limit
		r.events = append(r.events[:0:0], r.events[drop:]...)
	}

	return nil
}

// GetEvents returns events of one session (all sessions when sessionID is
// empty) at or after since, optionally restricted to eventTypes.
func (r *MemoryRepository) GetEvents(sessionID string, since time.Time, eventTypes []EventType) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typeFilter := make(map[EventType]bool)
	for _, t := range eventTypes {
		typeFilter[t] = true
	}

	result := make([]Event, 0)
	for _, event := range r.events {
		if sessionID != "" && event.SessionID != sessionID {
			continue
		}
		if event.Timestamp.Before(since) {
			continue
		}
		if len(eventTypes) > 0 && !typeFilter[event.Type] {
			continue
		}
		result = append(result, event)
	}

	return result, nil
}

func (r *MemoryRepository) ForgetSession(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	for _, event := range r.events {
		if event.SessionID != sessionID {
			kept = append(kept, event)
		}
	}
	r.events = kept
	return nil
}

func (r *MemoryRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = make([]Event, 0)
	r.nextID = 1

	return nil
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

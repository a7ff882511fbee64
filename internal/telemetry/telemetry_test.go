package telemetry

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-terumi-k/todo-app-v1/internal/clock"
	"github.com/ca-terumi-k/todo-app-v1/internal/todo"
)

var start = time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)

func TestRecorder_RecordsAppliedChanges(t *testing.T) {
	c := clock.NewFakeClock(start)
	repo := NewMemoryRepository(0, c)
	store := todo.NewStore(c)
	store.Subscribe(Recorder(repo, "s1", log.New(io.Discard)))

	milk, _ := store.Add("buy milk")
	dog, _ := store.Add("walk dog")
	store.Add("")
	store.SetChecked(milk.ID, true)
	store.SetChecked(404, true)
	store.SetRemoved(dog.ID, true)
	store.SetFilter(todo.FilterRemoved)
	store.EmptyTrash()
	store.EmptyTrash()

	events, err := repo.GetEvents("s1", time.Time{}, nil)
	require.NoError(t, err)

	var types []EventType
	for _, e := range events {
		types = append(types, e.Type)
		assert.Equal(t, "s1", e.SessionID)
		assert.Equal(t, start, e.Timestamp)
	}
	assert.Equal(t, []EventType{
		EventTaskAdded, EventTaskAdded, EventTaskChecked,
		EventTaskRemoved, EventFilterChanged, EventTrashEmptied,
	}, types)

	stats, err := CalculateStats(events, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TasksAdded)
	assert.Equal(t, 1, stats.TasksCompleted)
	assert.Equal(t, 1, stats.TasksRemoved)
	assert.Equal(t, 1, stats.TasksPurged)
	assert.Equal(t, map[string]int{"removed": 1}, stats.FilterUsage)
}

func TestMemoryRepository_FiltersAndLimit(t *testing.T) {
	c := clock.NewFakeClock(start)
	repo := NewMemoryRepository(3, c)

	require.NoError(t, repo.RecordEvent("a", EventTaskAdded, nil))
	c.Advance(time.Minute)
	require.NoError(t, repo.RecordEvent("b", EventTaskAdded, nil))
	c.Advance(time.Minute)
	require.NoError(t, repo.RecordEvent("a", EventTaskChecked, nil))
	c.Advance(time.Minute)
	require.NoError(t, repo.RecordEvent("a", EventTaskRemoved, nil))

	assert.Equal(t, 3, repo.Len())

	all, err := repo.GetEvents("", time.Time{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, all[0].ID)

	onlyA, err := repo.GetEvents("a", start.Add(2*time.Minute), []EventType{EventTaskRemoved})
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, EventTaskRemoved, onlyA[0].Type)

	require.NoError(t, repo.ForgetSession("a"))
	assert.Equal(t, 1, repo.Len())

	require.NoError(t, repo.Clear())
	assert.Equal(t, 0, repo.Len())
}

func TestHandler_StatsScopedToSession(t *testing.T) {
	repo := NewMemoryRepository(0, clock.NewFakeClock(start))
	require.NoError(t, repo.RecordEvent("mine", EventTaskAdded, EventMetadata{"task_id": 1}))
	require.NoError(t, repo.RecordEvent("theirs", EventTaskAdded, EventMetadata{"task_id": 1}))

	h := NewHandler(repo)
	h.SetSessionResolver(func(*http.Request) string { return "mine" })

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, 1, out.TasksAdded)

	rec = httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/api/stats?since=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

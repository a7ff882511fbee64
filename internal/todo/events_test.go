package todo

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sseEvent struct {
	name string
	data string
}

func readEvent(t *testing.T, sc *bufio.Scanner) sseEvent {
	t.Helper()
	var ev sseEvent
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if ev.name != "" {
				return ev
			}
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		}
	}
	require.NoError(t, sc.Err())
	t.Fatal("stream closed before an event arrived")
	return ev
}

func TestEvents_StreamsSnapshotThenChanges(t *testing.T) {
	s, _ := newTestStore()
	s.Add("existing")

	h := NewHandler(s)
	srv := httptest.NewServer(http.HandlerFunc(h.Events))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))
	sc := bufio.NewScanner(res.Body)

	first := readEvent(t, sc)
	assert.Equal(t, "snapshot", first.name)
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(first.data), &snap))
	assert.Equal(t, []string{"existing"}, values(snap.Tasks))

	s.Add("fresh")

	next := readEvent(t, sc)
	assert.Equal(t, "change", next.name)
	var ch Change
	require.NoError(t, json.Unmarshal([]byte(next.data), &ch))
	assert.Equal(t, ChangeAdded, ch.Kind)
	assert.Equal(t, []string{"fresh", "existing"}, values(ch.Snapshot.Tasks))
}

func TestEvents_UnsubscribesWhenClientLeaves(t *testing.T) {
	s, _ := newTestStore()
	h := NewHandler(s)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/todos/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.Events(rec, req)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not return after cancel")
	}

	s.mu.Lock()
	n := len(s.listeners)
	s.mu.Unlock()
	assert.Zero(t, n)
}

package page

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-terumi-k/todo-app-v1/internal/clock"
	"github.com/ca-terumi-k/todo-app-v1/internal/todo"
)

func render(t *testing.T, s *todo.Store) string {
	t.Helper()
	var buf bytes.Buffer
	err := Index(IndexData{
		Title:       "Todo",
		DefaultText: "今日の用事",
		State:       s.Snapshot(),
	}).Render(context.Background(), &buf)
	require.NoError(t, err)
	return buf.String()
}

func newStore() *todo.Store {
	return todo.NewStore(clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
}

func TestIndex_AllShowsAddForm(t *testing.T) {
	s := newStore()
	milk, _ := s.Add("buy milk")
	s.Add(`<script>alert("x")</script>`)
	s.SetChecked(milk.ID, true)

	html := render(t, s)

	assert.Contains(t, html, `action="/todos"`)
	assert.Contains(t, html, `placeholder="今日の用事"`)
	assert.NotContains(t, html, "empty-trash")
	assert.NotContains(t, html, "<script>alert")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, `<option value="all" selected>`)
	// checked task: text locked, toggle still live
	assert.Contains(t, html, `value="buy milk" disabled`)
	assert.Contains(t, html, `aria-checked="true">`)
}

func TestIndex_CheckedHidesAddForm(t *testing.T) {
	s := newStore()
	s.SetFilter(todo.FilterChecked)

	html := render(t, s)

	assert.NotContains(t, html, `action="/todos"`)
	assert.NotContains(t, html, "empty-trash")
	assert.Contains(t, html, "Nothing here.")
}

func TestIndex_TrashShowsEmptyButton(t *testing.T) {
	s := newStore()
	s.SetFilter(todo.FilterRemoved)

	html := render(t, s)
	assert.Contains(t, html, `id="empty-trash" disabled`)
	assert.NotContains(t, html, `action="/todos"`)

	dog, _ := s.Add("walk dog")
	s.SetRemoved(dog.ID, true)

	html = render(t, s)
	assert.Contains(t, html, `id="empty-trash">`)
	assert.Contains(t, html, "Restore")
	assert.Contains(t, html, `value="walk dog" disabled`)
	assert.Contains(t, html, `aria-checked="false" disabled`)
	assert.Contains(t, html, `name="removed" value="false"`)
}

func TestRow_Unchecked(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Row(todo.Task{ID: 3, Value: "read"}).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, `action="/todos/3/toggle"`)
	assert.Contains(t, html, `name="checked" value="true"`)
	assert.Contains(t, html, `value="read">`)
	assert.Contains(t, html, "Delete")
}

func TestRow_CheckedInTrash(t *testing.T) {
	var buf bytes.Buffer
	task := todo.Task{ID: 7, Value: "a & b", Checked: true, Removed: true}
	require.NoError(t, Row(task).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, `<li class="task checked removed" data-id="7">`)
	assert.Contains(t, html, `aria-checked="true" disabled>✓</button>`)
	assert.Contains(t, html, `value="a &amp; b" disabled>`)
	assert.Contains(t, html, `action="/todos/7/remove"`)
}

func TestIndex_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := Index(IndexData{State: newStore().Snapshot()}).Render(ctx, &buf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

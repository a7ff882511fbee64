package tui

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-terumi-k/todo-app-v1/internal/clock"
	"github.com/ca-terumi-k/todo-app-v1/internal/todo"
)

func newModel(t *testing.T) (*tuiModel, *todo.Store) {
	t.Helper()
	store := todo.NewStore(clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	m := newTUIModel(store, &tuiConfig{title: "Todo", defaultText: "今日の用事", logger: log.New(io.Discard)})
	return m, store
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m *tuiModel, keys ...string) {
	for _, k := range keys {
		m.Update(key(k))
	}
}

func values(tasks []todo.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Value)
	}
	return out
}

func TestTUI_StartsOnAddInput(t *testing.T) {
	m, _ := newModel(t)

	assert.Equal(t, focusAdd, m.focus)
	assert.Equal(t, todo.FilterAll, m.snap.Filter)
	assert.Contains(t, m.View(), "Nothing here.")
}

func TestTUI_EmptyInputIsIgnored(t *testing.T) {
	m, store := newModel(t)

	press(m, "enter")
	assert.Equal(t, 0, store.Len())
}

func TestTUI_Scenario(t *testing.T) {
	m, store := newModel(t)

	press(m, "buy milk", "enter", "walk dog", "enter")
	assert.Equal(t, []string{"walk dog", "buy milk"}, values(store.Visible()))

	// check "buy milk"
	press(m, "esc", "down", "space")
	milk, ok := store.Get(m.snap.Tasks[1].ID)
	require.True(t, ok)
	assert.True(t, milk.Checked)

	// unchecked shows only "walk dog"
	press(m, "tab", "tab")
	require.Equal(t, todo.FilterUnchecked, store.Filter())
	assert.Equal(t, []string{"walk dog"}, values(m.snap.Tasks))

	// trash "walk dog", back to all
	press(m, "esc", "d", "shift+tab", "shift+tab")
	require.Equal(t, todo.FilterAll, store.Filter())
	assert.Equal(t, []string{"buy milk"}, values(m.snap.Tasks))

	// empty the trash
	press(m, "tab", "tab", "tab")
	require.Equal(t, todo.FilterRemoved, store.Filter())
	assert.Equal(t, focusList, m.focus)
	assert.Equal(t, []string{"walk dog"}, values(m.snap.Tasks))
	press(m, "x")

	assert.Equal(t, []string{"buy milk"}, values(store.All()))
	assert.Empty(t, m.snap.Tasks)
}

func TestTUI_NoAddInputUnderCheckedOrTrash(t *testing.T) {
	m, store := newModel(t)

	press(m, "tab")
	assert.Equal(t, todo.FilterChecked, store.Filter())
	assert.Equal(t, focusList, m.focus)

	press(m, "a", "milk", "enter")
	assert.Equal(t, 0, store.Len())
	assert.NotContains(t, m.View(), "enter add")

	press(m, "tab", "tab")
	assert.Equal(t, todo.FilterRemoved, store.Filter())
	view := m.View()
	assert.Contains(t, view, "empty trash")
	assert.Contains(t, view, "Trash 0")
}

func TestTUI_EditLandsAsTyped(t *testing.T) {
	m, store := newModel(t)
	press(m, "buy milk", "enter", "esc")

	press(m, "e", "!")
	assert.Equal(t, focusEdit, m.focus)
	assert.Equal(t, []string{"buy milk!"}, values(store.All()))

	press(m, "enter")
	assert.Equal(t, focusList, m.focus)
}

func TestTUI_CursorKeysDoNotEdit(t *testing.T) {
	m, store := newModel(t)
	press(m, "buy milk", "enter", "esc")

	var edits int
	store.Subscribe(func(c todo.Change) {
		if c.Kind == todo.ChangeEdited {
			edits++
		}
	})

	press(m, "e", "left", "left", "home")
	assert.Equal(t, focusEdit, m.focus)
	assert.Zero(t, edits)

	press(m, "backspace")
	assert.Zero(t, edits, "backspace at the start changes nothing")

	press(m, "!")
	assert.Equal(t, 1, edits)
	assert.Equal(t, []string{"!buy milk"}, values(store.All()))
}

func TestTUI_CheckedAndRemovedAreLocked(t *testing.T) {
	m, store := newModel(t)
	press(m, "buy milk", "enter", "esc", "space")

	press(m, "e")
	assert.Equal(t, focusList, m.focus, "checked tasks are not editable")

	press(m, "d", "tab", "tab", "tab", "space")
	require.Equal(t, todo.FilterRemoved, store.Filter())
	task := store.All()[0]
	assert.True(t, task.Removed)
	assert.True(t, task.Checked, "removed tasks cannot be toggled")

	press(m, "d")
	assert.False(t, store.All()[0].Removed)
}

func TestTUI_Quit(t *testing.T) {
	m, _ := newModel(t)

	_, cmd := m.Update(key("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	press(m, "esc")
	_, cmd = m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

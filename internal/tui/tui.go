// Package tui is the terminal surface over one to-do list.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/ca-terumi-k/todo-app-v1/internal/todo"
)

// Option configures the terminal surface.
type Option func(*tuiConfig)

type tuiConfig struct {
	title       string
	defaultText string
	logger      *log.Logger
	programOpts []tea.ProgramOption
}

func WithTitle(title string) Option {
	return func(c *tuiConfig) { c.title = title }
}

// WithDefaultText sets the placeholder of the add input.
func WithDefaultText(text string) Option {
	return func(c *tuiConfig) { c.defaultText = text }
}

// WithLogger sets where the surface logs. It must not be the terminal.
func WithLogger(l *log.Logger) Option {
	return func(c *tuiConfig) { c.logger = l }
}

// WithProgramOptions passes extra options to the bubbletea program.
func WithProgramOptions(opts ...tea.ProgramOption) Option {
	return func(c *tuiConfig) { c.programOpts = append(c.programOpts, opts...) }
}

// Run draws store full-screen until the user quits or ctx ends.
func Run(ctx context.Context, store *todo.Store, opts ...Option) error {
	c := &tuiConfig{title: "Todo"}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}

	model := newTUIModel(store, c)
	programOpts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, c.programOpts...)
	program := tea.NewProgram(model, programOpts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

type focus int

const (
	focusList focus = iota
	focusAdd
	focusEdit
)

type tuiModel struct {
	store  *todo.Store
	cfg    *tuiConfig
	logger *log.Logger

	snap    todo.Snapshot
	cursor  int
	focus   focus
	editing int // task id under edit
	input   textinput.Model
	width   int
}

func newTUIModel(store *todo.Store, cfg *tuiConfig) *tuiModel {
	ti := textinput.New()
	ti.Prompt = "+ "
	ti.Placeholder = cfg.defaultText
	ti.CharLimit = 256

	m := &tuiModel{
		store:  store,
		cfg:    cfg,
		logger: cfg.logger,
		input:  ti,
	}
	m.refresh()
	if m.snap.Filter.AllowsAdd() {
		m.focusAdd()
	}
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.focus {
		case focusAdd:
			return m.updateAdd(msg)
		case focusEdit:
			return m.updateEdit(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *tuiModel) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if t, ok := m.store.Add(m.input.Value()); ok {
			m.logger.Debug("task_added", "id", t.ID)
			m.input.Reset()
			m.refresh()
			m.cursor = 0
		}
		return m, nil
	case "esc", "down":
		m.focusList()
		return m, nil
	case "tab":
		m.cycleFilter(1)
		return m, nil
	case "shift+tab":
		m.cycleFilter(-1)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.focusList()
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// edits land as they are typed; cursor moves are not edits
	if v := m.input.Value(); v != before {
		m.store.Edit(m.editing, v)
		m.refresh()
	}
	return m, cmd
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else if m.snap.Filter.AllowsAdd() {
			m.focusAdd()
		}
	case "down", "j":
		if m.cursor < len(m.snap.Tasks)-1 {
			m.cursor++
		}
	case "a", "i":
		if m.snap.Filter.AllowsAdd() {
			m.focusAdd()
		}
	case " ":
		if t, ok := m.selected(); ok && t.Toggleable() {
			m.store.SetChecked(t.ID, !t.Checked)
			m.refresh()
		}
	case "d":
		if t, ok := m.selected(); ok {
			m.store.SetRemoved(t.ID, !t.Removed)
			m.refresh()
		}
	case "e":
		if t, ok := m.selected(); ok && t.Editable() {
			m.focusEditOn(t)
		}
	case "x":
		if m.snap.Filter == todo.FilterRemoved && m.snap.CanEmptyTrash {
			m.store.EmptyTrash()
			m.refresh()
		}
	case "tab":
		m.cycleFilter(1)
	case "shift+tab":
		m.cycleFilter(-1)
	}
	return m, nil
}

func (m *tuiModel) refresh() {
	m.snap = m.store.Snapshot()
	if m.cursor >= len(m.snap.Tasks) {
		m.cursor = len(m.snap.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) selected() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Tasks) {
		return todo.Task{}, false
	}
	return m.snap.Tasks[m.cursor], true
}

func (m *tuiModel) cycleFilter(step int) {
	filters := todo.Filters()
	next := (int(m.snap.Filter) + step + len(filters)) % len(filters)
	m.store.SetFilter(filters[next])
	m.cursor = 0
	m.refresh()
	if m.snap.Filter.AllowsAdd() {
		m.focusAdd()
	} else {
		m.focusList()
	}
}

func (m *tuiModel) focusAdd() {
	m.focus = focusAdd
	m.input.SetValue("")
	m.input.Placeholder = m.cfg.defaultText
	m.input.Prompt = "+ "
	m.input.Focus()
}

func (m *tuiModel) focusEditOn(t todo.Task) {
	m.focus = focusEdit
	m.editing = t.ID
	m.input.Prompt = "> "
	m.input.Placeholder = ""
	m.input.SetValue(t.Value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *tuiModel) focusList() {
	m.focus = focusList
	m.editing = 0
	m.input.SetValue("")
	m.input.Blur()
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("243"))
	activeTab     = tabStyle.Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	checkedStyle  = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("243"))
	removedStyle  = lipgloss.NewStyle().Faint(true)
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (m *tuiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.cfg.title))
	b.WriteString("\n\n")

	tabs := make([]string, 0, len(todo.Filters()))
	for _, f := range todo.Filters() {
		label := fmt.Sprintf("%s %d", f.Label(), m.snap.Counts.Of(f))
		if f == m.snap.Filter {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	if m.snap.Filter.AllowsAdd() {
		if m.focus == focusAdd {
			b.WriteString(m.input.View())
		} else {
			b.WriteString(disabledStyle.Render("+ " + m.cfg.defaultText))
		}
		b.WriteString("\n\n")
	}
	if m.snap.Filter == todo.FilterRemoved {
		label := "[x] empty trash"
		if !m.snap.CanEmptyTrash {
			label = disabledStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString("\n\n")
	}

	if len(m.snap.Tasks) == 0 {
		b.WriteString(emptyStyle.Render("Nothing here."))
		b.WriteString("\n")
	}
	for i, t := range m.snap.Tasks {
		b.WriteString(m.renderRow(i, t))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m *tuiModel) renderRow(i int, t todo.Task) string {
	pointer := "  "
	if i == m.cursor && m.focus != focusAdd {
		pointer = cursorStyle.Render("> ")
	}
	box := "[ ]"
	if t.Checked {
		box = "[x]"
	}

	text := t.Value
	if m.focus == focusEdit && t.ID == m.editing {
		return pointer + box + " " + m.input.View()
	}
	switch {
	case t.Removed:
		text = removedStyle.Render(text)
	case t.Checked:
		text = checkedStyle.Render(text)
	}
	return pointer + box + " " + text
}

func (m *tuiModel) help() string {
	switch m.focus {
	case focusAdd:
		return "enter add • esc/↓ list • tab filter • ctrl+c quit"
	case focusEdit:
		return "enter/esc done"
	}
	parts := []string{"↑/↓ move", "space check", "d delete/restore", "e edit"}
	if m.snap.Filter == todo.FilterRemoved {
		parts = append(parts, "x empty trash")
	}
	if m.snap.Filter.AllowsAdd() {
		parts = append(parts, "a add")
	}
	parts = append(parts, "tab filter", "q quit")
	return strings.Join(parts, " • ")
}

package todo

import (
	"sync"

	"github.com/ca-terumi-k/todo-app-v1/internal/clock"
)

type ChangeKind string

const (
	ChangeAdded        ChangeKind = "added"
	ChangeEdited       ChangeKind = "edited"
	ChangeChecked      ChangeKind = "checked"
	ChangeUnchecked    ChangeKind = "unchecked"
	ChangeRemoved      ChangeKind = "removed"
	ChangeRestored     ChangeKind = "restored"
	ChangeTrashEmptied ChangeKind = "trash_emptied"
	ChangeFilter       ChangeKind = "filter_changed"
)

// Change is delivered to listeners after every mutation.
type Change struct {
	Kind ChangeKind `json:"kind"`
	// TaskID is zero for list-wide changes.
	TaskID int `json:"taskId,omitempty"`
	// Applied is false when the operation targeted an unknown id.
	Applied bool `json:"applied"`
	// Purged counts tasks dropped by an empty-trash.
	Purged   int      `json:"purged,omitempty"`
	Snapshot Snapshot `json:"snapshot"`
}

type Listener func(Change)

type listenerEntry struct {
	id int
	fn Listener
}

// Store owns one task list and its active filter. All methods are safe
// for concurrent use; every operation is atomic with respect to the others.
type Store struct {
	mu     sync.Mutex
	clock  clock.Clock
	nextID int
	tasks  []Task // newest first
	filter Filter

	listeners      []listenerEntry
	nextListenerID int
}

func NewStore(c clock.Clock) *Store {
	return &Store{
		clock:  clock.OrReal(c),
		tasks:  []Task{},
		filter: FilterAll,
	}
}

// Subscribe registers fn for change notifications. Listeners run on the
// mutating goroutine, after the store lock is released, in subscription
// order. The returned func unsubscribes.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextListenerID++
	id := s.nextListenerID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Add prepends a new task. An empty value is silently rejected and
// nobody is notified.
func (s *Store) Add(value string) (Task, bool) {
	s.mu.Lock()
	t, ok := newTask(s.nextID+1, value, s.clock.Now())
	if !ok {
		s.mu.Unlock()
		return Task{}, false
	}
	s.nextID = t.ID

	tasks := make([]Task, 0, len(s.tasks)+1)
	tasks = append(tasks, t)
	s.tasks = append(tasks, s.tasks...)

	ch := Change{Kind: ChangeAdded, TaskID: t.ID, Applied: true}
	s.finishLocked(&ch)
	return t, true
}

// Edit replaces the text of task id. Any string is accepted, including "".
func (s *Store) Edit(id int, value string) {
	s.update(id, ChangeEdited, func(t *Task) { t.Value = value })
}

func (s *Store) SetChecked(id int, checked bool) {
	kind := ChangeUnchecked
	if checked {
		kind = ChangeChecked
	}
	s.update(id, kind, func(t *Task) { t.Checked = checked })
}

// SetRemoved moves task id into the trash, or restores it.
func (s *Store) SetRemoved(id int, removed bool) {
	kind := ChangeRestored
	if removed {
		kind = ChangeRemoved
	}
	s.update(id, kind, func(t *Task) { t.Removed = removed })
}

// EmptyTrash drops every removed task. Survivors keep their order.
func (s *Store) EmptyTrash() {
	s.mu.Lock()
	kept := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Removed {
			kept = append(kept, t)
		}
	}
	purged := len(s.tasks) - len(kept)
	s.tasks = kept

	ch := Change{Kind: ChangeTrashEmptied, Applied: purged > 0, Purged: purged}
	s.finishLocked(&ch)
}

// SetFilter replaces the active filter. Values outside the four known
// filters are ignored.
func (s *Store) SetFilter(f Filter) {
	if !f.Valid() {
		return
	}
	s.mu.Lock()
	s.filter = f
	ch := Change{Kind: ChangeFilter, Applied: true}
	s.finishLocked(&ch)
}

func (s *Store) Filter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Visible returns the tasks matching the active filter, in list order.
func (s *Store) Visible() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterTasks(s.tasks, s.filter)
}

// All returns a copy of the whole list, newest first.
func (s *Store) All() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Get(id int) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Store) TrashCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countsOf(s.tasks).Removed
}

// CanEmptyTrash reports whether the empty-trash control should be enabled.
func (s *Store) CanEmptyTrash() bool {
	return s.TrashCount() > 0
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotOf(s.tasks, s.filter)
}

// SnapshotFor renders the list under f without touching the active filter.
func (s *Store) SnapshotFor(f Filter) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotOf(s.tasks, f)
}

func (s *Store) update(id int, kind ChangeKind, apply func(*Task)) {
	s.mu.Lock()
	ch := Change{Kind: kind, TaskID: id}
	if i := s.indexLocked(id); i >= 0 {
		apply(&s.tasks[i])
		ch.Applied = true
	}
	s.finishLocked(&ch)
}

func (s *Store) indexLocked(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// finishLocked fills in the snapshot, releases the lock and notifies.
func (s *Store) finishLocked(ch *Change) {
	ch.Snapshot = snapshotOf(s.tasks, s.filter)
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(*ch)
	}
}

func filterTasks(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

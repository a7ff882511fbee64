package todo

import "time"

type Task struct {
	ID        int       `json:"id"`
	Value     string    `json:"value"`
	Checked   bool      `json:"checked"`
	Removed   bool      `json:"removed"`
	CreatedAt time.Time `json:"createdAt"`
}

// newTask builds a fresh task. It reports false for an empty value.
func newTask(id int, value string, now time.Time) (Task, bool) {
	if value == "" {
		return Task{}, false
	}
	return Task{
		ID:        id,
		Value:     value,
		Checked:   false,
		Removed:   false,
		CreatedAt: now,
	}, true
}

// InTrash reports whether the task has been soft-deleted.
func (t Task) InTrash() bool {
	return t.Removed
}

// Editable reports whether a surface should let the user change the text.
func (t Task) Editable() bool {
	return !t.Checked && !t.Removed
}

// Toggleable reports whether a surface should let the user flip Checked.
func (t Task) Toggleable() bool {
	return !t.Removed
}

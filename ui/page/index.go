// Package page renders the server-side HTML of the to-do list.
package page

//go:generate templ generate

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"github.com/ca-terumi-k/todo-app-v1/internal/todo"
)

type IndexData struct {
	Title       string
	DefaultText string
	State       todo.Snapshot
}

func optionLabel(f todo.Filter, c todo.Counts) string {
	return fmt.Sprintf("%s (%d)", f.Label(), c.Of(f))
}

// taskURL is the form target of one task action.
func taskURL(id int, action string) templ.SafeURL {
	return templ.SafeURL("/todos/" + strconv.Itoa(id) + "/" + action)
}

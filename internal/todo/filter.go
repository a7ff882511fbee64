package todo

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownFilter = errors.New("unknown filter")

// Filter selects which subset of the list is displayed.
// The zero value is FilterAll.
type Filter uint8

const (
	FilterAll Filter = iota
	FilterChecked
	FilterUnchecked
	FilterRemoved
)

var filterNames = [...]string{
	FilterAll:       "all",
	FilterChecked:   "checked",
	FilterUnchecked: "unchecked",
	FilterRemoved:   "removed",
}

var filterLabels = [...]string{
	FilterAll:       "All tasks",
	FilterChecked:   "Completed",
	FilterUnchecked: "Current",
	FilterRemoved:   "Trash",
}

// Filters lists every filter in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterChecked, FilterUnchecked, FilterRemoved}
}

func ParseFilter(s string) (Filter, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range filterNames {
		if n == name {
			return Filter(i), nil
		}
	}
	return FilterAll, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

func (f Filter) Valid() bool {
	return int(f) < len(filterNames)
}

func (f Filter) String() string {
	if !f.Valid() {
		return fmt.Sprintf("filter(%d)", uint8(f))
	}
	return filterNames[f]
}

// Label is the human-facing name shown in filter selectors.
func (f Filter) Label() string {
	if !f.Valid() {
		return f.String()
	}
	return filterLabels[f]
}

// AllowsAdd reports whether the add input is offered under this filter.
// Completed and trash views never show it.
func (f Filter) AllowsAdd() bool {
	return f == FilterAll || f == FilterUnchecked
}

func (f Filter) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFilter, uint8(f))
	}
	return []byte(filterNames[f]), nil
}

func (f *Filter) UnmarshalText(b []byte) error {
	parsed, err := ParseFilter(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Matches reports whether t is shown under f. Removed tasks only ever
// appear under FilterRemoved.
func Matches(t Task, f Filter) bool {
	switch f {
	case FilterAll:
		return !t.Removed
	case FilterChecked:
		return t.Checked && !t.Removed
	case FilterUnchecked:
		return !t.Checked && !t.Removed
	case FilterRemoved:
		return t.Removed
	default:
		// Out-of-range values cannot come from ParseFilter; show everything
		// rather than hide tasks behind a corrupt value.
		return true
	}
}

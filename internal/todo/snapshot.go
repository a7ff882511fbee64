package todo

// Counts holds how many tasks each filter would show.
type Counts struct {
	All       int `json:"all"`
	Checked   int `json:"checked"`
	Unchecked int `json:"unchecked"`
	Removed   int `json:"removed"`
	Total     int `json:"total"`
}

// Of returns the count shown next to filter f.
func (c Counts) Of(f Filter) int {
	switch f {
	case FilterAll:
		return c.All
	case FilterChecked:
		return c.Checked
	case FilterUnchecked:
		return c.Unchecked
	case FilterRemoved:
		return c.Removed
	default:
		return c.Total
	}
}

// Snapshot is everything a rendering surface needs to draw the list.
type Snapshot struct {
	Filter        Filter `json:"filter"`
	Tasks         []Task `json:"tasks"`
	Counts        Counts `json:"counts"`
	CanEmptyTrash bool   `json:"canEmptyTrash"`
}

func countsOf(tasks []Task) Counts {
	var c Counts
	c.Total = len(tasks)
	for _, t := range tasks {
		if t.Removed {
			c.Removed++
			continue
		}
		c.All++
		if t.Checked {
			c.Checked++
		} else {
			c.Unchecked++
		}
	}
	return c
}

func snapshotOf(tasks []Task, f Filter) Snapshot {
	c := countsOf(tasks)
	return Snapshot{
		Filter:        f,
		Tasks:         filterTasks(tasks, f),
		Counts:        c,
		CanEmptyTrash: c.Removed > 0,
	}
}

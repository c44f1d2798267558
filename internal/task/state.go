package task

import (
	"fmt"
	"math"
	"time"
)

// State is the process-wide task state.
type State struct {
	Tasks   []Task
	Filter  Filter
	Loading bool
	Error   string

	// Revision increases every time Tasks changes.
	Revision uint64
}

func NewState() State {
	return State{Filter: FilterAll}
}

// FilteredTasks returns the tasks visible under the current filter in
// insertion order.
func (s State) FilteredTasks() []Task {
	out := make([]Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		if s.Filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s State) Find(id int64) (Task, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Tasks[i], true
	}
	return Task{}, false
}

func (s State) indexOf(id int64) int {
	for i, t := range s.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Stats is derived from the task list and never stored.
type Stats struct {
	Total     int
	Completed int
	Active    int
	Overdue   int

	// ByPriority counts active tasks per priority.
	ByPriority map[Priority]int
}

// Stats computes aggregate counts against now.
func (s State) Stats(now time.Time) Stats {
	st := Stats{
		Total:      len(s.Tasks),
		ByPriority: make(map[Priority]int, len(Priorities)),
	}
	for _, t := range s.Tasks {
		if t.Completed() {
			st.Completed++
			continue
		}
		st.ByPriority[t.Priority]++
		if t.Overdue(now) {
			st.Overdue++
		}
	}
	st.Active = st.Total - st.Completed
	return st
}

// CompletionRate is the rounded percentage of completed tasks.
func (s Stats) CompletionRate() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
}

// Insight is a one-line summary of the list, or "" when it is empty.
func (s Stats) Insight() string {
	switch {
	case s.Total == 0:
		return ""
	case s.Overdue > 0:
		return fmt.Sprintf("%d %s overdue", s.Overdue, plural(s.Overdue, "task"))
	case s.Active == 0:
		return "All tasks completed! Great work!"
	}
	return fmt.Sprintf("%d active %s remaining", s.Active, plural(s.Active, "task"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

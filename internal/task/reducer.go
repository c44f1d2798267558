package task

import (
	"slices"
	"time"
)

// Action is a state transition request.
type Action interface {
	action()
}

type (
	Add struct {
		Task NewTask
	}
	Toggle struct {
		ID int64
	}
	Delete struct {
		ID int64
	}
	Update struct {
		ID    int64
		Patch Patch
	}
	SetFilter struct {
		Filter Filter
	}
	LoadTasks struct {
		Tasks []Task
	}
	SetLoading struct {
		Loading bool
	}
	SetError struct {
		Message string
	}
	ClearCompleted struct{}
)

func (Add) action()            {}
func (Toggle) action()         {}
func (Delete) action()         {}
func (Update) action()         {}
func (SetFilter) action()      {}
func (LoadTasks) action()      {}
func (SetLoading) action()     {}
func (SetError) action()       {}
func (ClearCompleted) action() {}

// Clock returns the current time.
type Clock func() time.Time

// Reducer applies actions to a State. It never mutates its input: every
// change to the task list produces a fresh slice.
type Reducer struct {
	clock Clock
	ids   IDSource
}

func NewReducer(clock Clock, ids IDSource) *Reducer {
	if clock == nil {
		clock = time.Now
	}
	if ids == nil {
		ids = NewClockIDs(clock)
	}
	return &Reducer{clock: clock, ids: ids}
}

// Now returns the reducer clock at millisecond precision in UTC, the
// precision timestamps are persisted at.
func (r *Reducer) Now() time.Time {
	return r.clock().UTC().Truncate(time.Millisecond)
}

// Reduce returns the state after applying a. Unmatched IDs and unknown
// actions return s unchanged.
func (r *Reducer) Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Add:
		return r.add(s, a.Task)

	case Toggle:
		i := s.indexOf(a.ID)
		if i < 0 {
			return s
		}
		return s.withTasks(replaceAt(s.Tasks, i, r.toggled(s.Tasks[i])))

	case Delete:
		i := s.indexOf(a.ID)
		if i < 0 {
			return s
		}
		return s.withTasks(slices.Delete(slices.Clone(s.Tasks), i, i+1))

	case Update:
		i := s.indexOf(a.ID)
		if i < 0 {
			return s
		}
		return s.withTasks(replaceAt(s.Tasks, i, r.patched(s.Tasks[i], a.Patch)))

	case SetFilter:
		s.Filter = a.Filter
		return s

	case LoadTasks:
		s = s.withTasks(slices.Clone(a.Tasks))
		s.Loading = false
		return s

	case SetLoading:
		s.Loading = a.Loading
		return s

	case SetError:
		s.Error = a.Message
		s.Loading = false
		return s

	case ClearCompleted:
		if !slices.ContainsFunc(s.Tasks, Task.Completed) {
			return s
		}
		kept := make([]Task, 0, len(s.Tasks))
		for _, t := range s.Tasks {
			if !t.Completed() {
				kept = append(kept, t)
			}
		}
		return s.withTasks(kept)
	}
	return s
}

func (r *Reducer) add(s State, nt NewTask) State {
	now := r.Now()
	t := Task{
		ID:        r.uniqueID(s),
		Title:     nt.Title,
		Status:    nt.Status,
		Priority:  nt.Priority,
		DueDate:   nt.DueDate,
		CreatedAt: now,
	}
	if t.Status == "" {
		t.Status = StatusNotStarted
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Completed() {
		t.CompletedAt = &now
	}
	tasks := make([]Task, len(s.Tasks), len(s.Tasks)+1)
	copy(tasks, s.Tasks)
	return s.withTasks(append(tasks, t))
}

func (r *Reducer) uniqueID(s State) int64 {
	id := r.ids.NextID()
	for s.indexOf(id) >= 0 {
		id = r.ids.NextID()
	}
	return id
}

// toggled flips completion. Leaving the completed state always goes back to
// not_started.
func (r *Reducer) toggled(t Task) Task {
	if t.Completed() {
		t.Status = StatusNotStarted
		t.CompletedAt = nil
		return t
	}
	now := r.Now()
	t.Status = StatusCompleted
	t.CompletedAt = &now
	return t
}

func (r *Reducer) patched(t Task, p Patch) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Status != nil && *p.Status != t.Status {
		wasCompleted := t.Completed()
		t.Status = *p.Status
		switch {
		case t.Completed() && !wasCompleted:
			now := r.Now()
			t.CompletedAt = &now
		case !t.Completed():
			t.CompletedAt = nil
		}
	}
	return t
}

func (s State) withTasks(tasks []Task) State {
	s.Tasks = tasks
	s.Error = ""
	s.Revision++
	return s
}

func replaceAt(tasks []Task, i int, t Task) []Task {
	out := slices.Clone(tasks)
	out[i] = t
	return out
}

package task

// Store holds the current State and exposes the action interface used by
// the UI and the CLI. It has no side effects beyond its own state.
type Store struct {
	reducer *Reducer
	state   State
}

type Option func(*storeOptions)

type storeOptions struct {
	clock Clock
	ids   IDSource
}

func WithClock(c Clock) Option {
	return func(o *storeOptions) { o.clock = c }
}

func WithIDSource(ids IDSource) Option {
	return func(o *storeOptions) { o.ids = ids }
}

func NewStore(opts ...Option) *Store {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		reducer: NewReducer(o.clock, o.ids),
		state:   NewState(),
	}
}

// Dispatch applies a and reports whether the task list changed.
func (s *Store) Dispatch(a Action) bool {
	before := s.state.Revision
	s.state = s.reducer.Reduce(s.state, a)
	return s.state.Revision != before
}

func (s *Store) State() State { return s.state }

// Tasks returns the full task list. Callers must not modify it.
func (s *Store) Tasks() []Task { return s.state.Tasks }

// Add appends a task and returns its assigned ID.
func (s *Store) Add(nt NewTask) int64 {
	s.Dispatch(Add{Task: nt})
	return s.state.Tasks[len(s.state.Tasks)-1].ID
}

func (s *Store) Toggle(id int64) bool { return s.Dispatch(Toggle{ID: id}) }

func (s *Store) Delete(id int64) bool { return s.Dispatch(Delete{ID: id}) }

func (s *Store) Update(id int64, p Patch) bool {
	return s.Dispatch(Update{ID: id, Patch: p})
}

func (s *Store) SetFilter(f Filter) { s.Dispatch(SetFilter{Filter: f}) }

func (s *Store) LoadTasks(tasks []Task) { s.Dispatch(LoadTasks{Tasks: tasks}) }

func (s *Store) SetLoading(loading bool) { s.Dispatch(SetLoading{Loading: loading}) }

func (s *Store) SetError(msg string) { s.Dispatch(SetError{Message: msg}) }

func (s *Store) ClearCompleted() bool { return s.Dispatch(ClearCompleted{}) }

func (s *Store) FilteredTasks() []Task { return s.state.FilteredTasks() }

// Stats computes statistics against the store clock.
func (s *Store) Stats() Stats {
	return s.state.Stats(s.reducer.clock())
}

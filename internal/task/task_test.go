package task

import (
	"reflect"
	"testing"
	"time"
)

var baseTime = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

// fakeClock advances one second per call so successive timestamps differ.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(time.Second)
	return t
}

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: baseTime}
	return NewStore(WithClock(clk.Now), WithIDSource(&CounterIDs{})), clk
}

func addTask(s *Store, title string, status Status) int64 {
	return s.Add(NewTask{Title: title, Status: status, Priority: PriorityMedium})
}

// ============================================================
// Add
// ============================================================

func TestAddAssignsIDAndCreatedAt(t *testing.T) {
	s, _ := newTestStore(t)
	id := addTask(s, "Buy milk", StatusNotStarted)

	tasks := s.FilteredTasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.ID != id || got.ID == 0 {
		t.Fatalf("unexpected id %d (returned %d)", got.ID, id)
	}
	if got.Title != "Buy milk" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if !got.CreatedAt.Equal(baseTime) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, baseTime)
	}
	if got.Completed() || got.CompletedAt != nil {
		t.Fatal("new not_started task should not be completed")
	}
}

func TestAddAppendsInOrderWithDistinctIDs(t *testing.T) {
	s, _ := newTestStore(t)
	seen := map[int64]bool{}
	for _, title := range []string{"a", "b", "c", "d"} {
		id := addTask(s, title, StatusNotStarted)
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	var titles []string
	for _, tk := range s.Tasks() {
		titles = append(titles, tk.Title)
	}
	if !reflect.DeepEqual(titles, []string{"a", "b", "c", "d"}) {
		t.Fatalf("unexpected order %v", titles)
	}
}

func TestAddSkipsIDsAlreadyInUse(t *testing.T) {
	s, _ := newTestStore(t)
	s.LoadTasks([]Task{
		{ID: 1, Title: "loaded", Status: StatusNotStarted, Priority: PriorityLow, CreatedAt: baseTime},
		{ID: 2, Title: "loaded", Status: StatusNotStarted, Priority: PriorityLow, CreatedAt: baseTime},
	})
	id := addTask(s, "new", StatusNotStarted)
	if id == 1 || id == 2 {
		t.Fatalf("id %d collides with a loaded task", id)
	}
}

func TestAddCompletedSetsCompletedAt(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(s, "done already", StatusCompleted)
	got := s.Tasks()[0]
	if !got.Completed() || got.CompletedAt == nil {
		t.Fatal("task added as completed should carry CompletedAt")
	}
}

func TestAddDefaultsStatusAndPriority(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add(NewTask{Title: "bare"})
	got := s.Tasks()[0]
	if got.Status != StatusNotStarted || got.Priority != PriorityMedium {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestAddClearsError(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetError("boom")
	addTask(s, "x", StatusNotStarted)
	if s.State().Error != "" {
		t.Fatal("add should clear error")
	}
}

func TestCompletedMatchesStatusAfterAdd(t *testing.T) {
	for _, st := range Statuses {
		s, _ := newTestStore(t)
		addTask(s, "t", st)
		got := s.Tasks()[0]
		if got.Completed() != (got.Status == StatusCompleted) {
			t.Fatalf("status %s: completed flag inconsistent", st)
		}
		if (got.CompletedAt != nil) != got.Completed() {
			t.Fatalf("status %s: CompletedAt inconsistent", st)
		}
	}
}

// ============================================================
// Toggle
// ============================================================

func TestToggleCompletesAndReopens(t *testing.T) {
	s, _ := newTestStore(t)
	id := addTask(s, "t", StatusNotStarted)

	if !s.Toggle(id) {
		t.Fatal("toggle should change the list")
	}
	got, _ := s.State().Find(id)
	if !got.Completed() || got.CompletedAt == nil {
		t.Fatal("toggle should complete the task")
	}

	s.Toggle(id)
	got, _ = s.State().Find(id)
	if got.Completed() || got.CompletedAt != nil {
		t.Fatal("second toggle should reopen the task")
	}
}

func TestToggleTwiceRestoresCompletion(t *testing.T) {
	s, _ := newTestStore(t)
	id := addTask(s, "t", StatusNotStarted)
	before, _ := s.State().Find(id)

	s.Toggle(id)
	s.Toggle(id)

	after, _ := s.State().Find(id)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("toggle twice changed task:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestToggleInProgressReturnsToNotStarted(t *testing.T) {
	s, _ := newTestStore(t)
	id := addTask(s, "t", StatusInProgress)
	s.Toggle(id)
	s.Toggle(id)
	got, _ := s.State().Find(id)
	if got.Status != StatusNotStarted {
		t.Fatalf("expected not_started, got %s", got.Status)
	}
}

func TestToggleUnknownIDIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(s, "t", StatusNotStarted)
	before := s.State()

	if s.Toggle(999) {
		t.Fatal("toggle of unknown id should report no change")
	}
	if !reflect.DeepEqual(before, s.State()) {
		t.Fatal("state changed")
	}
}

// ============================================================
// Delete
// ============================================================

func TestDelete(t *testing.T) {
	s, _ := newTestStore(t)
	a := addTask(s, "a", StatusNotStarted)
	b := addTask(s, "b", StatusNotStarted)

	s.Delete(a)
	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0].ID != b {
		t.Fatalf("unexpected tasks after delete: %+v", tasks)
	}
}

func TestDeleteUnknownIDLeavesStateUnchanged(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(s, "a", StatusNotStarted)
	s.SetError("keep me")
	before := s.State()

	if s.Delete(42) {
		t.Fatal("delete of unknown id should report no change")
	}
	after := s.State()
	if !reflect.DeepEqual(before, after) {
		t.Fatal("state changed")
	}
	if &before.Tasks[0] != &after.Tasks[0] {
		t.Fatal("task slice should be the same backing array")
	}
}

func TestDeleteDoesNotMutatePreviousState(t *testing.T) {
	s, _ := newTestStore(t)
	a := addTask(s, "a", StatusNotStarted)
	addTask(s, "b", StatusNotStarted)
	before := s.State()

	s.Delete(a)
	if len(before.Tasks) != 2 || before.Tasks[0].ID != a {
		t.Fatal("previous state was mutated")
	}
}

// ============================================================
// Update
// ============================================================

func TestUpdateMergesFields(t *testing.T) {
	s, _ := newTestStore(t)
	id := addTask(s, "old", StatusNotStarted)

	title := "new"
	prio := PriorityHigh
	due := "2026-04-01"
	s.Update(id, Patch{Title: &title, Priority: &prio, DueDate: &due})

	got, _ := s.State().Find(id)
	if got.Title != "new" || got.Priority != PriorityHigh || got.DueDate != due {
		t.Fatalf("update failed: %+v", got)
	}
	if got.Status != StatusNotStarted {
		t.Fatal("status should be untouched")
	}
}

func TestUpdateStatusKeepsCompletedAtConsistent(t *testing.T) {
	s, _ := newTestStore(t)
	id := addTask(s, "t", StatusNotStarted)

	done := StatusCompleted
	s.Update(id, Patch{Status: &done})
	got, _ := s.State().Find(id)
	if !got.Completed() || got.CompletedAt == nil {
		t.Fatal("status completed should set CompletedAt")
	}

	doing := StatusInProgress
	s.Update(id, Patch{Status: &doing})
	got, _ = s.State().Find(id)
	if got.Completed() || got.CompletedAt != nil {
		t.Fatal("leaving completed should clear CompletedAt")
	}
}

func TestUpdateClearDueDate(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.Add(NewTask{Title: "t", DueDate: "2026-01-01"})
	empty := ""
	s.Update(id, Patch{DueDate: &empty})
	got, _ := s.State().Find(id)
	if got.DueDate != "" {
		t.Fatal("due date should be cleared")
	}
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(s, "t", StatusNotStarted)
	before := s.State()
	title := "x"
	if s.Update(7, Patch{Title: &title}) {
		t.Fatal("update of unknown id should report no change")
	}
	if !reflect.DeepEqual(before, s.State()) {
		t.Fatal("state changed")
	}
}

// ============================================================
// Filters, load, flags, clear completed
// ============================================================

func TestScenarioFilterViews(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.Add(NewTask{Title: "Buy milk", Priority: PriorityLow, Status: StatusNotStarted})

	all := s.FilteredTasks()
	if len(all) != 1 || all[0].Title != "Buy milk" || all[0].Completed() {
		t.Fatalf("unexpected tasks: %+v", all)
	}

	s.Toggle(id)
	got, _ := s.State().Find(id)
	if !got.Completed() || got.CompletedAt == nil {
		t.Fatal("toggle should complete")
	}

	s.SetFilter(FilterActive)
	if n := len(s.FilteredTasks()); n != 0 {
		t.Fatalf("active filter should be empty, got %d", n)
	}

	s.SetFilter(FilterCompleted)
	if n := len(s.FilteredTasks()); n != 1 {
		t.Fatalf("completed filter should have 1 task, got %d", n)
	}
}

func TestSetFilterDoesNotTouchTasks(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(s, "a", StatusNotStarted)
	rev := s.State().Revision
	s.SetFilter(FilterCompleted)
	if s.State().Revision != rev {
		t.Fatal("filter change should not bump revision")
	}
	if len(s.Tasks()) != 1 {
		t.Fatal("filter change should keep tasks")
	}
}

func TestFilteredTasksPreservesOrder(t *testing.T) {
	s, _ := newTestStore(t)
	a := addTask(s, "a", StatusNotStarted)
	addTask(s, "b", StatusCompleted)
	c := addTask(s, "c", StatusInProgress)

	s.SetFilter(FilterActive)
	got := s.FilteredTasks()
	if len(got) != 2 || got[0].ID != a || got[1].ID != c {
		t.Fatalf("unexpected active tasks: %+v", got)
	}
}

func TestLoadTasksReplacesListAndClearsFlags(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(s, "old", StatusNotStarted)
	s.SetLoading(true)
	s.SetError("bad")
	s.SetLoading(true)

	s.LoadTasks([]Task{{ID: 10, Title: "loaded", Status: StatusNotStarted, Priority: PriorityLow, CreatedAt: baseTime}})
	st := s.State()
	if len(st.Tasks) != 1 || st.Tasks[0].ID != 10 {
		t.Fatalf("unexpected tasks: %+v", st.Tasks)
	}
	if st.Loading || st.Error != "" {
		t.Fatal("load should clear loading and error")
	}
}

func TestLoadTasksEmptyClearsAll(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(s, "a", StatusNotStarted)
	if !s.Dispatch(LoadTasks{}) {
		t.Fatal("clearing a non-empty list should report a change")
	}
	if len(s.Tasks()) != 0 {
		t.Fatal("expected empty list")
	}
}

func TestSetErrorClearsLoading(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetLoading(true)
	s.SetError("oops")
	st := s.State()
	if st.Loading || st.Error != "oops" {
		t.Fatalf("unexpected flags: %+v", st)
	}
	s.SetError("")
	if s.State().Error != "" {
		t.Fatal("error should be cleared")
	}
}

func TestClearCompleted(t *testing.T) {
	s, _ := newTestStore(t)
	a := addTask(s, "a", StatusNotStarted)
	addTask(s, "b", StatusCompleted)
	c := addTask(s, "c", StatusInProgress)
	addTask(s, "d", StatusCompleted)
	e := addTask(s, "e", StatusNotStarted)

	s.ClearCompleted()
	var ids []int64
	for _, tk := range s.Tasks() {
		ids = append(ids, tk.ID)
	}
	if !reflect.DeepEqual(ids, []int64{a, c, e}) {
		t.Fatalf("unexpected remaining ids %v", ids)
	}
}

func TestClearCompletedNothingToClear(t *testing.T) {
	s, _ := newTestStore(t)
	addTask(s, "a", StatusNotStarted)
	before := s.State()
	if s.ClearCompleted() {
		t.Fatal("nothing completed, should report no change")
	}
	if !reflect.DeepEqual(before, s.State()) {
		t.Fatal("state changed")
	}
}

func TestUnknownActionIsIgnored(t *testing.T) {
	r := NewReducer(nil, &CounterIDs{})
	s := NewState()
	if got := r.Reduce(s, nil); !reflect.DeepEqual(got, s) {
		t.Fatal("nil action should return state unchanged")
	}
}

// ============================================================
// Stats
// ============================================================

func TestStats(t *testing.T) {
	s, clk := newTestStore(t)
	s.Add(NewTask{Title: "overdue", Priority: PriorityHigh, DueDate: "2026-03-01"})
	s.Add(NewTask{Title: "future", Priority: PriorityLow, DueDate: "2099-01-01"})
	s.Add(NewTask{Title: "done late", Status: StatusCompleted, DueDate: "2020-01-01"})
	s.Add(NewTask{Title: "no due"})
	clk.now = baseTime

	st := s.Stats()
	if st.Total != 4 || st.Completed != 1 || st.Active != 3 || st.Overdue != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.Active+st.Completed != st.Total {
		t.Fatal("active + completed != total")
	}
	if st.Overdue > st.Active {
		t.Fatal("overdue exceeds active")
	}
	if st.ByPriority[PriorityHigh] != 1 || st.ByPriority[PriorityLow] != 1 || st.ByPriority[PriorityMedium] != 1 {
		t.Fatalf("unexpected priority counts: %v", st.ByPriority)
	}
	if st.CompletionRate() != 25 {
		t.Fatalf("expected 25%%, got %d", st.CompletionRate())
	}
}

func TestStatsOverdueIsStrict(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	st := State{Tasks: []Task{{ID: 1, Status: StatusNotStarted, DueDate: "2026-03-10"}}}
	if st.Stats(due).Overdue != 0 {
		t.Fatal("due exactly now is not overdue")
	}
	if st.Stats(due.Add(time.Millisecond)).Overdue != 1 {
		t.Fatal("due before now is overdue")
	}
}

func TestStatsEmpty(t *testing.T) {
	st := NewState().Stats(baseTime)
	if st.Total != 0 || st.CompletionRate() != 0 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestStatsInsight(t *testing.T) {
	tests := []struct {
		st   Stats
		want string
	}{
		{Stats{}, ""},
		{Stats{Total: 3, Active: 2, Overdue: 1}, "1 task overdue"},
		{Stats{Total: 3, Active: 3, Overdue: 2}, "2 tasks overdue"},
		{Stats{Total: 2, Completed: 2}, "All tasks completed! Great work!"},
		{Stats{Total: 2, Completed: 1, Active: 1}, "1 active task remaining"},
		{Stats{Total: 4, Active: 4}, "4 active tasks remaining"},
	}
	for _, tt := range tests {
		if got := tt.st.Insight(); got != tt.want {
			t.Errorf("Insight(%+v) = %q, want %q", tt.st, got, tt.want)
		}
	}
}

// ============================================================
// Parsing and IDs
// ============================================================

func TestNormalizeTitle(t *testing.T) {
	if got, err := NormalizeTitle("  hello "); err != nil || got != "hello" {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := NormalizeTitle("   "); err != ErrEmptyTitle {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestNormalizeDueDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"2026-05-01", "2026-05-01", false},
		{" 2026-05-01 ", "2026-05-01", false},
		{"2026-05-01T10:00:00Z", "2026-05-01T10:00:00Z", false},
		{"tomorrow", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeDueDate(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("NormalizeDueDate(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if s, err := ParseStatus("In_Progress"); err != nil || s != StatusInProgress {
		t.Fatalf("ParseStatus: %v %v", s, err)
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if p, err := ParsePriority("HIGH"); err != nil || p != PriorityHigh {
		t.Fatalf("ParsePriority: %v %v", p, err)
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Fatal("expected error for unknown priority")
	}
	if f, err := ParseFilter("active"); err != nil || f != FilterActive {
		t.Fatalf("ParseFilter: %v %v", f, err)
	}
	if _, err := ParseFilter("archived"); err == nil {
		t.Fatal("expected error for unknown filter")
	}
}

func TestClockIDsAreStrictlyIncreasing(t *testing.T) {
	fixed := func() time.Time { return baseTime }
	ids := NewClockIDs(fixed)
	last := ids.NextID()
	for i := 0; i < 5000; i++ {
		next := ids.NextID()
		if next <= last {
			t.Fatalf("id %d not above %d", next, last)
		}
		last = next
	}
	if last >= 1<<53 {
		t.Fatal("id exceeds JSON-safe integer range")
	}
}

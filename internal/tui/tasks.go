package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/taskflow/internal/task"
)

type tasksModel struct {
	store  *task.Store
	now    func() time.Time
	width  int
	height int

	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"
	editingID  int64

	// Form field pointers (survive value copies)
	formTitle    *string
	formStatus   *task.Status
	formPriority *task.Priority
	formDue      *string
}

func newTasksModel(s *task.Store, now func() time.Time) tasksModel {
	title, due := "", ""
	status, priority := task.StatusNotStarted, task.PriorityMedium
	return tasksModel{
		store:        s,
		now:          now,
		formTitle:    &title,
		formStatus:   &status,
		formPriority: &priority,
		formDue:      &due,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m tasksModel) visible() []task.Task {
	return m.store.FilteredTasks()
}

func (m tasksModel) selected() (task.Task, bool) {
	v := m.visible()
	if m.cursor < 0 || m.cursor >= len(v) {
		return task.Task{}, false
	}
	return v[m.cursor], true
}

func (m *tasksModel) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Toggle), key.Matches(keyMsg, keys.Enter):
		if t, ok := m.selected(); ok {
			m.store.Toggle(t.ID)
			m.clampCursor()
		}
	case key.Matches(keyMsg, keys.Delete):
		if t, ok := m.selected(); ok {
			m.store.Delete(t.ID)
			m.clampCursor()
			return m, status("Deleted " + truncate(t.Title, 40))
		}
	case key.Matches(keyMsg, keys.New):
		return m.showForm("new", task.Task{})
	case key.Matches(keyMsg, keys.Edit):
		if t, ok := m.selected(); ok {
			return m.showForm("edit", t)
		}
	case key.Matches(keyMsg, keys.FilterAll):
		m.setFilter(task.FilterAll)
	case key.Matches(keyMsg, keys.FilterActive):
		m.setFilter(task.FilterActive)
	case key.Matches(keyMsg, keys.FilterDone):
		m.setFilter(task.FilterCompleted)
	case key.Matches(keyMsg, keys.ClearCompleted):
		if m.store.ClearCompleted() {
			m.clampCursor()
			return m, status("Cleared completed tasks")
		}
		return m, status("No completed tasks to clear")
	}
	return m, nil
}

func (m *tasksModel) setFilter(f task.Filter) {
	m.store.SetFilter(f)
	m.cursor = 0
}

// showForm opens the "new" form with defaults, or the "edit" form prefilled
// from t.
func (m tasksModel) showForm(formType string, t task.Task) (tasksModel, tea.Cmd) {
	if formType == "new" {
		m.formType = "new"
		*m.formTitle = ""
		*m.formStatus = task.StatusNotStarted
		*m.formPriority = task.PriorityMedium
		*m.formDue = ""
	} else {
		m.formType = "edit"
		m.editingID = t.ID
		*m.formTitle = t.Title
		*m.formStatus = t.Status
		*m.formPriority = t.Priority
		*m.formDue = t.DueDate
	}

	statusOptions := make([]huh.Option[task.Status], len(task.Statuses))
	for i, s := range task.Statuses {
		statusOptions[i] = huh.NewOption(s.Label(), s)
	}
	priorityOptions := make([]huh.Option[task.Priority], len(task.Priorities))
	for i, p := range task.Priorities {
		priorityOptions[i] = huh.NewOption(string(p), p)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle).Validate(func(s string) error {
				_, err := task.NormalizeTitle(s)
				return err
			}),
			huh.NewSelect[task.Status]().Title("Status").Options(statusOptions...).Value(m.formStatus),
			huh.NewSelect[task.Priority]().Title("Priority").Options(priorityOptions...).Value(m.formPriority),
			huh.NewInput().Title("Due date (YYYY-MM-DD, optional)").Value(m.formDue).Validate(func(s string) error {
				_, err := task.NormalizeDueDate(s)
				return err
			}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.formActive = false
		m.form = nil
		return m, nil
	case huh.StateCompleted:
		m.formActive = false
		m.form = nil
		return m.submitForm()
	}
	return m, cmd
}

func (m tasksModel) submitForm() (tasksModel, tea.Cmd) {
	title, err := task.NormalizeTitle(*m.formTitle)
	if err != nil {
		return m, errorStatus(err.Error())
	}
	due, err := task.NormalizeDueDate(*m.formDue)
	if err != nil {
		return m, errorStatus(err.Error())
	}

	if m.formType == "new" {
		m.store.Add(task.NewTask{
			Title:    title,
			Status:   *m.formStatus,
			Priority: *m.formPriority,
			DueDate:  due,
		})
		// New tasks land at the end; follow them when visible.
		if n := len(m.visible()); n > 0 {
			m.cursor = n - 1
		}
		return m, status("Added " + truncate(title, 40))
	}

	current, ok := m.store.State().Find(m.editingID)
	if !ok {
		return m, errorStatus("Task no longer exists")
	}
	var p task.Patch
	if title != current.Title {
		p.Title = &title
	}
	if s := *m.formStatus; s != current.Status {
		p.Status = &s
	}
	if pr := *m.formPriority; pr != current.Priority {
		p.Priority = &pr
	}
	if due != current.DueDate {
		p.DueDate = &due
	}
	if p == (task.Patch{}) {
		return m, nil
	}
	m.store.Update(m.editingID, p)
	m.clampCursor()
	return m, status("Updated " + truncate(title, 40))
}

func (m tasksModel) view(st styles) string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := st.title.Render("New Task")
		if m.formType == "edit" {
			title = st.title.Render("Edit Task")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return st.panel.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, m.renderFilterTabs(st), "")

	visible := m.visible()
	if len(visible) == 0 {
		rows = append(rows, st.muted.Render(m.emptyText()))
		return st.panel.Width(w).Render(strings.Join(rows, "\n"))
	}

	start, end := m.window(len(visible))
	now := m.now()
	for i := start; i < end; i++ {
		rows = append(rows, m.renderRow(st, visible[i], i == m.cursor, now, w-4))
	}
	if end-start < len(visible) {
		rows = append(rows, st.muted.Render(fmt.Sprintf("  %d–%d of %d", start+1, end, len(visible))))
	}

	return st.panel.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) emptyText() string {
	switch m.store.State().Filter {
	case task.FilterActive:
		return "No active tasks."
	case task.FilterCompleted:
		return "No completed tasks."
	}
	return "No tasks yet. Press n to add one."
}

// window returns the slice of rows that fits the panel with the cursor in it.
func (m tasksModel) window(n int) (int, int) {
	rows := m.height - 8
	if rows < 3 {
		rows = 3
	}
	if n <= rows {
		return 0, n
	}
	start := m.cursor - rows/2
	start = max(0, min(start, n-rows))
	return start, start + rows
}

func (m tasksModel) renderFilterTabs(st styles) string {
	s := m.store.State()
	counts := map[task.Filter]int{}
	for _, t := range s.Tasks {
		counts[task.FilterAll]++
		if t.Completed() {
			counts[task.FilterCompleted]++
		} else {
			counts[task.FilterActive]++
		}
	}

	names := map[task.Filter]string{
		task.FilterAll:       "All",
		task.FilterActive:    "Active",
		task.FilterCompleted: "Completed",
	}
	var tabs []string
	for _, f := range task.Filters {
		label := fmt.Sprintf("%s (%d)", names[f], counts[f])
		if f == s.Filter {
			tabs = append(tabs, st.activeTab.Render(label))
		} else {
			tabs = append(tabs, st.inactiveTab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

func (m tasksModel) renderRow(st styles, t task.Task, selected bool, now time.Time, width int) string {
	cursor := "  "
	titleStyle := st.normal
	if selected {
		cursor = "> "
		titleStyle = st.selected
	}

	box := "[ ]"
	switch t.Status {
	case task.StatusInProgress:
		box = "[~]"
	case task.StatusCompleted:
		box = "[x]"
		titleStyle = st.done
	}

	prio := st.priority[t.Priority].Render(fmt.Sprintf("%-6s", t.Priority))
	due := ""
	if d := formatDue(t, now); d != "" {
		if t.Overdue(now) {
			due = st.error.Render("due " + d)
		} else {
			due = st.muted.Render("due " + d)
		}
	}

	titleWidth := max(10, width-lipgloss.Width(cursor+box)-lipgloss.Width(prio)-lipgloss.Width(due)-4)
	title := titleStyle.Render(fmt.Sprintf("%-*s", titleWidth, truncate(t.Title, titleWidth)))
	return fmt.Sprintf("%s%s %s %s %s", cursor, box, title, prio, due)
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorStatus(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: true} }
}

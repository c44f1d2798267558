package tui

import (
	"time"

	"github.com/sadopc/taskflow/internal/persist"
	"github.com/sadopc/taskflow/internal/task"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewStats
	viewSettings
)

var viewNames = []string{"Tasks", "Stats", "Settings"}

// --- Messages ---

// loadedMsg carries the result of the initial read from storage.
type loadedMsg struct {
	tasks []task.Task
	err   error
}

// flushMsg is delivered once a scheduled write's debounce interval passes.
type flushMsg struct {
	ticket persist.Ticket
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type themeChangedMsg struct {
	theme Theme
}

// --- Helpers ---

// formatDue renders a due date relative to now.
func formatDue(t task.Task, now time.Time) string {
	due, ok := t.Due()
	if !ok {
		return ""
	}
	now, due = now.UTC(), due.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	switch days := int(day.Sub(today).Hours() / 24); {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	}
	return due.Format("Jan 02")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

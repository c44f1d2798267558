// Package task holds the task model and the state reducer that owns every
// transition of the task list.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a task. It is the single source of truth
// for completion.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label returns a human readable name.
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not started"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q", s)
	}
	return st, nil
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q", s)
	}
	return p, nil
}

// Filter restricts which tasks a view shows.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	}
	return false
}

func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("invalid filter %q", s)
	}
	return f, nil
}

// Matches reports whether t is visible under f.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed()
	case FilterCompleted:
		return t.Completed()
	}
	return true
}

const dateLayout = "2006-01-02"

// Task is a single to-do item.
type Task struct {
	ID          int64
	Title       string
	Status      Status
	Priority    Priority
	DueDate     string // ISO date or timestamp, empty when absent
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// Due parses the due date. Date-only values are midnight UTC.
func (t Task) Due() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse(dateLayout, t.DueDate); err == nil {
		return d, true
	}
	if d, err := time.Parse(time.RFC3339Nano, t.DueDate); err == nil {
		return d, true
	}
	return time.Time{}, false
}

// Overdue reports whether t is incomplete and due strictly before now.
func (t Task) Overdue(now time.Time) bool {
	if t.Completed() {
		return false
	}
	due, ok := t.Due()
	return ok && due.Before(now)
}

// NewTask is the caller-supplied part of a task. ID and CreatedAt are
// assigned by the reducer.
type NewTask struct {
	Title    string
	Status   Status
	Priority Priority
	DueDate  string
}

// Patch carries the fields an update replaces. Nil fields are left alone;
// a pointer to an empty DueDate clears it.
type Patch struct {
	Title    *string
	Status   *Status
	Priority *Priority
	DueDate  *string
}

var ErrEmptyTitle = errors.New("title must not be empty")

// NormalizeTitle trims s and rejects empty titles. Callers run it before
// dispatching Add or Update; the reducer does not re-validate.
func NormalizeTitle(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyTitle
	}
	return s, nil
}

// NormalizeDueDate accepts an empty string, a YYYY-MM-DD date or an RFC 3339
// timestamp.
func NormalizeDueDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, ok := (Task{DueDate: s}).Due(); !ok {
		return "", fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", s)
	}
	return s, nil
}

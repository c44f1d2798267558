package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/sadopc/taskflow/internal/task"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// timeLayout matches JavaScript's Date.toISOString.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// taskSchema is the shape contract every persisted record must satisfy.
// Unknown fields are allowed and ignored. Optional fields are read
// leniently by decodeRecord and never cause a drop.
const taskSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "title", "completed", "status", "priority", "createdAt"],
  "properties": {
    "id":          {"type": "number"},
    "title":       {"type": "string"},
    "completed":   {"type": "boolean"},
    "status":      {"enum": ["not_started", "in_progress", "completed"]},
    "priority":    {"enum": ["low", "medium", "high"]},
    "createdAt":   {"type": "string"}
  }
}`

var recordSchema = jsonschema.MustCompileString("https://taskflow.local/task.schema.json", taskSchema)

// record is the persisted layout of a task.
type record struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Completed   bool          `json:"completed"`
	Status      task.Status   `json:"status"`
	Priority    task.Priority `json:"priority"`
	DueDate     string        `json:"dueDate,omitempty"`
	CreatedAt   string        `json:"createdAt"`
	CompletedAt string        `json:"completedAt,omitempty"`
}

func encodeTasks(tasks []task.Task) ([]byte, error) {
	recs := make([]record, len(tasks))
	for i, t := range tasks {
		recs[i] = record{
			ID:        t.ID,
			Title:     t.Title,
			Completed: t.Completed(),
			Status:    t.Status,
			Priority:  t.Priority,
			DueDate:   t.DueDate,
			CreatedAt: formatTime(t.CreatedAt),
		}
		if t.CompletedAt != nil {
			recs[i].CompletedAt = formatTime(*t.CompletedAt)
		}
	}
	return json.Marshal(recs)
}

// legacyTimeLayouts are tried in order after RFC 3339. Values without a zone
// are read as UTC.
var legacyTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// decodeResult is what decodeTasks recovered from a stored value.
type decodeResult struct {
	Tasks   []task.Task
	Dropped int
	// Duplicates counts records dropped because an earlier one had the same id.
	Duplicates int
	// Repaired counts kept records with an unreadable timestamp.
	Repaired int
	// Corrupt is set when the value was not a JSON array at all.
	Corrupt error
}

func decodeTasks(raw string) decodeResult {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return decodeResult{Tasks: []task.Task{}, Corrupt: fmt.Errorf("parse stored tasks: %w", err)}
	}
	items, ok := doc.([]any)
	if !ok {
		return decodeResult{Tasks: []task.Task{}, Corrupt: fmt.Errorf("stored tasks are %T, not an array", doc)}
	}

	res := decodeResult{Tasks: make([]task.Task, 0, len(items))}
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		t, repaired, err := decodeRecord(item)
		if err != nil {
			res.Dropped++
			continue
		}
		if seen[t.ID] {
			res.Duplicates++
			continue
		}
		seen[t.ID] = true
		if repaired {
			res.Repaired++
		}
		res.Tasks = append(res.Tasks, t)
	}
	return res
}

// decodeRecord rejects only records that break taskSchema. A createdAt in no
// known layout is kept as the zero time and reported as repaired; a
// malformed or null dueDate or completedAt is treated as absent.
func decodeRecord(item any) (task.Task, bool, error) {
	if err := recordSchema.Validate(item); err != nil {
		return task.Task{}, false, err
	}
	m := item.(map[string]any)

	id, err := recordID(m["id"].(json.Number))
	if err != nil {
		return task.Task{}, false, err
	}
	createdAt, ok := parseTime(m["createdAt"].(string))
	repaired := !ok

	t := task.Task{
		ID:        id,
		Title:     m["title"].(string),
		Status:    task.Status(m["status"].(string)),
		Priority:  task.Priority(m["priority"].(string)),
		CreatedAt: createdAt,
	}
	if due, ok := m["dueDate"].(string); ok {
		t.DueDate = due
	}
	if s, ok := m["completedAt"].(string); ok {
		if at, ok := parseTime(s); ok {
			t.CompletedAt = &at
		}
	}

	// A stored completed flag that disagrees with status comes from data
	// written before status drove completion; the flag wins.
	completed := m["completed"].(bool)
	switch {
	case completed && !t.Completed():
		t.Status = task.StatusCompleted
	case !completed && t.Completed():
		t.Status = task.StatusNotStarted
	}
	if !t.Completed() {
		t.CompletedAt = nil
	} else if t.CompletedAt == nil {
		at := t.CreatedAt
		t.CompletedAt = &at
	}
	return t, repaired, nil
}

// recordID converts a stored id to an int64. Fractional ids (milliseconds
// plus a random fraction) are scaled by 1000 onto the ClockIDs range so
// distinct values stay distinct; ids too large to scale are rounded.
func recordID(n json.Number) (int64, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("id %s is not a finite number", n)
	}
	if f == math.Trunc(f) {
		if math.Abs(f) > 1<<62 {
			return 0, fmt.Errorf("id %s out of range", n)
		}
		return int64(f), nil
	}
	if scaled := f * 1000; math.Abs(scaled) < 1<<53 {
		return int64(math.Round(scaled)), nil
	}
	return int64(math.Round(f)), nil
}

func parseTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

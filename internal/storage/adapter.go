package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/sadopc/taskflow/internal/task"
)

// DefaultKey is the well-known key the task list lives under.
const DefaultKey = "task-manager-tasks"

// ThemeKey holds the stored appearance preference.
const ThemeKey = "task-manager-theme"

const probeKey = "__storage_test__"

// Adapter reads and writes the task list. It never mutates the tasks it is
// given; it only ever produces or consumes snapshots.
type Adapter struct {
	kv  KV
	key string
	log *log.Logger
}

// NewAdapter returns an adapter over kv. An empty key means DefaultKey and
// a nil logger discards output.
func NewAdapter(kv KV, key string, logger *log.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Adapter{kv: kv, key: key, log: logger}
}

// IsAvailable reports whether the store accepts a throwaway write and
// delete.
func (a *Adapter) IsAvailable() bool {
	if err := a.kv.Set(probeKey, probeKey); err != nil {
		a.log.Debug("storage probe failed", "err", err)
		return false
	}
	if err := a.kv.Remove(probeKey); err != nil {
		a.log.Debug("storage probe cleanup failed", "err", err)
		return false
	}
	return true
}

// Load returns the stored tasks. A missing value is an empty list. A value
// that is not a JSON array is an empty list with a logged warning. Records
// that fail validation are dropped.
func (a *Adapter) Load() ([]task.Task, error) {
	if !a.IsAvailable() {
		return []task.Task{}, fmt.Errorf("load tasks: %w", ErrUnavailable)
	}

	raw, ok, err := a.kv.Get(a.key)
	if err != nil {
		a.log.Error("failed to load tasks", "err", err)
		return []task.Task{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	if !ok || raw == "" {
		return []task.Task{}, nil
	}

	res := decodeTasks(raw)
	if res.Corrupt != nil {
		a.log.Warn("invalid task data in storage, starting empty", "err", res.Corrupt)
		return res.Tasks, nil
	}
	if res.Dropped > 0 || res.Duplicates > 0 {
		a.log.Warn("filtered out invalid tasks", "dropped", res.Dropped, "duplicates", res.Duplicates, "kept", len(res.Tasks))
	}
	if res.Repaired > 0 {
		a.log.Warn("kept tasks with unreadable timestamps", "count", res.Repaired)
	}
	a.log.Debug("loaded tasks", "count", len(res.Tasks))
	return res.Tasks, nil
}

// Save replaces the stored list with tasks.
func (a *Adapter) Save(tasks []task.Task) error {
	if !a.IsAvailable() {
		return fmt.Errorf("save tasks: %w", ErrUnavailable)
	}

	data, err := encodeTasks(tasks)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrSaveFailed, err)
	}
	if err := a.kv.Set(a.key, string(data)); err != nil {
		a.log.Error("failed to save tasks", "err", err, "bytes", len(data))
		if errors.Is(err, ErrQuotaExceeded) {
			return fmt.Errorf("%w: %w", ErrStorageFull, err)
		}
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	a.log.Debug("saved tasks", "count", len(tasks), "bytes", len(data))
	return nil
}

// Clear removes the stored value entirely.
func (a *Adapter) Clear() error {
	if !a.IsAvailable() {
		return fmt.Errorf("clear tasks: %w", ErrUnavailable)
	}
	if err := a.kv.Remove(a.key); err != nil {
		a.log.Error("failed to clear tasks", "err", err)
		return fmt.Errorf("%w: %w", ErrClearFailed, err)
	}
	return nil
}

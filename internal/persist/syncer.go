// Package persist decides when the task list is written back to storage.
//
// A Syncer coalesces bursts of changes into one write: every change records a
// snapshot and receives a Ticket, and only the newest ticket may write once
// the debounce interval has passed. The Syncer holds no timers; the caller
// delivers each ticket back after Interval (the TUI does this with tea.Tick).
// It is meant to be driven from a single goroutine.
package persist

import (
	"errors"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sadopc/taskflow/internal/storage"
	"github.com/sadopc/taskflow/internal/task"
)

// DefaultInterval is the quiet period before a scheduled write happens.
const DefaultInterval = 300 * time.Millisecond

// Ticket identifies one scheduled write.
type Ticket struct {
	gen uint64
}

type Syncer struct {
	adapter  *storage.Adapter
	interval time.Duration
	log      *log.Logger

	hydrated bool
	gen      uint64
	pending  []task.Task
	queued   bool
	// dirty is set while the list has changes no successful write covers.
	dirty bool
}

// New returns a Syncer writing through adapter. A non-positive interval means
// DefaultInterval.
func New(adapter *storage.Adapter, interval time.Duration, logger *log.Logger) *Syncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Syncer{adapter: adapter, interval: interval, log: logger}
}

func (s *Syncer) Interval() time.Duration { return s.interval }

// Load reads the stored list without changing the Syncer. It is safe to call
// from a command goroutine before MarkHydrated.
func (s *Syncer) Load() ([]task.Task, error) {
	return s.adapter.Load()
}

// MarkHydrated records the outcome of the initial load. Writes are only
// allowed once a load has succeeded; after an unavailable store or a failed
// read the session stays in memory so stored data is never overwritten.
func (s *Syncer) MarkHydrated(loadErr error) {
	if errors.Is(loadErr, storage.ErrUnavailable) || errors.Is(loadErr, storage.ErrLoadFailed) {
		s.log.Warn("storage not hydrated, changes will not be saved", "err", loadErr)
		return
	}
	s.hydrated = true
}

// Hydrate is Load followed by MarkHydrated.
func (s *Syncer) Hydrate() ([]task.Task, error) {
	tasks, err := s.Load()
	s.MarkHydrated(err)
	return tasks, err
}

func (s *Syncer) Hydrated() bool { return s.hydrated }

// Pending reports whether a scheduled snapshot is waiting for its ticket.
func (s *Syncer) Pending() bool { return s.queued }

// Dirty reports whether the list changed since the last successful write.
func (s *Syncer) Dirty() bool { return s.dirty }

// Schedule records tasks as the next snapshot to write and returns a ticket
// that supersedes every earlier one. It returns false before hydration.
func (s *Syncer) Schedule(tasks []task.Task) (Ticket, bool) {
	if !s.hydrated {
		return Ticket{}, false
	}
	s.gen++
	s.pending = slices.Clone(tasks)
	s.queued = true
	s.dirty = true
	return Ticket{gen: s.gen}, true
}

// Flush writes the pending snapshot if t is still the latest ticket. It
// reports whether a write was attempted.
func (s *Syncer) Flush(t Ticket) (bool, error) {
	if !s.queued || t.gen != s.gen {
		return false, nil
	}
	tasks := s.pending
	s.pending = nil
	s.queued = false
	return true, s.write(tasks)
}

// ForceSave drops any pending snapshot and writes tasks now.
func (s *Syncer) ForceSave(tasks []task.Task) error {
	s.Cancel()
	if !s.hydrated {
		s.log.Debug("skipping save before hydration")
		return nil
	}
	return s.write(tasks)
}

// ClearAll drops any pending snapshot and removes the stored list. Callers
// follow up by emptying their state and calling MarkSynced.
func (s *Syncer) ClearAll() error {
	s.Cancel()
	if err := s.adapter.Clear(); err != nil {
		return err
	}
	s.hydrated = true
	s.dirty = false
	s.log.Info("cleared stored tasks")
	return nil
}

// Cancel drops the pending snapshot. Its ticket becomes stale.
func (s *Syncer) Cancel() {
	s.gen++
	s.pending = nil
	s.queued = false
}

// MarkSynced declares storage up to date with the current list.
func (s *Syncer) MarkSynced() {
	s.Cancel()
	s.dirty = false
}

func (s *Syncer) write(tasks []task.Task) error {
	if err := s.adapter.Save(tasks); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

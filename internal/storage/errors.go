package storage

import "errors"

// Failure kinds reported by the Adapter. Each is wrapped together with its
// cause, so match with errors.Is.
var (
	ErrUnavailable = errors.New("storage unavailable")
	ErrLoadFailed  = errors.New("load failed")
	ErrSaveFailed  = errors.New("save failed")
	ErrStorageFull = errors.New("storage full")
	ErrClearFailed = errors.New("clear failed")
)

// ErrQuotaExceeded is returned by KV backends when a write would exceed
// their capacity.
var ErrQuotaExceeded = errors.New("quota exceeded")

// ErrLocked is returned when another process holds the database.
var ErrLocked = errors.New("database is locked by another process")

// User-facing messages for each failure kind.
const (
	MsgUnavailable = "Local storage is not available"
	MsgLoadFailed  = "Failed to load saved tasks"
	MsgSaveFailed  = "Failed to save tasks. Your changes may be lost."
	MsgStorageFull = "Storage is full. Please clear some data and try again."
	MsgClearFailed = "Failed to clear all tasks"
)

// Message maps err to the message shown to the user. Unknown errors get
// the generic save failure text; nil maps to "".
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnavailable):
		return MsgUnavailable
	case errors.Is(err, ErrStorageFull):
		return MsgStorageFull
	case errors.Is(err, ErrLoadFailed):
		return MsgLoadFailed
	case errors.Is(err, ErrClearFailed):
		return MsgClearFailed
	}
	return MsgSaveFailed
}

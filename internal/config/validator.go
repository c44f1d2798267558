package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "persist.debounce_ms")
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

func ValidLogFormats() []string {
	return []string{"text", "json", "logfmt"}
}

func ValidThemes() []string {
	return []string{"system", "light", "dark"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Storage.Path == "" {
		errs = append(errs, ValidationError{Field: "storage.path", Value: c.Storage.Path, Message: "must not be empty"})
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		errs = append(errs, ValidationError{Field: "storage.key", Value: c.Storage.Key, Message: "must not be empty"})
	}
	if c.Storage.QuotaBytes < 0 {
		errs = append(errs, ValidationError{Field: "storage.quota_bytes", Value: c.Storage.QuotaBytes, Message: "must be non-negative"})
	}

	if c.Persist.DebounceMs < 0 || c.Persist.DebounceMs > 60_000 {
		errs = append(errs, ValidationError{Field: "persist.debounce_ms", Value: c.Persist.DebounceMs, Message: "must be between 0 and 60000"})
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Logging.Format)) {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	if !slices.Contains(ValidThemes(), c.UI.Theme) {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Value:   c.UI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidThemes(), ", ")),
		})
	}

	return errs
}

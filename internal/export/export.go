// Package export writes the task list to CSV, JSON or TOML files.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/taskflow/internal/task"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

var Formats = []Format{FormatCSV, FormatJSON, FormatTOML}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatCSV, FormatJSON, FormatTOML:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or toml)", s)
}

// Write exports tasks to path in format f.
func Write(f Format, tasks []task.Task, path string) error {
	switch f {
	case FormatCSV:
		return ToCSV(tasks, path)
	case FormatJSON:
		return ToJSON(tasks, path)
	case FormatTOML:
		return ToTOML(tasks, path)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// DefaultFilename is taskflow-export-YYYYMMDD-HHMMSS.<ext>.
func DefaultFilename(f Format, now time.Time) string {
	return fmt.Sprintf("taskflow-export-%s.%s", now.Format("20060102-150405"), f)
}

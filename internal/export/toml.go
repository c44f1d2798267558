package export

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sadopc/taskflow/internal/task"
)

type tomlExport struct {
	ExportedAt time.Time  `toml:"exported_at"`
	Count      int        `toml:"count"`
	Tasks      []tomlTask `toml:"tasks"`
}

type tomlTask struct {
	ID          int64      `toml:"id"`
	Title       string     `toml:"title"`
	Status      string     `toml:"status"`
	Priority    string     `toml:"priority"`
	DueDate     string     `toml:"due_date,omitempty"`
	CreatedAt   time.Time  `toml:"created_at"`
	CompletedAt *time.Time `toml:"completed_at,omitempty"`
}

// ToTOML writes tasks as an array of [[tasks]] tables.
func ToTOML(tasks []task.Task, path string) error {
	export := tomlExport{
		ExportedAt: time.Now().UTC().Truncate(time.Second),
		Count:      len(tasks),
	}
	for _, t := range tasks {
		export.Tasks = append(export.Tasks, tomlTask{
			ID:          t.ID,
			Title:       t.Title,
			Status:      string(t.Status),
			Priority:    string(t.Priority),
			DueDate:     t.DueDate,
			CreatedAt:   t.CreatedAt,
			CompletedAt: t.CompletedAt,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create toml file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(export); err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	return nil
}

package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/taskflow/internal/task"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date,omitempty"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

func ToJSON(tasks []task.Task, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(tasks),
		Tasks:      []jsonTask{},
	}

	for _, t := range tasks {
		completed := ""
		if t.CompletedAt != nil {
			completed = t.CompletedAt.Local().Format(time.RFC3339)
		}

		export.Tasks = append(export.Tasks, jsonTask{
			ID:          t.ID,
			Title:       t.Title,
			Status:      string(t.Status),
			Completed:   t.Completed(),
			Priority:    string(t.Priority),
			DueDate:     t.DueDate,
			CreatedAt:   t.CreatedAt.Local().Format(time.RFC3339),
			CompletedAt: completed,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/taskflow/internal/task"
)

func ToCSV(tasks []task.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Title", "Status", "Priority", "Due", "Created", "Completed"}); err != nil {
		return err
	}

	for _, t := range tasks {
		completed := ""
		if t.CompletedAt != nil {
			completed = t.CompletedAt.Local().Format(time.RFC3339)
		}

		row := []string{
			fmt.Sprintf("%d", t.ID),
			t.Title,
			t.Status.Label(),
			string(t.Priority),
			t.DueDate,
			t.CreatedAt.Local().Format(time.RFC3339),
			completed,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

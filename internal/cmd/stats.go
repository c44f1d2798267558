package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/taskflow/internal/export"
	"github.com/sadopc/taskflow/internal/task"
	"github.com/spf13/cobra"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(opts, func(s *session) error {
				st := s.store.Stats()
				out := cmd.OutOrStdout()

				fmt.Fprintln(out, "TASKS")
				fmt.Fprintln(out, strings.Repeat("─", 30))
				fmt.Fprintf(out, "Total:      %d\n", st.Total)
				fmt.Fprintf(out, "Active:     %d\n", st.Active)
				fmt.Fprintf(out, "Completed:  %d\n", st.Completed)
				fmt.Fprintf(out, "Overdue:    %d\n", st.Overdue)
				fmt.Fprintf(out, "Completion: %d%%\n", st.CompletionRate())
				fmt.Fprintln(out)

				fmt.Fprintln(out, "ACTIVE BY PRIORITY")
				fmt.Fprintln(out, strings.Repeat("─", 30))
				for _, p := range task.Priorities {
					fmt.Fprintf(out, "%-8s %d\n", p, st.ByPriority[p])
				}

				if insight := st.Insight(); insight != "" {
					fmt.Fprintln(out)
					fmt.Fprintln(out, insight)
				}
				return nil
			})
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks to a CSV, JSON or TOML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return withTasks(opts, func(s *session) error {
				path := outPath
				if path == "" {
					path = filepath.Join(".", export.DefaultFilename(f, time.Now()))
				}
				tasks := s.store.Tasks()
				if err := export.Write(f, tasks, path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(tasks), path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "csv, json or toml")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default is taskflow-export-<time>.<format> in the current directory)")
	return cmd
}

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/taskflow/internal/task"
	"github.com/spf13/cobra"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var priority, status, due string

	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, err := task.NormalizeTitle(strings.Join(args, " "))
			if err != nil {
				return err
			}
			nt := task.NewTask{Title: title}
			if nt.Priority, err = task.ParsePriority(priority); err != nil {
				return err
			}
			if nt.Status, err = task.ParseStatus(status); err != nil {
				return err
			}
			if nt.DueDate, err = task.NormalizeDueDate(due); err != nil {
				return err
			}

			return withTasks(opts, func(s *session) error {
				id := s.store.Add(nt)
				fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s\n", id, title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", string(task.PriorityMedium), "low, medium or high")
	cmd.Flags().StringVarP(&status, "status", "s", string(task.StatusNotStarted), "not_started, in_progress or completed")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date (YYYY-MM-DD)")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := task.ParseFilter(filter)
			if err != nil {
				return err
			}
			return withTasks(opts, func(s *session) error {
				s.store.SetFilter(f)
				printTasks(cmd.OutOrStdout(), s.store.FilteredTasks(), time.Now())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", string(task.FilterAll), "all, active or completed")
	return cmd
}

func printTasks(w io.Writer, tasks []task.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for _, t := range tasks {
		box := "[ ]"
		switch t.Status {
		case task.StatusInProgress:
			box = "[~]"
		case task.StatusCompleted:
			box = "[x]"
		}
		line := fmt.Sprintf("%-16d %s %-6s %s", t.ID, box, t.Priority, t.Title)
		if t.DueDate != "" {
			line += "  due " + t.DueDate
			if t.Overdue(now) {
				line += " (overdue)"
			}
		}
		fmt.Fprintln(w, line)
	}
}

func newToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Mark a task completed, or reopen it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withTasks(opts, func(s *session) error {
				if !s.store.Toggle(id) {
					return fmt.Errorf("task %d not found", id)
				}
				t, _ := s.store.State().Find(id)
				fmt.Fprintf(cmd.OutOrStdout(), "Task %d is now %s\n", id, strings.ToLower(t.Status.Label()))
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withTasks(opts, func(s *session) error {
				if !s.store.Delete(id) {
					return fmt.Errorf("task %d not found", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
				return nil
			})
		},
	}
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var title, priority, status, due string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var p task.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				v, err := task.NormalizeTitle(title)
				if err != nil {
					return err
				}
				p.Title = &v
			}
			if flags.Changed("priority") {
				v, err := task.ParsePriority(priority)
				if err != nil {
					return err
				}
				p.Priority = &v
			}
			if flags.Changed("status") {
				v, err := task.ParseStatus(status)
				if err != nil {
					return err
				}
				p.Status = &v
			}
			if flags.Changed("due") {
				v, err := task.NormalizeDueDate(due)
				if err != nil {
					return err
				}
				p.DueDate = &v
			}
			if p == (task.Patch{}) {
				return fmt.Errorf("nothing to change: pass at least one of --title, --priority, --status, --due")
			}

			return withTasks(opts, func(s *session) error {
				if _, ok := s.store.State().Find(id); !ok {
					return fmt.Errorf("task %d not found", id)
				}
				s.store.Update(id, p)
				fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVarP(&status, "status", "s", "", "not_started, in_progress or completed")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date (YYYY-MM-DD); empty clears it")
	return cmd
}

func newClearCompletedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every completed task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTasks(opts, func(s *session) error {
				before := len(s.store.Tasks())
				if !s.store.ClearCompleted() {
					fmt.Fprintln(cmd.OutOrStdout(), "No completed tasks to clear")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed tasks\n", before-len(s.store.Tasks()))
				return nil
			})
		},
	}
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if !yes {
				return fmt.Errorf("refusing to delete all tasks without --yes")
			}
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			if err := s.syncer.ClearAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All tasks cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deleting everything")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

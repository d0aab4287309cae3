package cli

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"weekplan/internal/board"
	"weekplan/internal/config"
	"weekplan/internal/task"
	"weekplan/internal/week"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var kind string
	var duration int
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task to the backlog",
		Long: `Add a task to the backlog. The kind decides where it is listed:
asap (urgent and important), soon (important), pending (urgent),
leisure (neither) or basics (a habit that can be scheduled every week).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			k, err := task.ParseKind(kind)
			if err != nil {
				return fmt.Errorf("%w: %q", err, kind)
			}
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.release(&err)

			t, err := s.ws.Board().AddTask(strings.Join(args, " "), k, duration)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s (%s, %dm)\n", t.ID, t.Text, k, t.Duration)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(task.KindASAP), "Task kind: asap, soon, pending, leisure or basics")
	cmd.Flags().IntVarP(&duration, "duration", "d", task.DefaultDuration, "Duration in minutes")
	return cmd
}

func newDoneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.release(&err)

			done, err := s.ws.Board().ToggleCompleted(id)
			if err != nil {
				return err
			}
			state := "open"
			if done {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d is %s\n", id, state)
			return nil
		},
	}
}

func newRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task from the backlog or the week",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMove(cmd, opts, args[0], board.TrashTarget())
		},
	}
}

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <id> <day> <category>",
		Short: "Move a task into a day and category of the week",
		Long: `Move a backlog task, a habit or an already scheduled task into a slot.
Scheduling a habit adds an occurrence and keeps the habit in the backlog.
Each day holds a single goal.`,
		Example: "  weekplan schedule 101 monday goal\n  weekplan schedule 201 friday basics --week 1",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := week.ParseDay(args[1])
			if err != nil {
				return err
			}
			c, err := week.ParseCategory(args[2])
			if err != nil {
				return err
			}
			return runMove(cmd, opts, args[0], board.SlotTarget(d, c))
		},
	}
}

func newUnscheduleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unschedule <id>",
		Short: "Return a scheduled task to the backlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMove(cmd, opts, args[0], board.PoolTarget())
		},
	}
}

// runMove drives one drag gesture from wherever the task is to target.
func runMove(cmd *cobra.Command, opts *rootOptions, arg string, target board.Target) (err error) {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer s.release(&err)

	b := s.ws.Board()
	src, ok := b.Locate(id)
	if !ok {
		return fmt.Errorf("task %d is not in the backlog or week %s: %w", id, b.CurrentKey(), board.ErrNotFound)
	}
	var drag board.Session
	if err := b.BeginDrag(&drag, src); err != nil {
		return err
	}
	res := b.Drop(&drag, target)
	if !res.OK() {
		return fmt.Errorf("cannot move %q: %s", res.Task.Text, res.Reason)
	}

	out := cmd.OutOrStdout()
	switch res.Outcome {
	case board.OutcomeInstantiated:
		fmt.Fprintf(out, "Scheduled habit %q as task %d on %s %s\n", res.Task.Text, res.Task.ID, target.Day, s.cfg.Labels.Label(target.Category))
	case board.OutcomeMoved:
		fmt.Fprintf(out, "Moved %q to %s %s\n", res.Task.Text, target.Day, s.cfg.Labels.Label(target.Category))
	case board.OutcomeReturned:
		fmt.Fprintf(out, "Returned %q to the backlog\n", res.Task.Text)
	case board.OutcomeDeleted:
		fmt.Fprintf(out, "Deleted %q\n", res.Task.Text)
	}
	return nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var backlogOnly bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the backlog and the week",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.release(&err)

			out := cmd.OutOrStdout()
			printBacklog(out, s.ws.Board())
			if !backlogOnly {
				fmt.Fprintln(out)
				printWeek(out, s.ws.Board(), s.cfg.Labels)
			}
			if at, ok := s.ws.LastSaved(); ok {
				fmt.Fprintf(out, "\n%s\n", styleHint.Render("Last saved "+at.Local().Format("2006-01-02 15:04")))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&backlogOnly, "backlog", false, "Only show the backlog")
	return cmd
}

func printBacklog(out io.Writer, b *board.Board) {
	fmt.Fprintln(out, styleHeading.Render("Backlog"))
	for _, q := range task.Quadrants() {
		tasks := b.Quadrant(q)
		if len(tasks) == 0 {
			continue
		}
		fmt.Fprintf(out, "  %s\n", styleLabel.Render(q.String()))
		for _, t := range tasks {
			fmt.Fprintf(out, "    %s\n", formatTask(t))
		}
	}
	if habits := b.Habits(); len(habits) > 0 {
		open := make(map[task.ID]bool)
		for _, t := range b.UnscheduledHabits() {
			open[t.ID] = true
		}
		fmt.Fprintf(out, "  %s\n", styleLabel.Render("BASICS"))
		for _, t := range habits {
			line := formatTask(t)
			if !open[t.ID] {
				line += styleHint.Render("  (scheduled this week)")
			}
			fmt.Fprintf(out, "    %s\n", line)
		}
	}
}

func printWeek(out io.Writer, b *board.Board, labels config.Labels) {
	w := b.CurrentWeek()
	dates := b.Dates()
	loads := b.DailyLoad()
	fmt.Fprintf(out, "%s %s\n", styleHeading.Render("Week "+string(b.CurrentKey())), styleHint.Render("("+b.RangeLabel()+")"))
	for i, d := range week.Days {
		l := loads[i]
		fmt.Fprintf(out, "  %s %s  %s\n",
			styleHeading.Render(string(d)),
			dates[i].Format("02.01"),
			styleLabel.Render(fmt.Sprintf("%dm / %d%%", l.Minutes, int(l.Percent))))
		for _, c := range week.Categories {
			for _, t := range w.Slot(d, c) {
				fmt.Fprintf(out, "    %-8s %s\n", labels.Label(c), formatTask(t))
			}
		}
	}
}

func formatTask(t task.Task) string {
	line := fmt.Sprintf("%-6d %s  %dm", t.ID, t.Text, t.Duration)
	if t.IsOccurrence() {
		line += styleHint.Render(fmt.Sprintf("  (habit %d)", *t.SourceID))
	}
	if t.Completed {
		return styleDone.Render(line)
	}
	return line
}

func newResetWeekCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-week",
		Short: "Empty the week and return its tasks to the backlog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.release(&err)

			b := s.ws.Board()
			n := b.ResetWeek()
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared week %s, %d tasks back in the backlog\n", b.CurrentKey(), n)
			return nil
		},
	}
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task and week, keeping habits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if !yes {
				return errors.New("clear deletes every task and week; rerun with --yes to confirm")
			}
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.release(&err)

			s.ws.Board().ClearAll()
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("Planner cleared"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting everything")
	return cmd
}

func newThemeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [blue|dark]",
		Short:     "Show or set the colour theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{config.ThemeBlue, config.ThemeDark},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.release(&err)

			if len(args) == 1 {
				if err := s.ws.SetTheme(strings.ToLower(args[0])); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", s.ws.Theme())
			return nil
		},
	}
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				styleBrand.Render("weekplan"),
				version,
				styleHint.Render("("+runtime.GOOS+"/"+runtime.GOARCH+", "+runtime.Version()+")"))
		},
	}
}

func parseID(v string) (task.ID, error) {
	n, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(v), "#"), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid task id %q", v)
	}
	return task.ID(n), nil
}

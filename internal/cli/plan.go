package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"weekplan/internal/board"
	"weekplan/internal/planner"
)

func newOrganizeCmd(opts *rootOptions) *cobra.Command {
	var planFile string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Let the planner spread the backlog over the week",
		Long: `Send the backlog and the week's load to the configured planner command
and place the answered assignments. Assignments for unknown tasks, habits or
a goal slot that is already taken are skipped.

With --plan-file the plan is read from a JSON file of the form
{"plan": [{"id": 101, "day": "MONDAY", "category": "goal"}]}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.release(&err)

			b := s.ws.Board()
			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, b.PlanRequest().Prompt)
				return nil
			}

			var p planner.Planner = planner.FilePlanner{Path: planFile}
			if planFile == "" {
				if p = plannerFor(s.cfg); p == nil {
					return errors.New("no planner configured: set [planner] command in the config file or pass --plan-file")
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			res, err := b.Organize(ctx, p)
			if errors.Is(err, board.ErrEmptyBacklog) {
				fmt.Fprintln(out, "Nothing to organize: the backlog is empty")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s %d tasks in %s\n", styleSuccess.Render("Placed"), len(res.Placed), res.WeekKey)
			for _, sk := range res.Skipped {
				fmt.Fprintf(out, "  %s %d -> %s %s: %s\n", styleLabel.Render("skipped"),
					sk.Assignment.ID, sk.Assignment.Day, sk.Assignment.Category, sk.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&planFile, "plan-file", "", "Read the plan from a JSON file instead of running the planner")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the planner prompt without running it")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write a backup of every week and the backlog",
		Long: `Write a JSON backup. Without a path, or with a directory, the file is
named planner-backup-YYYY-MM-DD.json.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.release(&err)

			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			path, err := s.ws.Export(target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
			return nil
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace the planner with a backup",
		Long:  `Replace every week and the backlog with a backup file. A file that fails validation changes nothing.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.release(&err)

			if err := s.ws.Import(args[0]); err != nil {
				return err
			}
			b := s.ws.Board()
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d tasks in %d weeks\n", args[0], b.TotalTasks(), b.WeekCount())
			return nil
		},
	}
}

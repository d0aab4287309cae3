// Package cli implements the weekplan commands. Without a subcommand the
// interactive planner starts.
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"weekplan/internal/config"
	"weekplan/internal/planner"
	"weekplan/internal/storage"
	"weekplan/internal/ui"
	"weekplan/internal/workspace"
)

// runUI is swapped out in tests.
var runUI = ui.Run

type rootOptions struct {
	configPath string
	weekOffset int
}

// NewRootCmd builds the command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "weekplan",
		Short: "Plan the week from a prioritized backlog",
		Long: `Weekplan keeps a backlog of tasks sorted by urgency and importance and a
grid of weeks with one goal plus focus, work, leisure and basics slots per day.

Run without arguments to open the interactive planner.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default: $WEEKPLAN_CONFIG or the user config dir)")
	root.PersistentFlags().IntVarP(&opts.weekOffset, "week", "w", 0, "Week relative to the current one (-1 last week, 1 next week)")

	root.AddCommand(newAddCmd(opts))
	root.AddCommand(newClearCmd(opts))
	root.AddCommand(newDoneCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newOrganizeCmd(opts))
	root.AddCommand(newResetWeekCmd(opts))
	root.AddCommand(newRmCmd(opts))
	root.AddCommand(newScheduleCmd(opts))
	root.AddCommand(newThemeCmd(opts))
	root.AddCommand(newUnscheduleCmd(opts))
	root.AddCommand(newVersionCmd(version))
	return root
}

// Execute runs the root command.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("Error:"), err)
		return err
	}
	return nil
}

// session is one opened planner: config, database and the loaded workspace.
type session struct {
	cfg   config.Config
	store *storage.Store
	ws    *workspace.Workspace
}

func openSession(opts *rootOptions) (*session, error) {
	path := opts.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	ws, err := workspace.Load(store, workspace.Options{
		DailyCapacity: cfg.DailyCapacity,
		SaveDelay:     cfg.SaveDelay(),
		DefaultTheme:  cfg.Theme,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load planner: %w", err)
	}
	if opts.weekOffset != 0 {
		ws.Board().SetOffset(opts.weekOffset)
	}
	return &session{cfg: cfg, store: store, ws: ws}, nil
}

// close writes pending changes before releasing the database.
func (s *session) close() error {
	err := s.ws.Close()
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	return err
}

// release closes s from a defer and reports a failed final save through err,
// so a change that never reached the database does not exit successfully.
func (s *session) release(err *error) {
	cerr := s.close()
	if cerr != nil {
		log.Printf("[cli] final save failed: %v", cerr)
	}
	if *err == nil {
		*err = cerr
	}
}

// plannerFor returns the configured external planner, or nil.
func plannerFor(cfg config.Config) planner.Planner {
	if cfg.Planner.Command == "" {
		return nil
	}
	return planner.CommandPlanner{
		Name:    cfg.Planner.Command,
		Args:    cfg.Planner.Args,
		Timeout: cfg.PlannerTimeout(),
	}
}

func runTUI(opts *rootOptions) (err error) {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	if f, ferr := os.OpenFile(s.cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); ferr == nil {
		log.SetOutput(f)
		defer func() {
			log.SetOutput(os.Stderr)
			f.Close()
		}()
	}
	defer s.release(&err)
	if off := s.ws.Board().Offset(); off != 0 {
		log.Printf("[cli] starting at week offset %d", off)
	}
	return runUI(s.ws, s.cfg, plannerFor(s.cfg))
}

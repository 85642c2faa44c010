package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/yangwenmai/leetreview/internal/catalog"
	"github.com/yangwenmai/leetreview/internal/config"
	"github.com/yangwenmai/leetreview/internal/fetch"
	"github.com/yangwenmai/leetreview/internal/model"
	"github.com/yangwenmai/leetreview/internal/schedule"
	"github.com/yangwenmai/leetreview/internal/store"
	"github.com/yangwenmai/leetreview/internal/tracker"
)

// app carries the dependencies shared by every subcommand.
type app struct {
	cfg     config.Config
	in      io.Reader
	out     io.Writer
	now     func() time.Time
	fetcher fetch.TitleFetcher

	// Set by flags.
	dbPath   string
	todayArg string

	// Set in open.
	db      *sql.DB
	loc     *time.Location
	catalog *catalog.Catalog
	tracker *tracker.Tracker
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "leetreview",
		Short:         "Track practice problems on a spaced-repetition schedule",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.list(cmd)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.out)
	root.SetIn(a.in)

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides db_path)")
	root.PersistentFlags().StringVar(&a.todayArg, "today", "", "pretend today is this date")

	root.AddCommand(
		a.listCmd(),
		a.catalogCmd(),
		a.addCmd(),
		a.addManualCmd(),
		a.reviewCmd(),
		a.editCmd(),
		a.rescheduleCmd(),
		a.rescheduleEntryCmd(),
		a.scheduleCmd(),
		a.solutionCmd(),
		a.removeCmd(),
		a.statsCmd(),
		a.watchCmd(),
	)
	return root
}

// execute runs the root command and prints a failure the way users expect.
func (a *app) execute(args []string) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
	return err
}

func (a *app) open(cmd *cobra.Command) error {
	if err := a.close(); err != nil {
		return err
	}
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}
	a.loc = loc

	if a.cfg.CatalogPath != "" {
		a.catalog, err = catalog.Open(a.cfg.CatalogPath)
	} else {
		a.catalog, err = catalog.Builtin()
	}
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	path := a.cfg.DBPath
	if a.dbPath != "" {
		path = a.dbPath
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := store.OpenSQLite(path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	a.db = db

	// PersistentPostRunE does not run after a failed pre-run, so close here.
	s, err := store.New(db)
	if err != nil {
		a.close()
		return fmt.Errorf("init store: %w", err)
	}
	a.tracker, err = tracker.New(cmd.Context(), s)
	if err != nil {
		a.close()
		return fmt.Errorf("load items: %w", err)
	}
	slog.Debug("opened", "db", path, "items", len(a.tracker.Items()), "catalog", a.catalog.Len())
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// today is the calendar date all date-dependent commands act on.
func (a *app) today() (civil.Date, error) {
	if a.todayArg != "" {
		d, err := schedule.ParseLenient(a.todayArg)
		if err != nil {
			return civil.Date{}, fmt.Errorf("--today: %w", err)
		}
		return d, nil
	}
	return schedule.Today(a.now(), a.loc), nil
}

// saved reports a mutation result. A persistence failure leaves the change in
// memory only, which for a one-shot command means it is lost; say so.
func (a *app) saved(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrPersistence) {
		return fmt.Errorf("change not saved: %w", err)
	}
	return err
}

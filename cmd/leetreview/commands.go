package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/yangwenmai/leetreview/internal/categorize"
	"github.com/yangwenmai/leetreview/internal/model"
	"github.com/yangwenmai/leetreview/internal/schedule"
	"github.com/yangwenmai/leetreview/internal/tracker"
	"github.com/yangwenmai/leetreview/internal/view"
	"github.com/yangwenmai/leetreview/internal/worker"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show what to review today and what is already done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.list(cmd)
		},
	}
}

func (a *app) list(_ *cobra.Command) error {
	today, err := a.today()
	if err != nil {
		return err
	}
	due, notDue := categorize.Partition(a.tracker.Items(), today)
	view.Dashboard(a.out, due, notDue)
	return nil
}

func (a *app) catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [query]",
		Short: "Search the problem catalog by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				view.Catalog(a.out, a.catalog.All())
				return nil
			}
			view.Catalog(a.out, a.catalog.Search(args[0]))
			return nil
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <catalog-id>",
		Short: "Start tracking a problem from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, ok := a.catalog.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: no catalog entry %s", model.ErrNotFound, args[0])
			}
			today, err := a.today()
			if err != nil {
				return err
			}
			it, err := a.tracker.AddFromCatalog(cmd.Context(), entry, today)
			if err := a.saved(err); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %s, first review on %s\n", it.Name, it.NextReviewDate)
			return nil
		},
	}
}

func (a *app) addManualCmd() *cobra.Command {
	var (
		name, url, difficulty string
		tags                  []string
		fetchTitle            bool
	)
	cmd := &cobra.Command{
		Use:   "add-manual",
		Short: "Start tracking a problem that is not in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := tracker.ManualFields{Name: name, URL: url, Tags: tags}
			if difficulty != "" {
				d, err := model.ParseDifficulty(difficulty)
				if err != nil {
					return err
				}
				f.Difficulty = d
			}
			if strings.TrimSpace(f.Name) == "" && fetchTitle && strings.TrimSpace(url) != "" && a.fetcher != nil {
				title, err := a.fetcher.FetchTitle(cmd.Context(), url)
				if err != nil {
					return fmt.Errorf("fetch title: %w", err)
				}
				f.Name = title
			}
			today, err := a.today()
			if err != nil {
				return err
			}
			it, err := a.tracker.AddManual(cmd.Context(), f, today)
			if err := a.saved(err); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Added %s as %s, first review on %s\n", it.Name, it.ID, it.NextReviewDate)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "problem name")
	cmd.Flags().StringVar(&url, "url", "", "problem URL")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Easy, Medium or Hard (default Easy)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "comma-separated tags")
	cmd.Flags().BoolVar(&fetchTitle, "fetch-title", false, "look up the name from the URL when --name is empty")
	return cmd
}

func (a *app) reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review <id>",
		Short: "Record a completed review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := a.today()
			if err != nil {
				return err
			}
			it, err := a.tracker.RecordReview(cmd.Context(), args[0], today)
			if err := a.saved(err); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Reviewed %s (%d times), next review on %s\n", it.Name, it.ReviewCount, it.NextReviewDate)
			return nil
		},
	}
}

func (a *app) editCmd() *cobra.Command {
	var (
		name, url, difficulty, last, next string
		tags                              []string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a tracked problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p tracker.Patch
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = &name
			}
			if flags.Changed("url") {
				p.URL = &url
			}
			if flags.Changed("difficulty") {
				d, err := model.ParseDifficulty(difficulty)
				if err != nil {
					return err
				}
				p.Difficulty = &d
			}
			if flags.Changed("tags") {
				p.Tags = &tags
			}
			if flags.Changed("last") {
				d, err := schedule.ParseLenient(last)
				if err != nil {
					return fmt.Errorf("%w: --last: %v", model.ErrValidation, err)
				}
				p.LastReviewDate = &d
			}
			if flags.Changed("next") {
				d, err := schedule.ParseLenient(next)
				if err != nil {
					return fmt.Errorf("%w: --next: %v", model.ErrValidation, err)
				}
				p.NextReviewDate = &d
			}
			it, err := a.tracker.EditFields(cmd.Context(), args[0], p)
			if err := a.saved(err); err != nil {
				return err
			}
			fmt.Fprintln(a.out, view.Item(it))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&url, "url", "", "new URL")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "new difficulty")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "replacement tags")
	cmd.Flags().StringVar(&last, "last", "", "last review date")
	cmd.Flags().StringVar(&next, "next", "", "next review date")
	return cmd
}

func (a *app) rescheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule <id> <date>",
		Short: "Set the next review date directly",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDateArg(args[1])
			if err != nil {
				return err
			}
			it, err := a.tracker.OverrideNextReviewDate(cmd.Context(), args[0], d)
			if err := a.saved(err); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: next review on %s\n", it.Name, it.NextReviewDate)
			return nil
		},
	}
}

func (a *app) rescheduleEntryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule-entry <id> <index> <date>",
		Short: "Replace one date of the planned review schedule",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: index %q is not a number", model.ErrValidation, args[1])
			}
			d, err := parseDateArg(args[2])
			if err != nil {
				return err
			}
			it, err := a.tracker.OverrideScheduleEntry(cmd.Context(), args[0], index, d)
			if err := a.saved(err); err != nil {
				return err
			}
			today, err := a.today()
			if err != nil {
				return err
			}
			view.Schedule(a.out, it, today)
			return nil
		},
	}
}

func (a *app) scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <id>",
		Short: "Show the planned review dates of a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			it, err := a.tracker.Get(args[0])
			if err != nil {
				return err
			}
			today, err := a.today()
			if err != nil {
				return err
			}
			view.Schedule(a.out, it, today)
			return nil
		},
	}
}

func (a *app) solutionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solution <id> [file|-]",
		Short: "Show or save the solution notes of a problem",
		Long:  "With only an id, prints the saved solution. With a file, saves its contents; \"-\" reads standard input.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				it, err := a.tracker.Get(args[0])
				if err != nil {
					return err
				}
				if it.Solution == nil {
					fmt.Fprintln(a.out, "No solution saved.")
					return nil
				}
				fmt.Fprintln(a.out, *it.Solution)
				return nil
			}

			var (
				data []byte
				err  error
			)
			if args[1] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[1])
			}
			if err != nil {
				return fmt.Errorf("read solution: %w", err)
			}
			it, err := a.tracker.SaveSolution(cmd.Context(), args[0], string(data))
			if err := a.saved(err); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved solution for %s\n", it.Name)
			return nil
		},
	}
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Stop tracking a problem",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.saved(a.tracker.Remove(cmd.Context(), args[0])); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Removed %s\n", args[0])
			return nil
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals and daily activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("days") {
				days = a.cfg.StatsWindowDays
			}
			if days <= 0 {
				return fmt.Errorf("%w: --days must be positive", model.ErrValidation)
			}
			today, err := a.today()
			if err != nil {
				return err
			}
			items := a.tracker.Items()
			activity := categorize.DailyActivity(items, days, today)
			view.Stats(a.out, categorize.Summarize(items, activity), activity)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "window size in days (default stats_window_days)")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep running and announce problems as they become due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			today := func() civil.Date {
				d, err := a.today()
				if err != nil {
					return schedule.Today(a.now(), a.loc)
				}
				return d
			}
			w := worker.New(&reloadingSource{ctx: ctx, t: a.tracker}, &printNotifier{w: a.out}, a.cfg.WatchInterval, today)
			w.Start(ctx)
			return nil
		},
	}
}

// reloadingSource rereads the document before each poll so edits made by
// other invocations are picked up.
type reloadingSource struct {
	ctx context.Context
	t   *tracker.Tracker
}

func (s *reloadingSource) Items() []model.Item {
	if err := s.t.Reload(s.ctx); err != nil {
		slog.Warn("reload failed; using last known items", "error", err)
	}
	return s.t.Items()
}

type printNotifier struct {
	w io.Writer
}

func (n *printNotifier) Notify(_ context.Context, today civil.Date, newlyDue []model.Item) error {
	view.Section(n.w, "Due on "+today.String(), newlyDue, "")
	return nil
}

func parseDateArg(s string) (civil.Date, error) {
	d, err := schedule.ParseLenient(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	return d, nil
}

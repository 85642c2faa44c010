package worker

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"

	"github.com/yangwenmai/leetreview/internal/categorize"
	"github.com/yangwenmai/leetreview/internal/model"
)

// ItemSource provides a snapshot of the tracked items.
type ItemSource interface {
	Items() []model.Item
}

// Notifier is told about items that are due. newlyDue holds only the items
// that were not already reported on the same day.
type Notifier interface {
	Notify(ctx context.Context, today civil.Date, newlyDue []model.Item) error
}

// Worker polls the item source and reports items as they become due.
type Worker struct {
	source   ItemSource
	notifier Notifier
	interval time.Duration
	today    func() civil.Date

	day      civil.Date
	reported map[string]bool
}

// New creates a new Worker. today supplies the current calendar date.
func New(source ItemSource, notifier Notifier, interval time.Duration, today func() civil.Date) *Worker {
	return &Worker{
		source:   source,
		notifier: notifier,
		interval: interval,
		today:    today,
		reported: make(map[string]bool),
	}
}

// Start begins the polling loop. It blocks until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("watcher started", "interval", w.interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("watcher stopped")
			return
		default:
		}

		if err := w.Poll(ctx); err != nil {
			slog.Error("notify failed", "error", err)
		}
		w.sleep(ctx)
	}
}

// Poll checks once for newly due items and notifies about them. Items are
// reported at most once per day; a failed notification is retried next poll.
func (w *Worker) Poll(ctx context.Context) error {
	today := w.today()
	if today != w.day {
		w.day = today
		clear(w.reported)
	}

	due, _ := categorize.Partition(w.source.Items(), today)
	var fresh []model.Item
	for _, it := range due {
		if !w.reported[it.ID] {
			fresh = append(fresh, it)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	slog.Info("items due", "date", today.String(), "count", len(fresh))
	if err := w.notifier.Notify(ctx, today, fresh); err != nil {
		return err
	}
	for _, it := range fresh {
		w.reported[it.ID] = true
	}
	return nil
}

func (w *Worker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.interval):
	}
}

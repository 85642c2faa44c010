package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/yangwenmai/leetreview/internal/model"
)

type staticSource struct {
	mu    sync.Mutex
	items []model.Item
}

func (s *staticSource) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

func (s *staticSource) set(items ...model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, _ civil.Date, items []model.Item) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	n.calls = append(n.calls, ids)
	return nil
}

func (n *recordingNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func mustDate(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func dueOn(t *testing.T, id, next string) model.Item {
	return model.Item{ID: id, Name: id, Difficulty: model.Easy, NextReviewDate: mustDate(t, next)}
}

func TestPoll_ReportsEachItemOncePerDay(t *testing.T) {
	src := &staticSource{}
	src.set(dueOn(t, "a", "2024-01-01"), dueOn(t, "b", "2024-01-05"))
	n := &recordingNotifier{}
	today := mustDate(t, "2024-01-02")
	w := New(src, n, time.Hour, func() civil.Date { return today })
	ctx := context.Background()

	if err := w.Poll(ctx); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if err := w.Poll(ctx); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if n.callCount() != 1 || len(n.calls[0]) != 1 || n.calls[0][0] != "a" {
		t.Fatalf("calls = %v, want [[a]]", n.calls)
	}

	// b becomes due once the day rolls over; a is reported again on the new day.
	today = mustDate(t, "2024-01-05")
	if err := w.Poll(ctx); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if n.callCount() != 2 || len(n.calls[1]) != 2 {
		t.Errorf("calls = %v, want second call with [a b]", n.calls)
	}
}

func TestPoll_NothingDue(t *testing.T) {
	src := &staticSource{}
	src.set(dueOn(t, "a", "2024-02-01"))
	n := &recordingNotifier{}
	w := New(src, n, time.Hour, func() civil.Date { return mustDate(t, "2024-01-02") })

	if err := w.Poll(context.Background()); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if n.callCount() != 0 {
		t.Errorf("calls = %v, want none", n.calls)
	}
}

func TestPoll_FailedNotifyIsRetried(t *testing.T) {
	src := &staticSource{}
	src.set(dueOn(t, "a", "2024-01-01"))
	n := &recordingNotifier{err: errors.New("terminal closed")}
	w := New(src, n, time.Hour, func() civil.Date { return mustDate(t, "2024-01-02") })
	ctx := context.Background()

	if err := w.Poll(ctx); err == nil {
		t.Fatal("expected notify error")
	}
	n.err = nil
	if err := w.Poll(ctx); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if n.callCount() != 1 {
		t.Errorf("calls = %d, want 1 after retry", n.callCount())
	}
}

func TestStart_StopsOnCancel(t *testing.T) {
	src := &staticSource{}
	src.set(dueOn(t, "a", "2024-01-01"))
	n := &recordingNotifier{}
	w := New(src, n, 5*time.Millisecond, func() civil.Date { return mustDate(t, "2024-01-02") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for n.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("worker never notified")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
	if n.callCount() != 1 {
		t.Errorf("calls = %d, want 1", n.callCount())
	}
}

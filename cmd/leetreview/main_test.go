package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yangwenmai/leetreview/internal/config"
	"github.com/yangwenmai/leetreview/internal/model"
	"github.com/yangwenmai/leetreview/internal/store"
)

type fakeFetcher struct {
	title string
	calls int
}

func (f *fakeFetcher) FetchTitle(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.title, nil
}

func newTestApp(t *testing.T, dbPath string) (*app, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a := &app{
		cfg: config.Config{
			DBPath:          dbPath,
			LogLevel:        "error",
			Timezone:        "UTC",
			StatsWindowDays: 7,
			WatchInterval:   time.Hour,
			FetchTimeout:    time.Second,
		},
		in:      strings.NewReader(""),
		out:     &out,
		now:     func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) },
		fetcher: &fakeFetcher{title: "Fetched Title"},
	}
	t.Cleanup(func() { a.close() })
	return a, &out
}

func run(t *testing.T, a *app, out *bytes.Buffer, args ...string) string {
	t.Helper()
	out.Reset()
	if err := a.execute(args); err != nil {
		t.Fatalf("%v: %v\noutput:\n%s", args, err, out.String())
	}
	return out.String()
}

func TestAddReviewList(t *testing.T) {
	a, out := newTestApp(t, filepath.Join(t.TempDir(), "data", "lr.db"))

	got := run(t, a, out, "add", "1")
	if !strings.Contains(got, "Added Two Sum, first review on 2024-01-02") {
		t.Errorf("add output: %s", got)
	}

	got = run(t, a, out, "list")
	if !strings.Contains(got, "Nothing to review today.") || !strings.Contains(got, "Two Sum") {
		t.Errorf("list output: %s", got)
	}

	got = run(t, a, out, "--today", "2024-01-02", "review", "1")
	if !strings.Contains(got, "Reviewed Two Sum (1 times), next review on 2024-01-05") {
		t.Errorf("review output: %s", got)
	}

	got = run(t, a, out, "--today", "2024-01-02", "list")
	if !strings.Contains(got, "Nothing to review today.") {
		t.Errorf("expected nothing due after review: %s", got)
	}
}

func TestAdd_DuplicateAndUnknown(t *testing.T) {
	a, out := newTestApp(t, filepath.Join(t.TempDir(), "lr.db"))
	run(t, a, out, "add", "1")

	if err := a.execute([]string{"add", "1"}); !errors.Is(err, model.ErrDuplicateID) {
		t.Errorf("second add: got %v, want ErrDuplicateID", err)
	}
	if err := a.execute([]string{"add", "999999"}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("unknown catalog id: got %v, want ErrNotFound", err)
	}
	if err := a.execute([]string{"rm", "nope"}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("rm unknown: got %v, want ErrNotFound", err)
	}
}

func TestAddManual_FetchTitle(t *testing.T) {
	a, out := newTestApp(t, filepath.Join(t.TempDir(), "lr.db"))

	got := run(t, a, out, "add-manual", "--url", "https://example.com/p", "--fetch-title", "--tags", "Graph, DP,Graph")
	if !strings.Contains(got, "Added Fetched Title as manual-") {
		t.Errorf("add-manual output: %s", got)
	}
	items := a.tracker.Items()
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Difficulty != model.Easy {
		t.Errorf("difficulty = %v, want Easy", items[0].Difficulty)
	}
	if strings.Join(items[0].Tags, "|") != "Graph|DP" {
		t.Errorf("tags = %v", items[0].Tags)
	}

	if err := a.execute([]string{"add-manual", "--url", "https://example.com/q"}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("missing name: got %v, want ErrValidation", err)
	}
}

func TestEditAndReschedule(t *testing.T) {
	a, out := newTestApp(t, filepath.Join(t.TempDir(), "lr.db"))
	run(t, a, out, "add", "1")

	run(t, a, out, "edit", "1", "--name", "Two Sum II", "--difficulty", "hard", "--next", "2024/02/01")
	it, err := a.tracker.Get("1")
	if err != nil {
		t.Fatal(err)
	}
	if it.Name != "Two Sum II" || it.Difficulty != model.Hard || it.NextReviewDate.String() != "2024-02-01" {
		t.Errorf("after edit: %+v", it)
	}
	if it.ReviewCount != 0 {
		t.Errorf("edit changed review count to %d", it.ReviewCount)
	}

	if err := a.execute([]string{"edit", "1", "--name", "  "}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("blank name: got %v, want ErrValidation", err)
	}

	run(t, a, out, "reschedule", "1", "2024-03-01")
	got := run(t, a, out, "reschedule-entry", "1", "2", "2024-01-10")
	if !strings.Contains(got, "2. 2024-01-10") {
		t.Errorf("reschedule-entry output: %s", got)
	}
	if err := a.execute([]string{"reschedule-entry", "1", "99", "2024-01-10"}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("bad index: got %v, want ErrValidation", err)
	}

	it, _ = a.tracker.Get("1")
	if it.NextReviewDate.String() != "2024-03-01" {
		t.Errorf("next = %s, want 2024-03-01", it.NextReviewDate)
	}
}

func TestSolution(t *testing.T) {
	a, out := newTestApp(t, filepath.Join(t.TempDir(), "lr.db"))
	run(t, a, out, "add", "1")

	if got := run(t, a, out, "solution", "1"); !strings.Contains(got, "No solution saved.") {
		t.Errorf("empty solution output: %s", got)
	}

	a.in = strings.NewReader("use a hash map")
	run(t, a, out, "solution", "1", "-")
	if got := run(t, a, out, "solution", "1"); !strings.Contains(got, "use a hash map") {
		t.Errorf("solution output: %s", got)
	}
}

func TestPersistsAcrossRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "lr.db")
	a, out := newTestApp(t, db)
	run(t, a, out, "add", "20")
	run(t, a, out, "add", "1")
	run(t, a, out, "rm", "1")

	b, out2 := newTestApp(t, db)
	got := run(t, b, out2, "--today", "2024-01-05", "list")
	if !strings.Contains(got, "Valid Parentheses") || strings.Contains(got, "Two Sum") {
		t.Errorf("reopened list: %s", got)
	}
}

func TestStats(t *testing.T) {
	a, out := newTestApp(t, filepath.Join(t.TempDir(), "lr.db"))
	run(t, a, out, "add", "1")

	got := run(t, a, out, "stats", "--days", "4")
	if !strings.Contains(got, "Total problems   1") || !strings.Contains(got, "1/4 (25%)") {
		t.Errorf("stats output: %s", got)
	}
	if err := a.execute([]string{"stats", "--days", "0"}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("zero days: got %v, want ErrValidation", err)
	}
}

func TestCatalogSearch(t *testing.T) {
	a, out := newTestApp(t, filepath.Join(t.TempDir(), "lr.db"))
	got := run(t, a, out, "catalog", "parenth")
	if !strings.Contains(got, "Valid Parentheses") {
		t.Errorf("catalog output: %s", got)
	}
}

func TestOpen_ClosesDBWhenStoreInitFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lr.db")
	db, err := store.OpenSQLite(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE schema_version (version INTEGER NOT NULL)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (99)`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	a, _ := newTestApp(t, path)
	if err := a.execute([]string{"list"}); err == nil || !strings.Contains(err.Error(), "init store") {
		t.Fatalf("err = %v, want init store failure", err)
	}
	if a.db != nil {
		t.Error("database handle left open after failed start")
	}
}

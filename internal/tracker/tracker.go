// Package tracker owns the collection of review items and every operation
// that changes it. Each mutation validates first, applies to a copy, commits
// the copy in memory and then writes the whole collection through the
// DocumentStore.
//
// A failed persistence write does not roll back the in-memory change: the
// updated item is returned together with an error matching
// model.ErrPersistence, and the next successful save carries it to disk.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/yangwenmai/leetreview/internal/model"
	"github.com/yangwenmai/leetreview/internal/schedule"
	"github.com/yangwenmai/leetreview/internal/store"
)

// manualPrefix marks ids minted for manually added items. Catalog ids are
// numeric, so prefixed ids never collide with them.
const manualPrefix = "manual-"

// Tracker is the in-memory owner of all review items.
type Tracker struct {
	mu      sync.Mutex
	docs    store.DocumentStore
	items   []model.Item
	version int64
	newID   func() string
}

// New loads the collection from docs and returns a ready Tracker.
func New(ctx context.Context, docs store.DocumentStore) (*Tracker, error) {
	t := &Tracker{
		docs:  docs,
		newID: func() string { return manualPrefix + uuid.New().String() },
	}
	if err := t.Reload(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Reload replaces the in-memory collection with the stored document.
// Use it after a version conflict to pick up another writer's changes.
func (t *Tracker) Reload(ctx context.Context) error {
	snap, err := t.docs.Load(ctx)
	if err != nil {
		return &model.PersistError{Op: "load", Err: err}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = snap.Items
	t.version = snap.Version
	slog.Debug("tracker loaded", "items", len(t.items), "version", t.version)
	return nil
}

// Items returns a copy of every item in insertion order.
func (t *Tracker) Items() []model.Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.Item, len(t.items))
	for i, it := range t.items {
		out[i] = it.Clone()
	}
	return out
}

// Get returns a copy of the item with the given id.
func (t *Tracker) Get(id string) (model.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(id)
	if i < 0 {
		return model.Item{}, notFound(id)
	}
	return t.items[i].Clone(), nil
}

// AddFromCatalog starts tracking a catalog entry as of today.
// It fails with model.ErrDuplicateID when the entry id is already tracked and
// with model.ErrValidation when the entry is incomplete.
func (t *Tracker) AddFromCatalog(ctx context.Context, entry model.CatalogEntry, today civil.Date) (model.Item, error) {
	if strings.TrimSpace(entry.ID) == "" || strings.TrimSpace(entry.Name) == "" || strings.TrimSpace(entry.URL) == "" {
		return model.Item{}, fmt.Errorf("%w: catalog entry needs id, name and url", model.ErrValidation)
	}
	if !entry.Difficulty.Valid() {
		return model.Item{}, fmt.Errorf("%w: catalog entry %s has invalid difficulty %d", model.ErrValidation, entry.ID, int(entry.Difficulty))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.indexOf(entry.ID) >= 0 {
		return model.Item{}, fmt.Errorf("%w: %s", model.ErrDuplicateID, entry.ID)
	}
	item := newItem(entry.ID, entry.Name, entry.URL, entry.Difficulty, entry.Tags, today)
	return t.insert(ctx, item)
}

// ManualFields is user input for an item that is not in the catalog.
type ManualFields struct {
	Name       string
	URL        string
	Difficulty model.Difficulty // zero means Easy
	Tags       []string
}

// AddManual starts tracking a user-described problem under a freshly minted id.
// Name and URL are required.
func (t *Tracker) AddManual(ctx context.Context, f ManualFields, today civil.Date) (model.Item, error) {
	name := strings.TrimSpace(f.Name)
	url := strings.TrimSpace(f.URL)
	if name == "" {
		return model.Item{}, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	if url == "" {
		return model.Item{}, fmt.Errorf("%w: url is required", model.ErrValidation)
	}
	diff := f.Difficulty
	if diff == 0 {
		diff = model.Easy
	}
	if !diff.Valid() {
		return model.Item{}, fmt.Errorf("%w: invalid difficulty %d", model.ErrValidation, int(diff))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.newID()
	for t.indexOf(id) >= 0 {
		id = t.newID()
	}
	item := newItem(id, name, url, diff, normalizeTags(f.Tags), today)
	return t.insert(ctx, item)
}

// RecordReview counts one completed review on today and reschedules the item
// from its new review count. Every call is a separate increment, so callers
// must invoke it at most once per user action.
func (t *Tracker) RecordReview(ctx context.Context, id string, today civil.Date) (model.Item, error) {
	return t.update(ctx, "review", id, func(it *model.Item) error {
		it.ReviewCount++
		it.LastReviewDate = today
		it.NextReviewDate = schedule.Next(today, it.ReviewCount)
		return nil
	})
}

// Patch lists field overwrites for EditFields. Nil fields are left alone.
type Patch struct {
	Name           *string
	URL            *string
	Difficulty     *model.Difficulty
	Tags           *[]string
	LastReviewDate *civil.Date
	NextReviewDate *civil.Date
	Solution       *string
}

// EditFields overwrites the fields set in p. The review schedule is not
// recomputed and the review count is never touched.
func (t *Tracker) EditFields(ctx context.Context, id string, p Patch) (model.Item, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return model.Item{}, fmt.Errorf("%w: name must not be empty", model.ErrValidation)
	}
	if p.URL != nil && strings.TrimSpace(*p.URL) == "" {
		return model.Item{}, fmt.Errorf("%w: url must not be empty", model.ErrValidation)
	}
	if p.Difficulty != nil && !p.Difficulty.Valid() {
		return model.Item{}, fmt.Errorf("%w: invalid difficulty %d", model.ErrValidation, int(*p.Difficulty))
	}

	return t.update(ctx, "edit", id, func(it *model.Item) error {
		if p.Name != nil {
			it.Name = strings.TrimSpace(*p.Name)
		}
		if p.URL != nil {
			it.URL = strings.TrimSpace(*p.URL)
		}
		if p.Difficulty != nil {
			it.Difficulty = *p.Difficulty
		}
		if p.Tags != nil {
			it.Tags = normalizeTags(*p.Tags)
		}
		if p.LastReviewDate != nil {
			it.LastReviewDate = *p.LastReviewDate
		}
		if p.NextReviewDate != nil {
			it.NextReviewDate = *p.NextReviewDate
		}
		if p.Solution != nil {
			s := *p.Solution
			it.Solution = &s
		}
		return nil
	})
}

// OverrideNextReviewDate sets the next review date directly. No ordering
// against the last review date is enforced.
func (t *Tracker) OverrideNextReviewDate(ctx context.Context, id string, d civil.Date) (model.Item, error) {
	return t.update(ctx, "override next", id, func(it *model.Item) error {
		it.NextReviewDate = d
		return nil
	})
}

// OverrideScheduleEntry replaces one entry of the review schedule. The index
// must address an existing entry; monotonicity is not checked.
func (t *Tracker) OverrideScheduleEntry(ctx context.Context, id string, index int, d civil.Date) (model.Item, error) {
	return t.update(ctx, "override schedule", id, func(it *model.Item) error {
		if index < 0 || index >= len(it.ReviewSchedule) {
			return fmt.Errorf("%w: schedule index %d out of range [0,%d)", model.ErrValidation, index, len(it.ReviewSchedule))
		}
		it.ReviewSchedule[index] = d
		return nil
	})
}

// SaveSolution stores the user's notes or code for an item. The text is opaque.
func (t *Tracker) SaveSolution(ctx context.Context, id, text string) (model.Item, error) {
	return t.update(ctx, "save solution", id, func(it *model.Item) error {
		it.Solution = &text
		return nil
	})
}

// Remove stops tracking an item. Unknown ids fail with model.ErrNotFound.
func (t *Tracker) Remove(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return notFound(id)
	}
	t.items = slices.Delete(t.items, i, i+1)
	slog.Info("item removed", "item_id", id)
	return t.persist(ctx, "remove")
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// insert appends item and persists. Caller holds t.mu.
func (t *Tracker) insert(ctx context.Context, item model.Item) (model.Item, error) {
	t.items = append(t.items, item)
	slog.Info("item added", "item_id", item.ID, "name", item.Name, "next_review", item.NextReviewDate.String())
	return item.Clone(), t.persist(ctx, "add")
}

// update applies fn to a copy of the item and commits it only if fn succeeds.
func (t *Tracker) update(ctx context.Context, op, id string, fn func(*model.Item) error) (model.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return model.Item{}, notFound(id)
	}
	next := t.items[i].Clone()
	if err := fn(&next); err != nil {
		return model.Item{}, err
	}
	t.items[i] = next
	slog.Info("item updated", "op", op, "item_id", id, "review_count", next.ReviewCount, "next_review", next.NextReviewDate.String())
	return next.Clone(), t.persist(ctx, op)
}

// persist writes the whole collection. Caller holds t.mu.
func (t *Tracker) persist(ctx context.Context, op string) error {
	v, err := t.docs.Save(ctx, t.items, t.version)
	if err != nil {
		slog.Error("persist failed; change kept in memory only", "op", op, "error", err)
		return &model.PersistError{Op: op, Err: err}
	}
	t.version = v
	return nil
}

func (t *Tracker) indexOf(id string) int {
	return slices.IndexFunc(t.items, func(it model.Item) bool { return it.ID == id })
}

func newItem(id, name, url string, diff model.Difficulty, tags []string, today civil.Date) model.Item {
	return model.Item{
		ID:             id,
		Name:           name,
		URL:            url,
		Difficulty:     diff,
		Tags:           normalizeTags(tags),
		LastReviewDate: today,
		NextReviewDate: schedule.Next(today, 0),
		ReviewCount:    0,
		ReviewSchedule: schedule.Generate(today),
	}
}

// normalizeTags trims tags, drops blanks and repeats, and keeps first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", model.ErrNotFound, id)
}

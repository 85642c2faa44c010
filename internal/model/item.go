package model

import (
	"slices"

	"cloud.google.com/go/civil"
)

// Item is one tracked problem and its review progress.
type Item struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	URL            string       `json:"url"`
	Difficulty     Difficulty   `json:"difficulty"`
	Tags           []string     `json:"tags"`
	LastReviewDate civil.Date   `json:"lastReviewDate"`
	NextReviewDate civil.Date   `json:"nextReviewDate"`
	ReviewCount    int          `json:"reviewCount"`
	ReviewSchedule []civil.Date `json:"reviewSchedule,omitempty"` // nil when never generated.
	Solution       *string      `json:"solution,omitempty"`
}

// CatalogEntry is read-only reference data used to seed a new Item.
type CatalogEntry struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	Difficulty Difficulty `json:"difficulty"`
	Tags       []string   `json:"tags"`
}

// Clone returns a deep copy of the item. Slices and pointer fields are copied
// so the result can be handed to callers without sharing state.
func (it Item) Clone() Item {
	out := it
	out.Tags = slices.Clone(it.Tags)
	out.ReviewSchedule = slices.Clone(it.ReviewSchedule)
	if it.Solution != nil {
		v := *it.Solution
		out.Solution = &v
	}
	return out
}

// FirstTime reports whether the item has never been reviewed.
func (it Item) FirstTime() bool {
	return it.ReviewCount == 0
}

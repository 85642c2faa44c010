// Package categorize derives read-only views over a snapshot of items:
// the due/not-due split and per-day activity with its summary.
package categorize

import (
	"math"

	"cloud.google.com/go/civil"

	"github.com/yangwenmai/leetreview/internal/model"
	"github.com/yangwenmai/leetreview/internal/schedule"
)

// Partition splits items into those due on today (next review on or before
// today) and the rest. Relative order is kept within each half.
func Partition(items []model.Item, today civil.Date) (due, notDue []model.Item) {
	due = []model.Item{}
	notDue = []model.Item{}
	for _, it := range items {
		if schedule.Due(it.NextReviewDate, today) {
			due = append(due, it)
		} else {
			notDue = append(notDue, it)
		}
	}
	return due, notDue
}

// DayActivity groups the items last touched on Date.
type DayActivity struct {
	Date     civil.Date
	New      []model.Item // review count still zero
	Reviewed []model.Item // reviewed at least once
}

// Active reports whether anything happened on the day.
func (d DayActivity) Active() bool {
	return len(d.New) > 0 || len(d.Reviewed) > 0
}

// DailyActivity returns windowDays buckets starting at today and walking
// backwards one day at a time. An item lands in the bucket matching its last
// review date, if that date is inside the window.
func DailyActivity(items []model.Item, windowDays int, today civil.Date) []DayActivity {
	if windowDays <= 0 {
		return nil
	}
	out := make([]DayActivity, windowDays)
	for i := range out {
		out[i] = DayActivity{
			Date:     today.AddDays(-i),
			New:      []model.Item{},
			Reviewed: []model.Item{},
		}
	}
	for _, it := range items {
		i := today.DaysSince(it.LastReviewDate)
		if i < 0 || i >= windowDays {
			continue
		}
		if it.FirstTime() {
			out[i].New = append(out[i].New, it)
		} else {
			out[i].Reviewed = append(out[i].Reviewed, it)
		}
	}
	return out
}

// Summary is the headline numbers shown on the stats view.
type Summary struct {
	Total          int
	ByDifficulty   map[model.Difficulty]int
	WindowDays     int
	ActiveDays     int
	CompletionRate int // percent of window days with any activity
}

// Summarize counts items per difficulty and measures how many days of the
// activity window saw at least one new or repeated item.
func Summarize(items []model.Item, activity []DayActivity) Summary {
	s := Summary{
		Total:        len(items),
		ByDifficulty: make(map[model.Difficulty]int, len(model.Difficulties)),
		WindowDays:   len(activity),
	}
	for _, d := range model.Difficulties {
		s.ByDifficulty[d] = 0
	}
	for _, it := range items {
		s.ByDifficulty[it.Difficulty]++
	}
	for _, day := range activity {
		if day.Active() {
			s.ActiveDays++
		}
	}
	if s.WindowDays > 0 {
		s.CompletionRate = int(math.Round(float64(s.ActiveDays) / float64(s.WindowDays) * 100))
	}
	return s
}

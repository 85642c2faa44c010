// Package schedule holds the fixed spaced-repetition interval table and the
// date arithmetic built on top of it. Everything here is pure.
package schedule

import (
	"time"

	"cloud.google.com/go/civil"
)

// Steps is the number of dates produced by Generate.
const Steps = 7

// intervals maps a review count to days until the next review.
// Counts past the end of the table saturate at the last entry.
var intervals = [Steps]int{1, 3, 7, 14, 30, 60, 120}

// Interval returns the number of days until the next review for an item that
// has been reviewed reviewCount times. Negative counts are treated as zero.
func Interval(reviewCount int) int {
	if reviewCount < 0 {
		reviewCount = 0
	}
	if reviewCount >= len(intervals) {
		return intervals[len(intervals)-1]
	}
	return intervals[reviewCount]
}

// Next returns the review date following from for the given review count.
func Next(from civil.Date, reviewCount int) civil.Date {
	return from.AddDays(Interval(reviewCount))
}

// Generate builds the full forward plan starting at start: each entry is the
// previous one advanced by Interval(i), so offsets are cumulative
// (+1, +4, +11, +25, +55, +115, +235 days).
func Generate(start civil.Date) []civil.Date {
	out := make([]civil.Date, 0, Steps)
	cursor := start
	for i := 0; i < Steps; i++ {
		cursor = cursor.AddDays(Interval(i))
		out = append(out, cursor)
	}
	return out
}

// Today returns the calendar date of now in loc. A nil loc means time.Local.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(now.In(loc))
}

// Due reports whether an item scheduled for next is due on today.
func Due(next, today civil.Date) bool {
	return !next.After(today)
}

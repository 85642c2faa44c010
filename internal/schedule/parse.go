package schedule

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/araddon/dateparse"
)

// ParseDate parses the canonical YYYY-MM-DD form.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// ParseLenient accepts the canonical form plus the loose spellings people
// type on a command line ("2024/01/05", "Jan 5 2024", "5 January 2024").
// Ambiguous numeric forms such as "01/02/2024" are rejected.
func ParseLenient(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if d, err := ParseDate(s); err == nil {
		return d, nil
	}
	t, err := dateparse.ParseStrict(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return civil.DateOf(t), nil
}

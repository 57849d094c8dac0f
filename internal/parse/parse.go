// Package parse turns raw query-string and payload values into typed values.
package parse

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the only accepted wire format for calendar dates.
const DateLayout = "2006-01-02"

var (
	termSplitRe = regexp.MustCompile(`[\s,]+`)
	dateRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	ErrDateFormat = errors.New("date must be YYYY-MM-DD")
)

// OrderTerm is one entry of an ordering parameter.
type OrderTerm struct {
	Field string
	Desc  bool
}

// Ordering splits "a,-b" into terms. Blank entries and bare "-" are dropped.
func Ordering(raw string) []OrderTerm {
	var terms []OrderTerm
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		part = strings.TrimSpace(strings.TrimPrefix(part, "-"))
		if part == "" {
			continue
		}
		terms = append(terms, OrderTerm{Field: part, Desc: desc})
	}
	return terms
}

// SearchTerms splits a search parameter on whitespace and commas.
func SearchTerms(raw string) []string {
	var terms []string
	for _, t := range termSplitRe.Split(strings.TrimSpace(raw), -1) {
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// Date parses a YYYY-MM-DD string to midnight UTC.
func Date(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !dateRe.MatchString(s) {
		return time.Time{}, ErrDateFormat
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrDateFormat
	}
	return t, nil
}

// Day truncates t to midnight UTC of its calendar day in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

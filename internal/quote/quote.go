// Package quote holds the data model shared by quote providers and the series
// merger: measures, resolutions, per-symbol requests and their decoded rows.
package quote

import (
	"fmt"
	"strings"
	"time"
)

const DateFormat = "2006-01-02"

type Measure string

const (
	Open   Measure = "open"
	High   Measure = "high"
	Low    Measure = "low"
	Close  Measure = "close"
	Volume Measure = "volume"
)

// Measures lists every known measure in provider column order.
func Measures() []Measure {
	return []Measure{Open, High, Low, Close, Volume}
}

func (m Measure) Valid() bool {
	switch m {
	case Open, High, Low, Close, Volume:
		return true
	}
	return false
}

func ParseMeasure(s string) (Measure, error) {
	m := Measure(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("invalid measure %q", s)
	}
	return m, nil
}

// ParseMeasures parses a comma-delimited list such as "open,close".
// Duplicates are dropped; the first occurrence keeps its position.
func ParseMeasures(s string) ([]Measure, error) {
	var out []Measure
	seen := make(map[Measure]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		m, err := ParseMeasure(part)
		if err != nil {
			return nil, err
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one measure is required")
	}
	return out, nil
}

type Resolution string

const (
	Daily  Resolution = "day"
	Weekly Resolution = "week"
)

// ParseResolution accepts the short names as well as the "1 day" / "5 days"
// spellings used by report criteria.
func ParseResolution(s string) (Resolution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily", "1 day", "1d":
		return Daily, nil
	case "week", "weekly", "5 days", "1 week", "1w":
		return Weekly, nil
	}
	return "", fmt.Errorf("invalid resolution %q", s)
}

// Code is the single-letter granularity understood by the quote endpoint.
func (r Resolution) Code() string {
	if r == Weekly {
		return "w"
	}
	return "d"
}

// Day truncates t to its calendar date at 00:00 UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// PricePoint is one row of data for one date. Only requested measures are set.
type PricePoint struct {
	Date   time.Time
	Fields map[Measure]float64
}

// RawSeries is the decoded output of one fetch, oldest first.
type RawSeries []PricePoint

// Sorted reports whether dates are strictly ascending.
func (s RawSeries) Sorted() bool {
	for i := 1; i < len(s); i++ {
		if !s[i-1].Date.Before(s[i].Date) {
			return false
		}
	}
	return true
}

// Package report defines the stock report presets and the criteria a caller
// supplies when running one.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ahmethakanbesel/stockseries/internal/quote"
)

const week = 7 * 24 * time.Hour

// Preset describes one report table: which measures it shows and whether it
// takes one symbol or a comma-separated list.
type Preset struct {
	Name       string           `json:"name"`
	Title      string           `json:"title"`
	Multi      bool             `json:"multi"`
	Measures   []quote.Measure  `json:"measures"`
	Duration   time.Duration    `json:"-"`
	Resolution quote.Resolution `json:"resolution"`
}

var presets = []Preset{
	{
		Name:       "stock-report",
		Title:      "Stock Report",
		Measures:   []quote.Measure{quote.Open, quote.High, quote.Low, quote.Close},
		Duration:   4 * week,
		Resolution: quote.Daily,
	},
	{
		Name:       "multi-stock-price",
		Title:      "Close Prices",
		Multi:      true,
		Measures:   []quote.Measure{quote.Close},
		Duration:   52 * week,
		Resolution: quote.Daily,
	},
	{
		Name:       "multi-stock-volume",
		Title:      "Daily Volumes",
		Multi:      true,
		Measures:   []quote.Measure{quote.Volume},
		Duration:   52 * week,
		Resolution: quote.Daily,
	},
}

// All returns a copy of every preset.
func All() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

func Lookup(name string) (Preset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Durations lists the selectable report durations.
func Durations() []string {
	return []string{"4w", "12w", "24w", "52w", "260w", "520w"}
}

// ParseDuration parses one of Durations.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	for _, d := range Durations() {
		if d != s {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(s, "w"))
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * week, nil
	}
	return 0, fmt.Errorf("invalid duration %q, expected one of %s", s, strings.Join(Durations(), ", "))
}

// Criteria are the caller-supplied inputs of a report run. Zero fields fall
// back to the preset defaults and EndDate defaults to today.
type Criteria struct {
	EndDate    time.Time
	Duration   time.Duration
	Resolution quote.Resolution
	Symbols    string
}

func (c Criteria) WithDefaults(p Preset) Criteria {
	if c.Duration == 0 {
		c.Duration = p.Duration
	}
	if c.Resolution == "" {
		c.Resolution = p.Resolution
	}
	return c
}

// Range returns the report's date range: the duration ending at EndDate.
func (c Criteria) Range(now time.Time) (begin, end time.Time) {
	end = quote.Day(now)
	if !c.EndDate.IsZero() {
		end = quote.Day(c.EndDate)
	}
	days := int(c.Duration / (24 * time.Hour))
	return end.AddDate(0, 0, -days), end
}

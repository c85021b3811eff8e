package series

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/ahmethakanbesel/stockseries/internal/quote"
)

// Row is one date of a merged table. A column absent from Values is unset
// for that date.
type Row struct {
	Date   time.Time
	Values map[string]float64
}

func (r Row) Value(key string) optional.Option[float64] {
	if v, ok := r.Values[key]; ok {
		return optional.Some(v)
	}
	return optional.None[float64]()
}

// Table is a date-keyed series, ascending, one row per date. Columns lists the
// declared non-key columns in display order; the date column is implicit.
type Table struct {
	Columns []string
	Rows    []Row
}

// Reset drops all rows and re-declares the non-key columns, so columns from a
// previous request do not carry over.
func (t *Table) Reset(columns []string) {
	t.Columns = append([]string(nil), columns...)
	t.Rows = nil
}

func (t Table) hasColumn(key string) bool {
	for _, c := range t.Columns {
		if c == key {
			return true
		}
	}
	return false
}

// FromSeries turns one symbol's series into a table with one column per
// measure.
func FromSeries(s quote.RawSeries, measures []quote.Measure) Table {
	t := Table{
		Columns: make([]string, 0, len(measures)),
		Rows:    make([]Row, 0, len(s)),
	}
	for _, m := range measures {
		t.Columns = append(t.Columns, string(m))
	}
	for _, p := range s {
		values := make(map[string]float64, len(p.Fields))
		for _, m := range measures {
			if v, ok := p.Fields[m]; ok {
				values[string(m)] = v
			}
		}
		t.Rows = append(t.Rows, Row{Date: p.Date, Values: values})
	}
	return t
}

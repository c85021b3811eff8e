package series

import "github.com/ahmethakanbesel/stockseries/internal/quote"

// Merge outer-joins next into acc by date. The measure column of next is
// stored under key. Both inputs must already be ascending by date; neither is
// modified. Dates missing from one side leave that side's columns unset.
func Merge(acc Table, next quote.RawSeries, measure quote.Measure, key string) Table {
	out := Table{
		Columns: append([]string(nil), acc.Columns...),
		Rows:    make([]Row, 0, max(len(acc.Rows), len(next))),
	}
	if !out.hasColumn(key) {
		out.Columns = append(out.Columns, key)
	}

	i, j := 0, 0
	for i < len(acc.Rows) && j < len(next) {
		a, n := acc.Rows[i], next[j]
		switch {
		case a.Date.Equal(n.Date):
			values := make(map[string]float64, len(a.Values)+1)
			for k, v := range a.Values {
				values[k] = v
			}
			if v, ok := n.Fields[measure]; ok {
				values[key] = v
			}
			out.Rows = append(out.Rows, Row{Date: a.Date, Values: values})
			i++
			j++
		case a.Date.Before(n.Date):
			out.Rows = append(out.Rows, a)
			i++
		default:
			out.Rows = append(out.Rows, pointRow(n, measure, key))
			j++
		}
	}
	out.Rows = append(out.Rows, acc.Rows[i:]...)
	for ; j < len(next); j++ {
		out.Rows = append(out.Rows, pointRow(next[j], measure, key))
	}
	return out
}

func pointRow(p quote.PricePoint, measure quote.Measure, key string) Row {
	values := make(map[string]float64, 1)
	if v, ok := p.Fields[measure]; ok {
		values[key] = v
	}
	return Row{Date: p.Date, Values: values}
}

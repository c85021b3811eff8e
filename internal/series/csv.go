package series

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ahmethakanbesel/stockseries/internal/quote"
)

// WriteCSV writes the table with a Date column first. Unset cells are empty.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Date"}, t.Columns...)); err != nil {
		return err
	}

	record := make([]string, len(t.Columns)+1)
	for _, r := range t.Rows {
		record[0] = r.Date.Format(quote.DateFormat)
		for i, c := range t.Columns {
			record[i+1] = ""
			if v := r.Value(c); v.IsSome() {
				record[i+1] = strconv.FormatFloat(v.Unwrap(), 'f', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

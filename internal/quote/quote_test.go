package quote

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmethakanbesel/stockseries/internal/apperror"
)

func date(m, d int) time.Time {
	return time.Date(2024, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParseMeasures(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []Measure
		wantErr bool
	}{
		{name: "single", in: "close", want: []Measure{Close}},
		{name: "list with spaces", in: "open, high ,low,close", want: []Measure{Open, High, Low, Close}},
		{name: "duplicates collapsed", in: "close,open,close", want: []Measure{Close, Open}},
		{name: "upper case", in: "VOLUME", want: []Measure{Volume}},
		{name: "unknown", in: "open,adj_close", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "only commas", in: ",,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMeasures(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResolution(t *testing.T) {
	for _, s := range []string{"day", "daily", "1 day", "DAY"} {
		r, err := ParseResolution(s)
		require.NoError(t, err, s)
		assert.Equal(t, Daily, r, s)
		assert.Equal(t, "d", r.Code())
	}
	for _, s := range []string{"week", "weekly", "5 days"} {
		r, err := ParseResolution(s)
		require.NoError(t, err, s)
		assert.Equal(t, Weekly, r, s)
		assert.Equal(t, "w", r.Code())
	}
	_, err := ParseResolution("hour")
	assert.Error(t, err)
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	got := Day(time.Date(2024, 3, 9, 22, 15, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), got)
}

func TestRawSeriesSorted(t *testing.T) {
	asc := RawSeries{{Date: date(1, 1)}, {Date: date(1, 2)}, {Date: date(1, 5)}}
	assert.True(t, asc.Sorted())
	assert.True(t, RawSeries{}.Sorted())

	dup := RawSeries{{Date: date(1, 1)}, {Date: date(1, 1)}}
	assert.False(t, dup.Sorted())

	desc := RawSeries{{Date: date(1, 2)}, {Date: date(1, 1)}}
	assert.False(t, desc.Sorted())
}

func validRequest() Request {
	return Request{
		Symbol:     "AAA",
		Begin:      date(1, 1),
		End:        date(1, 31),
		Resolution: Daily,
		Measures:   []Measure{Close},
	}
}

func TestRequestValidate(t *testing.T) {
	require.Nil(t, validRequest().Validate())

	sameDay := validRequest()
	sameDay.End = sameDay.Begin
	require.Nil(t, sameDay.Validate())

	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantMsg string
	}{
		{"empty symbol", func(r *Request) { r.Symbol = "" }, "symbol is required"},
		{"padded symbol", func(r *Request) { r.Symbol = " AAA" }, "symbol must not contain surrounding whitespace"},
		{"zero begin", func(r *Request) { r.Begin = time.Time{} }, "begin date is required"},
		{"begin after end", func(r *Request) { r.Begin = date(2, 1) }, "begin date must not be after end date"},
		{"no measures", func(r *Request) { r.Measures = nil }, "at least one measure is required"},
		{"unknown measure", func(r *Request) { r.Measures = []Measure{Close, "adj_close"} }, `invalid measure "adj_close"`},
		{"unknown resolution", func(r *Request) { r.Resolution = "hour" }, `invalid resolution "hour"`},
		{"missing resolution", func(r *Request) { r.Resolution = "" }, `invalid resolution ""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			appErr := r.Validate()
			require.NotNil(t, appErr)
			assert.Equal(t, apperror.BadRequest, appErr.Code())
			assert.Equal(t, tt.wantMsg, appErr.Message())
		})
	}
}

func TestSymbolDataError(t *testing.T) {
	err := &SymbolDataError{Symbol: "ZZZ", End: date(3, 15), Err: io.ErrUnexpectedEOF}
	assert.Contains(t, err.Error(), `"ZZZ"`)
	assert.Contains(t, err.Error(), "2024-03-15")
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	bare := &SymbolDataError{Symbol: "ZZZ", End: date(3, 15)}
	assert.Equal(t, `symbol "ZZZ" is invalid or was not on market on 2024-03-15`, bare.Error())
}

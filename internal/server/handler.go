package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ahmethakanbesel/stockseries/internal/apperror"
	"github.com/ahmethakanbesel/stockseries/internal/quote"
	"github.com/ahmethakanbesel/stockseries/internal/report"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
	"github.com/ahmethakanbesel/stockseries/internal/series"
)

type handler struct {
	registry      *scraper.Registry
	defaultSource string
}

type reportInfo struct {
	report.Preset
	Durations []string `json:"durations"`
	Duration  string   `json:"duration"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Sources())
}

func (h *handler) listReports(w http.ResponseWriter, _ *http.Request) {
	presets := report.All()
	out := make([]reportInfo, len(presets))
	for i, p := range presets {
		out[i] = reportInfo{
			Preset:    p,
			Durations: report.Durations(),
			Duration:  fmt.Sprintf("%dw", int(p.Duration/(7*24*time.Hour))),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// service builds a series service over the fetcher named by the "source"
// query parameter.
func (h *handler) service(r *http.Request) (*series.Service, error) {
	source := r.URL.Query().Get("source")
	if source == "" {
		source = h.defaultSource
	}
	f, err := h.registry.Get(source)
	if err != nil {
		return nil, apperror.New(apperror.BadRequest, err.Error())
	}
	return series.NewService(f), nil
}

func (h *handler) runReport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	preset, ok := report.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("report %s not found", name))
		return
	}

	q := r.URL.Query()
	criteria := report.Criteria{Symbols: q.Get("symbols")}
	if criteria.Symbols == "" {
		writeError(w, http.StatusBadRequest, "symbols query parameter is required")
		return
	}

	var err error
	if v := q.Get("endDate"); v != "" {
		if criteria.EndDate, err = quote.ParseDate(v); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if v := q.Get("duration"); v != "" {
		if criteria.Duration, err = report.ParseDuration(v); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if v := q.Get("resolution"); v != "" {
		if criteria.Resolution, err = quote.ParseResolution(v); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	format := q.Get("format")
	if format != "" && format != "json" && format != "csv" {
		writeError(w, http.StatusBadRequest, "format must be json or csv")
		return
	}

	svc, err := h.service(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	table, err := svc.Run(r.Context(), preset, criteria)
	if err != nil {
		writeErr(w, err)
		return
	}

	if format == "csv" {
		writeCSV(w, preset.Name, table)
		return
	}
	writeJSON(w, http.StatusOK, newTableResponse(table))
}

func (h *handler) getSeries(w http.ResponseWriter, r *http.Request) {
	symbols := series.SplitSymbols(r.PathValue("symbols"))
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "at least one symbol is required")
		return
	}

	q := r.URL.Query()
	startDateStr := q.Get("startDate")
	if startDateStr == "" {
		writeError(w, http.StatusBadRequest, "startDate is required")
		return
	}
	startDate, err := quote.ParseDate(startDateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	endDate := quote.Day(time.Now())
	if v := q.Get("endDate"); v != "" {
		if endDate, err = quote.ParseDate(v); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	resolution := quote.Daily
	if v := q.Get("resolution"); v != "" {
		if resolution, err = quote.ParseResolution(v); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	measures := []quote.Measure{quote.Close}
	if v := q.Get("measures"); v != "" {
		if measures, err = quote.ParseMeasures(v); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if len(symbols) > 1 && len(measures) != 1 {
		writeError(w, http.StatusBadRequest, "multiple symbols take exactly one measure")
		return
	}

	format := q.Get("format")
	if format != "" && format != "json" && format != "csv" {
		writeError(w, http.StatusBadRequest, "format must be json or csv")
		return
	}

	svc, err := h.service(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var table series.Table
	if len(symbols) == 1 {
		table, err = svc.Single(r.Context(), quote.Request{
			Symbol:     symbols[0],
			Begin:      startDate,
			End:        endDate,
			Resolution: resolution,
			Measures:   measures,
		})
	} else {
		table, err = svc.Multi(r.Context(), series.MultiQuery{
			Symbols:    symbols,
			Begin:      startDate,
			End:        endDate,
			Resolution: resolution,
			Measure:    measures[0],
		})
	}
	if err != nil {
		writeErr(w, err)
		return
	}

	if format == "csv" {
		writeCSV(w, strings.ToLower(strings.Join(symbols, "-")), table)
		return
	}
	writeJSON(w, http.StatusOK, newTableResponse(table))
}

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ahmethakanbesel/stockseries/internal/apperror"
	"github.com/ahmethakanbesel/stockseries/internal/quote"
	"github.com/ahmethakanbesel/stockseries/internal/series"
)

type APIResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// TableResponse is the JSON form of a series table. Each row carries its date
// under "date" plus every column that is set for that date.
type TableResponse struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

func newTableResponse(t series.Table) TableResponse {
	resp := TableResponse{
		Columns: append([]string{}, t.Columns...),
		Rows:    make([]map[string]any, 0, len(t.Rows)),
	}
	for _, r := range t.Rows {
		row := map[string]any{"date": r.Date.Format(quote.DateFormat)}
		for _, c := range t.Columns {
			if v := r.Value(c); v.IsSome() {
				row[c] = v.Unwrap()
			}
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp
}

func writeJSON[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[T]{
		Message: "ok",
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[string]{
		Message: message,
		Data:    "",
	})
}

// writeErr maps service errors to a status code. Provider failures surface
// their message verbatim.
func writeErr(w http.ResponseWriter, err error) {
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		writeError(w, ae.HTTPStatus(), ae.Message())
		return
	}
	var sde *quote.SymbolDataError
	if errors.As(err, &sde) {
		writeError(w, http.StatusBadGateway, sde.Error())
		return
	}
	slog.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeCSV(w http.ResponseWriter, name string, t series.Table) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+name+".csv")
	w.WriteHeader(http.StatusOK)
	if err := t.WriteCSV(w); err != nil {
		slog.Error("write csv", "error", err)
	}
}

package quote

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ahmethakanbesel/stockseries/internal/apperror"
)

var validate = validator.New()

// Request asks one provider for one symbol's history.
type Request struct {
	Symbol     string     `validate:"required"`
	Begin      time.Time  `validate:"required"`
	End        time.Time  `validate:"required,gtefield=Begin"`
	Resolution Resolution `validate:"oneof=day week"`
	Measures   []Measure  `validate:"required,min=1,dive,oneof=open high low close volume"`
}

func (r Request) Validate() *apperror.AppError {
	if strings.TrimSpace(r.Symbol) != r.Symbol {
		return apperror.New(apperror.BadRequest, "symbol must not contain surrounding whitespace")
	}
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.New(apperror.BadRequest, err.Error())
	}
	return apperror.New(apperror.BadRequest, describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.StructField()
	switch {
	case field == "Symbol":
		return "symbol is required"
	case field == "Begin":
		return "begin date is required"
	case field == "End" && fe.Tag() == "gtefield":
		return "begin date must not be after end date"
	case field == "End":
		return "end date is required"
	case field == "Resolution":
		return fmt.Sprintf("invalid resolution %q", fe.Value())
	case field == "Measures":
		return "at least one measure is required"
	case strings.HasPrefix(field, "Measures["):
		return fmt.Sprintf("invalid measure %q", fe.Value())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

// SymbolDataError reports that a symbol's history could not be retrieved for
// the requested range. Unknown symbols and symbols without trades in the range
// are reported the same way.
type SymbolDataError struct {
	Symbol string
	End    time.Time
	Err    error
}

func (e *SymbolDataError) Error() string {
	msg := fmt.Sprintf("symbol %q is invalid or was not on market on %s", e.Symbol, e.End.Format(DateFormat))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SymbolDataError) Unwrap() error { return e.Err }

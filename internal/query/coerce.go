package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// valueParser turns the raw string of a filter clause into a typed SQL argument.
type valueParser struct {
	name  string
	parse func(raw string) (any, error)
}

var (
	dateParser     = valueParser{name: "date", parse: parseDate}
	dateTimeParser = valueParser{name: "dateTime", parse: parseDateTime}
	floatParser    = valueParser{name: "number", parse: parseFloat}
	stringParser   = valueParser{name: "string", parse: func(raw string) (any, error) { return raw, nil }}
)

// Parser chains, tried in order; the first success wins. Equality accepts any
// string, so a value that happens to look like a date is compared as a date.
var (
	equalityChain = []valueParser{dateParser, dateTimeParser, stringParser}
	temporalChain = []valueParser{dateParser, dateTimeParser}
	numericChain  = []valueParser{floatParser}
)

const dateLayout = "2006-01-02"

// Fractional seconds are accepted after the seconds field without being in the layout.
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func coerce(chain []valueParser, raw string) (any, error) {
	var errs []error
	for _, parser := range chain {
		value, err := parser.parse(raw)
		if err == nil {
			return value, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", parser.name, err))
	}
	return nil, fmt.Errorf("cannot coerce %q: %w", raw, errors.Join(errs...))
}

func parseDate(raw string) (any, error) {
	return time.Parse(dateLayout, strings.TrimSpace(raw))
}

func parseDateTime(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range dateTimeLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func parseFloat(raw string) (any, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, fmt.Errorf("%q is not a finite number", raw)
	}
	return value, nil
}

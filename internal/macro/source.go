package macro

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
)

// Source returns the raw observations of a series between start and end,
// both inclusive.
type Source interface {
	Fetch(ctx context.Context, code int, start, end civil.Date) ([]Observation, error)
}

// Window is one sub-range of a split query.
type Window struct {
	Start, End civil.Date
}

// SplitWindow cuts [start, end] into calendar-year aligned windows of at
// most maxYears years. The first window begins at start, every later one on
// January 1st. maxYears <= 0 returns the whole range.
func SplitWindow(start, end civil.Date, maxYears int) []Window {
	if maxYears <= 0 {
		return []Window{{Start: start, End: end}}
	}
	var out []Window
	for from := start; !from.After(end); {
		to := civil.Date{Year: from.Year + maxYears - 1, Month: 12, Day: 31}
		if to.After(end) {
			to = end
		}
		out = append(out, Window{Start: from, End: to})
		from = civil.Date{Year: to.Year + 1, Month: 1, Day: 1}
	}
	return out
}

// FetchWindowed fetches the series window by window, concatenates the parts,
// drops duplicate dates keeping the first and sorts the result.
func FetchWindowed(ctx context.Context, src Source, ind Indicator, start, end civil.Date) ([]Observation, error) {
	var all []Observation
	for _, w := range SplitWindow(start, end, ind.MaxSpanYears) {
		part, err := src.Fetch(ctx, ind.Code, w.Start, w.End)
		if err != nil {
			return nil, fmt.Errorf("FetchWindowed: series %d %s..%s: %w", ind.Code, w.Start, w.End, err)
		}
		all = append(all, part...)
	}
	return Dedupe(all), nil
}

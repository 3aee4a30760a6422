package macro

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-synth/internal/logger"
)

// IndicatorResult is the outcome of collecting one indicator: either a
// monthly series keyed by month-end date, or the reason it failed.
type IndicatorResult struct {
	Indicator Indicator
	Monthly   map[civil.Date]float64
	Err       error
}

// OK reports whether the indicator was collected.
func (r IndicatorResult) OK() bool {
	return r.Err == nil
}

// Result holds the spine and every per-indicator outcome, in collection
// order.
type Result struct {
	Spine      []civil.Date
	Indicators []IndicatorResult
}

// Failed returns the indicators that could not be collected.
func (r *Result) Failed() []IndicatorResult {
	var out []IndicatorResult
	for _, ir := range r.Indicators {
		if !ir.OK() {
			out = append(out, ir)
		}
	}
	return out
}

// Collector merges indicator series onto the month-end spine.
type Collector struct {
	Source Source
}

// NewCollector returns a collector reading from src.
func NewCollector(src Source) *Collector {
	return &Collector{Source: src}
}

// Collect builds the spine for [start, end] and collects every indicator
// independently. A failing indicator never affects the spine or the other
// indicators; its error is kept in the result and logged.
func (c *Collector) Collect(ctx context.Context, indicators []Indicator, start, end civil.Date) *Result {
	log := logger.FromContext(ctx)

	res := &Result{Spine: MonthEnds(start, end)}
	log.Info().
		Int("months", len(res.Spine)).
		Int("indicators", len(indicators)).
		Msg("Month-end spine built, collecting indicator series")

	for _, ind := range indicators {
		log.Info().Str("series", ind.Name).Int("code", ind.Code).Msg("Processing series")

		monthly, err := c.collectOne(ctx, ind, start, end)
		if err != nil {
			log.Warn().Err(err).Str("series", ind.Name).Msg("Series failed, column will be empty")
		} else {
			log.Info().Str("series", ind.Name).Int("months", len(monthly)).Msg("Series integrated")
		}
		res.Indicators = append(res.Indicators, IndicatorResult{Indicator: ind, Monthly: monthly, Err: err})
	}

	if failed := res.Failed(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, f := range failed {
			names[i] = f.Indicator.Name
		}
		log.Warn().
			Int("failed", len(failed)).
			Str("series", strings.Join(names, ",")).
			Msg("Some indicator series could not be collected")
	}
	return res
}

func (c *Collector) collectOne(ctx context.Context, ind Indicator, start, end civil.Date) (map[civil.Date]float64, error) {
	if err := ind.Validate(); err != nil {
		return nil, err
	}

	obs, err := FetchWindowed(ctx, c.Source, ind, start, end)
	if err != nil {
		return nil, err
	}
	if ind.Frequency == Daily {
		// non-trading days
		obs = ForwardFill(obs)
	}
	return Resample(obs, ind.Aggregation), nil
}

// MissingPolicy decides what happens to the column of a failed indicator.
type MissingPolicy string

const (
	// MissingNull keeps the column with every value null.
	MissingNull MissingPolicy = "null"
	// MissingOmit drops the column.
	MissingOmit MissingPolicy = "omit"
)

// ParseMissingPolicy resolves a configured policy name.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch MissingPolicy(s) {
	case "", MissingNull:
		return MissingNull, nil
	case MissingOmit:
		return MissingOmit, nil
	default:
		return "", fmt.Errorf("unknown missing-column policy %q (want %q or %q)", s, MissingNull, MissingOmit)
	}
}

// Table left-joins every indicator onto the spine. Columns follow the
// collection order, which is the canonical order of the configured
// indicators.
func (r *Result) Table(policy MissingPolicy) *Table {
	t := &Table{Dates: append([]civil.Date(nil), r.Spine...)}
	for _, ir := range r.Indicators {
		if !ir.OK() && policy == MissingOmit {
			continue
		}
		col := Column{Name: ir.Indicator.ColumnName(), Values: make([]Value, len(t.Dates))}
		for i, d := range t.Dates {
			if v, ok := ir.Monthly[d]; ok {
				col.Values[i] = Value{Float: v, Valid: true}
			}
		}
		t.Columns = append(t.Columns, col)
	}
	return t
}

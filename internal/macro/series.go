package macro

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
)

// Observation is one raw point of an indicator series. Valid is false when
// the provider published the date without a value.
type Observation struct {
	Date  civil.Date
	Value float64
	Valid bool
}

// MonthEnd returns the last day of d's month.
func MonthEnd(d civil.Date) civil.Date {
	return civil.DateOf(time.Date(d.Year, d.Month+1, 0, 0, 0, 0, 0, time.UTC))
}

// MonthEnds builds the month-end spine: every month-end date within
// [start, end], in order. A partial final month is not included.
func MonthEnds(start, end civil.Date) []civil.Date {
	var out []civil.Date
	for d := MonthEnd(start); !d.After(end); d = MonthEnd(d.AddDays(1)) {
		out = append(out, d)
	}
	return out
}

// Dedupe drops repeated dates keeping the first occurrence, then sorts
// ascending by date.
func Dedupe(obs []Observation) []Observation {
	seen := make(map[civil.Date]bool, len(obs))
	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if seen[o.Date] {
			continue
		}
		seen[o.Date] = true
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// ForwardFill carries the last valid value into later gaps. Leading gaps
// stay invalid. obs must be sorted.
func ForwardFill(obs []Observation) []Observation {
	out := make([]Observation, len(obs))
	var last *Observation
	for i, o := range obs {
		if !o.Valid && last != nil {
			o.Value, o.Valid = last.Value, true
		}
		out[i] = o
		if o.Valid {
			last = &out[i]
		}
	}
	return out
}

// Resample buckets sorted observations by calendar month and keys each
// bucket by its month-end date. Months without a valid value are absent.
func Resample(obs []Observation, agg Aggregation) map[civil.Date]float64 {
	type bucket struct {
		last  float64
		sum   float64
		count int
	}
	buckets := make(map[civil.Date]*bucket)
	for _, o := range obs {
		if !o.Valid {
			continue
		}
		key := MonthEnd(o.Date)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.last = o.Value
		b.sum += o.Value
		b.count++
	}

	out := make(map[civil.Date]float64, len(buckets))
	for key, b := range buckets {
		switch agg {
		case AggregateMean:
			out[key] = b.sum / float64(b.count)
		default:
			out[key] = b.last
		}
	}
	return out
}

// Package macro collects external macroeconomic indicator series and merges
// them onto a month-end date spine.
package macro

import "fmt"

// Frequency is the native sampling rate of a series.
type Frequency string

const (
	Daily   Frequency = "daily"
	Monthly Frequency = "monthly"
)

// Aggregation selects how observations within a month collapse to one value.
type Aggregation string

const (
	// AggregateLast keeps the last observed value; used for rate-like series.
	AggregateLast Aggregation = "last"
	// AggregateMean averages the month; used for level-like series.
	AggregateMean Aggregation = "mean"
)

// Indicator describes one series to collect.
type Indicator struct {
	Name        string      `yaml:"name"`
	Column      string      `yaml:"column"` // output column; defaults to Name
	Code        int         `yaml:"code"`   // provider series code
	Frequency   Frequency   `yaml:"frequency"`
	Aggregation Aggregation `yaml:"aggregation"`
	// MaxSpanYears caps the calendar years per provider query. Zero means
	// the full window is fetched in one call.
	MaxSpanYears int `yaml:"max_span_years"`
}

// ColumnName returns the output column for the indicator.
func (i Indicator) ColumnName() string {
	if i.Column != "" {
		return i.Column
	}
	return i.Name
}

// Validate checks the indicator is collectable.
func (i Indicator) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("indicator: name is required")
	}
	if i.Code <= 0 {
		return fmt.Errorf("indicator %s: code must be positive", i.Name)
	}
	switch i.Frequency {
	case Daily, Monthly:
	default:
		return fmt.Errorf("indicator %s: unknown frequency %q", i.Name, i.Frequency)
	}
	switch i.Aggregation {
	case AggregateLast, AggregateMean:
	default:
		return fmt.Errorf("indicator %s: unknown aggregation %q", i.Name, i.Aggregation)
	}
	if i.MaxSpanYears < 0 {
		return fmt.Errorf("indicator %s: max_span_years must not be negative", i.Name)
	}
	return nil
}

// DefaultIndicators are the Banco Central do Brasil SGS series of the
// dataset, in canonical column order. SELIC is daily and the provider
// rejects daily queries spanning more than ten years.
func DefaultIndicators() []Indicator {
	return []Indicator{
		{Name: "SELIC_DIARIA", Column: "selic_fim_mes_anualizada", Code: 11, Frequency: Daily, Aggregation: AggregateLast, MaxSpanYears: 10},
		{Name: "IPCA_MENSAL", Code: 433, Frequency: Monthly, Aggregation: AggregateMean},
		{Name: "DESEMPREGO_MENSAL", Code: 24369, Frequency: Monthly, Aggregation: AggregateMean},
		{Name: "PIB_MENSAL", Code: 24368, Frequency: Monthly, Aggregation: AggregateMean},
	}
}

package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-synth/internal/domain"
	"github.com/dvloznov/finance-synth/internal/macro"
)

type CustomerRow struct {
	CustomerID int64  `bigquery:"customer_id"` // REQUIRED
	RunID      string `bigquery:"run_id"`      // REQUIRED

	FullName  string     `bigquery:"full_name"`  // REQUIRED
	BirthDate civil.Date `bigquery:"birth_date"` // REQUIRED
	Age       int64      `bigquery:"age"`        // REQUIRED

	City  string `bigquery:"city"`  // REQUIRED
	State string `bigquery:"state"` // REQUIRED

	AccountOpened civil.Date `bigquery:"account_opened"` // REQUIRED
	IncomeBracket string     `bigquery:"income_bracket"` // REQUIRED
	CreditScore   int64      `bigquery:"credit_score"`   // REQUIRED

	LoadedTS time.Time `bigquery:"loaded_ts"` // REQUIRED
}

// NewCustomerRow maps a generated customer onto the warehouse schema.
func NewCustomerRow(c domain.Customer, runID string, loaded time.Time) *CustomerRow {
	return &CustomerRow{
		CustomerID:    c.ID,
		RunID:         runID,
		FullName:      c.FullName,
		BirthDate:     c.BirthDate,
		Age:           int64(c.Age),
		City:          c.City,
		State:         c.State,
		AccountOpened: c.AccountOpened,
		IncomeBracket: string(c.IncomeBracket),
		CreditScore:   int64(c.CreditScore),
		LoadedTS:      loaded,
	}
}

type TransactionRow struct {
	TransactionID int64  `bigquery:"transaction_id"` // REQUIRED
	CustomerID    int64  `bigquery:"customer_id"`    // REQUIRED
	RunID         string `bigquery:"run_id"`         // REQUIRED

	TransactionTS civil.DateTime `bigquery:"transaction_ts"` // REQUIRED DATETIME

	TransactionType string   `bigquery:"transaction_type"` // REQUIRED
	Amount          *big.Rat `bigquery:"amount"`           // REQUIRED NUMERIC
	Channel         string   `bigquery:"channel"`          // REQUIRED

	LoadedTS time.Time `bigquery:"loaded_ts"` // REQUIRED
}

// NewTransactionRow maps a generated transaction onto the warehouse schema.
func NewTransactionRow(tx domain.Transaction, runID string, loaded time.Time) *TransactionRow {
	return &TransactionRow{
		TransactionID:   tx.ID,
		CustomerID:      tx.CustomerID,
		RunID:           runID,
		TransactionTS:   civil.DateTimeOf(tx.Timestamp),
		TransactionType: string(tx.Type),
		Amount:          tx.Amount.Rat(),
		Channel:         string(tx.Channel),
		LoadedTS:        loaded,
	}
}

// MacroRow is one indicator value in long format. It implements
// bigquery.ValueSaver so null values load as NULL and reloads of the same
// run deduplicate on the insert id.
type MacroRow struct {
	MonthEnd  civil.Date
	Indicator string
	Value     bigquery.NullFloat64
	RunID     string
	LoadedTS  time.Time
}

// Save implements bigquery.ValueSaver.
func (r *MacroRow) Save() (map[string]bigquery.Value, string, error) {
	row := map[string]bigquery.Value{
		"month_end": r.MonthEnd,
		"indicator": r.Indicator,
		"value":     nil,
		"run_id":    r.RunID,
		"loaded_ts": r.LoadedTS,
	}
	if r.Value.Valid {
		row["value"] = r.Value.Float64
	}
	return row, r.InsertID(), nil
}

// InsertID identifies the row within its run.
func (r *MacroRow) InsertID() string {
	return r.RunID + "/" + r.Indicator + "/" + r.MonthEnd.String()
}

// NewMacroRows unpivots the macro table, one row per month and column.
func NewMacroRows(t *macro.Table, runID string, loaded time.Time) []*MacroRow {
	rows := make([]*MacroRow, 0, t.Len()*len(t.Columns))
	for _, c := range t.Columns {
		for i, d := range t.Dates {
			v := c.Values[i]
			rows = append(rows, &MacroRow{
				MonthEnd:  d,
				Indicator: c.Name,
				Value:     bigquery.NullFloat64{Float64: v.Float, Valid: v.Valid},
				RunID:     runID,
				LoadedTS:  loaded,
			})
		}
	}
	return rows
}

package bigquery

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-synth/internal/domain"
	"github.com/dvloznov/finance-synth/internal/macro"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loaded = time.Date(2025, 10, 16, 9, 30, 0, 0, time.UTC)

func TestNewCustomerRow(t *testing.T) {
	c := domain.Customer{
		ID:            1000,
		FullName:      "Maria Souza",
		BirthDate:     civil.Date{Year: 1990, Month: time.May, Day: 4},
		Age:           35,
		City:          "Recife",
		State:         "PE",
		AccountOpened: civil.Date{Year: 2021, Month: time.January, Day: 10},
		IncomeBracket: domain.Income3001To5000,
		CreditScore:   640,
	}

	row := NewCustomerRow(c, "run-1", loaded)
	assert.Equal(t, &CustomerRow{
		CustomerID:    1000,
		RunID:         "run-1",
		FullName:      "Maria Souza",
		BirthDate:     c.BirthDate,
		Age:           35,
		City:          "Recife",
		State:         "PE",
		AccountOpened: c.AccountOpened,
		IncomeBracket: "3001-5000",
		CreditScore:   640,
		LoadedTS:      loaded,
	}, row)
}

func TestNewTransactionRow(t *testing.T) {
	tx := domain.Transaction{
		ID:         7,
		CustomerID: 1000,
		Timestamp:  time.Date(2021, 3, 5, 0, 0, 0, 0, time.UTC),
		Type:       domain.TypeInstant,
		Amount:     decimal.RequireFromString("123.45"),
		Channel:    domain.ChannelInternet,
	}

	row := NewTransactionRow(tx, "run-1", loaded)
	assert.Equal(t, int64(7), row.TransactionID)
	assert.Equal(t, "2021-03-05T00:00:00", row.TransactionTS.String())
	assert.Equal(t, "PIX", row.TransactionType)
	assert.Equal(t, "Internet Banking", row.Channel)
	assert.Equal(t, 0, row.Amount.Cmp(big.NewRat(12345, 100)))
}

func TestNewMacroRows_AndSave(t *testing.T) {
	table := &macro.Table{
		Dates: []civil.Date{{Year: 2000, Month: time.January, Day: 31}, {Year: 2000, Month: time.February, Day: 29}},
		Columns: []macro.Column{
			{Name: "IPCA_MENSAL", Values: []macro.Value{{Float: 0.62, Valid: true}, {}}},
			{Name: "PIB_MENSAL", Values: []macro.Value{{}, {Float: 100, Valid: true}}},
		},
	}

	rows := NewMacroRows(table, "run-1", loaded)
	require.Len(t, rows, 4)

	values, insertID, err := rows[0].Save()
	require.NoError(t, err)
	assert.Equal(t, "run-1/IPCA_MENSAL/2000-01-31", insertID)
	assert.Equal(t, bigquery.Value(0.62), values["value"])
	assert.Equal(t, bigquery.Value(civil.Date{Year: 2000, Month: time.January, Day: 31}), values["month_end"])
	assert.Equal(t, bigquery.Value("IPCA_MENSAL"), values["indicator"])

	values, _, err = rows[1].Save()
	require.NoError(t, err)
	v, ok := values["value"]
	assert.True(t, ok)
	assert.Nil(t, v, "null indicator value loads as NULL")

	assert.Equal(t, "PIB_MENSAL", rows[3].Indicator)
	assert.True(t, rows[3].Value.Valid)
}

type recordingPutter struct {
	batches []int
	failAt  int
}

func (p *recordingPutter) Put(ctx context.Context, src interface{}) error {
	rows := src.([]*CustomerRow)
	p.batches = append(p.batches, len(rows))
	if p.failAt > 0 && len(p.batches) == p.failAt {
		return errors.New("quota exceeded")
	}
	return nil
}

func TestPutBatched(t *testing.T) {
	rows := make([]*CustomerRow, 1201)
	for i := range rows {
		rows[i] = &CustomerRow{CustomerID: int64(1000 + i)}
	}

	p := &recordingPutter{}
	require.NoError(t, putBatched(context.Background(), p, rows, 500))
	assert.Equal(t, []int{500, 500, 201}, p.batches)

	p = &recordingPutter{}
	require.NoError(t, putBatched(context.Background(), p, rows[:3], 0))
	assert.Equal(t, []int{3}, p.batches)

	p = &recordingPutter{failAt: 2}
	err := putBatched(context.Background(), p, rows, 500)
	assert.ErrorContains(t, err, "rows 500-999")
	assert.Len(t, p.batches, 2)
}

func TestDatasetRef(t *testing.T) {
	ds := Dataset{ProjectID: "proj", DatasetID: "finance_synth"}
	assert.Equal(t, "`proj.finance_synth.generation_runs`", ds.Ref(GenerationRunsTable))
}

func TestTruncateError(t *testing.T) {
	assert.Equal(t, "", truncateError(nil))
	assert.Equal(t, "boom", truncateError(errors.New("boom")))
	assert.Len(t, truncateError(errors.New(strings.Repeat("x", 5000))), maxErrorMessageLen)
}

package bigquery

import (
	"context"
	"fmt"
)

// Table names inside the warehouse dataset.
const (
	CustomersTable      = "customers"
	TransactionsTable   = "transactions"
	MacroTable          = "macro_indicators"
	GenerationRunsTable = "generation_runs"
)

// DefaultBatchSize caps the rows sent per streaming insert request.
const DefaultBatchSize = 500

// Dataset locates the warehouse dataset.
type Dataset struct {
	ProjectID string
	DatasetID string
}

// Ref returns the backtick-quoted `project.dataset.table` reference for SQL.
func (d Dataset) Ref(table string) string {
	return fmt.Sprintf("`%s.%s.%s`", d.ProjectID, d.DatasetID, table)
}

// rowPutter is satisfied by *bigquery.Inserter.
type rowPutter interface {
	Put(ctx context.Context, src interface{}) error
}

// putBatched streams rows in slices of at most size rows.
func putBatched[T any](ctx context.Context, p rowPutter, rows []T, size int) error {
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		if err := p.Put(ctx, rows[start:end]); err != nil {
			return fmt.Errorf("rows %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

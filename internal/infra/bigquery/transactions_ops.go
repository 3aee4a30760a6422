package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertCustomersWithClient streams customer rows into the customers table
// in batches.
func InsertCustomersWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, rows []*CustomerRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.DatasetInProject(ds.ProjectID, ds.DatasetID).Table(CustomersTable).Inserter()
	if err := putBatched(ctx, inserter, rows, DefaultBatchSize); err != nil {
		return fmt.Errorf("InsertCustomers: inserting rows: %w", err)
	}
	return nil
}

// InsertTransactionsWithClient streams transaction rows into the
// transactions table in batches.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.DatasetInProject(ds.ProjectID, ds.DatasetID).Table(TransactionsTable).Inserter()
	if err := putBatched(ctx, inserter, rows, DefaultBatchSize); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// InsertMacroWithClient streams long-format macro rows into the
// macro_indicators table in batches.
func InsertMacroWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, rows []*MacroRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.DatasetInProject(ds.ProjectID, ds.DatasetID).Table(MacroTable).Inserter()
	if err := putBatched(ctx, inserter, rows, DefaultBatchSize); err != nil {
		return fmt.Errorf("InsertMacro: inserting rows: %w", err)
	}
	return nil
}

// CountRowsWithClient counts the rows a run loaded into table.
func CountRowsWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, table, runID string) (int64, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT COUNT(*) AS n
		FROM %s
		WHERE run_id = @run_id
	`, ds.Ref(table)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("CountRows: query read: %w", err)
	}

	var row struct {
		N int64 `bigquery:"n"`
	}
	err = it.Next(&row)
	if err == iterator.Done {
		return 0, fmt.Errorf("CountRows: no result row")
	}
	if err != nil {
		return 0, fmt.Errorf("CountRows: iter next: %w", err)
	}
	return row.N, nil
}

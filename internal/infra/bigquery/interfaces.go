package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// DatasetRepository provides the warehouse operations used when loading a
// generated dataset.
type DatasetRepository interface {
	// StartRun records a new generation run with status=RUNNING and returns its run_id.
	StartRun(ctx context.Context, seed uint64) (string, error)

	// MarkRunSucceeded sets status=SUCCESS and the loaded row counts.
	MarkRunSucceeded(ctx context.Context, runID string, counts RunCounts) error

	// MarkRunFailed sets status=FAILED and the error message.
	MarkRunFailed(ctx context.Context, runID string, runErr error)

	// InsertCustomers streams customer rows.
	InsertCustomers(ctx context.Context, rows []*CustomerRow) error

	// InsertTransactions streams transaction rows.
	InsertTransactions(ctx context.Context, rows []*TransactionRow) error

	// InsertMacro streams long-format macro rows.
	InsertMacro(ctx context.Context, rows []*MacroRow) error

	// CountRows counts the rows a run loaded into a table.
	CountRows(ctx context.Context, table, runID string) (int64, error)
}

// BigQueryDatasetRepository is the concrete implementation of
// DatasetRepository. It holds a shared BigQuery client to avoid creating a
// new connection for each operation.
type BigQueryDatasetRepository struct {
	client *bigquery.Client
	ds     Dataset
}

// NewBigQueryDatasetRepository creates a repository for the given dataset.
func NewBigQueryDatasetRepository(ctx context.Context, ds Dataset) (*BigQueryDatasetRepository, error) {
	client, err := bigquery.NewClient(ctx, ds.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryDatasetRepository: creating client: %w", err)
	}
	return &BigQueryDatasetRepository{
		client: client,
		ds:     ds,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryDatasetRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// StartRun delegates to StartRunWithClient with the shared client.
func (r *BigQueryDatasetRepository) StartRun(ctx context.Context, seed uint64) (string, error) {
	return StartRunWithClient(ctx, r.client, r.ds, seed)
}

// MarkRunSucceeded delegates to MarkRunSucceededWithClient with the shared client.
func (r *BigQueryDatasetRepository) MarkRunSucceeded(ctx context.Context, runID string, counts RunCounts) error {
	return MarkRunSucceededWithClient(ctx, r.client, r.ds, runID, counts)
}

// MarkRunFailed delegates to MarkRunFailedWithClient with the shared client.
func (r *BigQueryDatasetRepository) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	MarkRunFailedWithClient(ctx, r.client, r.ds, runID, runErr)
}

// InsertCustomers delegates to InsertCustomersWithClient with the shared client.
func (r *BigQueryDatasetRepository) InsertCustomers(ctx context.Context, rows []*CustomerRow) error {
	return InsertCustomersWithClient(ctx, r.client, r.ds, rows)
}

// InsertTransactions delegates to InsertTransactionsWithClient with the shared client.
func (r *BigQueryDatasetRepository) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	return InsertTransactionsWithClient(ctx, r.client, r.ds, rows)
}

// InsertMacro delegates to InsertMacroWithClient with the shared client.
func (r *BigQueryDatasetRepository) InsertMacro(ctx context.Context, rows []*MacroRow) error {
	return InsertMacroWithClient(ctx, r.client, r.ds, rows)
}

// CountRows delegates to CountRowsWithClient with the shared client.
func (r *BigQueryDatasetRepository) CountRows(ctx context.Context, table, runID string) (int64, error) {
	return CountRowsWithClient(ctx, r.client, r.ds, table, runID)
}

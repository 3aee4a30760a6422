package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// Run statuses.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

type GenerationRunRow struct {
	RunID string `bigquery:"run_id"` // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	Seed         string `bigquery:"seed"`          // REQUIRED, decimal uint64
	Status       string `bigquery:"status"`        // REQUIRED
	ErrorMessage string `bigquery:"error_message"` // NULLABLE

	Customers    bigquery.NullInt64 `bigquery:"customers"`    // NULLABLE
	Transactions bigquery.NullInt64 `bigquery:"transactions"` // NULLABLE
	MacroRows    bigquery.NullInt64 `bigquery:"macro_rows"`   // NULLABLE
}

// RunCounts are the row counts recorded when a run succeeds.
type RunCounts struct {
	Customers    int64
	Transactions int64
	MacroRows    int64
}

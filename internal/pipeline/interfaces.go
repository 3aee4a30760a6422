package pipeline

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-synth/internal/gcsuploader"
	infra "github.com/dvloznov/finance-synth/internal/infra/bigquery"
	"github.com/dvloznov/finance-synth/internal/macro"
)

// StorageService is the object storage used to publish tables and read
// gs:// inputs.
type StorageService = gcsuploader.StorageService

// DatasetRepository is the warehouse the tables are loaded into.
type DatasetRepository = infra.DatasetRepository

// MacroCollector collects indicator series onto the month-end spine.
// *macro.Collector is the production implementation.
type MacroCollector interface {
	Collect(ctx context.Context, indicators []macro.Indicator, start, end civil.Date) *macro.Result
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-synth/internal/customers"
	"github.com/dvloznov/finance-synth/internal/domain"
	"github.com/dvloznov/finance-synth/internal/gcsuploader"
	infra "github.com/dvloznov/finance-synth/internal/infra/bigquery"
	"github.com/dvloznov/finance-synth/internal/logger"
	"github.com/dvloznov/finance-synth/internal/macro"
	"github.com/dvloznov/finance-synth/internal/tables"
	"github.com/dvloznov/finance-synth/internal/transactions"
)

// warehouseChunk is the number of transactions read from the table per
// repository insert call.
const warehouseChunk = 10000

// GenerateCustomersStep synthesizes the customer dimension.
type GenerateCustomersStep struct {
	Count            int
	Start, End, AsOf civil.Date
}

func (s *GenerateCustomersStep) Execute(ctx context.Context, state *PipelineState) error {
	gen, err := customers.NewGenerator(customers.Config{
		Start: s.Start,
		End:   s.End,
		AsOf:  s.AsOf,
	}, state.Rand)
	if err != nil {
		return fmt.Errorf("GenerateCustomers: %w", err)
	}
	state.Customers = gen.Generate(ctx, s.Count)

	log := logger.FromContext(ctx)
	log.Info().
		Int("customers", len(state.Customers)).
		Msg("Customer table generated")
	return nil
}

// WriteCustomersStep writes the customer table to Path.
type WriteCustomersStep struct {
	Path string
}

func (s *WriteCustomersStep) Execute(ctx context.Context, state *PipelineState) error {
	f, err := tables.Create(s.Path)
	if err != nil {
		return fmt.Errorf("WriteCustomers: %w", err)
	}
	if err := tables.WriteCustomers(f, state.Customers); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("WriteCustomers: closing %s: %w", s.Path, err)
	}

	state.addOutput(s.Path)
	log := logger.FromContext(ctx)
	log.Info().Str("path", s.Path).Int("rows", len(state.Customers)).Msg("Customer table written")
	return nil
}

// ReadCustomersStep loads the customer table the transactions are generated
// from. A missing table fails with tables.ErrMissingInput.
type ReadCustomersStep struct {
	Path    string
	Storage StorageService
}

func (s *ReadCustomersStep) Execute(ctx context.Context, state *PipelineState) error {
	rc, err := tables.Open(ctx, s.Storage, s.Path)
	if err != nil {
		return fmt.Errorf("ReadCustomers: %w", err)
	}
	defer rc.Close()

	list, err := tables.ReadCustomers(rc)
	if err != nil {
		return err
	}
	state.Customers = list

	log := logger.FromContext(ctx)
	log.Info().Str("path", s.Path).Int("customers", len(list)).Msg("Customer table loaded")
	return nil
}

// GenerateTransactionsStep streams the transaction fact table to Path.
type GenerateTransactionsStep struct {
	Path        string
	Launch, End civil.Date
	Volume      transactions.VolumePolicy
}

func (s *GenerateTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	f, err := tables.Create(s.Path)
	if err != nil {
		return fmt.Errorf("GenerateTransactions: %w", err)
	}
	defer f.Close()

	tw, err := tables.NewTransactionWriter(f)
	if err != nil {
		return err
	}

	gen := &transactions.Generator{
		Launch: s.Launch,
		End:    s.End,
		Volume: s.Volume,
		Rand:   state.Rand,
	}
	stats, err := gen.Stream(ctx, state.Customers, tw.Write)
	if err != nil {
		return fmt.Errorf("GenerateTransactions: %w", err)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("GenerateTransactions: closing %s: %w", s.Path, err)
	}

	state.TransactionStats = stats
	state.addOutput(s.Path)
	log := logger.FromContext(ctx)
	log.Info().
		Str("path", s.Path).
		Int("customers", stats.Customers).
		Int("skipped", stats.Skipped).
		Int("transactions", stats.Transactions).
		Msg("Transaction table written")
	return nil
}

// CollectMacroStep collects the macro indicators. Indicator failures never
// fail the step.
type CollectMacroStep struct {
	Collector   MacroCollector
	Indicators  []macro.Indicator
	Start, End  civil.Date
	Missing     macro.MissingPolicy
	TrimLeading bool
}

func (s *CollectMacroStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Collector == nil {
		return errors.New("CollectMacro: no collector configured")
	}

	res := s.Collector.Collect(ctx, s.Indicators, s.Start, s.End)
	t := res.Table(s.Missing)
	if s.TrimLeading {
		t = t.TrimLeading()
	}
	state.Macro = t

	state.FailedIndicators = nil
	for _, f := range res.Failed() {
		state.FailedIndicators = append(state.FailedIndicators, f.Indicator.Name)
	}
	return nil
}

// WriteMacroStep writes the macro table to Path.
type WriteMacroStep struct {
	Path string
}

func (s *WriteMacroStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Macro == nil {
		return errors.New("WriteMacro: no macro table collected")
	}

	f, err := tables.Create(s.Path)
	if err != nil {
		return fmt.Errorf("WriteMacro: %w", err)
	}
	if err := tables.WriteMacro(f, state.Macro); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("WriteMacro: closing %s: %w", s.Path, err)
	}

	state.addOutput(s.Path)
	log := logger.FromContext(ctx)
	log.Info().
		Str("path", s.Path).
		Int("months", state.Macro.Len()).
		Int("columns", len(state.Macro.Columns)).
		Msg("Macro table written")
	return nil
}

// ReadMacroStep loads a previously written macro table.
type ReadMacroStep struct {
	Path    string
	Storage StorageService
}

func (s *ReadMacroStep) Execute(ctx context.Context, state *PipelineState) error {
	rc, err := tables.Open(ctx, s.Storage, s.Path)
	if err != nil {
		return fmt.Errorf("ReadMacro: %w", err)
	}
	defer rc.Close()

	t, err := tables.ReadMacro(rc)
	if err != nil {
		return err
	}
	state.Macro = t
	return nil
}

// PublishStep uploads every written table to Bucket under Prefix.
type PublishStep struct {
	Storage StorageService
	Bucket  string
	Prefix  string
}

func (s *PublishStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)

	for _, path := range state.Outputs {
		object := gcsuploader.ObjectName(s.Prefix, path)
		if err := s.Storage.UploadFile(ctx, s.Bucket, object, path); err != nil {
			return fmt.Errorf("Publish: %w", err)
		}
		uri := fmt.Sprintf("gs://%s/%s", s.Bucket, object)
		state.Published = append(state.Published, uri)
		log.Info().Str("file", path).Str("uri", uri).Msg("Table published")
	}
	return nil
}

// LoadWarehouseStep loads the three tables into the warehouse under a new
// generation run, marking the run failed if any insert fails.
type LoadWarehouseStep struct {
	Repo             DatasetRepository
	TransactionsPath string
}

func (s *LoadWarehouseStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)

	runID, err := s.Repo.StartRun(ctx, state.Seed)
	if err != nil {
		return fmt.Errorf("LoadWarehouse: %w", err)
	}
	state.RunID = runID
	log = log.With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx, log)

	counts, err := s.load(ctx, state, runID)
	if err != nil {
		s.Repo.MarkRunFailed(ctx, runID, err)
		return fmt.Errorf("LoadWarehouse: %w", err)
	}

	s.verify(ctx, runID, counts)

	if err := s.Repo.MarkRunSucceeded(ctx, runID, counts); err != nil {
		return fmt.Errorf("LoadWarehouse: %w", err)
	}
	log.Info().
		Int64("customers", counts.Customers).
		Int64("transactions", counts.Transactions).
		Int64("macro_rows", counts.MacroRows).
		Msg("Warehouse load complete")
	return nil
}

func (s *LoadWarehouseStep) load(ctx context.Context, state *PipelineState, runID string) (infra.RunCounts, error) {
	var counts infra.RunCounts
	loaded := time.Now()

	customerRows := make([]*infra.CustomerRow, len(state.Customers))
	for i, c := range state.Customers {
		customerRows[i] = infra.NewCustomerRow(c, runID, loaded)
	}
	if err := s.Repo.InsertCustomers(ctx, customerRows); err != nil {
		return counts, err
	}
	counts.Customers = int64(len(customerRows))

	rc, err := tables.Open(ctx, nil, s.TransactionsPath)
	if err != nil {
		return counts, err
	}
	defer rc.Close()

	chunk := make([]*infra.TransactionRow, 0, warehouseChunk)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := s.Repo.InsertTransactions(ctx, chunk); err != nil {
			return err
		}
		counts.Transactions += int64(len(chunk))
		chunk = chunk[:0]
		return nil
	}
	err = tables.ScanTransactions(rc, func(tx domain.Transaction) error {
		chunk = append(chunk, infra.NewTransactionRow(tx, runID, loaded))
		if len(chunk) == warehouseChunk {
			return flush()
		}
		return nil
	})
	if err != nil {
		return counts, err
	}
	if err := flush(); err != nil {
		return counts, err
	}

	if state.Macro != nil {
		macroRows := infra.NewMacroRows(state.Macro, runID, loaded)
		if err := s.Repo.InsertMacro(ctx, macroRows); err != nil {
			return counts, err
		}
		counts.MacroRows = int64(len(macroRows))
	}
	return counts, nil
}

// verify compares loaded counts with what the warehouse reports. Mismatches
// are logged, not returned.
func (s *LoadWarehouseStep) verify(ctx context.Context, runID string, counts infra.RunCounts) {
	log := logger.FromContext(ctx)

	expected := map[string]int64{
		infra.CustomersTable:    counts.Customers,
		infra.TransactionsTable: counts.Transactions,
		infra.MacroTable:        counts.MacroRows,
	}
	for _, table := range []string{infra.CustomersTable, infra.TransactionsTable, infra.MacroTable} {
		got, err := s.Repo.CountRows(ctx, table, runID)
		if err != nil {
			log.Warn().Err(err).Str("table", table).Msg("Could not verify loaded rows")
			continue
		}
		if got != expected[table] {
			log.Warn().
				Str("table", table).
				Int64("expected", expected[table]).
				Int64("found", got).
				Msg("Loaded row count differs")
		}
	}
}

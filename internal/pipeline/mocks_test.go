package pipeline_test

import (
	"context"
	"sync"

	"cloud.google.com/go/civil"
	infra "github.com/dvloznov/finance-synth/internal/infra/bigquery"
	"github.com/dvloznov/finance-synth/internal/macro"
)

// MockDatasetRepository is a mock implementation of DatasetRepository that
// records what it receives.
type MockDatasetRepository struct {
	StartRunFunc           func(ctx context.Context, seed uint64) (string, error)
	MarkRunSucceededFunc   func(ctx context.Context, runID string, counts infra.RunCounts) error
	MarkRunFailedFunc      func(ctx context.Context, runID string, runErr error)
	InsertCustomersFunc    func(ctx context.Context, rows []*infra.CustomerRow) error
	InsertTransactionsFunc func(ctx context.Context, rows []*infra.TransactionRow) error
	InsertMacroFunc        func(ctx context.Context, rows []*infra.MacroRow) error
	CountRowsFunc          func(ctx context.Context, table, runID string) (int64, error)

	mu           sync.Mutex
	customers    int
	transactions int
	macroRows    int
	succeeded    *infra.RunCounts
	failed       error
}

func (m *MockDatasetRepository) StartRun(ctx context.Context, seed uint64) (string, error) {
	if m.StartRunFunc != nil {
		return m.StartRunFunc(ctx, seed)
	}
	return "test-run-id", nil
}

func (m *MockDatasetRepository) MarkRunSucceeded(ctx context.Context, runID string, counts infra.RunCounts) error {
	m.mu.Lock()
	m.succeeded = &counts
	m.mu.Unlock()
	if m.MarkRunSucceededFunc != nil {
		return m.MarkRunSucceededFunc(ctx, runID, counts)
	}
	return nil
}

func (m *MockDatasetRepository) MarkRunFailed(ctx context.Context, runID string, runErr error) {
	m.mu.Lock()
	m.failed = runErr
	m.mu.Unlock()
	if m.MarkRunFailedFunc != nil {
		m.MarkRunFailedFunc(ctx, runID, runErr)
	}
}

func (m *MockDatasetRepository) InsertCustomers(ctx context.Context, rows []*infra.CustomerRow) error {
	if m.InsertCustomersFunc != nil {
		if err := m.InsertCustomersFunc(ctx, rows); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.customers += len(rows)
	m.mu.Unlock()
	return nil
}

func (m *MockDatasetRepository) InsertTransactions(ctx context.Context, rows []*infra.TransactionRow) error {
	if m.InsertTransactionsFunc != nil {
		if err := m.InsertTransactionsFunc(ctx, rows); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.transactions += len(rows)
	m.mu.Unlock()
	return nil
}

func (m *MockDatasetRepository) InsertMacro(ctx context.Context, rows []*infra.MacroRow) error {
	if m.InsertMacroFunc != nil {
		if err := m.InsertMacroFunc(ctx, rows); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.macroRows += len(rows)
	m.mu.Unlock()
	return nil
}

func (m *MockDatasetRepository) CountRows(ctx context.Context, table, runID string) (int64, error) {
	if m.CountRowsFunc != nil {
		return m.CountRowsFunc(ctx, table, runID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch table {
	case infra.CustomersTable:
		return int64(m.customers), nil
	case infra.TransactionsTable:
		return int64(m.transactions), nil
	default:
		return int64(m.macroRows), nil
	}
}

// MockMacroCollector is a mock implementation of MacroCollector.
type MockMacroCollector struct {
	CollectFunc func(ctx context.Context, indicators []macro.Indicator, start, end civil.Date) *macro.Result
}

func (m *MockMacroCollector) Collect(ctx context.Context, indicators []macro.Indicator, start, end civil.Date) *macro.Result {
	if m.CollectFunc != nil {
		return m.CollectFunc(ctx, indicators, start, end)
	}
	res := &macro.Result{Spine: macro.MonthEnds(start, end)}
	for i, ind := range indicators {
		monthly := map[civil.Date]float64{}
		for j, d := range res.Spine {
			monthly[d] = float64(i*1000 + j)
		}
		res.Indicators = append(res.Indicators, macro.IndicatorResult{Indicator: ind, Monthly: monthly})
	}
	return res
}

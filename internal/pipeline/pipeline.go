package pipeline

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/dvloznov/finance-synth/internal/config"
	"github.com/dvloznov/finance-synth/internal/logger"
	"github.com/dvloznov/finance-synth/internal/macro"
	"github.com/dvloznov/finance-synth/internal/transactions"
)

// PipelineStep represents a single step of dataset generation.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Steps returns the configured steps.
func (p *Pipeline) Steps() []PipelineStep {
	return p.steps
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)

	for i, step := range p.steps {
		name := stepName(step)
		log.Debug().Int("step", i+1).Str("name", name).Msg("Running pipeline step")
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d (%s) failed: %w", i+1, name, err)
		}
	}
	return nil
}

func stepName(step PipelineStep) string {
	t := reflect.TypeOf(step)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.TrimSuffix(t.Name(), "Step")
}

// Deps are the external collaborators of the dataset pipeline. Nil Storage
// or Repo disables the publish or warehouse steps.
type Deps struct {
	Macro   MacroCollector
	Storage StorageService
	Repo    DatasetRepository
}

// NewDatasetPipeline builds the full run: customers, transactions generated
// from the written customer table, macro indicators, then optional
// publishing and warehouse load.
func NewDatasetPipeline(cfg *config.Config, deps Deps) (*Pipeline, error) {
	volume, err := transactions.ParseVolumePolicy(cfg.VolumePolicy)
	if err != nil {
		return nil, fmt.Errorf("NewDatasetPipeline: %w", err)
	}
	missing, err := macro.ParseMissingPolicy(cfg.Macro.MissingColumns)
	if err != nil {
		return nil, fmt.Errorf("NewDatasetPipeline: %w", err)
	}

	steps := []PipelineStep{
		&GenerateCustomersStep{
			Count: cfg.Customers,
			Start: cfg.Start.Date,
			End:   cfg.End.Date,
			AsOf:  cfg.AsOf.Date,
		},
		&WriteCustomersStep{Path: cfg.CustomersPath()},
		&ReadCustomersStep{Path: cfg.CustomersPath(), Storage: deps.Storage},
		&GenerateTransactionsStep{
			Path:   cfg.TransactionsPath(),
			Launch: cfg.Launch.Date,
			End:    cfg.End.Date,
			Volume: volume,
		},
		&CollectMacroStep{
			Collector:   deps.Macro,
			Indicators:  cfg.Macro.Indicators,
			Start:       cfg.Start.Date,
			End:         cfg.End.Date,
			Missing:     missing,
			TrimLeading: cfg.Macro.TrimLeading,
		},
		&WriteMacroStep{Path: cfg.MacroPath()},
	}
	if cfg.Publish.Bucket != "" && deps.Storage != nil {
		steps = append(steps, &PublishStep{
			Storage: deps.Storage,
			Bucket:  cfg.Publish.Bucket,
			Prefix:  cfg.Publish.Prefix,
		})
	}
	if deps.Repo != nil {
		steps = append(steps, &LoadWarehouseStep{
			Repo:             deps.Repo,
			TransactionsPath: cfg.TransactionsPath(),
		})
	}
	return NewPipeline(steps...), nil
}

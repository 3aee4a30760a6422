package pipeline

import (
	"math/rand/v2"

	"github.com/dvloznov/finance-synth/internal/domain"
	"github.com/dvloznov/finance-synth/internal/macro"
	"github.com/dvloznov/finance-synth/internal/sampling"
	"github.com/dvloznov/finance-synth/internal/transactions"
)

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	// Seed is the effective seed; Rand is derived from it.
	Seed uint64
	Rand *rand.Rand

	Customers        []domain.Customer
	TransactionStats transactions.Stats
	Macro            *macro.Table
	FailedIndicators []string

	// Outputs lists the table files written, in order.
	Outputs []string
	// Published lists the gs:// URIs of uploaded tables.
	Published []string

	RunID string
}

// NewPipelineState resolves the seed (zero picks a random one) and creates
// the random source every step draws from.
func NewPipelineState(seed uint64) *PipelineState {
	seed = sampling.ResolveSeed(seed)
	return &PipelineState{
		Seed: seed,
		Rand: sampling.NewRand(seed),
	}
}

func (s *PipelineState) addOutput(path string) {
	for _, p := range s.Outputs {
		if p == path {
			return
		}
	}
	s.Outputs = append(s.Outputs, path)
}

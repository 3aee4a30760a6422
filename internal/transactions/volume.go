package transactions

import (
	"fmt"

	"github.com/dvloznov/finance-synth/internal/domain"
)

// VolumePolicy scales the sampled transaction count by a customer attribute.
type VolumePolicy interface {
	Multiplier(c domain.Customer) float64
}

// IncomeVolume scales by income bracket: the two top brackets transact more.
type IncomeVolume struct{}

func (IncomeVolume) Multiplier(c domain.Customer) float64 {
	switch c.IncomeBracket {
	case domain.Income12001Plus:
		return 1.5
	case domain.Income8001To12000:
		return 1.2
	default:
		return 1.0
	}
}

// CreditScoreVolume scales by credit score: higher scores transact more,
// the lowest band less.
type CreditScoreVolume struct{}

func (CreditScoreVolume) Multiplier(c domain.Customer) float64 {
	switch {
	case c.CreditScore >= 800:
		return 1.3
	case c.CreditScore >= 650:
		return 1.1
	case c.CreditScore < 450:
		return 0.8
	default:
		return 1.0
	}
}

// Volume policy names accepted by ParseVolumePolicy.
const (
	VolumeByIncome      = "income"
	VolumeByCreditScore = "credit_score"
)

// ParseVolumePolicy resolves a configured policy name.
func ParseVolumePolicy(name string) (VolumePolicy, error) {
	switch name {
	case "", VolumeByIncome:
		return IncomeVolume{}, nil
	case VolumeByCreditScore:
		return CreditScoreVolume{}, nil
	default:
		return nil, fmt.Errorf("unknown volume policy %q (want %q or %q)", name, VolumeByIncome, VolumeByCreditScore)
	}
}

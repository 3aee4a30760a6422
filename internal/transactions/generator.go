// Package transactions synthesizes the transaction fact table from the
// customer dimension.
package transactions

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-synth/internal/domain"
	"github.com/dvloznov/finance-synth/internal/logger"
	"github.com/dvloznov/finance-synth/internal/sampling"
	"github.com/shopspring/decimal"
)

const (
	countMean   = 150
	countStdDev = 40

	// Instant-payment adoption ramps linearly to instantCeiling over instantRampDays.
	instantCeiling  = 0.7
	instantRampDays = 365 * 3.0

	// Digital-channel adoption ramps from digitalBaseYear to digitalCeiling
	// over digitalRampYears.
	digitalBaseYear  = 2000
	digitalRampYears = 25.0
	digitalCeiling   = 0.9

	progressEvery = 100
)

// Stats summarises one generation pass.
type Stats struct {
	Customers    int
	Skipped      int // customers with an empty active window
	Transactions int
}

// Generator runs the per-customer stochastic process.
type Generator struct {
	// Launch is the instant-payment launch date.
	Launch civil.Date
	// End is the scenario "today"; no transaction is dated after it.
	End civil.Date
	// Volume scales the per-customer transaction count.
	Volume VolumePolicy
	// Rand is used for every draw.
	Rand *rand.Rand
	// FirstID is the id of the first emitted transaction. Zero means 1.
	FirstID int64
}

// Stream generates transactions customer by customer and hands each one to
// emit in id order. It stops at the first emit error or context cancellation.
func (g *Generator) Stream(ctx context.Context, customers []domain.Customer, emit func(domain.Transaction) error) (Stats, error) {
	log := logger.FromContext(ctx)
	volume := g.Volume
	if volume == nil {
		volume = IncomeVolume{}
	}

	nextID := g.FirstID
	if nextID == 0 {
		nextID = 1
	}

	stats := Stats{Customers: len(customers)}
	for i, c := range customers {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		span := g.End.DaysSince(c.AccountOpened)
		if span <= 0 {
			// Accounts opened on or after End have no history yet.
			stats.Skipped++
			continue
		}

		count := int(float64(int(sampling.Normal(g.Rand, countMean, countStdDev))) * volume.Multiplier(c))
		for n := 0; n < count; n++ {
			tx := g.sample(c, span)
			tx.ID = nextID
			if err := emit(tx); err != nil {
				return stats, fmt.Errorf("Stream: emitting transaction %d: %w", tx.ID, err)
			}
			nextID++
			stats.Transactions++
		}

		if (i+1)%progressEvery == 0 {
			log.Debug().Int("processed", i+1).Int("total", len(customers)).Msg("Generating transactions")
		}
	}
	return stats, nil
}

// Generate collects the full table into a buffer sized for the expected
// volume.
func (g *Generator) Generate(ctx context.Context, customers []domain.Customer) ([]domain.Transaction, Stats, error) {
	out := make([]domain.Transaction, 0, len(customers)*countMean)
	stats, err := g.Stream(ctx, customers, func(tx domain.Transaction) error {
		out = append(out, tx)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return out, stats, nil
}

// sample draws one transaction inside [AccountOpened, AccountOpened+span].
func (g *Generator) sample(c domain.Customer, span int) domain.Transaction {
	date := c.AccountOpened.AddDays(g.Rand.IntN(span + 1))
	typ := g.transactionType(date)
	return domain.Transaction{
		CustomerID: c.ID,
		Timestamp:  date.In(time.UTC),
		Type:       typ,
		Amount:     g.amount(typ),
		Channel:    g.channel(date),
	}
}

func (g *Generator) transactionType(date civil.Date) domain.TransactionType {
	if date.Before(g.Launch) {
		return sampling.Choice(g.Rand, domain.PreLaunchTypes)
	}
	if sampling.Bernoulli(g.Rand, InstantProbability(date.DaysSince(g.Launch))) {
		return domain.TypeInstant
	}
	return sampling.Choice(g.Rand, domain.PostLaunchTypes)
}

func (g *Generator) channel(date civil.Date) domain.Channel {
	if sampling.Bernoulli(g.Rand, DigitalProbability(date.Year)) {
		return sampling.Choice(g.Rand, domain.DigitalChannels)
	}
	return sampling.Choice(g.Rand, domain.PhysicalChannels)
}

func (g *Generator) amount(typ domain.TransactionType) decimal.Decimal {
	tier := tierFor(typ)
	v := decimal.NewFromFloat(sampling.LogNormal(g.Rand, tier.mu, tier.sigma)).Round(2)
	if v.LessThan(domain.MinAmount) {
		return domain.MinAmount
	}
	return v
}

// InstantProbability is the chance a post-launch transaction uses the
// instant-payment method, daysSinceLaunch days after launch.
func InstantProbability(daysSinceLaunch int) float64 {
	return math.Min(instantCeiling, float64(daysSinceLaunch)/instantRampDays)
}

// DigitalProbability is the chance a transaction in the given year goes
// through a digital channel.
func DigitalProbability(year int) float64 {
	return math.Min(digitalCeiling, float64(year-digitalBaseYear)/digitalRampYears)
}

type amountTier struct {
	mu, sigma float64
}

var (
	highValueTier = amountTier{mu: 5.0, sigma: 1.2} // wire and instant transfers
	creditTier    = amountTier{mu: 4.5, sigma: 1.0}
	routineTier   = amountTier{mu: 3.8, sigma: 0.8}
)

func tierFor(typ domain.TransactionType) amountTier {
	switch typ {
	case domain.TypeCredit:
		return creditTier
	case domain.TypeWire, domain.TypeInstant:
		return highValueTier
	default:
		return routineTier
	}
}

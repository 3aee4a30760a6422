// Package customers synthesizes the customer dimension.
package customers

import (
	"context"
	"fmt"
	"math/rand/v2"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-synth/internal/domain"
	"github.com/dvloznov/finance-synth/internal/logger"
	"github.com/dvloznov/finance-synth/internal/sampling"
)

const (
	// DefaultFirstID is the first customer id of a generated population.
	DefaultFirstID int64 = 1000

	// openingSkew is the exponent of the power-law over the opening window.
	openingSkew = 2.5

	scoreMean   = 650
	scoreStdDev = 150

	progressEvery = 1000
)

// Config bounds the generated population.
type Config struct {
	// Start and End bound the account-opening date.
	Start civil.Date
	End   civil.Date
	// AsOf is the generation date used to derive ages.
	AsOf civil.Date
	// FirstID is the id of the first customer; ids are sequential.
	FirstID int64
}

// Validate checks the window is usable.
func (c Config) Validate() error {
	if !c.Start.IsValid() || !c.End.IsValid() || !c.AsOf.IsValid() {
		return fmt.Errorf("customers config: invalid date in %+v", c)
	}
	if c.End.Before(c.Start) {
		return fmt.Errorf("customers config: end %s before start %s", c.End, c.Start)
	}
	return nil
}

// Generator produces customer records.
type Generator struct {
	cfg   Config
	rand  *rand.Rand
	faker Faker
}

// NewGenerator creates a generator using r for every draw, including the
// pt-BR faker.
func NewGenerator(cfg Config, r *rand.Rand) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.FirstID == 0 {
		cfg.FirstID = DefaultFirstID
	}
	return &Generator{cfg: cfg, rand: r, faker: NewFaker(r)}, nil
}

// WithFaker replaces the name/city/state source.
func (g *Generator) WithFaker(f Faker) *Generator {
	g.faker = f
	return g
}

// Generate returns exactly n customers with ids FirstID..FirstID+n-1.
func (g *Generator) Generate(ctx context.Context, n int) []domain.Customer {
	log := logger.FromContext(ctx)

	out := make([]domain.Customer, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, g.next(g.cfg.FirstID+int64(i)))

		if (i+1)%progressEvery == 0 {
			log.Debug().Int("generated", i+1).Int("total", n).Msg("Generating customers")
		}
	}
	return out
}

func (g *Generator) next(id int64) domain.Customer {
	birth := g.birthDate()
	return domain.Customer{
		ID:            id,
		FullName:      g.faker.Name(),
		BirthDate:     birth,
		Age:           domain.AgeAt(birth, g.cfg.AsOf),
		City:          g.faker.City(),
		State:         g.faker.State(),
		AccountOpened: g.openingDate(),
		IncomeBracket: sampling.Choice(g.rand, domain.IncomeBrackets),
		CreditScore:   domain.ClampCreditScore(int(sampling.Normal(g.rand, scoreMean, scoreStdDev))),
	}
}

// openingDate biases towards the end of the window to model accelerating
// account growth.
func (g *Generator) openingDate() civil.Date {
	total := g.cfg.End.DaysSince(g.cfg.Start)
	d := g.cfg.Start.AddDays(int(sampling.Power(g.rand, openingSkew) * float64(total)))
	if d.After(g.cfg.End) {
		return g.cfg.End
	}
	return d
}

// birthDate is uniform over the dates that give an age in [MinAge, MaxAge]
// at AsOf.
func (g *Generator) birthDate() civil.Date {
	latest := yearsBefore(g.cfg.AsOf, domain.MinAge)
	earliest := yearsBefore(g.cfg.AsOf, domain.MaxAge+1).AddDays(1)
	span := latest.DaysSince(earliest)
	return earliest.AddDays(g.rand.IntN(span + 1))
}

// yearsBefore moves d back n calendar years; Feb 29 maps to Feb 28.
func yearsBefore(d civil.Date, n int) civil.Date {
	out := civil.Date{Year: d.Year - n, Month: d.Month, Day: d.Day}
	if !out.IsValid() {
		out.Day--
	}
	return out
}

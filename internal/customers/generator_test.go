package customers

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-synth/internal/domain"
	"github.com/dvloznov/finance-synth/internal/sampling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Start: civil.Date{Year: 2000, Month: 1, Day: 1},
		End:   civil.Date{Year: 2025, Month: 10, Day: 15},
		AsOf:  civil.Date{Year: 2025, Month: 10, Day: 15},
	}
}

func TestGenerate_Invariants(t *testing.T) {
	cfg := testConfig()
	g, err := NewGenerator(cfg, sampling.NewRand(1))
	require.NoError(t, err)

	got := g.Generate(context.Background(), 5000)
	require.Len(t, got, 5000)

	for i, c := range got {
		assert.Equal(t, DefaultFirstID+int64(i), c.ID)
		assert.GreaterOrEqual(t, c.Age, domain.MinAge)
		assert.LessOrEqual(t, c.Age, domain.MaxAge)
		assert.Equal(t, domain.AgeAt(c.BirthDate, cfg.AsOf), c.Age)
		assert.GreaterOrEqual(t, c.CreditScore, domain.MinCreditScore)
		assert.LessOrEqual(t, c.CreditScore, domain.MaxCreditScore)
		assert.False(t, c.AccountOpened.Before(cfg.Start), "opened %s before start", c.AccountOpened)
		assert.False(t, c.AccountOpened.After(cfg.End), "opened %s after end", c.AccountOpened)
		_, ok := domain.ParseIncomeBracket(string(c.IncomeBracket))
		assert.True(t, ok)
		assert.NotEmpty(t, c.FullName)
		assert.Len(t, c.State, 2)
	}
}

func TestGenerate_OpeningDatesSkewRecent(t *testing.T) {
	cfg := testConfig()
	g, err := NewGenerator(cfg, sampling.NewRand(2))
	require.NoError(t, err)

	mid := cfg.Start.AddDays(cfg.End.DaysSince(cfg.Start) / 2)
	recent := 0
	customers := g.Generate(context.Background(), 4000)
	for _, c := range customers {
		if c.AccountOpened.After(mid) {
			recent++
		}
	}
	// P(X > 0.5) for Beta(2.5, 1) is 1 - 0.5^2.5, about 0.82
	assert.InDelta(t, 0.82, float64(recent)/float64(len(customers)), 0.03)
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := NewGenerator(testConfig(), sampling.NewRand(99))
	require.NoError(t, err)
	b, err := NewGenerator(testConfig(), sampling.NewRand(99))
	require.NoError(t, err)

	assert.Equal(t, a.Generate(context.Background(), 50), b.Generate(context.Background(), 50))
}

func TestGenerate_CustomFirstIDAndZero(t *testing.T) {
	cfg := testConfig()
	cfg.FirstID = 1
	g, err := NewGenerator(cfg, sampling.NewRand(4))
	require.NoError(t, err)

	assert.Empty(t, g.Generate(context.Background(), 0))
	got := g.Generate(context.Background(), 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestGenerate_LeapDayAsOf(t *testing.T) {
	cfg := testConfig()
	cfg.AsOf = civil.Date{Year: 2024, Month: 2, Day: 29}
	g, err := NewGenerator(cfg, sampling.NewRand(5))
	require.NoError(t, err)

	for _, c := range g.Generate(context.Background(), 3000) {
		require.GreaterOrEqual(t, c.Age, domain.MinAge)
		require.LessOrEqual(t, c.Age, domain.MaxAge)
	}
}

func TestNewGenerator_InvalidWindow(t *testing.T) {
	cfg := testConfig()
	cfg.Start, cfg.End = cfg.End, cfg.Start
	_, err := NewGenerator(cfg, sampling.NewRand(1))
	assert.Error(t, err)
}

type fixedFaker struct{}

func (fixedFaker) Name() string  { return "Maria Silva" }
func (fixedFaker) City() string  { return "Recife" }
func (fixedFaker) State() string { return "PE" }

func TestWithFaker(t *testing.T) {
	g, err := NewGenerator(testConfig(), sampling.NewRand(1))
	require.NoError(t, err)

	c := g.WithFaker(fixedFaker{}).Generate(context.Background(), 1)[0]
	assert.Equal(t, "Maria Silva", c.FullName)
	assert.Equal(t, "Recife", c.City)
	assert.Equal(t, "PE", c.State)
}

package sampling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSeed(t *testing.T) {
	assert.Equal(t, uint64(42), ResolveSeed(42))
	assert.NotZero(t, ResolveSeed(0))
}

func TestNewRand_Deterministic(t *testing.T) {
	a, b := NewRand(7), NewRand(7)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestPower_RangeAndSkew(t *testing.T) {
	r := NewRand(11)
	const n = 20000
	var sum float64
	for i := 0; i < n; i++ {
		x := Power(r, 2.5)
		require.GreaterOrEqual(t, x, 0.0)
		require.LessOrEqual(t, x, 1.0)
		sum += x
	}
	// mean of Beta(a, 1) is a/(a+1)
	assert.InDelta(t, 2.5/3.5, sum/n, 0.01)
}

func TestNormal_Moments(t *testing.T) {
	r := NewRand(3)
	const n = 20000
	var sum, sq float64
	for i := 0; i < n; i++ {
		x := Normal(r, 150, 40)
		sum += x
		sq += x * x
	}
	mean := sum / n
	std := math.Sqrt(sq/n - mean*mean)
	assert.InDelta(t, 150, mean, 2)
	assert.InDelta(t, 40, std, 2)
}

func TestLogNormal_Positive(t *testing.T) {
	r := NewRand(5)
	for i := 0; i < 1000; i++ {
		require.Greater(t, LogNormal(r, 3.8, 0.8), 0.0)
	}
}

func TestBernoulli_Edges(t *testing.T) {
	r := NewRand(9)
	for i := 0; i < 1000; i++ {
		require.False(t, Bernoulli(r, 0))
		require.True(t, Bernoulli(r, 1))
	}
}

func TestChoice_CoversAll(t *testing.T) {
	r := NewRand(13)
	seen := map[string]bool{}
	items := []string{"a", "b", "c"}
	for i := 0; i < 300; i++ {
		seen[Choice(r, items)] = true
	}
	assert.Len(t, seen, 3)
}

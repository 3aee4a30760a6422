// Package sampling wraps the distributions used by the generators around a
// single explicitly passed random source.
package sampling

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// ResolveSeed turns a zero seed into a random one so the effective seed of
// any run can be logged and replayed.
func ResolveSeed(seed uint64) uint64 {
	for seed == 0 {
		seed = rand.Uint64()
	}
	return seed
}

// NewRand returns a PCG generator for the given non-zero seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Normal draws from N(mu, sigma).
func Normal(r *rand.Rand, mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: r}.Rand()
}

// LogNormal draws exp(N(mu, sigma)).
func LogNormal(r *rand.Rand, mu, sigma float64) float64 {
	return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: r}.Rand()
}

// Power draws from the power-function distribution on [0, 1] with density
// a*x^(a-1), which is Beta(a, 1). a > 1 skews towards 1.
func Power(r *rand.Rand, a float64) float64 {
	return distuv.Beta{Alpha: a, Beta: 1, Src: r}.Rand()
}

// Bernoulli reports true with probability p.
func Bernoulli(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// Choice picks a uniformly random element. items must be non-empty.
func Choice[T any](r *rand.Rand, items []T) T {
	return items[r.IntN(len(items))]
}

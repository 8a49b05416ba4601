// Package montecarlo drives randomized-return trials of the
// deterministic projector and aggregates them into sustainability
// estimates and fan-chart percentile bands.
package montecarlo

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"cashflow-engine/internal/assumptions"
)

// ConfigError is a rejected simulation configuration: bad trial
// counts or bad distribution parameters, caught at construction.
type ConfigError struct {
	Code    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Code + ": " + e.Message
}

// ReturnGenerator draws correlated (equity, bond, cash) annual real
// return triples. Each trial gets its own PRNG stream derived from
// the base seed and the trial index, so draws are reproducible under
// a fixed seed and isolated across concurrent trials.
type ReturnGenerator struct {
	means [3]float64
	vols  [3]float64
	chol  [3][3]float64
	seed  uint64
}

// NewReturnGenerator validates the assumption set's distribution
// parameters and builds a generator. Seed 0 selects a
// non-deterministic, time-derived seed.
func NewReturnGenerator(set assumptions.Set, seed uint64) (*ReturnGenerator, error) {
	if !set.Finite() {
		return nil, &ConfigError{Code: "NON_FINITE_ASSUMPTIONS", Message: "assumption set contains non-finite values"}
	}
	vols := set.Volatilities()
	for i, v := range vols {
		if v < 0 {
			return nil, &ConfigError{
				Code:    "NEGATIVE_VOLATILITY",
				Message: fmt.Sprintf("volatility for asset class %d is %v", i, v),
			}
		}
	}

	chol, err := choleskyLower(set.Correlation)
	if err != nil {
		return nil, &ConfigError{Code: "INVALID_CORRELATION", Message: err.Error()}
	}

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &ReturnGenerator{
		means: set.Means(),
		vols:  vols,
		chol:  chol,
		seed:  seed,
	}, nil
}

// Seed returns the effective base seed for the run.
func (g *ReturnGenerator) Seed() uint64 {
	return g.seed
}

// Draws produces the full return sequence for one trial: one
// (equity, bond, cash) triple per year.
func (g *ReturnGenerator) Draws(trial, years int) [][3]float64 {
	src := rand.NewPCG(g.seed, uint64(trial)+1)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	draws := make([][3]float64, years)
	for y := 0; y < years; y++ {
		var z [3]float64
		for i := range z {
			z[i] = normal.Rand()
		}
		for i := 0; i < 3; i++ {
			var corr float64
			for j := 0; j <= i; j++ {
				corr += g.chol[i][j] * z[j]
			}
			draws[y][i] = g.means[i] + g.vols[i]*corr
		}
	}
	return draws
}

// choleskyLower factorizes the correlation matrix into its lower
// triangular factor. A matrix that is not symmetric positive definite
// is rejected.
func choleskyLower(corr [3][3]float64) ([3][3]float64, error) {
	for i := 0; i < 3; i++ {
		if math.Abs(corr[i][i]-1) > 1e-9 {
			return [3][3]float64{}, fmt.Errorf("correlation diagonal must be 1, got %v", corr[i][i])
		}
		for j := 0; j < i; j++ {
			if corr[i][j] != corr[j][i] {
				return [3][3]float64{}, fmt.Errorf("correlation matrix is not symmetric")
			}
		}
	}

	flat := make([]float64, 0, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			flat = append(flat, corr[i][j])
		}
	}
	sym := mat.NewSymDense(3, flat)

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return [3][3]float64{}, fmt.Errorf("correlation matrix is not positive definite")
	}

	var lower mat.TriDense
	chol.LTo(&lower)

	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			out[i][j] = lower.At(i, j)
		}
	}
	return out, nil
}

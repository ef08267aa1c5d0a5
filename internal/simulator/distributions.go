package simulator

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution represents a probability distribution for one projected stat
type Distribution interface {
	Sample(src rand.Source) float64
	Mean() float64
	StdDev() float64
}

// NormalDistribution represents a normal (Gaussian) distribution
type NormalDistribution struct {
	mean   float64
	stdDev float64
}

func NewNormalDistribution(mean, stdDev float64) NormalDistribution {
	return NormalDistribution{mean: mean, stdDev: stdDev}
}

func (d NormalDistribution) Sample(src rand.Source) float64 {
	if d.stdDev <= 0 {
		return d.mean
	}
	return distuv.Normal{Mu: d.mean, Sigma: d.stdDev, Src: src}.Rand()
}

func (d NormalDistribution) Mean() float64 {
	return d.mean
}

func (d NormalDistribution) StdDev() float64 {
	return d.stdDev
}

// AttemptDistribution draws a normal value floored and clipped at zero, for
// shot attempts that must be whole non-negative counts
type AttemptDistribution struct {
	NormalDistribution
}

func NewAttemptDistribution(mean, stdDev float64) AttemptDistribution {
	return AttemptDistribution{NewNormalDistribution(mean, stdDev)}
}

func (d AttemptDistribution) Sample(src rand.Source) float64 {
	return math.Max(0, math.Floor(d.NormalDistribution.Sample(src)))
}

// ShootingDistribution is the Beta(1+makes, 1+misses) posterior of a shooting
// percentage given window totals
type ShootingDistribution struct {
	alpha float64
	beta  float64
}

func NewShootingDistribution(makes, attempts float64) ShootingDistribution {
	makes = math.Max(0, makes)
	misses := math.Max(0, attempts-makes)
	return ShootingDistribution{alpha: 1 + makes, beta: 1 + misses}
}

func (d ShootingDistribution) Sample(src rand.Source) float64 {
	return distuv.Beta{Alpha: d.alpha, Beta: d.beta, Src: src}.Rand()
}

func (d ShootingDistribution) Mean() float64 {
	return d.alpha / (d.alpha + d.beta)
}

func (d ShootingDistribution) StdDev() float64 {
	sum := d.alpha + d.beta
	return math.Sqrt(d.alpha * d.beta / (sum * sum * (sum + 1)))
}

// SampleMakes draws made shots as Binomial(attempts, pct)
func SampleMakes(src rand.Source, attempts, pct float64) float64 {
	switch {
	case attempts <= 0 || pct <= 0:
		return 0
	case pct >= 1:
		return attempts
	}
	return distuv.Binomial{N: attempts, P: pct, Src: src}.Rand()
}

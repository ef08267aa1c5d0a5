package simulator

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

// StatSummary is the decay-weighted estimate of one player's per-game
// production over a trailing window of game logs
type StatSummary struct {
	Player         *types.Player
	Mean           types.StatLine
	Std            types.StatLine
	GamesPlayed    int
	GamesRemaining int

	// Window totals feeding the shooting-percentage posteriors
	FGM float64
	FGA float64
	FTM float64
	FTA float64
}

// Defined reports whether the player logged any games in the window
func (s StatSummary) Defined() bool {
	return s.GamesPlayed > 0
}

// DecayRateFromHalfLife converts a half-life in days into an exponential
// decay rate. Non-positive half-lives give uniform weights.
func DecayRateFromHalfLife(halfLife float64) float64 {
	if halfLife <= 0 {
		return 0
	}
	return math.Ln2 / halfLife
}

// Summarize computes weighted mean and standard deviation for every stat
// column. Each entry is weighted exp(-decayRate * daysAgo).
func Summarize(player *types.Player, logs []types.GameLogEntry, decayRate float64, gamesRemaining int) StatSummary {
	summary := StatSummary{
		Player:         player,
		GamesPlayed:    len(logs),
		GamesRemaining: gamesRemaining,
	}
	if len(logs) == 0 {
		return summary
	}

	n := len(logs)
	weights := make([]float64, n)
	for i, entry := range logs {
		weights[i] = math.Exp(-decayRate * float64(entry.DaysAgo))
	}
	weightSum := floats.Sum(weights)

	column := make([]float64, n)
	for s := types.Stat(0); s < types.NumStats; s++ {
		for i, entry := range logs {
			column[i] = entry.Stats[s]
		}
		mean := stat.Mean(column, weights)
		summary.Mean[s] = mean

		if n > 1 {
			var dev float64
			for i, x := range column {
				dev += weights[i] * (x - mean) * (x - mean)
			}
			correction := float64(n) / float64(n-1)
			summary.Std[s] = math.Sqrt(dev / (correction * weightSum))
		}
	}

	for _, entry := range logs {
		summary.FGM += entry.Stats[types.StatFGM]
		summary.FGA += entry.Stats[types.StatFGA]
		summary.FTM += entry.Stats[types.StatFTM]
		summary.FTA += entry.Stats[types.StatFTA]
	}

	return summary
}

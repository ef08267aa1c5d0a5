package optimizer

import (
	"fmt"
	"strings"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

// Strategy names a search algorithm
type Strategy string

const (
	StrategyHillClimb  Strategy = "hill_climb"
	StrategyAnnealing  Strategy = "annealing"
	StrategyBruteForce Strategy = "brute_force"
)

// ParseStrategy accepts the canonical names and a few common spellings
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hill_climb", "hill-climb", "hillclimb":
		return StrategyHillClimb, nil
	case "annealing", "simulated_annealing", "anneal":
		return StrategyAnnealing, nil
	case "brute_force", "brute-force", "bruteforce":
		return StrategyBruteForce, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// ScoreFunc rates a roster, higher is better. Brute force calls it from
// several goroutines at once.
type ScoreFunc func(types.Roster) float64

// Config controls one optimization run
type Config struct {
	Strategy       Strategy `json:"strategy"`
	Iterations     int      `json:"iterations"`
	Forbidden      []string `json:"forbidden_players"`
	ExcludeInjured bool     `json:"exclude_injured"`
	// Annealing schedule, taken as given. A zero start temperature accepts
	// only improvements; a zero decay goes cold after the first step.
	AnnealStart float64 `json:"anneal_start"`
	AnnealDecay float64 `json:"anneal_decay"`
	Workers     int     `json:"workers"`
	Seed        uint64  `json:"seed"`
}

// Step is one yielded roster of a run. Every step after the first scores
// strictly higher than the one before it.
type Step struct {
	Roster    types.Roster `json:"roster"`
	Score     float64      `json:"score"`
	Iteration int          `json:"iteration"`
}

// Run is an optimization in progress. Steps is closed when the run ends;
// Err is valid only after that.
type Run struct {
	ID       string
	Strategy Strategy
	// Total is the iteration budget, or the number of combinations for
	// brute force
	Total int
	Steps <-chan Step

	err   error
	valid int
}

// Err reports why the run stopped early, if it did
func (r *Run) Err() error {
	return r.err
}

// Valid reports how many brute-force combinations packed into a legal
// lineup. Like Err, it is valid once Steps is closed.
func (r *Run) Valid() int {
	return r.valid
}

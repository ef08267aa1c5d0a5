package simulator

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/stitts-dev/h2h-sim/internal/providers"
	"github.com/stitts-dev/h2h-sim/internal/types"
	"github.com/stitts-dev/h2h-sim/pkg/logger"
)

// ResultScorer reduces a matchup result to a single number, higher is better
type ResultScorer func(*MatchupResult) float64

// WinningProbability scores a result by A's chance of winning the week
func WinningProbability(r *MatchupResult) float64 {
	return r.WinningProb
}

// ExpectedValue scores a result by A's mean number of categories won
func ExpectedValue(r *MatchupResult) float64 {
	return r.ExpectedScore
}

// ScorerByName resolves "winning_prob" (the default) or "ev"
func ScorerByName(name string) (ResultScorer, error) {
	switch name {
	case "", "winning_prob", "win_prob":
		return WinningProbability, nil
	case "ev", "expected_value":
		return ExpectedValue, nil
	}
	return nil, fmt.Errorf("unknown scorer %q", name)
}

// RosterScorer scores lineups of one team against a fixed opponent. The
// opponent is projected once and shared read-only across calls; every
// candidate is drawn from the same seed so scores are comparable.
type RosterScorer struct {
	summaries          map[string]StatSummary
	opponentCategories *mat.Dense
	opponentDegenerate bool
	opts               SimulateOptions
	reduce             ResultScorer
}

// NewRosterScorer materializes summaries for every player on roster (which
// should already hold any free agents under consideration) and projects the
// opponent
func NewRosterScorer(ctx context.Context, provider providers.StatsProvider, roster, opponent types.Roster, opts SimulateOptions, reduce ResultScorer) (*RosterScorer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	summaries, err := Materialize(ctx, provider, roster, opts)
	if err != nil {
		return nil, err
	}
	opponentSummaries, err := Materialize(ctx, provider, opponent, opts)
	if err != nil {
		return nil, err
	}
	return NewRosterScorerFromSummaries(ctx, roster, summaries, opponent, opponentSummaries, opts, reduce)
}

// NewRosterScorerFromSummaries builds a scorer from materialized inputs
func NewRosterScorerFromSummaries(ctx context.Context, roster types.Roster, summaries []StatSummary, opponent types.Roster, opponentSummaries []StatSummary, opts SimulateOptions, reduce ResultScorer) (*RosterScorer, error) {
	if reduce == nil {
		reduce = WinningProbability
	}
	// one seed for the scorer's lifetime keeps candidates comparable
	opts = opts.seeded()

	config := opts.projection()
	config.Seed = opponentSeed(opts.Seed)
	projection, err := NewProjector(config).Project(ctx, opponent, opponentSummaries)
	if err != nil {
		return nil, fmt.Errorf("failed to project opponent: %w", err)
	}
	warnDegenerate(projection, opts.TeamB, opts.Week)

	byKey := make(map[string]StatSummary, len(summaries))
	for i, p := range roster.Players {
		byKey[p.Key] = summaries[i]
	}

	return &RosterScorer{
		summaries:          byKey,
		opponentCategories: TeamCategories(projection),
		opponentDegenerate: projection.Degenerate(),
		opts:               opts,
		reduce:             reduce,
	}, nil
}

// Result simulates the roster against the cached opponent projection
func (s *RosterScorer) Result(ctx context.Context, roster types.Roster) (*MatchupResult, error) {
	summaries := make([]StatSummary, len(roster.Players))
	for i, p := range roster.Players {
		summary, ok := s.summaries[p.Key]
		if !ok {
			summary = StatSummary{Player: p}
		}
		summaries[i] = summary
	}

	projection, err := NewProjector(s.opts.projection()).Project(ctx, roster, summaries)
	if err != nil {
		return nil, err
	}
	return compareCategories(TeamCategories(projection), s.opponentCategories, projection.Degenerate(), s.opponentDegenerate), nil
}

// Score implements the optimizer's scoring function contract. Failures score
// as negative infinity.
func (s *RosterScorer) Score(roster types.Roster) float64 {
	result, err := s.Result(context.Background(), roster)
	if err != nil {
		logger.WithMatchupContext(s.opts.TeamA, s.opts.TeamB, s.opts.Week).WithError(err).
			Error("Failed to score roster")
		return math.Inf(-1)
	}
	return s.reduce(result)
}

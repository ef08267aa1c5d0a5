package optimizer

import (
	"context"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

// hillClimb accepts a random neighbor only when it scores strictly higher
func (s *search) hillClimb(ctx context.Context, roster types.Roster) error {
	gen := NewNeighborGenerator(s.legality, s.rng())

	current, currentScore := roster, s.scoreCandidate(roster)
	if !s.emit(ctx, Step{Roster: current, Score: currentScore}) {
		return ctx.Err()
	}

	for i := 1; i <= s.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		candidate, err := gen.Mutate(current, s.forbid, s.cfg.ExcludeInjured)
		if err != nil {
			return err
		}
		candidateScore := s.scoreCandidate(candidate)
		if candidateScore > currentScore {
			current, currentScore = candidate, candidateScore
			if !s.emit(ctx, Step{Roster: current, Score: currentScore, Iteration: i}) {
				return ctx.Err()
			}
		}
	}
	return nil
}

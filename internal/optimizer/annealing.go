package optimizer

import (
	"context"
	"math"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

// anneal walks the neighborhood, accepting a worse neighbor with probability
// exp((candidate-current)/T) while T decays geometrically. The walk may go
// downhill but only new best rosters are yielded.
func (s *search) anneal(ctx context.Context, roster types.Roster) error {
	rng := s.rng()
	gen := NewNeighborGenerator(s.legality, rng)

	current, currentScore := roster, s.scoreCandidate(roster)
	bestScore := currentScore
	if !s.emit(ctx, Step{Roster: current, Score: currentScore}) {
		return ctx.Err()
	}

	temperature := s.cfg.AnnealStart
	for i := 1; i <= s.cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		candidate, err := gen.Mutate(current, s.forbid, s.cfg.ExcludeInjured)
		if err != nil {
			return err
		}
		candidateScore := s.scoreCandidate(candidate)

		accept := candidateScore > currentScore
		if !accept && temperature > 0 {
			accept = math.Log(rng.Float64()) <= (candidateScore-currentScore)/temperature
		}
		if accept {
			current, currentScore = candidate, candidateScore
		}

		if candidateScore > bestScore {
			bestScore = candidateScore
			if !s.emit(ctx, Step{Roster: candidate, Score: candidateScore, Iteration: i}) {
				return ctx.Err()
			}
		}
		temperature *= s.cfg.AnnealDecay
	}
	return nil
}

package optimizer

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/stitts-dev/h2h-sim/internal/metrics"
	"github.com/stitts-dev/h2h-sim/internal/types"
)

type comboResult struct {
	index  int
	roster types.Roster
	score  float64
}

func combinationCount(n, k int) int {
	if k <= 0 || n < k {
		return 0
	}
	return combin.Binomial(n, k)
}

// candidatePool lists the healthy, non-forbidden players in roster order
func (s *search) candidatePool(roster types.Roster) []*types.Player {
	pool := make([]*types.Player, 0, roster.Len())
	for _, p := range roster.Players {
		if !p.Injured() && !s.forbid[p.Key] {
			pool = append(pool, p)
		}
	}
	return pool
}

// bruteForce packs and scores every lineup-sized combination of the pool on
// a bounded worker pool, yielding each new best. Combinations the packer
// cannot place score -Inf and are dropped.
func (s *search) bruteForce(ctx context.Context, roster types.Roster) error {
	bestScore := s.scoreCandidate(roster)
	if !s.emit(ctx, Step{Roster: roster, Score: bestScore}) {
		return ctx.Err()
	}
	if s.comboSize == 0 {
		return nil
	}

	results := make(chan comboResult, s.cfg.Workers)
	done := make(chan error, 1)

	go func() {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.Workers)

		gen := combin.NewCombinationGenerator(len(s.pool), s.comboSize)
		for index := 0; gen.Next(); index++ {
			if gctx.Err() != nil {
				break
			}
			combo := gen.Combination(nil)
			i := index
			g.Go(func() error {
				selected := make([]*types.Player, len(combo))
				for j, c := range combo {
					selected[j] = s.pool[c]
				}
				result := comboResult{index: i, score: math.Inf(-1)}
				if packed, ok := s.legality.packRoster(roster, selected); ok {
					metrics.CombinationsScored.Inc()
					result.roster = packed
					result.score = s.scoreCandidate(packed)
				} else {
					metrics.CombinationsRejected.Inc()
				}
				select {
				case results <- result:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		done <- g.Wait()
		close(results)
	}()

	cancelled := false
	for result := range results {
		if math.IsInf(result.score, -1) {
			continue
		}
		s.valid++
		if cancelled || result.score <= bestScore {
			continue
		}
		bestScore = result.score
		if !s.emit(ctx, Step{Roster: result.roster, Score: result.score, Iteration: result.index + 1}) {
			cancelled = true
		}
	}

	if err := <-done; err != nil {
		return err
	}
	return ctx.Err()
}

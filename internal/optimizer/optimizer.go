package optimizer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"github.com/stitts-dev/h2h-sim/internal/metrics"
	"github.com/stitts-dev/h2h-sim/internal/types"
	"github.com/stitts-dev/h2h-sim/pkg/logger"
)

var (
	ErrEmptyRoster       = errors.New("roster is empty")
	ErrInvalidIterations = errors.New("iteration budget must be positive")
	ErrUnknownStrategy   = errors.New("unknown strategy")
	ErrInvalidSchedule   = errors.New("invalid annealing schedule")
	ErrNoSteps           = errors.New("run produced no steps")
)

// Optimizer searches legal lineups of a roster
type Optimizer struct {
	legality *LegalityModel
}

// New creates an optimizer over the given legality model
func New(legality *LegalityModel) *Optimizer {
	if legality == nil {
		legality = DefaultLegality()
	}
	return &Optimizer{legality: legality}
}

// Optimize runs a search with the default roster template
func Optimize(ctx context.Context, roster types.Roster, score ScoreFunc, cfg Config) (*Run, error) {
	return New(nil).Optimize(ctx, roster, score, cfg)
}

// Optimize validates the inputs and starts the search. Steps are produced
// lazily: the search advances only as the caller reads from run.Steps, and
// stops early when ctx is cancelled.
func (o *Optimizer) Optimize(ctx context.Context, roster types.Roster, score ScoreFunc, cfg Config) (*Run, error) {
	cfg, err := o.normalize(roster, score, cfg)
	if err != nil {
		return nil, err
	}

	steps := make(chan Step)
	run := &Run{
		ID:       uuid.New().String(),
		Strategy: cfg.Strategy,
		Total:    cfg.Iterations,
		Steps:    steps,
	}

	s := &search{
		legality: o.legality,
		cfg:      cfg,
		score:    score,
		forbid:   make(map[string]bool, len(cfg.Forbidden)),
		out:      steps,
		log:      logger.WithRunContext(run.ID, string(cfg.Strategy)),
	}
	for _, key := range cfg.Forbidden {
		s.forbid[key] = true
	}

	if cfg.Strategy == StrategyBruteForce {
		s.pool = s.candidatePool(roster)
		s.comboSize = o.legality.RosterSize()
		if len(s.pool) < s.comboSize {
			s.comboSize = len(s.pool)
		}
		run.Total = combinationCount(len(s.pool), s.comboSize)
	}

	go func() {
		defer close(steps)
		start := time.Now()
		s.log.WithFields(logrus.Fields{
			"players": roster.Len(),
			"total":   run.Total,
		}).Info("Starting optimization")

		var err error
		switch cfg.Strategy {
		case StrategyHillClimb:
			err = s.hillClimb(ctx, roster)
		case StrategyAnnealing:
			err = s.anneal(ctx, roster)
		case StrategyBruteForce:
			err = s.bruteForce(ctx, roster)
		}
		run.err = err
		run.valid = s.valid

		fields := logrus.Fields{
			"best_score":  s.bestScore,
			"yields":      s.yields,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err != nil {
			s.log.WithFields(fields).WithError(err).Warn("Optimization stopped early")
			return
		}
		s.log.WithFields(fields).Info("Optimization completed")
	}()

	return run, nil
}

func (o *Optimizer) normalize(roster types.Roster, score ScoreFunc, cfg Config) (Config, error) {
	if roster.Len() == 0 {
		return cfg, ErrEmptyRoster
	}
	if score == nil {
		return cfg, errors.New("score function is required")
	}

	strategy, err := ParseStrategy(string(cfg.Strategy))
	if err != nil {
		return cfg, err
	}
	cfg.Strategy = strategy

	if strategy != StrategyBruteForce && cfg.Iterations <= 0 {
		return cfg, fmt.Errorf("%w: got %d", ErrInvalidIterations, cfg.Iterations)
	}
	if strategy == StrategyAnnealing {
		if cfg.AnnealStart < 0 {
			return cfg, fmt.Errorf("%w: start temperature %f", ErrInvalidSchedule, cfg.AnnealStart)
		}
		if cfg.AnnealDecay < 0 || cfg.AnnealDecay >= 1 {
			return cfg, fmt.Errorf("%w: decay must be in [0, 1), got %f", ErrInvalidSchedule, cfg.AnnealDecay)
		}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	if err := o.legality.Validate(roster); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Best drains the run and returns its final, highest-scoring step
func Best(run *Run) (Step, error) {
	var best Step
	seen := false
	for step := range run.Steps {
		best = step
		seen = true
	}
	if err := run.Err(); err != nil {
		return best, err
	}
	if !seen {
		return best, ErrNoSteps
	}
	return best, nil
}

// Collect drains the run and returns every step
func Collect(run *Run) ([]Step, error) {
	var steps []Step
	for step := range run.Steps {
		steps = append(steps, step)
	}
	return steps, run.Err()
}

// search is the state of one run shared by the strategies
type search struct {
	legality *LegalityModel
	cfg      Config
	score    ScoreFunc
	forbid   map[string]bool
	out      chan<- Step
	log      *logrus.Entry

	pool      []*types.Player
	comboSize int

	bestScore float64
	yields    int
	valid     int
}

func (s *search) rng() *rand.Rand {
	return rand.New(rand.NewSource(s.cfg.Seed))
}

// emit yields a step, reporting false when the run was cancelled
func (s *search) emit(ctx context.Context, step Step) bool {
	select {
	case s.out <- step:
	case <-ctx.Done():
		return false
	}
	s.bestScore = step.Score
	s.yields++
	if step.Iteration > 0 {
		metrics.OptimizerImprovements.WithLabelValues(string(s.cfg.Strategy)).Inc()
		s.log.WithFields(logrus.Fields{
			"iteration": step.Iteration,
			"score":     step.Score,
		}).Debug("Improved lineup")
	}
	return true
}

func (s *search) scoreCandidate(r types.Roster) float64 {
	metrics.OptimizerSteps.WithLabelValues(string(s.cfg.Strategy)).Inc()
	return s.score(r)
}

package simulator

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/stitts-dev/h2h-sim/internal/metrics"
	"github.com/stitts-dev/h2h-sim/internal/providers"
	"github.com/stitts-dev/h2h-sim/internal/types"
	"github.com/stitts-dev/h2h-sim/pkg/logger"
)

// SimulateOptions parameterizes one head-to-head simulation
type SimulateOptions struct {
	Week           int
	NumDays        int
	NumSamples     int
	DecayRate      float64
	IncludeBench   bool
	IncludeInjured bool
	Calendar       types.Calendar
	// Seed 0 draws a fresh time-based seed per simulation
	Seed    uint64
	Workers int
	TeamA   string
	TeamB   string
}

func (o SimulateOptions) projection() ProjectionConfig {
	return ProjectionConfig{
		NumSamples:     o.NumSamples,
		Workers:        o.Workers,
		Seed:           o.Seed,
		IncludeBench:   o.IncludeBench,
		IncludeInjured: o.IncludeInjured,
	}
}

// seeded fixes a zero seed to a time-based one
func (o SimulateOptions) seeded() SimulateOptions {
	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}
	return o
}

func (o SimulateOptions) validate() error {
	if o.NumSamples <= 0 {
		return ErrInvalidSamples
	}
	if o.Week <= 0 {
		return fmt.Errorf("%w: week must be positive, got %d", ErrInvalidOptions, o.Week)
	}
	if o.NumDays <= 0 {
		return fmt.Errorf("%w: num_days must be positive, got %d", ErrInvalidOptions, o.NumDays)
	}
	if o.DecayRate < 0 {
		return fmt.Errorf("%w: decay rate must be non-negative, got %f", ErrInvalidOptions, o.DecayRate)
	}
	return nil
}

// Materialize fetches logs and schedules for every player on the roster and
// summarizes them. The result is aligned with roster.Players.
func Materialize(ctx context.Context, provider providers.StatsProvider, roster types.Roster, opts SimulateOptions) ([]StatSummary, error) {
	base := opts.Calendar.WeekStart(opts.Week)
	from, to := opts.Calendar.LogWindow(opts.Week, opts.NumDays)
	windowStart, windowEnd := opts.Calendar.ProjectionWindow(opts.Week)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	summaries := make([]StatSummary, len(roster.Players))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, player := range roster.Players {
		i, player := i, player
		g.Go(func() error {
			logs, err := provider.GameLogs(ctx, player, from, to)
			if err != nil {
				return fmt.Errorf("failed to fetch game logs for %s: %w", player.Name, err)
			}
			for j := range logs {
				logs[j].DaysAgo = types.DaysBetween(logs[j].Date, base)
			}
			games, err := provider.Schedule(ctx, player, windowStart, windowEnd)
			if err != nil {
				return fmt.Errorf("failed to fetch schedule for %s: %w", player.Name, err)
			}
			summaries[i] = Summarize(player, logs, opts.DecayRate, len(games))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Simulate projects both rosters for the week and scores A against B
func Simulate(ctx context.Context, provider providers.StatsProvider, rosterA, rosterB types.Roster, opts SimulateOptions) (*MatchupResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	log := logger.WithMatchupContext(opts.TeamA, opts.TeamB, opts.Week)
	start := time.Now()

	summariesA, err := Materialize(ctx, provider, rosterA, opts)
	if err != nil {
		return nil, err
	}
	summariesB, err := Materialize(ctx, provider, rosterB, opts)
	if err != nil {
		return nil, err
	}

	result, err := SimulateSummaries(ctx, rosterA, summariesA, rosterB, summariesB, opts)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"num_samples":  opts.NumSamples,
		"winning_prob": result.WinningProb,
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Matchup simulation completed")

	return result, nil
}

// SimulateSummaries runs the matchup over already materialized summaries.
// Team B is sampled from a source offset from team A's so the two teams
// never share draws.
func SimulateSummaries(ctx context.Context, rosterA types.Roster, summariesA []StatSummary, rosterB types.Roster, summariesB []StatSummary, opts SimulateOptions) (*MatchupResult, error) {
	timer := time.Now()
	defer func() {
		metrics.SimulationDuration.Observe(time.Since(timer).Seconds())
	}()
	opts = opts.seeded()

	configA := opts.projection()
	projectionA, err := NewProjector(configA).Project(ctx, rosterA, summariesA)
	if err != nil {
		return nil, fmt.Errorf("failed to project team A: %w", err)
	}

	configB := opts.projection()
	configB.Seed = opponentSeed(opts.Seed)
	projectionB, err := NewProjector(configB).Project(ctx, rosterB, summariesB)
	if err != nil {
		return nil, fmt.Errorf("failed to project team B: %w", err)
	}

	warnDegenerate(projectionA, opts.TeamA, opts.Week)
	warnDegenerate(projectionB, opts.TeamB, opts.Week)

	metrics.SimulationsTotal.Inc()
	return Compare(projectionA, projectionB)
}

// opponentSeed derives the opponent's seed far from any batch offset of seed
func opponentSeed(seed uint64) uint64 {
	return seed ^ 0x9e3779b97f4a7c15
}

func warnDegenerate(p *ProjectionSample, team string, week int) {
	if !p.Degenerate() {
		return
	}
	metrics.DegenerateTeams.Inc()
	logger.WithMatchupContext(team, "", week).WithField("players", len(p.Players)).
		Warn("No valid players in projection, team totals are zero")
}

package simulator

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/stitts-dev/h2h-sim/internal/metrics"
	"github.com/stitts-dev/h2h-sim/internal/types"
)

// DefaultBatchSize is the number of samples drawn by one worker task
const DefaultBatchSize = 1000

var (
	ErrInvalidSamples = errors.New("number of samples must be positive")
	ErrInvalidOptions = errors.New("invalid simulation options")
)

var countingStats = []types.Stat{
	types.Stat3PTM, types.StatPTS, types.StatREB, types.StatAST,
	types.StatST, types.StatBLK, types.StatTO,
}

// ProjectionConfig controls Monte Carlo projection of one team
type ProjectionConfig struct {
	NumSamples     int
	Workers        int
	BatchSize      int
	Seed           uint64
	IncludeBench   bool
	IncludeInjured bool
}

// ProjectionSample holds every per-player draw plus per-sample team totals
// over the valid players
type ProjectionSample struct {
	NumSamples int
	Players    []*types.Player
	Valid      []bool
	Totals     *mat.Dense

	draws []float64
}

// At returns the draw for one player's stat column in one sample
func (p *ProjectionSample) At(sample, player int, stat types.Stat) float64 {
	return p.draws[(sample*len(p.Players)+player)*int(types.NumStats)+int(stat)]
}

// Total returns the team total of a stat column in one sample
func (p *ProjectionSample) Total(sample int, stat types.Stat) float64 {
	return p.Totals.At(sample, int(stat))
}

// ValidCount returns how many players contribute to team totals
func (p *ProjectionSample) ValidCount() int {
	n := 0
	for _, v := range p.Valid {
		if v {
			n++
		}
	}
	return n
}

// Degenerate reports whether no player contributes to team totals
func (p *ProjectionSample) Degenerate() bool {
	return p.ValidCount() == 0
}

// Projector draws Monte Carlo samples of a team's stat production
type Projector struct {
	config ProjectionConfig
}

// NewProjector creates a projector, filling unset workers and batch size
func NewProjector(config ProjectionConfig) *Projector {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	return &Projector{config: config}
}

// ValidMask marks the players whose draws count toward team totals: players
// with logged games who are starting, unless bench or injured players are
// explicitly included.
func ValidMask(roster types.Roster, summaries []StatSummary, includeBench, includeInjured bool) []bool {
	valid := make([]bool, len(roster.Players))
	for i, p := range roster.Players {
		if !summaries[i].Defined() {
			continue
		}
		switch roster.SlotOf(p.Key) {
		case types.SlotBN:
			valid[i] = includeBench
		case types.SlotIL:
			valid[i] = includeInjured
		default:
			valid[i] = true
		}
	}
	return valid
}

// Project samples the roster. summaries must be aligned with roster.Players.
func (p *Projector) Project(ctx context.Context, roster types.Roster, summaries []StatSummary) (*ProjectionSample, error) {
	if len(summaries) != len(roster.Players) {
		return nil, fmt.Errorf("got %d summaries for %d players", len(summaries), len(roster.Players))
	}
	valid := ValidMask(roster, summaries, p.config.IncludeBench, p.config.IncludeInjured)
	return p.project(ctx, roster.Players, summaries, valid)
}

func (p *Projector) project(ctx context.Context, players []*types.Player, summaries []StatSummary, valid []bool) (*ProjectionSample, error) {
	numSamples := p.config.NumSamples
	if numSamples <= 0 {
		return nil, ErrInvalidSamples
	}

	numPlayers := len(players)
	sample := &ProjectionSample{
		NumSamples: numSamples,
		Players:    players,
		Valid:      valid,
		Totals:     mat.NewDense(numSamples, int(types.NumStats), nil),
		draws:      make([]float64, numSamples*numPlayers*int(types.NumStats)),
	}

	models := make([]playerModel, numPlayers)
	for i := range summaries {
		models[i] = newPlayerModel(summaries[i])
	}

	// Batches write disjoint sample rows, so workers share nothing mutable
	batchSize := p.config.BatchSize
	numBatches := (numSamples + batchSize - 1) / batchSize

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)
	for b := 0; b < numBatches; b++ {
		batch := b
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := batch * batchSize
			end := start + batchSize
			if end > numSamples {
				end = numSamples
			}
			src := rand.NewSource(p.config.Seed + uint64(batch))
			sample.fill(src, models, start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.SamplesDrawn.Add(float64(numSamples))
	return sample, nil
}

func (p *ProjectionSample) fill(src rand.Source, models []playerModel, start, end int) {
	numPlayers := len(p.Players)
	stride := int(types.NumStats)
	for s := start; s < end; s++ {
		var totals types.StatLine
		for i := range models {
			row := p.draws[(s*numPlayers+i)*stride : (s*numPlayers+i+1)*stride]
			models[i].draw(src, row)
			if p.Valid[i] {
				for c, v := range row {
					totals[c] += v
				}
			}
		}
		p.Totals.SetRow(s, totals[:])
	}
}

// playerModel holds the per-stat distributions for one player over the
// simulated period
type playerModel struct {
	counts     [types.NumStats]NormalDistribution
	fgAttempts AttemptDistribution
	ftAttempts AttemptDistribution
	fgPct      ShootingDistribution
	ftPct      ShootingDistribution
}

func newPlayerModel(summary StatSummary) playerModel {
	games := float64(summary.GamesRemaining)
	var m playerModel
	for _, stat := range countingStats {
		m.counts[stat] = NewNormalDistribution(summary.Mean[stat]*games, summary.Std[stat]*games)
	}
	m.fgAttempts = NewAttemptDistribution(summary.Mean[types.StatFGA]*games, summary.Std[types.StatFGA]*games)
	m.ftAttempts = NewAttemptDistribution(summary.Mean[types.StatFTA]*games, summary.Std[types.StatFTA]*games)
	m.fgPct = NewShootingDistribution(summary.FGM, summary.FGA)
	m.ftPct = NewShootingDistribution(summary.FTM, summary.FTA)
	return m
}

func (m playerModel) draw(src rand.Source, row []float64) {
	for _, stat := range countingStats {
		row[stat] = m.counts[stat].Sample(src)
	}

	fga := m.fgAttempts.Sample(src)
	row[types.StatFGA] = fga
	row[types.StatFGM] = SampleMakes(src, fga, m.fgPct.Sample(src))

	fta := m.ftAttempts.Sample(src)
	row[types.StatFTA] = fta
	row[types.StatFTM] = SampleMakes(src, fta, m.ftPct.Sample(src))
}

package trade

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/h2h-sim/internal/optimizer"
	"github.com/stitts-dev/h2h-sim/internal/providers"
	"github.com/stitts-dev/h2h-sim/internal/simulator"
	"github.com/stitts-dev/h2h-sim/internal/types"
	"github.com/stitts-dev/h2h-sim/pkg/logger"
)

var (
	ErrEmptyTrade = errors.New("trade moves no players")
	ErrSameTeam   = errors.New("a team cannot trade with itself")
)

// DefaultIterations is the hill-climbing budget per opponent
const DefaultIterations = 100

// Request describes a proposed trade. Players are named by key or by name.
type Request struct {
	TeamA    string   `json:"team_a"`
	TeamB    string   `json:"team_b"`
	PlayersA []string `json:"players_a"`
	PlayersB []string `json:"players_b"`
	// Opponents are the team keys each side is measured against. Empty means
	// every other team in the league.
	Opponents  []string                  `json:"opponents"`
	Iterations int                       `json:"iterations"`
	Options    simulator.SimulateOptions `json:"-"`
	Reduce     simulator.ResultScorer    `json:"-"`
}

// OpponentScore compares one side's best lineup before and after the trade
type OpponentScore struct {
	Opponent    providers.Team `json:"opponent"`
	Before      float64        `json:"before"`
	After       float64        `json:"after"`
	Improvement float64        `json:"improvement"`
}

// SideReport is the outcome of the trade for one team
type SideReport struct {
	Team               providers.Team  `json:"team"`
	Gives              []*types.Player `json:"gives"`
	Receives           []*types.Player `json:"receives"`
	Before             types.Roster    `json:"before"`
	After              types.Roster    `json:"after"`
	Scores             []OpponentScore `json:"scores"`
	AverageImprovement float64         `json:"average_improvement"`
}

// Result holds both sides of an evaluated trade
type Result struct {
	ID   string     `json:"id"`
	Week int        `json:"week"`
	A    SideReport `json:"team_a"`
	B    SideReport `json:"team_b"`
}

// Evaluator scores trades against a league
type Evaluator struct {
	league    providers.League
	optimizer *optimizer.Optimizer
}

// NewEvaluator creates an evaluator using the default roster template
func NewEvaluator(league providers.League) *Evaluator {
	return &Evaluator{league: league, optimizer: optimizer.New(nil)}
}

// Evaluate moves the players between the two rosters, with received players
// landing on the bench, then hill-climbs each side's old and new roster
// against every opponent
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*Result, error) {
	if req.TeamA == req.TeamB {
		return nil, ErrSameTeam
	}
	if len(req.PlayersA) == 0 && len(req.PlayersB) == 0 {
		return nil, ErrEmptyTrade
	}
	if req.Iterations <= 0 {
		req.Iterations = DefaultIterations
	}
	if req.Reduce == nil {
		req.Reduce = simulator.WinningProbability
	}
	// before and after rosters share draws
	if req.Options.Seed == 0 {
		req.Options.Seed = uint64(time.Now().UnixNano())
	}
	week := req.Options.Week

	teamA, rosterA, err := e.team(ctx, req.TeamA, week)
	if err != nil {
		return nil, err
	}
	teamB, rosterB, err := e.team(ctx, req.TeamB, week)
	if err != nil {
		return nil, err
	}

	givesA, err := resolve(rosterA, req.PlayersA)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", teamA.Name, err)
	}
	givesB, err := resolve(rosterB, req.PlayersB)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", teamB.Name, err)
	}
	newA, newB := Apply(rosterA, rosterB, givesA, givesB)

	result := &Result{
		ID:   uuid.New().String(),
		Week: week,
		A:    SideReport{Team: teamA, Gives: givesA, Receives: givesB, Before: rosterA, After: newA},
		B:    SideReport{Team: teamB, Gives: givesB, Receives: givesA, Before: rosterB, After: newB},
	}
	log := logger.GetLogger().WithFields(logrus.Fields{
		"trade_id": result.ID,
		"team_a":   teamA.Key,
		"team_b":   teamB.Key,
		"week":     week,
	})
	log.Info("Evaluating trade")
	start := time.Now()

	for _, side := range []*SideReport{&result.A, &result.B} {
		opponents, err := e.opponents(ctx, req.Opponents, side.Team.Key)
		if err != nil {
			return nil, err
		}
		side.Scores, err = e.scoreSide(ctx, req, *side, opponents)
		if err != nil {
			return nil, err
		}
		side.AverageImprovement = averageImprovement(side.Scores)
	}

	log.WithFields(logrus.Fields{
		"improvement_a": result.A.AverageImprovement,
		"improvement_b": result.B.AverageImprovement,
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Info("Trade evaluated")
	return result, nil
}

// Apply returns both rosters after the swap. Received players are benched.
func Apply(rosterA, rosterB types.Roster, givesA, givesB []*types.Player) (types.Roster, types.Roster) {
	newA, newB := rosterA.Copy(), rosterB.Copy()
	for _, p := range givesA {
		newA = newA.Remove(p.Key)
		newB = newB.Add(p, types.SlotBN)
	}
	for _, p := range givesB {
		newB = newB.Remove(p.Key)
		newA = newA.Add(p, types.SlotBN)
	}
	return newA, newB
}

func (e *Evaluator) team(ctx context.Context, key string, week int) (providers.Team, types.Roster, error) {
	teams, err := e.league.Teams(ctx)
	if err != nil {
		return providers.Team{}, types.Roster{}, err
	}
	for _, t := range teams {
		if t.Key == key {
			roster, err := e.league.Roster(ctx, key, week)
			return t, roster, err
		}
	}
	return providers.Team{}, types.Roster{}, fmt.Errorf("%w: %s", providers.ErrTeamNotFound, key)
}

func (e *Evaluator) opponents(ctx context.Context, keys []string, self string) ([]providers.Team, error) {
	teams, err := e.league.Teams(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		var out []providers.Team
		for _, t := range teams {
			if t.Key != self {
				out = append(out, t)
			}
		}
		return out, nil
	}

	byKey := make(map[string]providers.Team, len(teams))
	for _, t := range teams {
		byKey[t.Key] = t
	}
	out := make([]providers.Team, 0, len(keys))
	for _, key := range keys {
		if key == self {
			continue
		}
		t, ok := byKey[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", providers.ErrTeamNotFound, key)
		}
		out = append(out, t)
	}
	return out, nil
}

// scoreSide evaluates one team against its opponents in parallel
func (e *Evaluator) scoreSide(ctx context.Context, req Request, side SideReport, opponents []providers.Team) ([]OpponentScore, error) {
	scores := make([]OpponentScore, len(opponents))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opponentWorkers(req.Options))
	for i, opp := range opponents {
		i, opp := i, opp
		g.Go(func() error {
			oppRoster, err := e.league.Roster(ctx, opp.Key, req.Options.Week)
			if err != nil {
				return err
			}
			opts := req.Options
			opts.TeamA, opts.TeamB = side.Team.Key, opp.Key

			before, err := e.bestScore(ctx, side.Before, oppRoster, opts, req)
			if err != nil {
				return fmt.Errorf("scoring %s against %s: %w", side.Team.Name, opp.Name, err)
			}
			after, err := e.bestScore(ctx, side.After, oppRoster, opts, req)
			if err != nil {
				return fmt.Errorf("scoring traded %s against %s: %w", side.Team.Name, opp.Name, err)
			}
			scores[i] = OpponentScore{Opponent: opp, Before: before, After: after, Improvement: after - before}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// opponentWorkers bounds how many opponents are scored at once. Each one
// runs its own projector pool of the same size.
func opponentWorkers(opts simulator.SimulateOptions) int {
	if opts.Workers > 0 {
		return opts.Workers
	}
	return runtime.NumCPU()
}

// bestScore hill-climbs the roster against one opponent and returns the
// best score found
func (e *Evaluator) bestScore(ctx context.Context, roster, opponent types.Roster, opts simulator.SimulateOptions, req Request) (float64, error) {
	scorer, err := simulator.NewRosterScorer(ctx, e.league, roster, opponent, opts, req.Reduce)
	if err != nil {
		return 0, err
	}
	run, err := e.optimizer.Optimize(ctx, roster, scorer.Score, optimizer.Config{
		Strategy:       optimizer.StrategyHillClimb,
		Iterations:     req.Iterations,
		ExcludeInjured: true,
		Workers:        opts.Workers,
		Seed:           opts.Seed,
	})
	if err != nil {
		return 0, err
	}
	best, err := optimizer.Best(run)
	if errors.Is(err, optimizer.ErrInfeasibleRoster) || errors.Is(err, optimizer.ErrNoNeighbor) {
		// the climb still scored the lineups it reached
		return best.Score, nil
	}
	return best.Score, err
}

func resolve(roster types.Roster, names []string) ([]*types.Player, error) {
	players := make([]*types.Player, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		p, ok := roster.PlayerByKey(name)
		if !ok {
			p, ok = roster.PlayerByName(name)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %q is not on the roster", providers.ErrPlayerNotFound, name)
		}
		if seen[p.Key] {
			continue
		}
		seen[p.Key] = true
		players = append(players, p)
	}
	return players, nil
}

func averageImprovement(scores []OpponentScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	improvements := make([]float64, len(scores))
	for i, s := range scores {
		improvements[i] = s.Improvement
	}
	return stat.Mean(improvements, nil)
}

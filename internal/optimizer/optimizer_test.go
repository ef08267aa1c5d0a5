package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/h2h-sim/internal/simulator"
	"github.com/stitts-dev/h2h-sim/internal/types"
)

func collect(t *testing.T, roster types.Roster, score ScoreFunc, cfg Config) (*Run, []Step) {
	t.Helper()
	run, err := Optimize(context.Background(), roster, score, cfg)
	require.NoError(t, err)
	steps, err := Collect(run)
	require.NoError(t, err)
	require.NotEmpty(t, steps)
	return run, steps
}

func assertStrictlyImproving(t *testing.T, steps []Step) {
	t.Helper()
	for i := 1; i < len(steps); i++ {
		assert.Greater(t, steps[i].Score, steps[i-1].Score, "step %d", i)
		assert.Greater(t, steps[i].Iteration, steps[i-1].Iteration, "step %d", i)
	}
}

func TestHillClimb(t *testing.T) {
	roster := leagueRoster()
	run, steps := collect(t, roster, starterSum, Config{Strategy: StrategyHillClimb, Iterations: 400, Seed: 17})

	assert.Equal(t, StrategyHillClimb, run.Strategy)
	assert.Equal(t, 400, run.Total)
	assert.NotEmpty(t, run.ID)

	assert.Equal(t, 0, steps[0].Iteration)
	assert.Equal(t, 10.0, steps[0].Score)
	assertStrictlyImproving(t, steps)

	m := DefaultLegality()
	for _, step := range steps {
		require.NoError(t, m.Validate(step.Roster))
		assert.Equal(t, starterSum(step.Roster), step.Score)
	}

	// starting b1 over any one-weight player is the only upgrade available
	assert.Equal(t, 12.0, steps[len(steps)-1].Score)
}

func TestHillClimbIsReproducible(t *testing.T) {
	cfg := Config{Strategy: StrategyHillClimb, Iterations: 200, Seed: 5}
	_, first := collect(t, leagueRoster(), starterSum, cfg)
	_, second := collect(t, leagueRoster(), starterSum, cfg)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Iteration, second[i].Iteration)
		assert.Equal(t, first[i].Roster.Positions, second[i].Roster.Positions)
	}
}

func TestHillClimbForbiddenPlayersStay(t *testing.T) {
	_, steps := collect(t, leagueRoster(), starterSum, Config{
		Strategy:   StrategyHillClimb,
		Iterations: 300,
		Forbidden:  []string{"b1", "p3"},
		Seed:       9,
	})

	for _, step := range steps {
		assert.Equal(t, types.SlotBN, step.Roster.SlotOf("b1"))
		assert.Equal(t, types.SlotG, step.Roster.SlotOf("p3"))
	}
	assert.Equal(t, 10.0, steps[len(steps)-1].Score)
}

func TestAnnealingYieldsOnlyNewBests(t *testing.T) {
	_, steps := collect(t, leagueRoster(), starterSum, Config{
		Strategy:    StrategyAnnealing,
		Iterations:  500,
		AnnealStart: 2,
		AnnealDecay: 0.99,
		Seed:        23,
	})

	assert.Equal(t, 10.0, steps[0].Score)
	assertStrictlyImproving(t, steps)
}

func TestAnnealingAtZeroTemperatureMatchesHillClimb(t *testing.T) {
	schedules := map[string][2]float64{
		"zero start and decay": {0, 0},
		"zero start":           {0, 0.5},
	}
	for name, schedule := range schedules {
		t.Run(name, func(t *testing.T) {
			for seed := uint64(1); seed <= 20; seed++ {
				_, hill := collect(t, leagueRoster(), starterSum, Config{Strategy: StrategyHillClimb, Iterations: 300, Seed: seed})
				_, cold := collect(t, leagueRoster(), starterSum, Config{
					Strategy:    StrategyAnnealing,
					Iterations:  300,
					AnnealStart: schedule[0],
					AnnealDecay: schedule[1],
					Seed:        seed,
				})

				require.Equal(t, len(hill), len(cold), "seed %d", seed)
				for i := range hill {
					assert.Equal(t, hill[i].Iteration, cold[i].Iteration)
					assert.Equal(t, hill[i].Score, cold[i].Score)
					assert.Equal(t, hill[i].Roster.StarterSet(), cold[i].Roster.StarterSet())
				}
			}
		})
	}
}

func TestBruteForce(t *testing.T) {
	run, steps := collect(t, leagueRoster(), starterSum, Config{Strategy: StrategyBruteForce, Workers: 4})

	// twelve healthy players choose ten
	assert.Equal(t, 66, run.Total)
	assert.Greater(t, run.Valid(), 0)
	assert.LessOrEqual(t, run.Valid(), run.Total)

	assert.Equal(t, 10.0, steps[0].Score)
	for i := 1; i < len(steps); i++ {
		assert.Greater(t, steps[i].Score, steps[i-1].Score)
	}

	best := steps[len(steps)-1]
	assert.Equal(t, 12.0, best.Score)
	require.NoError(t, DefaultLegality().Validate(best.Roster))
	assert.NotEqual(t, types.SlotBN, best.Roster.SlotOf("b1"))
	assert.Equal(t, types.SlotIL, best.Roster.SlotOf("i1"))
}

func TestBruteForceSinglePoolMatchesSimulation(t *testing.T) {
	base := leagueRoster()
	roster := base.Remove("b1").Remove("b2")
	// bench one starter so the only full lineup improves on the input
	roster.Positions["p10"] = types.SlotBN

	summaries := make([]simulator.StatSummary, roster.Len())
	for i, p := range roster.Players {
		summaries[i] = simulator.StatSummary{
			Player:         p,
			Mean:           types.StatLineFromMap(map[string]float64{"FGA": 12, "FTA": 4, "3PTM": 2, "PTS": 18, "REB": 6, "AST": 4, "ST": 1, "BLK": 1, "TO": 2}),
			Std:            types.StatLineFromMap(map[string]float64{"FGA": 3, "PTS": 5, "REB": 2, "AST": 2, "TO": 1}),
			GamesPlayed:    6,
			GamesRemaining: 3,
			FGM:            30, FGA: 70, FTM: 20, FTA: 25,
		}
	}
	opponent := types.NewRoster([]*types.Player{player("opp", types.SlotC)}, types.Assignment{"opp": types.SlotC})
	opponentSummaries := []simulator.StatSummary{{
		Player:         opponent.Players[0],
		Mean:           types.StatLineFromMap(map[string]float64{"FGA": 90, "FTA": 30, "3PTM": 15, "PTS": 150, "REB": 55, "AST": 35, "ST": 9, "BLK": 7, "TO": 14}),
		GamesPlayed:    6,
		GamesRemaining: 3,
		FGM:            40, FGA: 90, FTM: 22, FTA: 30,
	}}
	opts := simulator.SimulateOptions{Week: 1, NumDays: 14, NumSamples: 400, Seed: 77, Workers: 2}

	ctx := context.Background()
	scorer, err := simulator.NewRosterScorerFromSummaries(ctx, roster, summaries, opponent, opponentSummaries, opts, simulator.ExpectedValue)
	require.NoError(t, err)

	run, steps := collect(t, roster, scorer.Score, Config{Strategy: StrategyBruteForce, Workers: 2})
	assert.Equal(t, 1, run.Total)
	assert.Equal(t, 1, run.Valid())

	best := steps[len(steps)-1]
	assert.Len(t, best.Roster.Starters(), 10)

	direct, err := simulator.SimulateSummaries(ctx, best.Roster, summaries, opponent, opponentSummaries, opts)
	require.NoError(t, err)
	assert.Equal(t, direct.ExpectedScore, best.Score)
}

func TestOptimizeValidation(t *testing.T) {
	illegal := leagueRoster()
	illegal.Positions["b1"] = types.SlotPG

	tests := []struct {
		name   string
		roster types.Roster
		score  ScoreFunc
		cfg    Config
		err    error
	}{
		{"empty roster", types.Roster{}, starterSum, Config{Iterations: 10}, ErrEmptyRoster},
		{"zero iterations", leagueRoster(), starterSum, Config{Strategy: StrategyHillClimb}, ErrInvalidIterations},
		{"unknown strategy", leagueRoster(), starterSum, Config{Strategy: "genetic", Iterations: 10}, ErrUnknownStrategy},
		{"bad decay", leagueRoster(), starterSum, Config{Strategy: StrategyAnnealing, Iterations: 10, AnnealStart: 1, AnnealDecay: 1}, ErrInvalidSchedule},
		{"negative temperature", leagueRoster(), starterSum, Config{Strategy: StrategyAnnealing, Iterations: 10, AnnealStart: -1, AnnealDecay: 0.9}, ErrInvalidSchedule},
		{"illegal roster", illegal, starterSum, Config{Iterations: 10}, ErrIllegalRoster},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Optimize(context.Background(), tt.roster, tt.score, tt.cfg)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("missing score function", func(t *testing.T) {
		_, err := Optimize(context.Background(), leagueRoster(), nil, Config{Iterations: 10})
		assert.Error(t, err)
	})

	t.Run("brute force needs no iteration budget", func(t *testing.T) {
		run, err := Optimize(context.Background(), leagueRoster(), starterSum, Config{Strategy: StrategyBruteForce})
		require.NoError(t, err)
		_, err = Best(run)
		assert.NoError(t, err)
	})
}

func TestOptimizeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	run, err := Optimize(ctx, leagueRoster(), func(types.Roster) float64 { return 0 }, Config{
		Strategy:   StrategyHillClimb,
		Iterations: 10_000_000,
		Seed:       1,
	})
	require.NoError(t, err)

	first, ok := <-run.Steps
	require.True(t, ok)
	assert.Equal(t, 0, first.Iteration)

	cancel()
	for range run.Steps {
	}
	assert.ErrorIs(t, run.Err(), context.Canceled)
}

func TestBest(t *testing.T) {
	run, err := Optimize(context.Background(), leagueRoster(), starterSum, Config{Strategy: StrategyHillClimb, Iterations: 300, Seed: 3})
	require.NoError(t, err)

	best, err := Best(run)
	require.NoError(t, err)
	assert.Equal(t, starterSum(best.Roster), best.Score)
	assert.GreaterOrEqual(t, best.Score, 10.0)
}

func TestParseStrategy(t *testing.T) {
	tests := map[string]Strategy{
		"":                    StrategyHillClimb,
		"hill_climb":          StrategyHillClimb,
		"Simulated_Annealing": StrategyAnnealing,
		"brute-force":         StrategyBruteForce,
	}
	for input, expected := range tests {
		s, err := ParseStrategy(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, s)
	}

	_, err := ParseStrategy("tabu")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

package simulator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

func testRoster() (types.Roster, []StatSummary) {
	players := []*types.Player{
		{Key: "a", EligibleSlots: []types.Slot{types.SlotPG}},
		{Key: "b", EligibleSlots: []types.Slot{types.SlotC}},
		{Key: "c", EligibleSlots: []types.Slot{types.SlotSF}},
		{Key: "d", EligibleSlots: []types.Slot{types.SlotPF}},
	}
	roster := types.NewRoster(players, types.Assignment{
		"a": types.SlotPG, "b": types.SlotC, "c": types.SlotBN, "d": types.SlotIL,
	})
	summaries := []StatSummary{
		fixedSummary(players[0], 3, strongLine),
		fixedSummary(players[1], 3, weakLine),
		fixedSummary(players[2], 3, weakLine),
		fixedSummary(players[3], 3, weakLine),
	}
	summaries[0].Std = types.StatLineFromMap(map[string]float64{"FGA": 4, "FTA": 2, "PTS": 6, "REB": 3})
	return roster, summaries
}

func TestValidMask(t *testing.T) {
	roster, summaries := testRoster()

	tests := []struct {
		name           string
		includeBench   bool
		includeInjured bool
		expected       []bool
	}{
		{"starters only", false, false, []bool{true, true, false, false}},
		{"with bench", true, false, []bool{true, true, true, false}},
		{"with injured", false, true, []bool{true, true, false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidMask(roster, summaries, tt.includeBench, tt.includeInjured))
		})
	}

	t.Run("undefined summary is masked", func(t *testing.T) {
		undefined := append([]StatSummary(nil), summaries...)
		undefined[0] = StatSummary{Player: roster.Players[0]}
		assert.Equal(t, []bool{false, true, false, false}, ValidMask(roster, undefined, false, false))
	})
}

func TestProjectTotalsOnlyValidPlayers(t *testing.T) {
	roster, summaries := testRoster()
	projector := NewProjector(ProjectionConfig{NumSamples: 250, Workers: 3, BatchSize: 64, Seed: 11})

	sample, err := projector.Project(context.Background(), roster, summaries)
	require.NoError(t, err)
	require.Equal(t, 250, sample.NumSamples)
	assert.Equal(t, 2, sample.ValidCount())

	for s := 0; s < sample.NumSamples; s++ {
		for stat := types.Stat(0); stat < types.NumStats; stat++ {
			expected := sample.At(s, 0, stat) + sample.At(s, 1, stat)
			assert.InDelta(t, expected, sample.Total(s, stat), 1e-9)
		}
		for p := range roster.Players {
			fga, fgm := sample.At(s, p, types.StatFGA), sample.At(s, p, types.StatFGM)
			assert.GreaterOrEqual(t, fga, 0.0)
			assert.LessOrEqual(t, fgm, fga)
			assert.Equal(t, fga, float64(int(fga)), "attempts are whole numbers")
		}
	}
}

func TestProjectZeroVarianceCountsAreExact(t *testing.T) {
	roster, summaries := testRoster()
	projector := NewProjector(ProjectionConfig{NumSamples: 10, Seed: 3})

	sample, err := projector.Project(context.Background(), roster, summaries)
	require.NoError(t, err)

	for s := 0; s < sample.NumSamples; s++ {
		// player b has zero variance over three games
		assert.Equal(t, 60.0, sample.At(s, 1, types.StatPTS))
		assert.Equal(t, 3.0, sample.At(s, 1, types.StatTO))
	}
}

func TestProjectIsReproducibleForSeed(t *testing.T) {
	roster, summaries := testRoster()
	config := ProjectionConfig{NumSamples: 300, Workers: 4, BatchSize: 50, Seed: 99}

	first, err := NewProjector(config).Project(context.Background(), roster, summaries)
	require.NoError(t, err)
	second, err := NewProjector(config).Project(context.Background(), roster, summaries)
	require.NoError(t, err)

	assert.Equal(t, first.Totals.RawMatrix().Data, second.Totals.RawMatrix().Data)

	config.Seed = 100
	third, err := NewProjector(config).Project(context.Background(), roster, summaries)
	require.NoError(t, err)
	assert.NotEqual(t, first.Totals.RawMatrix().Data, third.Totals.RawMatrix().Data)
}

func TestProjectErrors(t *testing.T) {
	roster, summaries := testRoster()

	_, err := NewProjector(ProjectionConfig{NumSamples: 0}).Project(context.Background(), roster, summaries)
	assert.ErrorIs(t, err, ErrInvalidSamples)

	_, err = NewProjector(ProjectionConfig{NumSamples: 10}).Project(context.Background(), roster, summaries[:2])
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewProjector(ProjectionConfig{NumSamples: 10}).Project(ctx, roster, summaries)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDistributions(t *testing.T) {
	src := rand.NewSource(1)

	t.Run("normal with zero spread returns mean", func(t *testing.T) {
		d := NewNormalDistribution(4.5, 0)
		assert.Equal(t, 4.5, d.Sample(src))
	})

	t.Run("attempts are floored and clipped", func(t *testing.T) {
		assert.Equal(t, 0.0, NewAttemptDistribution(-5, 0).Sample(src))
		assert.Equal(t, 7.0, NewAttemptDistribution(7.9, 0).Sample(src))
	})

	t.Run("shooting posterior", func(t *testing.T) {
		d := NewShootingDistribution(0, 0)
		assert.Equal(t, 0.5, d.Mean())
		for i := 0; i < 100; i++ {
			v := d.Sample(src)
			assert.True(t, v >= 0 && v <= 1)
		}
		assert.InDelta(t, 41.0/92.0, NewShootingDistribution(40, 90).Mean(), 1e-12)
	})

	t.Run("makes never exceed attempts", func(t *testing.T) {
		assert.Equal(t, 0.0, SampleMakes(src, 0, 0.5))
		assert.Equal(t, 0.0, SampleMakes(src, 10, 0))
		assert.Equal(t, 10.0, SampleMakes(src, 10, 1))
		for i := 0; i < 100; i++ {
			v := SampleMakes(src, 12, 0.45)
			assert.True(t, v >= 0 && v <= 12)
		}
	})
}

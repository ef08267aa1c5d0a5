package providers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

func loadTestLeague(t *testing.T) *FixtureProvider {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	p, err := LoadFixture("testdata/league.json", logger)
	require.NoError(t, err)
	return p
}

func TestLoadFixture(t *testing.T) {
	p := loadTestLeague(t)
	ctx := context.Background()

	teams, err := p.Teams(ctx)
	require.NoError(t, err)
	assert.Len(t, teams, 2)

	cal := p.Calendar()
	assert.Equal(t, time.Date(2023, 10, 23, 0, 0, 0, 0, time.UTC), cal.SeasonStart)
	assert.Equal(t, 7, cal.WeekLength)
}

func TestFixtureRoster(t *testing.T) {
	p := loadTestLeague(t)

	roster, err := p.Roster(context.Background(), "428.l.1.t.1", 2)
	require.NoError(t, err, "later weeks fall back to the latest roster on file")
	assert.Equal(t, 12, roster.Len())
	assert.Len(t, roster.Starters(), 10)
	assert.Equal(t, types.SlotIL, roster.SlotOf("428.p.112"))

	injured, ok := roster.PlayerByKey("428.p.112")
	require.True(t, ok)
	assert.True(t, injured.Injured())

	_, err = p.Roster(context.Background(), "nope", 1)
	assert.True(t, errors.Is(err, ErrTeamNotFound))
}

func TestFixtureFreeAgents(t *testing.T) {
	p := loadTestLeague(t)

	agents, err := p.FreeAgents(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, agents, 3)
	assert.Equal(t, "428.p.301", agents[0].Key)

	all, err := p.FreeAgents(context.Background(), 1, 50)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestFixtureMatchupAndManager(t *testing.T) {
	p := loadTestLeague(t)
	ctx := context.Background()

	opp, err := p.Matchup(ctx, "428.l.1.t.2", 2)
	require.NoError(t, err)
	assert.Equal(t, "428.l.1.t.1", opp.Key)

	_, err = p.Matchup(ctx, "428.l.1.t.2", 20)
	assert.True(t, errors.Is(err, ErrNoMatchup))

	team, err := p.TeamByManager(ctx, "JORDAN")
	require.NoError(t, err)
	assert.Equal(t, "428.l.1.t.2", team.Key)
}

func TestFixtureWindows(t *testing.T) {
	p := loadTestLeague(t)
	ctx := context.Background()
	player, err := p.Player("428.p.101")
	require.NoError(t, err)

	cal := p.Calendar()
	start, end := cal.ProjectionWindow(2)
	games, err := p.Schedule(ctx, player, start, end)
	require.NoError(t, err)
	assert.Len(t, games, 3)
	for _, g := range games {
		assert.False(t, g.Before(start))
		assert.True(t, g.Before(end))
	}

	from, to := cal.LogWindow(2, 7)
	logs, err := p.GameLogs(ctx, player, from, to)
	require.NoError(t, err)
	assert.Len(t, logs, 4)
	assert.Greater(t, logs[0].Stats[types.StatFGA], 0.0)
}

func TestNewFixtureProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"teams": [`},
		{"bad season start", `{"season_start": "October"}`},
		{"unknown rostered player", `{"season_start": "2023-10-23", "rosters": {"t": {"1": {"ghost": "PG"}}}}`},
		{"bad game date", `{"season_start": "2023-10-23", "game_logs": {"p": [{"date": "yesterday"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFixtureProvider(strings.NewReader(tt.body), nil)
			assert.Error(t, err)
		})
	}
}

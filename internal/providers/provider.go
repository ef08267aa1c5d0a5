package providers

import (
	"context"
	"errors"
	"time"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrTeamNotFound   = errors.New("team not found")
	ErrNoMatchup      = errors.New("no matchup scheduled")
)

// StatsProvider supplies the per-player inputs of a simulation. Windows are
// half-open: [from, to).
type StatsProvider interface {
	GameLogs(ctx context.Context, player *types.Player, from, to time.Time) ([]types.GameLogEntry, error)
	Schedule(ctx context.Context, player *types.Player, from, to time.Time) ([]time.Time, error)
}

// Team is one fantasy team in the league
type Team struct {
	Key         string `json:"team_key"`
	Name        string `json:"name"`
	ManagerID   string `json:"manager_id"`
	ManagerName string `json:"manager_name"`
}

// LeagueSource supplies league structure: teams, weekly rosters and
// matchups, and the free-agent pool
type LeagueSource interface {
	Teams(ctx context.Context) ([]Team, error)
	Roster(ctx context.Context, teamKey string, week int) (types.Roster, error)
	FreeAgents(ctx context.Context, week, count int) ([]*types.Player, error)
	TeamByManager(ctx context.Context, managerName string) (Team, error)
	Matchup(ctx context.Context, teamKey string, week int) (Team, error)
	Calendar() types.Calendar
}

// League combines both provider roles
type League interface {
	StatsProvider
	LeagueSource
}

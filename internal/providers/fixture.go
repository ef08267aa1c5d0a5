package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

const dateLayout = "2006-01-02"

// Fixture file structures
type fixtureFile struct {
	LeagueKey   string                                  `json:"league_key"`
	SeasonStart string                                  `json:"season_start"`
	WeekLength  int                                     `json:"week_length"`
	Teams       []Team                                  `json:"teams"`
	Players     []fixturePlayer                         `json:"players"`
	Rosters     map[string]map[string]map[string]string `json:"rosters"`
	Matchups    map[string][][2]string                  `json:"matchups"`
	GameLogs    map[string][]fixtureGame                `json:"game_logs"`
	Schedules   map[string][]string                     `json:"schedules"`
}

type fixturePlayer struct {
	Key               string   `json:"player_key"`
	ID                string   `json:"player_id"`
	Name              string   `json:"name"`
	Status            string   `json:"status"`
	Team              string   `json:"team"`
	EligiblePositions []string `json:"eligible_positions"`
}

type fixtureGame struct {
	Date  string             `json:"date"`
	Stats map[string]float64 `json:"stats"`
}

type rosterWeek struct {
	week       int
	assignment types.Assignment
}

// FixtureProvider serves a whole league from a JSON snapshot held in memory
type FixtureProvider struct {
	leagueKey string
	calendar  types.Calendar
	teams     []Team
	players   []*types.Player
	byKey     map[string]*types.Player
	rosters   map[string][]rosterWeek
	matchups  map[int][][2]string
	logs      map[string][]types.GameLogEntry
	schedules map[string][]time.Time
	logger    *logrus.Logger
}

// LoadFixture reads a league snapshot from disk
func LoadFixture(path string, logger *logrus.Logger) (*FixtureProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open league fixture: %w", err)
	}
	defer f.Close()

	provider, err := NewFixtureProvider(f, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load league fixture %s: %w", path, err)
	}
	return provider, nil
}

// NewFixtureProvider decodes a league snapshot
func NewFixtureProvider(r io.Reader, logger *logrus.Logger) (*FixtureProvider, error) {
	var file fixtureFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	seasonStart, err := time.Parse(dateLayout, file.SeasonStart)
	if err != nil {
		return nil, fmt.Errorf("invalid season_start %q: %w", file.SeasonStart, err)
	}
	weekLength := file.WeekLength
	if weekLength <= 0 {
		weekLength = 7
	}

	p := &FixtureProvider{
		leagueKey: file.LeagueKey,
		calendar:  types.Calendar{SeasonStart: seasonStart, WeekLength: weekLength},
		teams:     file.Teams,
		byKey:     make(map[string]*types.Player, len(file.Players)),
		rosters:   make(map[string][]rosterWeek, len(file.Rosters)),
		matchups:  make(map[int][][2]string, len(file.Matchups)),
		logs:      make(map[string][]types.GameLogEntry, len(file.GameLogs)),
		schedules: make(map[string][]time.Time, len(file.Schedules)),
		logger:    logger,
	}

	for _, fp := range file.Players {
		player := &types.Player{
			Key:     fp.Key,
			ID:      fp.ID,
			Name:    fp.Name,
			Status:  types.HealthStatus(strings.ToUpper(fp.Status)),
			Team:    fp.Team,
			TeamKey: fp.Team,
		}
		for _, pos := range fp.EligiblePositions {
			player.EligibleSlots = append(player.EligibleSlots, types.ParseSlot(pos))
		}
		p.players = append(p.players, player)
		p.byKey[player.Key] = player
	}

	for teamKey, weeks := range file.Rosters {
		for weekStr, positions := range weeks {
			week, err := strconv.Atoi(weekStr)
			if err != nil {
				return nil, fmt.Errorf("invalid roster week %q for team %s: %w", weekStr, teamKey, err)
			}
			assignment := make(types.Assignment, len(positions))
			for key, slot := range positions {
				if _, ok := p.byKey[key]; !ok {
					return nil, fmt.Errorf("roster of %s references %s: %w", teamKey, key, ErrPlayerNotFound)
				}
				assignment[key] = types.ParseSlot(slot)
			}
			p.rosters[teamKey] = append(p.rosters[teamKey], rosterWeek{week: week, assignment: assignment})
		}
		sort.Slice(p.rosters[teamKey], func(i, j int) bool {
			return p.rosters[teamKey][i].week < p.rosters[teamKey][j].week
		})
	}

	for weekStr, pairs := range file.Matchups {
		week, err := strconv.Atoi(weekStr)
		if err != nil {
			return nil, fmt.Errorf("invalid matchup week %q: %w", weekStr, err)
		}
		p.matchups[week] = pairs
	}

	for key, games := range file.GameLogs {
		entries := make([]types.GameLogEntry, 0, len(games))
		for _, g := range games {
			date, err := time.Parse(dateLayout, g.Date)
			if err != nil {
				return nil, fmt.Errorf("invalid game date %q for %s: %w", g.Date, key, err)
			}
			entries = append(entries, types.GameLogEntry{Date: date, Stats: types.StatLineFromMap(g.Stats)})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
		p.logs[key] = entries
	}

	for team, dates := range file.Schedules {
		games := make([]time.Time, 0, len(dates))
		for _, d := range dates {
			date, err := time.Parse(dateLayout, d)
			if err != nil {
				return nil, fmt.Errorf("invalid schedule date %q for %s: %w", d, team, err)
			}
			games = append(games, date)
		}
		sort.Slice(games, func(i, j int) bool { return games[i].Before(games[j]) })
		p.schedules[team] = games
	}

	p.logger.WithFields(logrus.Fields{
		"league_key": p.leagueKey,
		"teams":      len(p.teams),
		"players":    len(p.players),
	}).Info("Loaded league fixture")

	return p, nil
}

// Calendar returns the league's season calendar
func (p *FixtureProvider) Calendar() types.Calendar {
	return p.calendar
}

// Player looks up a player by key
func (p *FixtureProvider) Player(key string) (*types.Player, error) {
	player, ok := p.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrPlayerNotFound)
	}
	return player, nil
}

// Teams lists the league's teams
func (p *FixtureProvider) Teams(ctx context.Context) ([]Team, error) {
	return append([]Team(nil), p.teams...), nil
}

// Roster returns the team's roster for the week, falling back to the latest
// earlier week on file
func (p *FixtureProvider) Roster(ctx context.Context, teamKey string, week int) (types.Roster, error) {
	weeks, ok := p.rosters[teamKey]
	if !ok || len(weeks) == 0 {
		return types.Roster{}, fmt.Errorf("roster for %s: %w", teamKey, ErrTeamNotFound)
	}

	chosen := weeks[0]
	for _, w := range weeks {
		if w.week <= week {
			chosen = w
		}
	}

	players := make([]*types.Player, 0, len(chosen.assignment))
	for _, player := range p.players {
		if _, ok := chosen.assignment[player.Key]; ok {
			players = append(players, player)
		}
	}
	return types.NewRoster(players, chosen.assignment), nil
}

// FreeAgents returns up to count players not rostered by any team that week,
// in fixture order
func (p *FixtureProvider) FreeAgents(ctx context.Context, week, count int) ([]*types.Player, error) {
	owned := make(map[string]bool)
	for _, team := range p.teams {
		roster, err := p.Roster(ctx, team.Key, week)
		if err != nil {
			continue
		}
		for _, player := range roster.Players {
			owned[player.Key] = true
		}
	}

	agents := make([]*types.Player, 0, count)
	for _, player := range p.players {
		if len(agents) >= count {
			break
		}
		if !owned[player.Key] {
			agents = append(agents, player)
		}
	}
	return agents, nil
}

// TeamByManager finds the team run by the named manager
func (p *FixtureProvider) TeamByManager(ctx context.Context, managerName string) (Team, error) {
	for _, team := range p.teams {
		if strings.EqualFold(team.ManagerName, managerName) {
			return team, nil
		}
	}
	return Team{}, fmt.Errorf("manager %s: %w", managerName, ErrTeamNotFound)
}

// Team looks up a team by key
func (p *FixtureProvider) Team(teamKey string) (Team, error) {
	for _, team := range p.teams {
		if team.Key == teamKey {
			return team, nil
		}
	}
	return Team{}, fmt.Errorf("%s: %w", teamKey, ErrTeamNotFound)
}

// Matchup returns the team's opponent for the week
func (p *FixtureProvider) Matchup(ctx context.Context, teamKey string, week int) (Team, error) {
	for _, pair := range p.matchups[week] {
		switch teamKey {
		case pair[0]:
			return p.Team(pair[1])
		case pair[1]:
			return p.Team(pair[0])
		}
	}
	return Team{}, fmt.Errorf("team %s week %d: %w", teamKey, week, ErrNoMatchup)
}

// GameLogs returns the player's games dated in [from, to)
func (p *FixtureProvider) GameLogs(ctx context.Context, player *types.Player, from, to time.Time) ([]types.GameLogEntry, error) {
	entries := make([]types.GameLogEntry, 0)
	for _, entry := range p.logs[player.Key] {
		if !entry.Date.Before(from) && entry.Date.Before(to) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// Schedule returns the dates the player's real-world team plays in [from, to)
func (p *FixtureProvider) Schedule(ctx context.Context, player *types.Player, from, to time.Time) ([]time.Time, error) {
	games := make([]time.Time, 0)
	for _, date := range p.schedules[player.TeamKey] {
		if !date.Before(from) && date.Before(to) {
			games = append(games, date)
		}
	}
	return games, nil
}

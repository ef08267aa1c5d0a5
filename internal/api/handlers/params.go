package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/h2h-sim/internal/config"
	"github.com/stitts-dev/h2h-sim/internal/providers"
	"github.com/stitts-dev/h2h-sim/internal/simulator"
	"github.com/stitts-dev/h2h-sim/internal/types"
	"github.com/stitts-dev/h2h-sim/pkg/cache"
)

// MatchupParams are the simulation settings shared by every endpoint. Zero
// values take the configured defaults.
type MatchupParams struct {
	Week           int     `json:"week" binding:"required,min=1"`
	NumDays        int     `json:"num_days"`
	NumSamples     int     `json:"num_samples"`
	HalfLife       float64 `json:"half_life"`
	IncludeBench   bool    `json:"include_bench"`
	IncludeInjured bool    `json:"include_injured"`
	Scorer         string  `json:"scorer"`
	Seed           uint64  `json:"seed"`
}

func (p *MatchupParams) applyDefaults(cfg *config.Config) error {
	if p.NumDays == 0 {
		p.NumDays = cfg.DefaultNumDays
	}
	if p.NumSamples == 0 {
		p.NumSamples = cfg.DefaultNumSamples
	}
	if p.HalfLife == 0 {
		p.HalfLife = cfg.DefaultHalfLife
	}
	if p.HalfLife < 0 {
		return fmt.Errorf("%w: half_life must be positive, got %g", errInvalidRequest, p.HalfLife)
	}
	if p.NumSamples > cfg.MaxSamples {
		return fmt.Errorf("%w: num_samples exceeds limit of %d", errInvalidRequest, cfg.MaxSamples)
	}
	if _, err := simulator.ScorerByName(p.Scorer); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

func (p MatchupParams) reducer() simulator.ResultScorer {
	reduce, _ := simulator.ScorerByName(p.Scorer)
	return reduce
}

func (p MatchupParams) options(calendar types.Calendar, workers int, teamA, teamB string) simulator.SimulateOptions {
	return simulator.SimulateOptions{
		Week:           p.Week,
		NumDays:        p.NumDays,
		NumSamples:     p.NumSamples,
		DecayRate:      simulator.DecayRateFromHalfLife(p.HalfLife),
		IncludeBench:   p.IncludeBench,
		IncludeInjured: p.IncludeInjured,
		Calendar:       calendar,
		Seed:           p.Seed,
		Workers:        workers,
		TeamA:          teamA,
		TeamB:          teamB,
	}
}

// leagueCalendar applies configured overrides to the league's calendar
func leagueCalendar(league providers.League, cfg *config.Config) types.Calendar {
	calendar := league.Calendar()
	if start, err := cfg.SeasonStartDate(); err == nil && !start.IsZero() {
		calendar.SeasonStart = start
	}
	if cfg.WeekLengthDays > 0 {
		calendar.WeekLength = cfg.WeekLengthDays
	}
	return calendar
}

// resolveTeam accepts a team key or a manager name
func resolveTeam(ctx context.Context, league providers.League, ref string) (providers.Team, error) {
	teams, err := league.Teams(ctx)
	if err != nil {
		return providers.Team{}, err
	}
	for _, t := range teams {
		if t.Key == ref {
			return t, nil
		}
	}
	return league.TeamByManager(ctx, ref)
}

// resolveOpponent returns the named team, or the scheduled opponent when
// ref is empty
func resolveOpponent(ctx context.Context, league providers.League, team providers.Team, ref string, week int) (providers.Team, error) {
	if ref == "" {
		return league.Matchup(ctx, team.Key, week)
	}
	opponent, err := resolveTeam(ctx, league, ref)
	if err != nil {
		return providers.Team{}, err
	}
	if opponent.Key == team.Key {
		return providers.Team{}, fmt.Errorf("%w: a team cannot play itself", errInvalidRequest)
	}
	return opponent, nil
}

// resolvePlayers maps player keys or names on the roster to keys
func resolvePlayers(roster types.Roster, refs []string) ([]string, error) {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		p, ok := roster.PlayerByKey(ref)
		if !ok {
			p, ok = roster.PlayerByName(ref)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %q", providers.ErrPlayerNotFound, ref)
		}
		keys = append(keys, p.Key)
	}
	return keys, nil
}

// LineupEntry is one row of a rendered lineup
type LineupEntry struct {
	Slot      types.Slot         `json:"slot"`
	PlayerKey string             `json:"player_key"`
	Name      string             `json:"name"`
	Status    types.HealthStatus `json:"status,omitempty"`
}

var slotOrder = func() map[types.Slot]int {
	order := make(map[types.Slot]int)
	for i, slot := range append(append([]types.Slot{}, types.StarterSlots...), types.SlotBN, types.SlotIL) {
		order[slot] = i
	}
	return order
}()

// lineup lists the roster starters first, in slot order, then bench and IL
func lineup(r types.Roster) []LineupEntry {
	entries := make([]LineupEntry, 0, r.Len())
	for _, p := range r.Players {
		entries = append(entries, LineupEntry{
			Slot:      r.SlotOf(p.Key),
			PlayerKey: p.Key,
			Name:      p.Name,
			Status:    p.Status,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return slotOrder[entries[i].Slot] < slotOrder[entries[j].Slot]
	})
	return entries
}

func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}

// cachedLookup loads a cached response for a deterministic request. Requests
// without a seed are never cached, and a nil cache disables caching.
func cachedLookup(ctx context.Context, c *cache.ResultCacheService, log *logrus.Logger, kind string, seed uint64, request, dest interface{}) (string, bool) {
	if c == nil || seed == 0 {
		return "", false
	}
	key, err := cache.Key(request)
	if err != nil {
		log.WithError(err).Warn("Failed to derive cache key")
		return "", false
	}
	if err := c.Get(ctx, kind, key, dest); err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.WithError(err).WithField("kind", kind).Warn("Failed to read result cache")
		}
		return key, false
	}
	return key, true
}

func cacheStore(ctx context.Context, c *cache.ResultCacheService, log *logrus.Logger, kind, key string, result interface{}) {
	if c == nil || key == "" {
		return
	}
	if err := c.Set(ctx, kind, key, result); err != nil {
		log.WithError(err).WithField("kind", kind).Warn("Failed to cache result")
	}
}

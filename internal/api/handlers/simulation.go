package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/h2h-sim/internal/config"
	"github.com/stitts-dev/h2h-sim/internal/providers"
	"github.com/stitts-dev/h2h-sim/internal/simulator"
	"github.com/stitts-dev/h2h-sim/pkg/cache"
)

// SimulationHandler handles head-to-head matchup simulations
type SimulationHandler struct {
	league providers.League
	cache  *cache.ResultCacheService
	config *config.Config
	logger *logrus.Logger
}

// NewSimulationHandler creates a new simulation handler. cache may be nil.
func NewSimulationHandler(
	league providers.League,
	cache *cache.ResultCacheService,
	config *config.Config,
	logger *logrus.Logger,
) *SimulationHandler {
	return &SimulationHandler{
		league: league,
		cache:  cache,
		config: config,
		logger: logger,
	}
}

// SimulationRequest names two teams by key or manager. An empty team_b
// means the team's scheduled opponent for the week.
type SimulationRequest struct {
	TeamA string `json:"team_a" binding:"required"`
	TeamB string `json:"team_b"`
	MatchupParams
}

// SimulationResponse is the outcome of one matchup from team A's side
type SimulationResponse struct {
	ID            string                     `json:"id"`
	TeamA         providers.Team             `json:"team_a"`
	TeamB         providers.Team             `json:"team_b"`
	Week          int                        `json:"week"`
	Result        *simulator.MatchupResult   `json:"result"`
	Categories    []simulator.CategoryReport `json:"categories"`
	LineupA       []LineupEntry              `json:"lineup_a"`
	LineupB       []LineupEntry              `json:"lineup_b"`
	ExecutionTime string                     `json:"execution_time"`
	Cached        bool                       `json:"cached"`
	CreatedAt     time.Time                  `json:"created_at"`
}

// RunSimulation simulates the week's matchup between two rosters
func (h *SimulationHandler) RunSimulation(c *gin.Context) {
	var req SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	if err := req.applyDefaults(h.config); err != nil {
		sendError(c, h.logger, "Invalid simulation parameters", err)
		return
	}
	ctx := c.Request.Context()

	teamA, err := resolveTeam(ctx, h.league, req.TeamA)
	if err != nil {
		sendError(c, h.logger, "Unknown team", err)
		return
	}
	teamB, err := resolveOpponent(ctx, h.league, teamA, req.TeamB, req.Week)
	if err != nil {
		sendError(c, h.logger, "Unknown opponent", err)
		return
	}
	req.TeamA, req.TeamB = teamA.Key, teamB.Key

	var cached SimulationResponse
	cacheKey, hit := cachedLookup(ctx, h.cache, h.logger, cache.KindMatchup, req.Seed, req, &cached)
	if hit {
		cached.Cached = true
		h.logger.WithField("simulation_id", cached.ID).Info("Returning cached simulation result")
		c.JSON(http.StatusOK, cached)
		return
	}

	rosterA, err := h.league.Roster(ctx, teamA.Key, req.Week)
	if err != nil {
		sendError(c, h.logger, "Failed to load roster", err)
		return
	}
	rosterB, err := h.league.Roster(ctx, teamB.Key, req.Week)
	if err != nil {
		sendError(c, h.logger, "Failed to load roster", err)
		return
	}

	start := time.Now()
	opts := req.options(leagueCalendar(h.league, h.config), h.config.SimulationWorkers, teamA.Key, teamB.Key)
	result, err := simulator.Simulate(ctx, h.league, rosterA, rosterB, opts)
	if err != nil {
		sendError(c, h.logger, "Simulation failed", err)
		return
	}

	response := SimulationResponse{
		ID:            uuid.New().String(),
		TeamA:         teamA,
		TeamB:         teamB,
		Week:          req.Week,
		Result:        result,
		Categories:    result.Report(),
		LineupA:       lineup(rosterA),
		LineupB:       lineup(rosterB),
		ExecutionTime: elapsed(start),
		CreatedAt:     time.Now(),
	}
	cacheStore(ctx, h.cache, h.logger, cache.KindMatchup, cacheKey, response)

	h.logger.WithFields(logrus.Fields{
		"simulation_id": response.ID,
		"team_a":        teamA.Key,
		"team_b":        teamB.Key,
		"week":          req.Week,
		"num_samples":   req.NumSamples,
		"winning_prob":  result.WinningProb,
	}).Info("Simulation completed successfully")

	c.JSON(http.StatusOK, response)
}

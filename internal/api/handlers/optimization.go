package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/h2h-sim/internal/config"
	"github.com/stitts-dev/h2h-sim/internal/optimizer"
	"github.com/stitts-dev/h2h-sim/internal/providers"
	"github.com/stitts-dev/h2h-sim/internal/simulator"
	"github.com/stitts-dev/h2h-sim/internal/types"
	"github.com/stitts-dev/h2h-sim/internal/websocket"
	"github.com/stitts-dev/h2h-sim/pkg/cache"
)

// OptimizationHandler handles lineup optimization requests
type OptimizationHandler struct {
	league    providers.League
	optimizer *optimizer.Optimizer
	cache     *cache.ResultCacheService
	wsHub     *websocket.Hub
	config    *config.Config
	logger    *logrus.Logger
}

// NewOptimizationHandler creates a new optimization handler. cache and
// wsHub may be nil.
func NewOptimizationHandler(
	league providers.League,
	cache *cache.ResultCacheService,
	wsHub *websocket.Hub,
	config *config.Config,
	logger *logrus.Logger,
) *OptimizationHandler {
	return &OptimizationHandler{
		league:    league,
		optimizer: optimizer.New(nil),
		cache:     cache,
		wsHub:     wsHub,
		config:    config,
		logger:    logger,
	}
}

// OptimizationRequest asks for the best lineup of one team against an
// opponent. RunID lets a client subscribe to progress before posting.
type OptimizationRequest struct {
	Team           string   `json:"team" binding:"required"`
	Opponent       string   `json:"opponent"`
	RunID          string   `json:"run_id"`
	Strategy       string   `json:"strategy"`
	Iterations     int      `json:"iterations"`
	Forbidden      []string `json:"forbidden_players"`
	ExcludeInjured bool     `json:"exclude_injured"`
	// nil takes the configured schedule, an explicit 0 is honored
	AnnealStart   *float64 `json:"anneal_start"`
	AnnealDecay   *float64 `json:"anneal_decay"`
	NumFreeAgents int      `json:"num_free_agents" binding:"min=0"`
	MatchupParams
}

// StepSummary is one yielded lineup of the trajectory
type StepSummary struct {
	Iteration int      `json:"iteration"`
	Score     float64  `json:"score"`
	Starters  []string `json:"starters"`
}

// StepUpdate is the WebSocket message sent per yielded step
type StepUpdate struct {
	Type      string        `json:"type"`
	RunID     string        `json:"run_id"`
	Strategy  string        `json:"strategy"`
	Iteration int           `json:"iteration"`
	Total     int           `json:"total"`
	Score     float64       `json:"score"`
	Lineup    []LineupEntry `json:"lineup,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// OptimizationResponse carries the whole trajectory and the best lineup
type OptimizationResponse struct {
	RunID         string          `json:"run_id"`
	Strategy      string          `json:"strategy"`
	Team          providers.Team  `json:"team"`
	Opponent      providers.Team  `json:"opponent"`
	Week          int             `json:"week"`
	Total         int             `json:"total"`
	Valid         int             `json:"valid_combinations,omitempty"`
	FreeAgents    []*types.Player `json:"free_agents,omitempty"`
	InitialScore  float64         `json:"initial_score"`
	BestScore     float64         `json:"best_score"`
	BestLineup    []LineupEntry   `json:"best_lineup"`
	BestRoster    types.Roster    `json:"best_roster"`
	Trajectory    []StepSummary   `json:"trajectory"`
	StoppedEarly  string          `json:"stopped_early,omitempty"`
	ExecutionTime string          `json:"execution_time"`
	Cached        bool            `json:"cached"`
}

// OptimizeLineup runs a search synchronously, streaming every step to
// WebSocket subscribers of the run
func (h *OptimizationHandler) OptimizeLineup(c *gin.Context) {
	var req OptimizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	if err := req.applyDefaults(h.config); err != nil {
		sendError(c, h.logger, "Invalid optimization parameters", err)
		return
	}
	if req.Iterations == 0 {
		req.Iterations = h.config.DefaultIterations
	}
	if req.AnnealStart == nil {
		annealStart := h.config.AnnealStart
		req.AnnealStart = &annealStart
	}
	if req.AnnealDecay == nil {
		annealDecay := h.config.AnnealDecay
		req.AnnealDecay = &annealDecay
	}
	ctx := c.Request.Context()

	team, err := resolveTeam(ctx, h.league, req.Team)
	if err != nil {
		sendError(c, h.logger, "Unknown team", err)
		return
	}
	opponent, err := resolveOpponent(ctx, h.league, team, req.Opponent, req.Week)
	if err != nil {
		sendError(c, h.logger, "Unknown opponent", err)
		return
	}
	req.Team, req.Opponent = team.Key, opponent.Key

	var cached OptimizationResponse
	cacheKey, hit := cachedLookup(ctx, h.cache, h.logger, cache.KindOptimization, req.Seed, req, &cached)
	if hit {
		cached.Cached = true
		h.logger.WithField("run_id", cached.RunID).Info("Returning cached optimization result")
		c.JSON(http.StatusOK, cached)
		return
	}

	roster, freeAgents, err := h.candidateRoster(ctx, team, req)
	if err != nil {
		sendError(c, h.logger, "Failed to load roster", err)
		return
	}
	opponentRoster, err := h.league.Roster(ctx, opponent.Key, req.Week)
	if err != nil {
		sendError(c, h.logger, "Failed to load roster", err)
		return
	}
	forbidden, err := resolvePlayers(roster, req.Forbidden)
	if err != nil {
		sendError(c, h.logger, "Unknown forbidden player", err)
		return
	}

	start := time.Now()
	opts := req.options(leagueCalendar(h.league, h.config), h.config.SimulationWorkers, team.Key, opponent.Key)
	scorer, err := simulator.NewRosterScorer(ctx, h.league, roster, opponentRoster, opts, req.reducer())
	if err != nil {
		sendError(c, h.logger, "Failed to prepare scoring", err)
		return
	}

	run, err := h.optimizer.Optimize(ctx, roster, scorer.Score, optimizer.Config{
		Strategy:       optimizer.Strategy(req.Strategy),
		Iterations:     req.Iterations,
		Forbidden:      forbidden,
		ExcludeInjured: req.ExcludeInjured,
		AnnealStart:    *req.AnnealStart,
		AnnealDecay:    *req.AnnealDecay,
		Workers:        h.config.OptimizationWorkers,
		Seed:           req.Seed,
	})
	if err != nil {
		sendError(c, h.logger, "Invalid optimization request", err)
		return
	}

	runID := req.RunID
	if runID == "" {
		runID = run.ID
	}
	response := OptimizationResponse{
		RunID:      runID,
		Strategy:   string(run.Strategy),
		Team:       team,
		Opponent:   opponent,
		Week:       req.Week,
		Total:      run.Total,
		FreeAgents: freeAgents,
	}

	var best optimizer.Step
	for step := range run.Steps {
		if len(response.Trajectory) == 0 {
			response.InitialScore = step.Score
		}
		best = step
		response.Trajectory = append(response.Trajectory, StepSummary{
			Iteration: step.Iteration,
			Score:     step.Score,
			Starters:  starterKeys(step.Roster),
		})
		h.broadcast(runID, StepUpdate{
			Type:      "optimization_step",
			RunID:     runID,
			Strategy:  response.Strategy,
			Iteration: step.Iteration,
			Total:     run.Total,
			Score:     step.Score,
			Lineup:    lineup(step.Roster),
			Timestamp: time.Now(),
		})
	}

	if err := run.Err(); err != nil {
		if len(response.Trajectory) == 0 || ctx.Err() != nil {
			sendError(c, h.logger, "Optimization failed", err)
			return
		}
		// the search ran out of moves, the best lineup so far still stands
		response.StoppedEarly = err.Error()
	}

	response.Valid = run.Valid()
	response.BestScore = best.Score
	response.BestRoster = best.Roster
	response.BestLineup = lineup(best.Roster)
	response.ExecutionTime = elapsed(start)

	h.broadcast(runID, StepUpdate{
		Type:      "optimization_complete",
		RunID:     runID,
		Strategy:  response.Strategy,
		Iteration: best.Iteration,
		Total:     run.Total,
		Score:     best.Score,
		Timestamp: time.Now(),
	})
	cacheStore(ctx, h.cache, h.logger, cache.KindOptimization, cacheKey, response)

	h.logger.WithFields(logrus.Fields{
		"run_id":      runID,
		"strategy":    response.Strategy,
		"team":        team.Key,
		"opponent":    opponent.Key,
		"steps":       len(response.Trajectory),
		"best_score":  response.BestScore,
		"free_agents": len(freeAgents),
	}).Info("Optimization completed successfully")

	c.JSON(http.StatusOK, response)
}

// candidateRoster loads the team's roster with the requested number of free
// agents added to the bench
func (h *OptimizationHandler) candidateRoster(ctx context.Context, team providers.Team, req OptimizationRequest) (types.Roster, []*types.Player, error) {
	roster, err := h.league.Roster(ctx, team.Key, req.Week)
	if err != nil {
		return roster, nil, err
	}
	if req.NumFreeAgents == 0 {
		return roster, nil, nil
	}

	agents, err := h.league.FreeAgents(ctx, req.Week, req.NumFreeAgents)
	if err != nil {
		return roster, nil, err
	}
	for _, agent := range agents {
		roster = roster.Add(agent, types.SlotBN)
	}
	return roster, agents, nil
}

func (h *OptimizationHandler) broadcast(runID string, update StepUpdate) {
	if h.wsHub != nil {
		h.wsHub.BroadcastToRun(runID, update)
	}
}

func starterKeys(r types.Roster) []string {
	starters := r.Starters()
	keys := make([]string, len(starters))
	for i, p := range starters {
		keys[i] = p.Key
	}
	return keys
}

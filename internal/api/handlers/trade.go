package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/h2h-sim/internal/config"
	"github.com/stitts-dev/h2h-sim/internal/providers"
	"github.com/stitts-dev/h2h-sim/internal/trade"
	"github.com/stitts-dev/h2h-sim/pkg/cache"
)

// TradeHandler evaluates proposed trades
type TradeHandler struct {
	league    providers.League
	evaluator *trade.Evaluator
	cache     *cache.ResultCacheService
	config    *config.Config
	logger    *logrus.Logger
}

// NewTradeHandler creates a new trade handler. cache may be nil.
func NewTradeHandler(
	league providers.League,
	cache *cache.ResultCacheService,
	config *config.Config,
	logger *logrus.Logger,
) *TradeHandler {
	return &TradeHandler{
		league:    league,
		evaluator: trade.NewEvaluator(league),
		cache:     cache,
		config:    config,
		logger:    logger,
	}
}

// TradeRequest names both teams by key or manager and the players each
// side gives up, by key or name
type TradeRequest struct {
	TeamA      string   `json:"team_a" binding:"required"`
	TeamB      string   `json:"team_b" binding:"required"`
	PlayersA   []string `json:"players_a"`
	PlayersB   []string `json:"players_b"`
	Opponents  []string `json:"opponents"`
	Iterations int      `json:"iterations"`
	MatchupParams
}

// TradeResponse wraps the evaluation with request bookkeeping
type TradeResponse struct {
	*trade.Result
	ExecutionTime string `json:"execution_time"`
	Cached        bool   `json:"cached"`
}

// EvaluateTrade compares both teams' best lineups before and after a trade
func (h *TradeHandler) EvaluateTrade(c *gin.Context) {
	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	if err := req.applyDefaults(h.config); err != nil {
		sendError(c, h.logger, "Invalid trade parameters", err)
		return
	}
	if req.Iterations == 0 {
		req.Iterations = h.config.DefaultIterations
	}
	ctx := c.Request.Context()

	teamA, err := resolveTeam(ctx, h.league, req.TeamA)
	if err != nil {
		sendError(c, h.logger, "Unknown team", err)
		return
	}
	teamB, err := resolveTeam(ctx, h.league, req.TeamB)
	if err != nil {
		sendError(c, h.logger, "Unknown team", err)
		return
	}
	opponents := make([]string, 0, len(req.Opponents))
	for _, ref := range req.Opponents {
		t, err := resolveTeam(ctx, h.league, ref)
		if err != nil {
			sendError(c, h.logger, "Unknown opponent", err)
			return
		}
		opponents = append(opponents, t.Key)
	}
	req.TeamA, req.TeamB, req.Opponents = teamA.Key, teamB.Key, opponents

	var cached TradeResponse
	cacheKey, hit := cachedLookup(ctx, h.cache, h.logger, cache.KindTrade, req.Seed, req, &cached)
	if hit {
		cached.Cached = true
		c.JSON(http.StatusOK, cached)
		return
	}

	start := time.Now()
	result, err := h.evaluator.Evaluate(ctx, trade.Request{
		TeamA:      teamA.Key,
		TeamB:      teamB.Key,
		PlayersA:   req.PlayersA,
		PlayersB:   req.PlayersB,
		Opponents:  opponents,
		Iterations: req.Iterations,
		Options:    req.options(leagueCalendar(h.league, h.config), h.config.SimulationWorkers, teamA.Key, teamB.Key),
		Reduce:     req.reducer(),
	})
	if err != nil {
		sendError(c, h.logger, "Trade evaluation failed", err)
		return
	}

	response := TradeResponse{Result: result, ExecutionTime: elapsed(start)}
	cacheStore(ctx, h.cache, h.logger, cache.KindTrade, cacheKey, response)

	c.JSON(http.StatusOK, response)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/h2h-sim/internal/optimizer"
	"github.com/stitts-dev/h2h-sim/internal/providers"
	"github.com/stitts-dev/h2h-sim/internal/simulator"
	"github.com/stitts-dev/h2h-sim/internal/trade"
)

// Common error codes
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

var errInvalidRequest = errors.New("invalid request")

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

var validationErrors = []error{
	errInvalidRequest,
	simulator.ErrInvalidSamples,
	simulator.ErrInvalidOptions,
	optimizer.ErrEmptyRoster,
	optimizer.ErrInvalidIterations,
	optimizer.ErrUnknownStrategy,
	optimizer.ErrInvalidSchedule,
	optimizer.ErrIllegalRoster,
	trade.ErrEmptyTrade,
	trade.ErrSameTeam,
}

var notFoundErrors = []error{
	providers.ErrPlayerNotFound,
	providers.ErrTeamNotFound,
	providers.ErrNoMatchup,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// sendBindError rejects a body that failed to decode or bind
func sendBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "Invalid request format",
		Code:  ErrCodeInvalidRequest,
		Details: map[string]string{
			"validation_error": err.Error(),
		},
	})
}

// sendError maps err onto 400, 404 or 500
func sendError(c *gin.Context, log *logrus.Logger, message string, err error) {
	status, code := http.StatusInternalServerError, ErrCodeInternal
	switch {
	case isAny(err, validationErrors):
		status, code = http.StatusBadRequest, ErrCodeValidation
	case isAny(err, notFoundErrors):
		status, code = http.StatusNotFound, ErrCodeNotFound
	}

	entry := log.WithError(err).WithField("status", status)
	if status == http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}

	c.JSON(status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: map[string]string{"error": err.Error()},
	})
}

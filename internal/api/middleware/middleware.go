package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing the caller's if given
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger creates a structured logger middleware for requests
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"service":   "h2h-sim",
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(startTime),
			"client_ip": c.ClientIP(),
		})
		if id, exists := c.Get("request_id"); exists {
			entry = entry.WithField("request_id", id)
		}
		if c.Request.URL.RawQuery != "" {
			entry = entry.WithField("query", c.Request.URL.RawQuery)
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Internal Server Error")
		case status >= 400:
			entry.Warn("Client Error")
		default:
			entry.Info("Request completed")
		}
	}
}

// CORS allows the configured origins. "*" allows any origin.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimSpace(o)] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			c.Header("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RateLimit throttles each client IP to rps requests per second with the
// given burst. Rejected requests get 429 with a Retry-After hint.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[ip] = l
		}
		return l
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(1/rps))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
				"code":  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}

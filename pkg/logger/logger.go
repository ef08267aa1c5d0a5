package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// InitLogger initializes the structured logger. An empty level falls back to
// LOG_LEVEL, then to debug in development and info otherwise.
func InitLogger(logLevel string, isDevelopment bool) *logrus.Logger {
	log := logrus.New()

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			if isDevelopment {
				logLevel = "debug"
			} else {
				logLevel = "info"
			}
		}
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", logLevel).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if !isDevelopment || strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	log.SetOutput(os.Stdout)
	Logger = log

	return log
}

// GetLogger returns the global logger instance
func GetLogger() *logrus.Logger {
	if Logger == nil {
		return InitLogger("info", false)
	}
	return Logger
}

// WithService creates a logger with service context
func WithService(serviceName string) *logrus.Entry {
	return GetLogger().WithField("service", serviceName)
}

// WithRunContext tags entries with an optimizer run
func WithRunContext(runID, strategy string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"run_id":   runID,
		"strategy": strategy,
	})
}

// WithMatchupContext tags entries with the two teams and the week simulated
func WithMatchupContext(teamA, teamB string, week int) *logrus.Entry {
	fields := logrus.Fields{"week": week}
	if teamA != "" {
		fields["team_a"] = teamA
	}
	if teamB != "" {
		fields["team_b"] = teamB
	}
	return GetLogger().WithFields(fields)
}

package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/h2h-sim/internal/types"
)

// ReloadingLeague serves a fixture file and swaps in a fresh snapshot on a
// cron schedule. A failed reload keeps the previous snapshot.
type ReloadingLeague struct {
	path   string
	logger *logrus.Logger
	cron   *cron.Cron

	mu         sync.RWMutex
	current    *FixtureProvider
	lastReload time.Time
	lastErr    error
}

// NewReloadingLeague loads path once. The first load must succeed.
func NewReloadingLeague(path string, logger *logrus.Logger) (*ReloadingLeague, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	provider, err := LoadFixture(path, logger)
	if err != nil {
		return nil, err
	}

	return &ReloadingLeague{
		path:       path,
		logger:     logger,
		cron:       cron.New(cron.WithLogger(cron.VerbosePrintfLogger(logger))),
		current:    provider,
		lastReload: time.Now(),
	}, nil
}

// Reload re-reads the fixture file
func (l *ReloadingLeague) Reload() error {
	start := time.Now()
	provider, err := LoadFixture(l.path, l.logger)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastErr = err
	if err != nil {
		l.logger.WithFields(logrus.Fields{
			"component": "league_reload",
			"path":      l.path,
		}).WithError(err).Error("League reload failed, keeping previous snapshot")
		return err
	}

	l.current = provider
	l.lastReload = time.Now()
	l.logger.WithFields(logrus.Fields{
		"component": "league_reload",
		"path":      l.path,
		"duration":  time.Since(start),
	}).Info("League snapshot reloaded")
	return nil
}

// ScheduleReload starts reloading on a standard five-field cron expression
func (l *ReloadingLeague) ScheduleReload(schedule string) error {
	entryID, err := l.cron.AddFunc(schedule, func() {
		_ = l.Reload()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule league reload %q: %w", schedule, err)
	}
	l.cron.Start()

	l.logger.WithFields(logrus.Fields{
		"component": "league_reload",
		"schedule":  schedule,
		"entry_id":  entryID,
		"next_run":  l.cron.Entry(entryID).Next,
	}).Info("Scheduled league reload")
	return nil
}

// Stop halts scheduled reloads and waits for a running one to finish
func (l *ReloadingLeague) Stop() {
	<-l.cron.Stop().Done()
}

// GetStatus reports the reload state
func (l *ReloadingLeague) GetStatus() map[string]interface{} {
	l.mu.RLock()
	defer l.mu.RUnlock()

	status := map[string]interface{}{
		"path":         l.path,
		"last_reload":  l.lastReload,
		"cron_entries": len(l.cron.Entries()),
	}
	if l.lastErr != nil {
		status["last_error"] = l.lastErr.Error()
	}
	return status
}

func (l *ReloadingLeague) snapshot() *FixtureProvider {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

func (l *ReloadingLeague) GameLogs(ctx context.Context, player *types.Player, from, to time.Time) ([]types.GameLogEntry, error) {
	return l.snapshot().GameLogs(ctx, player, from, to)
}

func (l *ReloadingLeague) Schedule(ctx context.Context, player *types.Player, from, to time.Time) ([]time.Time, error) {
	return l.snapshot().Schedule(ctx, player, from, to)
}

func (l *ReloadingLeague) Teams(ctx context.Context) ([]Team, error) {
	return l.snapshot().Teams(ctx)
}

func (l *ReloadingLeague) Roster(ctx context.Context, teamKey string, week int) (types.Roster, error) {
	return l.snapshot().Roster(ctx, teamKey, week)
}

func (l *ReloadingLeague) FreeAgents(ctx context.Context, week, count int) ([]*types.Player, error) {
	return l.snapshot().FreeAgents(ctx, week, count)
}

func (l *ReloadingLeague) TeamByManager(ctx context.Context, managerName string) (Team, error) {
	return l.snapshot().TeamByManager(ctx, managerName)
}

func (l *ReloadingLeague) Matchup(ctx context.Context, teamKey string, week int) (Team, error) {
	return l.snapshot().Matchup(ctx, teamKey, week)
}

func (l *ReloadingLeague) Calendar() types.Calendar {
	return l.snapshot().Calendar()
}

var _ League = (*ReloadingLeague)(nil)

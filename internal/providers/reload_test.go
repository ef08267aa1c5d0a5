package providers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/league.json")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "league.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newReloadingLeague(t *testing.T, path string) *ReloadingLeague {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	l, err := NewReloadingLeague(path, logger)
	require.NoError(t, err)
	t.Cleanup(l.Stop)
	return l
}

func TestReloadingLeagueSwapsSnapshot(t *testing.T) {
	path := copyFixture(t)
	l := newReloadingLeague(t, path)
	ctx := context.Background()

	team, err := l.TeamByManager(ctx, "avery")
	require.NoError(t, err)
	assert.Equal(t, "Pick and Roll Call", team.Name)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	renamed := strings.Replace(string(data), "Pick and Roll Call", "Zone Defense", 1)
	require.NoError(t, os.WriteFile(path, []byte(renamed), 0o644))

	require.NoError(t, l.Reload())
	team, err = l.TeamByManager(ctx, "avery")
	require.NoError(t, err)
	assert.Equal(t, "Zone Defense", team.Name)
	assert.NotContains(t, l.GetStatus(), "last_error")
}

func TestReloadingLeagueKeepsSnapshotOnError(t *testing.T) {
	path := copyFixture(t)
	l := newReloadingLeague(t, path)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	assert.Error(t, l.Reload())

	teams, err := l.Teams(ctx)
	require.NoError(t, err)
	assert.Len(t, teams, 2)
	assert.Contains(t, l.GetStatus(), "last_error")

	opponent, err := l.Matchup(ctx, teams[0].Key, 1)
	require.NoError(t, err)
	assert.Equal(t, teams[1].Key, opponent.Key)
}

func TestNewReloadingLeagueRequiresFixture(t *testing.T) {
	_, err := NewReloadingLeague(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}

func TestScheduleReload(t *testing.T) {
	l := newReloadingLeague(t, copyFixture(t))

	assert.Error(t, l.ScheduleReload("every tuesday"))
	require.NoError(t, l.ScheduleReload("0 6 * * *"))
	assert.Equal(t, 1, l.GetStatus()["cron_entries"])
}

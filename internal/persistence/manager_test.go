package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLaysOutTheGameDirectory(t *testing.T) {
	m := NewGameManager(t.TempDir())

	logPath, err := m.Create("tournament-round-1")
	require.NoError(t, err)
	assert.Equal(t, m.LogPath("tournament-round-1"), logPath)

	info, err := os.Stat(m.GamePath("tournament-round-1"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	info, err = os.Stat(m.DataPath("tournament-round-1"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCreateRefusesToOverwrite(t *testing.T) {
	m := NewGameManager(t.TempDir())
	_, err := m.Create("rematch")
	require.NoError(t, err)

	_, err = m.Create("rematch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `game "rematch" already exists`)
}

func TestLoad(t *testing.T) {
	m := NewGameManager(t.TempDir())
	_, err := m.Create("league-night")
	require.NoError(t, err)

	logPath, err := m.Load("league-night")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(m.GamePath("league-night"), "log.jsonl"), logPath)

	_, err = m.Load("never-played")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListReturnsSortedGameNames(t *testing.T) {
	m := NewGameManager(t.TempDir())
	for _, name := range []string{"zeta", "alpha", "midway"} {
		_, err := m.Create(name)
		require.NoError(t, err)
	}
	// Stray files in the games dir are not games.
	require.NoError(t, os.WriteFile(filepath.Join(m.GamesDir, "notes.txt"), []byte("x"), 0o644))

	names, err := m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "midway", "zeta"}, names)
}

func TestListMissingGamesDir(t *testing.T) {
	m := NewGameManager(filepath.Join(t.TempDir(), "does-not-exist"))
	names, err := m.List()
	require.NoError(t, err)
	assert.Nil(t, names)
}

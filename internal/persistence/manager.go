// Package persistence organizes the on-disk layout of tracked games. Each
// game lives in its own directory with an append-only event log and an
// optional data overlay for custom missions and secondaries.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// GameManager bridges configuration settings with local file organization.
type GameManager struct {
	GamesDir string
}

// NewGameManager returns a manager rooted at the configured games directory.
func NewGameManager(gamesDir string) *GameManager {
	return &GameManager{GamesDir: gamesDir}
}

// GamePath produces the directory path for a named game.
func (m *GameManager) GamePath(name string) string {
	return filepath.Join(m.GamesDir, name)
}

// LogPath returns the path to the event log file for a game.
func (m *GameManager) LogPath(name string) string {
	return filepath.Join(m.GamePath(name), "log.jsonl")
}

// DataPath returns the game's data overlay directory, which may hold
// missions/, secondaries/, and datasheets/ subdirectories.
func (m *GameManager) DataPath(name string) string {
	return filepath.Join(m.GamePath(name), "data")
}

// Create generates the standard directory structure for a new game and
// returns the event log path. Creating over an existing game is an error;
// finished games are archived, never overwritten.
func (m *GameManager) Create(name string) (string, error) {
	path := m.GamePath(name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("game %q already exists at %s", name, path)
	}

	dirs := []string{
		path,
		m.DataPath(name),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return m.LogPath(name), nil
}

// Load verifies the game directory exists and returns the event log path.
func (m *GameManager) Load(name string) (string, error) {
	path := m.GamePath(name)
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return "", fmt.Errorf("game %q not found at %s", name, path)
	}

	return m.LogPath(name), nil
}

// List returns the names of all tracked games, sorted.
func (m *GameManager) List() ([]string, error) {
	entries, err := os.ReadDir(m.GamesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read games directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

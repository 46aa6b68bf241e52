package briefing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/data"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
)

// fakeSource records which fetches ran so tests can assert that each tier
// loads exactly what it promises.
type fakeSource struct {
	mu      sync.Mutex
	fetched []string

	snapshotErr error
	unitsErr    error
}

func (f *fakeSource) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, name)
}

func (f *fakeSource) ran(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.fetched {
		if n == name {
			return true
		}
	}
	return false
}

func (f *fakeSource) Snapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	f.record("snapshot")
	if f.snapshotErr != nil {
		return Snapshot{}, f.snapshotErr
	}
	return Snapshot{SessionID: sessionID, Round: 2, Phase: game.PhaseShooting,
		PlayerTurn: game.Attacker, AttackerCP: 1, DefenderVP: 10}, nil
}

func (f *fakeSource) Units(ctx context.Context, sessionID string) ([]UnitHealth, error) {
	f.record("units")
	if f.unitsErr != nil {
		return nil, f.unitsErr
	}
	return []UnitHealth{{Player: game.Attacker, ID: "u1", Name: "Intercessors", Wounds: 6, MaxWounds: 10}}, nil
}

func (f *fakeSource) UnitNames(ctx context.Context, sessionID string) ([]string, error) {
	f.record("unit_names")
	return []string{"Intercessors"}, nil
}

func (f *fakeSource) Objectives(ctx context.Context, sessionID string) ([]game.ObjectiveMarker, error) {
	f.record("objectives")
	return []game.ObjectiveMarker{{ID: "obj-1", ControlledBy: game.Defender}}, nil
}

func (f *fakeSource) Secondaries(ctx context.Context, sessionID string) ([]SecondaryDetail, error) {
	f.record("secondaries")
	return []SecondaryDetail{{Player: game.Attacker, Name: "Cleanse", VPScored: 4, MaxVP: 20}}, nil
}

func (f *fakeSource) Transcripts(ctx context.Context, sessionID string, beforeSequence, limit int) ([]game.Transcript, error) {
	f.record("transcripts")
	return []game.Transcript{{Sequence: 1, Text: "game start"}}, nil
}

func (f *fakeSource) Datasheets(ctx context.Context, sessionID string) ([]data.Datasheet, string, error) {
	f.record("datasheets")
	return []data.Datasheet{{ID: "intercessors", Name: "Intercessors", Wounds: 2}}, "rules digest", nil
}

func TestBuildMinimalLoadsOnlyTheSnapshot(t *testing.T) {
	src := &fakeSource{}
	b := NewBuilder(src, nil)

	bundle, err := b.Build(context.Background(), "g", TierMinimal, 0)
	require.NoError(t, err)

	assert.Equal(t, TierMinimal, bundle.Tier)
	assert.Equal(t, "g", bundle.State.SessionID)
	assert.Empty(t, bundle.Units)
	assert.Empty(t, bundle.UnitNames)
	assert.Empty(t, bundle.Objectives)
	assert.Empty(t, bundle.Secondaries)
	assert.Empty(t, bundle.Transcripts)
	assert.Empty(t, bundle.Datasheets)

	assert.Equal(t, []string{"snapshot"}, src.fetched)
}

func TestBuildTierFieldMatrix(t *testing.T) {
	tests := []struct {
		tier    Tier
		fetches []string
	}{
		{TierMinimal, []string{"snapshot"}},
		{TierUnitsOnly, []string{"snapshot", "units", "transcripts"}},
		{TierUnitNames, []string{"snapshot", "unit_names"}},
		{TierObjectives, []string{"snapshot", "objectives", "unit_names"}},
		{TierSecondaries, []string{"snapshot", "secondaries", "unit_names"}},
		{TierFull, []string{"snapshot", "units", "objectives", "secondaries", "transcripts", "datasheets"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			src := &fakeSource{}
			b := NewBuilder(src, nil)

			_, err := b.Build(context.Background(), "g", tt.tier, 0)
			require.NoError(t, err)

			assert.ElementsMatch(t, tt.fetches, src.fetched)
		})
	}
}

func TestBuildFullIsASupersetBundle(t *testing.T) {
	src := &fakeSource{}
	b := NewBuilder(src, nil)

	bundle, err := b.Build(context.Background(), "g", TierFull, 0)
	require.NoError(t, err)

	assert.NotEmpty(t, bundle.Units)
	assert.NotEmpty(t, bundle.UnitNames)
	assert.NotEmpty(t, bundle.Objectives)
	assert.NotEmpty(t, bundle.Secondaries)
	assert.NotEmpty(t, bundle.Transcripts)
	assert.NotEmpty(t, bundle.Datasheets)
	assert.Equal(t, "rules digest", bundle.RulesText)

	// Full derives unit names from the roster instead of a second fetch.
	assert.Equal(t, []string{"Intercessors"}, bundle.UnitNames)
	assert.False(t, src.ran("unit_names"))
}

func TestBuildRejectsUnknownTier(t *testing.T) {
	b := NewBuilder(&fakeSource{}, nil)
	_, err := b.Build(context.Background(), "g", Tier("everything"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown context tier")
}

func TestBuildPropagatesSourceErrors(t *testing.T) {
	src := &fakeSource{snapshotErr: errors.New("log unreadable")}
	b := NewBuilder(src, nil)

	_, err := b.Build(context.Background(), "g", TierMinimal, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session snapshot")

	src = &fakeSource{unitsErr: errors.New("roster unreadable")}
	_, err = NewBuilder(src, nil).Build(context.Background(), "g", TierUnitsOnly, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit roster")
}

func TestTierRanking(t *testing.T) {
	assert.Equal(t, 0, Rank(TierMinimal))
	assert.Equal(t, 5, Rank(TierFull))
	assert.Equal(t, -1, Rank("bogus"))
	assert.True(t, Valid(TierObjectives))
	assert.False(t, Valid("bogus"))
}

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
)

func TestFileStoreRoundTripsEveryEventType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	defer store.Close()

	events := []game.Event{
		&game.GameStartedEvent{SessionID: "s", FirstPlayer: game.Attacker,
			Mission: "take-and-hold", AttackerMode: game.ModeFixed, DefenderMode: game.ModeTactical},
		&game.PhaseChangedEvent{Phase: game.PhaseMovement},
		&game.TurnAdvancedEvent{Round: 1, PlayerTurn: game.Defender, Phase: game.PhaseCommand},
		&game.CPGainedEvent{Txn: game.CPTransaction{ID: "t1", Player: game.Attacker,
			Type: game.CPGain, Amount: 1, Reason: "turn start", Round: 1,
			Phase: game.PhaseCommand, Turn: game.Attacker}},
		&game.CPSpentEvent{Txn: game.CPTransaction{ID: "t2", Player: game.Attacker,
			Type: game.CPSpend, Amount: 1, Reason: "stratagem", Stratagem: "Smokescreen",
			Round: 1, Phase: game.PhaseShooting, Turn: game.Defender}},
		&game.SecondaryDrawnEvent{Player: game.Attacker, Name: "Cleanse", Round: 1},
		&game.SecondaryScoredEvent{Player: game.Attacker, Name: "Cleanse", VP: 2,
			Round: 1, Phase: game.PhaseCommand, Turn: game.Attacker, Detail: "one marker"},
		&game.SecondaryDiscardedEvent{Player: game.Attacker, Name: "Cleanse", Round: 1},
		&game.PrimaryScoredEvent{Player: game.Defender, VP: 10, Round: 2, Held: 2},
		&game.UnitAddedEvent{Player: game.Defender, Unit: game.Unit{
			ID: "boyz-1", Name: "Boyz", Wounds: 10, MaxWounds: 10, Models: 10,
			StartModels: 10, Keywords: []string{"INFANTRY"}}},
		&game.UnitDamagedEvent{Player: game.Defender, UnitID: "boyz-1", Damage: 3, Source: "bolters"},
		&game.UnitDestroyedEvent{Player: game.Defender, UnitID: "boyz-1"},
		&game.ObjectiveControlChangedEvent{MarkerID: "obj-1", ControlledBy: game.Attacker},
		&game.MissionSetEvent{Mission: "supply-drop"},
		&game.MissionModeSetEvent{Player: game.Defender, Mode: game.ModeFixed},
		&game.VPCorrectedEvent{Player: game.Attacker, Delta: -2, Reason: "double count"},
		&game.FirstPlayerSetEvent{Player: game.Defender},
		&game.TranscriptLoggedEvent{Transcript: game.Transcript{
			Sequence: 1, Text: "orks hold objective one", Round: 1,
			Phase: game.PhaseCommand, Turn: game.Attacker}},
		&game.NoteEvent{Text: "terrain blocks line of sight to the ruins"},
		&game.GameEndedEvent{Winner: game.Attacker},
	}
	for _, evt := range events {
		require.NoError(t, store.Append(evt), evt.Type())
	}

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, len(events))
	for i, evt := range events {
		assert.Equal(t, evt, loaded[i], evt.Type())
	}
}

func TestFileStoreLoadSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(&game.NoteEvent{Text: "first"}))
	require.NoError(t, store.Close())

	store, err = NewFileStore(path)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Append(&game.NoteEvent{Text: "second"}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "first", loaded[0].(*game.NoteEvent).Text)
	assert.Equal(t, "second", loaded[1].(*game.NoteEvent).Text)
}

func TestFileStoreEmptyLog(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "log.jsonl"))
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStoreRejectsUnknownEventType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"WarpstormEvent","data":{}}`+"\n"), 0o644))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectorReplayMatchesLiveState(t *testing.T) {
	events := []Event{
		&GameStartedEvent{SessionID: "replay", FirstPlayer: Attacker, Mission: "take-and-hold",
			AttackerMode: ModeFixed, DefenderMode: ModeTactical},
		&CPGainedEvent{Txn: gainTxn(Attacker, 1, 1, Attacker)},
		&CPGainedEvent{Txn: gainTxn(Defender, 1, 1, Attacker)},
		&SecondaryDrawnEvent{Player: Attacker, Name: "Engage on All Fronts", Round: 1},
		&SecondaryScoredEvent{Player: Attacker, Name: "Engage on All Fronts", VP: 2,
			Round: 1, Phase: PhaseShooting, Turn: Attacker},
		&UnitAddedEvent{Player: Defender, Unit: Unit{ID: "boyz-1", Name: "Boyz", Wounds: 10, MaxWounds: 10, Models: 10}},
		&UnitDamagedEvent{Player: Defender, UnitID: "boyz-1", Damage: 3},
		&ObjectiveControlChangedEvent{MarkerID: "obj-1", ControlledBy: Attacker},
		&TurnAdvancedEvent{Round: 1, PlayerTurn: Defender, Phase: PhaseCommand},
		&CPSpentEvent{Txn: spendTxn(Defender, 1)},
		&PrimaryScoredEvent{Player: Attacker, VP: 5, Round: 1, Held: 1},
	}

	// Live path: apply as they happen.
	live := NewGameSession("")
	for _, evt := range events {
		require.NoError(t, evt.Apply(live))
	}

	// Replay path.
	rebuilt, err := NewProjector().Build(events)
	require.NoError(t, err)

	assert.Equal(t, live, rebuilt)
	assert.Equal(t, 7, rebuilt.State(Defender).Units["boyz-1"].Wounds)
	assert.Equal(t, 7, rebuilt.Attacker.VP)
	assert.Equal(t, 1, rebuilt.Attacker.CP)
	assert.Equal(t, 0, rebuilt.Defender.CP)
	assert.True(t, rebuilt.LedgerBalance(Defender) == rebuilt.Defender.CP)
}

func TestProjectorStopsOnInvalidEvent(t *testing.T) {
	events := []Event{
		&CPSpentEvent{Txn: spendTxn(Attacker, 5)}, // nothing to spend yet
	}
	_, err := NewProjector().Build(events)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot spend")
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTurnHandsOverWithinRound(t *testing.T) {
	s := NewGameSession("t")
	s.Round = 2
	s.FirstPlayer = Attacker
	s.PlayerTurn = Attacker
	s.Phase = PhaseFight

	next := NextTurn(s)
	assert.Equal(t, 2, next.Round)
	assert.Equal(t, Defender, next.PlayerTurn)
	assert.Equal(t, PhaseCommand, next.Phase)
}

func TestNextTurnAdvancesRoundAfterSecondPlayer(t *testing.T) {
	s := NewGameSession("t")
	s.Round = 2
	s.FirstPlayer = Attacker
	s.PlayerTurn = Defender

	next := NextTurn(s)
	assert.Equal(t, 3, next.Round)
	assert.Equal(t, Attacker, next.PlayerTurn)
	assert.Equal(t, PhaseCommand, next.Phase)
}

func TestNextTurnRespectsDefenderFirst(t *testing.T) {
	s := NewGameSession("t")
	s.FirstPlayer = Defender
	s.PlayerTurn = Defender

	next := NextTurn(s)
	assert.Equal(t, 1, next.Round)
	assert.Equal(t, Attacker, next.PlayerTurn)
}

func TestPreviousTurnIsInverseOfNext(t *testing.T) {
	s := NewGameSession("t")
	s.Round = 3
	s.FirstPlayer = Attacker
	s.PlayerTurn = Attacker

	next := NextTurn(s)
	s.Round = next.Round
	s.PlayerTurn = next.PlayerTurn
	s.Phase = next.Phase

	prev := PreviousTurn(s)
	assert.Equal(t, 3, prev.Round)
	assert.Equal(t, Attacker, prev.PlayerTurn)
}

func TestPreviousTurnCrossesRoundBoundary(t *testing.T) {
	s := NewGameSession("t")
	s.Round = 3
	s.FirstPlayer = Attacker
	s.PlayerTurn = Attacker

	prev := PreviousTurn(s)
	assert.Equal(t, 2, prev.Round)
	assert.Equal(t, Defender, prev.PlayerTurn)
}

func TestPreviousTurnFloorsAtRoundOne(t *testing.T) {
	s := NewGameSession("t")
	s.Round = 1
	s.FirstPlayer = Attacker
	s.PlayerTurn = Attacker

	prev := PreviousTurn(s)
	assert.Equal(t, 1, prev.Round)
	assert.Equal(t, Attacker, prev.PlayerTurn)

	// Rewinding again stays put.
	s.Round = prev.Round
	s.PlayerTurn = prev.PlayerTurn
	again := PreviousTurn(s)
	assert.Equal(t, prev, again)
}

func TestValidatePhaseTransition(t *testing.T) {
	tests := []struct {
		name       string
		current    Phase
		next       Phase
		valid      bool
		suggestion string
		errPart    string
	}{
		{name: "sequential", current: PhaseCommand, next: PhaseMovement, valid: true},
		{name: "same phase", current: PhaseShooting, next: PhaseShooting, valid: true, suggestion: "already in"},
		{name: "skip one", current: PhaseCommand, next: PhaseShooting, valid: true, suggestion: "skipping the movement"},
		{name: "skip several", current: PhaseCommand, next: PhaseFight, valid: true, suggestion: "movement, shooting, charge"},
		{name: "backward", current: PhaseCharge, next: PhaseMovement, valid: true, suggestion: "correction?"},
		{name: "round wrap", current: PhaseFight, next: PhaseCommand, valid: true},
		{name: "unknown next", current: PhaseCommand, next: Phase("psychic"), errPart: "unknown phase"},
		{name: "unknown current", current: Phase("psychic"), next: PhaseCommand, errPart: "unknown phase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := ValidatePhaseTransition(tt.current, tt.next)
			if tt.errPart != "" {
				require.False(t, check.Valid)
				assert.Contains(t, check.Err, tt.errPart)
				return
			}
			require.True(t, check.Valid, check.Err)
			if tt.suggestion == "" {
				assert.Empty(t, check.Suggestion)
			} else {
				assert.Contains(t, check.Suggestion, tt.suggestion)
			}
		})
	}
}

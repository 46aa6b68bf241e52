package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
)

func gain(s *game.GameSession, p game.Player, amount, round int, turn game.Player) error {
	return (&game.CPGainedEvent{Txn: game.CPTransaction{
		ID: "t", Player: p, Type: game.CPGain, Amount: amount,
		Reason: "test", Round: round, Phase: game.PhaseCommand, Turn: turn,
	}}).Apply(s)
}

func TestValidateCPGainWithinStandardCap(t *testing.T) {
	s := game.NewGameSession("t")
	require.NoError(t, gain(s, game.Attacker, 1, 1, game.Attacker))

	check := ValidateCPGain(s, game.Attacker, 1, 1, game.Attacker)
	assert.True(t, check.Valid)
	assert.Empty(t, check.Warning)
}

func TestValidateCPGainPastStandardCapWarns(t *testing.T) {
	s := game.NewGameSession("t")
	require.NoError(t, gain(s, game.Attacker, 2, 1, game.Attacker))

	check := ValidateCPGain(s, game.Attacker, 1, 1, game.Attacker)
	assert.True(t, check.Valid)
	assert.Contains(t, check.Warning, "rare ability")
}

func TestValidateCPGainPastAbsoluteCapRejects(t *testing.T) {
	s := game.NewGameSession("t")
	require.NoError(t, gain(s, game.Attacker, 3, 1, game.Attacker))

	check := ValidateCPGain(s, game.Attacker, 1, 1, game.Attacker)
	assert.False(t, check.Valid)
	assert.Contains(t, check.Err, "absolute cap")
}

func TestValidateCPGainCountsOnlyTheCurrentTurn(t *testing.T) {
	s := game.NewGameSession("t")
	require.NoError(t, gain(s, game.Attacker, 2, 1, game.Attacker))
	require.NoError(t, gain(s, game.Attacker, 2, 1, game.Defender))

	// A fresh turn resets the counter.
	check := ValidateCPGain(s, game.Attacker, 2, 2, game.Attacker)
	assert.True(t, check.Valid)
	assert.Empty(t, check.Warning)

	// The opponent's gains during the attacker's turn are tracked separately.
	check = ValidateCPGain(s, game.Defender, 1, 1, game.Attacker)
	assert.True(t, check.Valid)
}

func TestValidateCPGainRejectsNonPositive(t *testing.T) {
	s := game.NewGameSession("t")
	assert.False(t, ValidateCPGain(s, game.Attacker, 0, 1, game.Attacker).Valid)
	assert.False(t, ValidateCPGain(s, game.Attacker, -1, 1, game.Attacker).Valid)
}

func TestValidateCPSpend(t *testing.T) {
	s := game.NewGameSession("t")
	require.NoError(t, gain(s, game.Defender, 2, 1, game.Attacker))

	assert.True(t, ValidateCPSpend(s, game.Defender, 2).Valid)

	check := ValidateCPSpend(s, game.Defender, 3)
	assert.False(t, check.Valid)
	assert.Contains(t, check.Err, "has 2CP, wants to spend 3")

	assert.False(t, ValidateCPSpend(s, game.Defender, 0).Valid)
}

func TestReconciled(t *testing.T) {
	s := game.NewGameSession("t")
	require.NoError(t, gain(s, game.Attacker, 2, 1, game.Attacker))
	assert.True(t, Reconciled(s, game.Attacker))

	// Direct balance tampering breaks reconciliation.
	s.Attacker.CP++
	assert.False(t, Reconciled(s, game.Attacker))
}

// Package rules implements the game-legality layer: command point caps,
// secondary objective scoring, and primary mission scoring. Business-rule
// violations are returned as structured results, never as errors; this is an
// advisory system for a voice-driven table, so soft problems annotate and
// only hard illegality rejects.
package rules

import (
	"fmt"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
)

const (
	// cpStandardTurnCap models the common case: 1CP automatic at the start
	// of the turn plus 1CP for discarding a secondary.
	cpStandardTurnCap = 2
	// cpAbsoluteTurnCap adds headroom for one rare ability grant. Anything
	// beyond this is always rejected.
	cpAbsoluteTurnCap = 3
)

// CPCheck is the result of a command point validation.
type CPCheck struct {
	Valid   bool   `json:"valid"`
	Err     string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// ValidateCPGain checks a gain against the per-turn caps. Gains past the
// standard cap are allowed with a warning (rare abilities can grant a third
// point); gains past the absolute cap are rejected outright.
func ValidateCPGain(s *game.GameSession, p game.Player, amount, round int, turn game.Player) CPCheck {
	if amount <= 0 {
		return CPCheck{Err: fmt.Sprintf("CP gain must be positive, got %d", amount)}
	}
	prior := s.GainsThisTurn(p, round, turn)
	total := prior + amount

	if total > cpAbsoluteTurnCap {
		return CPCheck{Err: fmt.Sprintf(
			"%s already gained %dCP this turn; gaining %d more would exceed the absolute cap of %d",
			p, prior, amount, cpAbsoluteTurnCap)}
	}
	if total > cpStandardTurnCap {
		return CPCheck{
			Valid: true,
			Warning: fmt.Sprintf(
				"%s gaining %dCP brings this turn's total to %d, past the standard cap of %d; verify a rare ability allows it",
				p, amount, total, cpStandardTurnCap),
		}
	}
	return CPCheck{Valid: true}
}

// ValidateCPSpend checks that the player can afford the spend.
func ValidateCPSpend(s *game.GameSession, p game.Player, amount int) CPCheck {
	if amount <= 0 {
		return CPCheck{Err: fmt.Sprintf("CP spend must be positive, got %d", amount)}
	}
	balance := s.State(p).CP
	if amount > balance {
		return CPCheck{Err: fmt.Sprintf("%s has %dCP, wants to spend %d", p, balance, amount)}
	}
	return CPCheck{Valid: true}
}

// Reconciled reports whether a player's projected balance matches the sum of
// their ledger rows. A false result means the event log is corrupted.
func Reconciled(s *game.GameSession, p game.Player) bool {
	return s.State(p).CP == s.LedgerBalance(p)
}

package game

import (
	"fmt"
	"strings"
)

// TurnState is the position computed by NextTurn/PreviousTurn.
type TurnState struct {
	Round      int    `json:"round"`
	PlayerTurn Player `json:"player_turn"`
	Phase      Phase  `json:"phase"`
}

// NextTurn computes the position after the current player turn ends. The
// round's first player hands over to the second player in the same round;
// the second player's turn ending advances the battle round. The phase
// always resets to command.
func NextTurn(s *GameSession) TurnState {
	if s.PlayerTurn == s.FirstPlayer {
		return TurnState{
			Round:      s.Round,
			PlayerTurn: s.FirstPlayer.Opponent(),
			Phase:      PhaseCommand,
		}
	}
	return TurnState{
		Round:      s.Round + 1,
		PlayerTurn: s.FirstPlayer,
		Phase:      PhaseCommand,
	}
}

// PreviousTurn is the exact inverse of NextTurn, used for voice-driven error
// correction. The round floors at 1: round 1 with the first player active is
// a fixed point.
func PreviousTurn(s *GameSession) TurnState {
	if s.PlayerTurn != s.FirstPlayer {
		return TurnState{
			Round:      s.Round,
			PlayerTurn: s.FirstPlayer,
			Phase:      PhaseCommand,
		}
	}
	if s.Round <= 1 {
		return TurnState{Round: 1, PlayerTurn: s.FirstPlayer, Phase: PhaseCommand}
	}
	return TurnState{
		Round:      s.Round - 1,
		PlayerTurn: s.FirstPlayer.Opponent(),
		Phase:      PhaseCommand,
	}
}

// PhaseCheck is the advisory result of a phase transition validation.
// The validator never blocks an out-of-sequence call; voice corrections are
// common, so anything but an unknown phase name is allowed through, at most
// annotated with a suggestion for the caller to surface.
type PhaseCheck struct {
	Valid      bool   `json:"valid"`
	Err        string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ValidatePhaseTransition checks a move from the current phase to a new one.
func ValidatePhaseTransition(current, next Phase) PhaseCheck {
	curIdx := PhaseIndex(current)
	nextIdx := PhaseIndex(next)
	if curIdx < 0 {
		return PhaseCheck{Err: fmt.Sprintf("unknown phase %q", current)}
	}
	if nextIdx < 0 {
		return PhaseCheck{Err: fmt.Sprintf("unknown phase %q", next)}
	}

	switch {
	case curIdx == nextIdx:
		return PhaseCheck{
			Valid:      true,
			Suggestion: fmt.Sprintf("already in the %s phase", current),
		}

	case nextIdx == curIdx+1:
		return PhaseCheck{Valid: true}

	case current == PhaseFight && next == PhaseCommand:
		// Round wrap: the fight phase flowing into the next command phase.
		return PhaseCheck{Valid: true}

	case nextIdx > curIdx+1:
		skipped := make([]string, 0, nextIdx-curIdx-1)
		for i := curIdx + 1; i < nextIdx; i++ {
			skipped = append(skipped, string(PhaseSequence[i]))
		}
		return PhaseCheck{
			Valid:      true,
			Suggestion: fmt.Sprintf("skipping the %s phase(s)", strings.Join(skipped, ", ")),
		}

	default:
		return PhaseCheck{
			Valid: true,
			Suggestion: fmt.Sprintf("moving backward from %s to %s; was this a correction?",
				current, next),
		}
	}
}

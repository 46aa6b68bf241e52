package rules

import (
	"go.uber.org/zap"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/data"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/parser"
)

// PrimaryResult is the outcome of primary mission scoring.
type PrimaryResult struct {
	VP      int                `json:"vp"`
	Held    int                `json:"objectives_held"`
	Formula parser.FormulaKind `json:"formula"`

	// Fallback marks that the mission's formula was unrecognized and the
	// default multiplier was used.
	Fallback bool `json:"fallback,omitempty"`
}

// CalculatePrimaryVP evaluates a mission's parsed scoring formula against
// the objectives the player currently controls. Scoring is deliberately
// best-effort: an unrecognized formula falls back to the default multiplier
// with a logged warning, never a failure.
func CalculatePrimaryVP(s *game.GameSession, p game.Player, m *data.Mission, log *zap.Logger) PrimaryResult {
	if log == nil {
		log = zap.NewNop()
	}
	held := s.ObjectivesHeld(p)

	f := m.Formula
	if f.Kind == "" {
		// Mission record arrived without a pre-parsed formula; parse once here.
		f = parser.ParseFormula(m.ScoringFormula)
	}
	if !f.Recognized() {
		log.Warn("mission formula unrecognized, scoring with default multiplier",
			zap.String("mission", m.ID),
			zap.String("formula", m.ScoringFormula),
			zap.Int("held", held))
	}

	return PrimaryResult{
		VP:       f.VPFor(held),
		Held:     held,
		Formula:  f.Kind,
		Fallback: !f.Recognized(),
	}
}

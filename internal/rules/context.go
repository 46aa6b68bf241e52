package rules

import "github.com/AndrewDeWitt/GrimLog-sub001/internal/game"

// BuildEvalContext converts the session position into the variable map CEL
// eligibility expressions evaluate against.
func BuildEvalContext(s *game.GameSession, p game.Player) map[string]any {
	ps := s.State(p)

	remaining := 0
	for _, u := range ps.Units {
		if !u.Destroyed {
			remaining++
		}
	}

	active := make([]string, len(ps.ActiveSecondaries))
	copy(active, ps.ActiveSecondaries)

	return map[string]any{
		"round":              s.Round,
		"phase":              string(s.Phase),
		"turn":               string(s.PlayerTurn),
		"player":             string(p),
		"cp":                 ps.CP,
		"vp":                 ps.VP,
		"objectives_held":    s.ObjectivesHeld(p),
		"units_remaining":    remaining,
		"active_secondaries": active,
	}
}

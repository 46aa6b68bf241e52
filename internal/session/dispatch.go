package session

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/parser"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/rules"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/toolcall"
)

// Outcome is what one dispatched tool call produced.
type Outcome struct {
	Applied    bool
	Messages   []string
	Warnings   []string
	Rejections []string
}

func (o *Outcome) say(format string, args ...any) {
	o.Messages = append(o.Messages, fmt.Sprintf(format, args...))
}

func (o *Outcome) warn(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

func (o *Outcome) reject(format string, args ...any) {
	o.Rejections = append(o.Rejections, fmt.Sprintf(format, args...))
}

// Argument readers. The validator has already checked types and bounds, so
// these only need to coerce JSON shapes.

func argString(call toolcall.ToolCall, name string) string {
	s, _ := call.Args[name].(string)
	return s
}

func argInt(call toolcall.ToolCall, name string) int {
	switch v := call.Args[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func argBool(call toolcall.ToolCall, name string) bool {
	b, _ := call.Args[name].(bool)
	return b
}

func argPlayer(call toolcall.ToolCall, name string) game.Player {
	p, _ := game.ParsePlayer(argString(call, name))
	return p
}

// apply appends-and-applies the event, folding its message into the outcome.
func (s *Session) apply(out *Outcome, evt game.Event) {
	if err := s.ApplyAndAppend(evt); err != nil {
		out.reject("%s", err.Error())
		return
	}
	out.Applied = true
	if msg := evt.Message(); msg != "" {
		out.say("%s", msg)
	}
}

// newTxn builds a ledger row positioned at the current game state.
func (s *Session) newTxn(p game.Player, kind game.CPTransactionType, amount int, reason, stratagem string) game.CPTransaction {
	return game.CPTransaction{
		ID:        uuid.NewString(),
		Player:    p,
		Type:      kind,
		Amount:    amount,
		Reason:    reason,
		Stratagem: stratagem,
		Round:     s.state.Round,
		Phase:     s.state.Phase,
		Turn:      s.state.PlayerTurn,
	}
}

// dispatch maps one validated tool call onto the rules layer and the event
// log. Hard illegality rejects; soft problems apply with a warning. The
// caller holds the session mutex.
func (s *Session) dispatch(call toolcall.ToolCall) Outcome {
	var out Outcome

	switch call.Name {
	case "start_game":
		first, err := game.ParsePlayer(argString(call, "first_player"))
		if err != nil {
			out.reject("%s", err.Error())
			return out
		}
		s.apply(&out, &game.GameStartedEvent{
			SessionID:    s.id,
			FirstPlayer:  first,
			Mission:      argString(call, "mission"),
			AttackerMode: game.MissionMode(argString(call, "attacker_mode")),
			DefenderMode: game.MissionMode(argString(call, "defender_mode")),
		})

	case "end_game":
		s.apply(&out, &game.GameEndedEvent{Winner: game.Player(argString(call, "winner"))})

	case "update_phase":
		next := game.Phase(argString(call, "phase"))
		check := game.ValidatePhaseTransition(s.state.Phase, next)
		if !check.Valid {
			out.reject("%s", check.Err)
			return out
		}
		if check.Suggestion != "" {
			out.warn("%s", check.Suggestion)
		}
		if next == s.state.Phase {
			out.say("already in the %s phase", next)
			out.Applied = true
			return out
		}
		s.apply(&out, &game.PhaseChangedEvent{Phase: next})

	case "next_phase":
		idx := game.PhaseIndex(s.state.Phase)
		if idx == len(game.PhaseSequence)-1 {
			ts := game.NextTurn(s.state)
			s.apply(&out, &game.TurnAdvancedEvent{Round: ts.Round, PlayerTurn: ts.PlayerTurn, Phase: ts.Phase})
			return out
		}
		s.apply(&out, &game.PhaseChangedEvent{Phase: game.PhaseSequence[idx+1]})

	case "next_turn":
		ts := game.NextTurn(s.state)
		s.apply(&out, &game.TurnAdvancedEvent{Round: ts.Round, PlayerTurn: ts.PlayerTurn, Phase: ts.Phase})

	case "previous_turn":
		ts := game.PreviousTurn(s.state)
		s.apply(&out, &game.TurnAdvancedEvent{Round: ts.Round, PlayerTurn: ts.PlayerTurn, Phase: ts.Phase, Correction: true})

	case "gain_cp":
		p := argPlayer(call, "player")
		amount := argInt(call, "amount")
		check := rules.ValidateCPGain(s.state, p, amount, s.state.Round, s.state.PlayerTurn)
		if !check.Valid {
			out.reject("%s", check.Err)
			return out
		}
		if check.Warning != "" {
			out.warn("%s", check.Warning)
		}
		reason := argString(call, "reason")
		if reason == "" {
			reason = "gained"
		}
		s.apply(&out, &game.CPGainedEvent{Txn: s.newTxn(p, game.CPGain, amount, reason, "")})

	case "spend_cp":
		p := argPlayer(call, "player")
		amount := argInt(call, "amount")
		if check := rules.ValidateCPSpend(s.state, p, amount); !check.Valid {
			out.reject("%s", check.Err)
			return out
		}
		reason := argString(call, "reason")
		if reason == "" {
			reason = "spent"
		}
		s.apply(&out, &game.CPSpentEvent{Txn: s.newTxn(p, game.CPSpend, amount, reason, argString(call, "stratagem"))})

	case "use_stratagem":
		p := argPlayer(call, "player")
		name := argString(call, "name")
		cost := argInt(call, "cost")
		if cost == 0 {
			s.apply(&out, &game.NoteEvent{Text: fmt.Sprintf("%s uses %s (free)", p, name)})
			return out
		}
		if check := rules.ValidateCPSpend(s.state, p, cost); !check.Valid {
			out.reject("%s", check.Err)
			return out
		}
		s.apply(&out, &game.CPSpentEvent{Txn: s.newTxn(p, game.CPSpend, cost, "stratagem", name)})

	case "correct_cp":
		p := argPlayer(call, "player")
		delta := argInt(call, "delta")
		reason := argString(call, "reason")
		if reason == "" {
			reason = "correction"
		}
		switch {
		case delta > 0:
			s.apply(&out, &game.CPGainedEvent{Txn: s.newTxn(p, game.CPGain, delta, reason, "")})
		case delta < 0:
			if check := rules.ValidateCPSpend(s.state, p, -delta); !check.Valid {
				out.reject("%s", check.Err)
				return out
			}
			s.apply(&out, &game.CPSpentEvent{Txn: s.newTxn(p, game.CPSpend, -delta, reason, "")})
		default:
			out.reject("correct_cp needs a non-zero delta")
		}

	case "draw_secondary":
		p := argPlayer(call, "player")
		name := argString(call, "name")
		check := s.engine.ValidateDraw(s.state, p, name)
		if !check.Valid {
			out.reject("%s", check.Err)
			return out
		}
		// Use the library's canonical name so deck history compares cleanly.
		if sec, ok := s.lib.Secondary(name); ok {
			name = sec.Name
		}
		s.apply(&out, &game.SecondaryDrawnEvent{Player: p, Name: name, Round: s.state.Round})

	case "score_secondary":
		s.dispatchScoreSecondary(call, &out)

	case "discard_secondary":
		p := argPlayer(call, "player")
		name := argString(call, "name")
		if sec, ok := s.lib.Secondary(name); ok {
			name = sec.Name
		}
		if !s.state.State(p).HasActiveSecondary(name) {
			out.reject("%s is not in %s's active secondaries", name, p)
			return out
		}
		s.apply(&out, &game.SecondaryDiscardedEvent{Player: p, Name: name, Round: s.state.Round})
		if out.Applied && argBool(call, "gain_cp") {
			check := rules.ValidateCPGain(s.state, p, 1, s.state.Round, s.state.PlayerTurn)
			if !check.Valid {
				out.warn("discard CP not granted: %s", check.Err)
				return out
			}
			if check.Warning != "" {
				out.warn("%s", check.Warning)
			}
			s.apply(&out, &game.CPGainedEvent{Txn: s.newTxn(p, game.CPGain, 1, fmt.Sprintf("discarded %s", name), "")})
		}

	case "score_primary":
		s.dispatchScorePrimary(call, &out)

	case "correct_vp":
		p := argPlayer(call, "player")
		delta := argInt(call, "delta")
		if delta == 0 {
			out.reject("correct_vp needs a non-zero delta")
			return out
		}
		s.apply(&out, &game.VPCorrectedEvent{Player: p, Delta: delta, Reason: argString(call, "reason")})

	case "set_mission":
		id := argString(call, "mission")
		if _, ok := s.lib.Mission(id); !ok {
			out.warn("mission %q is not in the reference library; primary scoring will use the default formula", id)
		}
		s.apply(&out, &game.MissionSetEvent{Mission: id})

	case "set_mission_mode":
		p := argPlayer(call, "player")
		mode := game.MissionMode(argString(call, "mode"))
		s.apply(&out, &game.MissionModeSetEvent{Player: p, Mode: mode})

	case "set_first_player":
		p, err := game.ParsePlayer(argString(call, "first_player"))
		if err != nil {
			out.reject("%s", err.Error())
			return out
		}
		s.apply(&out, &game.FirstPlayerSetEvent{Player: p})

	case "add_unit":
		p := argPlayer(call, "player")
		wounds := argInt(call, "wounds")
		models := argInt(call, "models")
		if models == 0 {
			models = 1
		}
		u := game.Unit{
			ID:          argString(call, "unit_id"),
			Name:        argString(call, "name"),
			Wounds:      wounds,
			MaxWounds:   wounds,
			Models:      models,
			StartModels: models,
			Datasheet:   argString(call, "datasheet"),
		}
		if ds, ok := s.lib.Datasheet(u.Datasheet); ok {
			u.Keywords = ds.Keywords
		}
		s.apply(&out, &game.UnitAddedEvent{Player: p, Unit: u})

	case "update_unit_health":
		p := argPlayer(call, "player")
		id := argString(call, "unit_id")
		u, ok := s.state.State(p).Units[id]
		if !ok {
			out.reject("unit %s not found for %s", id, p)
			return out
		}
		target := argInt(call, "wounds")
		if target > u.MaxWounds {
			out.warn("%s has %d wounds at full strength; clamping", id, u.MaxWounds)
			target = u.MaxWounds
		}
		if target == u.Wounds {
			out.say("%s is already at %d wounds", id, target)
			out.Applied = true
			return out
		}
		s.apply(&out, &game.UnitDamagedEvent{Player: p, UnitID: id, Damage: u.Wounds - target})

	case "damage_unit":
		p := argPlayer(call, "player")
		s.apply(&out, &game.UnitDamagedEvent{
			Player: p,
			UnitID: argString(call, "unit_id"),
			Damage: argInt(call, "damage"),
			Source: argString(call, "source"),
		})

	case "destroy_unit":
		p := argPlayer(call, "player")
		s.apply(&out, &game.UnitDestroyedEvent{Player: p, UnitID: argString(call, "unit_id")})

	case "log_combat":
		attacker, err := game.ParsePlayer(argString(call, "attacker"))
		if err != nil {
			out.reject("%s", err.Error())
			return out
		}
		target := attacker.Opponent()
		source := argString(call, "unit_id")
		if source == "" {
			source = argString(call, "description")
		}
		s.apply(&out, &game.UnitDamagedEvent{
			Player: target,
			UnitID: argString(call, "target_id"),
			Damage: argInt(call, "damage"),
			Source: source,
		})
		if u, ok := s.state.State(target).Units[argString(call, "target_id")]; ok && u.Destroyed {
			out.say("%s's %s is destroyed", target, u.Name)
		}

	case "update_objective_control":
		holder := argString(call, "controlled_by")
		var p game.Player
		if holder != "contested" {
			p = game.Player(holder)
		}
		s.apply(&out, &game.ObjectiveControlChangedEvent{MarkerID: argString(call, "marker_id"), ControlledBy: p})

	case "add_note":
		s.apply(&out, &game.NoteEvent{Text: argString(call, "text")})

	case "query_state":
		out.Applied = true
		out.say("%s", s.summarize())

	default:
		// The validator only admits registered tools, so this is a schema
		// drift bug, not a model problem.
		s.log.Error("tool registered but not dispatched", zap.String("tool", call.Name))
		out.reject("tool %q is not wired to the game engine", call.Name)
	}

	return out
}

// dispatchScoreSecondary resolves the VP to award (explicit, or from a named
// scoring condition), runs the scoring checks, and applies the clamped award.
func (s *Session) dispatchScoreSecondary(call toolcall.ToolCall, out *Outcome) {
	p := argPlayer(call, "player")
	name := argString(call, "name")
	vp := argInt(call, "vp")
	condition := argString(call, "condition")

	sec, known := s.lib.Secondary(name)
	if known {
		name = sec.Name
	}

	if vp == 0 && condition != "" && known {
		opt := s.engine.CalculateVPForOption(sec, s.state.State(p).MissionMode, condition, argInt(call, "target_wounds"))
		if !opt.Found {
			out.reject("no scoring option on %s matches %q", name, condition)
			return
		}
		vp = opt.VP
		if opt.Note != "" {
			out.warn("%s", opt.Note)
		}
	}

	res := s.engine.ValidateScoringAttempt(s.state, p, name, vp)
	if !res.Valid {
		out.reject("%s", res.Err)
		return
	}
	if res.Note != "" {
		out.warn("%s", res.Note)
	}

	completes := known && sec.CompletesOnScore && s.state.State(p).MissionMode == game.ModeTactical
	s.apply(out, &game.SecondaryScoredEvent{
		Player:    p,
		Name:      name,
		VP:        res.CappedVP,
		Round:     s.state.Round,
		Phase:     s.state.Phase,
		Turn:      s.state.PlayerTurn,
		Detail:    condition,
		Completes: completes,
	})
}

// dispatchScorePrimary awards primary mission VP, computing it from the
// mission formula when the call does not carry an explicit amount.
func (s *Session) dispatchScorePrimary(call toolcall.ToolCall, out *Outcome) {
	p := argPlayer(call, "player")
	vp := argInt(call, "vp")
	held := s.state.ObjectivesHeld(p)

	mission, haveMission := s.lib.Mission(s.state.Mission)
	if vp == 0 {
		if haveMission {
			res := rules.CalculatePrimaryVP(s.state, p, mission, s.log)
			vp = res.VP
			if res.Fallback {
				out.warn("mission formula not recognized; using %d objectives x 5VP", res.Held)
			}
		} else {
			vp = held * parser.DefaultMultiplier
			out.warn("no mission set; using %d objectives x %dVP", held, parser.DefaultMultiplier)
		}
	}
	if vp == 0 {
		out.say("%s holds no objectives, no primary VP scored", p)
		out.Applied = true
		return
	}

	maxVP := 50
	if mission != nil {
		maxVP = mission.MaxVPOrDefault()
	}
	// Primary caps on the running total, same clamp-not-reject posture as
	// secondary scoring.
	scored := s.primaryScored(p)
	if scored >= maxVP {
		out.reject("%s is at the primary cap of %dVP", p, maxVP)
		return
	}
	if scored+vp > maxVP {
		out.warn("requested %dVP clamped to %d by the primary cap", vp, maxVP-scored)
		vp = maxVP - scored
	}

	s.apply(out, &game.PrimaryScoredEvent{Player: p, VP: vp, Round: s.state.Round, Held: held})
}

// primaryScored totals the primary VP a player has been awarded so far.
func (s *Session) primaryScored(p game.Player) int {
	total := 0
	ps := s.state.State(p)
	for _, prog := range ps.Secondaries {
		total += prog.VPScored
	}
	return ps.VP - total
}

// summarize renders the one-line state answer for query_state.
func (s *Session) summarize() string {
	st := s.state
	return fmt.Sprintf("round %d, %s phase, %s turn | attacker %dCP/%dVP | defender %dCP/%dVP | %d objectives tracked",
		st.Round, st.Phase, st.PlayerTurn,
		st.Attacker.CP, st.Attacker.VP,
		st.Defender.CP, st.Defender.VP,
		len(st.Objectives))
}

package rules

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/data"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
)

// woundThresholdRe recognizes bonus tier conditions like "10+ wounds".
var woundThresholdRe = regexp.MustCompile(`(\d+)\+`)

// SecondaryEngine validates the draw/score/discard lifecycle of secondary
// objectives against the reference dataset.
type SecondaryEngine struct {
	lib *data.Library
	reg *Registry
	log *zap.Logger
}

// NewSecondaryEngine wires the engine to the reference library and the CEL
// eligibility registry.
func NewSecondaryEngine(lib *data.Library, reg *Registry, log *zap.Logger) *SecondaryEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &SecondaryEngine{lib: lib, reg: reg, log: log}
}

// DrawCheck is the result of validating a secondary draw.
type DrawCheck struct {
	Valid bool   `json:"valid"`
	Err   string `json:"error,omitempty"`
}

// ValidateDraw checks whether a player may draw the named secondary:
// mission-mode compatibility, no duplicate of an active card, tactical
// no-repeat across the whole game, and the round-1 redraw exclusion.
func (e *SecondaryEngine) ValidateDraw(s *game.GameSession, p game.Player, name string) DrawCheck {
	sec, ok := e.lib.Secondary(name)
	if !ok {
		return DrawCheck{Err: fmt.Sprintf("unknown secondary %q", name)}
	}
	ps := s.State(p)
	mode := ps.MissionMode

	if !sec.MissionType.Allows(mode) {
		return DrawCheck{Err: fmt.Sprintf("%s is a %s secondary; %s plays %s missions",
			sec.Name, sec.MissionType, p, mode)}
	}
	if ps.HasActiveSecondary(sec.Name) {
		return DrawCheck{Err: fmt.Sprintf("%s already has %s active", p, sec.Name)}
	}
	if mode == game.ModeTactical && ps.HasDrawn(sec.Name) {
		return DrawCheck{Err: fmt.Sprintf("%s has already been drawn this game; tactical decks never repeat", sec.Name)}
	}
	if s.Round == 1 && sec.Rounds.RedrawOnRound1 {
		return DrawCheck{Err: fmt.Sprintf("%s is redrawn when drawn in round 1", sec.Name)}
	}
	return DrawCheck{Valid: true}
}

// DrawPool lists the secondary names the player could legally draw right now.
func (e *SecondaryEngine) DrawPool(s *game.GameSession, p game.Player) []string {
	var pool []string
	for _, sec := range e.lib.AllSecondaries() {
		if check := e.ValidateDraw(s, p, sec.Name); check.Valid {
			pool = append(pool, sec.Name)
		}
	}
	return pool
}

// ScoreResult is the outcome of a scoring validation. Cap overruns clamp
// instead of rejecting: CappedVP carries the VP the caller must award, which
// may be lower than requested. Over-scoring attempts are common transcription
// artifacts and should degrade gracefully.
type ScoreResult struct {
	Valid    bool   `json:"valid"`
	Err      string `json:"error,omitempty"`
	CappedVP int    `json:"capped_vp"`
	Capped   bool   `json:"capped,omitempty"`
	Note     string `json:"note,omitempty"`
}

// ValidateScoringAttempt runs the scoring checks in order, short-circuiting
// on the first failure:
//
//  1. the secondary must be active for the player
//  2. round restrictions
//  3. tactical completes-on-score cards score at most once per turn
//  4. per-turn VP cap (clamps)
//  5. total VP cap (clamps)
//
// On success CappedVP is the amount to actually award.
func (e *SecondaryEngine) ValidateScoringAttempt(s *game.GameSession, p game.Player, name string, vp int) ScoreResult {
	if vp <= 0 {
		return ScoreResult{Err: fmt.Sprintf("VP to score must be positive, got %d", vp)}
	}

	sec, ok := e.lib.Secondary(name)
	if !ok {
		return ScoreResult{Err: fmt.Sprintf("unknown secondary %q", name)}
	}
	ps := s.State(p)
	mode := ps.MissionMode

	// 1. Must be active.
	if !ps.HasActiveSecondary(sec.Name) {
		return ScoreResult{Err: fmt.Sprintf("%s is not in %s's active secondaries", sec.Name, p)}
	}

	// 2. Round restrictions.
	if min := sec.Rounds.MinRound; min > 0 && s.Round < min {
		msg := fmt.Sprintf("%s cannot be scored before round %d (current round %d)", sec.Name, min, s.Round)
		if sec.Rounds.RedrawOnRound1 {
			msg += "; it should have been redrawn"
		}
		return ScoreResult{Err: msg}
	}
	if max := sec.Rounds.MaxRound; max > 0 && s.Round > max {
		return ScoreResult{Err: fmt.Sprintf("%s cannot be scored after round %d (current round %d)", sec.Name, max, s.Round)}
	}

	// Advisory eligibility expression, if the card defines one.
	if e.reg != nil && sec.Eligibility != "" {
		if !e.reg.Eligible(sec.Eligibility, BuildEvalContext(s, p)) {
			return ScoreResult{Err: fmt.Sprintf("%s's conditions are not met right now", sec.Name)}
		}
	}

	prog := ps.Secondaries[sec.Name]
	scoredThisTurn := 0
	totalScored := 0
	if prog != nil {
		scoredThisTurn = prog.VPThisTurn(s.Round, s.PlayerTurn)
		totalScored = prog.VPScored
	}

	// 3. Tactical completes-on-score cards score once, then leave play.
	if mode == game.ModeTactical && sec.CompletesOnScore && scoredThisTurn > 0 {
		return ScoreResult{Err: fmt.Sprintf("%s already scored this turn and completes on score", sec.Name)}
	}

	award := vp
	capped := false

	// 4. Per-turn cap.
	if turnCap := sec.TurnCap(mode); turnCap > 0 {
		if scoredThisTurn >= turnCap {
			return ScoreResult{Err: fmt.Sprintf("%s is at its per-turn cap of %dVP", sec.Name, turnCap)}
		}
		if headroom := turnCap - scoredThisTurn; award > headroom {
			award = headroom
			capped = true
		}
	}

	// 5. Total cap.
	maxVP := sec.MaxVPOrDefault()
	if totalScored >= maxVP {
		return ScoreResult{Err: fmt.Sprintf("%s is at its maximum of %dVP", sec.Name, maxVP)}
	}
	if headroom := maxVP - totalScored; award > headroom {
		award = headroom
		capped = true
	}

	res := ScoreResult{Valid: true, CappedVP: award, Capped: capped}
	if capped {
		res.Note = fmt.Sprintf("requested %dVP clamped to %d by scoring caps", vp, award)
	}
	return res
}

// OptionVP is the result of resolving a scoring option's VP value.
type OptionVP struct {
	VP    int    `json:"vp"`
	Found bool   `json:"found"`
	Note  string `json:"note,omitempty"`
}

// CalculateVPForOption resolves the VP for a named scoring condition under
// the player's mission mode. When the active mode defines no options, the
// other mode's values are substituted and the result is labeled so the
// caller knows. Fixed-mode wound-threshold bonus tiers are cumulative: every
// tier at or below the target's wounds adds its own VP.
func (e *SecondaryEngine) CalculateVPForOption(sec *data.Secondary, mode game.MissionMode, condition string, targetWounds int) OptionVP {
	opts := sec.OptionsFor(mode)
	note := ""
	effectiveMode := mode
	if len(opts) == 0 {
		other := mode.Other()
		opts = sec.OptionsFor(other)
		if len(opts) == 0 {
			return OptionVP{}
		}
		effectiveMode = other
		note = fmt.Sprintf("using %s values", other)
		e.log.Warn("secondary has no options for active mode, substituting",
			zap.String("secondary", sec.Name),
			zap.String("mode", string(mode)),
			zap.String("substitute", string(other)))
	}

	base, ok := matchOption(opts, condition)
	if !ok {
		return OptionVP{Note: note}
	}
	vp := base.VP

	// Cumulative bonus tiers only apply under fixed-mode scoring.
	if effectiveMode == game.ModeFixed && targetWounds > 0 {
		for i := range opts {
			opt := &opts[i]
			if opt == base {
				continue
			}
			threshold := opt.WoundThreshold
			if threshold == 0 {
				if m := woundThresholdRe.FindStringSubmatch(opt.Condition); m != nil {
					threshold = atoiSafe(m[1])
				}
			}
			if threshold > 0 && targetWounds >= threshold {
				vp += opt.VP
			}
		}
	}

	return OptionVP{VP: vp, Found: true, Note: note}
}

// matchOption picks the scoring option for a requested condition: exact
// case-insensitive match first, then substring, then the first option
// without a wound threshold when no condition was given.
func matchOption(opts []data.ScoringOption, condition string) (*data.ScoringOption, bool) {
	want := strings.ToLower(strings.TrimSpace(condition))
	if want != "" {
		for i := range opts {
			if strings.ToLower(opts[i].Condition) == want {
				return &opts[i], true
			}
		}
		for i := range opts {
			if strings.Contains(strings.ToLower(opts[i].Condition), want) {
				return &opts[i], true
			}
		}
		return nil, false
	}
	for i := range opts {
		if opts[i].WoundThreshold == 0 && !woundThresholdRe.MatchString(opts[i].Condition) {
			return &opts[i], true
		}
	}
	return nil, false
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

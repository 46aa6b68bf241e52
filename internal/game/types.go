// Package game implements the event-sourced session engine for GrimLog.
// A session is the full projection of a single Warhammer 40K match, built
// from applied events.
package game

import "fmt"

// --- Players and phases ---

// Player identifies one side of the match.
type Player string

const (
	Attacker Player = "attacker"
	Defender Player = "defender"
)

// Opponent returns the other side.
func (p Player) Opponent() Player {
	if p == Attacker {
		return Defender
	}
	return Attacker
}

// ParsePlayer validates a raw player string.
func ParsePlayer(s string) (Player, error) {
	switch Player(s) {
	case Attacker, Defender:
		return Player(s), nil
	}
	return "", fmt.Errorf("unknown player %q (want attacker or defender)", s)
}

// Phase is a sub-step within a player turn.
type Phase string

const (
	PhaseCommand  Phase = "command"
	PhaseMovement Phase = "movement"
	PhaseShooting Phase = "shooting"
	PhaseCharge   Phase = "charge"
	PhaseFight    Phase = "fight"
)

// PhaseSequence is the fixed order phases occur within a turn.
var PhaseSequence = []Phase{PhaseCommand, PhaseMovement, PhaseShooting, PhaseCharge, PhaseFight}

// PhaseIndex returns the position of p in PhaseSequence, or -1 for an
// unknown phase name.
func PhaseIndex(p Phase) int {
	for i, ph := range PhaseSequence {
		if ph == p {
			return i
		}
	}
	return -1
}

// MissionMode selects how a player scores secondary objectives.
type MissionMode string

const (
	ModeFixed    MissionMode = "fixed"
	ModeTactical MissionMode = "tactical"
)

// Other returns the opposite mission mode, used when one mode's scoring
// values have to stand in for the other's.
func (m MissionMode) Other() MissionMode {
	if m == ModeFixed {
		return ModeTactical
	}
	return ModeFixed
}

// --- CP ledger ---

// CPTransactionType discriminates ledger rows.
type CPTransactionType string

const (
	CPGain  CPTransactionType = "gain"
	CPSpend CPTransactionType = "spend"
)

// CPTransaction is one immutable row of the command point ledger. Rows are
// appended by CP-affecting events and never mutated, so the ledger can always
// be reconciled against the projected balance.
type CPTransaction struct {
	ID        string            `json:"id"`
	Player    Player            `json:"player"`
	Type      CPTransactionType `json:"type"`
	Amount    int               `json:"amount"`
	Reason    string            `json:"reason"`
	Stratagem string            `json:"stratagem,omitempty"`
	Round     int               `json:"round"`
	Phase     Phase             `json:"phase"`
	Turn      Player            `json:"turn"`
}

// --- Secondary objectives ---

// SecondaryStatus is the lifecycle of a drawn secondary.
type SecondaryStatus string

const (
	SecondaryActive    SecondaryStatus = "active"
	SecondaryScored    SecondaryStatus = "scored"
	SecondaryDiscarded SecondaryStatus = "discarded"
)

// DeckEntry records one draw from a player's secondary deck. Tactical mode
// forbids redrawing a name that already appears in the deck history.
type DeckEntry struct {
	Name           string          `json:"name"`
	DrawnRound     int             `json:"drawn_round"`
	Status         SecondaryStatus `json:"status"`
	ScoredRound    int             `json:"scored_round,omitempty"`
	DiscardedRound int             `json:"discarded_round,omitempty"`
}

// ScoreNote is one free-form entry in a secondary's scoring log.
type ScoreNote struct {
	Round  int    `json:"round"`
	Phase  Phase  `json:"phase"`
	Turn   Player `json:"turn"`
	VP     int    `json:"vp"`
	Detail string `json:"detail,omitempty"`
}

// SecondaryProgress accumulates VP for one (player, secondary) pair.
type SecondaryProgress struct {
	Name            string         `json:"name"`
	VPScored        int            `json:"vp_scored"`
	LastScoredRound int            `json:"last_scored_round"`
	LastScoredPhase Phase          `json:"last_scored_phase"`
	RoundVP         map[int]int    `json:"round_vp"`
	TurnVP          map[string]int `json:"turn_vp"` // TurnKey → vp scored in that player turn
	Log             []ScoreNote    `json:"log"`
}

// NewSecondaryProgress creates a progress record with maps initialized.
func NewSecondaryProgress(name string) *SecondaryProgress {
	return &SecondaryProgress{
		Name:    name,
		RoundVP: make(map[int]int),
		TurnVP:  make(map[string]int),
	}
}

// TurnKey identifies a single player turn within the match, used to bucket
// per-turn VP for cap enforcement.
func TurnKey(round int, turn Player) string {
	return fmt.Sprintf("r%d/%s", round, turn)
}

// VPThisTurn returns the VP already scored for this secondary in the given
// player turn.
func (p *SecondaryProgress) VPThisTurn(round int, turn Player) int {
	return p.TurnVP[TurnKey(round, turn)]
}

// --- Units and objectives ---

// Unit is one tracked unit in a player's roster with its remaining wounds.
type Unit struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Wounds      int      `json:"wounds"`
	MaxWounds   int      `json:"max_wounds"`
	Models      int      `json:"models"`
	StartModels int      `json:"start_models"`
	Keywords    []string `json:"keywords,omitempty"`
	Datasheet   string   `json:"datasheet,omitempty"`
	Destroyed   bool     `json:"destroyed"`
}

// ObjectiveMarker is one marker on the table and who currently controls it.
// An empty ControlledBy means contested or unclaimed.
type ObjectiveMarker struct {
	ID           string `json:"id"`
	ControlledBy Player `json:"controlled_by,omitempty"`
}

// Transcript is one utterance heard at the table, with the game position it
// arrived in.
type Transcript struct {
	Sequence int    `json:"sequence"`
	Text     string `json:"text"`
	Round    int    `json:"round"`
	Phase    Phase  `json:"phase"`
	Turn     Player `json:"turn"`
}

// --- Session ---

// PlayerState is everything tracked per side.
type PlayerState struct {
	CP                int                           `json:"cp"`
	VP                int                           `json:"vp"`
	MissionMode       MissionMode                   `json:"mission_mode"`
	ActiveSecondaries []string                      `json:"active_secondaries"`
	Deck              []DeckEntry                   `json:"deck"`
	Secondaries       map[string]*SecondaryProgress `json:"secondaries"`
	Units             map[string]*Unit              `json:"units"`
}

// NewPlayerState creates a PlayerState with all maps initialized.
func NewPlayerState() *PlayerState {
	return &PlayerState{
		MissionMode:       ModeFixed,
		ActiveSecondaries: make([]string, 0),
		Deck:              make([]DeckEntry, 0),
		Secondaries:       make(map[string]*SecondaryProgress),
		Units:             make(map[string]*Unit),
	}
}

// HasActiveSecondary reports whether the named secondary is in the active list.
func (ps *PlayerState) HasActiveSecondary(name string) bool {
	for _, n := range ps.ActiveSecondaries {
		if n == name {
			return true
		}
	}
	return false
}

// HasDrawn reports whether the named secondary appears anywhere in the deck
// history, regardless of its current status.
func (ps *PlayerState) HasDrawn(name string) bool {
	for _, d := range ps.Deck {
		if d.Name == name {
			return true
		}
	}
	return false
}

// removeActiveSecondary drops a name from the active list, if present.
func (ps *PlayerState) removeActiveSecondary(name string) {
	for i, n := range ps.ActiveSecondaries {
		if n == name {
			ps.ActiveSecondaries = append(ps.ActiveSecondaries[:i], ps.ActiveSecondaries[i+1:]...)
			return
		}
	}
}

// GameSession is the full projection of one match, built from applied events.
type GameSession struct {
	ID          string                      `json:"id"`
	Round       int                         `json:"round"`
	Phase       Phase                       `json:"phase"`
	PlayerTurn  Player                      `json:"player_turn"`
	FirstPlayer Player                      `json:"first_player"`
	Mission     string                      `json:"mission,omitempty"`
	Attacker    *PlayerState                `json:"attacker"`
	Defender    *PlayerState                `json:"defender"`
	Objectives  map[string]*ObjectiveMarker `json:"objectives"`
	Ledger      []CPTransaction             `json:"ledger"`
	Transcripts []Transcript                `json:"transcripts"`
	Complete    bool                        `json:"complete"`

	// LastTool tracks the name of the last successfully dispatched tool call,
	// used by the state summary surfaces.
	LastTool string `json:"last_tool"`
}

// NewGameSession creates a clean session positioned at the top of round 1.
func NewGameSession(id string) *GameSession {
	return &GameSession{
		ID:          id,
		Round:       1,
		Phase:       PhaseCommand,
		PlayerTurn:  Attacker,
		FirstPlayer: Attacker,
		Attacker:    NewPlayerState(),
		Defender:    NewPlayerState(),
		Objectives:  make(map[string]*ObjectiveMarker),
		Ledger:      make([]CPTransaction, 0),
		Transcripts: make([]Transcript, 0),
	}
}

// State returns the per-player state for the given side.
func (s *GameSession) State(p Player) *PlayerState {
	if p == Defender {
		return s.Defender
	}
	return s.Attacker
}

// Clone returns a deep copy of the session, safe to read while the original
// keeps mutating under its owner's lock.
func (s *GameSession) Clone() *GameSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Attacker = s.Attacker.clone()
	out.Defender = s.Defender.clone()
	if s.Objectives != nil {
		out.Objectives = make(map[string]*ObjectiveMarker, len(s.Objectives))
		for id, m := range s.Objectives {
			c := *m
			out.Objectives[id] = &c
		}
	}
	out.Ledger = append(s.Ledger[:0:0], s.Ledger...)
	out.Transcripts = append(s.Transcripts[:0:0], s.Transcripts...)
	return &out
}

func (ps *PlayerState) clone() *PlayerState {
	if ps == nil {
		return nil
	}
	out := *ps
	out.ActiveSecondaries = append(ps.ActiveSecondaries[:0:0], ps.ActiveSecondaries...)
	out.Deck = append(ps.Deck[:0:0], ps.Deck...)
	if ps.Secondaries != nil {
		out.Secondaries = make(map[string]*SecondaryProgress, len(ps.Secondaries))
		for name, prog := range ps.Secondaries {
			out.Secondaries[name] = prog.clone()
		}
	}
	if ps.Units != nil {
		out.Units = make(map[string]*Unit, len(ps.Units))
		for id, u := range ps.Units {
			c := *u
			c.Keywords = append(u.Keywords[:0:0], u.Keywords...)
			out.Units[id] = &c
		}
	}
	return &out
}

func (p *SecondaryProgress) clone() *SecondaryProgress {
	out := *p
	if p.RoundVP != nil {
		out.RoundVP = make(map[int]int, len(p.RoundVP))
		for k, v := range p.RoundVP {
			out.RoundVP[k] = v
		}
	}
	if p.TurnVP != nil {
		out.TurnVP = make(map[string]int, len(p.TurnVP))
		for k, v := range p.TurnVP {
			out.TurnVP[k] = v
		}
	}
	out.Log = append(p.Log[:0:0], p.Log...)
	return &out
}

// LedgerBalance reconciles the CP ledger for one player: sum of gains minus
// sum of spends. It must always equal State(p).CP exactly.
func (s *GameSession) LedgerBalance(p Player) int {
	total := 0
	for _, t := range s.Ledger {
		if t.Player != p {
			continue
		}
		switch t.Type {
		case CPGain:
			total += t.Amount
		case CPSpend:
			total -= t.Amount
		}
	}
	return total
}

// GainsThisTurn sums gain-type ledger rows for a player in a specific round
// and player turn. Used by the per-turn CP gain cap.
func (s *GameSession) GainsThisTurn(p Player, round int, turn Player) int {
	total := 0
	for _, t := range s.Ledger {
		if t.Player == p && t.Type == CPGain && t.Round == round && t.Turn == turn {
			total += t.Amount
		}
	}
	return total
}

// ObjectivesHeld counts markers currently controlled by the player.
func (s *GameSession) ObjectivesHeld(p Player) int {
	held := 0
	for _, m := range s.Objectives {
		if m.ControlledBy == p {
			held++
		}
	}
	return held
}

// NextSequence returns the sequence number the next transcript should carry.
func (s *GameSession) NextSequence() int {
	return len(s.Transcripts) + 1
}

// RecentTranscripts returns up to limit transcripts with sequence strictly
// below beforeSequence, oldest first. A beforeSequence of 0 means "latest".
func (s *GameSession) RecentTranscripts(beforeSequence, limit int) []Transcript {
	if beforeSequence <= 0 {
		beforeSequence = len(s.Transcripts) + 1
	}
	var out []Transcript
	for _, t := range s.Transcripts {
		if t.Sequence < beforeSequence {
			out = append(out, t)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

package game

import "fmt"

// Event is the building block of the event-sourced engine. Every state
// change to a session is represented as an Event that can be applied to a
// GameSession projection.
type Event interface {
	Type() string
	Apply(s *GameSession) error
	Message() string
}

// GameStartedEvent initializes a session's fixed match parameters.
type GameStartedEvent struct {
	SessionID    string      `json:"session_id"`
	FirstPlayer  Player      `json:"first_player"`
	Mission      string      `json:"mission,omitempty"`
	AttackerMode MissionMode `json:"attacker_mode"`
	DefenderMode MissionMode `json:"defender_mode"`
}

func (e *GameStartedEvent) Type() string { return "GameStartedEvent" }
func (e *GameStartedEvent) Apply(s *GameSession) error {
	s.ID = e.SessionID
	s.FirstPlayer = e.FirstPlayer
	s.PlayerTurn = e.FirstPlayer
	s.Round = 1
	s.Phase = PhaseCommand
	s.Mission = e.Mission
	if e.AttackerMode != "" {
		s.Attacker.MissionMode = e.AttackerMode
	}
	if e.DefenderMode != "" {
		s.Defender.MissionMode = e.DefenderMode
	}
	return nil
}
func (e *GameStartedEvent) Message() string {
	return fmt.Sprintf("game started, %s goes first", e.FirstPlayer)
}

// GameEndedEvent marks the session complete. The session is archived, never
// deleted mid-game.
type GameEndedEvent struct {
	Winner Player `json:"winner,omitempty"`
}

func (e *GameEndedEvent) Type() string { return "GameEndedEvent" }
func (e *GameEndedEvent) Apply(s *GameSession) error {
	s.Complete = true
	return nil
}
func (e *GameEndedEvent) Message() string {
	if e.Winner != "" {
		return fmt.Sprintf("game over, %s wins", e.Winner)
	}
	return "game over"
}

// PhaseChangedEvent moves the session to a new phase.
type PhaseChangedEvent struct {
	Phase Phase `json:"phase"`
}

func (e *PhaseChangedEvent) Type() string { return "PhaseChangedEvent" }
func (e *PhaseChangedEvent) Apply(s *GameSession) error {
	if PhaseIndex(e.Phase) < 0 {
		return fmt.Errorf("unknown phase %q", e.Phase)
	}
	s.Phase = e.Phase
	return nil
}
func (e *PhaseChangedEvent) Message() string {
	return fmt.Sprintf("%s phase", e.Phase)
}

// TurnAdvancedEvent moves the session to a computed turn position. Both
// NextTurn and PreviousTurn results are recorded with this event, so the log
// keeps corrections visible instead of rewriting history.
type TurnAdvancedEvent struct {
	Round      int    `json:"round"`
	PlayerTurn Player `json:"player_turn"`
	Phase      Phase  `json:"phase"`
	Correction bool   `json:"correction,omitempty"`
}

func (e *TurnAdvancedEvent) Type() string { return "TurnAdvancedEvent" }
func (e *TurnAdvancedEvent) Apply(s *GameSession) error {
	if e.Round < 1 {
		return fmt.Errorf("battle round must be at least 1, got %d", e.Round)
	}
	s.Round = e.Round
	s.PlayerTurn = e.PlayerTurn
	s.Phase = e.Phase
	return nil
}
func (e *TurnAdvancedEvent) Message() string {
	if e.Correction {
		return fmt.Sprintf("rewound to round %d, %s turn", e.Round, e.PlayerTurn)
	}
	return fmt.Sprintf("round %d, %s turn", e.Round, e.PlayerTurn)
}

// CPGainedEvent appends a gain row to the ledger and credits the balance in
// the same application, so the two can never drift.
type CPGainedEvent struct {
	Txn CPTransaction `json:"txn"`
}

func (e *CPGainedEvent) Type() string { return "CPGainedEvent" }
func (e *CPGainedEvent) Apply(s *GameSession) error {
	if e.Txn.Type != CPGain {
		return fmt.Errorf("CPGainedEvent carries a %q transaction", e.Txn.Type)
	}
	if e.Txn.Amount <= 0 {
		return fmt.Errorf("CP gain amount must be positive, got %d", e.Txn.Amount)
	}
	s.Ledger = append(s.Ledger, e.Txn)
	s.State(e.Txn.Player).CP += e.Txn.Amount
	return nil
}
func (e *CPGainedEvent) Message() string {
	return fmt.Sprintf("%s gains %dCP (%s)", e.Txn.Player, e.Txn.Amount, e.Txn.Reason)
}

// CPSpentEvent appends a spend row to the ledger and debits the balance.
type CPSpentEvent struct {
	Txn CPTransaction `json:"txn"`
}

func (e *CPSpentEvent) Type() string { return "CPSpentEvent" }
func (e *CPSpentEvent) Apply(s *GameSession) error {
	if e.Txn.Type != CPSpend {
		return fmt.Errorf("CPSpentEvent carries a %q transaction", e.Txn.Type)
	}
	if e.Txn.Amount <= 0 {
		return fmt.Errorf("CP spend amount must be positive, got %d", e.Txn.Amount)
	}
	ps := s.State(e.Txn.Player)
	if e.Txn.Amount > ps.CP {
		return fmt.Errorf("%s has %dCP, cannot spend %d", e.Txn.Player, ps.CP, e.Txn.Amount)
	}
	s.Ledger = append(s.Ledger, e.Txn)
	ps.CP -= e.Txn.Amount
	return nil
}
func (e *CPSpentEvent) Message() string {
	if e.Txn.Stratagem != "" {
		return fmt.Sprintf("%s spends %dCP on %s", e.Txn.Player, e.Txn.Amount, e.Txn.Stratagem)
	}
	return fmt.Sprintf("%s spends %dCP (%s)", e.Txn.Player, e.Txn.Amount, e.Txn.Reason)
}

// SecondaryDrawnEvent adds a secondary to a player's active list and records
// the draw in the deck history.
type SecondaryDrawnEvent struct {
	Player Player `json:"player"`
	Name   string `json:"name"`
	Round  int    `json:"round"`
}

func (e *SecondaryDrawnEvent) Type() string { return "SecondaryDrawnEvent" }
func (e *SecondaryDrawnEvent) Apply(s *GameSession) error {
	ps := s.State(e.Player)
	if ps.HasActiveSecondary(e.Name) {
		return fmt.Errorf("%s already has %s active", e.Player, e.Name)
	}
	ps.ActiveSecondaries = append(ps.ActiveSecondaries, e.Name)
	ps.Deck = append(ps.Deck, DeckEntry{
		Name:       e.Name,
		DrawnRound: e.Round,
		Status:     SecondaryActive,
	})
	return nil
}
func (e *SecondaryDrawnEvent) Message() string {
	return fmt.Sprintf("%s draws %s", e.Player, e.Name)
}

// SecondaryScoredEvent credits VP for an active secondary. When Completes is
// set (tactical cards that complete on scoring) the card also leaves the
// active list and its deck entry is marked scored.
type SecondaryScoredEvent struct {
	Player    Player `json:"player"`
	Name      string `json:"name"`
	VP        int    `json:"vp"`
	Round     int    `json:"round"`
	Phase     Phase  `json:"phase"`
	Turn      Player `json:"turn"`
	Detail    string `json:"detail,omitempty"`
	Completes bool   `json:"completes,omitempty"`
}

func (e *SecondaryScoredEvent) Type() string { return "SecondaryScoredEvent" }
func (e *SecondaryScoredEvent) Apply(s *GameSession) error {
	if e.VP < 0 {
		return fmt.Errorf("secondary VP must not be negative, got %d", e.VP)
	}
	ps := s.State(e.Player)
	if !ps.HasActiveSecondary(e.Name) {
		return fmt.Errorf("%s is not active for %s", e.Name, e.Player)
	}

	prog, ok := ps.Secondaries[e.Name]
	if !ok {
		prog = NewSecondaryProgress(e.Name)
		ps.Secondaries[e.Name] = prog
	}
	prog.VPScored += e.VP
	prog.LastScoredRound = e.Round
	prog.LastScoredPhase = e.Phase
	prog.RoundVP[e.Round] += e.VP
	prog.TurnVP[TurnKey(e.Round, e.Turn)] += e.VP
	prog.Log = append(prog.Log, ScoreNote{
		Round: e.Round, Phase: e.Phase, Turn: e.Turn, VP: e.VP, Detail: e.Detail,
	})

	ps.VP += e.VP

	if e.Completes {
		ps.removeActiveSecondary(e.Name)
		for i := range ps.Deck {
			if ps.Deck[i].Name == e.Name && ps.Deck[i].Status == SecondaryActive {
				ps.Deck[i].Status = SecondaryScored
				ps.Deck[i].ScoredRound = e.Round
			}
		}
	}
	return nil
}
func (e *SecondaryScoredEvent) Message() string {
	return fmt.Sprintf("%s scores %dVP for %s", e.Player, e.VP, e.Name)
}

// SecondaryDiscardedEvent removes an active secondary without scoring it.
type SecondaryDiscardedEvent struct {
	Player Player `json:"player"`
	Name   string `json:"name"`
	Round  int    `json:"round"`
}

func (e *SecondaryDiscardedEvent) Type() string { return "SecondaryDiscardedEvent" }
func (e *SecondaryDiscardedEvent) Apply(s *GameSession) error {
	ps := s.State(e.Player)
	if !ps.HasActiveSecondary(e.Name) {
		return fmt.Errorf("%s is not active for %s", e.Name, e.Player)
	}
	ps.removeActiveSecondary(e.Name)
	for i := range ps.Deck {
		if ps.Deck[i].Name == e.Name && ps.Deck[i].Status == SecondaryActive {
			ps.Deck[i].Status = SecondaryDiscarded
			ps.Deck[i].DiscardedRound = e.Round
		}
	}
	return nil
}
func (e *SecondaryDiscardedEvent) Message() string {
	return fmt.Sprintf("%s discards %s", e.Player, e.Name)
}

// PrimaryScoredEvent credits primary mission VP.
type PrimaryScoredEvent struct {
	Player Player `json:"player"`
	VP     int    `json:"vp"`
	Round  int    `json:"round"`
	Held   int    `json:"objectives_held"`
}

func (e *PrimaryScoredEvent) Type() string { return "PrimaryScoredEvent" }
func (e *PrimaryScoredEvent) Apply(s *GameSession) error {
	if e.VP < 0 {
		return fmt.Errorf("primary VP must not be negative, got %d", e.VP)
	}
	s.State(e.Player).VP += e.VP
	return nil
}
func (e *PrimaryScoredEvent) Message() string {
	return fmt.Sprintf("%s scores %dVP on the primary (%d objectives)", e.Player, e.VP, e.Held)
}

// UnitAddedEvent registers a unit in a player's roster.
type UnitAddedEvent struct {
	Player Player `json:"player"`
	Unit   Unit   `json:"unit"`
}

func (e *UnitAddedEvent) Type() string { return "UnitAddedEvent" }
func (e *UnitAddedEvent) Apply(s *GameSession) error {
	if e.Unit.ID == "" {
		return fmt.Errorf("unit needs an id")
	}
	u := e.Unit
	s.State(e.Player).Units[u.ID] = &u
	return nil
}
func (e *UnitAddedEvent) Message() string {
	return fmt.Sprintf("%s fields %s", e.Player, e.Unit.Name)
}

// UnitDamagedEvent applies wounds to a unit, flooring at zero. A unit
// reaching zero wounds is marked destroyed; negative damage is a healing
// correction and brings a destroyed unit back into play.
type UnitDamagedEvent struct {
	Player Player `json:"player"`
	UnitID string `json:"unit_id"`
	Damage int    `json:"damage"`
	Source string `json:"source,omitempty"`
}

func (e *UnitDamagedEvent) Type() string { return "UnitDamagedEvent" }
func (e *UnitDamagedEvent) Apply(s *GameSession) error {
	u, ok := s.State(e.Player).Units[e.UnitID]
	if !ok {
		return fmt.Errorf("unit %s not found for %s", e.UnitID, e.Player)
	}
	u.Wounds -= e.Damage
	if u.Wounds <= 0 {
		u.Wounds = 0
		u.Destroyed = true
	} else if u.Destroyed {
		u.Destroyed = false
		if u.Models < 1 {
			u.Models = 1
		}
	}
	return nil
}
func (e *UnitDamagedEvent) Message() string {
	return fmt.Sprintf("%s's %s takes %d damage", e.Player, e.UnitID, e.Damage)
}

// UnitDestroyedEvent removes a unit from play outright.
type UnitDestroyedEvent struct {
	Player Player `json:"player"`
	UnitID string `json:"unit_id"`
}

func (e *UnitDestroyedEvent) Type() string { return "UnitDestroyedEvent" }
func (e *UnitDestroyedEvent) Apply(s *GameSession) error {
	u, ok := s.State(e.Player).Units[e.UnitID]
	if !ok {
		return fmt.Errorf("unit %s not found for %s", e.UnitID, e.Player)
	}
	u.Wounds = 0
	u.Models = 0
	u.Destroyed = true
	return nil
}
func (e *UnitDestroyedEvent) Message() string {
	return fmt.Sprintf("%s's %s is destroyed", e.Player, e.UnitID)
}

// ObjectiveControlChangedEvent records who holds a marker. An empty
// ControlledBy marks it contested.
type ObjectiveControlChangedEvent struct {
	MarkerID     string `json:"marker_id"`
	ControlledBy Player `json:"controlled_by,omitempty"`
}

func (e *ObjectiveControlChangedEvent) Type() string { return "ObjectiveControlChangedEvent" }
func (e *ObjectiveControlChangedEvent) Apply(s *GameSession) error {
	m, ok := s.Objectives[e.MarkerID]
	if !ok {
		m = &ObjectiveMarker{ID: e.MarkerID}
		s.Objectives[e.MarkerID] = m
	}
	m.ControlledBy = e.ControlledBy
	return nil
}
func (e *ObjectiveControlChangedEvent) Message() string {
	if e.ControlledBy == "" {
		return fmt.Sprintf("objective %s is contested", e.MarkerID)
	}
	return fmt.Sprintf("objective %s held by %s", e.MarkerID, e.ControlledBy)
}

// MissionSetEvent attaches a primary mission to the session.
type MissionSetEvent struct {
	Mission string `json:"mission"`
}

func (e *MissionSetEvent) Type() string { return "MissionSetEvent" }
func (e *MissionSetEvent) Apply(s *GameSession) error {
	s.Mission = e.Mission
	return nil
}
func (e *MissionSetEvent) Message() string {
	return fmt.Sprintf("mission set to %s", e.Mission)
}

// MissionModeSetEvent switches a player's secondary scoring mode.
type MissionModeSetEvent struct {
	Player Player      `json:"player"`
	Mode   MissionMode `json:"mode"`
}

func (e *MissionModeSetEvent) Type() string { return "MissionModeSetEvent" }
func (e *MissionModeSetEvent) Apply(s *GameSession) error {
	if e.Mode != ModeFixed && e.Mode != ModeTactical {
		return fmt.Errorf("unknown mission mode %q", e.Mode)
	}
	s.State(e.Player).MissionMode = e.Mode
	return nil
}
func (e *MissionModeSetEvent) Message() string {
	return fmt.Sprintf("%s plays %s missions", e.Player, e.Mode)
}

// VPCorrectedEvent adjusts a player's total VP by a signed delta, floored at
// zero. Used for table corrections; the log keeps the original entries.
type VPCorrectedEvent struct {
	Player Player `json:"player"`
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
}

func (e *VPCorrectedEvent) Type() string { return "VPCorrectedEvent" }
func (e *VPCorrectedEvent) Apply(s *GameSession) error {
	if e.Delta == 0 {
		return fmt.Errorf("VP correction delta must be non-zero")
	}
	ps := s.State(e.Player)
	ps.VP += e.Delta
	if ps.VP < 0 {
		ps.VP = 0
	}
	return nil
}
func (e *VPCorrectedEvent) Message() string {
	return fmt.Sprintf("%s's VP corrected by %+d (%s)", e.Player, e.Delta, e.Reason)
}

// FirstPlayerSetEvent records who goes first. When the match is still at the
// top of round 1 the active turn follows.
type FirstPlayerSetEvent struct {
	Player Player `json:"player"`
}

func (e *FirstPlayerSetEvent) Type() string { return "FirstPlayerSetEvent" }
func (e *FirstPlayerSetEvent) Apply(s *GameSession) error {
	s.FirstPlayer = e.Player
	if s.Round == 1 && s.Phase == PhaseCommand {
		s.PlayerTurn = e.Player
	}
	return nil
}
func (e *FirstPlayerSetEvent) Message() string {
	return fmt.Sprintf("%s goes first", e.Player)
}

// TranscriptLoggedEvent records one utterance with its game position.
type TranscriptLoggedEvent struct {
	Transcript Transcript `json:"transcript"`
}

func (e *TranscriptLoggedEvent) Type() string { return "TranscriptLoggedEvent" }
func (e *TranscriptLoggedEvent) Apply(s *GameSession) error {
	s.Transcripts = append(s.Transcripts, e.Transcript)
	return nil
}
func (e *TranscriptLoggedEvent) Message() string { return "" }

// NoteEvent is a free-form annotation, kept in the log for the table record.
type NoteEvent struct {
	Text string `json:"text"`
}

func (e *NoteEvent) Type() string               { return "NoteEvent" }
func (e *NoteEvent) Apply(s *GameSession) error { return nil }
func (e *NoteEvent) Message() string            { return e.Text }

// Package data provides the static reference layer: secondary objective
// cards, primary missions, and unit datasheets. Records are bundled with the
// binary and can be overridden by YAML files in the configured data
// directories.
package data

import (
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/parser"
)

// MissionType restricts which scoring mode a secondary can be drawn under.
type MissionType string

const (
	TypeFixed    MissionType = "fixed"
	TypeTactical MissionType = "tactical"
	TypeBoth     MissionType = "both"
)

// Allows reports whether a secondary of this type can be used in a mode.
func (t MissionType) Allows(mode game.MissionMode) bool {
	switch t {
	case TypeBoth:
		return true
	case TypeFixed:
		return mode == game.ModeFixed
	case TypeTactical:
		return mode == game.ModeTactical
	}
	return false
}

// DefaultMaxVP is the total VP cap applied when a secondary does not define
// its own.
const DefaultMaxVP = 20

// ScoringOption is one way a secondary can be scored. Bonus tiers carry a
// wound threshold ("10+") in their condition text or an explicit
// WoundThreshold; the scoring engine adds every matching tier cumulatively.
type ScoringOption struct {
	Condition      string `yaml:"condition"`
	VP             int    `yaml:"vp"`
	TargetType     string `yaml:"target_type,omitempty"`
	WoundThreshold int    `yaml:"wound_threshold,omitempty"`
}

// TurnCaps bounds the VP a secondary can score within one player turn.
// Zero means uncapped. Mode-specific caps take priority over the generic one.
type TurnCaps struct {
	Generic  int `yaml:"generic,omitempty"`
	Fixed    int `yaml:"fixed,omitempty"`
	Tactical int `yaml:"tactical,omitempty"`
}

// RoundRestriction bounds the rounds a secondary can be scored in. Zero
// means unrestricted.
type RoundRestriction struct {
	MinRound       int  `yaml:"min_round,omitempty"`
	MaxRound       int  `yaml:"max_round,omitempty"`
	RedrawOnRound1 bool `yaml:"redraw_on_round_1,omitempty"`
}

// Secondary is the static reference record for one secondary objective card.
type Secondary struct {
	Name             string           `yaml:"name"`
	MissionType      MissionType      `yaml:"mission_type"`
	MaxVP            int              `yaml:"max_vp,omitempty"`
	PerTurnCap       TurnCaps         `yaml:"per_turn_cap,omitempty"`
	FixedOptions     []ScoringOption  `yaml:"fixed_options,omitempty"`
	TacticalOptions  []ScoringOption  `yaml:"tactical_options,omitempty"`
	Rounds           RoundRestriction `yaml:"rounds,omitempty"`
	CompletesOnScore bool             `yaml:"completes_on_score,omitempty"`

	// Eligibility is an optional CEL expression evaluated against the game
	// context before a scoring attempt (e.g. "round >= 2 && phase == 'command'").
	Eligibility string `yaml:"eligibility,omitempty"`
}

// MaxVPOrDefault returns the total VP cap, defaulting when unset.
func (s *Secondary) MaxVPOrDefault() int {
	if s.MaxVP > 0 {
		return s.MaxVP
	}
	return DefaultMaxVP
}

// TurnCap returns the per-turn VP cap for a mode: the fixed-mode cap first,
// else the tactical-mode cap, else the generic cap. Zero means uncapped.
func (s *Secondary) TurnCap(mode game.MissionMode) int {
	if mode == game.ModeFixed && s.PerTurnCap.Fixed > 0 {
		return s.PerTurnCap.Fixed
	}
	if mode == game.ModeTactical && s.PerTurnCap.Tactical > 0 {
		return s.PerTurnCap.Tactical
	}
	return s.PerTurnCap.Generic
}

// OptionsFor returns the scoring options defined for a mode. The result can
// be empty; the scoring engine falls back to the other mode's options with
// an explicit substitution note.
func (s *Secondary) OptionsFor(mode game.MissionMode) []ScoringOption {
	if mode == game.ModeTactical {
		return s.TacticalOptions
	}
	return s.FixedOptions
}

// Mission is the static reference record for one primary mission.
type Mission struct {
	ID             string     `yaml:"id"`
	Name           string     `yaml:"name"`
	ScoringFormula string     `yaml:"scoring_formula"`
	ScoringPhase   game.Phase `yaml:"scoring_phase,omitempty"`
	MaxVP          int        `yaml:"max_vp,omitempty"`

	// Formula is the AST parsed once from ScoringFormula at load time.
	Formula parser.Formula `yaml:"-"`
}

// DefaultPrimaryMaxVP caps primary mission scoring when a mission does not
// define its own.
const DefaultPrimaryMaxVP = 50

// MaxVPOrDefault returns the primary VP cap, defaulting when unset.
func (m *Mission) MaxVPOrDefault() int {
	if m.MaxVP > 0 {
		return m.MaxVP
	}
	return DefaultPrimaryMaxVP
}

// Datasheet is the reference stat block for a unit type, used by the full
// context tier and the roster bootstrap.
type Datasheet struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Faction   string   `yaml:"faction,omitempty"`
	Wounds    int      `yaml:"wounds"`
	Toughness int      `yaml:"toughness,omitempty"`
	Save      int      `yaml:"save,omitempty"`
	Models    int      `yaml:"models,omitempty"`
	Keywords  []string `yaml:"keywords,omitempty"`
	Abilities []string `yaml:"abilities,omitempty"`
	RulesText string   `yaml:"rules_text,omitempty"`
}

package briefing

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/data"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
)

// recentTranscriptLimit bounds the transcript history carried by the
// transcript-bearing tiers.
const recentTranscriptLimit = 3

// Snapshot is the session-state-only view every tier carries.
type Snapshot struct {
	SessionID   string      `json:"session_id"`
	Round       int         `json:"round"`
	Phase       game.Phase  `json:"phase"`
	PlayerTurn  game.Player `json:"player_turn"`
	FirstPlayer game.Player `json:"first_player"`
	AttackerCP  int         `json:"attacker_cp"`
	DefenderCP  int         `json:"defender_cp"`
	AttackerVP  int         `json:"attacker_vp"`
	DefenderVP  int         `json:"defender_vp"`
	Mission     string      `json:"mission,omitempty"`
}

// UnitHealth is one roster entry with its remaining wounds.
type UnitHealth struct {
	Player    game.Player `json:"player"`
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Wounds    int         `json:"wounds"`
	MaxWounds int         `json:"max_wounds"`
	Models    int         `json:"models"`
	Destroyed bool        `json:"destroyed,omitempty"`
}

// SecondaryDetail is one active secondary with its progress.
type SecondaryDetail struct {
	Player   game.Player `json:"player"`
	Name     string      `json:"name"`
	VPScored int         `json:"vp_scored"`
	MaxVP    int         `json:"max_vp"`
}

// Bundle is the assembled context for one tier. Fields a tier does not
// promise stay zero and are omitted from serialization.
type Bundle struct {
	Tier        Tier                   `json:"tier"`
	State       Snapshot               `json:"state"`
	Units       []UnitHealth           `json:"units,omitempty"`
	UnitNames   []string               `json:"unit_names,omitempty"`
	Objectives  []game.ObjectiveMarker `json:"objectives,omitempty"`
	Secondaries []SecondaryDetail      `json:"secondaries,omitempty"`
	Transcripts []game.Transcript      `json:"transcripts,omitempty"`
	Datasheets  []data.Datasheet       `json:"datasheets,omitempty"`
	RulesText   string                 `json:"rules_text,omitempty"`
}

// Source provides the independent reads the builder composes. Each method is
// a separate fetch so tiers load exactly what they promise and nothing else.
type Source interface {
	Snapshot(ctx context.Context, sessionID string) (Snapshot, error)
	Units(ctx context.Context, sessionID string) ([]UnitHealth, error)
	UnitNames(ctx context.Context, sessionID string) ([]string, error)
	Objectives(ctx context.Context, sessionID string) ([]game.ObjectiveMarker, error)
	Secondaries(ctx context.Context, sessionID string) ([]SecondaryDetail, error)
	Transcripts(ctx context.Context, sessionID string, beforeSequence, limit int) ([]game.Transcript, error)
	Datasheets(ctx context.Context, sessionID string) ([]data.Datasheet, string, error)
}

// Builder assembles tier bundles from a Source.
type Builder struct {
	src Source
	log *zap.Logger
}

// NewBuilder creates a Builder over the given source.
func NewBuilder(src Source, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{src: src, log: log}
}

// Build assembles the bundle for a tier. beforeSequence scopes the
// transcript history for transcript-bearing tiers; pass 0 for "latest".
// Independent sub-fetches run concurrently.
func (b *Builder) Build(ctx context.Context, sessionID string, tier Tier, beforeSequence int) (*Bundle, error) {
	if !Valid(tier) {
		return nil, fmt.Errorf("unknown context tier %q", tier)
	}

	bundle := &Bundle{Tier: tier}
	g, gctx := errgroup.WithContext(ctx)

	// Every tier carries the session snapshot.
	g.Go(func() error {
		snap, err := b.src.Snapshot(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session snapshot: %w", err)
		}
		bundle.State = snap
		return nil
	})

	switch tier {
	case TierMinimal:
		// Session state only; no further fetches.

	case TierUnitsOnly:
		g.Go(func() error {
			units, err := b.src.Units(gctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to load unit roster: %w", err)
			}
			bundle.Units = units
			return nil
		})
		g.Go(func() error {
			ts, err := b.src.Transcripts(gctx, sessionID, beforeSequence, recentTranscriptLimit)
			if err != nil {
				return fmt.Errorf("failed to load transcript history: %w", err)
			}
			bundle.Transcripts = ts
			return nil
		})

	case TierUnitNames:
		g.Go(func() error {
			names, err := b.src.UnitNames(gctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to load unit names: %w", err)
			}
			bundle.UnitNames = names
			return nil
		})

	case TierObjectives:
		g.Go(func() error {
			markers, err := b.src.Objectives(gctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to load objective markers: %w", err)
			}
			bundle.Objectives = markers
			return nil
		})
		g.Go(func() error {
			names, err := b.src.UnitNames(gctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to load unit names: %w", err)
			}
			bundle.UnitNames = names
			return nil
		})

	case TierSecondaries:
		g.Go(func() error {
			secs, err := b.src.Secondaries(gctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to load active secondaries: %w", err)
			}
			bundle.Secondaries = secs
			return nil
		})
		g.Go(func() error {
			names, err := b.src.UnitNames(gctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to load unit names: %w", err)
			}
			bundle.UnitNames = names
			return nil
		})

	case TierFull:
		g.Go(func() error {
			units, err := b.src.Units(gctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to load unit roster: %w", err)
			}
			bundle.Units = units
			names := make([]string, 0, len(units))
			for _, u := range units {
				names = append(names, u.Name)
			}
			bundle.UnitNames = names
			return nil
		})
		g.Go(func() error {
			markers, err := b.src.Objectives(gctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to load objective markers: %w", err)
			}
			bundle.Objectives = markers
			return nil
		})
		g.Go(func() error {
			secs, err := b.src.Secondaries(gctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to load active secondaries: %w", err)
			}
			bundle.Secondaries = secs
			return nil
		})
		g.Go(func() error {
			ts, err := b.src.Transcripts(gctx, sessionID, beforeSequence, recentTranscriptLimit)
			if err != nil {
				return fmt.Errorf("failed to load transcript history: %w", err)
			}
			bundle.Transcripts = ts
			return nil
		})
		g.Go(func() error {
			sheets, rulesText, err := b.src.Datasheets(gctx, sessionID)
			if err != nil {
				return fmt.Errorf("failed to load datasheets: %w", err)
			}
			bundle.Datasheets = sheets
			bundle.RulesText = rulesText
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

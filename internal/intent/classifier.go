// Package intent classifies table utterances. A single model call both
// gatekeeps (is this about the game at all?) and buckets the utterance into
// one of seven intents, each bound to a fixed context tier. The mapping is
// not negotiable: the tier is always derived from the intent here, never
// taken from the provider's output verbatim.
package intent

import (
	"context"

	"go.uber.org/zap"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/briefing"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
)

// Intent is one of the seven utterance categories.
type Intent string

const (
	SimpleState      Intent = "SIMPLE_STATE"
	UnitHealth       Intent = "UNIT_HEALTH"
	CombatLogging    Intent = "COMBAT_LOGGING"
	ObjectiveControl Intent = "OBJECTIVE_CONTROL"
	SecondaryScoring Intent = "SECONDARY_SCORING"
	Strategic        Intent = "STRATEGIC"
	Unclear          Intent = "UNCLEAR"
)

// tierByIntent is the fixed intent → context tier table.
var tierByIntent = map[Intent]briefing.Tier{
	SimpleState:      briefing.TierMinimal,
	UnitHealth:       briefing.TierUnitsOnly,
	CombatLogging:    briefing.TierUnitsOnly,
	ObjectiveControl: briefing.TierObjectives,
	SecondaryScoring: briefing.TierSecondaries,
	Strategic:        briefing.TierFull,
	Unclear:          briefing.TierFull,
}

// TierFor returns the context tier an intent requires. Unknown intents get
// the full tier; full is the safe fallback, never a cheaper guess.
func TierFor(i Intent) briefing.Tier {
	if t, ok := tierByIntent[i]; ok {
		return t
	}
	return briefing.TierFull
}

// Known reports whether i is one of the seven intents.
func Known(i Intent) bool {
	_, ok := tierByIntent[i]
	return ok
}

// Classification is the ephemeral per-utterance result. It is consumed
// immediately to pick the context bundle and never persisted.
type Classification struct {
	IsGameRelated bool          `json:"is_game_related"`
	Intent        Intent        `json:"intent"`
	ContextTier   briefing.Tier `json:"context_tier"`
	Confidence    float64       `json:"confidence"`
	Reasoning     string        `json:"reasoning,omitempty"`
}

// Request carries an utterance with the game position it arrived in.
type Request struct {
	Utterance string
	Round     int
	Phase     game.Phase
	Turn      game.Player
	Recent    []game.Transcript
}

// Provider is the model call behind classification. Implementations must
// honor context cancellation so a newer utterance can supersede an in-flight
// call.
type Provider interface {
	Classify(ctx context.Context, req Request) (Classification, error)
}

// Orchestrator wraps a Provider with gatekeeping, the fixed tier mapping,
// and fail-open error handling.
type Orchestrator struct {
	provider Provider
	log      *zap.Logger
}

// NewOrchestrator creates an Orchestrator over the given provider.
func NewOrchestrator(provider Provider, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{provider: provider, log: log}
}

// failOpen is the classification used when the provider cannot be trusted:
// treat the utterance as game-related but unclear and load everything.
// Correct game tracking beats cost control when in doubt.
func failOpen() Classification {
	return Classification{
		IsGameRelated: true,
		Intent:        Unclear,
		ContextTier:   briefing.TierFull,
	}
}

// Classify runs the provider and normalizes its output. Provider errors,
// cancellations, and malformed results all fail open to UNCLEAR/full rather
// than propagating; nothing here ever blocks the turn.
func (o *Orchestrator) Classify(ctx context.Context, req Request) Classification {
	if o.provider == nil {
		return failOpen()
	}
	raw, err := o.provider.Classify(ctx, req)
	if err != nil {
		o.log.Warn("intent classification failed, failing open",
			zap.String("utterance", req.Utterance),
			zap.Error(err))
		return failOpen()
	}

	if !Known(raw.Intent) {
		o.log.Warn("provider returned unknown intent, failing open",
			zap.String("intent", string(raw.Intent)))
		return failOpen()
	}

	// Gatekeeping precedes classification: off-topic chatter is forced to
	// the safe fallback no matter what intent came back.
	if !raw.IsGameRelated {
		raw.Intent = Unclear
	}

	raw.ContextTier = TierFor(raw.Intent)
	if raw.Confidence < 0 {
		raw.Confidence = 0
	}
	if raw.Confidence > 1 {
		raw.Confidence = 1
	}
	return raw
}

// Merge combines two classifications of the same utterance from separate
// extraction passes. The higher-confidence record wins contested fields;
// non-empty strings are preferred over empty ones. The result's tier is
// re-derived from the winning intent.
func Merge(a, b Classification) Classification {
	base, other := a, b
	if b.Confidence > a.Confidence {
		base, other = b, a
	}
	if base.Reasoning == "" {
		base.Reasoning = other.Reasoning
	}
	if !Known(base.Intent) && Known(other.Intent) {
		base.Intent = other.Intent
	}
	base.IsGameRelated = base.IsGameRelated || other.IsGameRelated
	base.ContextTier = TierFor(base.Intent)
	return base
}

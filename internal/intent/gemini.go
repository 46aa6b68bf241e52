package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const classifierSystemPrompt = `You are the intent gatekeeper for a Warhammer 40K game tracker listening
to table talk. Decide whether the utterance is about the game in progress,
and if so classify it into exactly one intent:

SIMPLE_STATE      - phase changes, turn changes, CP gains/spends, scores read back
UNIT_HEALTH       - wounds, casualties, unit status
COMBAT_LOGGING    - attacks, damage dealt, units destroyed
OBJECTIVE_CONTROL - who holds which objective marker
SECONDARY_SCORING - drawing, scoring, or discarding secondary objectives
STRATEGIC         - rules questions, tactical advice, army analysis
UNCLEAR           - game-related but you cannot tell what is wanted

If the utterance is not about the game, set is_game_related to false.`

// classifierResponse is the wire shape the model is constrained to.
type classifierResponse struct {
	IsGameRelated bool    `json:"is_game_related"`
	Intent        string  `json:"intent"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
}

// classifierSchema constrains the model to the classification JSON shape.
func classifierSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"is_game_related": {Type: genai.TypeBoolean},
			"intent": {
				Type: genai.TypeString,
				Enum: []string{
					string(SimpleState), string(UnitHealth), string(CombatLogging),
					string(ObjectiveControl), string(SecondaryScoring),
					string(Strategic), string(Unclear),
				},
			},
			"confidence": {Type: genai.TypeNumber},
			"reasoning":  {Type: genai.TypeString},
		},
		Required: []string{"is_game_related", "intent", "confidence"},
	}
}

// GeminiProvider classifies utterances with a Gemini model constrained to a
// JSON response schema.
type GeminiProvider struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewGeminiProvider creates a provider against the Gemini API.
func NewGeminiProvider(ctx context.Context, apiKey, model string, log *zap.Logger) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if log == nil {
		log = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model, log: log}, nil
}

// Classify sends one schema-constrained call. The context is honored for
// cancellation; a superseded call returns the context error to the caller,
// which fails open.
func (p *GeminiProvider) Classify(ctx context.Context, req Request) (Classification, error) {
	prompt := buildUserPrompt(req)

	temperature := float32(0)
	resp, err := p.client.Models.GenerateContent(ctx,
		p.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(classifierSystemPrompt, genai.RoleUser),
			Temperature:       &temperature,
			ResponseMIMEType:  "application/json",
			ResponseSchema:    classifierSchema(),
		},
	)
	if err != nil {
		return Classification{}, fmt.Errorf("gemini classify failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return Classification{}, fmt.Errorf("gemini returned an empty response")
	}

	var wire classifierResponse
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return Classification{}, fmt.Errorf("failed to decode classification: %w", err)
	}

	return Classification{
		IsGameRelated: wire.IsGameRelated,
		Intent:        Intent(wire.Intent),
		Confidence:    wire.Confidence,
		Reasoning:     wire.Reasoning,
	}, nil
}

// buildUserPrompt renders the utterance with its game position and recent
// table talk, oldest first.
func buildUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Battle round %d, %s phase, %s turn.\n", req.Round, req.Phase, req.Turn)
	if len(req.Recent) > 0 {
		b.WriteString("Recent table talk:\n")
		for _, t := range req.Recent {
			fmt.Fprintf(&b, "  [%d] %s\n", t.Sequence, t.Text)
		}
	}
	fmt.Fprintf(&b, "Utterance: %q\n", req.Utterance)
	return b.String()
}

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/briefing"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/toolcall"
)

const callerSystemPrompt = `You are the scribe for a Warhammer 40K (10th edition) game tracker. You
receive one transcribed table utterance plus a context bundle describing the
game state. Emit the tool calls that record what happened, in order, as a
JSON array. Emit an empty array when the utterance needs no recording.

Only reference units, objectives, and secondaries present in the context
bundle. Player is always "attacker" or "defender". Do not invent amounts;
use exactly what was said.`

// callerSchema constrains the model to a JSON array of tool calls. Args stay
// a free-form object; the validator enforces per-tool shapes afterwards.
func callerSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name": {Type: genai.TypeString},
				"args": {Type: genai.TypeObject},
			},
			Required: []string{"name"},
		},
	}
}

// GeminiCaller extracts tool calls with a Gemini model constrained to a JSON
// response schema.
type GeminiCaller struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewGeminiCaller creates a caller against the Gemini API.
func NewGeminiCaller(ctx context.Context, apiKey, model string, log *zap.Logger) (*GeminiCaller, error) {
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
	return &GeminiCaller{client: client, model: model, log: log}, nil
}

// Call sends one schema-constrained extraction request. The bundle is
// serialized as-is; tiers already scoped it to what this utterance needs.
func (c *GeminiCaller) Call(ctx context.Context, utterance string, bundle *briefing.Bundle) ([]toolcall.ToolCall, error) {
	bundleJSON, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize context bundle: %w", err)
	}

	var prompt strings.Builder
	prompt.WriteString("Context bundle:\n")
	prompt.Write(bundleJSON)
	fmt.Fprintf(&prompt, "\n\nUtterance: %q\n", utterance)

	temperature := float32(0)
	resp, err := c.client.Models.GenerateContent(ctx,
		c.model,
		[]*genai.Content{genai.NewContentFromText(prompt.String(), genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(callerSystemPrompt, genai.RoleUser),
			Temperature:       &temperature,
			ResponseMIMEType:  "application/json",
			ResponseSchema:    callerSchema(),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini tool extraction failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var calls []toolcall.ToolCall
	if err := json.Unmarshal([]byte(text), &calls); err != nil {
		return nil, fmt.Errorf("failed to decode tool calls: %w", err)
	}
	for i := range calls {
		if calls[i].Args == nil {
			calls[i].Args = map[string]any{}
		}
	}
	return calls, nil
}

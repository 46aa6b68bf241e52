// Package session wires the full utterance pipeline: transcript logging,
// intent classification, tiered context assembly, tool-call extraction,
// argument validation, rules checks, and event application.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/briefing"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/data"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/intent"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/rules"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/toolcall"
)

// supersedeTTL bounds how long an in-flight utterance blocks supersession
// bookkeeping after its owner stops responding.
const supersedeTTL = 30 * time.Second

// Store defines the dependency required by Session to persist events.
type Store interface {
	Append(evt game.Event) error
	Load() ([]game.Event, error)
	Close() error
}

// ToolCaller turns an utterance plus its context bundle into structured tool
// calls. Implementations must honor context cancellation so a newer
// utterance can supersede an in-flight call.
type ToolCaller interface {
	Call(ctx context.Context, utterance string, bundle *briefing.Bundle) ([]toolcall.ToolCall, error)
}

// Reply is what a surface shows the table after one utterance.
type Reply struct {
	Ignored        bool                  `json:"ignored,omitempty"`
	Classification intent.Classification `json:"classification"`
	Messages       []string              `json:"messages,omitempty"`
	Warnings       []string              `json:"warnings,omitempty"`
	Rejections     []string              `json:"rejections,omitempty"`
}

// Session manages the cohesive loop of taking utterances, extracting tool
// calls, validating them against the rules, persisting events, and projecting
// the GameSession.
type Session struct {
	mu sync.Mutex

	id         string
	lib        *data.Library
	store      Store
	state      *game.GameSession
	registry   *rules.Registry
	engine     *rules.SecondaryEngine
	classifier *intent.Orchestrator
	builder    *briefing.Builder
	caller     ToolCaller
	validator  *toolcall.Validator
	tracker    *intent.Tracker
	log        *zap.Logger
}

// Config carries the injectable collaborators for a Session. Provider and
// Caller may be nil for offline surfaces; classification then fails open and
// utterances are not turned into tool calls.
type Config struct {
	ID       string
	DataDirs []string
	Store    Store
	Provider intent.Provider
	Caller   ToolCaller
	Clock    intent.Clock
	Log      *zap.Logger
}

// NewSession bootstraps the session pipeline, replaying the event log into
// the in-memory projection.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = intent.SystemClock{}
	}

	lib, err := data.NewLibrary(cfg.DataDirs, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to load reference library: %w", err)
	}

	reg, err := rules.NewRegistry(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rules registry: %w", err)
	}

	s := &Session{
		id:         cfg.ID,
		lib:        lib,
		store:      cfg.Store,
		registry:   reg,
		engine:     rules.NewSecondaryEngine(lib, reg, cfg.Log),
		classifier: intent.NewOrchestrator(cfg.Provider, cfg.Log),
		caller:     cfg.Caller,
		validator:  toolcall.NewValidator(),
		tracker:    intent.NewTracker(supersedeTTL, cfg.Clock),
		log:        cfg.Log,
	}
	s.builder = briefing.NewBuilder(&stateSource{s: s}, cfg.Log)

	if err := s.RebuildState(); err != nil {
		return nil, err
	}
	return s, nil
}

// RebuildState reads the entire event log from the store and projects the
// latest GameSession.
func (s *Session) RebuildState() error {
	events, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load event log: %w", err)
	}

	proj := game.NewProjector()
	state, err := proj.Build(events)
	if err != nil {
		return fmt.Errorf("failed to project game state: %w", err)
	}
	if state.ID == "" {
		state.ID = s.id
	}

	s.state = state
	return nil
}

// State returns a deep copy of the current projection. Surfaces render from
// the copy, so they never observe the pipeline mutating the live state.
func (s *Session) State() *game.GameSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Library returns the loaded reference library.
func (s *Session) Library() *data.Library {
	return s.lib
}

// Engine returns the secondary scoring engine.
func (s *Session) Engine() *rules.SecondaryEngine {
	return s.engine
}

// HandleUtterance runs the full pipeline for one transcribed utterance. A
// newer utterance for the same session cancels any still-running model calls
// from this one; the superseded call returns an ignored reply instead of
// applying stale tool calls. The session mutex guards only the state reads
// and the final validate-and-apply step, never a model call, so a newer
// utterance is free to cancel an in-flight one.
func (s *Session) HandleUtterance(ctx context.Context, text string) (*Reply, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	release := s.tracker.Supersede(s.id, cancel)
	defer release()

	s.mu.Lock()
	seq := s.state.NextSequence()
	transcript := game.Transcript{
		Sequence: seq,
		Text:     text,
		Round:    s.state.Round,
		Phase:    s.state.Phase,
		Turn:     s.state.PlayerTurn,
	}
	if err := s.ApplyAndAppend(&game.TranscriptLoggedEvent{Transcript: transcript}); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	req := intent.Request{
		Utterance: text,
		Round:     transcript.Round,
		Phase:     transcript.Phase,
		Turn:      transcript.Turn,
		Recent:    s.state.RecentTranscripts(seq, 3),
	}
	s.mu.Unlock()

	cls := s.classifier.Classify(ctx, req)
	reply := &Reply{Classification: cls}

	if !cls.IsGameRelated {
		reply.Ignored = true
		return reply, nil
	}

	bundle, err := s.builder.Build(ctx, s.id, cls.ContextTier, seq)
	if err != nil {
		if ctx.Err() != nil {
			return superseded(reply), nil
		}
		return nil, fmt.Errorf("failed to build context bundle: %w", err)
	}

	if s.caller == nil {
		return reply, nil
	}

	calls, err := s.caller.Call(ctx, text, bundle)
	if err != nil {
		if ctx.Err() != nil {
			return superseded(reply), nil
		}
		return nil, fmt.Errorf("tool extraction failed: %w", err)
	}
	if ctx.Err() != nil {
		return superseded(reply), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, call := range calls {
		s.runCall(call, reply)
	}
	return reply, nil
}

// superseded marks a reply as dropped in favor of a newer utterance.
func superseded(reply *Reply) *Reply {
	reply.Ignored = true
	reply.Warnings = append(reply.Warnings, "superseded by a newer utterance")
	return reply
}

// Execute validates and dispatches a single tool call directly, bypassing
// classification. Used by surfaces that build calls themselves.
func (s *Session) Execute(call toolcall.ToolCall) *Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply := &Reply{}
	s.runCall(call, reply)
	return reply
}

// runCall validates one tool call and dispatches it, folding the outcome
// into the reply. The caller holds the session mutex.
func (s *Session) runCall(call toolcall.ToolCall, reply *Reply) {
	res := s.validator.Validate(call)
	if res.Unknown {
		s.log.Warn("unknown tool call passed through", zap.String("tool", call.Name))
		reply.Warnings = append(reply.Warnings, fmt.Sprintf("unknown tool %q ignored", call.Name))
		return
	}
	if !res.Valid {
		for _, e := range res.Errors {
			reply.Rejections = append(reply.Rejections, fmt.Sprintf("%s: %s", call.Name, e))
		}
		return
	}

	out := s.dispatch(call)
	reply.Messages = append(reply.Messages, out.Messages...)
	reply.Warnings = append(reply.Warnings, out.Warnings...)
	reply.Rejections = append(reply.Rejections, out.Rejections...)
	if out.Applied {
		s.state.LastTool = call.Name
	}
}

// ApplyAndAppend commits a finalized event to the store and updates memory.
// The append happens first so a crash loses at most the in-memory view,
// which RebuildState recovers.
func (s *Session) ApplyAndAppend(evt game.Event) error {
	if err := s.store.Append(evt); err != nil {
		return fmt.Errorf("failed to persist event log: %w", err)
	}

	if err := evt.Apply(s.state); err != nil {
		return fmt.Errorf("failed to apply event to memory state: %w", err)
	}

	return nil
}

// Close releases the underlying store.
func (s *Session) Close() error {
	return s.store.Close()
}

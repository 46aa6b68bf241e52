package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/briefing"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/game"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/intent"
	"github.com/AndrewDeWitt/GrimLog-sub001/internal/toolcall"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "log.jsonl"))
	require.NoError(t, err)

	s, err := NewSession(Config{ID: "test-game", Store: store})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func exec(s *Session, name string, args map[string]any) *Reply {
	return s.Execute(toolcall.ToolCall{Name: name, Args: args})
}

func TestExecuteStartGameAndQueryState(t *testing.T) {
	s := newTestSession(t)

	reply := exec(s, "start_game", map[string]any{
		"first_player": "defender", "mission": "take-and-hold",
		"attacker_mode": "fixed", "defender_mode": "tactical",
	})
	require.Empty(t, reply.Rejections)
	assert.Contains(t, reply.Messages[0], "defender goes first")

	assert.Equal(t, game.Defender, s.State().FirstPlayer)
	assert.Equal(t, game.ModeTactical, s.State().Defender.MissionMode)
	assert.Equal(t, "start_game", s.State().LastTool)

	reply = exec(s, "query_state", nil)
	require.Len(t, reply.Messages, 1)
	assert.Contains(t, reply.Messages[0], "round 1, command phase, defender turn")
}

func TestExecuteRejectsInvalidSchema(t *testing.T) {
	s := newTestSession(t)

	reply := exec(s, "gain_cp", map[string]any{"player": "spectator", "amount": 1})
	require.NotEmpty(t, reply.Rejections)
	assert.Contains(t, reply.Rejections[0], "gain_cp: args.player")
	assert.Empty(t, s.State().Ledger)
}

func TestExecuteUnknownToolWarnsAndIgnores(t *testing.T) {
	s := newTestSession(t)
	reply := exec(s, "roll_dice", map[string]any{"sides": 6})
	require.Len(t, reply.Warnings, 1)
	assert.Contains(t, reply.Warnings[0], `unknown tool "roll_dice" ignored`)
	assert.Empty(t, reply.Rejections)
}

func TestExecuteCPGainCapFlow(t *testing.T) {
	s := newTestSession(t)

	reply := exec(s, "gain_cp", map[string]any{"player": "attacker", "amount": 2, "reason": "turn start"})
	assert.Empty(t, reply.Warnings)
	assert.Empty(t, reply.Rejections)

	// Third point this turn passes with a rare-ability warning.
	reply = exec(s, "gain_cp", map[string]any{"player": "attacker", "amount": 1})
	require.Empty(t, reply.Rejections)
	require.Len(t, reply.Warnings, 1)
	assert.Contains(t, reply.Warnings[0], "rare ability")

	// Fourth is over the absolute cap.
	reply = exec(s, "gain_cp", map[string]any{"player": "attacker", "amount": 1})
	require.NotEmpty(t, reply.Rejections)
	assert.Contains(t, reply.Rejections[0], "absolute cap")

	assert.Equal(t, 3, s.State().Attacker.CP)
	assert.Equal(t, 3, s.State().LedgerBalance(game.Attacker))
}

func TestExecuteSpendCPInsufficientBalance(t *testing.T) {
	s := newTestSession(t)
	exec(s, "gain_cp", map[string]any{"player": "defender", "amount": 1})

	reply := exec(s, "spend_cp", map[string]any{"player": "defender", "amount": 2, "stratagem": "Counter-offensive"})
	require.NotEmpty(t, reply.Rejections)
	assert.Contains(t, reply.Rejections[0], "has 1CP, wants to spend 2")
	assert.Equal(t, 1, s.State().Defender.CP)
}

func TestExecuteUseStratagem(t *testing.T) {
	s := newTestSession(t)
	exec(s, "gain_cp", map[string]any{"player": "attacker", "amount": 2})

	reply := exec(s, "use_stratagem", map[string]any{"player": "attacker", "name": "Overwatch", "cost": 1})
	require.Empty(t, reply.Rejections)
	assert.Contains(t, reply.Messages[0], "Overwatch")
	assert.Equal(t, 1, s.State().Attacker.CP)

	// Free stratagems leave only a note.
	reply = exec(s, "use_stratagem", map[string]any{"player": "attacker", "name": "Command Re-roll", "cost": 0})
	require.Empty(t, reply.Rejections)
	assert.Contains(t, reply.Messages[0], "(free)")
	assert.Equal(t, 1, s.State().Attacker.CP)
}

func TestExecutePhaseAndTurnFlow(t *testing.T) {
	s := newTestSession(t)

	reply := exec(s, "update_phase", map[string]any{"phase": "shooting"})
	require.Empty(t, reply.Rejections)
	require.Len(t, reply.Warnings, 1)
	assert.Contains(t, reply.Warnings[0], "skipping the movement")
	assert.Equal(t, game.PhaseShooting, s.State().Phase)

	exec(s, "next_phase", nil)
	assert.Equal(t, game.PhaseCharge, s.State().Phase)

	reply = exec(s, "next_turn", nil)
	require.Empty(t, reply.Rejections)
	assert.Equal(t, 1, s.State().Round)
	assert.Equal(t, game.Defender, s.State().PlayerTurn)
	assert.Equal(t, game.PhaseCommand, s.State().Phase)

	reply = exec(s, "previous_turn", nil)
	assert.Contains(t, reply.Messages[0], "rewound")
	assert.Equal(t, game.Attacker, s.State().PlayerTurn)
}

func TestExecuteNextPhaseWrapsIntoNextTurn(t *testing.T) {
	s := newTestSession(t)
	exec(s, "update_phase", map[string]any{"phase": "fight"})

	exec(s, "next_phase", nil)
	assert.Equal(t, game.PhaseCommand, s.State().Phase)
	assert.Equal(t, game.Defender, s.State().PlayerTurn)
}

func TestExecuteSecondaryLifecycle(t *testing.T) {
	s := newTestSession(t)

	reply := exec(s, "draw_secondary", map[string]any{"player": "attacker", "name": "bring it down"})
	require.Empty(t, reply.Rejections)
	// The canonical library name lands in the deck history.
	assert.True(t, s.State().Attacker.HasActiveSecondary("Bring It Down"))

	// VP resolved from the scoring condition plus cumulative wound tiers.
	reply = exec(s, "score_secondary", map[string]any{
		"player": "attacker", "name": "Bring It Down", "vp": 0,
		"condition": "enemy monster or vehicle unit destroyed", "target_wounds": 15,
	})
	require.Empty(t, reply.Rejections, reply.Rejections)
	assert.Equal(t, 6, s.State().Attacker.VP)

	reply = exec(s, "discard_secondary", map[string]any{"player": "attacker", "name": "Bring It Down", "gain_cp": true})
	require.Empty(t, reply.Rejections)
	assert.False(t, s.State().Attacker.HasActiveSecondary("Bring It Down"))
	assert.Equal(t, 1, s.State().Attacker.CP)
}

func TestExecuteScoreSecondaryClampsToTurnCap(t *testing.T) {
	s := newTestSession(t)
	exec(s, "draw_secondary", map[string]any{"player": "attacker", "name": "Engage on All Fronts"})

	reply := exec(s, "score_secondary", map[string]any{"player": "attacker", "name": "Engage on All Fronts", "vp": 3})
	require.Empty(t, reply.Rejections)
	require.NotEmpty(t, reply.Warnings)
	assert.Contains(t, reply.Warnings[0], "clamped")
	assert.Equal(t, 2, s.State().Attacker.VP)
}

func TestExecuteScoreSecondaryUnknownCondition(t *testing.T) {
	s := newTestSession(t)
	exec(s, "draw_secondary", map[string]any{"player": "attacker", "name": "Assassination"})

	reply := exec(s, "score_secondary", map[string]any{
		"player": "attacker", "name": "Assassination", "vp": 0, "condition": "warlord duel",
	})
	require.NotEmpty(t, reply.Rejections)
	assert.Contains(t, reply.Rejections[0], "no scoring option")
}

func TestExecuteTacticalCompletesOnScoreLeavesPlay(t *testing.T) {
	s := newTestSession(t)
	exec(s, "set_mission_mode", map[string]any{"player": "defender", "mode": "tactical"})
	exec(s, "draw_secondary", map[string]any{"player": "defender", "name": "Capture Enemy Outpost"})

	reply := exec(s, "score_secondary", map[string]any{"player": "defender", "name": "Capture Enemy Outpost", "vp": 8})
	require.Empty(t, reply.Rejections)
	assert.Equal(t, 8, s.State().Defender.VP)
	assert.False(t, s.State().Defender.HasActiveSecondary("Capture Enemy Outpost"))
}

func TestExecuteScorePrimaryFromMissionFormula(t *testing.T) {
	s := newTestSession(t)
	exec(s, "set_mission", map[string]any{"mission": "take-and-hold"})
	exec(s, "update_objective_control", map[string]any{"marker_id": "obj-1", "controlled_by": "attacker"})
	exec(s, "update_objective_control", map[string]any{"marker_id": "obj-2", "controlled_by": "attacker"})

	reply := exec(s, "score_primary", map[string]any{"player": "attacker"})
	require.Empty(t, reply.Rejections)
	assert.Equal(t, 10, s.State().Attacker.VP)
}

func TestExecuteScorePrimaryWithoutMissionWarns(t *testing.T) {
	s := newTestSession(t)
	exec(s, "update_objective_control", map[string]any{"marker_id": "obj-1", "controlled_by": "defender"})

	reply := exec(s, "score_primary", map[string]any{"player": "defender"})
	require.Empty(t, reply.Rejections)
	require.NotEmpty(t, reply.Warnings)
	assert.Contains(t, reply.Warnings[0], "no mission set")
	assert.Equal(t, 5, s.State().Defender.VP)
}

func TestExecuteScorePrimaryClampsAtMissionCap(t *testing.T) {
	s := newTestSession(t)
	exec(s, "set_mission", map[string]any{"mission": "take-and-hold"})
	exec(s, "correct_vp", map[string]any{"player": "attacker", "delta": 48, "reason": "catch-up entry"})

	reply := exec(s, "score_primary", map[string]any{"player": "attacker", "vp": 10})
	require.Empty(t, reply.Rejections)
	require.NotEmpty(t, reply.Warnings)
	assert.Contains(t, reply.Warnings[0], "clamped to 2")
	assert.Equal(t, 50, s.State().Attacker.VP)

	reply = exec(s, "score_primary", map[string]any{"player": "attacker", "vp": 5})
	require.NotEmpty(t, reply.Rejections)
	assert.Contains(t, reply.Rejections[0], "primary cap")
}

func TestExecuteUnitTracking(t *testing.T) {
	s := newTestSession(t)

	reply := exec(s, "add_unit", map[string]any{
		"player": "defender", "unit_id": "boyz-1", "name": "Boyz", "wounds": 10, "models": 10,
	})
	require.Empty(t, reply.Rejections)
	boyz := func() *game.Unit { return s.State().Defender.Units["boyz-1"] }
	require.NotNil(t, boyz())
	assert.Equal(t, 10, boyz().MaxWounds)
	assert.Equal(t, 10, boyz().StartModels)

	exec(s, "damage_unit", map[string]any{"player": "defender", "unit_id": "boyz-1", "damage": 4, "source": "bolters"})
	assert.Equal(t, 6, boyz().Wounds)

	// Absolute wound updates are translated into damage deltas.
	exec(s, "update_unit_health", map[string]any{"player": "defender", "unit_id": "boyz-1", "wounds": 2})
	assert.Equal(t, 2, boyz().Wounds)

	reply = exec(s, "update_unit_health", map[string]any{"player": "defender", "unit_id": "boyz-1", "wounds": 50})
	require.NotEmpty(t, reply.Warnings)
	assert.Equal(t, 10, boyz().Wounds)

	exec(s, "destroy_unit", map[string]any{"player": "defender", "unit_id": "boyz-1"})
	assert.True(t, boyz().Destroyed)

	// Correcting the wounds back up revives the unit.
	exec(s, "update_unit_health", map[string]any{"player": "defender", "unit_id": "boyz-1", "wounds": 7})
	assert.Equal(t, 7, boyz().Wounds)
	assert.False(t, boyz().Destroyed)
}

func TestStateReturnsADetachedSnapshot(t *testing.T) {
	s := newTestSession(t)
	exec(s, "gain_cp", map[string]any{"player": "attacker", "amount": 2})

	snap := s.State()
	snap.Attacker.CP = 99
	snap.Ledger = nil

	assert.Equal(t, 2, s.State().Attacker.CP)
	assert.Equal(t, 2, s.State().LedgerBalance(game.Attacker))
}

func TestExecuteLogCombatHitsTheOpponent(t *testing.T) {
	s := newTestSession(t)
	exec(s, "add_unit", map[string]any{"player": "defender", "unit_id": "rhino-1", "name": "Rhino", "wounds": 10})

	reply := exec(s, "log_combat", map[string]any{
		"attacker": "attacker", "target_id": "rhino-1", "damage": 10, "description": "melta shot",
	})
	require.Empty(t, reply.Rejections)
	assert.True(t, s.State().Defender.Units["rhino-1"].Destroyed)
	assert.Contains(t, reply.Messages[len(reply.Messages)-1], "destroyed")
}

func TestExecuteCorrectVPFloor(t *testing.T) {
	s := newTestSession(t)
	exec(s, "correct_vp", map[string]any{"player": "attacker", "delta": 3})
	assert.Equal(t, 3, s.State().Attacker.VP)

	exec(s, "correct_vp", map[string]any{"player": "attacker", "delta": -20, "reason": "double counted"})
	assert.Equal(t, 0, s.State().Attacker.VP)
}

func TestStatePersistsAcrossRebuild(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.jsonl")

	store, err := NewFileStore(path)
	require.NoError(t, err)
	s, err := NewSession(Config{ID: "persist", Store: store})
	require.NoError(t, err)

	exec(s, "start_game", map[string]any{"first_player": "attacker"})
	exec(s, "gain_cp", map[string]any{"player": "attacker", "amount": 2})
	exec(s, "draw_secondary", map[string]any{"player": "attacker", "name": "Cleanse"})
	require.NoError(t, s.Close())

	store, err = NewFileStore(path)
	require.NoError(t, err)
	s2, err := NewSession(Config{ID: "persist", Store: store})
	require.NoError(t, err)
	defer s2.Close()

	assert.Equal(t, 2, s2.State().Attacker.CP)
	assert.Equal(t, 2, s2.State().LedgerBalance(game.Attacker))
	assert.True(t, s2.State().Attacker.HasActiveSecondary("Cleanse"))
}

func TestHandleUtteranceWithoutProviderFailsOpenAndLogsTranscript(t *testing.T) {
	s := newTestSession(t)

	reply, err := s.HandleUtterance(context.Background(), "orks take objective two")
	require.NoError(t, err)
	assert.False(t, reply.Ignored)
	assert.Equal(t, intent.Unclear, reply.Classification.Intent)
	assert.Empty(t, reply.Messages)

	require.Len(t, s.State().Transcripts, 1)
	assert.Equal(t, "orks take objective two", s.State().Transcripts[0].Text)
	assert.Equal(t, 1, s.State().Transcripts[0].Sequence)
}

// slowThenFastCaller blocks its first extraction on context cancellation and
// answers later ones immediately.
type slowThenFastCaller struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
}

func (c *slowThenFastCaller) Call(ctx context.Context, utterance string, bundle *briefing.Bundle) ([]toolcall.ToolCall, error) {
	c.mu.Lock()
	c.calls++
	first := c.calls == 1
	c.mu.Unlock()

	if first {
		close(c.entered)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []toolcall.ToolCall{
		{Name: "gain_cp", Args: map[string]any{"player": "attacker", "amount": 1}},
	}, nil
}

func TestHandleUtteranceNewerSupersedesInFlightCall(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "log.jsonl"))
	require.NoError(t, err)

	caller := &slowThenFastCaller{entered: make(chan struct{})}
	s, err := NewSession(Config{ID: "race-game", Store: store, Caller: caller})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	type outcome struct {
		reply *Reply
		err   error
	}
	firstDone := make(chan outcome, 1)
	go func() {
		r, err := s.HandleUtterance(context.Background(), "attacker gains a command point")
		firstDone <- outcome{r, err}
	}()

	// Wait until the first extraction is in flight, then issue the newer
	// utterance. It must cancel the older call instead of queueing behind it.
	<-caller.entered
	reply2, err := s.HandleUtterance(context.Background(), "attacker gains a command point, one")
	require.NoError(t, err)
	assert.False(t, reply2.Ignored)

	var first outcome
	select {
	case first = <-firstDone:
	case <-time.After(5 * time.Second):
		t.Fatal("older utterance never returned after being superseded")
	}
	require.NoError(t, first.err)
	assert.True(t, first.reply.Ignored)
	assert.Contains(t, first.reply.Warnings, "superseded by a newer utterance")

	// Only the newer utterance's tool calls were applied.
	assert.Equal(t, 1, s.State().Attacker.CP)
	assert.Equal(t, 1, s.State().LedgerBalance(game.Attacker))
}

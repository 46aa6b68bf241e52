package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand_BareTool(t *testing.T) {
	call := ParseCommand("next_turn")
	assert.Equal(t, "next_turn", call.Name)
	assert.Empty(t, call.Args)
}

func TestParseCommand_MultiWordTool(t *testing.T) {
	call := ParseCommand("gain cp player: attacker amount: 1")
	assert.Equal(t, "gain_cp", call.Name)
	assert.Equal(t, "attacker", call.Args["player"])
	assert.Equal(t, 1, call.Args["amount"])
}

func TestParseCommand_MultiWordValue(t *testing.T) {
	call := ParseCommand("score_secondary player: defender name: Engage on All Fronts vp: 2")
	assert.Equal(t, "score_secondary", call.Name)
	assert.Equal(t, "Engage on All Fronts", call.Args["name"])
	assert.Equal(t, 2, call.Args["vp"])
}

func TestParseCommand_BoolCoercion(t *testing.T) {
	call := ParseCommand("discard_secondary player: attacker name: Cleanse gain_cp: true")
	assert.Equal(t, true, call.Args["gain_cp"])
}

func TestParseCommand_NegativeInt(t *testing.T) {
	call := ParseCommand("correct_cp player: defender delta: -2 reason: double counted")
	assert.Equal(t, -2, call.Args["delta"])
	assert.Equal(t, "double counted", call.Args["reason"])
}

func TestParseCommand_EmptyInput(t *testing.T) {
	call := ParseCommand("   ")
	assert.Equal(t, "", call.Name)
	assert.Empty(t, call.Args)
}

func TestParseCommand_KeysAreLowercased(t *testing.T) {
	call := ParseCommand("update_phase Phase: shooting")
	assert.Equal(t, "shooting", call.Args["phase"])
}

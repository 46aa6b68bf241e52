package session

import (
	"strconv"
	"strings"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/toolcall"
)

// ParseCommand parses a typed REPL command into a tool call. The format is:
//
//	<tool> [<key>: <value> [<value>]*]*
//
// Multi-word tool names are joined with underscores to match the registry
// ("gain cp" and "gain_cp" are the same tool). Values that look like
// integers or booleans are coerced; everything else stays a string.
//
// Examples:
//
//	"gain cp player: attacker amount: 1"
//	"score_secondary player: defender name: Assassination vp: 5"
//	"update_phase phase: shooting"
//	"next turn"
func ParseCommand(input string) toolcall.ToolCall {
	call := toolcall.ToolCall{Args: make(map[string]any)}

	tokens := strings.Fields(strings.TrimSpace(input))
	if len(tokens) == 0 {
		return call
	}

	// Tool name is every token before the first "key:" token.
	var nameParts []string
	i := 0
	for i < len(tokens) {
		if strings.HasSuffix(tokens[i], ":") {
			break
		}
		nameParts = append(nameParts, tokens[i])
		i++
	}
	call.Name = strings.ToLower(strings.Join(nameParts, "_"))

	var currentKey string
	var currentValues []string

	flushKey := func() {
		if currentKey == "" {
			return
		}
		call.Args[currentKey] = coerce(strings.Join(currentValues, " "))
		currentKey = ""
		currentValues = nil
	}

	for i < len(tokens) {
		token := tokens[i]
		if strings.HasSuffix(token, ":") {
			flushKey()
			currentKey = strings.ToLower(strings.TrimSuffix(token, ":"))
		} else {
			currentValues = append(currentValues, token)
		}
		i++
	}
	flushKey()

	return call
}

// coerce turns a raw token into the JSON shape the validator expects.
func coerce(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

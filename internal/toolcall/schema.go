// Package toolcall validates the structured tool calls the language model
// emits before they reach the state machine. Each known tool carries a
// strict declarative schema; unknown tool names pass through unchanged for
// forward compatibility.
package toolcall

import (
	"fmt"
	"math"
	"strings"
)

// ToolCall is one structured call from the model.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Kind is a parameter's expected shape.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindBool   Kind = "bool"
	KindEnum   Kind = "enum"
)

// ParamSpec declares one named parameter with its type and constraints.
type ParamSpec struct {
	Name     string
	Kind     Kind
	Required bool
	Min      int      // int lower bound (inclusive); used when Min or Max is set
	Max      int      // int upper bound (inclusive)
	MaxLen   int      // string length cap; 0 means unlimited
	Enum     []string // allowed values for KindEnum
}

// ToolDef is the schema for one tool.
type ToolDef struct {
	Name   string
	Params []ParamSpec
}

// Result is the outcome of validating one tool call. An unknown tool is
// valid but flagged Unknown; the caller passes it through untouched.
type Result struct {
	Valid   bool     `json:"valid"`
	Unknown bool     `json:"unknown,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Validator validates tool calls against a registry of schemas.
type Validator struct {
	tools map[string]ToolDef
}

// NewValidator builds a Validator over the default tool registry.
func NewValidator() *Validator {
	v := &Validator{tools: make(map[string]ToolDef)}
	for _, def := range defaultTools() {
		v.tools[def.Name] = def
	}
	return v
}

// Known reports whether the validator carries a schema for the tool name.
func (v *Validator) Known(name string) bool {
	_, ok := v.tools[name]
	return ok
}

// Validate checks a call against its schema. Every violated field is
// reported with its path; the result is never a single generic error.
func (v *Validator) Validate(call ToolCall) Result {
	def, ok := v.tools[call.Name]
	if !ok {
		return Result{Valid: true, Unknown: true}
	}

	var errs []string
	for _, p := range def.Params {
		val, present := call.Args[p.Name]
		path := "args." + p.Name
		if !present || val == nil {
			if p.Required {
				errs = append(errs, fmt.Sprintf("%s: required parameter missing", path))
			}
			continue
		}
		if msg := checkParam(p, val); msg != "" {
			errs = append(errs, fmt.Sprintf("%s: %s", path, msg))
		}
	}

	// Arguments the schema does not declare are rejected too; the model
	// inventing fields is exactly the failure mode this layer exists for.
	declared := make(map[string]bool, len(def.Params))
	for _, p := range def.Params {
		declared[p.Name] = true
	}
	for name := range call.Args {
		if !declared[name] {
			errs = append(errs, fmt.Sprintf("args.%s: unexpected parameter", name))
		}
	}

	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	return Result{Valid: true}
}

// checkParam validates a single present value against its spec, returning
// an empty string when it passes.
func checkParam(p ParamSpec, val any) string {
	switch p.Kind {
	case KindString:
		s, ok := val.(string)
		if !ok {
			return fmt.Sprintf("expected a string, got %T", val)
		}
		if p.MaxLen > 0 && len(s) > p.MaxLen {
			return fmt.Sprintf("string length %d exceeds the cap of %d", len(s), p.MaxLen)
		}

	case KindInt:
		n, ok := asInt(val)
		if !ok {
			return fmt.Sprintf("expected an integer, got %T", val)
		}
		if (p.Min != 0 || p.Max != 0) && (n < p.Min || n > p.Max) {
			return fmt.Sprintf("%d is outside the allowed range [%d, %d]", n, p.Min, p.Max)
		}

	case KindBool:
		if _, ok := val.(bool); !ok {
			return fmt.Sprintf("expected a boolean, got %T", val)
		}

	case KindEnum:
		s, ok := val.(string)
		if !ok {
			return fmt.Sprintf("expected a string, got %T", val)
		}
		for _, allowed := range p.Enum {
			if s == allowed {
				return ""
			}
		}
		return fmt.Sprintf("%q is not one of [%s]", s, strings.Join(p.Enum, ", "))
	}
	return ""
}

// asInt accepts the numeric shapes JSON decoding produces. Floats must be
// integral.
func asInt(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}

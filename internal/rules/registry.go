package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"go.uber.org/zap"
)

// Registry manages the CEL environment used for secondary eligibility
// expressions.
type Registry struct {
	env *cel.Env
	log *zap.Logger
}

// NewRegistry initializes the CEL environment with the game-state variables
// eligibility expressions may reference.
func NewRegistry(log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	env, err := cel.NewEnv(
		cel.Variable("round", cel.IntType),
		cel.Variable("phase", cel.StringType),
		cel.Variable("turn", cel.StringType),
		cel.Variable("player", cel.StringType),
		cel.Variable("cp", cel.IntType),
		cel.Variable("vp", cel.IntType),
		cel.Variable("objectives_held", cel.IntType),
		cel.Variable("units_remaining", cel.IntType),
		cel.Variable("active_secondaries", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Registry{env: env, log: log}, nil
}

// Eligible evaluates an eligibility expression against the context. The
// check is advisory: a compile or evaluation failure is logged and treated
// as eligible rather than blocking play.
func (r *Registry) Eligible(expr string, ctx map[string]any) bool {
	if expr == "" {
		return true
	}
	ast, iss := r.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		r.log.Warn("eligibility expression failed to compile, allowing",
			zap.String("expr", expr), zap.Error(iss.Err()))
		return true
	}
	prg, err := r.env.Program(ast)
	if err != nil {
		r.log.Warn("eligibility program construction failed, allowing",
			zap.String("expr", expr), zap.Error(err))
		return true
	}
	out, _, err := prg.Eval(ctx)
	if err != nil {
		r.log.Warn("eligibility evaluation failed, allowing",
			zap.String("expr", expr), zap.Error(err))
		return true
	}
	passed, ok := out.Value().(bool)
	if !ok {
		r.log.Warn("eligibility expression is not boolean, allowing",
			zap.String("expr", expr))
		return true
	}
	return passed
}

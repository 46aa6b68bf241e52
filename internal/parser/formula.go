// Package parser implements the mission scoring-formula grammar.
//
// Mission cards describe primary scoring as short free-text formulas
// ("objectives_controlled * 5", "10 VP if 3+", "5 VP for 1-2, 10 VP for 3-4").
// The text is parsed exactly once at data-load time into a tagged-variant
// Formula; unparseable text becomes an explicit variant carrying the default
// multiplier fallback instead of an error.
package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// DefaultMultiplier is the per-objective VP used when a formula cannot be
// recognized. Mission text varies wildly; scoring must stay best-effort.
const DefaultMultiplier = 5

// formulaLexer tokenizes scoring formulas. Basic whitespace elision is
// enough for the grammar.
var formulaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Punct", Pattern: `[*+,\-]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

// formulaAST is the raw participle parse target; it is mapped onto the
// public Formula after parsing.
type formulaAST struct {
	Multiply *multiplyExpr `parser:"  @@"`
	Clauses  []*vpClause   `parser:"| @@ ( \",\"? @@ )*"`
}

type multiplyExpr struct {
	Factor int `parser:"\"objectives_controlled\" \"*\" @Int"`
}

type vpClause struct {
	VP        int            `parser:"@Int \"VP\""`
	Per       bool           `parser:"( @(\"per\" (\"objective\" | \"objectives\"))"`
	Threshold *thresholdExpr `parser:"| \"if\" @@"`
	Range     *rangeExpr     `parser:"| \"for\" @@ )"`
}

type thresholdExpr struct {
	Min int `parser:"@Int \"+\""`
}

type rangeExpr struct {
	Lo int `parser:"@Int"`
	Hi int `parser:"\"-\" @Int"`
}

var formulaParser = participle.MustBuild[formulaAST](
	participle.Lexer(formulaLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
	participle.UseLookahead(4),
)

// FormulaKind discriminates the Formula variants.
type FormulaKind string

const (
	// FormulaMultiply is "objectives_controlled * N".
	FormulaMultiply FormulaKind = "multiply"
	// FormulaPerObjective is "N VP per objective".
	FormulaPerObjective FormulaKind = "per_objective"
	// FormulaThreshold is "N VP if M+".
	FormulaThreshold FormulaKind = "threshold"
	// FormulaRanges is one or more "N VP for A-B" clauses.
	FormulaRanges FormulaKind = "ranges"
	// FormulaUnparseable is the fallback variant: held * DefaultMultiplier.
	FormulaUnparseable FormulaKind = "unparseable"
)

// VPRange is one "N VP for A-B" clause.
type VPRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
	VP int `json:"vp"`
}

// Formula is the parsed, evaluatable form of a mission scoring formula.
type Formula struct {
	Kind   FormulaKind `json:"kind"`
	Raw    string      `json:"raw"`
	PerVP  int         `json:"per_vp,omitempty"` // multiply / per_objective
	VP     int         `json:"vp,omitempty"`     // threshold
	Min    int         `json:"min,omitempty"`    // threshold
	Ranges []VPRange   `json:"ranges,omitempty"`
}

// ParseFormula recognizes a scoring formula against the known templates, in
// priority order. It never fails: unrecognized text yields the Unparseable
// variant, and the caller decides whether to log it.
func ParseFormula(raw string) Formula {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Formula{Kind: FormulaUnparseable, Raw: raw}
	}

	ast, err := formulaParser.ParseString("", text)
	if err != nil {
		return Formula{Kind: FormulaUnparseable, Raw: raw}
	}

	if ast.Multiply != nil {
		return Formula{Kind: FormulaMultiply, Raw: raw, PerVP: ast.Multiply.Factor}
	}

	// All remaining templates are VP clauses. Mixed clause kinds other than
	// ranges do not occur on real cards; the first clause decides.
	if len(ast.Clauses) == 0 {
		return Formula{Kind: FormulaUnparseable, Raw: raw}
	}
	first := ast.Clauses[0]
	switch {
	case first.Per:
		return Formula{Kind: FormulaPerObjective, Raw: raw, PerVP: first.VP}
	case first.Threshold != nil:
		return Formula{Kind: FormulaThreshold, Raw: raw, VP: first.VP, Min: first.Threshold.Min}
	case first.Range != nil:
		var ranges []VPRange
		for _, c := range ast.Clauses {
			if c.Range == nil {
				continue
			}
			ranges = append(ranges, VPRange{Lo: c.Range.Lo, Hi: c.Range.Hi, VP: c.VP})
		}
		return Formula{Kind: FormulaRanges, Raw: raw, Ranges: ranges}
	}
	return Formula{Kind: FormulaUnparseable, Raw: raw}
}

// VPFor evaluates the formula for a number of held objectives. Evaluation
// never fails; the unparseable variant falls back to the default multiplier.
func (f Formula) VPFor(held int) int {
	if held < 0 {
		held = 0
	}
	switch f.Kind {
	case FormulaMultiply, FormulaPerObjective:
		return held * f.PerVP
	case FormulaThreshold:
		if held >= f.Min {
			return f.VP
		}
		return 0
	case FormulaRanges:
		// First range containing held wins.
		for _, r := range f.Ranges {
			if held >= r.Lo && held <= r.Hi {
				return r.VP
			}
		}
		return 0
	default:
		return held * DefaultMultiplier
	}
}

// Recognized reports whether the formula matched a known template.
func (f Formula) Recognized() bool {
	return f.Kind != FormulaUnparseable
}

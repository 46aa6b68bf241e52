package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormulaMultiply(t *testing.T) {
	f := ParseFormula("objectives_controlled * 5")
	require.Equal(t, FormulaMultiply, f.Kind)
	assert.Equal(t, 5, f.PerVP)
	assert.True(t, f.Recognized())

	assert.Equal(t, 0, f.VPFor(0))
	assert.Equal(t, 15, f.VPFor(3))
}

func TestParseFormulaPerObjective(t *testing.T) {
	f := ParseFormula("5 VP per objective")
	require.Equal(t, FormulaPerObjective, f.Kind)
	assert.Equal(t, 5, f.PerVP)
	assert.Equal(t, 10, f.VPFor(2))

	// Plural reads the same.
	f = ParseFormula("4 VP per objectives")
	require.Equal(t, FormulaPerObjective, f.Kind)
	assert.Equal(t, 12, f.VPFor(3))
}

func TestParseFormulaThreshold(t *testing.T) {
	f := ParseFormula("10 VP if 3+")
	require.Equal(t, FormulaThreshold, f.Kind)
	assert.Equal(t, 0, f.VPFor(2))
	assert.Equal(t, 10, f.VPFor(3))
	assert.Equal(t, 10, f.VPFor(5))
}

func TestParseFormulaRanges(t *testing.T) {
	f := ParseFormula("5 VP for 1-2, 10 VP for 3-4")
	require.Equal(t, FormulaRanges, f.Kind)
	require.Len(t, f.Ranges, 2)

	assert.Equal(t, 0, f.VPFor(0))
	assert.Equal(t, 5, f.VPFor(1))
	assert.Equal(t, 5, f.VPFor(2))
	assert.Equal(t, 10, f.VPFor(3))
	assert.Equal(t, 10, f.VPFor(4))
	// Held count past every range scores nothing.
	assert.Equal(t, 0, f.VPFor(5))
}

func TestParseFormulaUnparseableFallsBack(t *testing.T) {
	for _, raw := range []string{
		"see mission card for ritual progress",
		"",
		"score as described in the pariah nexus pack",
	} {
		f := ParseFormula(raw)
		assert.Equal(t, FormulaUnparseable, f.Kind, raw)
		assert.False(t, f.Recognized())
		assert.Equal(t, 3*DefaultMultiplier, f.VPFor(3), raw)
	}
}

func TestParseFormulaCaseInsensitive(t *testing.T) {
	f := ParseFormula("5 vp PER Objective")
	assert.Equal(t, FormulaPerObjective, f.Kind)
}

func TestVPForClampsNegativeHeld(t *testing.T) {
	f := ParseFormula("objectives_controlled * 5")
	assert.Equal(t, 0, f.VPFor(-2))
}

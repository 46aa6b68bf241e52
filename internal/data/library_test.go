package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndrewDeWitt/GrimLog-sub001/internal/parser"
)

func TestNewLibraryLoadsBundledDefaults(t *testing.T) {
	lib, err := NewLibrary(nil, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, lib.AllSecondaries())

	sec, ok := lib.Secondary("Assassination")
	require.True(t, ok)
	assert.Equal(t, TypeBoth, sec.MissionType)
	assert.Equal(t, 20, sec.MaxVPOrDefault())

	_, ok = lib.Mission("take-and-hold")
	assert.True(t, ok)
}

func TestSecondaryLookupIsCaseInsensitive(t *testing.T) {
	lib, err := NewLibrary(nil, nil)
	require.NoError(t, err)

	for _, name := range []string{"bring it down", "BRING IT DOWN", "  Bring It Down  "} {
		sec, ok := lib.Secondary(name)
		require.True(t, ok, name)
		assert.Equal(t, "Bring It Down", sec.Name)
	}

	_, ok := lib.Secondary("nope")
	assert.False(t, ok)
}

func TestMissionFormulasAreParsedAtLoadTime(t *testing.T) {
	lib, err := NewLibrary(nil, nil)
	require.NoError(t, err)

	m, ok := lib.Mission("take-and-hold")
	require.True(t, ok)
	assert.Equal(t, parser.FormulaMultiply, m.Formula.Kind)

	m, ok = lib.Mission("priority-targets")
	require.True(t, ok)
	assert.Equal(t, parser.FormulaRanges, m.Formula.Kind)

	// Free-text formulas stay evaluatable through the fallback variant.
	m, ok = lib.Mission("the-ritual")
	require.True(t, ok)
	assert.Equal(t, parser.FormulaUnparseable, m.Formula.Kind)
	assert.Equal(t, 10, m.Formula.VPFor(2))
}

func TestDataDirOverridesAndExtendsDefaults(t *testing.T) {
	dir := t.TempDir()
	secDir := filepath.Join(dir, "secondaries")
	require.NoError(t, os.MkdirAll(secDir, 0o755))

	override := `name: Assassination
mission_type: fixed
max_vp: 15
fixed_options:
  - condition: enemy character unit destroyed
    vp: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(secDir, "assassination.yaml"), []byte(override), 0o644))

	extra := `name: Homebrew Relic Hunt
mission_type: both
max_vp: 12
`
	require.NoError(t, os.WriteFile(filepath.Join(secDir, "relic-hunt.yaml"), []byte(extra), 0o644))

	missionDir := filepath.Join(dir, "missions")
	require.NoError(t, os.MkdirAll(missionDir, 0o755))
	mission := `id: custom-sweep
name: Custom Sweep
scoring_formula: 3 VP per objective
`
	require.NoError(t, os.WriteFile(filepath.Join(missionDir, "sweep.yaml"), []byte(mission), 0o644))

	lib, err := NewLibrary([]string{dir}, nil)
	require.NoError(t, err)

	sec, ok := lib.Secondary("Assassination")
	require.True(t, ok)
	assert.Equal(t, 15, sec.MaxVP)
	assert.Equal(t, TypeFixed, sec.MissionType)

	_, ok = lib.Secondary("Homebrew Relic Hunt")
	assert.True(t, ok)

	m, ok := lib.Mission("custom-sweep")
	require.True(t, ok)
	assert.Equal(t, parser.FormulaPerObjective, m.Formula.Kind)
	assert.Equal(t, 3, m.Formula.PerVP)
}

func TestMissingDataDirIsNotAnError(t *testing.T) {
	lib, err := NewLibrary([]string{filepath.Join(t.TempDir(), "nope")}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, lib.AllSecondaries())
}

func TestMissionTypeAllows(t *testing.T) {
	assert.True(t, TypeBoth.Allows("fixed"))
	assert.True(t, TypeBoth.Allows("tactical"))
	assert.True(t, TypeFixed.Allows("fixed"))
	assert.False(t, TypeFixed.Allows("tactical"))
	assert.False(t, TypeTactical.Allows("fixed"))
	assert.False(t, MissionType("weird").Allows("fixed"))
}

func TestSecondaryTurnCapPrecedence(t *testing.T) {
	s := &Secondary{PerTurnCap: TurnCaps{Generic: 3, Fixed: 2}}
	assert.Equal(t, 2, s.TurnCap("fixed"))
	assert.Equal(t, 3, s.TurnCap("tactical"))

	uncapped := &Secondary{}
	assert.Zero(t, uncapped.TurnCap("fixed"))
}

// Package briefing assembles the bounded context bundle handed to the
// language model alongside an utterance. Each tier promises a fixed set of
// fields and never more; the bound is the whole point, since it caps token
// cost in proportion to how much context the classified intent needs.
package briefing

// Tier names a bound on how much session data is loaded before an AI call.
type Tier string

const (
	TierMinimal     Tier = "minimal"     // session state only
	TierUnitsOnly   Tier = "units_only"  // + roster with wounds, + recent transcripts
	TierUnitNames   Tier = "unit_names"  // + unit names, no health
	TierObjectives  Tier = "objectives"  // + objective markers, + unit names
	TierSecondaries Tier = "secondaries" // + active secondaries, + unit names
	TierFull        Tier = "full"        // + datasheets, abilities, rules text
)

// tierRanks orders tiers by data volume, smallest first.
var tierRanks = map[Tier]int{
	TierMinimal:     0,
	TierUnitsOnly:   1,
	TierUnitNames:   2,
	TierObjectives:  3,
	TierSecondaries: 4,
	TierFull:        5,
}

// Rank returns the tier's position in the volume ordering, or -1 for an
// unknown tier.
func Rank(t Tier) int {
	if r, ok := tierRanks[t]; ok {
		return r
	}
	return -1
}

// Valid reports whether t names a known tier.
func Valid(t Tier) bool {
	return Rank(t) >= 0
}

package data

// defaultSecondaries is the bundled secondary objective dataset. It covers
// the common 10th edition cards; campaign data directories can override or
// extend it with YAML files.
func defaultSecondaries() []*Secondary {
	return []*Secondary{
		{
			Name:        "Assassination",
			MissionType: TypeBoth,
			MaxVP:       20,
			FixedOptions: []ScoringOption{
				{Condition: "enemy character unit destroyed", VP: 5, TargetType: "CHARACTER"},
			},
			TacticalOptions: []ScoringOption{
				{Condition: "enemy character unit destroyed this turn", VP: 5, TargetType: "CHARACTER"},
			},
			CompletesOnScore: true,
		},
		{
			Name:        "Bring It Down",
			MissionType: TypeBoth,
			MaxVP:       20,
			FixedOptions: []ScoringOption{
				{Condition: "enemy monster or vehicle unit destroyed", VP: 2, TargetType: "MONSTER,VEHICLE"},
				{Condition: "10+ wounds", VP: 2, WoundThreshold: 10},
				{Condition: "15+ wounds", VP: 2, WoundThreshold: 15},
				{Condition: "20+ wounds", VP: 2, WoundThreshold: 20},
			},
			TacticalOptions: []ScoringOption{
				{Condition: "enemy monster or vehicle unit destroyed this turn", VP: 4, TargetType: "MONSTER,VEHICLE"},
			},
			CompletesOnScore: true,
		},
		{
			Name:        "Engage on All Fronts",
			MissionType: TypeBoth,
			MaxVP:       20,
			PerTurnCap:  TurnCaps{Fixed: 2, Tactical: 4},
			FixedOptions: []ScoringOption{
				{Condition: "units in three or more table quarters", VP: 1},
				{Condition: "units in all four table quarters", VP: 2},
			},
			TacticalOptions: []ScoringOption{
				{Condition: "units in three or more table quarters", VP: 2},
				{Condition: "units in all four table quarters", VP: 4},
			},
		},
		{
			Name:        "Behind Enemy Lines",
			MissionType: TypeBoth,
			MaxVP:       20,
			PerTurnCap:  TurnCaps{Fixed: 3, Tactical: 4},
			FixedOptions: []ScoringOption{
				{Condition: "one unit wholly within the enemy deployment zone", VP: 2},
				{Condition: "two or more units wholly within the enemy deployment zone", VP: 3},
			},
			TacticalOptions: []ScoringOption{
				{Condition: "one unit wholly within the enemy deployment zone", VP: 3},
				{Condition: "two or more units wholly within the enemy deployment zone", VP: 4},
			},
		},
		{
			Name:        "Cleanse",
			MissionType: TypeBoth,
			MaxVP:       20,
			PerTurnCap:  TurnCaps{Generic: 4},
			FixedOptions: []ScoringOption{
				{Condition: "one objective marker cleansed", VP: 2},
				{Condition: "two or more objective markers cleansed", VP: 4},
			},
			TacticalOptions: []ScoringOption{
				{Condition: "one objective marker cleansed", VP: 2},
				{Condition: "two or more objective markers cleansed", VP: 4},
			},
		},
		{
			Name:        "Storm Hostile Objective",
			MissionType: TypeTactical,
			MaxVP:       20,
			TacticalOptions: []ScoringOption{
				{Condition: "contested an objective the enemy controlled at the start of the turn", VP: 4},
				{Condition: "seized an objective the enemy controlled at the start of the turn", VP: 5},
			},
			Rounds:           RoundRestriction{MinRound: 2, RedrawOnRound1: true},
			CompletesOnScore: true,
		},
		{
			Name:        "Defend Stronghold",
			MissionType: TypeTactical,
			MaxVP:       20,
			TacticalOptions: []ScoringOption{
				{Condition: "controlled an objective in your deployment zone at the end of the enemy turn", VP: 3},
			},
			Rounds:           RoundRestriction{MinRound: 2, RedrawOnRound1: true},
			CompletesOnScore: true,
		},
		{
			Name:        "Capture Enemy Outpost",
			MissionType: TypeTactical,
			MaxVP:       20,
			TacticalOptions: []ScoringOption{
				{Condition: "controlled an objective in the enemy deployment zone", VP: 8},
			},
			CompletesOnScore: true,
		},
		{
			Name:        "A Tempting Target",
			MissionType: TypeTactical,
			MaxVP:       20,
			TacticalOptions: []ScoringOption{
				{Condition: "controlled the marked objective", VP: 5},
			},
			Rounds:           RoundRestriction{RedrawOnRound1: true},
			CompletesOnScore: true,
		},
		{
			Name:        "Secure No Man's Land",
			MissionType: TypeTactical,
			MaxVP:       20,
			TacticalOptions: []ScoringOption{
				{Condition: "controlled one objective in no man's land", VP: 2},
				{Condition: "controlled two or more objectives in no man's land", VP: 5},
			},
			CompletesOnScore: true,
		},
		{
			Name:        "Extend Battle Lines",
			MissionType: TypeTactical,
			MaxVP:       20,
			TacticalOptions: []ScoringOption{
				{Condition: "controlled an objective in your deployment zone and one in no man's land", VP: 5},
			},
			CompletesOnScore: true,
		},
		{
			Name:        "Overwhelming Force",
			MissionType: TypeTactical,
			MaxVP:       20,
			PerTurnCap:  TurnCaps{Tactical: 5},
			TacticalOptions: []ScoringOption{
				{Condition: "enemy unit on an objective destroyed this turn", VP: 3},
			},
			Eligibility: "round >= 1",
		},
		{
			Name:        "No Prisoners",
			MissionType: TypeTactical,
			MaxVP:       20,
			PerTurnCap:  TurnCaps{Tactical: 5},
			TacticalOptions: []ScoringOption{
				{Condition: "enemy unit destroyed this turn", VP: 2},
			},
		},
		{
			Name:        "Marked for Death",
			MissionType: TypeTactical,
			MaxVP:       20,
			TacticalOptions: []ScoringOption{
				{Condition: "one marked enemy unit destroyed", VP: 3},
				{Condition: "two or more marked enemy units destroyed", VP: 5},
			},
			Rounds:           RoundRestriction{MinRound: 2, RedrawOnRound1: true},
			CompletesOnScore: true,
		},
	}
}

// defaultMissions is the bundled primary mission dataset. Formula text is
// parsed into an AST by the library constructor.
func defaultMissions() []*Mission {
	return []*Mission{
		{
			ID:             "take-and-hold",
			Name:           "Take and Hold",
			ScoringFormula: "objectives_controlled * 5",
			ScoringPhase:   "command",
			MaxVP:          50,
		},
		{
			ID:             "scorched-earth",
			Name:           "Scorched Earth",
			ScoringFormula: "5 VP per objective",
			ScoringPhase:   "command",
			MaxVP:          50,
		},
		{
			ID:             "supply-drop",
			Name:           "Supply Drop",
			ScoringFormula: "10 VP if 2+",
			ScoringPhase:   "command",
			MaxVP:          50,
		},
		{
			ID:             "priority-targets",
			Name:           "Priority Targets",
			ScoringFormula: "5 VP for 1-2, 10 VP for 3-4",
			ScoringPhase:   "command",
			MaxVP:          50,
		},
		{
			ID:             "the-ritual",
			Name:           "The Ritual",
			ScoringFormula: "see mission card for ritual progress",
			ScoringPhase:   "command",
			MaxVP:          50,
		},
	}
}

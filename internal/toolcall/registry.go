package toolcall

// Shared enum values and bounds for the tool schemas.
var (
	playerEnum  = []string{"attacker", "defender"}
	phaseEnum   = []string{"command", "movement", "shooting", "charge", "fight"}
	modeEnum    = []string{"fixed", "tactical"}
	controlEnum = []string{"attacker", "defender", "contested"}
)

func player(required bool) ParamSpec {
	return ParamSpec{Name: "player", Kind: KindEnum, Required: required, Enum: playerEnum}
}

// defaultTools is the full tool surface the model may call. Bounds are
// deliberately tight: transcription noise produces wild numbers, and the
// schema is the first line of defense.
func defaultTools() []ToolDef {
	return []ToolDef{
		{Name: "start_game", Params: []ParamSpec{
			{Name: "first_player", Kind: KindEnum, Required: true, Enum: playerEnum},
			{Name: "mission", Kind: KindString, MaxLen: 100},
			{Name: "attacker_mode", Kind: KindEnum, Enum: modeEnum},
			{Name: "defender_mode", Kind: KindEnum, Enum: modeEnum},
		}},
		{Name: "end_game", Params: []ParamSpec{
			{Name: "winner", Kind: KindEnum, Enum: playerEnum},
		}},
		{Name: "update_phase", Params: []ParamSpec{
			{Name: "phase", Kind: KindEnum, Required: true, Enum: phaseEnum},
		}},
		{Name: "next_turn"},
		{Name: "previous_turn"},
		{Name: "next_phase"},

		{Name: "gain_cp", Params: []ParamSpec{
			player(true),
			{Name: "amount", Kind: KindInt, Required: true, Min: 1, Max: 20},
			{Name: "reason", Kind: KindString, MaxLen: 200},
		}},
		{Name: "spend_cp", Params: []ParamSpec{
			player(true),
			{Name: "amount", Kind: KindInt, Required: true, Min: 1, Max: 20},
			{Name: "reason", Kind: KindString, MaxLen: 200},
			{Name: "stratagem", Kind: KindString, MaxLen: 100},
		}},
		{Name: "use_stratagem", Params: []ParamSpec{
			player(true),
			{Name: "name", Kind: KindString, Required: true, MaxLen: 100},
			{Name: "cost", Kind: KindInt, Required: true, Min: 0, Max: 20},
		}},
		{Name: "correct_cp", Params: []ParamSpec{
			player(true),
			{Name: "delta", Kind: KindInt, Required: true, Min: -20, Max: 20},
			{Name: "reason", Kind: KindString, MaxLen: 200},
		}},

		{Name: "draw_secondary", Params: []ParamSpec{
			player(true),
			{Name: "name", Kind: KindString, Required: true, MaxLen: 100},
		}},
		{Name: "score_secondary", Params: []ParamSpec{
			player(true),
			{Name: "name", Kind: KindString, Required: true, MaxLen: 100},
			{Name: "vp", Kind: KindInt, Required: true, Min: 0, Max: 100},
			{Name: "condition", Kind: KindString, MaxLen: 200},
			{Name: "target_wounds", Kind: KindInt, Min: 0, Max: 100},
		}},
		{Name: "discard_secondary", Params: []ParamSpec{
			player(true),
			{Name: "name", Kind: KindString, Required: true, MaxLen: 100},
			{Name: "gain_cp", Kind: KindBool},
		}},
		{Name: "score_primary", Params: []ParamSpec{
			player(true),
			{Name: "vp", Kind: KindInt, Min: 0, Max: 100},
		}},
		{Name: "correct_vp", Params: []ParamSpec{
			player(true),
			{Name: "delta", Kind: KindInt, Required: true, Min: -100, Max: 100},
			{Name: "reason", Kind: KindString, MaxLen: 200},
		}},

		{Name: "set_mission", Params: []ParamSpec{
			{Name: "mission", Kind: KindString, Required: true, MaxLen: 100},
		}},
		{Name: "set_mission_mode", Params: []ParamSpec{
			player(true),
			{Name: "mode", Kind: KindEnum, Required: true, Enum: modeEnum},
		}},
		{Name: "set_first_player", Params: []ParamSpec{
			{Name: "first_player", Kind: KindEnum, Required: true, Enum: playerEnum},
		}},

		{Name: "add_unit", Params: []ParamSpec{
			player(true),
			{Name: "unit_id", Kind: KindString, Required: true, MaxLen: 50},
			{Name: "name", Kind: KindString, Required: true, MaxLen: 100},
			{Name: "wounds", Kind: KindInt, Required: true, Min: 1, Max: 100},
			{Name: "models", Kind: KindInt, Min: 1, Max: 50},
			{Name: "datasheet", Kind: KindString, MaxLen: 50},
		}},
		{Name: "update_unit_health", Params: []ParamSpec{
			player(true),
			{Name: "unit_id", Kind: KindString, Required: true, MaxLen: 50},
			{Name: "wounds", Kind: KindInt, Required: true, Min: 0, Max: 100},
		}},
		{Name: "damage_unit", Params: []ParamSpec{
			player(true),
			{Name: "unit_id", Kind: KindString, Required: true, MaxLen: 50},
			{Name: "damage", Kind: KindInt, Required: true, Min: 1, Max: 100},
			{Name: "source", Kind: KindString, MaxLen: 100},
		}},
		{Name: "destroy_unit", Params: []ParamSpec{
			player(true),
			{Name: "unit_id", Kind: KindString, Required: true, MaxLen: 50},
		}},
		{Name: "log_combat", Params: []ParamSpec{
			{Name: "attacker", Kind: KindEnum, Required: true, Enum: playerEnum},
			{Name: "unit_id", Kind: KindString, MaxLen: 50},
			{Name: "target_id", Kind: KindString, Required: true, MaxLen: 50},
			{Name: "damage", Kind: KindInt, Required: true, Min: 0, Max: 100},
			{Name: "description", Kind: KindString, MaxLen: 500},
		}},

		{Name: "update_objective_control", Params: []ParamSpec{
			{Name: "marker_id", Kind: KindString, Required: true, MaxLen: 50},
			{Name: "controlled_by", Kind: KindEnum, Required: true, Enum: controlEnum},
		}},

		{Name: "add_note", Params: []ParamSpec{
			{Name: "text", Kind: KindString, Required: true, MaxLen: 500},
		}},
		{Name: "query_state"},
	}
}

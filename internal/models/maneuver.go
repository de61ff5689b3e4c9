package models

// ManeuverType classifies a route step's maneuver. The set is closed: any
// value the backend sends outside of it parses to ManeuverUnknown, which
// downstream instruction and icon lookups handle explicitly.
type ManeuverType string

const (
	ManeuverDepart     ManeuverType = "depart"
	ManeuverArrive     ManeuverType = "arrive"
	ManeuverTurn       ManeuverType = "turn"
	ManeuverNewName    ManeuverType = "new name"
	ManeuverContinue   ManeuverType = "continue"
	ManeuverRoundabout ManeuverType = "roundabout"
	ManeuverRotary     ManeuverType = "rotary"
	ManeuverEndOfRoad  ManeuverType = "end of road"
	ManeuverFork       ManeuverType = "fork"
	ManeuverMerge      ManeuverType = "merge"
	ManeuverUnknown    ManeuverType = ""
)

// ParseManeuverType maps a raw backend maneuver type to the closed enumeration.
func ParseManeuverType(s string) ManeuverType {
	switch t := ManeuverType(s); t {
	case ManeuverDepart, ManeuverArrive, ManeuverTurn, ManeuverNewName, ManeuverContinue,
		ManeuverRoundabout, ManeuverRotary, ManeuverEndOfRoad, ManeuverFork, ManeuverMerge:
		return t
	default:
		return ManeuverUnknown
	}
}

// ManeuverModifier refines a maneuver with a direction. Like ManeuverType the
// set is closed, with ModifierNone standing in for absent or unrecognized
// modifiers.
type ManeuverModifier string

const (
	ModifierLeft        ManeuverModifier = "left"
	ModifierRight       ManeuverModifier = "right"
	ModifierSlightLeft  ManeuverModifier = "slight left"
	ModifierSlightRight ManeuverModifier = "slight right"
	ModifierSharpLeft   ManeuverModifier = "sharp left"
	ModifierSharpRight  ManeuverModifier = "sharp right"
	ModifierUTurn       ManeuverModifier = "uturn"
	ModifierStraight    ManeuverModifier = "straight"
	ModifierNone        ManeuverModifier = ""
)

// ParseManeuverModifier maps a raw backend modifier to the closed enumeration.
func ParseManeuverModifier(s string) ManeuverModifier {
	switch m := ManeuverModifier(s); m {
	case ModifierLeft, ModifierRight, ModifierSlightLeft, ModifierSlightRight,
		ModifierSharpLeft, ModifierSharpRight, ModifierUTurn, ModifierStraight:
		return m
	default:
		return ModifierNone
	}
}

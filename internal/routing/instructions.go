package routing

import "github.com/openwander/wayfind/internal/models"

// IconTag identifies the icon shown next to a step. The UI owns the mapping
// from tag to asset; this package only classifies maneuvers.
type IconTag string

const (
	IconDepart      IconTag = "depart"
	IconArrive      IconTag = "arrive"
	IconTurnLeft    IconTag = "turn-left"
	IconTurnRight   IconTag = "turn-right"
	IconSlightLeft  IconTag = "slight-left"
	IconSlightRight IconTag = "slight-right"
	IconSharpLeft   IconTag = "sharp-left"
	IconSharpRight  IconTag = "sharp-right"
	IconUTurn       IconTag = "uturn"
	IconStraight    IconTag = "straight"
	IconRoundabout  IconTag = "roundabout"
	IconFork        IconTag = "fork"
	IconMerge       IconTag = "merge"
)

// turnPhrases is the modifier lookup for turn-class maneuvers. Unrecognized
// modifiers degrade to a directionless "Continue".
var turnPhrases = map[models.ManeuverModifier]string{
	models.ModifierLeft:        "Turn left",
	models.ModifierRight:       "Turn right",
	models.ModifierSlightLeft:  "Turn slightly left",
	models.ModifierSlightRight: "Turn slightly right",
	models.ModifierSharpLeft:   "Turn sharply left",
	models.ModifierSharpRight:  "Turn sharply right",
	models.ModifierUTurn:       "Make a U-turn",
	models.ModifierStraight:    "Continue straight",
}

// directionSuffixes qualify a "Continue" or "Merge" phrase.
var directionSuffixes = map[models.ManeuverModifier]string{
	models.ModifierLeft:        " to the left",
	models.ModifierRight:       " to the right",
	models.ModifierSlightLeft:  " slightly left",
	models.ModifierSlightRight: " slightly right",
	models.ModifierSharpLeft:   " sharply left",
	models.ModifierSharpRight:  " sharply right",
	models.ModifierStraight:    " straight",
}

// Instruction derives a human-readable instruction for a maneuver. Every
// combination of type, modifier and street name yields a non-empty sentence;
// unknown inputs degrade to a generic "Continue" phrasing.
func Instruction(t models.ManeuverType, m models.ManeuverModifier, street string) string {
	switch t {
	case models.ManeuverArrive:
		return "You have arrived at your destination"
	case models.ManeuverDepart:
		if street != "" {
			return "Begin route on " + street
		}
		return "Begin route"
	case models.ManeuverTurn:
		phrase, ok := turnPhrases[m]
		if !ok {
			phrase = "Continue"
		}
		return withStreet(phrase, "onto", street)
	case models.ManeuverNewName:
		return withStreet("Continue"+directionSuffixes[m], "onto", street)
	case models.ManeuverContinue:
		return withStreet("Continue"+directionSuffixes[m], "on", street)
	case models.ManeuverRoundabout, models.ManeuverRotary:
		if street != "" {
			return "At the roundabout, take the exit onto " + street
		}
		return "Enter the roundabout"
	case models.ManeuverEndOfRoad:
		phrase, ok := turnPhrases[m]
		if !ok {
			phrase = "Continue"
		}
		return withStreet("At the end of the road, "+lowerFirst(phrase), "onto", street)
	case models.ManeuverFork:
		return withStreet("At the fork, "+forkPhrase(m), "onto", street)
	case models.ManeuverMerge:
		return withStreet("Merge"+directionSuffixes[m], "onto", street)
	default:
		return withStreet("Continue", "on", street)
	}
}

// Icon classifies a maneuver for display.
func Icon(t models.ManeuverType, m models.ManeuverModifier) IconTag {
	switch t {
	case models.ManeuverDepart:
		return IconDepart
	case models.ManeuverArrive:
		return IconArrive
	case models.ManeuverRoundabout, models.ManeuverRotary:
		return IconRoundabout
	case models.ManeuverFork:
		return IconFork
	case models.ManeuverMerge:
		return IconMerge
	}

	switch m {
	case models.ModifierLeft:
		return IconTurnLeft
	case models.ModifierRight:
		return IconTurnRight
	case models.ModifierSlightLeft:
		return IconSlightLeft
	case models.ModifierSlightRight:
		return IconSlightRight
	case models.ModifierSharpLeft:
		return IconSharpLeft
	case models.ModifierSharpRight:
		return IconSharpRight
	case models.ModifierUTurn:
		return IconUTurn
	default:
		return IconStraight
	}
}

func forkPhrase(m models.ManeuverModifier) string {
	switch m {
	case models.ModifierLeft, models.ModifierSlightLeft, models.ModifierSharpLeft:
		return "keep left"
	case models.ModifierRight, models.ModifierSlightRight, models.ModifierSharpRight:
		return "keep right"
	case models.ModifierStraight:
		return "keep straight"
	default:
		return "keep going"
	}
}

func withStreet(phrase, preposition, street string) string {
	if street == "" {
		return phrase
	}
	return phrase + " " + preposition + " " + street
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'A' && c <= 'Z' {
		return string(c+'a'-'A') + s[1:]
	}
	return s
}

package interpret

import (
	"fmt"
	"strings"
)

// hazardKeywords is walked in order so the caution for a step is stable
// even when the instruction mentions several hazards.
var hazardKeywords = []string{
	"cut", "chop", "slice", "knife",
	"boil", "hot", "fire", "heat", "stove", "oven", "fry", "oil",
	"blend",
}

var hazardActions = map[string]string{
	"cut":   "cutting",
	"chop":  "chopping",
	"slice": "slicing",
	"knife": "using the knife",
	"boil":  "boiling",
	"hot":   "handling hot items",
	"fire":  "working near the fire",
	"heat":  "heating",
	"stove": "using the stove",
	"oven":  "using the oven",
	"fry":   "frying",
	"oil":   "handling hot oil",
	"blend": "blending",
}

// caution returns a safety prefix when the instruction mentions a hazard,
// or the empty string.
func caution(instruction string) string {
	in := strings.ToLower(instruction)
	for _, k := range hazardKeywords {
		if strings.Contains(in, k) {
			return fmt.Sprintf("Be careful while %s! ", hazardActions[k])
		}
	}
	return ""
}

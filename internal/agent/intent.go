package agent

import "strings"

// Intent is the discrete action category selected for a turn.
type Intent string

const (
	IntentGreet       Intent = "greet"
	IntentCompare     Intent = "compare"
	IntentCalculate   Intent = "calculate"
	IntentApply       Intent = "apply"
	IntentEligibility Intent = "eligibility"
	IntentSector      Intent = "sector"
	IntentAll         Intent = "all"
	IntentSearch      Intent = "search"
)

// classifierRule matches when any of its keywords occurs in the lower-cased
// utterance.
type classifierRule struct {
	keywords []string
	intent   Intent
}

// classifierRules is scanned top to bottom; the first matching rule wins.
// Keyword sets overlap across rules, so the ordering is part of the
// contract and must not be reordered.
var classifierRules = []classifierRule{
	{[]string{"hello", "hi", "నమస్కారం", "హలో"}, IntentGreet},
	{[]string{"compare", "vs", "పోలిక"}, IntentCompare},
	{[]string{"how much", "calculate", "ఎంత"}, IntentCalculate},
	{[]string{"apply", "process", "దరఖాస్తు"}, IntentApply},
	{[]string{"eligible", "అర్హత", "నాకు వస్తుందా"}, IntentEligibility},
	{[]string{"agriculture", "health", "housing", "విభాగం"}, IntentSector},
	{[]string{"all schemes", "అన్ని యోజన", "జాబితా"}, IntentAll},
}

// ClassifyIntent returns the first matching intent for the utterance,
// defaulting to search.
func ClassifyIntent(text string) Intent {
	lower := strings.ToLower(text)
	for _, rule := range classifierRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return IntentSearch
}

// MissingEligibilitySlots returns, in fixed order, the structurally
// required slot names the merged slot set does not yet carry. Only the
// eligibility intent has required slots.
func MissingEligibilitySlots(slots Slots) []string {
	var missing []string
	if slots.SchemeName == "" {
		missing = append(missing, "scheme_name")
	}
	if slots.Age == nil {
		missing = append(missing, "age")
	}
	return missing
}

package agent

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intent
	}{
		{name: "greeting english", text: "Hello there", want: IntentGreet},
		{name: "greeting telugu", text: "నమస్కారం", want: IntentGreet},
		{name: "compare", text: "compare PM Kisan and PM Awas", want: IntentCompare},
		{name: "compare telugu", text: "రెండు యోజనల పోలిక", want: IntentCompare},
		{name: "calculate", text: "how much will I get from pm kisan", want: IntentCalculate},
		{name: "calculate telugu", text: "పీఎం కిసాన్ ఎంత వస్తుంది", want: IntentCalculate},
		{name: "apply", text: "how do I apply for pm awas", want: IntentApply},
		{name: "apply telugu", text: "దరఖాస్తు ఎలా చేయాలి", want: IntentApply},
		{name: "eligibility", text: "am I eligible for ayushman", want: IntentEligibility},
		{name: "eligibility telugu", text: "నాకు అర్హత ఉందా", want: IntentEligibility},
		{name: "sector", text: "show me health schemes", want: IntentSector},
		{name: "all", text: "list all schemes please", want: IntentAll},
		{name: "all telugu", text: "యోజనల జాబితా ఇవ్వండి", want: IntentAll},
		{name: "default search", text: "రైతు యోజనలు చెప్పండి", want: IntentSearch},
		{name: "default search english", text: "tell me about pension", want: IntentSearch},

		// Rule order is part of the contract: earlier rules win when
		// keyword sets overlap.
		{name: "greet beats compare", text: "hello, compare schemes", want: IntentGreet},
		{name: "compare beats eligibility", text: "compare eligible schemes", want: IntentCompare},
		{name: "calculate beats sector", text: "calculate health benefits", want: IntentCalculate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyIntent(tt.text); got != tt.want {
				t.Errorf("ClassifyIntent(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestMissingEligibilitySlots(t *testing.T) {
	age := 35

	tests := []struct {
		name  string
		slots Slots
		want  []string
	}{
		{name: "nothing known", slots: Slots{}, want: []string{"scheme_name", "age"}},
		{name: "scheme known", slots: Slots{SchemeName: "pm_kisan"}, want: []string{"age"}},
		{name: "age known", slots: Slots{Age: &age}, want: []string{"scheme_name"}},
		{name: "both known", slots: Slots{SchemeName: "pm_kisan", Age: &age}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingEligibilitySlots(tt.slots)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MissingEligibilitySlots() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

package agent

import (
	"regexp"
	"strconv"
	"strings"
)

// Slots is the partial parameter set accumulated over a conversation. Nil
// pointer fields mean the slot has never been extracted.
type Slots struct {
	Age        *int
	Income     *int
	Occupation string
	SchemeName string
}

// Merge lays newer extractions over s, overriding only the keys the newer
// extraction actually carries. Merging an empty extraction is a no-op.
func (s *Slots) Merge(newer Slots) {
	if newer.Age != nil {
		s.Age = newer.Age
	}
	if newer.Income != nil {
		s.Income = newer.Income
	}
	if newer.Occupation != "" {
		s.Occupation = newer.Occupation
	}
	if newer.SchemeName != "" {
		s.SchemeName = newer.SchemeName
	}
}

// Missing reports whether none of the slot fields are set.
func (s Slots) Missing() bool {
	return s.Age == nil && s.Income == nil && s.Occupation == "" && s.SchemeName == ""
}

var (
	ageUnitRe = regexp.MustCompile(`\b(\d{1,2})\s*(?i:years|సంవత్సరాలు|వయస్సు|ఏళ్ళు)`)
	bareAgeRe = regexp.MustCompile(`\b(\d{2})\b`)
	incomeRe  = regexp.MustCompile(`₹?\s*(\d+(?:,\d+)*)`)
)

// farmerKeywords set the canonical occupation in either language.
var farmerKeywords = []string{"farmer", "రైతు", "agriculture"}

// schemeKeyword pairs a bilingual keyword with the canonical scheme id it
// resolves to. Scan order is fixed; first match wins.
type schemeKeyword struct {
	keyword  string
	schemeID string
}

var schemeKeywords = []schemeKeyword{
	{"kisan", "pm_kisan"},
	{"కిసాన్", "pm_kisan"},
	{"awas", "pm_awas"},
	{"ఆవాస్", "pm_awas"},
	{"ayushman", "ayushman_bharat"},
	{"ఆయుష్మాన్", "ayushman_bharat"},
	{"jan dhan", "pm_jan_dhan"},
	{"suraksha", "pm_suraksha"},
	{"సురక్ష", "pm_suraksha"},
	{"ujjwala", "pm_ujjwala"},
}

// ExtractSlots pulls a best-effort partial slot set out of the raw
// utterance. Each rule is independent; absent evidence leaves the slot
// unset.
//
// The bare two-digit fallback for age is a known ambiguity: a sentence
// mentioning some other two-digit number in [18,80] will be read as an age.
func ExtractSlots(text string) Slots {
	var slots Slots
	lower := strings.ToLower(text)

	if m := ageUnitRe.FindStringSubmatch(text); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil {
			slots.Age = &age
		}
	} else if m := bareAgeRe.FindStringSubmatch(text); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil && age >= 18 && age <= 80 {
			slots.Age = &age
		}
	}

	if m := incomeRe.FindStringSubmatch(text); m != nil {
		if income, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			// Amounts below 100 are read as lakhs.
			if income < 100 {
				income *= 100000
			}
			slots.Income = &income
		}
	}

	for _, kw := range farmerKeywords {
		if strings.Contains(lower, kw) {
			slots.Occupation = "farmer"
			break
		}
	}

	for _, sk := range schemeKeywords {
		if strings.Contains(lower, sk.keyword) {
			slots.SchemeName = sk.schemeID
			break
		}
	}

	return slots
}

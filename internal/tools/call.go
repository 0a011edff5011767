// Package tools implements the dispatcher for the closed set of seven scheme
// operations. Each operation is a Kind carrying its own typed argument
// struct; dispatch is an exhaustive switch rather than a string-indexed
// handler table, so the tool set is statically enumerable.
package tools

import (
	"fmt"

	"niva/internal/catalog"
)

// Kind identifies one of the seven tool operations.
type Kind int

const (
	// KindSemanticSearch delegates to the semantic search collaborator.
	KindSemanticSearch Kind = iota
	// KindCheckEligibility evaluates a scheme's rule set against user slots.
	KindCheckEligibility
	// KindCompareSchemes emits a side-by-side block for two schemes.
	KindCompareSchemes
	// KindCalculateBenefits computes scheme-specific benefit amounts.
	KindCalculateBenefits
	// KindApplicationSteps emits the application checklist for a scheme.
	KindApplicationSteps
	// KindSchemesBySector filters the catalog by sector.
	KindSchemesBySector
	// KindAllSchemes lists the whole catalog.
	KindAllSchemes
)

// String returns the stable tool name for logging.
func (k Kind) String() string {
	switch k {
	case KindSemanticSearch:
		return "semantic_search"
	case KindCheckEligibility:
		return "check_eligibility"
	case KindCompareSchemes:
		return "compare_schemes"
	case KindCalculateBenefits:
		return "calculate_benefits"
	case KindApplicationSteps:
		return "get_application_steps"
	case KindSchemesBySector:
		return "get_schemes_by_sector"
	case KindAllSchemes:
		return "get_all_schemes"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// SearchArgs are the arguments for KindSemanticSearch.
type SearchArgs struct {
	Query string
	TopK  int
}

// EligibilityArgs are the arguments for KindCheckEligibility.
type EligibilityArgs struct {
	SchemeRef    string
	Age          int
	AnnualIncome int
	Occupation   string // optional
	Category     string // optional
}

// CompareArgs are the arguments for KindCompareSchemes.
type CompareArgs struct {
	Ref1 string
	Ref2 string
}

// CalculateArgs are the arguments for KindCalculateBenefits.
type CalculateArgs struct {
	SchemeRef  string
	FamilySize int
	LandAcres  float64
	Months     int
}

// ApplyArgs are the arguments for KindApplicationSteps.
type ApplyArgs struct {
	SchemeRef string
}

// SectorArgs are the arguments for KindSchemesBySector. The raw utterance is
// scanned for a bilingual sector keyword; no keyword defaults to agriculture.
type SectorArgs struct {
	Utterance string
}

// Call is one tool invocation: a Kind plus the argument struct for that
// kind. Only the arguments matching Kind are consulted.
type Call struct {
	Kind     Kind
	Language catalog.Language

	Search      SearchArgs
	Eligibility EligibilityArgs
	Compare     CompareArgs
	Calculate   CalculateArgs
	Apply       ApplyArgs
	Sector      SectorArgs
}

// Package catalog holds the static government-scheme dataset: immutable
// bilingual scheme records loaded once at startup and a read-only repository
// with fuzzy lookup. Nothing in this package mutates after Load returns.
package catalog

// Language is a supported response language code.
type Language string

const (
	// LanguageTelugu selects Telugu field variants and phrasing.
	LanguageTelugu Language = "te"
	// LanguageEnglish selects English field variants and phrasing.
	LanguageEnglish Language = "en"
)

// Sector classifies a scheme into one of the fixed benefit sectors.
type Sector string

const (
	SectorAgriculture Sector = "agriculture"
	SectorHealth      Sector = "health"
	SectorHousing     Sector = "housing"
	SectorFinance     Sector = "finance"
	SectorInsurance   Sector = "insurance"
	SectorEnergy      Sector = "energy"
)

// AllSectors lists every known sector in a fixed order.
var AllSectors = []Sector{
	SectorAgriculture,
	SectorHealth,
	SectorHousing,
	SectorFinance,
	SectorInsurance,
	SectorEnergy,
}

// ValidSector reports whether s names a known sector.
func ValidSector(s Sector) bool {
	for _, known := range AllSectors {
		if s == known {
			return true
		}
	}
	return false
}

// Eligibility is a scheme's rule set. Pointer fields are absent when the
// dataset omits the rule; an absent rule never disqualifies anyone.
type Eligibility struct {
	MinAge      *int     `json:"min_age,omitempty"`
	MaxAge      *int     `json:"max_age,omitempty"`
	IncomeLimit *int     `json:"income_limit,omitempty"`
	Occupation  string   `json:"occupation,omitempty"`
	Category    []string `json:"category,omitempty"`
}

// OpenCategory reports whether the category rule admits everyone, either
// because the rule is absent or because it contains the sentinel "all".
func (e Eligibility) OpenCategory() bool {
	if len(e.Category) == 0 {
		return true
	}
	for _, c := range e.Category {
		if c == "all" {
			return true
		}
	}
	return false
}

// Scheme is one government benefit program. Records are immutable after
// load; identity is ID.
type Scheme struct {
	ID            string      `json:"id"`
	NameEN        string      `json:"name_en"`
	NameTE        string      `json:"name_te"`
	DescriptionEN string      `json:"description_en"`
	DescriptionTE string      `json:"description_te"`
	BenefitsEN    string      `json:"benefits_en"`
	BenefitsTE    string      `json:"benefits_te"`
	DocumentsEN   []string    `json:"documents_en"`
	DocumentsTE   []string    `json:"documents_te"`
	Sector        Sector      `json:"sector"`
	Eligibility   Eligibility `json:"eligibility"`
}

// Name returns the scheme name in the requested language.
func (s *Scheme) Name(lang Language) string {
	if lang == LanguageTelugu {
		return s.NameTE
	}
	return s.NameEN
}

// Description returns the scheme description in the requested language.
func (s *Scheme) Description(lang Language) string {
	if lang == LanguageTelugu {
		return s.DescriptionTE
	}
	return s.DescriptionEN
}

// Benefits returns the benefits summary in the requested language.
func (s *Scheme) Benefits(lang Language) string {
	if lang == LanguageTelugu {
		return s.BenefitsTE
	}
	return s.BenefitsEN
}

// Documents returns the ordered required-document list in the requested
// language.
func (s *Scheme) Documents(lang Language) []string {
	if lang == LanguageTelugu {
		return s.DocumentsTE
	}
	return s.DocumentsEN
}

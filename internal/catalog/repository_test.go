package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func intPtr(n int) *int { return &n }

func testSchemes() []Scheme {
	return []Scheme{
		{
			ID: "pm_kisan", NameEN: "PM Kisan Samman Nidhi", NameTE: "పీఎం కిసాన్ సమ్మాన్ నిధి",
			DescriptionEN: "Income support for farmers", DescriptionTE: "రైతులకు ఆదాయ మద్దతు",
			BenefitsEN: "₹6,000 per year", BenefitsTE: "సంవత్సరానికి ₹6,000",
			DocumentsEN: []string{"Aadhaar Card"}, DocumentsTE: []string{"ఆధార్ కార్డు"},
			Sector:      SectorAgriculture,
			Eligibility: Eligibility{MinAge: intPtr(18), Occupation: "farmer", Category: []string{"all"}},
		},
		{
			ID: "pm_awas", NameEN: "PM Awas Yojana", NameTE: "పీఎం ఆవాస్ యోజన",
			DescriptionEN: "Housing assistance", DescriptionTE: "గృహ నిర్మాణ సహాయం",
			BenefitsEN: "₹1,20,000 one-time", BenefitsTE: "ఒక్కసారి ₹1,20,000",
			DocumentsEN: []string{"Aadhaar Card"}, DocumentsTE: []string{"ఆధార్ కార్డు"},
			Sector:      SectorHousing,
			Eligibility: Eligibility{MinAge: intPtr(18), IncomeLimit: intPtr(300000), Category: []string{"all"}},
		},
		{
			ID: "kisan_credit", NameEN: "Kisan Credit Card", NameTE: "కిసాన్ క్రెడిట్ కార్డు",
			DescriptionEN: "Credit for farmers", DescriptionTE: "రైతులకు రుణం",
			BenefitsEN: "Low-interest credit", BenefitsTE: "తక్కువ వడ్డీ రుణం",
			DocumentsEN: []string{"Aadhaar Card"}, DocumentsTE: []string{"ఆధార్ కార్డు"},
			Sector:      SectorAgriculture,
			Eligibility: Eligibility{Occupation: "farmer"},
		},
	}
}

func TestNewRepositoryValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func([]Scheme) []Scheme
		expectErr bool
	}{
		{name: "valid catalog", mutate: func(s []Scheme) []Scheme { return s }},
		{
			name: "duplicate id",
			mutate: func(s []Scheme) []Scheme {
				s[1].ID = s[0].ID
				return s
			},
			expectErr: true,
		},
		{
			name: "empty id",
			mutate: func(s []Scheme) []Scheme {
				s[0].ID = ""
				return s
			},
			expectErr: true,
		},
		{
			name: "missing english name",
			mutate: func(s []Scheme) []Scheme {
				s[0].NameEN = ""
				return s
			},
			expectErr: true,
		},
		{
			name: "missing telugu name",
			mutate: func(s []Scheme) []Scheme {
				s[0].NameTE = ""
				return s
			},
			expectErr: true,
		},
		{
			name: "unknown sector",
			mutate: func(s []Scheme) []Scheme {
				s[0].Sector = "transport"
				return s
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRepository(tt.mutate(testSchemes()))
			if tt.expectErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFindByRef(t *testing.T) {
	repo, err := NewRepository(testSchemes())
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}

	tests := []struct {
		name   string
		ref    string
		wantID string
		found  bool
	}{
		{name: "exact id", ref: "pm_awas", wantID: "pm_awas", found: true},
		{name: "english name substring", ref: "awas", wantID: "pm_awas", found: true},
		{name: "case insensitive", ref: "PM KISAN", wantID: "pm_kisan", found: true},
		{name: "telugu name substring", ref: "ఆవాస్", wantID: "pm_awas", found: true},
		// "kisan" is a substring of both pm_kisan and kisan_credit;
		// catalog order breaks the tie.
		{name: "ambiguous ref takes catalog order", ref: "kisan", wantID: "pm_kisan", found: true},
		{name: "unknown ref", ref: "vidyarthi", found: false},
		{name: "empty ref", ref: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme, ok := repo.FindByRef(tt.ref)
			if ok != tt.found {
				t.Fatalf("FindByRef(%q) found=%v, want %v", tt.ref, ok, tt.found)
			}
			if ok && scheme.ID != tt.wantID {
				t.Errorf("FindByRef(%q) = %s, want %s", tt.ref, scheme.ID, tt.wantID)
			}
		})
	}
}

func TestBySectorPreservesOrder(t *testing.T) {
	repo, err := NewRepository(testSchemes())
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}

	got := repo.BySector(SectorAgriculture)
	if len(got) != 2 {
		t.Fatalf("expected 2 agriculture schemes, got %d", len(got))
	}
	if got[0].ID != "pm_kisan" || got[1].ID != "kisan_credit" {
		t.Errorf("sector results out of catalog order: %s, %s", got[0].ID, got[1].ID)
	}

	if n := len(repo.BySector(SectorEnergy)); n != 0 {
		t.Errorf("expected no energy schemes, got %d", n)
	}
}

func TestOpenCategory(t *testing.T) {
	tests := []struct {
		name     string
		category []string
		open     bool
	}{
		{name: "absent", category: nil, open: true},
		{name: "all sentinel", category: []string{"all"}, open: true},
		{name: "restricted", category: []string{"bpl"}, open: false},
		{name: "all among restricted", category: []string{"bpl", "all"}, open: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Eligibility{Category: tt.category}
			if got := e.OpenCategory(); got != tt.open {
				t.Errorf("OpenCategory() = %v, want %v", got, tt.open)
			}
		})
	}
}

func TestLoadDataset(t *testing.T) {
	repo, err := Load(filepath.Join("..", "..", "data", "schemes.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if repo.Len() != 6 {
		t.Fatalf("expected 6 schemes in dataset, got %d", repo.Len())
	}

	ayushman, ok := repo.Get("ayushman_bharat")
	if !ok {
		t.Fatal("ayushman_bharat missing from dataset")
	}
	if ayushman.Eligibility.IncomeLimit == nil || *ayushman.Eligibility.IncomeLimit >= 500000 {
		t.Error("ayushman_bharat should carry an income limit below 500000")
	}

	kisan, ok := repo.Get("pm_kisan")
	if !ok {
		t.Fatal("pm_kisan missing from dataset")
	}
	if kisan.Eligibility.IncomeLimit != nil {
		t.Error("pm_kisan should not carry an income limit")
	}
	if kisan.Eligibility.Occupation != "farmer" {
		t.Errorf("pm_kisan occupation = %q, want farmer", kisan.Eligibility.Occupation)
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error loading missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error loading malformed file")
	}
}

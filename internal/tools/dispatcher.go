package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"niva/internal/catalog"
	"niva/internal/logging"
)

// Searcher is the semantic search collaborator boundary. Implemented by
// index.Store.
type Searcher interface {
	Search(ctx context.Context, query string, lang catalog.Language, topK int) (string, error)
}

// Dispatcher executes tool calls against the scheme repository and the
// semantic search collaborator. The repository is read-only; tool execution
// has no shared-mutable side effects.
type Dispatcher struct {
	repo     *catalog.Repository
	searcher Searcher
}

// NewDispatcher creates a dispatcher over the given repository and searcher.
func NewDispatcher(repo *catalog.Repository, searcher Searcher) *Dispatcher {
	return &Dispatcher{repo: repo, searcher: searcher}
}

// Execute runs one tool call and returns its result text. Unresolvable
// scheme references produce a not-found result string, not an error; only
// external collaborator failures surface as errors.
func (d *Dispatcher) Execute(ctx context.Context, call Call) (string, error) {
	timer := logging.StartTimer(logging.CategoryTools, call.Kind.String())
	defer timer.Stop()

	logging.Tools("Executing %s (lang=%s)", call.Kind, call.Language)

	switch call.Kind {
	case KindSemanticSearch:
		return d.searcher.Search(ctx, call.Search.Query, call.Language, call.Search.TopK)
	case KindCheckEligibility:
		return d.checkEligibility(call.Eligibility, call.Language), nil
	case KindCompareSchemes:
		return d.compareSchemes(call.Compare, call.Language), nil
	case KindCalculateBenefits:
		return d.calculateBenefits(call.Calculate, call.Language), nil
	case KindApplicationSteps:
		return d.applicationSteps(call.Apply, call.Language), nil
	case KindSchemesBySector:
		return d.schemesBySector(call.Sector, call.Language), nil
	case KindAllSchemes:
		return d.allSchemes(call.Language), nil
	default:
		return "", fmt.Errorf("unknown tool kind: %d", int(call.Kind))
	}
}

// notFound is the shared not-found result for unresolvable scheme refs.
func notFound(ref string, lang catalog.Language) string {
	if lang == catalog.LanguageTelugu {
		return fmt.Sprintf("'%s' యోజన కనబడలేదు", ref)
	}
	return fmt.Sprintf("Scheme '%s' not found", ref)
}

// rupees formats an amount with thousands separators and the rupee sign.
func rupees(amount int) string {
	return "₹" + humanize.Comma(int64(amount))
}

// checkEligibility evaluates each eligibility dimension independently,
// accumulating human-readable failure reasons. Eligible iff zero reasons.
func (d *Dispatcher) checkEligibility(args EligibilityArgs, lang catalog.Language) string {
	scheme, ok := d.repo.FindByRef(args.SchemeRef)
	if !ok {
		return notFound(args.SchemeRef, lang)
	}

	rules := scheme.Eligibility
	te := lang == catalog.LanguageTelugu
	var reasons []string

	if rules.MinAge != nil && args.Age < *rules.MinAge {
		if te {
			reasons = append(reasons, fmt.Sprintf("వయస్సు %d సంవత్సరాల కంటే తక్కువ", *rules.MinAge))
		} else {
			reasons = append(reasons, fmt.Sprintf("Age below %d years", *rules.MinAge))
		}
	}
	if rules.MaxAge != nil && args.Age > *rules.MaxAge {
		if te {
			reasons = append(reasons, fmt.Sprintf("వయస్సు %d సంవత్సరాల కంటే ఎక్కువ", *rules.MaxAge))
		} else {
			reasons = append(reasons, fmt.Sprintf("Age above %d years", *rules.MaxAge))
		}
	}

	if rules.IncomeLimit != nil && args.AnnualIncome > *rules.IncomeLimit {
		if te {
			reasons = append(reasons, fmt.Sprintf("ఆదాయం పరిమితి (%s) కంటే ఎక్కువ", rupees(*rules.IncomeLimit)))
		} else {
			reasons = append(reasons, fmt.Sprintf("Income exceeds limit (%s)", rupees(*rules.IncomeLimit)))
		}
	}

	if rules.Occupation != "" {
		requiredOcc := strings.ToLower(rules.Occupation)
		userOcc := strings.ToLower(args.Occupation)
		farmerRequired := strings.Contains(requiredOcc, "farmer") || strings.Contains(requiredOcc, "రైతు")
		farmerGiven := strings.Contains(userOcc, "farmer") || strings.Contains(userOcc, "రైతు")
		isFarmer := farmerRequired && farmerGiven
		if !isFarmer && !strings.Contains(userOcc, requiredOcc) {
			if te {
				reasons = append(reasons, "ఈ యోజన రైతులకు మాత్రమే")
			} else {
				reasons = append(reasons, "This scheme is only for farmers")
			}
		}
	}

	if !rules.OpenCategory() {
		catList := strings.Join(rules.Category, ", ")
		if args.Category != "" {
			matched := false
			for _, c := range rules.Category {
				if strings.EqualFold(c, args.Category) {
					matched = true
					break
				}
			}
			if !matched {
				if te {
					reasons = append(reasons, fmt.Sprintf("వర్గం %s లో ఒకటి అయి ఉండాలి", catList))
				} else {
					reasons = append(reasons, fmt.Sprintf("Category must be one of %s", catList))
				}
			}
		} else {
			if te {
				reasons = append(reasons, fmt.Sprintf("మీ వర్గం (%s) లో ఒకటి అయి ఉండాలి", catList))
			} else {
				reasons = append(reasons, fmt.Sprintf("Your category should be one of (%s)", catList))
			}
		}
	}

	var b strings.Builder
	if len(reasons) > 0 {
		if te {
			fmt.Fprintf(&b, "❌ మీరు **%s** కు అర్హులు కాదు.\n\nకారణాలు:\n", scheme.Name(lang))
		} else {
			fmt.Fprintf(&b, "❌ You are not eligible for **%s**.\n\nReasons:\n", scheme.Name(lang))
		}
		for _, reason := range reasons {
			fmt.Fprintf(&b, "• %s\n", reason)
		}
		return b.String()
	}

	if te {
		fmt.Fprintf(&b, "✅ అభినందనలు! మీరు **%s** కు అర్హులు!\n\n", scheme.Name(lang))
		fmt.Fprintf(&b, "లాభాలు: %s\n", scheme.Benefits(lang))
		fmt.Fprintf(&b, "అవసరమైన పత్రాలు: %s\n", strings.Join(scheme.Documents(lang), ", "))
		b.WriteString("\nదరఖాస్తు కోసం మీకు సమీపంలో ఉన్న CSC కేంద్రం లేదా ప్రభుత్వ కార్యాలయానికి వెళ్లండి.")
	} else {
		fmt.Fprintf(&b, "✅ Congratulations! You are eligible for **%s**!\n\n", scheme.Name(lang))
		fmt.Fprintf(&b, "Benefits: %s\n", scheme.Benefits(lang))
		fmt.Fprintf(&b, "Required documents: %s\n", strings.Join(scheme.Documents(lang), ", "))
		b.WriteString("\nVisit your nearest CSC center or government office to apply.")
	}
	return b.String()
}

// compareSchemes resolves both references and emits a side-by-side block.
// Fails with the not-found result if either reference is unresolved.
func (d *Dispatcher) compareSchemes(args CompareArgs, lang catalog.Language) string {
	s1, ok1 := d.repo.FindByRef(args.Ref1)
	s2, ok2 := d.repo.FindByRef(args.Ref2)
	if !ok1 || !ok2 {
		if lang == catalog.LanguageTelugu {
			return "ఒకటి లేదా రెండు యోజనలు కనబడలేదు"
		}
		return "One or both schemes not found"
	}

	var b strings.Builder
	if lang == catalog.LanguageTelugu {
		b.WriteString("**యోజనల పోలిక:**\n\n")
		fmt.Fprintf(&b, "📋 **%s** vs **%s**\n\n", s1.NameTE, s2.NameTE)
		b.WriteString("🎯 **లక్ష్యం:**\n")
		fmt.Fprintf(&b, "• యోజన 1: %s\n• యోజన 2: %s\n\n", s1.DescriptionTE, s2.DescriptionTE)
		b.WriteString("💰 **లాభాలు:**\n")
		fmt.Fprintf(&b, "• యోజన 1: %s\n• యోజన 2: %s\n\n", s1.BenefitsTE, s2.BenefitsTE)
		b.WriteString("📄 **అవసరమైన పత్రాలు:**\n")
		fmt.Fprintf(&b, "• యోజన 1: %s\n• యోజన 2: %s\n",
			strings.Join(s1.DocumentsTE, ", "), strings.Join(s2.DocumentsTE, ", "))
	} else {
		b.WriteString("**Scheme Comparison:**\n\n")
		fmt.Fprintf(&b, "📋 **%s** vs **%s**\n\n", s1.NameEN, s2.NameEN)
		b.WriteString("🎯 **Purpose:**\n")
		fmt.Fprintf(&b, "• Scheme 1: %s\n• Scheme 2: %s\n\n", s1.DescriptionEN, s2.DescriptionEN)
		b.WriteString("💰 **Benefits:**\n")
		fmt.Fprintf(&b, "• Scheme 1: %s\n• Scheme 2: %s\n\n", s1.BenefitsEN, s2.BenefitsEN)
		b.WriteString("📄 **Required Documents:**\n")
		fmt.Fprintf(&b, "• Scheme 1: %s\n• Scheme 2: %s\n",
			strings.Join(s1.DocumentsEN, ", "), strings.Join(s2.DocumentsEN, ", "))
	}
	return b.String()
}

// calculateBenefits runs the scheme-id-specific benefit formula: prorated
// annual amount for installment schemes, flat amount for grants, and a
// generic benefits statement for schemes without a coded formula.
func (d *Dispatcher) calculateBenefits(args CalculateArgs, lang catalog.Language) string {
	scheme, ok := d.repo.FindByRef(args.SchemeRef)
	if !ok {
		return notFound(args.SchemeRef, lang)
	}

	te := lang == catalog.LanguageTelugu
	months := args.Months
	if months <= 0 {
		months = 12
	}
	familySize := args.FamilySize
	if familySize <= 0 {
		familySize = 1
	}

	var b strings.Builder
	switch scheme.ID {
	case "pm_kisan":
		annual := 6000
		total := float64(annual) * float64(months) / 12
		if te {
			b.WriteString("**PM కిసాన్ లాభాల లెక్కింపు:**\n\n")
			fmt.Fprintf(&b, "💰 వార్షిక మొత్తం: %s\n", rupees(annual))
			fmt.Fprintf(&b, "📅 %d నెలల కోసం: ₹%s\n", months, humanize.CommafWithDigits(total, 0))
			b.WriteString("💳 చెల్లింపు విధానం: 3 విడతలుగా (ప్రతి ₹2,000)\n")
		} else {
			b.WriteString("**PM Kisan Benefits Calculator:**\n\n")
			fmt.Fprintf(&b, "💰 Annual Amount: %s\n", rupees(annual))
			fmt.Fprintf(&b, "📅 For %d months: ₹%s\n", months, humanize.CommafWithDigits(total, 0))
			b.WriteString("💳 Payment Mode: 3 installments (₹2,000 each)\n")
		}

	case "pm_awas":
		amount := 120000
		if te {
			b.WriteString("**PM ఆవాస్ లాభాల లెక్కింపు:**\n\n")
			fmt.Fprintf(&b, "💰 మొత్తం సహాయం: %s\n", rupees(amount))
			fmt.Fprintf(&b, "🏠 కుటుంబ సభ్యులు: %d\n", familySize)
			b.WriteString("📋 గమనిక: ఇది ఒక్కసారి సహాయం\n")
		} else {
			b.WriteString("**PM Awas Benefits Calculator:**\n\n")
			fmt.Fprintf(&b, "💰 Total Assistance: %s\n", rupees(amount))
			fmt.Fprintf(&b, "🏠 Family Size: %d\n", familySize)
			b.WriteString("📋 Note: This is a one-time assistance\n")
		}

	case "ayushman_bharat":
		coverage := 500000
		if te {
			b.WriteString("**ఆయుష్మాన్ భారత్ లాభాల లెక్కింపు:**\n\n")
			fmt.Fprintf(&b, "💰 వార్షిక కవరేజ్: %s\n", rupees(coverage))
			fmt.Fprintf(&b, "👨‍👩‍👧‍👦 కుటుంబ సభ్యులు: %d\n", familySize)
			fmt.Fprintf(&b, "🏥 ప్రతి కుటుంబానికి: %s\n", rupees(coverage))
			b.WriteString("📋 గమనిక: ఆరోగ్య బీమా కవరేజ్\n")
		} else {
			b.WriteString("**Ayushman Bharat Benefits Calculator:**\n\n")
			fmt.Fprintf(&b, "💰 Annual Coverage: %s\n", rupees(coverage))
			fmt.Fprintf(&b, "👨‍👩‍👧‍👦 Family Members: %d\n", familySize)
			fmt.Fprintf(&b, "🏥 Per Family: %s\n", rupees(coverage))
			b.WriteString("📋 Note: Health insurance coverage\n")
		}

	default:
		if te {
			fmt.Fprintf(&b, "**%s లాభాలు:**\n\n", scheme.NameTE)
			fmt.Fprintf(&b, "💰 %s\n", scheme.BenefitsTE)
			b.WriteString("📋 ఖచ్చితమైన మొత్తం కోసం సంబంధిత కార్యాలయాన్ని సంప్రదించండి.\n")
		} else {
			fmt.Fprintf(&b, "**%s Benefits:**\n\n", scheme.NameEN)
			fmt.Fprintf(&b, "💰 %s\n", scheme.BenefitsEN)
			b.WriteString("📋 Contact relevant office for exact amount.\n")
		}
	}
	return b.String()
}

// applicationSteps emits the fixed six-step checklist populated with the
// scheme's document list.
func (d *Dispatcher) applicationSteps(args ApplyArgs, lang catalog.Language) string {
	scheme, ok := d.repo.FindByRef(args.SchemeRef)
	if !ok {
		return notFound(args.SchemeRef, lang)
	}

	var b strings.Builder
	if lang == catalog.LanguageTelugu {
		fmt.Fprintf(&b, "**%s - దరఖాస్తు విధానం:**\n\n", scheme.NameTE)
		b.WriteString("📝 **దశలు:**\n\n")
		b.WriteString("1️⃣ **అవసరమైన పత్రాలను సేకరించండి:**\n")
		for _, doc := range scheme.DocumentsTE {
			fmt.Fprintf(&b, "   • %s\n", doc)
		}
		b.WriteString("\n2️⃣ **సమీప CSC సెంటర్ / ప్రభుత్వ కార్యాలయానికి వెళ్లండి**\n")
		b.WriteString("\n3️⃣ **దరఖాస్తు ఫారం పూరించండి**\n")
		b.WriteString("\n4️⃣ **పత్రాలను జమ చేయండి**\n")
		b.WriteString("\n5️⃣ **రసీదు తీసుకోండి**\n")
		b.WriteString("\n6️⃣ **మీ దరఖాస్తు స్థితిని ట్రాక్ చేయండి**\n")
		b.WriteString("\n💡 **చిట్కా:** అన్ని అసలు పత్రాలతో పాటు ఫోటో కాపీలు తీసుకెళ్లండి.\n")
	} else {
		fmt.Fprintf(&b, "**%s - Application Process:**\n\n", scheme.NameEN)
		b.WriteString("📝 **Steps:**\n\n")
		b.WriteString("1️⃣ **Collect Required Documents:**\n")
		for _, doc := range scheme.DocumentsEN {
			fmt.Fprintf(&b, "   • %s\n", doc)
		}
		b.WriteString("\n2️⃣ **Visit Nearest CSC Center / Government Office**\n")
		b.WriteString("\n3️⃣ **Fill Application Form**\n")
		b.WriteString("\n4️⃣ **Submit Documents**\n")
		b.WriteString("\n5️⃣ **Collect Receipt**\n")
		b.WriteString("\n6️⃣ **Track Your Application Status**\n")
		b.WriteString("\n💡 **Tip:** Carry photocopies along with original documents.\n")
	}
	return b.String()
}

// sectorKeyword pairs a bilingual keyword with its sector. Scan order is
// fixed; the first keyword found in the utterance wins.
type sectorKeyword struct {
	keyword string
	sector  catalog.Sector
}

var sectorKeywords = []sectorKeyword{
	{"agriculture", catalog.SectorAgriculture},
	{"రైతు", catalog.SectorAgriculture},
	{"కృషి", catalog.SectorAgriculture},
	{"health", catalog.SectorHealth},
	{"ఆరోగ్యం", catalog.SectorHealth},
	{"housing", catalog.SectorHousing},
	{"ఇల్లు", catalog.SectorHousing},
	{"finance", catalog.SectorFinance},
	{"బ్యాంక్", catalog.SectorFinance},
	{"insurance", catalog.SectorInsurance},
	{"బీమా", catalog.SectorInsurance},
	{"energy", catalog.SectorEnergy},
	{"గ్యాస్", catalog.SectorEnergy},
}

// DetectSector scans the utterance for a bilingual sector keyword,
// defaulting to agriculture if none is found.
func DetectSector(utterance string) catalog.Sector {
	lower := strings.ToLower(utterance)
	for _, sk := range sectorKeywords {
		if strings.Contains(lower, sk.keyword) {
			return sk.sector
		}
	}
	return catalog.SectorAgriculture
}

// schemesBySector lists every scheme in the detected sector.
func (d *Dispatcher) schemesBySector(args SectorArgs, lang catalog.Language) string {
	sector := DetectSector(args.Utterance)
	results := d.repo.BySector(sector)

	if len(results) == 0 {
		if lang == catalog.LanguageTelugu {
			return fmt.Sprintf("'%s' విభాగంలో యోజనలు కనబడలేదు", sector)
		}
		return fmt.Sprintf("No schemes found in '%s' sector", sector)
	}

	var b strings.Builder
	if lang == catalog.LanguageTelugu {
		fmt.Fprintf(&b, "**%s విభాగం యోజనలు:**\n\n", sector)
		for i, scheme := range results {
			fmt.Fprintf(&b, "%d. **%s**\n   %s\n   లాభాలు: %s\n\n",
				i+1, scheme.NameTE, scheme.DescriptionTE, scheme.BenefitsTE)
		}
	} else {
		fmt.Fprintf(&b, "**%s Sector Schemes:**\n\n", titleSector(sector))
		for i, scheme := range results {
			fmt.Fprintf(&b, "%d. **%s**\n   %s\n   Benefits: %s\n\n",
				i+1, scheme.NameEN, scheme.DescriptionEN, scheme.BenefitsEN)
		}
	}
	return b.String()
}

// allSchemes lists every catalog entry in order with a truncated
// description.
func (d *Dispatcher) allSchemes(lang catalog.Language) string {
	var b strings.Builder
	if lang == catalog.LanguageTelugu {
		b.WriteString("అందుబాటులో ఉన్న ప్రభుత్వ యోజనలు:\n\n")
		for i, scheme := range d.repo.All() {
			fmt.Fprintf(&b, "%d. **%s** (%s)\n   %s\n\n",
				i+1, scheme.NameTE, scheme.Sector, truncate(scheme.DescriptionTE, 80))
		}
		b.WriteString("ఏదైనా యోజన యొక్క పూర్తి సమాచారం కోసం దాని పేరు చెప్పండి.")
	} else {
		b.WriteString("Available Government Schemes:\n\n")
		for i, scheme := range d.repo.All() {
			fmt.Fprintf(&b, "%d. **%s** (%s)\n   %s\n\n",
				i+1, scheme.NameEN, scheme.Sector, truncate(scheme.DescriptionEN, 80))
		}
		b.WriteString("Tell me the scheme name for complete information.")
	}
	return b.String()
}

// titleSector upper-cases the first letter of the sector name for display.
func titleSector(sector catalog.Sector) string {
	s := string(sector)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// truncate cuts s to at most n runes, appending an ellipsis marker.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s + "..."
	}
	return string(runes[:n]) + "..."
}

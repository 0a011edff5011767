// Package agent implements the dialogue orchestration engine: per-turn
// language detection, slot extraction, intent classification, state-machine
// routing, tool dispatch and response synthesis, with slot and history
// state carried in a per-conversation session.
package agent

import (
	"context"
	"fmt"
	"strings"

	"niva/internal/catalog"
	"niva/internal/llm"
	"niva/internal/logging"
	"niva/internal/tools"
)

// Executor defaults applied when the merged slots leave eligibility
// parameters unset.
const (
	defaultAge    = 30
	defaultIncome = 100000
)

// Turn is the result of one pass through the engine.
type Turn struct {
	Response string
	Language catalog.Language
	Intent   Intent
}

// stage is a router destination for a planned turn.
type stage int

const (
	stageAskInfo stage = iota
	stageExecutor
	stageSynthesizer
)

// Agent runs the Planner → {AskInfo | Executor → Synthesizer | Synthesizer}
// state machine over one session. Construct one Agent per conversation.
type Agent struct {
	dispatcher *tools.Dispatcher
	llm        llm.Client
	session    *Session
}

// New creates an agent bound to a fresh session.
func New(dispatcher *tools.Dispatcher, client llm.Client) *Agent {
	return &Agent{
		dispatcher: dispatcher,
		llm:        client,
		session:    NewSession(),
	}
}

// Session exposes the agent's conversation state.
func (a *Agent) Session() *Session {
	return a.session
}

// Clear resets the conversation: history and slots are emptied.
func (a *Agent) Clear() {
	a.session.Clear()
}

// plan holds the planner's output for one turn.
type plan struct {
	intent  Intent
	slots   Slots
	missing []string
}

// Process runs one turn: plan, route, execute, synthesize. Empty input
// short-circuits before the router with a fixed reply. External-collaborator
// failures degrade the reply rather than failing the turn; only context
// cancellation surfaces as an error.
func (a *Agent) Process(ctx context.Context, userInput string) (Turn, error) {
	timer := logging.StartTimer(logging.CategoryAgent, "process")
	defer timer.StopWithInfo()

	lang := DetectLanguage(userInput)
	a.session.SetLanguage(lang)

	if strings.TrimSpace(userInput) == "" {
		return Turn{
			Response: couldNotUnderstand(lang),
			Language: lang,
			Intent:   IntentSearch,
		}, nil
	}

	p := a.planner(userInput)
	logging.Agent("Turn: lang=%s intent=%s missing=%v", lang, p.intent, p.missing)

	var response string
	switch a.route(p) {
	case stageAskInfo:
		response = askInfo(p.missing, lang)
	case stageSynthesizer:
		response = a.synthesize(ctx, p.intent, userInput, "", lang)
	case stageExecutor:
		results := a.execute(ctx, p, userInput, lang)
		if err := ctx.Err(); err != nil {
			return Turn{}, err
		}
		response = a.synthesize(ctx, p.intent, userInput, results, lang)
	}

	if err := ctx.Err(); err != nil {
		return Turn{}, err
	}

	a.session.AppendExchange(userInput, response)
	return Turn{Response: response, Language: lang, Intent: p.intent}, nil
}

// planner extracts slots, merges them into the session, and classifies the
// intent. Eligibility turns additionally compute their missing required
// slots.
func (a *Agent) planner(userInput string) plan {
	extracted := ExtractSlots(userInput)
	merged := a.session.MergeSlots(extracted)

	p := plan{
		intent: ClassifyIntent(userInput),
		slots:  merged,
	}
	if p.intent == IntentEligibility {
		p.missing = MissingEligibilitySlots(merged)
	}
	return p
}

// route applies the transition rule: clarification wins, greetings skip the
// executor, everything else runs a tool before synthesis.
func (a *Agent) route(p plan) stage {
	switch {
	case p.intent == IntentEligibility && len(p.missing) > 0:
		logging.Routing("intent=%s -> ask_info (missing %v)", p.intent, p.missing)
		return stageAskInfo
	case p.intent == IntentGreet:
		logging.Routing("intent=%s -> synthesizer", p.intent)
		return stageSynthesizer
	default:
		logging.Routing("intent=%s -> executor", p.intent)
		return stageExecutor
	}
}

// clarificationQuestions is the language-specific question per missing slot.
var clarificationQuestions = map[catalog.Language]map[string]string{
	catalog.LanguageTelugu:  {"scheme_name": "ఏ యోజన కోసం?", "age": "మీ వయస్సు?"},
	catalog.LanguageEnglish: {"scheme_name": "Which scheme?", "age": "Your age?"},
}

// askInfo produces the clarification reply: one question per missing slot.
// Terminal for the turn; no tool or generator call happens.
func askInfo(missing []string, lang catalog.Language) string {
	var b strings.Builder
	if lang == catalog.LanguageTelugu {
		b.WriteString("🤔 కొంత సమాచారం అవసరం:\n")
	} else {
		b.WriteString("🤔 Need some info:\n")
	}
	for _, slot := range missing {
		q, ok := clarificationQuestions[lang][slot]
		if !ok {
			q = slot
		}
		fmt.Fprintf(&b, "❓ %s\n", q)
	}
	return b.String()
}

// execute maps the planned intent onto its tool call and runs it. A failed
// search degrades to the empty string so the synthesizer can still answer.
func (a *Agent) execute(ctx context.Context, p plan, userInput string, lang catalog.Language) string {
	call := a.buildCall(p, userInput, lang)
	results, err := a.dispatcher.Execute(ctx, call)
	if err != nil {
		logging.Tools("Tool %s failed: %v", call.Kind, err)
		return ""
	}
	return results
}

// buildCall resolves the intent to its tool kind and fills the typed
// arguments from the merged slots, defaulting unset eligibility parameters
// and falling back to the raw utterance as a scheme reference.
func (a *Agent) buildCall(p plan, userInput string, lang catalog.Language) tools.Call {
	schemeRef := p.slots.SchemeName
	if schemeRef == "" {
		schemeRef = userInput
	}

	switch p.intent {
	case IntentEligibility:
		age := defaultAge
		if p.slots.Age != nil {
			age = *p.slots.Age
		}
		income := defaultIncome
		if p.slots.Income != nil {
			income = *p.slots.Income
		}
		return tools.Call{
			Kind:     tools.KindCheckEligibility,
			Language: lang,
			Eligibility: tools.EligibilityArgs{
				SchemeRef:    schemeRef,
				Age:          age,
				AnnualIncome: income,
				Occupation:   p.slots.Occupation,
			},
		}
	case IntentCompare:
		ref1, ref2 := compareRefs(userInput)
		return tools.Call{
			Kind:     tools.KindCompareSchemes,
			Language: lang,
			Compare:  tools.CompareArgs{Ref1: ref1, Ref2: ref2},
		}
	case IntentCalculate:
		return tools.Call{
			Kind:      tools.KindCalculateBenefits,
			Language:  lang,
			Calculate: tools.CalculateArgs{SchemeRef: schemeRef},
		}
	case IntentApply:
		return tools.Call{
			Kind:     tools.KindApplicationSteps,
			Language: lang,
			Apply:    tools.ApplyArgs{SchemeRef: schemeRef},
		}
	case IntentSector:
		return tools.Call{
			Kind:     tools.KindSchemesBySector,
			Language: lang,
			Sector:   tools.SectorArgs{Utterance: userInput},
		}
	case IntentAll:
		return tools.Call{
			Kind:     tools.KindAllSchemes,
			Language: lang,
		}
	default:
		return tools.Call{
			Kind:     tools.KindSemanticSearch,
			Language: lang,
			Search:   tools.SearchArgs{Query: userInput, TopK: 3},
		}
	}
}

// compareRefs pulls up to two distinct scheme references out of the
// utterance via the scheme keyword table, falling back to the two
// flagship schemes when the utterance names fewer than two.
func compareRefs(userInput string) (string, string) {
	lower := strings.ToLower(userInput)
	var refs []string
	for _, sk := range schemeKeywords {
		if !strings.Contains(lower, sk.keyword) {
			continue
		}
		dup := false
		for _, r := range refs {
			if r == sk.schemeID {
				dup = true
				break
			}
		}
		if !dup {
			refs = append(refs, sk.schemeID)
		}
		if len(refs) == 2 {
			return refs[0], refs[1]
		}
	}
	switch len(refs) {
	case 1:
		if refs[0] == "pm_kisan" {
			return refs[0], "pm_awas"
		}
		return refs[0], "pm_kisan"
	default:
		return "pm_kisan", "pm_awas"
	}
}

// synthesize turns tool output into the final reply. Greetings are fixed
// strings; everything else goes through the text-generation collaborator
// with a language-conditioned instruction. A generation failure degrades to
// the raw tool output rather than failing the turn.
func (a *Agent) synthesize(ctx context.Context, intent Intent, userInput, results string, lang catalog.Language) string {
	if intent == IntentGreet {
		if lang == catalog.LanguageTelugu {
			return "నమస్కారం! 🙏 నేను NIVA. ఏ యోజన గురించి తెలుసుకోవాలి?"
		}
		return "Hello! 🙏 I'm NIVA. Which scheme would you like to know about?"
	}

	var system string
	if lang == catalog.LanguageTelugu {
		system = fmt.Sprintf("మీరు NIVA. తెలుగులో మాత్రమే 4-6 వాక్యాలలో సమాధానం ఇవ్వండి.\nసమాచారం: %s", results)
	} else {
		system = fmt.Sprintf("You are NIVA. Reply in English only, 4-6 sentences.\nInfo: %s", results)
	}

	reply, err := a.llm.CompleteWithSystem(ctx, system, userInput)
	if err != nil {
		logging.Agent("Generation failed, returning tool output: %v", err)
		if results != "" {
			return results
		}
		return generationUnavailable(lang)
	}
	return reply
}

func couldNotUnderstand(lang catalog.Language) string {
	if lang == catalog.LanguageTelugu {
		return "క్షమించండి, మీ మాట అర్థం కాలేదు. దయచేసి మళ్ళీ చెప్పండి."
	}
	return "Sorry, I could not understand that. Please try again."
}

func generationUnavailable(lang catalog.Language) string {
	if lang == catalog.LanguageTelugu {
		return "క్షమించండి, ప్రస్తుతం సమాధానం ఇవ్వలేకపోతున్నాను. కాసేపటి తర్వాత ప్రయత్నించండి."
	}
	return "Sorry, I cannot answer right now. Please try again later."
}

package signals

import "strings"

// SoftContradictionType names a tension inside a formulation that lowers
// coherence without invalidating it.
type SoftContradictionType string

const (
	SoftNormativeVsEvidence    SoftContradictionType = "normative_vs_evidence"
	SoftUrgencyMismatch        SoftContradictionType = "urgency_mismatch"
	SoftGoalVsCosts            SoftContradictionType = "goal_vs_costs"
	SoftPreservationMismatch   SoftContradictionType = "preservation_mismatch"
	SoftTimeHorizonMismatch    SoftContradictionType = "time_horizon_mismatch"
	SoftAlternativesIgnored    SoftContradictionType = "alternatives_ignored"
	SoftCausalAttributionDrift SoftContradictionType = "causal_attribution_drift"
	SoftSemanticAmbiguity      SoftContradictionType = "semantic_ambiguity"
	SoftValueConflict          SoftContradictionType = "value_conflict"
	SoftAgencyExternalization  SoftContradictionType = "agency_externalization"
)

// SoftAction is what a caller is advised to do about a finding.
type SoftAction string

const (
	ActionNoteOnly        SoftAction = "note_only"
	ActionReframe         SoftAction = "reframe"
	ActionAskFollowup     SoftAction = "ask_followup"
	ActionLowerConfidence SoftAction = "lower_confidence"
	ActionStopAndRefine   SoftAction = "stop_and_refine"
)

var defaultSoftActions = map[SoftContradictionType]SoftAction{
	SoftNormativeVsEvidence:    ActionReframe,
	SoftUrgencyMismatch:        ActionAskFollowup,
	SoftGoalVsCosts:            ActionAskFollowup,
	SoftPreservationMismatch:   ActionAskFollowup,
	SoftTimeHorizonMismatch:    ActionAskFollowup,
	SoftAlternativesIgnored:    ActionAskFollowup,
	SoftCausalAttributionDrift: ActionAskFollowup,
	SoftSemanticAmbiguity:      ActionStopAndRefine,
	SoftValueConflict:          ActionAskFollowup,
	SoftAgencyExternalization:  ActionLowerConfidence,
}

// DefaultAction returns the suggested action for t, note_only when t has none.
func (t SoftContradictionType) DefaultAction() SoftAction {
	if a, ok := defaultSoftActions[t]; ok {
		return a
	}
	return ActionNoteOnly
}

// SoftContradiction is one finding. AffectedAxes uses the short axis names.
type SoftContradiction struct {
	Type            SoftContradictionType `json:"type"`
	Severity        Severity              `json:"severity"`
	AffectedAxes    []string              `json:"affected_axes"`
	Note            string                `json:"note"`
	SuggestedAction SoftAction            `json:"suggested_action"`
}

// Evidence is the free text a caller holds about one affirmation. Only
// Statement is required; the other fields are what the person said about the
// facts, their situation and their purpose.
type Evidence struct {
	Statement  string `json:"statement"`
	Foundation string `json:"foundation,omitempty"`
	Context    string `json:"context,omitempty"`
	Purpose    string `json:"purpose,omitempty"`
}

var (
	normativeMarkers = []string{
		"debo", "tengo que", "necesito", "ocupo", "es necesario", "es una necesidad",
	}
	lowUrgencyMarkers = []string{
		"sin urgencia", "no es urgente", "no hay urgencia", "sin prisa", "no urge",
	}
	reliefMarkers = []string{
		"mas tranquilo", "mas tranquila", "mejor", "en paz", "mas estable",
	}
	contextPressureMarkers = []string{
		"me obligan", "me presionan", "me exigen", "ultimatum", "amenaza", "si no",
	}
	strongActionMarkers = []string{
		"tengo que", "debo", "necesito", "trabajar mucho", "hacer lo que sea", "cueste lo que cueste",
	}
	unknownPurposeMarkers = []string{"no lo se", "no se"}
)

const (
	noteNormativeVsEvidence = "La afirmación se formula como obligación ('debo/necesito'), " +
		"pero el fundamento sugiere baja urgencia o un contrafactual estable " +
		"(p.ej. 'más tranquilo') sin presión externa clara."
	notePurposeGap = "Se propone una acción fuerte ('tengo que/debo'), pero el propósito declarado " +
		"está ausente o es indeterminado ('no lo sé'). Esto reduce coherencia y certeza."
)

// DetectSoftContradictions runs the soft contradiction rules over ev in a
// fixed order. Findings are advisory; nothing folds them into scores.
func DetectSoftContradictions(ev Evidence) []SoftContradiction {
	out := []SoftContradiction{}
	stmt := normalize(ev.Statement)
	if stmt == "" {
		return out
	}
	foundation := normalize(ev.Foundation)
	situation := normalize(ev.Context)
	purpose := normalize(ev.Purpose)

	if c, ok := normativeVsEvidence(stmt, foundation, situation); ok {
		out = append(out, c)
	}
	if c, ok := purposeGap(stmt, purpose); ok {
		out = append(out, c)
	}
	return out
}

// normativeVsEvidence fires when an obligation-shaped statement meets a
// foundation that reports low urgency or relief if nothing is done, and the
// situation shows no outside pressure.
func normativeVsEvidence(stmt, foundation, situation string) (SoftContradiction, bool) {
	if !containsAny(stmt, normativeMarkers) {
		return SoftContradiction{}, false
	}
	lowUrgency := containsAny(foundation, lowUrgencyMarkers)
	relief := containsAny(foundation, reliefMarkers)
	if (!lowUrgency && !relief) || containsAny(situation, contextPressureMarkers) {
		return SoftContradiction{}, false
	}
	severity := SeverityLow
	if lowUrgency && relief {
		severity = SeverityMedium
	}
	return newSoftContradiction(SoftNormativeVsEvidence, severity, []string{"F", "C"}, noteNormativeVsEvidence), true
}

// purposeGap fires when a strong commitment comes with no purpose, or with
// "no lo sé" as the purpose.
func purposeGap(stmt, purpose string) (SoftContradiction, bool) {
	if !containsAny(stmt, strongActionMarkers) {
		return SoftContradiction{}, false
	}
	if purpose != "" && !containsAnyWord(purpose, unknownPurposeMarkers) {
		return SoftContradiction{}, false
	}
	return newSoftContradiction(SoftSemanticAmbiguity, SeverityMedium, []string{"P"}, notePurposeGap), true
}

func newSoftContradiction(t SoftContradictionType, sev Severity, axes []string, note string) SoftContradiction {
	return SoftContradiction{
		Type:            t,
		Severity:        sev,
		AffectedAxes:    axes,
		Note:            note,
		SuggestedAction: t.DefaultAction(),
	}
}

func containsAny(text string, phrases []string) bool {
	if text == "" {
		return false
	}
	for _, p := range phrases {
		if containsPhrase(text, p) {
			return true
		}
	}
	return false
}

// containsAnyWord is containsAny with a closed right boundary, so "no se"
// does not match "no sentirme".
func containsAnyWord(text string, phrases []string) bool {
	for _, p := range phrases {
		for i := 0; ; {
			j := strings.Index(text[i:], p)
			if j < 0 {
				break
			}
			start, end := i+j, i+j+len(p)
			if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
				return true
			}
			i = start + 1
		}
	}
	return false
}

package signals

// Severity grades a risk pattern.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Delta is the advisory risk increment reported for a severity.
func (s Severity) Delta() float64 {
	switch s {
	case SeverityLow:
		return 0.10
	case SeverityHigh:
		return 0.35
	default:
		return 0.20
	}
}

// RiskPattern is a known risky framing, recognised by trigger phrases.
type RiskPattern struct {
	ID                string
	Domain            string
	Title             string
	Severity          Severity
	Triggers          []string
	FollowupQuestions []string
}

// PatternHit is a RiskPattern found in a text.
type PatternHit struct {
	ID                string   `json:"pattern_id"`
	Domain            string   `json:"domain"`
	Title             string   `json:"title"`
	Severity          Severity `json:"severity"`
	FollowupQuestions []string `json:"followup_questions"`
	EvidenceHits      []string `json:"evidence_hits"`
}

// maxEvidenceHits bounds the trigger phrases reported per hit.
const maxEvidenceHits = 5

var riskPatterns = []RiskPattern{
	{
		ID: "REL_AGE_GAP", Domain: "relationships", Severity: SeverityMedium,
		Title: "Diferencia de edad significativa (pareja)",
		Triggers: []string{
			"novia mucho mas joven", "pareja mucho mas joven", "una novia mas joven",
			"una pareja mas joven", "pareja mucho menor", "la edad es solo un numero",
		},
		FollowupQuestions: []string{
			"¿Qué edades tienen ambos (aprox.)?",
			"¿Hay dependencia económica o de vivienda entre ustedes?",
			"¿Qué esperan ambos en 6–12 meses (exclusividad, convivencia, hijos, etc.)?",
		},
	},
	{
		ID: "REL_BABY_SAVE_REL", Domain: "relationships", Severity: SeverityHigh,
		Title: "Un bebé salvará la relación",
		Triggers: []string{
			"un bebe salvara nuestra relacion", "tener un bebe para arreglar la relacion", "un hijo nos unira",
		},
		FollowupQuestions: []string{
			"¿Cómo resuelven hoy los conflictos (ejemplos reales)?",
			"¿Cómo se repartirían tareas y noches sin dormir?",
			"¿La relación es estable antes del embarazo?",
		},
	},
	{
		ID: "REL_JEALOUS_LOVE", Domain: "relationships", Severity: SeverityHigh,
		Title: "Es celoso/a porque me quiere",
		Triggers: []string{
			"es celoso porque me quiere", "es celosa porque me quiere", "me cela porque me ama",
		},
		FollowupQuestions: []string{
			"¿Qué conductas específicas ocurren (revisar teléfono, impedir salidas, amenazas)?",
			"¿Cómo responde cuando pones límites claros?",
			"¿Ha habido agresión verbal o física?",
		},
	},
	{
		ID: "MNY_MLM", Domain: "money_work", Severity: SeverityHigh,
		Title: "Entrar a redes de mercadeo (MLM) como independencia financiera",
		Triggers: []string{
			"redes de mercadeo", "mlm", "marketing multinivel", "ser mi propio jefe en redes",
		},
		FollowupQuestions: []string{
			"¿De dónde viene el ingreso principal (producto o reclutamiento)?",
			"¿Cuánto debes invertir mensual obligatoriamente?",
		},
	},
	{
		ID: "MNY_QUIT_NO_PLAN", Domain: "money_work", Severity: SeverityMedium,
		Title: "Renunciar sin empleo/plan firmado",
		Triggers: []string{
			"renunciar sin tener otro empleo", "voy a renunciar manana", "dejo el trabajo sin plan", "sin plan b",
		},
		FollowupQuestions: []string{
			"¿Cuántos meses puedes cubrir tus gastos sin ingresos?",
			"¿Cuál es tu plan de búsqueda (fechas, contactos, portafolio)?",
			"¿Qué gastos fijos no puedes reducir?",
		},
	},
	{
		ID: "MNY_FOMO_INVEST", Domain: "money_work", Severity: SeverityHigh,
		Title: "Invertir por tendencia viral (FOMO) en cripto/acciones",
		Triggers: []string{
			"invertir por tendencia", "porque esta subiendo", "me voy a meter a cripto", "por tiktok", "por viral",
		},
		FollowupQuestions: []string{
			"¿Cuánto capital es (porcentaje de tus ahorros)?",
			"¿Cuál es tu horizonte (3 meses vs 3 años)?",
			"¿Cuál es tu plan de salida si baja 20–40%?",
		},
	},
	{
		ID: "HLT_SLEEP_4H", Domain: "health_care", Severity: SeverityHigh,
		Title: "Dormir 4 horas es suficiente",
		Triggers: []string{
			"dormir 4 horas", "duermo 4 horas", "con 4 horas tengo",
		},
		FollowupQuestions: []string{
			"¿Cuántos días a la semana duermes 4 horas?",
			"¿Te quedas dormido/a de día o al manejar?",
			"¿Te despiertas descansado/a o cansado/a?",
		},
	},
	{
		ID: "HLT_ALCOHOL_SLEEP", Domain: "health_care", Severity: SeverityHigh,
		Title: "Alcohol para dormir mejor",
		Triggers: []string{
			"tomo alcohol para dormir", "una copa para dormir", "me ayuda a dormir el alcohol",
		},
		FollowupQuestions: []string{
			"¿Cuántos días por semana lo haces y cuánto tomas?",
			"¿Qué pasa si no bebes (te cuesta conciliar, despiertas)?",
			"¿Hay ansiedad o estrés sostenido detrás?",
		},
	},
	{
		ID: "HLT_IGNORE_PAIN", Domain: "health_care", Severity: SeverityMedium,
		Title: "Ignorar dolor crónico (ya se pasará)",
		Triggers: []string{
			"ya se pasara", "ignorar el dolor", "dolor persistente normal",
		},
		FollowupQuestions: []string{
			"¿Desde cuándo empezó y ha ido empeorando?",
			"¿Dónde duele exactamente y qué lo dispara/mejora?",
			"¿Hay síntomas asociados (fiebre, adormecimiento, debilidad)?",
		},
	},
}

// RiskPatterns returns the built-in pattern table.
func RiskPatterns() []RiskPattern {
	out := make([]RiskPattern, len(riskPatterns))
	copy(out, riskPatterns)
	return out
}

// DetectRiskPatterns returns every pattern with at least one trigger in text,
// in table order, and the summed severity delta capped at 1. The delta is
// advisory; nothing folds it into the declared risk dimensions.
func DetectRiskPatterns(text string) ([]PatternHit, float64) {
	norm := normalize(text)
	hits := []PatternHit{}
	if norm == "" {
		return hits, 0
	}

	var delta float64
	for _, p := range riskPatterns {
		var evidence []string
		for _, trigger := range p.Triggers {
			if containsPhrase(norm, trigger) {
				evidence = append(evidence, trigger)
			}
		}
		if len(evidence) == 0 {
			continue
		}
		if len(evidence) > maxEvidenceHits {
			evidence = evidence[:maxEvidenceHits]
		}
		delta += p.Severity.Delta()
		hits = append(hits, PatternHit{
			ID:                p.ID,
			Domain:            p.Domain,
			Title:             p.Title,
			Severity:          p.Severity,
			FollowupQuestions: append([]string(nil), p.FollowupQuestions...),
			EvidenceHits:      evidence,
		})
	}
	return hits, min(delta, 1)
}

package interview

import (
	"fmt"

	"axioma/internal/discernment"
	"axioma/internal/interview/models"
)

// Bank holds the fixed, ordered question pool of each axis.
type Bank struct {
	pools map[discernment.Axis][]models.Question
}

// NewBank validates questions and groups them by axis, keeping order.
func NewBank(questions []models.Question) (*Bank, error) {
	b := &Bank{pools: make(map[discernment.Axis][]models.Question, len(discernment.Axes))}
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question id is required")
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if q.Axis.Short() == "?" {
			return nil, fmt.Errorf("question %s: unknown axis %q", q.ID, q.Axis)
		}
		if err := validateKind(q); err != nil {
			return nil, fmt.Errorf("question %s: %w", q.ID, err)
		}
		b.pools[q.Axis] = append(b.pools[q.Axis], q)
	}
	for _, axis := range discernment.Axes {
		if len(b.pools[axis]) == 0 {
			return nil, fmt.Errorf("axis %s has no questions", axis)
		}
	}
	return b, nil
}

func validateKind(q models.Question) error {
	switch q.Kind {
	case models.KindYesNo:
		switch q.Target {
		case models.TargetVerifiable, models.TargetNoContradiction, models.TargetValuesAligned, models.TargetLongTermCoherent:
			return nil
		}
	case models.KindLevel:
		switch q.Target {
		case models.TargetEvidenceSignal, models.TargetSituationalFit, models.TargetResourceAvailability,
			models.TargetRiskTime, models.TargetRiskMoney, models.TargetRiskHealthRelationships, models.TargetRiskPeace:
			return nil
		}
	case models.KindFlag:
		if q.Target != models.TargetContextFlag {
			break
		}
		if _, ok := discernment.ParseContextFlag(string(q.Flag)); !ok {
			return fmt.Errorf("unknown context flag %q", q.Flag)
		}
		return nil
	default:
		return fmt.Errorf("unknown kind %q", q.Kind)
	}
	return fmt.Errorf("kind %s cannot target %s", q.Kind, q.Target)
}

// Pool returns a copy of one axis' questions in asking order.
func (b *Bank) Pool(axis discernment.Axis) []models.Question {
	return append([]models.Question(nil), b.pools[axis]...)
}

// Lookup finds a question by ID.
func (b *Bank) Lookup(id string) (models.Question, bool) {
	for _, axis := range discernment.Axes {
		for _, q := range b.pools[axis] {
			if q.ID == id {
				return q, true
			}
		}
	}
	return models.Question{}, false
}

// DefaultBank returns the built-in Spanish question pools.
func DefaultBank() *Bank {
	b, err := NewBank(defaultQuestions)
	if err != nil {
		panic(fmt.Sprintf("default question bank: %v", err))
	}
	return b
}

var defaultQuestions = []models.Question{
	{ID: "f_verifiable", Axis: discernment.AxisFundamento, Kind: models.KindYesNo, Target: models.TargetVerifiable,
		Text: "¿Puedes comprobar esta afirmación con hechos concretos, no solo con lo que sientes? (sí / no)"},
	{ID: "f_evidence", Axis: discernment.AxisFundamento, Kind: models.KindLevel, Target: models.TargetEvidenceSignal,
		Text: "¿Cuánta evidencia tienes a favor? (bajo / medio / alto)"},
	{ID: "f_no_contradiction", Axis: discernment.AxisFundamento, Kind: models.KindYesNo, Target: models.TargetNoContradiction,
		Text: "¿Es cierto que nada de lo que sabes la contradice? (sí / no)"},
	{ID: "f_harms_others", Axis: discernment.AxisFundamento, Kind: models.KindFlag, Target: models.TargetContextFlag, Flag: discernment.FlagHarmsOthers,
		Text: "¿Alguien más saldría perjudicado si resulta que estás equivocado? (sí / no)"},

	{ID: "c_fit", Axis: discernment.AxisContexto, Kind: models.KindLevel, Target: models.TargetSituationalFit,
		Text: "¿Qué tan bien encaja con tu situación actual? (bajo / medio / alto)"},
	{ID: "c_resources", Axis: discernment.AxisContexto, Kind: models.KindLevel, Target: models.TargetResourceAvailability,
		Text: "¿Cuentas con los recursos que necesitas: tiempo, dinero, apoyo? (bajo / medio / alto)"},
	{ID: "c_risk_money", Axis: discernment.AxisContexto, Kind: models.KindLevel, Target: models.TargetRiskMoney,
		Text: "¿Cuánto arriesgas en dinero? (bajo / medio / alto)"},
	{ID: "c_risk_time", Axis: discernment.AxisContexto, Kind: models.KindLevel, Target: models.TargetRiskTime,
		Text: "¿Cuánto tiempo te costaría si sale mal? (bajo / medio / alto)"},
	{ID: "c_risk_health", Axis: discernment.AxisContexto, Kind: models.KindLevel, Target: models.TargetRiskHealthRelationships,
		Text: "¿Qué tanto expone tu salud o tus relaciones? (bajo / medio / alto)"},
	{ID: "c_risk_peace", Axis: discernment.AxisContexto, Kind: models.KindLevel, Target: models.TargetRiskPeace,
		Text: "¿Cuánto te quitaría la paz? (bajo / medio / alto)"},
	{ID: "c_pressure", Axis: discernment.AxisContexto, Kind: models.KindFlag, Target: models.TargetContextFlag, Flag: discernment.FlagExternalPressure,
		Text: "¿Sientes presión de otras personas para decidir? (sí / no)"},
	{ID: "c_financial", Axis: discernment.AxisContexto, Kind: models.KindFlag, Target: models.TargetContextFlag, Flag: discernment.FlagFinancialStrain,
		Text: "¿Estás en apuros económicos ahora mismo? (sí / no)"},

	{ID: "p_values", Axis: discernment.AxisPrincipio, Kind: models.KindYesNo, Target: models.TargetValuesAligned,
		Text: "¿Esta decisión está alineada con lo que valoras? (sí / no)"},
	{ID: "p_long_term", Axis: discernment.AxisPrincipio, Kind: models.KindYesNo, Target: models.TargetLongTermCoherent,
		Text: "¿La seguirías eligiendo dentro de cinco años? (sí / no)"},
	{ID: "p_identity", Axis: discernment.AxisPrincipio, Kind: models.KindFlag, Target: models.TargetContextFlag, Flag: discernment.FlagIdentityQuestion,
		Text: "¿Cambia esta decisión la forma en que te ves a ti mismo? (sí / no)"},
	{ID: "p_contradiction", Axis: discernment.AxisPrincipio, Kind: models.KindFlag, Target: models.TargetContextFlag, Flag: discernment.FlagPurposeContradiction,
		Text: "¿Lo harías aunque sepas que va contra tu propósito? (sí / no)"},
}

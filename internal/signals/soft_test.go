package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSoftContradictions(t *testing.T) {
	tests := []struct {
		name         string
		ev           Evidence
		wantTypes    []SoftContradictionType
		wantSeverity []Severity
	}{
		{
			name: "obligation without urgency and with relief",
			ev: Evidence{
				Statement:  "Debo tener una novia mucho más joven",
				Foundation: "Es una necesidad sin urgencia; si no lo hago estaría más tranquilo",
				Purpose:    "Sentirme acompañado",
			},
			wantTypes:    []SoftContradictionType{SoftNormativeVsEvidence},
			wantSeverity: []Severity{SeverityMedium},
		},
		{
			name: "obligation with relief only is low",
			ev: Evidence{
				Statement:  "Necesito cambiar de ciudad",
				Foundation: "Si me quedo, la verdad estaría en paz",
				Purpose:    "Crecer",
			},
			wantTypes:    []SoftContradictionType{SoftNormativeVsEvidence},
			wantSeverity: []Severity{SeverityLow},
		},
		{
			name: "outside pressure cancels the tension",
			ev: Evidence{
				Statement:  "Debo firmar el contrato",
				Foundation: "No es urgente",
				Context:    "Me presionan desde la dirección",
				Purpose:    "Estabilidad",
			},
			wantTypes:    []SoftContradictionType{},
			wantSeverity: []Severity{},
		},
		{
			name: "strong action with unknown purpose",
			ev: Evidence{
				Statement: "Tengo que trabajar mucho este año",
				Purpose:   "No lo sé",
			},
			wantTypes:    []SoftContradictionType{SoftSemanticAmbiguity},
			wantSeverity: []Severity{SeverityMedium},
		},
		{
			name:         "strong action with no purpose at all",
			ev:           Evidence{Statement: "Haré lo que sea, cueste lo que cueste"},
			wantTypes:    []SoftContradictionType{SoftSemanticAmbiguity},
			wantSeverity: []Severity{SeverityMedium},
		},
		{
			name: "purpose word starting with no se is a real purpose",
			ev: Evidence{
				Statement: "Necesito dejar el turno de noche",
				Purpose:   "No sentirme agotado",
			},
			wantTypes:    []SoftContradictionType{},
			wantSeverity: []Severity{},
		},
		{
			name: "both rules in order",
			ev: Evidence{
				Statement:  "Debo comprar otro coche",
				Foundation: "Sin prisa",
			},
			wantTypes:    []SoftContradictionType{SoftNormativeVsEvidence, SoftSemanticAmbiguity},
			wantSeverity: []Severity{SeverityLow, SeverityMedium},
		},
		{
			name:         "plain statement",
			ev:           Evidence{Statement: "Aprender a tocar guitarra"},
			wantTypes:    []SoftContradictionType{},
			wantSeverity: []Severity{},
		},
		{
			name:         "empty statement",
			ev:           Evidence{Statement: "  ", Foundation: "sin urgencia"},
			wantTypes:    []SoftContradictionType{},
			wantSeverity: []Severity{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectSoftContradictions(tt.ev)
			require.NotNil(t, got)

			types := make([]SoftContradictionType, 0, len(got))
			severities := make([]Severity, 0, len(got))
			for _, c := range got {
				types = append(types, c.Type)
				severities = append(severities, c.Severity)
			}
			assert.Equal(t, tt.wantTypes, types)
			assert.Equal(t, tt.wantSeverity, severities)
		})
	}
}

func TestDetectSoftContradictions_FindingShape(t *testing.T) {
	got := DetectSoftContradictions(Evidence{
		Statement:  "Debo tener una novia mucho más joven",
		Foundation: "sin urgencia",
		Purpose:    "no sé",
	})
	require.Len(t, got, 2)

	assert.Equal(t, []string{"F", "C"}, got[0].AffectedAxes)
	assert.Equal(t, ActionReframe, got[0].SuggestedAction)
	assert.NotEmpty(t, got[0].Note)

	assert.Equal(t, []string{"P"}, got[1].AffectedAxes)
	assert.Equal(t, ActionStopAndRefine, got[1].SuggestedAction)
}

func TestSoftContradictionType_DefaultAction(t *testing.T) {
	assert.Equal(t, ActionLowerConfidence, SoftAgencyExternalization.DefaultAction())
	assert.Equal(t, ActionAskFollowup, SoftUrgencyMismatch.DefaultAction())
	assert.Equal(t, ActionNoteOnly, SoftContradictionType("unknown").DefaultAction())
}

func TestDetectEvidence_StatementDrivesMarkers(t *testing.T) {
	res := DetectEvidence(Evidence{
		Statement:  "Necesito pagar la deuda",
		Foundation: "me presionan con un ultimátum",
		Purpose:    "Dormir tranquilo",
	})

	assert.Contains(t, res.Keywords, "deuda")
	assert.NotContains(t, res.Keywords, "ultimatum", "foundation text never feeds markers")
	assert.Empty(t, res.SoftContradictions)
}

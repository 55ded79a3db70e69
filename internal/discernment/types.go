package discernment

import "slices"

// Axis identifies one of the three evaluation axes.
type Axis string

const (
	AxisFundamento Axis = "fundamento"
	AxisContexto   Axis = "contexto"
	AxisPrincipio  Axis = "principio"
)

// Axes lists the axes in their fixed tie-break order.
var Axes = []Axis{AxisFundamento, AxisContexto, AxisPrincipio}

// Short returns the one-letter axis label (F, C, P).
func (a Axis) Short() string {
	switch a {
	case AxisFundamento:
		return "F"
	case AxisContexto:
		return "C"
	case AxisPrincipio:
		return "P"
	default:
		return "?"
	}
}

// DecisionState is the classifier's terminal output.
type DecisionState string

const (
	StateNo              DecisionState = "NO"
	StatePosponer        DecisionState = "POSPONER"
	StateAdelanteGradual DecisionState = "ADELANTE_GRADUAL"
	StateAdelante        DecisionState = "ADELANTE"
)

// Rank orders states from strictest (0) to most permissive (3).
func (s DecisionState) Rank() int {
	switch s {
	case StateNo:
		return 0
	case StatePosponer:
		return 1
	case StateAdelanteGradual:
		return 2
	case StateAdelante:
		return 3
	default:
		return -1
	}
}

// Theme is a tag from the closed theme set.
type Theme string

const (
	ThemeSurvivalStability      Theme = "survival_stability"
	ThemeEthicsResponsibility   Theme = "ethics_responsibility"
	ThemeExternalPressure       Theme = "external_pressure"
	ThemePurposeIdentity        Theme = "purpose_identity"
	ThemeOptimizationEfficiency Theme = "optimization_efficiency"
	ThemeOther                  Theme = "other"
)

// IsKnown reports whether t belongs to the closed set, fallback excluded.
func (t Theme) IsKnown() bool {
	switch t {
	case ThemeSurvivalStability, ThemeEthicsResponsibility, ThemeExternalPressure,
		ThemePurposeIdentity, ThemeOptimizationEfficiency:
		return true
	}
	return false
}

// ContextFlag is a declared structural signal about the situation.
type ContextFlag string

const (
	FlagEthicalConflict      ContextFlag = "ethical_conflict"
	FlagHarmsOthers          ContextFlag = "harms_others"
	FlagExternalPressure     ContextFlag = "external_pressure"
	FlagImposedDeadline      ContextFlag = "imposed_deadline"
	FlagFinancialStrain      ContextFlag = "financial_strain"
	FlagLivelihoodAtRisk     ContextFlag = "livelihood_at_risk"
	FlagIdentityQuestion     ContextFlag = "identity_question"
	FlagPurposeContradiction ContextFlag = "purpose_contradiction"
	FlagEfficiencyGain       ContextFlag = "efficiency_gain"
)

// ContextFlags is the closed flag vocabulary.
var ContextFlags = []ContextFlag{
	FlagEthicalConflict,
	FlagHarmsOthers,
	FlagExternalPressure,
	FlagImposedDeadline,
	FlagFinancialStrain,
	FlagLivelihoodAtRisk,
	FlagIdentityQuestion,
	FlagPurposeContradiction,
	FlagEfficiencyGain,
}

// ParseContextFlag validates a flag name against the vocabulary.
func ParseContextFlag(s string) (ContextFlag, bool) {
	f := ContextFlag(s)
	return f, slices.Contains(ContextFlags, f)
}

// RawInput is what a caller declares for one evaluation. Nil pointers mean
// "not declared" and take the neutral default during normalization.
type RawInput struct {
	Affirmation string `json:"affirmation" yaml:"affirmation"`

	Verifiable      *bool    `json:"verifiable,omitempty" yaml:"verifiable,omitempty"`
	EvidenceSignal  *float64 `json:"evidence_signal,omitempty" yaml:"evidence_signal,omitempty"`
	NoContradiction *bool    `json:"no_contradiction,omitempty" yaml:"no_contradiction,omitempty"`

	SituationalFit       *float64 `json:"situational_fit,omitempty" yaml:"situational_fit,omitempty"`
	ResourceAvailability *float64 `json:"resource_availability,omitempty" yaml:"resource_availability,omitempty"`

	ValuesAligned    *bool `json:"values_aligned,omitempty" yaml:"values_aligned,omitempty"`
	LongTermCoherent *bool `json:"long_term_coherent,omitempty" yaml:"long_term_coherent,omitempty"`

	RiskTime                *float64 `json:"risk_time,omitempty" yaml:"risk_time,omitempty"`
	RiskMoney               *float64 `json:"risk_money,omitempty" yaml:"risk_money,omitempty"`
	RiskHealthRelationships *float64 `json:"risk_health_relationships,omitempty" yaml:"risk_health_relationships,omitempty"`
	RiskPeace               *float64 `json:"risk_peace,omitempty" yaml:"risk_peace,omitempty"`

	Flags    []ContextFlag `json:"context_flags,omitempty" yaml:"context_flags,omitempty"`
	Keywords []string      `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// HasFlag reports whether the raw input declares f.
func (r RawInput) HasFlag(f ContextFlag) bool {
	return slices.Contains(r.Flags, f)
}

// RiskDimensions holds the four declared risk estimates.
type RiskDimensions struct {
	Time                float64 `json:"time"`
	Money               float64 `json:"money"`
	HealthRelationships float64 `json:"health_relationships"`
	Peace               float64 `json:"peace"`
}

// Features is the normalized feature set: every field concrete and in range.
type Features struct {
	Affirmation string

	Verifiable      bool
	EvidenceSignal  float64
	NoContradiction bool

	SituationalFit       float64
	ResourceAvailability float64

	ValuesAligned    bool
	LongTermCoherent bool

	Risk RiskDimensions

	Flags    []ContextFlag
	Keywords []string
}

// HasFlag reports whether the normalized features carry f.
func (f Features) HasFlag(flag ContextFlag) bool {
	return slices.Contains(f.Flags, flag)
}

// AxisScore is a single axis value in [0,1].
type AxisScore struct {
	Axis  Axis    `json:"axis"`
	Value float64 `json:"value"`
}

// AxisScores groups the three axis values of one evaluation.
type AxisScores struct {
	Fundamento float64
	Contexto   float64
	Principio  float64
}

// Of returns the score of a single axis.
func (s AxisScores) Of(a Axis) float64 {
	switch a {
	case AxisFundamento:
		return s.Fundamento
	case AxisContexto:
		return s.Contexto
	case AxisPrincipio:
		return s.Principio
	}
	return 0
}

// List returns the scores in F, C, P order.
func (s AxisScores) List() []AxisScore {
	out := make([]AxisScore, 0, len(Axes))
	for _, a := range Axes {
		out = append(out, AxisScore{Axis: a, Value: s.Of(a)})
	}
	return out
}

// RiskProfile is the per-dimension risk plus its aggregate.
type RiskProfile struct {
	RiskDimensions
	Global float64 `json:"global"`
}

// ThemeAssignment is the classifier's verdict on what is at stake.
type ThemeAssignment struct {
	Dominant  Theme   `json:"dominant"`
	Secondary []Theme `json:"secondary"`
}

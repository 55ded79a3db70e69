package discernment

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================
// Justification: invalid thresholds must be rejected before any evaluation
// runs, so a misconfigured deployment fails at startup instead of producing
// inconsistent decisions.

func TestNewDecisionClassifier_RejectsInvalidThresholds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Thresholds)
	}{
		{"risk_medium above risk_high", func(th *Thresholds) { th.RiskMedium, th.RiskHigh = 0.8, 0.6 }},
		{"f_min above one", func(th *Thresholds) { th.FMin = 1.1 }},
		{"p_min negative", func(th *Thresholds) { th.PMin = -0.1 }},
		{"c_caution NaN", func(th *Thresholds) { th.CCaution = math.NaN() }},
		{"risk_high above one", func(th *Thresholds) { th.RiskHigh = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultThresholds()
			tt.mutate(&th)

			c, err := NewDecisionClassifier(th)
			require.Error(t, err)
			assert.Nil(t, c)

			var cfgErr *ThresholdConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.NotEmpty(t, cfgErr.Violations)
		})
	}
}

func TestNewDecisionClassifier_AcceptsEqualRiskBands(t *testing.T) {
	th := DefaultThresholds()
	th.RiskMedium, th.RiskHigh = 0.6, 0.6
	_, err := NewDecisionClassifier(th)
	assert.NoError(t, err)
}

// =============================================================================
// Classify Tests (Rule Chain)
// =============================================================================
// Justification: the rule chain is priority ordered; each case pins the
// first rule that fires, including the exact threshold boundaries.

func TestClassify(t *testing.T) {
	c, err := NewDecisionClassifier(DefaultThresholds())
	require.NoError(t, err)

	tests := []struct {
		name       string
		scores     AxisScores
		risk       float64
		wantState  DecisionState
		wantReason DecisionReason
	}{
		{
			name:       "adequate axes with risk above risk_high defer",
			scores:     AxisScores{Fundamento: 0.65, Contexto: 0.60, Principio: 0.685},
			risk:       0.80,
			wantState:  StatePosponer,
			wantReason: ReasonRiskTooHigh,
		},
		{
			name:       "weak grounding wins over everything",
			scores:     AxisScores{Fundamento: 0.49, Contexto: 1, Principio: 0},
			risk:       1,
			wantState:  StateNo,
			wantReason: ReasonInsufficientGrounding,
		},
		{
			name:       "weak principle",
			scores:     AxisScores{Fundamento: 0.9, Contexto: 1, Principio: 0.499},
			risk:       0,
			wantState:  StateNo,
			wantReason: ReasonPurposeConflict,
		},
		{
			name:       "f exactly at f_min passes rule 1",
			scores:     AxisScores{Fundamento: 0.5, Contexto: 0.9, Principio: 0.9},
			risk:       0.1,
			wantState:  StateAdelante,
			wantReason: ReasonAllClear,
		},
		{
			name:       "risk exactly at risk_high defers",
			scores:     AxisScores{Fundamento: 1, Contexto: 1, Principio: 1},
			risk:       0.75,
			wantState:  StatePosponer,
			wantReason: ReasonRiskTooHigh,
		},
		{
			name:       "risk exactly at risk_medium proceeds gradually",
			scores:     AxisScores{Fundamento: 1, Contexto: 1, Principio: 1},
			risk:       0.5,
			wantState:  StateAdelanteGradual,
			wantReason: ReasonModerateRisk,
		},
		{
			name:       "low context with low risk proceeds gradually",
			scores:     AxisScores{Fundamento: 1, Contexto: 0.49, Principio: 1},
			risk:       0.1,
			wantState:  StateAdelanteGradual,
			wantReason: ReasonLowContextFit,
		},
		{
			name:       "context exactly at c_caution proceeds",
			scores:     AxisScores{Fundamento: 1, Contexto: 0.5, Principio: 1},
			risk:       0.49,
			wantState:  StateAdelante,
			wantReason: ReasonAllClear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.scores, tt.risk)
			assert.Equal(t, tt.wantState, got.State)
			assert.Equal(t, tt.wantReason, got.Reason)
		})
	}
}

func TestClassify_ThresholdsAreConfigurable(t *testing.T) {
	strict := Thresholds{FMin: 0.8, PMin: 0.8, RiskHigh: 0.4, RiskMedium: 0.2, CCaution: 0.7}
	c, err := NewDecisionClassifier(strict)
	require.NoError(t, err)
	assert.Equal(t, strict, c.Thresholds())

	scores := AxisScores{Fundamento: 0.75, Contexto: 0.9, Principio: 0.9}
	assert.Equal(t, StateNo, c.Classify(scores, 0).State)

	lenient, err := NewDecisionClassifier(Thresholds{FMin: 0.1, PMin: 0.1, RiskHigh: 1, RiskMedium: 0.95, CCaution: 0})
	require.NoError(t, err)
	assert.Equal(t, StateAdelante, lenient.Classify(scores, 0.8).State)
}

func TestDecisionState_Rank(t *testing.T) {
	assert.Less(t, StateNo.Rank(), StatePosponer.Rank())
	assert.Less(t, StatePosponer.Rank(), StateAdelanteGradual.Rank())
	assert.Less(t, StateAdelanteGradual.Rank(), StateAdelante.Rank())
	assert.Equal(t, -1, DecisionState("MAYBE").Rank())
}

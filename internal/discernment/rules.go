package discernment

// DecisionReason names the rule that decided a classification.
type DecisionReason string

const (
	ReasonInsufficientGrounding DecisionReason = "insufficient_grounding"
	ReasonPurposeConflict       DecisionReason = "purpose_conflict"
	ReasonRiskTooHigh           DecisionReason = "risk_too_high"
	ReasonModerateRisk          DecisionReason = "moderate_risk"
	ReasonLowContextFit         DecisionReason = "low_context_fit"
	ReasonAllClear              DecisionReason = "all_clear"
)

// Decision is a classified state plus the rule that produced it.
type Decision struct {
	State  DecisionState
	Reason DecisionReason
}

// DecisionClassifier maps scores and global risk to a decision state.
type DecisionClassifier struct {
	t Thresholds
}

// NewDecisionClassifier validates the thresholds before any evaluation
// runs. Invalid thresholds return *ThresholdConfigError.
func NewDecisionClassifier(t Thresholds) (*DecisionClassifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &DecisionClassifier{t: t}, nil
}

// Thresholds returns the configured cut points.
func (c *DecisionClassifier) Thresholds() Thresholds {
	return c.t
}

// Classify applies the decision rule chain.
// This is pure domain logic - no I/O, no side effects.
// Rule priority (fail-fast):
//  1. Grounding below f_min - epistemic failure
//  2. Principle below p_min - action contradicts declared purpose
//  3. Global risk at or above risk_high - defer
//  4. Global risk at or above risk_medium, or weak context - proceed in steps
//  5. Otherwise proceed
func (c *DecisionClassifier) Classify(s AxisScores, riskGlobal float64) Decision {
	// Rule 1: Grounding - a failure here is epistemic, not ethical
	if s.Fundamento < c.t.FMin {
		return Decision{State: StateNo, Reason: ReasonInsufficientGrounding}
	}

	// Rule 2: Principle - purpose or values contradicted
	if s.Principio < c.t.PMin {
		return Decision{State: StateNo, Reason: ReasonPurposeConflict}
	}

	// Rule 3: Risk ceiling - cost too uncertain even with adequate axes
	if riskGlobal >= c.t.RiskHigh {
		return Decision{State: StatePosponer, Reason: ReasonRiskTooHigh}
	}

	// Rule 4: Caution band
	if riskGlobal >= c.t.RiskMedium {
		return Decision{State: StateAdelanteGradual, Reason: ReasonModerateRisk}
	}
	if s.Contexto < c.t.CCaution {
		return Decision{State: StateAdelanteGradual, Reason: ReasonLowContextFit}
	}

	return Decision{State: StateAdelante, Reason: ReasonAllClear}
}

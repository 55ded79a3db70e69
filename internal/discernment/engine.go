package discernment

// Engine wires the pure components for one immutable Config. Every
// evaluation owns its own Features and DiscernmentObject, so one Engine
// serves any number of concurrent evaluations.
type Engine struct {
	cfg        Config
	scorer     *AxisScorer
	risk       *RiskAggregator
	themes     *ThemeClassifier
	classifier *DecisionClassifier
}

// NewEngine validates cfg and compiles the theme rules.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	classifier, err := NewDecisionClassifier(cfg.Thresholds)
	if err != nil {
		return nil, err
	}
	themes, err := NewThemeClassifier(cfg.ThemeRules)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:        cfg,
		scorer:     NewAxisScorer(cfg.AxisWeights),
		risk:       NewRiskAggregator(cfg.RiskWeights),
		themes:     themes,
		classifier: classifier,
	}, nil
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() Config {
	return e.cfg
}

type evaluateOptions struct {
	agentNotes string
}

// EvaluateOption adjusts a single evaluation.
type EvaluateOption func(*evaluateOptions)

// WithAgentNotes attaches free-text notes, such as an interview stop trace.
func WithAgentNotes(notes string) EvaluateOption {
	return func(o *evaluateOptions) {
		o.agentNotes = notes
	}
}

// Evaluate normalizes raw and runs the full pipeline. Only normalization can
// fail; everything after it is total.
func (e *Engine) Evaluate(raw RawInput, opts ...EvaluateOption) (*DiscernmentObject, error) {
	var o evaluateOptions
	for _, opt := range opts {
		opt(&o)
	}

	features, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	risk := e.risk.Aggregate(features.Risk)
	scores := e.scorer.Score(features, risk.Global)
	theme := e.themes.Classify(features)
	decision := e.classifier.Classify(scores, risk.Global)

	return newDiscernmentObject(features, scores, risk, theme, decision, o.agentNotes), nil
}

package discernment

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// FundamentoWeights weighs the grounding signals.
type FundamentoWeights struct {
	Verifiable      float64 `yaml:"verifiable" json:"verifiable"`
	Evidence        float64 `yaml:"evidence" json:"evidence"`
	NoContradiction float64 `yaml:"no_contradiction" json:"no_contradiction"`
}

// ContextoWeights weighs the situational signals.
type ContextoWeights struct {
	SituationalFit float64 `yaml:"situational_fit" json:"situational_fit"`
	InverseRisk    float64 `yaml:"inverse_risk" json:"inverse_risk"`
	Resources      float64 `yaml:"resources" json:"resources"`
}

// PrincipioWeights weighs the purpose signals.
type PrincipioWeights struct {
	ValuesAligned    float64 `yaml:"values_aligned" json:"values_aligned"`
	LongTermCoherent float64 `yaml:"long_term_coherent" json:"long_term_coherent"`
}

// AxisWeights groups the per-axis weights. Weights are normalized by their
// sum, so only their ratios matter.
type AxisWeights struct {
	Fundamento FundamentoWeights `yaml:"fundamento" json:"fundamento"`
	Contexto   ContextoWeights   `yaml:"contexto" json:"contexto"`
	Principio  PrincipioWeights  `yaml:"principio" json:"principio"`
}

// RiskWeights weighs the four risk dimensions.
type RiskWeights struct {
	Time                float64 `yaml:"time" json:"time"`
	Money               float64 `yaml:"money" json:"money"`
	HealthRelationships float64 `yaml:"health_relationships" json:"health_relationships"`
	Peace               float64 `yaml:"peace" json:"peace"`
}

// Thresholds are the five decision-classifier cut points.
type Thresholds struct {
	FMin       float64 `yaml:"f_min" json:"f_min"`
	PMin       float64 `yaml:"p_min" json:"p_min"`
	RiskHigh   float64 `yaml:"risk_high" json:"risk_high"`
	RiskMedium float64 `yaml:"risk_medium" json:"risk_medium"`
	CCaution   float64 `yaml:"c_caution" json:"c_caution"`
}

// InterviewParams bound a guided interview.
type InterviewParams struct {
	MinProbesPerAxis int     `yaml:"min_probes_per_axis" json:"min_probes_per_axis"`
	MinCompleteness  float64 `yaml:"min_completeness" json:"min_completeness"`
	MaxTurns         int     `yaml:"max_turns" json:"max_turns"`
	NoGainWindow     int     `yaml:"no_gain_window" json:"no_gain_window"`
}

// ThemeRule maps a CEL predicate over context flags and keywords to a theme.
type ThemeRule struct {
	Theme Theme  `yaml:"theme" json:"theme"`
	When  string `yaml:"when" json:"when"`
}

// Config is the full tuning surface of the engine. It is immutable once an
// Engine is built from it.
type Config struct {
	AxisWeights AxisWeights     `yaml:"axis_weights" json:"axis_weights"`
	RiskWeights RiskWeights     `yaml:"risk_weights" json:"risk_weights"`
	Thresholds  Thresholds      `yaml:"thresholds" json:"thresholds"`
	Interview   InterviewParams `yaml:"interview" json:"interview"`
	ThemeRules  []ThemeRule     `yaml:"theme_rules" json:"theme_rules"`
}

// DefaultThresholds returns the canonical threshold set.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FMin:       0.5,
		PMin:       0.5,
		RiskHigh:   0.75,
		RiskMedium: 0.5,
		CCaution:   0.5,
	}
}

// DefaultInterviewParams returns the default interview bounds.
func DefaultInterviewParams() InterviewParams {
	return InterviewParams{
		MinProbesPerAxis: 2,
		MinCompleteness:  0.7,
		MaxTurns:         8,
		NoGainWindow:     2,
	}
}

// DefaultConfig returns equal weights, the canonical thresholds and the
// built-in theme rule table.
func DefaultConfig() Config {
	return Config{
		AxisWeights: AxisWeights{
			Fundamento: FundamentoWeights{Verifiable: 1, Evidence: 1, NoContradiction: 1},
			Contexto:   ContextoWeights{SituationalFit: 1, InverseRisk: 1, Resources: 1},
			Principio:  PrincipioWeights{ValuesAligned: 1, LongTermCoherent: 1},
		},
		RiskWeights: RiskWeights{Time: 0.25, Money: 0.25, HealthRelationships: 0.25, Peace: 0.25},
		Thresholds:  DefaultThresholds(),
		Interview:   DefaultInterviewParams(),
		ThemeRules:  DefaultThemeRules(),
	}
}

// LoadConfig reads a YAML file over the defaults. Keys absent from the file
// keep their default value; a theme_rules list replaces the built-in table.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load engine config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &ConfigError{Field: "yaml", Reason: "cannot decode", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section. Threshold problems come back as
// *ThresholdConfigError, everything else as *ConfigError.
func (c Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	weightSets := []struct {
		field   string
		weights []float64
	}{
		{"axis_weights.fundamento", []float64{c.AxisWeights.Fundamento.Verifiable, c.AxisWeights.Fundamento.Evidence, c.AxisWeights.Fundamento.NoContradiction}},
		{"axis_weights.contexto", []float64{c.AxisWeights.Contexto.SituationalFit, c.AxisWeights.Contexto.InverseRisk, c.AxisWeights.Contexto.Resources}},
		{"axis_weights.principio", []float64{c.AxisWeights.Principio.ValuesAligned, c.AxisWeights.Principio.LongTermCoherent}},
		{"risk_weights", []float64{c.RiskWeights.Time, c.RiskWeights.Money, c.RiskWeights.HealthRelationships, c.RiskWeights.Peace}},
	}
	for _, ws := range weightSets {
		if err := validateWeights(ws.field, ws.weights); err != nil {
			return err
		}
	}
	if err := c.Interview.Validate(); err != nil {
		return err
	}
	if len(c.ThemeRules) == 0 {
		return &ConfigError{Field: "theme_rules", Reason: "at least one rule is required"}
	}
	for i, r := range c.ThemeRules {
		if !r.Theme.IsKnown() {
			return &ConfigError{Field: fmt.Sprintf("theme_rules[%d].theme", i), Reason: fmt.Sprintf("unknown theme %q", r.Theme)}
		}
		if r.When == "" {
			return &ConfigError{Field: fmt.Sprintf("theme_rules[%d].when", i), Reason: "expression is required"}
		}
	}
	return nil
}

// Validate enforces 0 ≤ every threshold ≤ 1 and risk_medium ≤ risk_high.
func (t Thresholds) Validate() error {
	var violations []string
	named := []struct {
		name string
		v    float64
	}{
		{"f_min", t.FMin},
		{"p_min", t.PMin},
		{"risk_high", t.RiskHigh},
		{"risk_medium", t.RiskMedium},
		{"c_caution", t.CCaution},
	}
	for _, n := range named {
		if math.IsNaN(n.v) || n.v < 0 || n.v > 1 {
			violations = append(violations, fmt.Sprintf("%s=%v outside [0,1]", n.name, n.v))
		}
	}
	if t.RiskMedium > t.RiskHigh {
		violations = append(violations, fmt.Sprintf("risk_medium=%v exceeds risk_high=%v", t.RiskMedium, t.RiskHigh))
	}
	if len(violations) > 0 {
		return &ThresholdConfigError{Violations: violations}
	}
	return nil
}

// Validate checks the interview bounds.
func (p InterviewParams) Validate() error {
	switch {
	case p.MinProbesPerAxis < 1:
		return &ConfigError{Field: "interview.min_probes_per_axis", Reason: "must be at least 1"}
	case math.IsNaN(p.MinCompleteness) || p.MinCompleteness <= 0 || p.MinCompleteness > 1:
		return &ConfigError{Field: "interview.min_completeness", Reason: "must be within (0,1]"}
	case p.MaxTurns < 1:
		return &ConfigError{Field: "interview.max_turns", Reason: "must be at least 1"}
	case p.NoGainWindow < 1:
		return &ConfigError{Field: "interview.no_gain_window", Reason: "must be at least 1"}
	}
	return nil
}

func validateWeights(field string, ws []float64) error {
	sum := 0.0
	for _, w := range ws {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return &ConfigError{Field: field, Reason: "weights must be finite and non-negative"}
		}
		sum += w
	}
	if sum <= 0 {
		return &ConfigError{Field: field, Reason: "weights must not all be zero"}
	}
	return nil
}

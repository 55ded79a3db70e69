package discernment

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestParseConfig_OverridesOnlyGivenKeys(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
thresholds:
  risk_high: 0.9
risk_weights:
  money: 0.5
interview:
  min_probes_per_axis: 3
`))
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, 0.9, cfg.Thresholds.RiskHigh)
	assert.Equal(t, def.Thresholds.FMin, cfg.Thresholds.FMin)
	assert.Equal(t, 0.5, cfg.RiskWeights.Money)
	assert.Equal(t, 0.25, cfg.RiskWeights.Time)
	assert.Equal(t, 3, cfg.Interview.MinProbesPerAxis)
	assert.Equal(t, def.Interview.MaxTurns, cfg.Interview.MaxTurns)
	assert.Equal(t, def.ThemeRules, cfg.ThemeRules)
}

func TestParseConfig_ThemeRulesReplaceDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
theme_rules:
  - theme: survival_stability
    when: financial_strain
`))
	require.NoError(t, err)
	assert.Equal(t, []ThemeRule{{Theme: ThemeSurvivalStability, When: "financial_strain"}}, cfg.ThemeRules)
}

func TestParseConfig_Rejections(t *testing.T) {
	tests := []struct {
		name          string
		yaml          string
		wantThreshold bool
	}{
		{name: "bands out of order", yaml: "thresholds: {risk_medium: 0.8, risk_high: 0.7}", wantThreshold: true},
		{name: "threshold out of range", yaml: "thresholds: {c_caution: 1.5}", wantThreshold: true},
		{name: "negative weight", yaml: "axis_weights: {fundamento: {evidence: -1}}"},
		{name: "all-zero weights", yaml: "risk_weights: {time: 0, money: 0, health_relationships: 0, peace: 0}"},
		{name: "zero probes", yaml: "interview: {min_probes_per_axis: 0}"},
		{name: "completeness above one", yaml: "interview: {min_completeness: 1.2}"},
		{name: "zero max turns", yaml: "interview: {max_turns: 0}"},
		{name: "unknown theme", yaml: "theme_rules: [{theme: luck, when: 'true'}]"},
		{name: "empty rule expression", yaml: "theme_rules: [{theme: survival_stability, when: ''}]"},
		{name: "malformed yaml", yaml: "thresholds: [1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)

			var thErr *ThresholdConfigError
			var cfgErr *ConfigError
			if tt.wantThreshold {
				assert.True(t, errors.As(err, &thErr), "expected *ThresholdConfigError, got %T", err)
				return
			}
			assert.True(t, errors.As(err, &cfgErr), "expected *ConfigError, got %T", err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  f_min: 0.6\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.Thresholds.FMin)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_ExampleFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "configs", "engine.example.yaml"))
	require.NoError(t, err)

	defaults := DefaultConfig()
	assert.Equal(t, defaults.AxisWeights, cfg.AxisWeights)
	assert.Equal(t, defaults.RiskWeights, cfg.RiskWeights)
	assert.Equal(t, defaults.Thresholds, cfg.Thresholds)
	assert.Equal(t, defaults.Interview, cfg.Interview)

	themes := make([]Theme, len(cfg.ThemeRules))
	for i, r := range cfg.ThemeRules {
		themes[i] = r.Theme
	}
	assert.Equal(t, []Theme{
		ThemeEthicsResponsibility,
		ThemeExternalPressure,
		ThemeSurvivalStability,
		ThemePurposeIdentity,
		ThemeOptimizationEfficiency,
	}, themes)

	_, err = NewEngine(cfg)
	require.NoError(t, err)
}

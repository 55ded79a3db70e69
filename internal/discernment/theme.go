package discernment

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// DefaultThemeRules is the built-in rule table in priority order. Keywords
// are matched as folded tokens, so the lists carry no accents.
func DefaultThemeRules() []ThemeRule {
	return []ThemeRule{
		{
			Theme: ThemeEthicsResponsibility,
			When: `ethical_conflict || harms_others ||
				keywords.exists(k, k in ["etica", "etico", "fraude", "ilegal", "mentir", "enganar", "corrupcion", "trampa"])`,
		},
		{
			Theme: ThemeExternalPressure,
			When: `external_pressure || imposed_deadline ||
				keywords.exists(k, k in ["presion", "ultimatum", "amenaza", "obligacion", "expectativa"])`,
		},
		{
			Theme: ThemeSurvivalStability,
			When: `financial_strain || livelihood_at_risk ||
				keywords.exists(k, k in ["dinero", "trabajo", "renta", "deuda", "pagar", "urgente", "ingresos"])`,
		},
		{
			Theme: ThemePurposeIdentity,
			When: `identity_question || purpose_contradiction ||
				keywords.exists(k, k in ["proposito", "identidad", "vocacion", "sentido"])`,
		},
		{
			Theme: ThemeOptimizationEfficiency,
			When: `efficiency_gain ||
				keywords.exists(k, k in ["eficiencia", "optimizar", "productividad", "automatizar"])`,
		},
	}
}

type compiledRule struct {
	theme   Theme
	program cel.Program
}

// ThemeClassifier evaluates an ordered table of CEL predicates over context
// flags and keywords. The first match is dominant; later matches become
// secondary. It reacts to declared signals only and never reads prose.
type ThemeClassifier struct {
	rules []compiledRule
}

// NewThemeClassifier compiles every rule up front. An unknown theme or an
// expression that fails to compile or is not boolean is a *ConfigError.
func NewThemeClassifier(rules []ThemeRule) (*ThemeClassifier, error) {
	opts := make([]cel.EnvOption, 0, len(ContextFlags)+1)
	for _, f := range ContextFlags {
		opts = append(opts, cel.Variable(string(f), cel.BoolType))
	}
	opts = append(opts, cel.Variable("keywords", cel.ListType(cel.StringType)))

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create theme rule environment: %w", err)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		field := fmt.Sprintf("theme_rules[%d]", i)
		if !r.Theme.IsKnown() {
			return nil, &ConfigError{Field: field + ".theme", Reason: fmt.Sprintf("unknown theme %q", r.Theme)}
		}
		ast, issues := env.Compile(r.When)
		if issues != nil && issues.Err() != nil {
			return nil, &ConfigError{Field: field + ".when", Reason: "does not compile", Err: issues.Err()}
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, &ConfigError{Field: field + ".when", Reason: "must evaluate to bool"}
		}
		prg, err := env.Program(ast, cel.CostLimit(10000))
		if err != nil {
			return nil, &ConfigError{Field: field + ".when", Reason: "cannot build program", Err: err}
		}
		compiled = append(compiled, compiledRule{theme: r.Theme, program: prg})
	}
	return &ThemeClassifier{rules: compiled}, nil
}

// Classify assigns the dominant and secondary themes. A rule whose program
// fails at runtime counts as not matching.
func (c *ThemeClassifier) Classify(f Features) ThemeAssignment {
	vars := make(map[string]any, len(ContextFlags)+1)
	for _, flag := range ContextFlags {
		vars[string(flag)] = f.HasFlag(flag)
	}
	keywords := f.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	vars["keywords"] = keywords

	out := ThemeAssignment{Dominant: ThemeOther, Secondary: []Theme{}}
	seen := make(map[Theme]bool, len(c.rules))
	for _, r := range c.rules {
		val, _, err := r.program.Eval(vars)
		if err != nil {
			continue
		}
		matched, ok := val.Value().(bool)
		if !ok || !matched || seen[r.theme] {
			continue
		}
		seen[r.theme] = true
		if out.Dominant == ThemeOther {
			out.Dominant = r.theme
			continue
		}
		out.Secondary = append(out.Secondary, r.theme)
	}
	return out
}

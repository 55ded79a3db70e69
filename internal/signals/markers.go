// Package signals maps free text onto the structural signals the engine
// reads: context flags, theme keywords and known risk patterns. Matching is
// accent- and case-insensitive phrase matching, not semantic inference. The
// engine never calls this package; callers opt in before evaluation.
package signals

import (
	"slices"
	"strings"

	"axioma/internal/discernment"
	axstrings "axioma/pkg/platform/strings"
)

// marker ties a phrase (or word stem) to the flag and keyword it implies.
// Either may be empty.
type marker struct {
	phrase  string
	flag    discernment.ContextFlag
	keyword string
}

var markers = []marker{
	// ethics
	{"se que esta mal", discernment.FlagEthicalConflict, "etica"},
	{"no es correcto", discernment.FlagEthicalConflict, "etica"},
	{"etic", discernment.FlagEthicalConflict, "etica"},
	{"ilegal", discernment.FlagEthicalConflict, "ilegal"},
	{"fraude", discernment.FlagEthicalConflict, "fraude"},
	{"mentir", "", "mentir"},
	{"engan", "", "enganar"},
	{"corrup", discernment.FlagEthicalConflict, "corrupcion"},
	{"trampa", "", "trampa"},
	{"perjudic", discernment.FlagHarmsOthers, ""},
	{"hacer dano", discernment.FlagHarmsOthers, ""},

	// external pressure
	{"me obligan", discernment.FlagExternalPressure, "obligacion"},
	{"me piden", discernment.FlagExternalPressure, "expectativa"},
	{"me exigen", discernment.FlagExternalPressure, "expectativa"},
	{"esperan que", discernment.FlagExternalPressure, "expectativa"},
	{"me presionan", discernment.FlagExternalPressure, "presion"},
	{"presion", discernment.FlagExternalPressure, "presion"},
	{"amenaz", discernment.FlagExternalPressure, "amenaza"},
	{"ultimatum", discernment.FlagImposedDeadline, "ultimatum"},
	{"fecha limite", discernment.FlagImposedDeadline, ""},
	{"plazo", discernment.FlagImposedDeadline, ""},

	// survival
	{"dinero", "", "dinero"},
	{"trabajo", "", "trabajo"},
	{"renta", "", "renta"},
	{"deuda", discernment.FlagFinancialStrain, "deuda"},
	{"pagar", "", "pagar"},
	{"urgente", "", "urgente"},
	{"necesito dinero", discernment.FlagFinancialStrain, "dinero"},
	{"ingresos", "", "ingresos"},
	{"perder mi trabajo", discernment.FlagLivelihoodAtRisk, "trabajo"},
	{"despid", discernment.FlagLivelihoodAtRisk, "trabajo"},
	{"estabilidad", "", "ingresos"},

	// purpose
	{"proposito", "", "proposito"},
	{"identidad", discernment.FlagIdentityQuestion, "identidad"},
	{"quien soy", discernment.FlagIdentityQuestion, "identidad"},
	{"vocacion", "", "vocacion"},
	{"sentido", "", "sentido"},
	{"aunque se que", discernment.FlagPurposeContradiction, ""},
	{"en contra de mis valores", discernment.FlagPurposeContradiction, ""},

	// optimization
	{"eficien", discernment.FlagEfficiencyGain, "eficiencia"},
	{"optimiz", "", "optimizar"},
	{"productiv", "", "productividad"},
	{"automatiz", discernment.FlagEfficiencyGain, "automatizar"},
}

// Markers is the flag and keyword part of a detection.
type Markers struct {
	Flags    []discernment.ContextFlag `json:"context_flags"`
	Keywords []string                  `json:"keywords"`
	Hits     []string                  `json:"hits"`
}

// DetectMarkers scans text for marker phrases. Flags come back in the
// canonical flag order; keywords and hits in table order, deduplicated.
func DetectMarkers(text string) Markers {
	norm := normalize(text)
	out := Markers{
		Flags:    []discernment.ContextFlag{},
		Keywords: []string{},
		Hits:     []string{},
	}
	if norm == "" {
		return out
	}

	found := make(map[discernment.ContextFlag]bool)
	for _, m := range markers {
		if !containsPhrase(norm, m.phrase) {
			continue
		}
		out.Hits = append(out.Hits, m.phrase)
		if m.flag != "" {
			found[m.flag] = true
		}
		if m.keyword != "" && !slices.Contains(out.Keywords, m.keyword) {
			out.Keywords = append(out.Keywords, m.keyword)
		}
	}
	for _, f := range discernment.ContextFlags {
		if found[f] {
			out.Flags = append(out.Flags, f)
		}
	}
	return out
}

func normalize(text string) string {
	return axstrings.CollapseSpace(axstrings.Fold(text))
}

// containsPhrase reports whether phrase starts at a word boundary in text.
// The right side is open so stems like "corrup" match "corrupcion".
func containsPhrase(text, phrase string) bool {
	for i := 0; ; {
		j := strings.Index(text[i:], phrase)
		if j < 0 {
			return false
		}
		pos := i + j
		if pos == 0 || !isWordByte(text[pos-1]) {
			return true
		}
		i = pos + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

package discernment

import (
	"math"
	"strconv"
	"strings"

	axstrings "axioma/pkg/platform/strings"
)

// Numeric values for the three declared levels.
const (
	LevelLow    = 0.2
	LevelMedium = 0.5
	LevelHigh   = 0.8
)

var levelWords = map[string]float64{
	"b":      LevelLow,
	"ba":     LevelLow,
	"bajo":   LevelLow,
	"baja":   LevelLow,
	"l":      LevelLow,
	"low":    LevelLow,
	"m":      LevelMedium,
	"me":     LevelMedium,
	"med":    LevelMedium,
	"medio":  LevelMedium,
	"media":  LevelMedium,
	"medium": LevelMedium,
	"a":      LevelHigh,
	"al":     LevelHigh,
	"alto":   LevelHigh,
	"alta":   LevelHigh,
	"h":      LevelHigh,
	"high":   LevelHigh,
}

// ParseLevel reads a level word (bajo/medio/alto, their abbreviations, or the
// English low/medium/high) or a decimal in [0,1].
func ParseLevel(s string) (float64, error) {
	key := axstrings.Fold(s)
	if v, ok := levelWords[key]; ok {
		return v, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(key, ",", "."), 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 1 {
		return 0, &InvalidInputError{Field: "level", Value: s, Reason: "expected bajo, medio, alto or a number in [0,1]"}
	}
	return v, nil
}

package interview

import (
	"fmt"
	"slices"
	"strings"

	"axioma/internal/discernment"
	"axioma/internal/interview/models"
	axstrings "axioma/pkg/platform/strings"
)

var yesNoWords = map[string]bool{
	"si":           true,
	"s":            true,
	"claro":        true,
	"por supuesto": true,
	"verdadero":    true,
	"yes":          true,
	"y":            true,
	"true":         true,
	"1":            true,
	"no":           false,
	"n":            false,
	"nunca":        false,
	"para nada":    false,
	"falso":        false,
	"false":        false,
	"0":            false,
}

// ParseYesNo reads an affirmative or negative answer in Spanish or English.
// Accents, case and trailing punctuation are ignored.
func ParseYesNo(s string) (bool, error) {
	key := strings.TrimRight(axstrings.Fold(s), ".!¡ ")
	key = strings.TrimLeft(key, "¡ ")
	if v, ok := yesNoWords[axstrings.CollapseSpace(key)]; ok {
		return v, nil
	}
	return false, &discernment.InvalidInputError{Field: "answer", Value: s, Reason: "expected si or no"}
}

// FoldResult is a stopped session mapped back onto RawInput.
type FoldResult struct {
	Input      discernment.RawInput
	AgentNotes string
	// Unparsed lists question IDs whose answers could not be read; their
	// features keep the neutral default.
	Unparsed []string
	// Overridden lists features dropped because a purpose contradiction
	// was declared alongside them.
	Overridden []string
	Level      models.CompletenessLevel
	// Exhausted is non-nil when the session ran out of turns short of full
	// completeness. Informational only.
	Exhausted error
}

// Fold stops s if it is still active and maps every recorded answer back to
// the feature its question targets, on top of the session seed.
func (c *Controller) Fold(s *models.Session) FoldResult {
	c.Finish(s)

	in := s.Clone().Seed
	in.Affirmation = s.Affirmation
	res := FoldResult{
		AgentNotes: StopTrace(s),
		Unparsed:   []string{},
		Overridden: []string{},
		Level:      s.Level(),
		Exhausted:  s.Exhausted(),
	}

	for _, t := range s.Turns {
		if strings.TrimSpace(t.Answer) == "" {
			continue
		}
		q, ok := c.bank.Lookup(t.QuestionID)
		if !ok {
			res.Unparsed = append(res.Unparsed, t.QuestionID)
			continue
		}
		if err := apply(&in, q, t.Answer); err != nil {
			res.Unparsed = append(res.Unparsed, t.QuestionID)
		}
	}

	if in.HasFlag(discernment.FlagPurposeContradiction) {
		if in.ValuesAligned != nil && *in.ValuesAligned {
			in.ValuesAligned = nil
			res.Overridden = append(res.Overridden, string(models.TargetValuesAligned))
		}
		if in.LongTermCoherent != nil && *in.LongTermCoherent {
			in.LongTermCoherent = nil
			res.Overridden = append(res.Overridden, string(models.TargetLongTermCoherent))
		}
	}

	res.Input = in
	return res
}

// StopTrace renders the agent_notes trace of a stopped session.
func StopTrace(s *models.Session) string {
	return fmt.Sprintf("Stop reason: %s\nTurns: %d", s.StopReason, s.TurnCount())
}

func apply(in *discernment.RawInput, q models.Question, answer string) error {
	switch q.Kind {
	case models.KindYesNo:
		v, err := ParseYesNo(answer)
		if err != nil {
			return err
		}
		switch q.Target {
		case models.TargetVerifiable:
			in.Verifiable = &v
		case models.TargetNoContradiction:
			in.NoContradiction = &v
		case models.TargetValuesAligned:
			in.ValuesAligned = &v
		case models.TargetLongTermCoherent:
			in.LongTermCoherent = &v
		}
	case models.KindLevel:
		v, err := discernment.ParseLevel(answer)
		if err != nil {
			return err
		}
		switch q.Target {
		case models.TargetEvidenceSignal:
			in.EvidenceSignal = &v
		case models.TargetSituationalFit:
			in.SituationalFit = &v
		case models.TargetResourceAvailability:
			in.ResourceAvailability = &v
		case models.TargetRiskTime:
			in.RiskTime = &v
		case models.TargetRiskMoney:
			in.RiskMoney = &v
		case models.TargetRiskHealthRelationships:
			in.RiskHealthRelationships = &v
		case models.TargetRiskPeace:
			in.RiskPeace = &v
		}
	case models.KindFlag:
		v, err := ParseYesNo(answer)
		if err != nil {
			return err
		}
		if v && !slices.Contains(in.Flags, q.Flag) {
			in.Flags = append(in.Flags, q.Flag)
		}
	}
	return nil
}

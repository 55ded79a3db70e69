package interview

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"axioma/internal/discernment"
	"axioma/internal/interview/models"
	"axioma/pkg/platform/sentinel"
)

// =============================================================================
// Controller Test Suite
// =============================================================================
// Justification for unit tests: question selection, crediting and the three
// stop rules are pure state transitions; the stop trace is copied verbatim
// into agent_notes so its exact text matters.

type ControllerSuite struct {
	suite.Suite
	now time.Time
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *ControllerSuite) controller(params discernment.InterviewParams, opts ...Option) *Controller {
	opts = append([]Option{WithClock(func() time.Time { return s.now })}, opts...)
	c, err := NewController(params, opts...)
	s.Require().NoError(err)
	return c
}

func params(minProbes int, minCompleteness float64, maxTurns, window int) discernment.InterviewParams {
	return discernment.InterviewParams{
		MinProbesPerAxis: minProbes,
		MinCompleteness:  minCompleteness,
		MaxTurns:         maxTurns,
		NoGainWindow:     window,
	}
}

func boolPtr(v bool) *bool { return &v }
func f64Ptr(v float64) *float64 { return &v }

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ControllerSuite) TestNewController_RejectsInvalidParams() {
	_, err := NewController(params(0, 0.7, 8, 2))
	var cfgErr *discernment.ConfigError
	s.Require().True(errors.As(err, &cfgErr))
	s.Equal("interview.min_probes_per_axis", cfgErr.Field)
}

func (s *ControllerSuite) TestStart_RejectsInvalidSeed() {
	c := s.controller(discernment.DefaultInterviewParams())

	s.Run("blank affirmation", func() {
		_, err := c.Start("   ", discernment.RawInput{})
		var inv *discernment.InvalidInputError
		s.True(errors.As(err, &inv))
	})

	s.Run("out of range seed", func() {
		_, err := c.Start("Cambiar de trabajo", discernment.RawInput{RiskMoney: f64Ptr(1.5)})
		var inv *discernment.InvalidInputError
		s.True(errors.As(err, &inv))
	})
}

// =============================================================================
// Turn Selection Tests
// =============================================================================

func (s *ControllerSuite) TestAxisOrder_LowestCompletenessFirstWithFCPTieBreak() {
	c := s.controller(params(3, 0.7, 8, 2))
	sess, err := c.Start("Cambiar de trabajo", discernment.RawInput{})
	s.Require().NoError(err)

	var axes []discernment.Axis
	for sess.Active() {
		q, ok := c.Next(sess)
		s.Require().True(ok)
		axes = append(axes, q.Axis)
		s.Require().NoError(c.Answer(sess, "medio"))
	}

	f, cx, p := discernment.AxisFundamento, discernment.AxisContexto, discernment.AxisPrincipio
	s.Equal([]discernment.Axis{f, cx, p, f, cx, p, f}, axes)
}

// Scenario: three probes per axis, min_completeness 0.7. After six turns
// every axis sits at 2/3 (global below 0.7); turn seven completes F.
func (s *ControllerSuite) TestScenario_MinimumCompletenessAtTurnSeven() {
	c := s.controller(params(3, 0.7, 8, 2))
	sess, err := c.Start("Cambiar de trabajo", discernment.RawInput{})
	s.Require().NoError(err)

	for sess.Active() {
		s.Require().NoError(c.Answer(sess, "sí"))
	}

	s.Equal(models.StopMinimumCompleteness, sess.StopReason)
	s.Equal(7, sess.TurnCount())
	s.InDelta(1.0, sess.Completeness(discernment.AxisFundamento), 1e-9)
	s.InDelta(2.0/3.0, sess.Completeness(discernment.AxisContexto), 1e-9)
	s.InDelta(2.0/3.0, sess.Completeness(discernment.AxisPrincipio), 1e-9)
	s.Equal("Stop reason: minimum_completeness_reached\nTurns: 7", StopTrace(sess))
	s.NoError(sess.Exhausted())
}

func (s *ControllerSuite) TestAnswers_RecordedVerbatim() {
	c := s.controller(discernment.DefaultInterviewParams())
	sess, err := c.Start("Cambiar de trabajo", discernment.RawInput{})
	s.Require().NoError(err)

	s.Require().NoError(c.Answer(sess, "  Sí, creo que sí...  "))

	turn := sess.Turns[0]
	s.Equal("  Sí, creo que sí...  ", turn.Answer)
	s.Equal("f_verifiable", turn.QuestionID)
	s.Equal(1, turn.Number)
	s.Equal(s.now, turn.AnsweredAt)
	s.InDelta(0.5/3, turn.Gain, 1e-9)
}

// =============================================================================
// Stop Rule Tests
// =============================================================================

func (s *ControllerSuite) TestStop_MaxTurnsIsExhaustedNotFailed() {
	c := s.controller(params(4, 1, 5, 2))
	sess, err := c.Start("Cambiar de trabajo", discernment.RawInput{})
	s.Require().NoError(err)

	for sess.Active() {
		s.Require().NoError(c.Answer(sess, "alto"))
	}

	s.Equal(models.StopMaxTurns, sess.StopReason)
	s.Equal(5, sess.TurnCount())

	var exhausted *discernment.InterviewExhaustedError
	s.Require().True(errors.As(sess.Exhausted(), &exhausted))
	s.Equal(5, exhausted.Turns)
	s.Less(exhausted.Completeness, 1.0)
}

func (s *ControllerSuite) TestStop_BlankAnswersMeanNoNewInformation() {
	c := s.controller(discernment.DefaultInterviewParams())
	sess, err := c.Start("Cambiar de trabajo", discernment.RawInput{})
	s.Require().NoError(err)

	s.Require().NoError(c.Answer(sess, ""))
	s.True(sess.Active())
	s.Require().NoError(c.Answer(sess, "   "))

	s.False(sess.Active())
	s.Equal(models.StopNoNewInformation, sess.StopReason)
	s.Equal(0.0, sess.GlobalCompleteness())
	s.Equal(models.LevelInsufficient, sess.Level())
}

func (s *ControllerSuite) TestStop_ExhaustedPoolsMeanNoNewInformation() {
	bank, err := NewBank([]models.Question{
		{ID: "f", Axis: discernment.AxisFundamento, Kind: models.KindYesNo, Target: models.TargetVerifiable, Text: "F?"},
		{ID: "c", Axis: discernment.AxisContexto, Kind: models.KindLevel, Target: models.TargetSituationalFit, Text: "C?"},
		{ID: "p", Axis: discernment.AxisPrincipio, Kind: models.KindYesNo, Target: models.TargetValuesAligned, Text: "P?"},
	})
	s.Require().NoError(err)
	c := s.controller(params(2, 1, 8, 2), WithBank(bank))

	sess, err := c.Start("Cambiar de trabajo", discernment.RawInput{})
	s.Require().NoError(err)
	for sess.Active() {
		s.Require().NoError(c.Answer(sess, "si"))
	}

	s.Equal(models.StopNoNewInformation, sess.StopReason)
	s.Equal(3, sess.TurnCount())
	s.InDelta(0.5, sess.GlobalCompleteness(), 1e-9)
	s.Equal(models.LevelPartial, sess.Level())
}

func (s *ControllerSuite) TestAnswer_StoppedSessionRejected() {
	c := s.controller(params(1, 0.3, 8, 2))
	sess, err := c.Start("Cambiar de trabajo", discernment.RawInput{})
	s.Require().NoError(err)
	s.Require().NoError(c.Answer(sess, "si"))
	s.Require().False(sess.Active())

	err = c.Answer(sess, "si")
	s.ErrorIs(err, ErrSessionStopped)
	s.ErrorIs(err, sentinel.ErrInvalidState)
	s.Equal(1, sess.TurnCount())

	_, ok := c.Next(sess)
	s.False(ok)
}

func (s *ControllerSuite) TestCompleteness_NonDecreasingAndBounded() {
	answers := []string{"si", "", "alto", "no", "", "", "medio", "bajo", "si", "no"}
	c := s.controller(params(3, 1, 8, 3))
	sess, err := c.Start("Cambiar de trabajo", discernment.RawInput{})
	s.Require().NoError(err)

	prev := sess.GlobalCompleteness()
	for _, a := range answers {
		if !sess.Active() {
			break
		}
		s.Require().NoError(c.Answer(sess, a))
		cur := sess.GlobalCompleteness()
		s.GreaterOrEqual(cur, prev)
		prev = cur
	}
	s.LessOrEqual(sess.TurnCount(), 8)
	for _, axis := range discernment.Axes {
		s.LessOrEqual(sess.Completeness(axis), 1.0)
	}
}

// =============================================================================
// Seeded Session Tests
// =============================================================================

func (s *ControllerSuite) TestStart_SeedPreconsumesDeclaredFeatures() {
	c := s.controller(discernment.DefaultInterviewParams())
	seed := discernment.RawInput{
		Verifiable:      boolPtr(true),
		EvidenceSignal:  f64Ptr(0.7),
		NoContradiction: boolPtr(true),
	}

	sess, err := c.Start("Cambiar de trabajo", seed)
	s.Require().NoError(err)

	s.Equal([]string{"f_verifiable", "f_evidence", "f_no_contradiction"}, sess.Preconsumed)
	s.Equal(1.0, sess.Completeness(discernment.AxisFundamento))
	s.Empty(sess.Turns)

	q, ok := c.Next(sess)
	s.Require().True(ok)
	s.Equal("c_fit", q.ID)
}

func (s *ControllerSuite) TestStart_SeedAloneSatisfiesCompleteness() {
	c := s.controller(discernment.DefaultInterviewParams())
	seed := discernment.RawInput{
		Verifiable:           boolPtr(true),
		EvidenceSignal:       f64Ptr(0.7),
		SituationalFit:       f64Ptr(0.6),
		ResourceAvailability: f64Ptr(0.5),
		ValuesAligned:        boolPtr(true),
		LongTermCoherent:     boolPtr(true),
	}

	sess, err := c.Start("Cambiar de trabajo", seed)
	s.Require().NoError(err)

	s.False(sess.Active())
	s.Nil(sess.Pending)
	s.Equal(models.StopMinimumCompleteness, sess.StopReason)
	s.Equal("Stop reason: minimum_completeness_reached\nTurns: 0", StopTrace(sess))
	s.Equal(models.LevelComplete, sess.Level())
}

// =============================================================================
// Bank Tests
// =============================================================================

func (s *ControllerSuite) TestNewBank_Validation() {
	valid := func(id string, axis discernment.Axis) models.Question {
		return models.Question{ID: id, Axis: axis, Kind: models.KindYesNo, Target: models.TargetVerifiable, Text: "?"}
	}
	tests := []struct {
		name      string
		questions []models.Question
		wantErr   string
	}{
		{
			name:      "duplicate id",
			questions: []models.Question{valid("a", discernment.AxisFundamento), valid("a", discernment.AxisContexto)},
			wantErr:   "duplicate question id",
		},
		{
			name:      "empty axis pool",
			questions: []models.Question{valid("a", discernment.AxisFundamento)},
			wantErr:   "has no questions",
		},
		{
			name: "kind does not fit target",
			questions: []models.Question{
				{ID: "a", Axis: discernment.AxisFundamento, Kind: models.KindLevel, Target: models.TargetVerifiable},
			},
			wantErr: "cannot target",
		},
		{
			name: "unknown flag",
			questions: []models.Question{
				{ID: "a", Axis: discernment.AxisFundamento, Kind: models.KindFlag, Target: models.TargetContextFlag, Flag: "lucky_day"},
			},
			wantErr: "unknown context flag",
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := NewBank(tt.questions)
			s.Require().Error(err)
			s.Contains(err.Error(), tt.wantErr)
		})
	}
}

func (s *ControllerSuite) TestDefaultBank_EveryPoolSupportsThreeProbes() {
	b := DefaultBank()
	for _, axis := range discernment.Axes {
		s.GreaterOrEqual(len(b.Pool(axis)), 3, "axis %s", axis)
	}
}

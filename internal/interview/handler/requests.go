package handler

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"axioma/internal/discernment"
	dErrors "axioma/pkg/domain-errors"
)

const (
	maxAffirmationRunes = 2000
	maxAnswerRunes      = 1000
)

// StartRequest is the HTTP request body for POST /interviews.
type StartRequest struct {
	Affirmation   string               `json:"affirmation"`
	Seed          discernment.RawInput `json:"seed"`
	DetectSignals bool                 `json:"detect_signals"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *StartRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if utf8.RuneCountInString(r.Affirmation) > maxAffirmationRunes {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("affirmation must be at most %d characters", maxAffirmationRunes))
	}
	r.Affirmation = strings.TrimSpace(r.Affirmation)
	if r.Affirmation == "" {
		return dErrors.New(dErrors.CodeValidation, "affirmation is required")
	}
	return nil
}

// AnswerRequest is the HTTP request body for POST /interviews/{id}/answers.
// A blank answer is allowed and records a turn without new information.
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// Validate validates the request.
func (r *AnswerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if utf8.RuneCountInString(r.Answer) > maxAnswerRunes {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("answer must be at most %d characters", maxAnswerRunes))
	}
	return nil
}

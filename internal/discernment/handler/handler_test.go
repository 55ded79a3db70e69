package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"axioma/internal/discernment"
	"axioma/internal/discernment/metrics"
	"axioma/internal/discernment/ports/mocks"
	"axioma/internal/signals"
	"axioma/pkg/platform/httputil"
)

type evaluateBody struct {
	EvaluationID   string `json:"evaluation_id"`
	Fingerprint    string `json:"fingerprint"`
	DecisionReason string `json:"decision_reason"`
	Result         struct {
		Affirmation string `json:"affirmation"`
		Scores      struct {
			Fundamento   float64 `json:"fundamento"`
			RiesgoGlobal float64 `json:"riesgo_global"`
		} `json:"scores"`
		DecisionState string `json:"decision_state"`
		Theme         struct {
			Dominant  string   `json:"dominant"`
			Secondary []string `json:"secondary"`
		} `json:"theme"`
	} `json:"result"`
	Narrative      string          `json:"narrative"`
	NarrativeError string          `json:"narrative_error"`
	Signals        *signals.Result `json:"signals"`
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func newRouter(t *testing.T, opts ...discernment.Option) (http.Handler, *discernment.Service) {
	t.Helper()
	engine, err := discernment.NewEngine(discernment.DefaultConfig())
	require.NoError(t, err)
	opts = append(opts, discernment.WithMetrics(metrics.NewWithRegistry(prometheus.NewRegistry())))
	svc, err := discernment.NewService(engine, opts...)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r, svc
}

func post(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleEvaluate(t *testing.T) {
	router, svc := newRouter(t)

	body := `{
		"affirmation": "  Cambiar de trabajo a una ONG  ",
		"verifiable": true,
		"evidence_signal": 0.8,
		"no_contradiction": true,
		"situational_fit": 0.7,
		"values_aligned": true,
		"long_term_coherent": true,
		"risk_time": "medio",
		"risk_money": 0.2,
		"risk_peace": null
	}`
	rec := post(t, router, "/discernment/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got evaluateBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

	medio, low := discernment.LevelMedium, 0.2
	yes := true
	fit, ev := 0.7, 0.8
	want, err := svc.Engine().Evaluate(discernment.RawInput{
		Affirmation:      "Cambiar de trabajo a una ONG",
		Verifiable:       &yes,
		EvidenceSignal:   &ev,
		NoContradiction:  &yes,
		SituationalFit:   &fit,
		ValuesAligned:    &yes,
		LongTermCoherent: &yes,
		RiskTime:         &medio,
		RiskMoney:        &low,
	})
	require.NoError(t, err)
	wantFingerprint, err := want.Fingerprint()
	require.NoError(t, err)

	assert.NotEmpty(t, got.EvaluationID)
	assert.Equal(t, wantFingerprint, got.Fingerprint, "level words map to the same object as their numbers")
	assert.Equal(t, "Cambiar de trabajo a una ONG", got.Result.Affirmation)
	assert.Equal(t, string(want.State()), got.Result.DecisionState)
	assert.Equal(t, string(want.Reason()), got.DecisionReason)
	assert.Equal(t, want.Risk().Global, got.Result.Scores.RiesgoGlobal)
	assert.NotNil(t, got.Result.Theme.Secondary, "secondary themes serialize as an array")
	assert.Nil(t, got.Signals)
	assert.Empty(t, got.Narrative)
}

func TestHandleEvaluate_DetectSignals(t *testing.T) {
	router, svc := newRouter(t)
	text := "Aceptar el soborno por dinero aunque sé que está mal"

	rec := post(t, router, "/discernment/evaluate", `{"affirmation":"`+text+`","detect_signals":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got evaluateBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.NotNil(t, got.Signals)
	assert.Contains(t, got.Signals.Flags, discernment.FlagEthicalConflict)

	raw := discernment.RawInput{Affirmation: text}
	signals.Detect(text).Apply(&raw)
	want, err := svc.Engine().Evaluate(raw)
	require.NoError(t, err)
	assert.Equal(t, string(want.DominantTheme()), got.Result.Theme.Dominant)
	assert.Equal(t, string(want.State()), got.Result.DecisionState)
}

func TestHandleEvaluate_SoftContradictions(t *testing.T) {
	router, svc := newRouter(t)
	body := `{
		"affirmation":"Debo cambiarme de ciudad",
		"foundation_notes":"No es urgente, y si no lo hago estaría más tranquilo",
		"declared_purpose":"Estar cerca de mi familia",
		"detect_signals":true
	}`

	rec := post(t, router, "/discernment/evaluate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got evaluateBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.NotNil(t, got.Signals)
	require.Len(t, got.Signals.SoftContradictions, 1)
	assert.Equal(t, signals.SoftNormativeVsEvidence, got.Signals.SoftContradictions[0].Type)
	assert.Equal(t, signals.SeverityMedium, got.Signals.SoftContradictions[0].Severity)

	// Findings are advisory: the record matches an evaluation without them.
	want, err := svc.Engine().Evaluate(discernment.RawInput{Affirmation: "Debo cambiarme de ciudad"})
	require.NoError(t, err)
	assert.Equal(t, string(want.State()), got.Result.DecisionState)
}

func TestHandleEvaluate_Narrate(t *testing.T) {
	ctrl := gomock.NewController(t)
	narrator := mocks.NewMockNarrator(ctrl)
	router, _ := newRouter(t, discernment.WithNarrator(narrator))

	t.Run("narrative is returned", func(t *testing.T) {
		narrator.EXPECT().Narrate(gomock.Any(), gomock.Any()).Return("Avanza con calma.", nil)
		rec := post(t, router, "/discernment/evaluate", `{"affirmation":"Mudarme","narrate":true}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var got evaluateBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "Avanza con calma.", got.Narrative)
	})

	t.Run("narrator failure still returns the evaluation", func(t *testing.T) {
		narrator.EXPECT().Narrate(gomock.Any(), gomock.Any()).Return("", errors.New("ollama returned status 500: upstream body"))
		rec := post(t, router, "/discernment/evaluate", `{"affirmation":"Mudarme","narrate":true}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var got evaluateBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Empty(t, got.Narrative)
		assert.Equal(t, "error", got.NarrativeError)
		assert.NotContains(t, rec.Body.String(), "upstream body")
		assert.NotEmpty(t, got.Result.DecisionState)
	})

	t.Run("narration not requested", func(t *testing.T) {
		rec := post(t, router, "/discernment/evaluate", `{"affirmation":"Mudarme"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandleEvaluate_Validation(t *testing.T) {
	router, _ := newRouter(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
		wantDesc string
	}{
		{"empty body", ``, "bad_request", "request body is required"},
		{"malformed", `{"affirmation":`, "bad_request", "invalid JSON body"},
		{"blank affirmation", `{"affirmation":"   "}`, "validation_error", "affirmation is required"},
		{"unknown flag", `{"affirmation":"x","context_flags":["vibes"]}`, "validation_error", `context_flags: unknown flag "vibes"`},
		{"bad level word", `{"affirmation":"x","risk_money":"muchisimo"}`, "validation_error", "risk_money must be bajo, medio, alto or a number in [0,1]"},
		{"risk of wrong type", `{"affirmation":"x","risk_time":true}`, "validation_error", "risk_time must be a number or a level word"},
		{"out of range number", `{"affirmation":"x","evidence_signal":1.5}`, "validation_error", "evidence_signal"},
		{"out of range risk", `{"affirmation":"x","risk_peace":-0.1}`, "validation_error", "risk_peace"},
		{"too long", `{"affirmation":"` + strings.Repeat("a", maxAffirmationRunes+1) + `"}`, "validation_error", "affirmation must be at most"},
		{"purpose too long", `{"affirmation":"x","declared_purpose":"` + strings.Repeat("a", maxAgentNotesRunes+1) + `"}`, "validation_error", "declared_purpose must be at most"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, router, "/discernment/evaluate", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var got errorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantCode, got.Error)
			assert.Contains(t, got.ErrorDescription, tt.wantDesc)
		})
	}
}

func TestHandleEvaluate_KeywordsCountedAfterDedupe(t *testing.T) {
	router, _ := newRouter(t)

	keywordsJSON := func(words []string) string {
		raw, err := json.Marshal(words)
		require.NoError(t, err)
		return string(raw)
	}

	var repeated []string
	for i := range 33 {
		repeated = append(repeated, fmt.Sprintf("Palabra%d", i%10))
	}
	rec := post(t, router, "/discernment/evaluate", `{"affirmation":"Mudarme","keywords":`+keywordsJSON(repeated)+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var distinct []string
	for i := range 33 {
		distinct = append(distinct, fmt.Sprintf("palabra%d", i))
	}
	rec = post(t, router, "/discernment/evaluate", `{"affirmation":"Mudarme","keywords":`+keywordsJSON(distinct)+`}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var got errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "validation_error", got.Error)
	assert.Contains(t, got.ErrorDescription, "keywords must have at most 32 distinct entries")
}

func TestHandleEvaluateBatch(t *testing.T) {
	router, _ := newRouter(t)

	t.Run("results keep request order", func(t *testing.T) {
		body := `{"items":[
			{"affirmation":"uno","verifiable":false,"evidence_signal":0,"no_contradiction":false},
			{"affirmation":"dos"},
			{"affirmation":"tres","detect_signals":true}
		]}`
		rec := post(t, router, "/discernment/evaluate/batch", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got struct {
			Items []evaluateBody `json:"items"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		require.Len(t, got.Items, 3)
		assert.Equal(t, "uno", got.Items[0].Result.Affirmation)
		assert.Equal(t, "NO", got.Items[0].Result.DecisionState)
		assert.Equal(t, "dos", got.Items[1].Result.Affirmation)
		assert.Equal(t, "tres", got.Items[2].Result.Affirmation)
		assert.Nil(t, got.Items[1].Signals)
		assert.NotNil(t, got.Items[2].Signals)
	})

	t.Run("invalid item names its index", func(t *testing.T) {
		rec := post(t, router, "/discernment/evaluate/batch", `{"items":[{"affirmation":"ok"},{"affirmation":"x","risk_money":3}]}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var got errorBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "validation_error", got.Error)
		assert.True(t, strings.HasPrefix(got.ErrorDescription, "items[1]: "), got.ErrorDescription)
	})

	t.Run("request validation names its index", func(t *testing.T) {
		rec := post(t, router, "/discernment/evaluate/batch", `{"items":[{"affirmation":"ok"},{"affirmation":" "}]}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var got errorBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "items[1]: affirmation is required", got.ErrorDescription)
	})

	t.Run("limits", func(t *testing.T) {
		rec := post(t, router, "/discernment/evaluate/batch", `{"items":[]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		items := make([]string, maxBatchItems+1)
		for i := range items {
			items[i] = `{"affirmation":"x"}`
		}
		rec = post(t, router, "/discernment/evaluate/batch", `{"items":[`+strings.Join(items, ",")+`]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTranslateError(t *testing.T) {
	inv := &discernment.InvalidInputError{Field: "risk_money", Value: 3.0, Reason: "out of range [0,1]"}

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid input", inv, http.StatusBadRequest},
		{"batch item", &discernment.BatchItemError{Index: 2, Err: inv}, http.StatusBadRequest},
		{"cancelled", context.Canceled, http.StatusGatewayTimeout},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError(tt.err)
			assert.ErrorIs(t, err, tt.err)
			rec := httptest.NewRecorder()
			httputil.WriteError(rec, err)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

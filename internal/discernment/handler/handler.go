package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"axioma/internal/discernment"
	"axioma/internal/signals"
	dErrors "axioma/pkg/domain-errors"
	"axioma/pkg/platform/httputil"
	"axioma/pkg/requestcontext"
)

// Service defines the interface for discernment operations.
type Service interface {
	Evaluate(ctx context.Context, req discernment.EvaluateRequest) (*discernment.EvaluateResult, error)
	EvaluateBatch(ctx context.Context, reqs []discernment.EvaluateRequest) ([]*discernment.EvaluateResult, error)
}

// Handler wires discernment endpoints to the discernment service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a discernment handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts discernment endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/discernment/evaluate", h.HandleEvaluate)
	r.Post("/discernment/evaluate/batch", h.HandleEvaluateBatch)
}

// HandleEvaluate handles POST /discernment/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	domainReq, detected := prepare(req)
	result, err := h.service.Evaluate(ctx, domainReq)
	if err != nil {
		h.logger.WarnContext(ctx, "discernment evaluation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, translateError(err))
		return
	}

	h.logger.InfoContext(ctx, "discernment request served",
		"request_id", requestID,
		"evaluation_id", result.ID,
		"decision_state", result.Object.State(),
		"narrated", result.Narrative != "",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromResult(result, detected))
}

// HandleEvaluateBatch handles POST /discernment/evaluate/batch requests.
func (h *Handler) HandleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	domainReqs := make([]discernment.EvaluateRequest, len(req.Items))
	detected := make([]*signals.Result, len(req.Items))
	for i := range req.Items {
		domainReqs[i], detected[i] = prepare(&req.Items[i])
	}

	results, err := h.service.EvaluateBatch(ctx, domainReqs)
	if err != nil {
		h.logger.WarnContext(ctx, "discernment batch failed",
			"request_id", requestID,
			"items", len(domainReqs),
			"error", err,
		)
		httputil.WriteError(w, translateError(err))
		return
	}

	resp := EvaluateBatchResponse{Items: make([]*EvaluateResponse, len(results))}
	for i, res := range results {
		resp.Items[i] = FromResult(res, detected[i])
	}

	h.logger.InfoContext(ctx, "discernment batch served",
		"request_id", requestID,
		"items", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// prepare builds the domain request, running signal detection first when
// the caller asked for it.
func prepare(req *EvaluateRequest) (discernment.EvaluateRequest, *signals.Result) {
	raw := req.RawInput()
	var detected *signals.Result
	if req.DetectSignals {
		res := signals.DetectEvidence(signals.Evidence{
			Statement:  raw.Affirmation,
			Foundation: req.FoundationNotes,
			Context:    req.ContextNotes,
			Purpose:    req.DeclaredPurpose,
		})
		res.Apply(&raw)
		detected = &res
	}
	return discernment.EvaluateRequest{
		Input:      raw,
		AgentNotes: req.AgentNotes,
		Narrate:    req.Narrate,
	}, detected
}

func translateError(err error) error {
	var item *discernment.BatchItemError
	if errors.As(err, &item) {
		code := dErrors.CodeOf(translateError(item.Err))
		return dErrors.Wrap(err, code, fmt.Sprintf("items[%d]: %s", item.Index, message(item.Err)))
	}
	var inv *discernment.InvalidInputError
	if errors.As(err, &inv) {
		return dErrors.Wrap(err, dErrors.CodeValidation, inv.Error())
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "evaluation cancelled")
	}
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "evaluation failed")
}

func message(err error) string {
	var inv *discernment.InvalidInputError
	if errors.As(err, &inv) {
		return inv.Error()
	}
	return err.Error()
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"axioma/internal/discernment"
	"axioma/internal/interview"
	"axioma/internal/interview/models"
	"axioma/internal/signals"
	dErrors "axioma/pkg/domain-errors"
	"axioma/pkg/platform/httputil"
	"axioma/pkg/requestcontext"
)

// Service defines the interface for interview operations.
type Service interface {
	Start(ctx context.Context, affirmation string, seed discernment.RawInput) (*models.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Answer(ctx context.Context, id uuid.UUID, answer string) (*models.Session, error)
	Finish(ctx context.Context, id uuid.UUID, narrate bool) (*interview.FinishResult, error)
}

// Handler wires interview endpoints to the interview service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an interview handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts interview endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/interviews", func(r chi.Router) {
		r.Post("/", h.HandleStart)
		r.Get("/{id}", h.HandleGet)
		r.Post("/{id}/answers", h.HandleAnswer)
		r.Post("/{id}/finish", h.HandleFinish)
	})
}

// HandleStart handles POST /interviews requests.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[StartRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	seed := req.Seed
	var detected *signals.Result
	if req.DetectSignals {
		res := signals.Detect(req.Affirmation)
		res.Apply(&seed)
		detected = &res
	}

	sess, err := h.service.Start(ctx, req.Affirmation, seed)
	if err != nil {
		h.logger.WarnContext(ctx, "interview start failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := FromSession(sess)
	resp.Signals = detected
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

// HandleGet handles GET /interviews/{id} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(sess))
}

// HandleAnswer handles POST /interviews/{id}/answers requests.
func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AnswerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sess, err := h.service.Answer(ctx, id, req.Answer)
	if err != nil {
		h.logger.WarnContext(ctx, "interview answer failed",
			"request_id", requestID,
			"session_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSession(sess))
}

// HandleFinish handles POST /interviews/{id}/finish requests. Narration is
// requested with ?narrate=true.
func (h *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	narrate := false
	if v := r.URL.Query().Get("narrate"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "narrate must be a boolean"))
			return
		}
		narrate = parsed
	}

	res, err := h.service.Finish(ctx, id, narrate)
	if err != nil {
		h.logger.WarnContext(ctx, "interview finish failed",
			"request_id", requestID,
			"session_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "interview finish served",
		"request_id", requestID,
		"session_id", id,
		"decision_state", res.Evaluation.Object.State(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromFinish(res))
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid interview id"))
		return uuid.Nil, false
	}
	return id, true
}

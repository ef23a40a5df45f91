// Package handler exposes the onboarding flow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"onboard/internal/onboarding/models"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/platform/httputil"
	"onboard/pkg/requestcontext"
)

// Service is the onboarding surface the handler depends on.
type Service interface {
	Save(ctx context.Context, submission models.SaveSubmission) (*models.SaveResult, error)
	Submit(ctx context.Context, submission models.FinalizeSubmission) (*models.FinalizeResult, error)
	Progress(ctx context.Context, identifier string) (*models.Progress, error)
}

// Handler translates HTTP requests into onboarding service calls.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs the onboarding HTTP handler.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the onboarding routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/onboarding", func(r chi.Router) {
		r.Post("/save", h.save)
		r.Post("/submit", h.submit)
		r.Get("/progress", h.progress)
	})
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SaveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.service.Save(ctx, req.ToSubmission())
	if err != nil {
		h.logError(ctx, "save failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.service.Submit(ctx, req.ToSubmission())
	if err != nil {
		h.logError(ctx, "submit failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	progress, err := h.service.Progress(ctx, r.URL.Query().Get("identifier"))
	if err != nil {
		h.logError(ctx, "progress lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, progress)
}

// logError logs internal failures at error level and expected domain
// rejections at debug level.
func (h *Handler) logError(ctx context.Context, msg string, err error) {
	level := slog.LevelDebug
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"code", dErrors.CodeOf(err),
		"error", err,
	)
}

// Package handler exposes the development backend over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	admin "lockme/internal/admin/models"
	"lockme/internal/devbackend/service"
	id "lockme/pkg/domain"
	dErrors "lockme/pkg/domain-errors"
	"lockme/pkg/platform/httputil"
	"lockme/pkg/requestcontext"
)

// Service is the backend behaviour the handler serves.
type Service interface {
	Login(ctx context.Context, idToken string) (*admin.LoginResult, error)
	Stats(ctx context.Context) (*admin.StatsSummary, error)
	Users(ctx context.Context) ([]admin.User, error)
	Tribes(ctx context.Context) ([]admin.Tribe, error)
	TribeDetail(ctx context.Context, tribeID id.TribeID, page, pageSize int) (*admin.TribeDetailPage, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: svc,
		logger:  logger,
	}
}

// RegisterPublic mounts the unauthenticated routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/google", h.HandleGoogleLogin)
}

// RegisterAdmin mounts the admin routes. The caller supplies auth middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/stats", h.HandleStats)
	r.Get("/admin/users", h.HandleUsers)
	r.Get("/admin/tribes", h.HandleTribes)
	r.Get("/admin/tribes/{id}", h.HandleTribeDetail)
}

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

func (r *googleLoginRequest) Normalize() {
	r.IDToken = strings.TrimSpace(r.IDToken)
}

func (r *googleLoginRequest) Validate() error {
	if r.IDToken == "" {
		return dErrors.New(dErrors.CodeBadRequest, "id_token is required")
	}
	return nil
}

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[googleLoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Login(ctx, req.IDToken)
	if err != nil {
		h.logger.WarnContext(ctx, "google login rejected",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to get stats", err)
		return
	}
	h.logger.InfoContext(ctx, "admin stats retrieved",
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.service.Users(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to get users", err)
		return
	}
	h.logger.InfoContext(ctx, "admin users list retrieved",
		"request_id", requestcontext.RequestID(ctx),
		"count", len(users),
	)
	httputil.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) HandleTribes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tribes, err := h.service.Tribes(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to get tribes", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tribes)
}

func (h *Handler) HandleTribeDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tribeID, err := id.ParseTribeID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid tribe id"))
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pageSize, err := queryInt(r, "page_size", service.DefaultPageSize)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.service.TribeDetail(ctx, tribeID, page, pageSize)
	if err != nil {
		h.fail(ctx, w, "failed to get tribe detail", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelError
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) && domainErr.Code != dErrors.CodeInternal {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, key+" must be an integer")
	}
	return n, nil
}

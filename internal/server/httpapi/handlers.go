// Package httpapi exposes the session service over HTTP with JSON bodies.
package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/skillhub/internal/logging"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SessionService is what the HTTP handlers need from the session layer.
type SessionService interface {
	Login(ctx context.Context, identifier, password string) (*sessions.TokenPair, *models.Principal, error)
	Refresh(ctx context.Context, token string) (*sessions.TokenPair, *models.Principal, error)
	Invalidate(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*models.RefreshToken, error)
	Authenticate(ctx context.Context, accessToken string) (sessions.Caller, error)
	CurrentPrincipal(ctx context.Context, c sessions.Caller) (*models.Principal, error)
	CreateWorker(ctx context.Context, c sessions.Caller, in sessions.NewAccount) (*models.Principal, error)
	SetWorkerActive(ctx context.Context, c sessions.Caller, workerID string, active bool) (*models.Principal, error)
}

// Handler serves the session endpoints.
type Handler struct {
	sessions SessionService
	logger   logging.Logger
}

func NewHandler(s SessionService, l logging.Logger) *Handler {
	return &Handler{sessions: s, logger: l.With("module", "http_api")}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Identifier) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "identifier and password are required")
		return
	}

	pair, p, err := h.sessions.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(pair, p))
}

func (h *Handler) regenerate(w http.ResponseWriter, r *http.Request) {
	token, ok := h.refreshToken(w, r)
	if !ok {
		return
	}

	pair, p, err := h.sessions.Refresh(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(pair, p))
}

func (h *Handler) invalidate(w http.ResponseWriter, r *http.Request) {
	token, ok := h.refreshToken(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Invalidate(r.Context(), token); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "refresh token invalidated"})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	token, ok := h.refreshToken(w, r)
	if !ok {
		return
	}

	rt, err := h.sessions.Verify(r.Context(), token)
	if err != nil {
		h.fail(w, r, err, verifyMappings...)
		return
	}
	writeJSON(w, http.StatusOK, newRefreshTokenView(rt))
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	c, _ := sessions.CallerFromContext(r.Context())

	p, err := h.sessions.CurrentPrincipal(r.Context(), c)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPrincipalView(p))
}

func (h *Handler) createWorker(w http.ResponseWriter, r *http.Request) {
	c, _ := sessions.CallerFromContext(r.Context())

	var req createWorkerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	p, err := h.sessions.CreateWorker(r.Context(), c, sessions.NewAccount{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPrincipalView(p))
}

func (h *Handler) setWorkerActive(w http.ResponseWriter, r *http.Request) {
	c, _ := sessions.CallerFromContext(r.Context())

	var req setActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "active is required")
		return
	}

	p, err := h.sessions.SetWorkerActive(r.Context(), c, chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPrincipalView(p))
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// refreshToken decodes {"refreshToken": "..."} and answers 400 itself when
// the body is unusable.
func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req refreshTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return "", false
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "refreshToken is required")
		return "", false
	}
	return req.RefreshToken, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, overrides ...errorMapping) {
	m, ok := classify(err, overrides...)
	if !ok {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "error", err)
		writeError(w, m.status, m.code, "internal error")
		return
	}
	writeError(w, m.status, m.code, m.clientMessage(err))
}

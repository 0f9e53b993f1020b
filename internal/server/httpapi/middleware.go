package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/common"
	"github.com/dmitrijs2005/skillhub/internal/logging"
	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/dmitrijs2005/skillhub/internal/server/sessions"
	"github.com/go-chi/chi/v5/middleware"
)

// requireCaller authenticates the bearer access token and attaches the
// resulting sessions.Caller to the request context.
func (h *Handler) requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AccessTokenHeaderName)
		token, found := strings.CutPrefix(header, common.BearerPrefix)
		if !found || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		c, err := h.sessions.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(sessions.WithCaller(r.Context(), c)))
	})
}

// requireKind rejects callers of any other principal kind with 403.
func requireKind(kind models.PrincipalKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := sessions.CallerFromContext(r.Context())
			if !ok || c.Ref.Kind() != kind {
				writeError(w, http.StatusForbidden, "forbidden", common.ErrorForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request through the project logger.
func requestLogger(l logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			l.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

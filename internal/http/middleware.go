package httpapi

import (
	"net/http"
	"time"

	"roomserve/internal/auth"
	"roomserve/internal/domain"

	"go.uber.org/zap"
)

// authedHandler receives the resolved principal. It is never nil.
type authedHandler func(w http.ResponseWriter, r *http.Request, p *domain.Principal)

// authenticated resolves the principal once per request. Role or tenant
// headers sent by the client are never consulted.
func (a *API) authenticated(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := a.auth.Resolve(r.Context(), auth.CredentialFromRequest(r))
		if err != nil {
			a.writeError(w, r, err, false)
			return
		}
		h(w, r, p)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// accessLog logs each request and turns panics into 500s.
func accessLog(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic serving request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", v),
					zap.Stack("stack"),
				)
				writeJSON(rec, http.StatusInternalServerError, FailStatus(http.StatusInternalServerError, "internal error"))
			}
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		}()
		next.ServeHTTP(rec, r)
	})
}

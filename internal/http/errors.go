package httpapi

import (
	"errors"
	"net/http"

	"roomserve/internal/access"
	"roomserve/internal/domain"

	"go.uber.org/zap"
)

// statusFor maps a service error to its HTTP status. With foldTenant set, a
// tenant-scope denial on an id-targeted route reports 404 so ids of other
// tenants cannot be probed. Missing permission keys always report 403.
func statusFor(err error, foldTenant bool) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		if foldTenant {
			if ae, ok := access.AsError(err); !ok || ae.Code != access.CodeMissingPermission {
				return http.StatusNotFound
			}
		}
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrStaleState),
		errors.Is(err, domain.ErrOrderLocked),
		errors.Is(err, domain.ErrSingleAdminViolation),
		errors.Is(err, domain.ErrConflictingTenant),
		errors.Is(err, domain.ErrProtectedIdentity):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error, foldTenant bool) {
	status := statusFor(err, foldTenant)
	var msg string
	switch status {
	case http.StatusUnauthorized:
		msg = "unauthenticated"
	case http.StatusForbidden:
		msg = "forbidden"
	case http.StatusNotFound:
		msg = "not found"
	case http.StatusInternalServerError:
		a.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal error"
	default:
		msg = err.Error()
	}
	writeJSON(w, status, FailStatus(status, msg))
}

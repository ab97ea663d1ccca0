package httpapi

import (
	"net/http"

	"roomserve/internal/domain"

	"go.uber.org/zap"
)

type completeRegistrationRequest struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type completeRegistrationResponse struct {
	User         *domain.User `json:"user"`
	SessionToken string       `json:"session_token,omitempty"`
}

func (a *API) completeRegistration(w http.ResponseWriter, r *http.Request) {
	var req completeRegistrationRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeError(w, r, err, false)
		return
	}
	u, err := a.svc.Users.CompleteRegistration(r.Context(), req.Token, req.Email)
	if err != nil {
		a.writeError(w, r, err, false)
		return
	}
	out := completeRegistrationResponse{User: u}
	if a.sessions != nil {
		token, err := a.sessions.Issue(u.ID, a.sessionTTL)
		if err != nil {
			// registration already succeeded; the user can still sign in normally
			a.logger.Error("failed to issue session after registration", zap.String("user_id", u.ID), zap.Error(err))
		} else {
			out.SessionToken = token
		}
	}
	writeJSON(w, http.StatusOK, Ok(out))
}

type meResponse struct {
	ID          string              `json:"id"`
	Role        domain.Role         `json:"role"`
	TenantID    *string             `json:"tenant_id"`
	Permissions []domain.Permission `json:"permissions"`
}

func (a *API) me(w http.ResponseWriter, _ *http.Request, p *domain.Principal) {
	writeJSON(w, http.StatusOK, Ok(meResponse{
		ID:          p.ID,
		Role:        p.Role,
		TenantID:    p.TenantID,
		Permissions: p.Permissions.Sorted(),
	}))
}

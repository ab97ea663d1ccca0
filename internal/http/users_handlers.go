package httpapi

import (
	"net/http"
	"time"

	"roomserve/internal/domain"
	"roomserve/internal/service"
)

var userFilterKeys = []string{"role", "account"}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	items, err := a.svc.Users.ListUsers(r.Context(), p, listFilter(r, userFilterKeys...))
	if err != nil {
		a.writeError(w, r, err, false)
		return
	}
	writeJSON(w, http.StatusOK, Ok(NewPage(items)))
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	var req service.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeError(w, r, err, false)
		return
	}
	u, err := a.svc.Users.CreateUser(r.Context(), p, req)
	if err != nil {
		a.writeError(w, r, err, false)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(u))
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	u, err := a.svc.Users.GetUser(r.Context(), p, r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, Ok(u))
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	var req service.UpdateUserRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeError(w, r, err, false)
		return
	}
	u, err := a.svc.Users.UpdateUser(r.Context(), p, r.PathValue("id"), req)
	if err != nil {
		a.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, Ok(u))
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	if err := a.svc.Users.DeleteUser(r.Context(), p, r.PathValue("id")); err != nil {
		a.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

type registrationTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) issueRegistrationToken(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	token, expiresAt, err := a.svc.Users.IssueRegistrationToken(r.Context(), p, r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(registrationTokenResponse{Token: token, ExpiresAt: expiresAt}))
}

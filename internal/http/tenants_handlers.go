package httpapi

import (
	"net/http"

	"roomserve/internal/domain"
	"roomserve/internal/service"
)

// Tenant management is platform-level (admin only).

func (a *API) listTenants(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	items, err := a.svc.Tenants.ListTenants(r.Context(), p, domain.TenantStatus(r.URL.Query().Get("status")))
	if err != nil {
		a.writeError(w, r, err, false)
		return
	}
	writeJSON(w, http.StatusOK, Ok(NewPage(items)))
}

func (a *API) createTenant(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	var req service.CreateTenantRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeError(w, r, err, false)
		return
	}
	t, err := a.svc.Tenants.CreateTenant(r.Context(), p, req)
	if err != nil {
		a.writeError(w, r, err, false)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(t))
}

type tenantStatusRequest struct {
	Status domain.TenantStatus `json:"status"`
}

func (a *API) setTenantStatus(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	var req tenantStatusRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeError(w, r, err, false)
		return
	}
	t, err := a.svc.Tenants.SetStatus(r.Context(), p, r.PathValue("id"), req.Status)
	if err != nil {
		a.writeError(w, r, err, false)
		return
	}
	writeJSON(w, http.StatusOK, Ok(t))
}

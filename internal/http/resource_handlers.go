package httpapi

import (
	"net/http"

	"roomserve/internal/domain"
	"roomserve/internal/service"
)

// resourceRoutes registers list/create/get/update/delete for one catalog-style resource.
func resourceRoutes[E service.Validatable](r *Router, a *API, base string, svc *service.ResourceService[E], newE func() E, filterKeys ...string) {
	r.Handle("GET "+base, a.authenticated(func(w http.ResponseWriter, req *http.Request, p *domain.Principal) {
		items, err := svc.List(req.Context(), p, listFilter(req, filterKeys...))
		if err != nil {
			a.writeError(w, req, err, false)
			return
		}
		writeJSON(w, http.StatusOK, Ok(NewPage(items)))
	}))

	r.Handle("POST "+base, a.authenticated(func(w http.ResponseWriter, req *http.Request, p *domain.Principal) {
		e := newE()
		if err := decodeBody(req, e); err != nil {
			a.writeError(w, req, err, false)
			return
		}
		created, err := svc.Create(req.Context(), p, e)
		if err != nil {
			a.writeError(w, req, err, false)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(created))
	}))

	r.Handle("GET "+base+"/{id}", a.authenticated(func(w http.ResponseWriter, req *http.Request, p *domain.Principal) {
		e, err := svc.Get(req.Context(), p, req.PathValue("id"))
		if err != nil {
			a.writeError(w, req, err, true)
			return
		}
		writeJSON(w, http.StatusOK, Ok(e))
	}))

	r.Handle("PUT "+base+"/{id}", a.authenticated(func(w http.ResponseWriter, req *http.Request, p *domain.Principal) {
		e := newE()
		if err := decodeBody(req, e); err != nil {
			a.writeError(w, req, err, false)
			return
		}
		updated, err := svc.Update(req.Context(), p, req.PathValue("id"), e)
		if err != nil {
			a.writeError(w, req, err, true)
			return
		}
		writeJSON(w, http.StatusOK, Ok(updated))
	}))

	r.Handle("DELETE "+base+"/{id}", a.authenticated(func(w http.ResponseWriter, req *http.Request, p *domain.Principal) {
		if err := svc.Delete(req.Context(), p, req.PathValue("id")); err != nil {
			a.writeError(w, req, err, true)
			return
		}
		writeJSON(w, http.StatusOK, Ok[any](nil))
	}))
}

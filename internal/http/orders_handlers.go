package httpapi

import (
	"net/http"

	"roomserve/internal/domain"
	"roomserve/internal/service"
)

var orderFilterKeys = []string{"status", "room_id", "payment_method"}

func (a *API) listOrders(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	items, err := a.svc.Orders.ListOrders(r.Context(), p, listFilter(r, orderFilterKeys...))
	if err != nil {
		a.writeError(w, r, err, false)
		return
	}
	writeJSON(w, http.StatusOK, Ok(NewPage(items)))
}

func (a *API) createOrder(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	var req service.CreateOrderRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeError(w, r, err, false)
		return
	}
	o, err := a.svc.Orders.CreateOrder(r.Context(), p, req)
	if err != nil {
		a.writeError(w, r, err, false)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(o))
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	o, err := a.svc.Orders.GetOrder(r.Context(), p, r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, Ok(o))
}

func (a *API) updateOrder(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	var req service.UpdateOrderRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeError(w, r, err, false)
		return
	}
	o, err := a.svc.Orders.UpdateOrder(r.Context(), p, r.PathValue("id"), req)
	if err != nil {
		a.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, Ok(o))
}

func (a *API) deleteOrder(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	if err := a.svc.Orders.DeleteOrder(r.Context(), p, r.PathValue("id")); err != nil {
		a.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, Ok[any](nil))
}

type transitionRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (a *API) transitionOrder(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	var req transitionRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeError(w, r, err, false)
		return
	}
	if req.Status == "" {
		a.writeError(w, r, domain.Invalid("status is required"), false)
		return
	}
	o, err := a.svc.Orders.Transition(r.Context(), p, r.PathValue("id"), req.Status)
	if err != nil {
		a.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, Ok(o))
}

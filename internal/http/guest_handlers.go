package httpapi

import (
	"net/http"

	"roomserve/internal/service"
)

// Guest routes carry no credential; the room id in the path decides the tenant.

func (a *API) guestPlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req service.GuestOrderRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeError(w, r, err, false)
		return
	}
	o, err := a.svc.Orders.PlaceGuestOrder(r.Context(), r.PathValue("roomId"), req)
	if err != nil {
		a.writeError(w, r, err, false)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(o))
}

func (a *API) guestGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := a.svc.Orders.GuestOrder(r.Context(), r.PathValue("roomId"), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, Ok(o))
}

func (a *API) guestCancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := a.svc.Orders.GuestCancel(r.Context(), r.PathValue("roomId"), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err, true)
		return
	}
	writeJSON(w, http.StatusOK, Ok(o))
}

func (a *API) guestMenu(w http.ResponseWriter, r *http.Request) {
	m, err := a.svc.Menu.GuestMenu(r.Context(), r.PathValue("roomId"))
	if err != nil {
		a.writeError(w, r, err, false)
		return
	}
	writeJSON(w, http.StatusOK, Ok(m))
}

package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"roomserve/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (a *API) exportOrders(w http.ResponseWriter, r *http.Request, p *domain.Principal) {
	data, err := a.svc.Reports.OrdersWorkbook(r.Context(), p, domain.OrderStatus(r.URL.Query().Get("status")))
	if err != nil {
		a.writeError(w, r, err, false)
		return
	}
	name := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

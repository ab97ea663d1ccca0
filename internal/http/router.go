package httpapi

import (
	"net/http"

	"roomserve/internal/domain"

	"go.uber.org/zap"
)

// Router uses the standard library http.ServeMux with method patterns.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	accessLog(r.logger, r.mux).ServeHTTP(w, req)
}

// RegisterGuestRoutes: QR-code ordering, no credential.
func (r *Router) RegisterGuestRoutes(a *API) {
	r.Handle("POST /guest/api/v1/rooms/{roomId}/orders", a.guestPlaceOrder)
	r.Handle("GET /guest/api/v1/rooms/{roomId}/orders/{id}", a.guestGetOrder)
	r.Handle("POST /guest/api/v1/rooms/{roomId}/orders/{id}/cancel", a.guestCancelOrder)
	r.Handle("GET /guest/api/v1/rooms/{roomId}/menu", a.guestMenu)
}

func (r *Router) RegisterOrderRoutes(a *API) {
	r.Handle("GET /admin/api/v1/orders", a.authenticated(a.listOrders))
	r.Handle("POST /admin/api/v1/orders", a.authenticated(a.createOrder))
	r.Handle("GET /admin/api/v1/orders/{id}", a.authenticated(a.getOrder))
	r.Handle("PUT /admin/api/v1/orders/{id}", a.authenticated(a.updateOrder))
	r.Handle("DELETE /admin/api/v1/orders/{id}", a.authenticated(a.deleteOrder))
	r.Handle("POST /admin/api/v1/orders/{id}/status", a.authenticated(a.transitionOrder))
}

// RegisterCatalogRoutes: dishes, categories, expenses and rooms.
func (r *Router) RegisterCatalogRoutes(a *API) {
	resourceRoutes(r, a, "/admin/api/v1/dishes", a.svc.Dishes, func() *domain.Dish { return &domain.Dish{} }, "category_id", "available")
	resourceRoutes(r, a, "/admin/api/v1/categories", a.svc.Categories, func() *domain.Category { return &domain.Category{} })
	resourceRoutes(r, a, "/admin/api/v1/expenses", a.svc.Expenses, func() *domain.Expense { return &domain.Expense{} })
	resourceRoutes(r, a, "/admin/api/v1/rooms", a.svc.Rooms, func() *domain.Room { return &domain.Room{} })
}

func (r *Router) RegisterUserRoutes(a *API) {
	r.Handle("GET /admin/api/v1/users", a.authenticated(a.listUsers))
	r.Handle("POST /admin/api/v1/users", a.authenticated(a.createUser))
	r.Handle("GET /admin/api/v1/users/{id}", a.authenticated(a.getUser))
	r.Handle("PUT /admin/api/v1/users/{id}", a.authenticated(a.updateUser))
	r.Handle("DELETE /admin/api/v1/users/{id}", a.authenticated(a.deleteUser))
	r.Handle("POST /admin/api/v1/users/{id}/registration-token", a.authenticated(a.issueRegistrationToken))
}

// RegisterAdminTenantRoutes: tenant management (platform-level)
func (r *Router) RegisterAdminTenantRoutes(a *API) {
	r.Handle("GET /admin/api/v1/tenants", a.authenticated(a.listTenants))
	r.Handle("POST /admin/api/v1/tenants", a.authenticated(a.createTenant))
	r.Handle("PUT /admin/api/v1/tenants/{id}/status", a.authenticated(a.setTenantStatus))
}

func (r *Router) RegisterReportRoutes(a *API) {
	r.Handle("GET /admin/api/v1/reports/orders.xlsx", a.authenticated(a.exportOrders))
}

func (r *Router) RegisterAuthRoutes(a *API) {
	r.Handle("POST /auth/api/v1/registration/complete", a.completeRegistration)
	r.Handle("GET /auth/api/v1/me", a.authenticated(a.me))
	r.Handle("GET /healthz", a.healthz)
}

// RegisterAll wires every route group.
func (r *Router) RegisterAll(a *API) {
	r.RegisterGuestRoutes(a)
	r.RegisterOrderRoutes(a)
	r.RegisterCatalogRoutes(a)
	r.RegisterUserRoutes(a)
	r.RegisterAdminTenantRoutes(a)
	r.RegisterReportRoutes(a)
	r.RegisterAuthRoutes(a)
}

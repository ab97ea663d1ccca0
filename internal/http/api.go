package httpapi

import (
	"context"
	"net/http"
	"time"

	"roomserve/internal/domain"
	"roomserve/internal/service"

	"go.uber.org/zap"
)

// PrincipalResolver turns the request credential into a Principal.
type PrincipalResolver interface {
	Resolve(ctx context.Context, credential string) (*domain.Principal, error)
}

// SessionIssuer signs a session credential after registration completes.
type SessionIssuer interface {
	Issue(userID string, ttl time.Duration) (string, error)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Services are the application services the handlers call.
type Services struct {
	Orders     *service.OrderService
	Menu       *service.MenuService
	Dishes     *service.ResourceService[*domain.Dish]
	Categories *service.ResourceService[*domain.Category]
	Expenses   *service.ResourceService[*domain.Expense]
	Rooms      *service.ResourceService[*domain.Room]
	Users      *service.UserService
	Tenants    *service.TenantService
	Reports    *service.ReportService
}

// API holds the handler dependencies.
type API struct {
	svc        Services
	auth       PrincipalResolver
	sessions   SessionIssuer
	sessionTTL time.Duration
	checks     map[string]HealthCheck
	logger     *zap.Logger
}

type Option func(*API)

// WithSessionIssuer makes registration completion return a session token.
func WithSessionIssuer(s SessionIssuer, ttl time.Duration) Option {
	return func(a *API) {
		a.sessions = s
		a.sessionTTL = ttl
	}
}

func WithHealthCheck(name string, check HealthCheck) Option {
	return func(a *API) { a.checks[name] = check }
}

func NewAPI(svc Services, auth PrincipalResolver, logger *zap.Logger, opts ...Option) *API {
	a := &API{
		svc:    svc,
		auth:   auth,
		checks: map[string]HealthCheck{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	out := map[string]string{"status": "ok"}
	status := http.StatusOK
	for name, check := range a.checks {
		if err := check(ctx); err != nil {
			a.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			out[name] = "down"
			out["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		out[name] = "up"
	}
	writeJSON(w, status, Ok(out))
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomserve/common/database"
	"roomserve/common/logger"
	commonmqtt "roomserve/common/mqtt"
	commonredis "roomserve/common/redis"
	"roomserve/internal/access"
	"roomserve/internal/auth"
	"roomserve/internal/config"
	"roomserve/internal/domain"
	httpapi "roomserve/internal/http"
	"roomserve/internal/repository"
	"roomserve/internal/service"
	"roomserve/internal/store"

	"go.uber.org/zap"
)

// stores groups the persistence backends for one run (Postgres or in-memory).
type stores struct {
	orders     repository.OrderStore
	users      repository.UserStore
	dishes     repository.Store[*domain.Dish]
	categories repository.Store[*domain.Category]
	expenses   repository.Store[*domain.Expense]
	rooms      repository.Store[*domain.Room]
	tenants    repository.TenantsRepo
}

func postgresStores(db *sql.DB) stores {
	return stores{
		orders:     repository.NewPostgresOrderStore(db),
		users:      repository.NewPostgresUserStore(db),
		dishes:     repository.NewPostgresDishStore(db),
		categories: repository.NewPostgresCategoryStore(db),
		expenses:   repository.NewPostgresExpenseStore(db),
		rooms:      repository.NewPostgresRoomStore(db),
		tenants:    repository.NewPostgresTenantsRepo(db),
	}
}

func memoryStores() stores {
	return stores{
		orders:     repository.NewMemoryOrderStore(),
		users:      repository.NewMemoryUserStore(),
		dishes:     repository.NewMemoryDishStore(),
		categories: repository.NewMemoryCategoryStore(),
		expenses:   repository.NewMemoryExpenseStore(),
		rooms:      repository.NewMemoryRoomStore(),
		tenants:    repository.NewMemoryTenantsRepo(),
	}
}

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "roomserve")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	redisClient := commonredis.NewRedisClient(&cfg.Redis)
	kv := store.NewRedisKV(redisClient)

	// Optional DB; without it everything runs on memory stores
	var db *sql.DB
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for roomserve")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory stores", zap.Error(err))
		}
	}
	var st stores
	if db != nil {
		st = postgresStores(db)
	} else {
		st = memoryStores()
	}

	if err := seedRootAdmin(context.Background(), st.users, cfg.RootUserID); err != nil {
		if !errors.Is(err, domain.ErrSingleAdminViolation) {
			log.Fatal("failed to seed root admin", zap.Error(err))
		}
		log.Warn("another admin already exists, root admin not seeded", zap.String("root_user_id", cfg.RootUserID))
	}

	guard := access.NewGuard(access.LogDenials(log))
	perms := access.DefaultPermissionModel()

	// Kitchen tickets go to the print service over MQTT when configured
	var kitchen service.KitchenNotifier = service.NewLogKitchenNotifier(log)
	var mqttClient *commonmqtt.Client
	if cfg.MQTT.Enabled {
		if c, err := commonmqtt.NewClient(&cfg.MQTT.MQTTConfig, log); err == nil {
			mqttClient = c
			kitchen = service.NewMQTTKitchenNotifier(c, cfg.MQTT.TopicPrefix, c.QoS(), log)
		} else {
			log.Warn("MQTT enabled but connection failed, kitchen tickets will only be logged", zap.Error(err))
		}
	}
	events := service.NewStreamEventSink(redisClient, cfg.Order.EventsStream, cfg.Order.EventsMaxLen)

	orderRepo := repository.NewScopedRepository[*domain.Order]("order", st.orders, guard)
	expenseRepo := repository.NewScopedRepository[*domain.Expense]("expense", st.expenses, guard)
	userRepo := repository.NewScopedRepository[*domain.User]("user", st.users, guard,
		repository.WithProtectedIDs[*domain.User](cfg.RootUserID))
	rooms := repository.NewRoomTenantResolver(st.rooms)

	lifecycle := service.NewOrderLifecycle(st.orders, guard, kitchen, events, log)
	tokens := service.NewRegistrationTokens(kv, log)

	svc := httpapi.Services{
		Orders:     service.NewOrderService(orderRepo, st.orders, rooms, st.tenants, lifecycle, log),
		Menu:       service.NewMenuService(rooms, st.tenants, st.dishes, st.categories),
		Dishes:     service.NewDishService(repository.NewScopedRepository[*domain.Dish]("dish", st.dishes, guard)),
		Categories: service.NewCategoryService(repository.NewScopedRepository[*domain.Category]("category", st.categories, guard)),
		Expenses:   service.NewExpenseService(expenseRepo),
		Rooms:      service.NewRoomService(repository.NewScopedRepository[*domain.Room]("room", st.rooms, guard)),
		Users:      service.NewUserService(userRepo, st.users, tokens, perms, cfg.RootUserID, cfg.RegistrationTokenTTL, log),
		Tenants:    service.NewTenantService(st.tenants, log),
		Reports:    service.NewReportService(orderRepo, expenseRepo, log),
	}

	opts := []httpapi.Option{
		httpapi.WithHealthCheck("redis", func(ctx context.Context) error {
			return commonredis.Ping(ctx, redisClient)
		}),
	}
	if db != nil {
		opts = append(opts, httpapi.WithHealthCheck("postgres", db.PingContext))
	}

	var provider auth.Provider
	switch cfg.Auth.Mode {
	case "remote":
		provider = auth.NewRemoteProvider(cfg.Auth.RemoteURL, cfg.Auth.RemoteTimeout, log)
	default:
		if cfg.Auth.JWTSecret == "" {
			log.Fatal("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
		jwtp := auth.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
		provider = jwtp
		opts = append(opts, httpapi.WithSessionIssuer(jwtp, cfg.Auth.SessionTTL))
	}
	resolver := auth.NewResolver(provider, st.users, perms, log)

	api := httpapi.NewAPI(svc, resolver, log, opts...)
	router := httpapi.NewRouter(log)
	router.RegisterAll(api)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server failed", zap.Error(err))
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	// drain in-flight kitchen tickets and audit events
	if err := lifecycle.Wait(shutdownCtx); err != nil {
		log.Warn("order side effects did not drain before shutdown", zap.Error(err))
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	_ = commonredis.Close(redisClient)
	_ = database.Close(db)
}

// seedRootAdmin makes sure the bootstrap admin exists. It is a no-op when the
// id is already present.
func seedRootAdmin(ctx context.Context, users repository.UserStore, rootID string) error {
	if _, err := users.FindByID(ctx, rootID); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	now := time.Now().UTC()
	return users.Insert(ctx, &domain.User{
		ID:        rootID,
		Account:   "root",
		Role:      domain.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

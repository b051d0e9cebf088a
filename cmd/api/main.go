package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/pupsorders/internal/auth"
	"github.com/geocoder89/pupsorders/internal/cache"
	"github.com/geocoder89/pupsorders/internal/config"
	"github.com/geocoder89/pupsorders/internal/domain/order"
	httpx "github.com/geocoder89/pupsorders/internal/http"
	"github.com/geocoder89/pupsorders/internal/notifications"
	"github.com/geocoder89/pupsorders/internal/observability"
	"github.com/geocoder89/pupsorders/internal/security"
	"github.com/geocoder89/pupsorders/internal/service"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// a missing .env is fine outside local dev
	_ = godotenv.Load()

	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			tctx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracer(tctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	startCtx, cancelStart := config.WithTimeout(ctx, 15*time.Second)
	store, closeStore, err := openStore(startCtx, cfg, prom, log)
	cancelStart()
	if err != nil {
		log.Error("user store init failed", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	identityCache, closeCache := newIdentityCache(ctx, cfg, log)
	defer closeCache()

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	hasher := security.NewHasher(cfg.BcryptCost)
	catalog := order.DefaultCatalog()

	accounts := service.NewAccountService(store, hasher, tokens, cfg.StoreTimeout)
	identity := service.NewIdentityResolver(tokens, store, identityCache, prom, log, cfg.StoreTimeout)
	orders := service.NewOrderService(store, catalog, prom, cfg.StoreTimeout)

	router := httpx.NewRouter(httpx.RouterDeps{
		Env:                cfg.Env,
		ServiceName:        cfg.ServiceName,
		Log:                log,
		Prom:               prom,
		Gatherer:           reg,
		Accounts:           accounts,
		Orders:             orders,
		Identity:           identity,
		Notifier:           newNotifier(cfg, prom, log),
		Ping:               store.Ping,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		AuthRateLimit:      cfg.AuthRateLimit,
		AuthRateWindow:     cfg.AuthRateWindow,
		APIRateLimit:       cfg.APIRateLimit,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver, "versions", catalog.Versions())
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	select {
	case <-ctx.Done():
		log.Info("server shutting down")
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", "err", err)
		}
		return
	}

	shutdownCtx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return
	}

	log.Info("shutdown complete")
}

// newIdentityCache prefers Redis so replicas share lookups, and falls back to
// a process-local cache when Redis is unset or unreachable.
func newIdentityCache(ctx context.Context, cfg config.Config, log *slog.Logger) (service.IdentityCache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewLocalIdentityCache(cfg.IdentityCacheTTL), func() {}
	}

	rdb := cache.NewRedisClient(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	rc := cache.NewRedisIdentityCache(rdb, cfg.IdentityCacheTTL)

	pctx, cancel := config.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rc.Ping(pctx); err != nil {
		log.Warn("redis unreachable, using local identity cache", "addr", cfg.RedisAddr, "err", err)
		_ = rdb.Close()
		return cache.NewLocalIdentityCache(cfg.IdentityCacheTTL), func() {}
	}

	log.Info("identity cache ready", "backend", "redis", "addr", cfg.RedisAddr)
	return rc, func() { _ = rdb.Close() }
}

func newNotifier(cfg config.Config, prom *observability.Prom, log *slog.Logger) notifications.Notifier {
	var inner notifications.Notifier = notifications.NewLogNotifier(log)

	if cfg.MailgunEnabled() {
		inner = notifications.NewMailgunNotifier(notifications.MailgunConfig{
			Domain: cfg.MailgunDomain,
			APIKey: cfg.MailgunAPIKey,
			Sender: cfg.MailgunSender,
			Inbox:  cfg.ContactInbox,
		})
		log.Info("contact notifier ready", "backend", "mailgun", "domain", cfg.MailgunDomain)
	}

	return notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		Timeout:          cfg.NotifyTimeout,
		FailureThreshold: 3,
		Cooldown:         cfg.NotifyCooldown,
		HalfOpenMaxCalls: 1,
		OnStateChange: func(open bool) {
			prom.SetBreakerOpen(open)
			log.Warn("contact notifier breaker state changed", "open", open)
		},
	})
}

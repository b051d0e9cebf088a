package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/pupsorders/internal/http/handlers"
	"github.com/geocoder89/pupsorders/internal/http/middlewares"
	"github.com/geocoder89/pupsorders/internal/notifications"
	"github.com/geocoder89/pupsorders/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Identity resolves bearer tokens for RequireAuth and exposes the verified email.
type Identity interface {
	middlewares.IdentityResolver
	handlers.EmailResolver
}

type RouterDeps struct {
	Env         string
	ServiceName string
	Log         *slog.Logger

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Accounts handlers.AccountService
	Orders   handlers.OrderService
	Identity Identity
	Notifier notifications.Notifier

	// Ping checks the user store for /readyz.
	Ping func(ctx context.Context) error

	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	AuthRateLimit      int
	AuthRateWindow     time.Duration
	APIRateLimit       int
}

func NewRouter(d RouterDeps) *gin.Engine {
	if d.Env != "dev" && d.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 1 << 20
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if d.ServiceName != "" {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health and metrics
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	usersHandler := handlers.NewUsersHandler(d.Accounts, d.Identity)
	ordersHandler := handlers.NewOrdersHandler(d.Orders)
	authMW := middlewares.NewAuthMiddleware(d.Identity)

	authLimiter := middlewares.NewRateLimiter(d.AuthRateLimit, d.AuthRateWindow)
	contactLimiter := middlewares.NewRateLimiter(d.AuthRateLimit, d.AuthRateWindow)
	apiLimiter := middlewares.NewRateLimiter(d.APIRateLimit, d.AuthRateWindow)

	users := r.Group("/users")
	{
		users.POST("/register", authLimiter.Middleware(middlewares.KeyByIP), usersHandler.Register)
		users.POST("/login", authLimiter.Middleware(middlewares.KeyByIP), usersHandler.Login)

		authed := users.Group("", authMW.RequireAuth(), apiLimiter.Middleware(middlewares.KeyByUserOrIP))
		authed.PUT("/update-password", usersHandler.UpdatePassword)
		authed.GET("/get-email", usersHandler.GetEmail)
		authed.POST("/create-order", ordersHandler.CreateOrder)
		authed.GET("/orders", ordersHandler.ListOrders)
		authed.DELETE("/delete-order", ordersHandler.DeleteOrder)
	}

	if d.Notifier != nil {
		notificationsHandler := handlers.NewNotificationsHandler(d.Notifier, d.Prom)
		r.POST("/notifications/create", contactLimiter.Middleware(middlewares.KeyByIP), notificationsHandler.Create)
	}

	return r
}

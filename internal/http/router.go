package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/eventsphere/server/internal/auth"
	"github.com/eventsphere/server/internal/cache"
	"github.com/eventsphere/server/internal/config"
	"github.com/eventsphere/server/internal/domain/admin"
	"github.com/eventsphere/server/internal/http/handlers"
	"github.com/eventsphere/server/internal/http/middlewares"
	"github.com/eventsphere/server/internal/observability"
	"github.com/eventsphere/server/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxRequestBody = 10 << 10 // JSON payloads here are tiny

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config, prom *observability.Prom, promReg *prometheus.Registry, store cache.Store, startedAt time.Time) *gin.Engine {
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.CustomRecovery(func(c *gin.Context, _ interface{}) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}))
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(maxRequestBody))
	r.Use(middlewares.RequireJSON())
	r.Use(prom.GinHandleMiddleware())
	r.Use(otelgin.Middleware("eventsphere-api"))

	// repositories
	eventsRepo := postgres.NewEventsRepo(pool)
	registrationsRepo := postgres.NewRegistrationsRepo(pool, prom)
	adminsRepo := postgres.NewAdminsRepo(pool)
	statsRepo := postgres.NewStatsRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	guard := middlewares.NewAuthMiddleware(jwtManager)

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	healthHandler := handlers.NewHealthHandler(ping, cfg.Env, startedAt)
	authHandler := handlers.NewAuthHandler(adminsRepo, jwtManager, log)
	eventsHandler := handlers.NewEventsHandler(eventsRepo, registrationsRepo, store, log)
	registrationsHandler := handlers.NewRegistrationsHandler(registrationsRepo, eventsRepo, prom, log)
	statsHandler := handlers.NewStatsHandler(statsRepo, log)

	// credential and signup endpoints get their own abuse shields
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)
	registerLimiter := middlewares.NewRateLimiter(30, time.Minute)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.GET("/health", healthHandler.Health)

		api.POST("/auth/login",
			loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
			authHandler.Login)
		api.POST("/auth/register-admin",
			guard.RequireAuth(),
			guard.RequireRole(admin.RoleAdmin),
			authHandler.RegisterAdmin)

		api.GET("/events", eventsHandler.ListEvents)
		api.GET("/events/:id", eventsHandler.GetEventByID)
		api.POST("/events/:id/register",
			registerLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
			registrationsHandler.Register)

		adminAPI := api.Group("/admin",
			guard.RequireAuth(),
			guard.RequireRole(admin.RoleAdmin))
		{
			adminAPI.POST("/events", eventsHandler.CreateEvent)
			adminAPI.PUT("/events/:id", eventsHandler.UpdateEvent)
			adminAPI.DELETE("/events/:id", eventsHandler.DeleteEvent)
			adminAPI.GET("/events/:id/registrations", registrationsHandler.ListForEvent)
			adminAPI.GET("/registrations", registrationsHandler.ListAll)
			adminAPI.GET("/stats", statsHandler.Stats)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route " + c.Request.Method + " " + c.Request.URL.Path + " not found",
		})
	})

	return r
}

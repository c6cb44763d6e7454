package router

import (
	"github.com/gin-gonic/gin"

	promhandler "github.com/jwalitptl/careconnect-api/internal/handler/prometheus"
	"github.com/jwalitptl/careconnect-api/internal/middleware"
	"github.com/jwalitptl/careconnect-api/pkg/logger"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Handlers groups every route owner. Public handlers are mounted without
// authentication.
type Handlers struct {
	Health      Handler
	Auth        Handler
	Patient     Handler
	Share       Handler
	Doctor      Handler
	Appointment Handler
}

type RouterConfig struct {
	Mode        string
	RateLimit   *middleware.RateLimiterConfig
	CORSConfig  middleware.CORSConfig
	Security    middleware.SecurityConfig
	SizeLimit   middleware.SizeLimitConfig
	TrustedCIDR []string
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *promhandler.Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	handlers Handlers,
	metrics *promhandler.Handler,
	log *logger.Logger,
	config RouterConfig,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	middleware.UseJSONFieldNames()

	engine := gin.New()
	_ = engine.SetTrustedProxies(config.TrustedCIDR)

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  metrics,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
		metrics.Middleware(),
		middleware.SecurityHeaders(config.Security),
		middleware.CORS(config.CORSConfig),
		middleware.SizeLimit(config.SizeLimit),
	)

	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api/v1")

	// Public routes
	r.handlers.Health.RegisterRoutes(api)
	r.handlers.Auth.RegisterRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.handlers.Patient.RegisterRoutes(protected)
	r.handlers.Share.RegisterRoutes(protected)
	r.handlers.Doctor.RegisterRoutes(protected)
	r.handlers.Appointment.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

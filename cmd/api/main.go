package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/careconnect-api/internal/config"
	"github.com/jwalitptl/careconnect-api/internal/email"
	appointmentHandler "github.com/jwalitptl/careconnect-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/careconnect-api/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/careconnect-api/internal/handler/doctor"
	"github.com/jwalitptl/careconnect-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/careconnect-api/internal/handler/patient"
	promhandler "github.com/jwalitptl/careconnect-api/internal/handler/prometheus"
	shareHandler "github.com/jwalitptl/careconnect-api/internal/handler/share"
	"github.com/jwalitptl/careconnect-api/internal/middleware"
	"github.com/jwalitptl/careconnect-api/internal/repository/postgres"
	"github.com/jwalitptl/careconnect-api/internal/router"
	"github.com/jwalitptl/careconnect-api/internal/service/access"
	appointmentService "github.com/jwalitptl/careconnect-api/internal/service/appointment"
	authService "github.com/jwalitptl/careconnect-api/internal/service/auth"
	doctorService "github.com/jwalitptl/careconnect-api/internal/service/doctor"
	eventService "github.com/jwalitptl/careconnect-api/internal/service/event"
	patientService "github.com/jwalitptl/careconnect-api/internal/service/patient"
	shareService "github.com/jwalitptl/careconnect-api/internal/service/share"
	"github.com/jwalitptl/careconnect-api/pkg/auth"
	"github.com/jwalitptl/careconnect-api/pkg/logger"
	"github.com/jwalitptl/careconnect-api/pkg/metrics"
	"github.com/jwalitptl/careconnect-api/pkg/security"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})

	if cfg.JWT.Secret == "" {
		log.Fatal(nil, "jwt.secret must be set")
	}

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	appMetrics := metrics.New(cfg.Server.MetricsPrefix, registry)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	shareRepo := postgres.NewShareRepository(db)
	pendingRepo := postgres.NewPendingShareRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Initialize services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenTTL())
	authSvc := authService.NewService(userRepo, jwtSvc, security.NewBcryptHasher(0))
	resolver := access.NewResolver(patientRepo, shareRepo, appMetrics)
	patientSvc := patientService.NewService(patientRepo, resolver)
	doctorSvc := doctorService.NewService(doctorRepo)

	var mailer email.Service = email.Nop{}
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPService(cfg.SMTP, log)
	} else {
		log.Warn(nil, "smtp.host not set, invitation emails are disabled")
	}

	shareSvc := shareService.NewService(shareService.Deps{
		Users:         userRepo,
		Patients:      patientRepo,
		Shares:        shareRepo,
		PendingShares: pendingRepo,
		Mailer:        mailer,
		Events:        eventService.NewEventService(outboxRepo),
		Logger:        log,
		Metrics:       appMetrics,
	}, cfg.Sharing.InviteTTL)

	checker := appointmentService.NewChecker(appointmentRepo, cfg.Scheduling.ConflictWindowMinutes, appMetrics)
	appointmentSvc := appointmentService.NewService(appointmentRepo, doctorRepo, resolver, checker, log)

	// Setup router
	var rateLimit *middleware.RateLimiterConfig
	if cfg.RateLimit.Enabled {
		rateLimit = &middleware.RateLimiterConfig{
			Rate:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst:     cfg.RateLimit.Burst,
			ClientTTL: cfg.RateLimit.ClientTTL,
		}
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		router.Handlers{
			Health:      health.NewHandler(map[string]health.Pinger{"database": db}),
			Auth:        authHandler.NewHandler(authSvc),
			Patient:     patientHandler.NewHandler(patientSvc, resolver),
			Share:       shareHandler.NewHandler(shareSvc, resolver),
			Doctor:      doctorHandler.NewHandler(doctorSvc),
			Appointment: appointmentHandler.NewHandler(appointmentSvc),
		},
		promhandler.New(cfg.Server.MetricsPrefix, registry),
		log,
		router.RouterConfig{
			Mode:       gin.ReleaseMode,
			RateLimit:  rateLimit,
			CORSConfig: middleware.DefaultCORSConfig(),
			Security:   middleware.DefaultSecurityConfig(),
			SizeLimit:  middleware.DefaultSizeLimitConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}

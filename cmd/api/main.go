package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	_ "github.com/jackc/pgx/v5/stdlib"
	gcal "google.golang.org/api/calendar/v3"
	goauth2 "google.golang.org/api/oauth2/v2"

	"github.com/jmillares/dental-booking-api/internal/api/router"
	"github.com/jmillares/dental-booking-api/internal/appointment"
	"github.com/jmillares/dental-booking-api/internal/auth"
	"github.com/jmillares/dental-booking-api/internal/calendar"
	appconfig "github.com/jmillares/dental-booking-api/internal/config"
	"github.com/jmillares/dental-booking-api/internal/credential"
	"github.com/jmillares/dental-booking-api/internal/http/handlers"
	httpmiddleware "github.com/jmillares/dental-booking-api/internal/http/middleware"
	"github.com/jmillares/dental-booking-api/internal/notify"
	"github.com/jmillares/dental-booking-api/internal/observability/metrics"
	"github.com/jmillares/dental-booking-api/pkg/logging"
)

func main() {
	// Load configuration (.env is optional)
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting dental-booking-api server",
		"env", cfg.Env,
		"port", cfg.Port,
		"calendar_id", cfg.SharedCalendarID,
	)

	sessionSecret := cfg.SessionSecret
	if sessionSecret == "" {
		if cfg.IsProduction() {
			logger.Error("SESSION_SECRET is required in production")
			os.Exit(1)
		}
		logger.Warn("SESSION_SECRET not set, using insecure development secret")
		sessionSecret = "dev-session-secret"
	}

	// Durable store for the shared credential
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Google OAuth client shared by login and calendar access
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			gcal.CalendarEventsScope,
			gcal.CalendarReadonlyScope,
			goauth2.UserinfoProfileScope,
			goauth2.UserinfoEmailScope,
			"openid",
		},
	}

	// Metrics
	reg := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(reg)
	metricsHandler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	// Shared credential lifecycle
	store := credential.NewPostgresStore(db)
	manager := credential.NewManager(oauthCfg, store, logger.Component("credential"), bookingMetrics)
	if err := manager.Load(context.Background()); err != nil {
		logger.Error("failed to load shared credential", "error", err)
		os.Exit(1)
	}

	// Access policy and identity
	policy := auth.NewPolicy(cfg.AdminEmails)
	identity := auth.NewGoogleIdentity(policy)
	sessions := auth.NewSessions(sessionSecret, cfg.SessionTTL, cfg.IsProduction())

	// Booking emails (best effort; falls back to log-only in development)
	var sender notify.EmailSender = notify.NewLogSender(logger.Component("notify"))
	if cfg.SESFromEmail != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger.Component("notify"))
	}
	notifier := notify.NewService(sender, logger.Component("notify"))

	// Appointment service over the shared calendar
	provider := calendar.NewCredentialProvider(manager, cfg.SharedCalendarID, appointment.Location)
	svc := appointment.NewService(provider, policy, notifier, logger.Component("appointments"), bookingMetrics)

	// Handlers and middleware
	authHandler := handlers.NewAuthHandler(oauthCfg, sessions, identity, policy, manager, cfg.FrontendURL(), logger.Component("auth"))
	appointmentsHandler := handlers.NewAppointmentsHandler(svc, logger.Component("http"))
	statusHandler := handlers.NewStatusHandler(manager, store, policy, cfg.SharedCalendarID, logger.Component("http"))
	sessionMW := httpmiddleware.Session(sessions, identity, func(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
		return oauthCfg.TokenSource(ctx, tok).Token()
	}, logger.Component("auth"))

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		Auth:               authHandler,
		Appointments:       appointmentsHandler,
		Status:             statusHandler,
		SessionMiddleware:  sessionMW,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.ClientOrigins,
		RateLimitPerSec:    cfg.RateLimitPerSec,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

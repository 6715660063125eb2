package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mindsync/server/internal/handler"
	"github.com/mindsync/server/internal/infrastructure/logger"
	"github.com/mindsync/server/internal/infrastructure/redis"
	"github.com/mindsync/server/internal/observability/metrics"
	"github.com/mindsync/server/internal/observability/tracing"
	"github.com/mindsync/server/internal/repository"
	"github.com/mindsync/server/internal/security/audit"
	"github.com/mindsync/server/internal/security/auth"
	"github.com/mindsync/server/internal/security/middleware"
	"github.com/mindsync/server/internal/security/ratelimit"
	"github.com/mindsync/server/internal/service"
	"github.com/mindsync/server/pkg/cache"
	"github.com/mindsync/server/pkg/config"
	"github.com/mindsync/server/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting MindSync server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op without an OTLP endpoint)
	shutdownTracing, err := tracing.Init(ctx, log, cfg.OTLPEndpoint, "mindsync-server", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize Redis. A missing Redis is not fatal: the rate limiter
	// falls back to its in-memory window.
	var rateCounter ratelimit.Counter
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, rate limiting is per-instance", slog.String("error", err.Error()))
	} else {
		defer redisClient.Close()
		rateCounter = redisClient
	}

	// 5. Connect to Postgres and apply migrations
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(pool.GetDB(), log); err != nil {
		log.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Initialize repositories
	db := pool.GetDB()
	userRepo := repository.NewPostgresUserRepository(db, log)
	assignRepo := repository.NewPostgresAssignmentRepository(db, log)
	moodRepo := repository.NewPostgresMoodEntryRepository(db, log)
	noteRepo := repository.NewPostgresClinicianNoteRepository(db, log)
	flagRepo := repository.NewPostgresFeatureFlagRepository(db, log)
	auditRepo := repository.NewPostgresAuditLogRepository(db, log)

	// 7. Initialize services
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	auditRecorder := audit.NewRecorder(auditRepo, log)

	authService := service.NewAuthService(userRepo, tokenManager, cfg.AllowPublicAdmin, cfg.AllowPublicClinician, log)
	moodService := service.NewMoodService(moodRepo, log)
	assignmentService := service.NewAssignmentService(userRepo, assignRepo, log)
	noteService := service.NewNoteService(noteRepo, log)
	flagService := service.NewFlagService(flagRepo, cache.New(), cfg.FlagCacheTTL, log)
	adminService := service.NewAdminService(userRepo, auditRepo, assignmentService, auditRecorder, log)
	exportService := service.NewExportService(moodRepo, noteRepo, userRepo, log)

	if err := flagService.Seed(); err != nil {
		log.Error("failed to seed feature flags", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 8. Initialize handlers
	production := cfg.Environment == "production"
	authHandler := handler.NewAuthHandler(authService, tokenManager, production, log)
	moodHandler := handler.NewMoodHandler(moodService, flagService, log)
	exportHandler := handler.NewExportHandler(exportService, flagService, log)
	clinicianHandler := handler.NewClinicianHandler(assignmentService, moodService, noteService, exportService, log)
	adminHandler := handler.NewAdminHandler(adminService, log)
	flagHandler := handler.NewFlagHandler(flagService, log)
	healthHandler := handler.NewHealthHandler(pool, log)

	// 8a. Security middleware
	rateLimiter := ratelimit.NewLimiter(rateCounter, cfg.RateLimitRequests, cfg.RateLimitWindow)
	authenticate := middleware.Authenticate(tokenManager, userRepo, log)
	rateLimit := middleware.RateLimit(rateLimiter, log)

	protected := func(h http.HandlerFunc) http.Handler {
		return authenticate(rateLimit(h))
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return authenticate(rateLimit(middleware.RequireAdmin(h)))
	}
	clinicianOnly := func(h http.HandlerFunc) http.Handler {
		return authenticate(rateLimit(middleware.RequireClinician(h)))
	}

	// 9. Setup HTTP routes
	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/register", http.HandlerFunc(authHandler.Register))
	mux.Handle("POST /api/auth/login", http.HandlerFunc(authHandler.Login))
	mux.Handle("POST /api/auth/logout", http.HandlerFunc(authHandler.Logout))
	mux.Handle("GET /api/auth/me", protected(authHandler.Me))

	mux.Handle("POST /api/moods", protected(moodHandler.Create))
	mux.Handle("GET /api/moods", protected(moodHandler.List))
	mux.Handle("GET /api/moods/history", protected(moodHandler.History))

	mux.Handle("GET /api/export", protected(exportHandler.Download))

	mux.Handle("GET /api/flags", protected(flagHandler.List))
	mux.Handle("PATCH /api/flags/{key}", adminOnly(flagHandler.Set))

	mux.Handle("GET /api/clinician/patients", clinicianOnly(clinicianHandler.Patients))
	mux.Handle("GET /api/clinician/users/all", clinicianOnly(clinicianHandler.AssignablePool))
	mux.Handle("POST /api/clinician/users/{patientId}/assign-me", clinicianOnly(clinicianHandler.AssignSelf))
	mux.Handle("POST /api/clinician/users/{patientId}/unassign-me", clinicianOnly(clinicianHandler.UnassignSelf))
	mux.Handle("GET /api/clinician/{patientId}/moods", clinicianOnly(clinicianHandler.PatientMoods))
	mux.Handle("GET /api/clinician/{patientId}/notes", clinicianOnly(clinicianHandler.PatientNotes))
	mux.Handle("POST /api/clinician/{patientId}/notes", clinicianOnly(clinicianHandler.AddPatientNote))
	mux.Handle("GET /api/clinician/{patientId}/export", clinicianOnly(clinicianHandler.ExportPatient))

	mux.Handle("GET /api/admin/users", adminOnly(adminHandler.ListUsers))
	mux.Handle("PATCH /api/admin/users/{id}/toggle", adminOnly(adminHandler.ToggleActive))
	mux.Handle("PATCH /api/admin/users/{id}/role", adminOnly(adminHandler.ChangeRole))
	mux.Handle("POST /api/admin/users/{patientId}/assign-clinician", adminOnly(adminHandler.AssignClinician))
	mux.Handle("POST /api/admin/users/{patientId}/unassign-clinician", adminOnly(adminHandler.UnassignClinician))
	mux.Handle("GET /api/admin/logs", adminOnly(adminHandler.AuditLogs))
	mux.Handle("GET /api/admin/users/{id}/audit-export", adminOnly(adminHandler.AuditExport))

	mux.HandleFunc("GET /healthz", healthHandler.Liveness)
	mux.HandleFunc("GET /readyz", healthHandler.Readiness)
	mux.Handle("/metrics", promhttp.Handler())

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> content type -> CORS,
	// wrapped in OTel instrumentation
	rootHandler := otelhttp.NewHandler(
		withRequestID(
			metrics.HTTPMetricsMiddleware(
				middleware.ValidateJSONContentType(log)(handlerWithCORS),
			),
			log,
		),
		"mindsync-server",
	)

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitRequests),
		slog.Duration("rate_limit_window", cfg.RateLimitWindow),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}

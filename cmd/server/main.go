package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/ai"
	"sokrate-backend-go/internal/api"
	"sokrate-backend-go/internal/billing"
	"sokrate-backend-go/internal/config"
	"sokrate-backend-go/internal/core"
	"sokrate-backend-go/internal/db"
	"sokrate-backend-go/internal/gate"
	"sokrate-backend-go/internal/identity"
	"sokrate-backend-go/internal/metrics"
	"sokrate-backend-go/internal/middleware"
	"sokrate-backend-go/internal/profile"
	"sokrate-backend-go/internal/session"
	"sokrate-backend-go/pkg/mailer"
)

func main() {
	// A missing .env is fine; production reads the real environment.
	if os.Getenv("GIN_MODE") != "release" {
		_ = godotenv.Load()
	}

	// --- 1. Configuration and logger ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	var zapLogger *zap.Logger
	if appConfig.IsRelease() {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- 2. Firebase (Firestore, Auth) ---
	initCtx, cancelInit := context.WithTimeout(rootCtx, 15*time.Second)
	defer cancelInit()
	clients, err := db.InitFirebase(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase", zap.Error(err))
	}
	defer clients.Close()

	// --- 3. Repositories ---
	profileRepo, err := db.NewFirestoreProfileRepository(clients.Firestore)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create profile repository", zap.Error(err))
	}
	historyRepo, err := db.NewFirestoreHistoryRepository(clients.Firestore)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create history repository", zap.Error(err))
	}
	feedbackRepo, err := db.NewFirestoreFeedbackRepository(clients.Firestore)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create feedback repository", zap.Error(err))
	}

	// --- 4. Metrics and profile cache ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	var loader profile.Loader = profileRepo
	redisClient, err := profile.NewRedisClient(initCtx, appConfig.RedisURL)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		loader = profile.NewRedisLoader(redisClient, profileRepo, appConfig.ProfileCacheTTL, zapLogger)
		zapLogger.Info("Redis profile tier enabled")
	}
	profileCache := profile.NewCache(loader, zapLogger, collector)

	// --- 5. Identity and sessions ---
	provider, err := identity.NewFirebaseProvider(clients.Auth, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create identity provider", zap.Error(err))
	}
	sessions := session.NewRegistry(provider, session.RegistryConfig{
		ResolveTimeout: appConfig.SessionResolveTimeout,
		IdleTTL:        appConfig.SessionIdleTTL,
		UnreportedTTL:  appConfig.SessionUnreportedTTL,
		Logger:         zapLogger,
	})
	syncer := core.NewProfileSyncer(rootCtx, profileRepo, profileCache, collector, zapLogger)
	sessions.OnTransition(syncer.OnTransition)
	sessions.OnTransition(func(prev, next session.Session) {
		collector.RecordSessionTransition(prev.State.String(), next.State.String())
	})
	go sessions.Run(rootCtx)

	// --- 6. External services ---
	completer, err := ai.NewAnthropicClient(appConfig.AnthropicAPIKey, appConfig.AnthropicModel, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create AI client", zap.Error(err))
	}
	gateway, err := billing.NewStripeGateway(appConfig.StripeSecretKey, appConfig.StripeWebhookSecret, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to create Stripe gateway", zap.Error(err))
	}
	var notifier core.Notifier
	if appConfig.SMTPHost != "" {
		m, err := mailer.New(mailer.Config{
			Host:     appConfig.SMTPHost,
			Port:     appConfig.SMTPPort,
			Username: appConfig.SMTPUser,
			Password: appConfig.SMTPPass,
			From:     appConfig.MailFrom,
		})
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to create mailer", zap.Error(err))
		}
		notifier = m
	} else {
		zapLogger.Warn("SMTP_HOST is not configured; feedback notifications are disabled")
	}

	// --- 7. Core services ---
	profileService := core.NewProfileService(profileRepo, profileCache, zapLogger)
	tutorService := core.NewTutorService(ai.NewTutor(completer), historyRepo, collector, zapLogger)
	billingService := core.NewBillingService(gateway, profileService, profileRepo, appConfig.PublicBaseURL, zapLogger)
	historyService := core.NewHistoryService(historyRepo)
	feedbackService := core.NewFeedbackService(feedbackRepo, notifier, appConfig.SupportEmail, zapLogger)

	// --- 8. HTTP engine ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	api.SetupRoutes(router, api.Dependencies{
		Sessions:        middleware.NewSessionMiddleware(sessions, provider, appConfig.SessionCookieSecure, appConfig.SessionIdleTTL, zapLogger),
		Gate:            gate.New(profileCache, collector, zapLogger),
		ProfileService:  profileService,
		TutorService:    tutorService,
		BillingService:  billingService,
		HistoryService:  historyService,
		FeedbackService: feedbackService,
		Metrics:         collector.Handler(),
		StaticDir:       appConfig.StaticDir,
		Logger:          zapLogger,
	})

	// --- 9. Serve and shut down ---
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", appConfig.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("address", httpServer.Addr), zap.String("ginMode", gin.Mode()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shut down", zap.Error(err))
	}
	stop()
	syncer.Wait()
	feedbackService.Wait()

	zapLogger.Info("Server exiting gracefully.")
}

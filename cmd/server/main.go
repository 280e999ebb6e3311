package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/advice"
	"github.com/luminher/luminher-api/internal/api"
	"github.com/luminher/luminher-api/internal/config"
	"github.com/luminher/luminher-api/internal/core"
	"github.com/luminher/luminher-api/internal/db"
	"github.com/luminher/luminher-api/internal/firebase"
	"github.com/luminher/luminher-api/internal/identity"
	"github.com/luminher/luminher-api/internal/middleware"
	"github.com/luminher/luminher-api/pkg/mailer"
)

func main() {
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	zapLogger, err := newLogger(appConfig)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	clients, err := firebase.Init(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()

	mail, err := newMailer(appConfig)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize mailer", zap.Error(err))
	}

	// Adapters and repositories
	idp := identity.NewFirebaseProvider(clients.Auth)
	planRepo := db.NewFirestorePlanRepository(clients.Firestore)
	favoriteRepo := db.NewFirestoreFavoriteRepository(clients.Firestore)
	progressRepo := db.NewFirestoreProgressRepository(clients.Firestore)

	// Services
	policy := core.NewEmailSuffixPolicy(appConfig.AdminEmailSuffixes()...)
	adminService := core.NewAdminService(idp, policy, zapLogger)
	metricsService := core.NewMetricsService(idp, time.Now, zapLogger)
	emailService := core.NewEmailService(idp, mail, appConfig.MailFrom, zapLogger)
	planService := core.NewPlanService(planRepo, time.Now, zapLogger)
	favoriteService := core.NewFavoriteService(favoriteRepo, time.Now, zapLogger)
	progressService := core.NewProgressService(progressRepo)
	adviceProxy := advice.NewProxy(advice.Config{
		BaseURL:        appConfig.GeminiBaseURL,
		APIKey:         appConfig.GeminiAPIKey,
		DefaultModel:   appConfig.GeminiDefaultModel,
		DefaultVersion: appConfig.GeminiDefaultVersion,
	}, zapLogger)
	if appConfig.GeminiAPIKey == "" {
		zapLogger.Warn("GEMINI_API_KEY is not set; /apiAdvice will answer 500")
	}

	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig.ClientURL))

	api.SetupRoutes(router, api.Deps{
		APIKey:   appConfig.AdminAPIKey,
		Verifier: idp,
		Admin:    api.NewAdminHandler(adminService, core.NewAuthorizer(idp)),
		Plans:    api.NewPlanHandler(planService, favoriteService),
		Ops:      api.NewOpsHandler(metricsService, emailService, progressService, adviceProxy, time.Now, zapLogger),
		Logger:   zapLogger,
	})

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapConfig := zap.NewDevelopmentConfig()
	if strings.ToLower(cfg.GinMode) == "release" {
		zapConfig = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zapConfig.Level = level
	return zapConfig.Build()
}

// newMailer prefers SendGrid and falls back to SMTP.
func newMailer(cfg *config.Config) (mailer.Mailer, error) {
	if cfg.SendGridAPIKey != "" {
		return mailer.NewSendGridMailer(cfg.SendGridAPIKey)
	}
	return mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
}

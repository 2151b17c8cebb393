package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/voicebank/payment-service/pkg/logger"
	"github.com/voicebank/payment-service/pkg/messaging"

	handler "github.com/voicebank/payment-service/internal/adapter/handler/http"
	"github.com/voicebank/payment-service/internal/config"
	"github.com/voicebank/payment-service/internal/infrastructure/database"
	infrahttp "github.com/voicebank/payment-service/internal/infrastructure/http"
	inframessaging "github.com/voicebank/payment-service/internal/infrastructure/messaging"
	"github.com/voicebank/payment-service/internal/middleware/auth"
	"github.com/voicebank/payment-service/internal/usecase"
	"github.com/voicebank/payment-service/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting payment service",
		zap.String("service", cfg.Service.Name),
		zap.String("version", cfg.Service.Version),
		zap.String("environment", cfg.Service.Environment))

	db, err := database.NewPostgresDB(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("failed to migrate database", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(&cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	repos := database.NewRepositories(db, redisClient, zapLogger)

	publisher := messaging.NewRedisPublisher(redisClient)
	notifier := inframessaging.NewOTPNotifier(publisher, zapLogger)
	elicitationPublisher := inframessaging.NewElicitationPublisher(publisher, zapLogger)

	policy, err := usecase.NewAmountThresholdPolicy(cfg.Policy.OTPThreshold)
	if err != nil {
		zapLogger.Fatal("invalid elicitation policy", zap.Error(err))
	}

	initiator := usecase.NewPaymentInitiator(repos, notifier, cfg.Policy.SessionTTL(), !cfg.Service.IsProduction(), zapLogger)
	confirmer := usecase.NewPaymentConfirmer(repos, zapLogger)
	elicitationRouter := usecase.NewElicitationRouter(repos, confirmer, elicitationPublisher, policy, cfg.Policy.ElicitationTimeout(), zapLogger)

	jwtMiddleware := auth.NewJWTMiddleware(cfg.JWT.Secret, zapLogger)
	paymentHandler := handler.NewPaymentHandler(initiator, confirmer, zapLogger)
	elicitationHandler := handler.NewElicitationHandler(elicitationRouter, zapLogger)

	server := infrahttp.NewServer(
		cfg.Server.HTTP.Host,
		cfg.Server.HTTP.Port,
		jwtMiddleware,
		paymentHandler,
		elicitationHandler,
		zapLogger,
	)

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	sweeper := worker.NewExpirySweeper(repos.Transaction, cfg.Policy.SweepInterval(), zapLogger)
	go sweeper.Run(sweeperCtx)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("shutting down")

	stopSweeper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("http server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("shutdown complete")
}

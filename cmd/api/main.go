package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finpal/backend/internal/config"
	"github.com/finpal/backend/internal/infrastructure/dynamo"
	"github.com/finpal/backend/internal/infrastructure/expo"
	jwtinfra "github.com/finpal/backend/internal/infrastructure/jwt"
	"github.com/finpal/backend/internal/infrastructure/smtp"
	"github.com/finpal/backend/internal/infrastructure/sns"
	"github.com/finpal/backend/internal/pkg/clock"
	transporthttp "github.com/finpal/backend/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them and seeds the achievement
	// catalog if absent).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:            dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		TransactionRepo:     dynamo.NewTransactionRepo(dynamoClient, cfg.DynamoTables.Transactions),
		BudgetRepo:          dynamo.NewBudgetRepo(dynamoClient, cfg.DynamoTables.Budgets),
		AchievementRepo:     dynamo.NewAchievementRepo(dynamoClient, cfg.DynamoTables.Achievements),
		UserAchievementRepo: dynamo.NewUserAchievementRepo(dynamoClient, cfg.DynamoTables.UserAchievements),
		NotificationRepo:    dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		AlertMarkerRepo:     dynamo.NewAlertMarkerRepo(dynamoClient, cfg.DynamoTables.AlertMarkers),
		PushSender:          expo.NewClient(cfg.ExpoPushURL),
		SMSSender:           smsSender,
		Mailer:              mailer,
		JWTProvider:         jwtProvider,
		Clock:               clock.Real{},
	}

	router, pipeline := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	// Drain queued gamification and alert events before exiting.
	pipeline.Close()
	log.Println("Server stopped")
}

package main

import (
	"context"
	"log"
	"time"

	"github.com/finpal/backend/internal/application/dispatch"
	"github.com/finpal/backend/internal/application/reports"
	"github.com/finpal/backend/internal/config"
	"github.com/finpal/backend/internal/infrastructure/dynamo"
	"github.com/finpal/backend/internal/infrastructure/expo"
	"github.com/finpal/backend/internal/infrastructure/smtp"
	"github.com/finpal/backend/internal/pkg/clock"
	"github.com/joho/godotenv"
)

// Standalone weekly summary runner, for schedulers that prefer invoking a
// binary over hitting the cron-key endpoint.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	dynamoClient := dynamo.NewClient(cfg)

	svc := reports.NewService(reports.ServiceDeps{
		Users:        dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		Transactions: dynamo.NewTransactionRepo(dynamoClient, cfg.DynamoTables.Transactions),
		Dispatcher: dispatch.NewService(
			dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
			expo.NewClient(cfg.ExpoPushURL),
			clock.Real{},
		),
		Mailer: smtp.NewMailer(cfg),
		Clock:  clock.Real{},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	sent, failed := svc.RunAll(ctx)
	log.Printf("weekly summary run finished: sent=%d failed=%d", sent, failed)
}

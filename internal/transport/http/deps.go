package http

import (
	"github.com/finpal/backend/internal/infrastructure/dynamo"
	"github.com/finpal/backend/internal/infrastructure/expo"
	jwtinfra "github.com/finpal/backend/internal/infrastructure/jwt"
	"github.com/finpal/backend/internal/infrastructure/smtp"
	"github.com/finpal/backend/internal/infrastructure/sns"
	"github.com/finpal/backend/internal/pkg/clock"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo            *dynamo.UserRepo
	TransactionRepo     *dynamo.TransactionRepo
	BudgetRepo          *dynamo.BudgetRepo
	AchievementRepo     *dynamo.AchievementRepo
	UserAchievementRepo *dynamo.UserAchievementRepo
	NotificationRepo    *dynamo.NotificationRepo
	AlertMarkerRepo     *dynamo.AlertMarkerRepo
	PushSender          expo.Sender
	SMSSender           sns.SMSSender
	Mailer              smtp.Mailer
	JWTProvider         *jwtinfra.Provider
	Clock               clock.Clock
}

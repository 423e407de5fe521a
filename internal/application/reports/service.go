package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finpal/backend/internal/application/dispatch"
	"github.com/finpal/backend/internal/domain"
	"github.com/finpal/backend/internal/infrastructure/expo"
	"github.com/finpal/backend/internal/infrastructure/smtp"
	"github.com/finpal/backend/internal/pkg/clock"
)

const pageSize = 100

// Service builds and sends weekly activity summaries. The bulk driver is
// triggered by an external scheduler roughly weekly.
type Service interface {
	SendWeeklySummary(ctx context.Context, userID string) error
	RunAll(ctx context.Context) (sent, failed int)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	PageWithPushToken(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}

type transactionStore interface {
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]domain.Transaction, error)
}

type service struct {
	users      userStore
	txs        transactionStore
	dispatcher dispatch.Service
	mailer     smtp.Mailer // optional email fallback
	clk        clock.Clock
}

type ServiceDeps struct {
	Users        userStore
	Transactions transactionStore
	Dispatcher   dispatch.Service
	Mailer       smtp.Mailer
	Clock        clock.Clock
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:      deps.Users,
		txs:        deps.Transactions,
		dispatcher: deps.Dispatcher,
		mailer:     deps.Mailer,
		clk:        deps.Clock,
	}
}

// SendWeeklySummary aggregates the user's last 7 days and dispatches a
// summary notification. Quiet weeks (no transactions) send nothing.
func (s *service) SendWeeklySummary(ctx context.Context, userID string) error {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !u.NotificationsEnabled(domain.PrefWeekly) {
		return nil
	}

	since := s.clk.Now().AddDate(0, 0, -7)
	txs, err := s.txs.ListByUserSince(ctx, userID, since)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil
	}

	var totalExpense, totalIncome float64
	byCategory := map[string]float64{}
	var categories []string // insertion order for tie-breaking
	for _, t := range txs {
		switch t.Type {
		case domain.TxIncome:
			totalIncome += t.Amount
		case domain.TxExpense:
			totalExpense += t.Amount
			if _, seen := byCategory[t.Category]; !seen {
				categories = append(categories, t.Category)
			}
			byCategory[t.Category] += t.Amount
		}
	}

	// Top expense category by sum. On exact ties the first-seen category
	// wins; the ordering of true ties is not a guaranteed behavior.
	var topCategory string
	var topAmount float64
	for _, c := range categories {
		if byCategory[c] > topAmount {
			topCategory = c
			topAmount = byCategory[c]
		}
	}

	body := fmt.Sprintf("This week you spent $%.2f and earned $%.2f.", totalExpense, totalIncome)
	if topCategory != "" {
		body += fmt.Sprintf(" Top category: %s ($%.2f).", topCategory, topAmount)
	}

	in := dispatch.SendInput{
		UserID: userID,
		Tokens: tokensOf(u),
		Title:  "Your weekly summary",
		Body:   body,
		Data: map[string]interface{}{
			"type":          domain.NotifWeeklySummary,
			"total_expense": totalExpense,
			"total_income":  totalIncome,
			"top_category":  topCategory,
		},
	}
	if err := s.dispatcher.Send(ctx, in); err != nil {
		slog.Error("weekly summary dispatch failed", "user_id", userID, "err", err)
	}

	// Users without a working push token still get their digest by email.
	if s.mailer != nil && u.Email != "" && !hasValidToken(u) {
		if err := s.mailer.SendEmail(u.Email, "Your weekly summary", body); err != nil {
			slog.Error("weekly summary email failed", "user_id", userID, "err", err)
		}
	}
	return nil
}

// RunAll pages through every user with a push token and sends each a weekly
// summary. Each user runs behind its own error boundary so one failure
// cannot abort the batch.
func (s *service) RunAll(ctx context.Context) (sent, failed int) {
	slog.Info("weekly summary run starting")
	cursor := ""
	for {
		users, next, err := s.users.PageWithPushToken(ctx, pageSize, cursor)
		if err != nil {
			slog.Error("weekly summary: page users failed", "err", err)
			break
		}
		for i := range users {
			if err := s.SendWeeklySummary(ctx, users[i].UserID); err != nil {
				slog.Error("weekly summary failed for user", "user_id", users[i].UserID, "err", err)
				failed++
				continue
			}
			sent++
		}
		if next == "" {
			break
		}
		cursor = next
	}
	slog.Info("weekly summary run finished", "sent", sent, "failed", failed)
	return sent, failed
}

func hasValidToken(u *domain.User) bool {
	return u.PushToken != nil && expo.IsPushToken(*u.PushToken)
}

func tokensOf(u *domain.User) []string {
	if u.PushToken == nil || *u.PushToken == "" {
		return nil
	}
	return []string{*u.PushToken}
}

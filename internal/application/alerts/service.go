package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/finpal/backend/internal/application/dispatch"
	"github.com/finpal/backend/internal/domain"
	"github.com/finpal/backend/internal/infrastructure/sns"
	"github.com/finpal/backend/internal/pkg/clock"
)

// LargeTransactionThreshold is the absolute amount above which a single
// transaction triggers a security alert.
const LargeTransactionThreshold = 500.0

// Budget usage ratios that trigger an alert.
const (
	ThresholdApproaching = 0.8
	ThresholdExceeded    = 1.0
)

// Service watches financial events and fires alert notifications. Every
// method is best-effort: alerting must never block transaction creation, so
// all failures are logged and swallowed.
type Service interface {
	CheckLargeTransaction(ctx context.Context, userID string, amount float64, category string)
	CheckBudget(ctx context.Context, userID, category string)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type budgetStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Budget, error)
}

type transactionStore interface {
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]domain.Transaction, error)
}

type markerStore interface {
	Claim(ctx context.Context, userID, marker string) error
}

type service struct {
	users      userStore
	budgets    budgetStore
	txs        transactionStore
	markers    markerStore
	dispatcher dispatch.Service
	sms        sns.SMSSender // optional second channel for security alerts
	clk        clock.Clock
}

type ServiceDeps struct {
	Users        userStore
	Budgets      budgetStore
	Transactions transactionStore
	Markers      markerStore
	Dispatcher   dispatch.Service
	SMS          sns.SMSSender
	Clock        clock.Clock
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:      deps.Users,
		budgets:    deps.Budgets,
		txs:        deps.Transactions,
		markers:    deps.Markers,
		dispatcher: deps.Dispatcher,
		sms:        deps.SMS,
		clk:        deps.Clock,
	}
}

// CheckLargeTransaction alerts on any single transaction at or above the
// threshold. No dedup: each large transaction is independently noteworthy.
func (s *service) CheckLargeTransaction(ctx context.Context, userID string, amount float64, category string) {
	if amount < LargeTransactionThreshold {
		return
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Error("large tx check: load user failed", "user_id", userID, "err", err)
		}
		return
	}
	if !u.NotificationsEnabled(domain.PrefSecurity) {
		return
	}

	body := fmt.Sprintf("A transaction of $%.2f was recorded in %s.", amount, category)
	in := dispatch.SendInput{
		UserID: userID,
		Tokens: tokensOf(u),
		Title:  "Large transaction",
		Body:   body,
		Data:   map[string]interface{}{"type": domain.NotifLargeTransaction, "amount": amount},
	}
	if err := s.dispatcher.Send(ctx, in); err != nil {
		slog.Error("large tx dispatch failed", "user_id", userID, "err", err)
	}

	if s.sms != nil && u.Phone != nil && *u.Phone != "" {
		if err := s.sms.SendSMS(ctx, *u.Phone, "FinPal security alert: "+body); err != nil {
			slog.Error("large tx sms failed", "user_id", userID, "err", err)
		}
	}
}

// CheckBudget recomputes the month-to-date spend for the category's budget
// and fires an 80% or 100% alert at most once per threshold per calendar
// month. Dedup is an atomic marker claim, so two concurrent checks cannot
// both send the same alert.
func (s *service) CheckBudget(ctx context.Context, userID, category string) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Error("budget check: load user failed", "user_id", userID, "err", err)
		}
		return
	}
	if !u.NotificationsEnabled(domain.PrefBudget) {
		return
	}

	budgets, err := s.budgets.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("budget check: list budgets failed", "user_id", userID, "err", err)
		return
	}
	var budget *domain.Budget
	for i := range budgets {
		if strings.EqualFold(budgets[i].Category, category) {
			budget = &budgets[i]
			break
		}
	}
	if budget == nil || budget.Amount <= 0 {
		return
	}

	monthStart := clock.MonthStart(s.clk.Now())
	txs, err := s.txs.ListByUserSince(ctx, userID, monthStart)
	if err != nil {
		slog.Error("budget check: list transactions failed", "user_id", userID, "err", err)
		return
	}
	var spent float64
	for _, t := range txs {
		if t.Type == domain.TxExpense && strings.EqualFold(t.Category, category) {
			spent += t.Amount
		}
	}

	ratio := spent / budget.Amount
	var threshold float64
	switch {
	case ratio >= ThresholdExceeded:
		threshold = ThresholdExceeded
	case ratio >= ThresholdApproaching:
		threshold = ThresholdApproaching
	default:
		return
	}

	marker := budgetMarker(budget.BudgetID, threshold, monthStart)
	if err := s.markers.Claim(ctx, userID, marker); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			slog.Error("budget check: claim marker failed", "user_id", userID, "err", err)
		}
		// Already alerted this threshold this month, or we can't know —
		// either way, don't send.
		return
	}

	var title, body string
	if threshold == ThresholdExceeded {
		title = "Budget exceeded"
		body = fmt.Sprintf("You've spent $%.2f of your $%.2f %s budget this month.", spent, budget.Amount, budget.Category)
	} else {
		title = "Budget alert"
		body = fmt.Sprintf("You've used %.0f%% of your $%.2f %s budget this month.", ratio*100, budget.Amount, budget.Category)
	}

	in := dispatch.SendInput{
		UserID: userID,
		Tokens: tokensOf(u),
		Title:  title,
		Body:   body,
		Data: map[string]interface{}{
			"type":      domain.NotifBudgetThreshold,
			"threshold": threshold,
			"budget_id": budget.BudgetID,
		},
	}
	if err := s.dispatcher.Send(ctx, in); err != nil {
		slog.Error("budget alert dispatch failed", "user_id", userID, "err", err)
	}
}

// budgetMarker encodes the identity of a budget-threshold alert for one
// calendar month.
func budgetMarker(budgetID string, threshold float64, periodStart time.Time) string {
	return fmt.Sprintf("budget#%s#%.1f#%s", budgetID, threshold, periodStart.UTC().Format("2006-01-02"))
}

func tokensOf(u *domain.User) []string {
	if u.PushToken == nil || *u.PushToken == "" {
		return nil
	}
	return []string{*u.PushToken}
}

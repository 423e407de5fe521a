package gamification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finpal/backend/internal/application/dispatch"
	"github.com/finpal/backend/internal/domain"
)

// XPPerLevel is the amount of XP between levels.
const XPPerLevel = 100

// LevelForXP derives the level from an XP total. Level is never stored
// independently of xp; this is the single source of truth.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// Result reports the outcome of an XP award. A zero-value result (Level 1)
// is returned on any internal failure; errors never reach the caller.
type Result struct {
	XP       int                  `json:"xp"`
	Level    int                  `json:"level"`
	GainedXP int                  `json:"gained_xp"`
	Unlocked []domain.Achievement `json:"unlocked_achievements"`
}

// Service maintains users' XP, levels and achievements. Every operation is
// best-effort: it runs as a side effect of a primary action (creating a
// transaction or budget) whose success must not depend on it.
//
// AwardXP never re-checks achievements, which makes the non-recursive path
// the default; unlocking an achievement awards its XP reward through AwardXP
// and therefore cannot trigger another unlock pass.
type Service interface {
	AwardXP(ctx context.Context, userID string, amount int) Result
	AwardXPAndCheckAchievements(ctx context.Context, userID string, amount int) Result
	CheckAchievements(ctx context.Context, userID string) []domain.Achievement
	Unlock(ctx context.Context, userID, key string) (*domain.Achievement, error)
	Progress(ctx context.Context, userID string) (*Progress, error)
}

// Progress is the user-facing gamification state.
type Progress struct {
	XP       int                      `json:"xp"`
	Level    int                      `json:"level"`
	Unlocked []domain.UserAchievement `json:"unlocked"`
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	AddXP(ctx context.Context, userID string, amount int) (int, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type catalogStore interface {
	GetByKey(ctx context.Context, key string) (*domain.Achievement, error)
}

type unlockStore interface {
	PutIfAbsent(ctx context.Context, ua *domain.UserAchievement) error
	ListByUser(ctx context.Context, userID string) ([]domain.UserAchievement, error)
}

type transactionCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

type budgetCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

type clock interface {
	Now() time.Time
}

type service struct {
	users        userStore
	catalog      catalogStore
	unlocks      unlockStore
	transactions transactionCounter
	budgets      budgetCounter
	dispatcher   dispatch.Service
	clk          clock
}

type ServiceDeps struct {
	Users        userStore
	Catalog      catalogStore
	Unlocks      unlockStore
	Transactions transactionCounter
	Budgets      budgetCounter
	Dispatcher   dispatch.Service
	Clock        clock
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:        deps.Users,
		catalog:      deps.Catalog,
		unlocks:      deps.Unlocks,
		transactions: deps.Transactions,
		budgets:      deps.Budgets,
		dispatcher:   deps.Dispatcher,
		clk:          deps.Clock,
	}
}

func zeroResult() Result {
	return Result{XP: 0, Level: 1}
}

// AwardXP adds XP to the user, recomputes the level and fires a level-up
// notification when a level boundary is crossed. The increment is atomic at
// the storage layer so concurrent awards cannot lose updates.
func (s *service) AwardXP(ctx context.Context, userID string, amount int) Result {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Error("award xp: load user failed", "user_id", userID, "err", err)
		}
		return zeroResult()
	}

	oldLevel := u.Level
	if oldLevel < 1 {
		oldLevel = LevelForXP(u.XP)
	}

	newXP, err := s.users.AddXP(ctx, userID, amount)
	if err != nil {
		slog.Error("award xp: increment failed", "user_id", userID, "err", err)
		return zeroResult()
	}

	newLevel := LevelForXP(newXP)
	if newLevel != oldLevel {
		if err := s.users.Update(ctx, userID, map[string]interface{}{"level": newLevel}); err != nil {
			slog.Error("award xp: persist level failed", "user_id", userID, "err", err)
		}
	}

	if newLevel > oldLevel && u.NotificationsEnabled(domain.PrefGamification) {
		in := dispatch.SendInput{
			UserID: userID,
			Tokens: tokensOf(u),
			Title:  "Level up!",
			Body:   fmt.Sprintf("You reached level %d. Keep it going!", newLevel),
			Data:   map[string]interface{}{"type": domain.NotifLevelUp, "level": newLevel},
		}
		if err := s.dispatcher.Send(ctx, in); err != nil {
			slog.Error("level up dispatch failed", "user_id", userID, "err", err)
		}
	}

	return Result{XP: newXP, Level: newLevel, GainedXP: amount}
}

// AwardXPAndCheckAchievements composes AwardXP with an achievement pass.
// This is the entry point for transaction/budget events.
func (s *service) AwardXPAndCheckAchievements(ctx context.Context, userID string, amount int) Result {
	r := s.AwardXP(ctx, userID, amount)
	r.Unlocked = s.CheckAchievements(ctx, userID)
	return r
}

// CheckAchievements runs every unlock condition in fixed order and returns
// the achievements that were newly unlocked by this pass. ai_scanner is
// deliberately absent: only the receipt-scan flow unlocks it, via Unlock.
func (s *service) CheckAchievements(ctx context.Context, userID string) []domain.Achievement {
	var unlocked []domain.Achievement

	txCount, err := s.transactions.CountByUser(ctx, userID)
	if err != nil {
		slog.Error("check achievements: count transactions failed", "user_id", userID, "err", err)
	}
	budgetCount, err := s.budgets.CountByUser(ctx, userID)
	if err != nil {
		slog.Error("check achievements: count budgets failed", "user_id", userID, "err", err)
	}

	checks := []struct {
		key string
		met bool
	}{
		{domain.AchFirstTx, txCount >= 1},
		{domain.AchTxMaster, txCount >= 10},
		{domain.AchBudgetPlanner, budgetCount >= 3},
	}
	for _, c := range checks {
		if !c.met {
			continue
		}
		a, err := s.Unlock(ctx, userID, c.key)
		if err != nil {
			slog.Error("unlock failed", "user_id", userID, "key", c.key, "err", err)
			continue
		}
		if a != nil {
			unlocked = append(unlocked, *a)
		}
	}
	return unlocked
}

// Unlock grants the achievement to the user at most once. It returns the
// catalog entry on a fresh unlock and (nil, nil) when the achievement was
// already unlocked or is missing from the catalog.
func (s *service) Unlock(ctx context.Context, userID, key string) (*domain.Achievement, error) {
	a, err := s.catalog.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Catalog seeding is an external concern.
			return nil, nil
		}
		return nil, err
	}

	ua := &domain.UserAchievement{
		UserID:         userID,
		AchievementKey: key,
		UnlockedAt:     s.clk.Now(),
	}
	if err := s.unlocks.PutIfAbsent(ctx, ua); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, nil
		}
		return nil, err
	}

	if u, err := s.users.Get(ctx, userID); err == nil && u.NotificationsEnabled(domain.PrefGamification) {
		in := dispatch.SendInput{
			UserID: userID,
			Tokens: tokensOf(u),
			Title:  "Achievement unlocked!",
			Body:   fmt.Sprintf("%s — %s", a.Name, a.Description),
			Data:   map[string]interface{}{"type": domain.NotifAchievement, "key": a.Key},
		}
		if err := s.dispatcher.Send(ctx, in); err != nil {
			slog.Error("achievement dispatch failed", "user_id", userID, "err", err)
		}
	}

	if a.XPReward > 0 {
		// No re-check here: the reward must not trigger another unlock pass.
		s.AwardXP(ctx, userID, a.XPReward)
	}

	return a, nil
}

func (s *service) Progress(ctx context.Context, userID string) (*Progress, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.unlocks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Progress{XP: u.XP, Level: u.Level, Unlocked: unlocked}, nil
}

func tokensOf(u *domain.User) []string {
	if u.PushToken == nil || *u.PushToken == "" {
		return nil
	}
	return []string{*u.PushToken}
}

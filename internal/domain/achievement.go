package domain

import "time"

// Achievement catalog keys. The catalog is seeded at bootstrap; keys are
// stable identifiers referenced by the unlock checks.
const (
	AchFirstTx       = "first_tx"
	AchTxMaster      = "tx_master"
	AchBudgetPlanner = "budget_planner"
	AchAIScanner     = "ai_scanner" // unlocked by the receipt-scan flow only
)

// Achievement is an immutable catalog entry.
type Achievement struct {
	Key         string `json:"key" dynamodbav:"key"`
	Name        string `json:"name" dynamodbav:"name"`
	Description string `json:"description" dynamodbav:"description"`
	Icon        string `json:"icon" dynamodbav:"icon"`
	XPReward    int    `json:"xp_reward" dynamodbav:"xp_reward"`
}

// UserAchievement records that a user unlocked an achievement. The
// (user_id, achievement_key) pair is unique; it is created at most once.
type UserAchievement struct {
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	AchievementKey string    `json:"achievement_key" dynamodbav:"achievement_key"`
	UnlockedAt     time.Time `json:"unlocked_at" dynamodbav:"unlocked_at"`
}

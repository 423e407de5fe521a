package domain

import "time"

// Notification payload types carried in the Data map under "type".
const (
	NotifBudgetThreshold  = "budget_threshold"
	NotifLargeTransaction = "large_transaction"
	NotifWeeklySummary    = "weekly_summary"
	NotifLevelUp          = "level_up"
	NotifAchievement      = "achievement_unlocked"
)

type Notification struct {
	NotificationID string                 `json:"id" dynamodbav:"notification_id"`
	UserID         string                 `json:"user_id" dynamodbav:"user_id"`
	Title          string                 `json:"title" dynamodbav:"title"`
	Body           string                 `json:"body" dynamodbav:"body"`
	Data           map[string]interface{} `json:"data,omitempty" dynamodbav:"data"`
	IsRead         bool                   `json:"is_read" dynamodbav:"is_read"`
	CreatedAt      time.Time              `json:"created" dynamodbav:"created_at"`
}

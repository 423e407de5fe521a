package domain

import "time"

// License tiers. TRIAL accounts carry an expiry; PRO/ULTIMATE do not.
const (
	TierTrial    = "TRIAL"
	TierPro      = "PRO"
	TierUltimate = "ULTIMATE"
)

// Notification preference keys. A key missing from the settings map means
// the channel is enabled (default-allow).
const (
	PrefBudget       = "budget"
	PrefSecurity     = "security"
	PrefWeekly       = "weekly"
	PrefGamification = "gamification"
)

type User struct {
	UserID       string          `json:"id" dynamodbav:"user_id"`
	Email        string          `json:"email" dynamodbav:"email"`
	Name         string          `json:"name" dynamodbav:"name"`
	PasswordHash string          `json:"-" dynamodbav:"password_hash"`
	Phone        *string         `json:"phone,omitempty" dynamodbav:"phone"`
	LicenseTier  string          `json:"license_tier" dynamodbav:"license_tier"`
	TrialEndsAt  *time.Time      `json:"trial_ends_at,omitempty" dynamodbav:"trial_ends_at"`
	XP           int             `json:"xp" dynamodbav:"xp"`
	Level        int             `json:"level" dynamodbav:"level"`
	Settings     map[string]bool `json:"notification_settings" dynamodbav:"notification_settings"`
	PushToken    *string         `json:"push_token,omitempty" dynamodbav:"push_token"`
	CreatedAt    time.Time       `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time       `json:"updated" dynamodbav:"updated_at"`
}

// NotificationsEnabled reports whether the given channel is enabled for the
// user. Absent keys default to enabled; only an explicit false disables.
func (u *User) NotificationsEnabled(key string) bool {
	if u.Settings == nil {
		return true
	}
	v, ok := u.Settings[key]
	return !ok || v
}

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Name     string  `json:"name" validate:"required"`
	Phone    *string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateSettingsRequest struct {
	Settings map[string]bool `json:"notification_settings" validate:"required"`
}

type UpdatePushTokenRequest struct {
	PushToken string `json:"push_token" validate:"required"`
}

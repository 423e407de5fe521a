package domain

import "time"

// PeriodMonthly is the only budget period currently supported.
const PeriodMonthly = "MONTHLY"

type Budget struct {
	BudgetID  string    `json:"id" dynamodbav:"budget_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Category  string    `json:"category" dynamodbav:"category"`
	Amount    float64   `json:"amount" dynamodbav:"amount"`
	Period    string    `json:"period" dynamodbav:"period"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateBudgetRequest struct {
	Category string  `json:"category" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

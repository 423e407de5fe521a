package domain

import "time"

const (
	TxIncome  = "INCOME"
	TxExpense = "EXPENSE"
)

type Transaction struct {
	TransactionID string    `json:"id" dynamodbav:"transaction_id"`
	UserID        string    `json:"user_id" dynamodbav:"user_id"`
	WalletID      string    `json:"wallet_id" dynamodbav:"wallet_id"`
	Amount        float64   `json:"amount" dynamodbav:"amount"`
	Type          string    `json:"type" dynamodbav:"type"`
	Category      string    `json:"category" dynamodbav:"category"`
	Description   string    `json:"description,omitempty" dynamodbav:"description"`
	Date          time.Time `json:"date" dynamodbav:"date"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateTransactionRequest struct {
	WalletID    string  `json:"wallet_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Type        string  `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Category    string  `json:"category" validate:"required"`
	Description string  `json:"description"`
	Date        string  `json:"date"` // RFC 3339; defaults to now when empty
}

package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/finpal/backend/internal/domain"
	"github.com/finpal/backend/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateTransactionRequest) (*domain.Transaction, error)
	List(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
	Delete(ctx context.Context, userID, transactionID string) error
}

type transactionStore interface {
	Put(ctx context.Context, t *domain.Transaction) error
	Get(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit int32) ([]domain.Transaction, error)
	HardDelete(ctx context.Context, transactionID string) error
}

type service struct {
	repo transactionStore
}

func NewService(repo transactionStore) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateTransactionRequest) (*domain.Transaction, error) {
	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return nil, fmt.Errorf("date must be RFC 3339: %w", domain.ErrBadRequest)
		}
		date = parsed.UTC()
	}
	t := &domain.Transaction{
		TransactionID: id.New(),
		UserID:        userID,
		WalletID:      req.WalletID,
		Amount:        req.Amount,
		Type:          req.Type,
		Category:      req.Category,
		Description:   req.Description,
		Date:          date,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) List(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, int32(limit))
}

func (s *service) Delete(ctx context.Context, userID, transactionID string) error {
	t, err := s.repo.Get(ctx, transactionID)
	if err != nil {
		return err
	}
	if t.UserID != userID {
		return fmt.Errorf("not your transaction: %w", domain.ErrForbidden)
	}
	return s.repo.HardDelete(ctx, transactionID)
}

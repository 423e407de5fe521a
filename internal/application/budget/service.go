package budget

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/finpal/backend/internal/domain"
	"github.com/finpal/backend/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateBudgetRequest) (*domain.Budget, error)
	List(ctx context.Context, userID string) ([]domain.Budget, error)
	Delete(ctx context.Context, userID, budgetID string) error
}

type budgetStore interface {
	Put(ctx context.Context, b *domain.Budget) error
	Get(ctx context.Context, budgetID string) (*domain.Budget, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Budget, error)
	HardDelete(ctx context.Context, budgetID string) error
}

type service struct {
	repo budgetStore
}

func NewService(repo budgetStore) Service {
	return &service{repo: repo}
}

// Create enforces one budget per (user, category); categories are matched
// case-insensitively.
func (s *service) Create(ctx context.Context, userID string, req domain.CreateBudgetRequest) (*domain.Budget, error) {
	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, b := range existing {
		if strings.EqualFold(b.Category, req.Category) {
			return nil, fmt.Errorf("budget for category %q already exists: %w", req.Category, domain.ErrConflict)
		}
	}
	now := time.Now().UTC()
	b := &domain.Budget{
		BudgetID:  id.New(),
		UserID:    userID,
		Category:  req.Category,
		Amount:    req.Amount,
		Period:    domain.PeriodMonthly,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Budget, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID, budgetID string) error {
	b, err := s.repo.Get(ctx, budgetID)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return fmt.Errorf("not your budget: %w", domain.ErrForbidden)
	}
	return s.repo.HardDelete(ctx, budgetID)
}

package budget

import (
	"context"
	"errors"
	"testing"

	"github.com/finpal/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockBudgetStore struct{ mock.Mock }

func (m *mockBudgetStore) Put(ctx context.Context, b *domain.Budget) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockBudgetStore) Get(ctx context.Context, budgetID string) (*domain.Budget, error) {
	args := m.Called(ctx, budgetID)
	if b, _ := args.Get(0).(*domain.Budget); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockBudgetStore) ListByUser(ctx context.Context, userID string) ([]domain.Budget, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Budget), args.Error(1)
}
func (m *mockBudgetStore) HardDelete(ctx context.Context, budgetID string) error {
	return m.Called(ctx, budgetID).Error(0)
}

// --- tests ---

func TestCreate_HappyPath(t *testing.T) {
	repo := &mockBudgetStore{}
	repo.On("ListByUser", mock.Anything, "u1").Return([]domain.Budget{}, nil)
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.Budget")).Return(nil)

	svc := NewService(repo)
	b, err := svc.Create(context.Background(), "u1", domain.CreateBudgetRequest{Category: "Food", Amount: 300})

	require.NoError(t, err)
	assert.Equal(t, "Food", b.Category)
	assert.Equal(t, domain.PeriodMonthly, b.Period)
	assert.NotEmpty(t, b.BudgetID)
	repo.AssertExpectations(t)
}

func TestCreate_DuplicateCategory_CaseInsensitive(t *testing.T) {
	repo := &mockBudgetStore{}
	repo.On("ListByUser", mock.Anything, "u1").Return([]domain.Budget{
		{BudgetID: "b1", UserID: "u1", Category: "food", Amount: 100},
	}, nil)

	svc := NewService(repo)
	_, err := svc.Create(context.Background(), "u1", domain.CreateBudgetRequest{Category: "Food", Amount: 300})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestDelete_OwnershipEnforced(t *testing.T) {
	repo := &mockBudgetStore{}
	repo.On("Get", mock.Anything, "b1").Return(&domain.Budget{BudgetID: "b1", UserID: "someone-else"}, nil)

	svc := NewService(repo)
	err := svc.Delete(context.Background(), "u1", "b1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	repo.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}

func TestDelete_HappyPath(t *testing.T) {
	repo := &mockBudgetStore{}
	repo.On("Get", mock.Anything, "b1").Return(&domain.Budget{BudgetID: "b1", UserID: "u1"}, nil)
	repo.On("HardDelete", mock.Anything, "b1").Return(nil)

	svc := NewService(repo)
	err := svc.Delete(context.Background(), "u1", "b1")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

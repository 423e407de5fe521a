package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finpal/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockTransactionStore struct{ mock.Mock }

func (m *mockTransactionStore) Put(ctx context.Context, tx *domain.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}
func (m *mockTransactionStore) Get(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if tx, _ := args.Get(0).(*domain.Transaction); tx != nil {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTransactionStore) ListByUser(ctx context.Context, userID string, limit int32) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *mockTransactionStore) HardDelete(ctx context.Context, transactionID string) error {
	return m.Called(ctx, transactionID).Error(0)
}

// --- tests ---

func baseReq() domain.CreateTransactionRequest {
	return domain.CreateTransactionRequest{
		WalletID: "w1",
		Amount:   42.50,
		Type:     domain.TxExpense,
		Category: "Market",
	}
}

func TestCreate_DefaultsDateToNow(t *testing.T) {
	repo := &mockTransactionStore{}
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.Transaction")).Return(nil)

	svc := NewService(repo)
	tx, err := svc.Create(context.Background(), "u1", baseReq())

	require.NoError(t, err)
	assert.Equal(t, "u1", tx.UserID)
	assert.NotEmpty(t, tx.TransactionID)
	assert.WithinDuration(t, time.Now().UTC(), tx.Date, time.Minute)
	repo.AssertExpectations(t)
}

func TestCreate_ParsesExplicitDate(t *testing.T) {
	repo := &mockTransactionStore{}
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo)
	req := baseReq()
	req.Date = "2026-08-10T14:30:00Z"
	tx, err := svc.Create(context.Background(), "u1", req)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 10, 14, 30, 0, 0, time.UTC), tx.Date)
}

func TestCreate_RejectsBadDate(t *testing.T) {
	svc := NewService(&mockTransactionStore{})
	req := baseReq()
	req.Date = "10/08/2026"
	_, err := svc.Create(context.Background(), "u1", req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestList_ClampsLimit(t *testing.T) {
	repo := &mockTransactionStore{}
	repo.On("ListByUser", mock.Anything, "u1", int32(50)).Return([]domain.Transaction{}, nil)

	svc := NewService(repo)
	_, err := svc.List(context.Background(), "u1", 0)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDelete_OwnershipEnforced(t *testing.T) {
	repo := &mockTransactionStore{}
	repo.On("Get", mock.Anything, "t1").Return(&domain.Transaction{TransactionID: "t1", UserID: "someone-else"}, nil)

	svc := NewService(repo)
	err := svc.Delete(context.Background(), "u1", "t1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	repo.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}

package gamification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finpal/backend/internal/application/dispatch"
	"github.com/finpal/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) AddXP(ctx context.Context, userID string, amount int) (int, error) {
	args := m.Called(ctx, userID, amount)
	return args.Int(0), args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) GetByKey(ctx context.Context, key string) (*domain.Achievement, error) {
	args := m.Called(ctx, key)
	if a, _ := args.Get(0).(*domain.Achievement); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUnlocks struct{ mock.Mock }

func (m *mockUnlocks) PutIfAbsent(ctx context.Context, ua *domain.UserAchievement) error {
	return m.Called(ctx, ua).Error(0)
}
func (m *mockUnlocks) ListByUser(ctx context.Context, userID string) ([]domain.UserAchievement, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.UserAchievement), args.Error(1)
}

type mockCounter struct{ mock.Mock }

func (m *mockCounter) CountByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Send(ctx context.Context, in dispatch.SendInput) error {
	return m.Called(ctx, in).Error(0)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// --- helpers ---

type fixture struct {
	users      *mockUserStore
	catalog    *mockCatalog
	unlocks    *mockUnlocks
	txCount    *mockCounter
	budgets    *mockCounter
	dispatcher *mockDispatcher
	svc        Service
}

func newFixture() *fixture {
	f := &fixture{
		users:      &mockUserStore{},
		catalog:    &mockCatalog{},
		unlocks:    &mockUnlocks{},
		txCount:    &mockCounter{},
		budgets:    &mockCounter{},
		dispatcher: &mockDispatcher{},
	}
	f.svc = NewService(ServiceDeps{
		Users:        f.users,
		Catalog:      f.catalog,
		Unlocks:      f.unlocks,
		Transactions: f.txCount,
		Budgets:      f.budgets,
		Dispatcher:   f.dispatcher,
		Clock:        fixedClock{t: time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)},
	})
	return f
}

func ptr[T any](v T) *T { return &v }

// --- LevelForXP ---

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{199, 2},
		{250, 3},
		{-10, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.level, LevelForXP(c.xp), "xp=%d", c.xp)
	}
}

// --- AwardXP ---

func TestAwardXP_CrossesLevelBoundary(t *testing.T) {
	f := newFixture()
	f.users.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", XP: 80, Level: 1, PushToken: ptr("ExponentPushToken[abc]"),
	}, nil)
	f.users.On("AddXP", mock.Anything, "u1", 50).Return(130, nil)
	f.users.On("Update", mock.Anything, "u1", map[string]interface{}{"level": 2}).Return(nil)
	f.dispatcher.On("Send", mock.Anything, mock.MatchedBy(func(in dispatch.SendInput) bool {
		return in.Title == "Level up!" && in.Data["level"] == 2
	})).Return(nil)

	r := f.svc.AwardXP(context.Background(), "u1", 50)

	assert.Equal(t, 130, r.XP)
	assert.Equal(t, 2, r.Level)
	assert.Equal(t, 50, r.GainedXP)
	f.users.AssertExpectations(t)
	f.dispatcher.AssertExpectations(t)
}

func TestAwardXP_NoLevelChange(t *testing.T) {
	f := newFixture()
	f.users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", XP: 80, Level: 1}, nil)
	f.users.On("AddXP", mock.Anything, "u1", 15).Return(95, nil)

	r := f.svc.AwardXP(context.Background(), "u1", 15)

	assert.Equal(t, 95, r.XP)
	assert.Equal(t, 1, r.Level)
	f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestAwardXP_UnknownUser_ReturnsZeroResult(t *testing.T) {
	f := newFixture()
	f.users.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	r := f.svc.AwardXP(context.Background(), "ghost", 10)

	assert.Equal(t, Result{XP: 0, Level: 1}, r)
	f.users.AssertNotCalled(t, "AddXP", mock.Anything, mock.Anything, mock.Anything)
}

func TestAwardXP_IncrementFailure_ReturnsZeroResult(t *testing.T) {
	f := newFixture()
	f.users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", XP: 80, Level: 1}, nil)
	f.users.On("AddXP", mock.Anything, "u1", 10).Return(0, errors.New("dynamo down"))

	r := f.svc.AwardXP(context.Background(), "u1", 10)

	assert.Equal(t, Result{XP: 0, Level: 1}, r)
}

func TestAwardXP_GamificationDisabled_SkipsNotification(t *testing.T) {
	f := newFixture()
	f.users.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID:    "u1",
		XP:        80,
		Level:     1,
		PushToken: ptr("ExponentPushToken[abc]"),
		Settings:  map[string]bool{domain.PrefGamification: false},
	}, nil)
	f.users.On("AddXP", mock.Anything, "u1", 50).Return(130, nil)
	f.users.On("Update", mock.Anything, "u1", map[string]interface{}{"level": 2}).Return(nil)

	r := f.svc.AwardXP(context.Background(), "u1", 50)

	assert.Equal(t, 2, r.Level)
	f.dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

// --- Unlock ---

func TestUnlock_Fresh_AwardsRewardWithoutRecheck(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetByKey", mock.Anything, domain.AchFirstTx).Return(&domain.Achievement{
		Key: domain.AchFirstTx, Name: "First Steps", Description: "Record your first transaction", XPReward: 20,
	}, nil)
	f.unlocks.On("PutIfAbsent", mock.Anything, mock.MatchedBy(func(ua *domain.UserAchievement) bool {
		return ua.UserID == "u1" && ua.AchievementKey == domain.AchFirstTx
	})).Return(nil)
	f.users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", XP: 0, Level: 1}, nil)
	f.users.On("AddXP", mock.Anything, "u1", 20).Return(20, nil)
	f.dispatcher.On("Send", mock.Anything, mock.MatchedBy(func(in dispatch.SendInput) bool {
		return in.Title == "Achievement unlocked!"
	})).Return(nil)

	a, err := f.svc.Unlock(context.Background(), "u1", domain.AchFirstTx)

	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, domain.AchFirstTx, a.Key)
	// The XP reward must not trigger another achievement pass.
	f.txCount.AssertNotCalled(t, "CountByUser", mock.Anything, mock.Anything)
	f.budgets.AssertNotCalled(t, "CountByUser", mock.Anything, mock.Anything)
	f.unlocks.AssertExpectations(t)
}

func TestUnlock_AlreadyUnlocked_IsIdempotent(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetByKey", mock.Anything, domain.AchFirstTx).Return(&domain.Achievement{
		Key: domain.AchFirstTx, XPReward: 20,
	}, nil)
	f.unlocks.On("PutIfAbsent", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	a, err := f.svc.Unlock(context.Background(), "u1", domain.AchFirstTx)

	require.NoError(t, err)
	assert.Nil(t, a)
	f.dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "AddXP", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnlock_MissingCatalogEntry(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetByKey", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	a, err := f.svc.Unlock(context.Background(), "u1", "nope")

	require.NoError(t, err)
	assert.Nil(t, a)
	f.unlocks.AssertNotCalled(t, "PutIfAbsent", mock.Anything, mock.Anything)
}

// --- CheckAchievements ---

func TestCheckAchievements_FirstTransaction(t *testing.T) {
	f := newFixture()
	f.txCount.On("CountByUser", mock.Anything, "u1").Return(1, nil)
	f.budgets.On("CountByUser", mock.Anything, "u1").Return(0, nil)
	f.catalog.On("GetByKey", mock.Anything, domain.AchFirstTx).Return(&domain.Achievement{
		Key: domain.AchFirstTx, Name: "First Steps",
	}, nil)
	f.unlocks.On("PutIfAbsent", mock.Anything, mock.Anything).Return(nil)
	f.users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)
	f.dispatcher.On("Send", mock.Anything, mock.Anything).Return(nil)

	unlocked := f.svc.CheckAchievements(context.Background(), "u1")

	require.Len(t, unlocked, 1)
	assert.Equal(t, domain.AchFirstTx, unlocked[0].Key)
}

func TestCheckAchievements_TenTransactions_OnlyNewUnlocksReturned(t *testing.T) {
	f := newFixture()
	f.txCount.On("CountByUser", mock.Anything, "u1").Return(10, nil)
	f.budgets.On("CountByUser", mock.Anything, "u1").Return(0, nil)
	f.catalog.On("GetByKey", mock.Anything, domain.AchFirstTx).Return(&domain.Achievement{Key: domain.AchFirstTx}, nil)
	f.catalog.On("GetByKey", mock.Anything, domain.AchTxMaster).Return(&domain.Achievement{Key: domain.AchTxMaster, Name: "Transaction Master"}, nil)
	// first_tx was unlocked long ago; only tx_master is new.
	f.unlocks.On("PutIfAbsent", mock.Anything, mock.MatchedBy(func(ua *domain.UserAchievement) bool {
		return ua.AchievementKey == domain.AchFirstTx
	})).Return(domain.ErrConflict)
	f.unlocks.On("PutIfAbsent", mock.Anything, mock.MatchedBy(func(ua *domain.UserAchievement) bool {
		return ua.AchievementKey == domain.AchTxMaster
	})).Return(nil)
	f.users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)
	f.dispatcher.On("Send", mock.Anything, mock.Anything).Return(nil)

	unlocked := f.svc.CheckAchievements(context.Background(), "u1")

	require.Len(t, unlocked, 1)
	assert.Equal(t, domain.AchTxMaster, unlocked[0].Key)
}

func TestCheckAchievements_BudgetPlanner(t *testing.T) {
	f := newFixture()
	f.txCount.On("CountByUser", mock.Anything, "u1").Return(0, nil)
	f.budgets.On("CountByUser", mock.Anything, "u1").Return(3, nil)
	f.catalog.On("GetByKey", mock.Anything, domain.AchBudgetPlanner).Return(&domain.Achievement{Key: domain.AchBudgetPlanner}, nil)
	f.unlocks.On("PutIfAbsent", mock.Anything, mock.Anything).Return(nil)
	f.users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)
	f.dispatcher.On("Send", mock.Anything, mock.Anything).Return(nil)

	unlocked := f.svc.CheckAchievements(context.Background(), "u1")

	require.Len(t, unlocked, 1)
	assert.Equal(t, domain.AchBudgetPlanner, unlocked[0].Key)
}

func TestCheckAchievements_NothingMet(t *testing.T) {
	f := newFixture()
	f.txCount.On("CountByUser", mock.Anything, "u1").Return(0, nil)
	f.budgets.On("CountByUser", mock.Anything, "u1").Return(0, nil)

	unlocked := f.svc.CheckAchievements(context.Background(), "u1")

	assert.Empty(t, unlocked)
	f.catalog.AssertNotCalled(t, "GetByKey", mock.Anything, mock.Anything)
}

// --- Progress ---

func TestProgress(t *testing.T) {
	f := newFixture()
	f.users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", XP: 150, Level: 2}, nil)
	f.unlocks.On("ListByUser", mock.Anything, "u1").Return([]domain.UserAchievement{
		{UserID: "u1", AchievementKey: domain.AchFirstTx},
	}, nil)

	p, err := f.svc.Progress(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 150, p.XP)
	assert.Equal(t, 2, p.Level)
	require.Len(t, p.Unlocked, 1)
}

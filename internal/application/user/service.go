package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finpal/backend/internal/domain"
	"github.com/finpal/backend/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// Trial accounts start with a 14-day window.
const trialDuration = 14 * 24 * time.Hour

// DynamoDB attribute names used in partial update maps.
const (
	fieldSettings  = "notification_settings"
	fieldPushToken = "push_token"
)

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateSettings(ctx context.Context, userID string, settings map[string]bool) (*domain.User, error)
	UpdatePushToken(ctx context.Context, userID, token string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type jwtSigner interface {
	Sign(userID, licenseTier string) (string, error)
}

type service struct {
	repo        userStore
	jwtProvider jwtSigner
}

func NewService(repo userStore, jwtProvider jwtSigner) Service {
	return &service{repo: repo, jwtProvider: jwtProvider}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	trialEnd := now.Add(trialDuration)
	u := &domain.User{
		UserID:       id.New(),
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		LicenseTier:  domain.TierTrial,
		TrialEndsAt:  &trialEnd,
		XP:           0,
		Level:        1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, u.LicenseTier)
	if err != nil {
		return nil, "", err
	}
	return u, bearer, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// UpdateSettings replaces the notification settings map. Only known
// preference keys are accepted.
func (s *service) UpdateSettings(ctx context.Context, userID string, settings map[string]bool) (*domain.User, error) {
	for k := range settings {
		switch k {
		case domain.PrefBudget, domain.PrefSecurity, domain.PrefWeekly, domain.PrefGamification:
		default:
			return nil, fmt.Errorf("unknown notification setting %q: %w", k, domain.ErrBadRequest)
		}
	}
	if err := s.repo.Update(ctx, userID, map[string]interface{}{fieldSettings: settings}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) UpdatePushToken(ctx context.Context, userID, token string) error {
	return s.repo.Update(ctx, userID, map[string]interface{}{fieldPushToken: token})
}

package dispatch

import (
	"context"
	"log/slog"

	"github.com/finpal/backend/internal/domain"
	"github.com/finpal/backend/internal/infrastructure/expo"
	"github.com/finpal/backend/internal/pkg/clock"
	"github.com/finpal/backend/internal/pkg/id"
)

// SendInput describes one push dispatch. When UserID is set, a Notification
// record is persisted before delivery is attempted.
type SendInput struct {
	UserID string
	Tokens []string
	Title  string
	Body   string
	Data   map[string]interface{}
	Sound  string
	Badge  *int
}

// Service sends push messages and records notification history. Delivery is
// best-effort: persistence failures and gateway errors are logged, never
// returned, and nothing is retried.
type Service interface {
	Send(ctx context.Context, in SendInput) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type service struct {
	notifications notificationStore
	sender        expo.Sender
	clock         clock.Clock
}

func NewService(notifications notificationStore, sender expo.Sender, clk clock.Clock) Service {
	return &service{notifications: notifications, sender: sender, clock: clk}
}

func (s *service) Send(ctx context.Context, in SendInput) error {
	if in.UserID != "" {
		n := &domain.Notification{
			NotificationID: id.New(),
			UserID:         in.UserID,
			Title:          in.Title,
			Body:           in.Body,
			Data:           in.Data,
			IsRead:         false,
			CreatedAt:      s.clock.Now().UTC(),
		}
		if err := s.notifications.Put(ctx, n); err != nil {
			// History is nice to have; delivery still proceeds.
			slog.Error("persist notification failed", "user_id", in.UserID, "err", err)
		}
	}

	valid := in.Tokens[:0:0]
	for _, t := range in.Tokens {
		if expo.IsPushToken(t) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		slog.Info("no valid push tokens, skipping delivery", "user_id", in.UserID)
		return nil
	}

	sound := in.Sound
	if sound == "" {
		sound = "default"
	}

	for start := 0; start < len(valid); start += expo.BatchLimit {
		end := start + expo.BatchLimit
		if end > len(valid) {
			end = len(valid)
		}
		batch := make([]expo.Message, 0, end-start)
		for _, token := range valid[start:end] {
			batch = append(batch, expo.Message{
				To:    token,
				Title: in.Title,
				Body:  in.Body,
				Data:  in.Data,
				Sound: sound,
				Badge: in.Badge,
			})
		}
		// One batch failing must not block the rest.
		if err := s.sender.Publish(ctx, batch); err != nil {
			slog.Error("push batch failed", "user_id", in.UserID, "size", len(batch), "err", err)
		}
	}
	return nil
}

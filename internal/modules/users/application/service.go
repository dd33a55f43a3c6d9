package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	rtdomain "rentalWs/internal/modules/realtime/domain"
	"rentalWs/internal/modules/realtime/application/port"
	"rentalWs/internal/modules/users/domain"
	"rentalWs/internal/shared/auth"
)

// Service implements account registration, credential checks and account
// administration. Every committed mutation is announced on the broker.
type Service struct {
	repo      domain.Repository
	publisher port.EventPublisher
}

func NewService(repo domain.Repository, publisher port.EventPublisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUser, err)
	}
	user, err := domain.NewUser(name, email, hash, role)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, rtdomain.EventUserCreated, user)
	return user, nil
}

// Authenticate resolves an email/password pair to the account it belongs to.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Do not reveal whether the account exists.
		return nil, auth.ErrBadCredentials
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, auth.ErrBadCredentials
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.FindAll(ctx)
}

// Update replaces the account's profile fields. A non-empty password is
// re-hashed; an empty one keeps the stored hash.
func (s *Service) Update(ctx context.Context, id, name, email, password string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	hash := user.PasswordHash
	if password != "" {
		if hash, err = auth.HashPassword(password); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUser, err)
		}
	}
	updated, err := domain.NewUser(name, email, hash, user.Role)
	if err != nil {
		return nil, err
	}
	updated.ID = user.ID
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	s.publish(ctx, rtdomain.EventUserUpdated, updated)
	return updated, nil
}

// Delete removes the account and announces the removal. Open WebSocket
// connections of the deleted user are not force-closed; their token simply
// stops resolving once it expires.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	ev, err := rtdomain.NewEvent(rtdomain.EventUserDeleted, id, nil, rtdomain.AudienceNone, map[string]any{"user_id": id})
	if err != nil {
		slog.Error("user event build failed", slog.String("eventType", string(rtdomain.EventUserDeleted)), slog.Any("error", err))
		return nil
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("user event publish failed", slog.String("eventType", string(rtdomain.EventUserDeleted)), slog.String("userId", id), slog.Any("error", err))
	}
	return nil
}

// publish is log-and-continue: the account mutation is already committed, so
// a broker outage must not fail the request.
func (s *Service) publish(ctx context.Context, eventType rtdomain.EventType, user *domain.User) {
	ev, err := rtdomain.NewEvent(eventType, user.ID, nil, rtdomain.AudienceNone, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
	})
	if err != nil {
		slog.Error("user event build failed", slog.String("eventType", string(eventType)), slog.Any("error", err))
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("user event publish failed", slog.String("eventType", string(eventType)), slog.String("userId", user.ID), slog.Any("error", err))
	}
}

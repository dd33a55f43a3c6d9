package application

import (
	"context"
	"log/slog"

	"rentalWs/internal/modules/branches/domain"
	"rentalWs/internal/modules/realtime/application/port"
	rtdomain "rentalWs/internal/modules/realtime/domain"
)

// Service manages the rental locations.
type Service struct {
	repo      domain.Repository
	publisher port.EventPublisher
}

func NewService(repo domain.Repository, publisher port.EventPublisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

func (s *Service) Create(ctx context.Context, name, location, contactNumber string) (*domain.Branch, error) {
	branch, err := domain.NewBranch(name, location, contactNumber)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, branch); err != nil {
		return nil, err
	}
	s.publish(ctx, rtdomain.EventBranchCreated, branch.ID, map[string]any{
		"branch_id": branch.ID,
		"name":      branch.Name,
		"location":  branch.Location,
	})
	return branch, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Branch, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.Branch, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) Update(ctx context.Context, id, name, location, contactNumber string) (*domain.Branch, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	branch, err := domain.NewBranch(name, location, contactNumber)
	if err != nil {
		return nil, err
	}
	branch.ID = id
	if err := s.repo.Update(ctx, branch); err != nil {
		return nil, err
	}
	s.publish(ctx, rtdomain.EventBranchUpdated, branch.ID, map[string]any{
		"branch_id": branch.ID,
		"name":      branch.Name,
		"location":  branch.Location,
	})
	return branch, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, rtdomain.EventBranchDeleted, id, map[string]any{"branch_id": id})
	return nil
}

func (s *Service) publish(ctx context.Context, eventType rtdomain.EventType, subjectID string, payload map[string]any) {
	ev, err := rtdomain.NewEvent(eventType, subjectID, nil, rtdomain.AudienceNone, payload)
	if err != nil {
		slog.Error("branch event build failed", slog.String("eventType", string(eventType)), slog.Any("error", err))
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("branch event publish failed", slog.String("eventType", string(eventType)), slog.String("branchId", subjectID), slog.Any("error", err))
	}
}

package application

import (
	"context"
	"log/slog"

	"rentalWs/internal/modules/realtime/application/port"
	rtdomain "rentalWs/internal/modules/realtime/domain"
	"rentalWs/internal/modules/vehicles/domain"
)

// Service owns the vehicle fleet: CRUD, filtering and availability changes.
type Service struct {
	repo      domain.Repository
	publisher port.EventPublisher
}

func NewService(repo domain.Repository, publisher port.EventPublisher) *Service {
	return &Service{repo: repo, publisher: publisher}
}

func (s *Service) Create(ctx context.Context, name, model string, vehicleType domain.Type, pricePerDay float64, status domain.Status, location string) (*domain.Vehicle, error) {
	vehicle, err := domain.NewVehicle(name, model, vehicleType, pricePerDay, status, location)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, vehicle); err != nil {
		return nil, err
	}
	s.publish(ctx, rtdomain.EventVehicleCreated, vehicle.ID, map[string]any{
		"vehicle_id": vehicle.ID,
		"name":       vehicle.Name,
		"status":     string(vehicle.Status),
	})
	return vehicle, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Vehicle, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Find(ctx context.Context, filter domain.Filter) ([]*domain.Vehicle, error) {
	return s.repo.Find(ctx, filter)
}

func (s *Service) Update(ctx context.Context, id string, name, model string, vehicleType domain.Type, pricePerDay float64, status domain.Status, location string) (*domain.Vehicle, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	vehicle, err := domain.NewVehicle(name, model, vehicleType, pricePerDay, status, location)
	if err != nil {
		return nil, err
	}
	vehicle.ID = id
	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	s.publish(ctx, rtdomain.EventVehicleUpdated, vehicle.ID, map[string]any{
		"vehicle_id": vehicle.ID,
		"status":     string(vehicle.Status),
	})
	return vehicle, nil
}

// ChangeStatus flips the availability flag and announces the transition.
func (s *Service) ChangeStatus(ctx context.Context, id string, status domain.Status) error {
	if !status.Valid() {
		return domain.ErrInvalidVehicle
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.publish(ctx, rtdomain.EventVehicleStatusChanged, id, map[string]any{
		"vehicle_id": id,
		"status":     string(status),
	})
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, rtdomain.EventVehicleDeleted, id, map[string]any{"vehicle_id": id})
	return nil
}

func (s *Service) publish(ctx context.Context, eventType rtdomain.EventType, subjectID string, payload map[string]any) {
	ev, err := rtdomain.NewEvent(eventType, subjectID, nil, rtdomain.AudienceNone, payload)
	if err != nil {
		slog.Error("vehicle event build failed", slog.String("eventType", string(eventType)), slog.Any("error", err))
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("vehicle event publish failed", slog.String("eventType", string(eventType)), slog.String("vehicleId", subjectID), slog.Any("error", err))
	}
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rentalWs/internal/modules/realtime/application/port"
	rtdomain "rentalWs/internal/modules/realtime/domain"
	"rentalWs/internal/modules/rentals/domain"
	vehicles "rentalWs/internal/modules/vehicles/domain"
)

// Service implements the rental lifecycle. Every state transition is committed
// to the store first, then announced on the broker; there is no outbox, so a
// crash between the two loses the announcement (accepted limitation).
type Service struct {
	rentals   domain.Repository
	vehicles  vehicles.Repository
	publisher port.EventPublisher
}

func NewService(rentals domain.Repository, vehicleRepo vehicles.Repository, publisher port.EventPublisher) *Service {
	return &Service{rentals: rentals, vehicles: vehicleRepo, publisher: publisher}
}

// Create files a rental request for the customer. The vehicle must exist and
// be AVAILABLE; the request always starts PENDING and is announced to the
// employee audience for review.
func (s *Service) Create(ctx context.Context, customerID, vehicleID string, start, end time.Time) (*domain.Rental, error) {
	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != vehicles.StatusAvailable {
		return nil, fmt.Errorf("%w: vehicle %s is %s", domain.ErrVehicleUnavailable, vehicle.ID, vehicle.Status)
	}

	rental, err := domain.NewRental(vehicleID, customerID, start, end, vehicle.PricePerDay)
	if err != nil {
		return nil, err
	}
	if err := s.rentals.Insert(ctx, rental); err != nil {
		return nil, err
	}

	s.publish(ctx, rtdomain.EventRentalRequested, rental.ID, nil, rtdomain.AudienceEmployees, map[string]any{
		"rental_id":   rental.ID,
		"customer_id": rental.CustomerID,
		"vehicle_id":  rental.VehicleID,
		"status":      string(rental.Status),
		"total_cost":  rental.TotalCost,
	})
	return rental, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Rental, error) {
	return s.rentals.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.Rental, error) {
	return s.rentals.FindAll(ctx)
}

// HistoryForVehicle lists the vehicle's completed rentals.
func (s *Service) HistoryForVehicle(ctx context.Context, vehicleID string) ([]*domain.Rental, error) {
	return s.rentals.FindByVehicle(ctx, vehicleID, domain.StatusCompleted)
}

// UpdateStatus moves a rental through its lifecycle and applies the fleet
// side effects: approval parks the vehicle as RENTED, completion releases it
// back to AVAILABLE. The decision is pushed to the rental's customer and to
// the employee audience.
func (s *Service) UpdateStatus(ctx context.Context, rentalID string, next domain.Status) (*domain.Rental, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, next)
	}
	rental, err := s.rentals.FindByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !rental.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, rental.Status, next)
	}
	if err := s.rentals.UpdateStatus(ctx, rentalID, next); err != nil {
		return nil, err
	}
	rental.Status = next

	s.publish(ctx, statusEventType(next), rental.ID, []string{rental.CustomerID}, rtdomain.AudienceEmployees, map[string]any{
		"rental_id":  rental.ID,
		"new_status": string(next),
	})

	switch next {
	case domain.StatusApproved:
		s.changeVehicleStatus(ctx, rental.VehicleID, vehicles.StatusRented)
	case domain.StatusCompleted:
		s.changeVehicleStatus(ctx, rental.VehicleID, vehicles.StatusAvailable)
	}
	return rental, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.rentals.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, rtdomain.EventRentalDeleted, id, nil, rtdomain.AudienceNone, map[string]any{"rental_id": id})
	return nil
}

func statusEventType(status domain.Status) rtdomain.EventType {
	switch status {
	case domain.StatusApproved:
		return rtdomain.EventRentalApproved
	case domain.StatusRejected:
		return rtdomain.EventRentalRejected
	default:
		return rtdomain.EventRentalCompleted
	}
}

func (s *Service) changeVehicleStatus(ctx context.Context, vehicleID string, status vehicles.Status) {
	if err := s.vehicles.UpdateStatus(ctx, vehicleID, status); err != nil {
		slog.Error("vehicle status side effect failed", slog.String("vehicleId", vehicleID), slog.String("status", string(status)), slog.Any("error", err))
		return
	}
	s.publish(ctx, rtdomain.EventVehicleStatusChanged, vehicleID, nil, rtdomain.AudienceNone, map[string]any{
		"vehicle_id": vehicleID,
		"status":     string(status),
	})
}

// publish is log-and-continue: the store write already committed.
func (s *Service) publish(ctx context.Context, eventType rtdomain.EventType, subjectID string, targets []string, audience rtdomain.Audience, payload map[string]any) {
	ev, err := rtdomain.NewEvent(eventType, subjectID, targets, audience, payload)
	if err != nil {
		slog.Error("rental event build failed", slog.String("eventType", string(eventType)), slog.Any("error", err))
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("rental event publish failed", slog.String("eventType", string(eventType)), slog.String("subjectId", subjectID), slog.Any("error", err))
	}
}

package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	rtdomain "rentalWs/internal/modules/realtime/domain"
	"rentalWs/internal/modules/rentals/domain"
	vehicles "rentalWs/internal/modules/vehicles/domain"
)

type memoryRentals struct {
	mu      sync.Mutex
	rentals map[string]*domain.Rental
}

func newMemoryRentals() *memoryRentals {
	return &memoryRentals{rentals: make(map[string]*domain.Rental)}
}

func (r *memoryRentals) Insert(_ context.Context, rental *domain.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rentals[rental.ID] = rental
	return nil
}

func (r *memoryRentals) FindByID(_ context.Context, id string) (*domain.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rental, ok := r.rentals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *rental
	return &clone, nil
}

func (r *memoryRentals) FindAll(_ context.Context) ([]*domain.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Rental, 0, len(r.rentals))
	for _, rental := range r.rentals {
		out = append(out, rental)
	}
	return out, nil
}

func (r *memoryRentals) FindByVehicle(_ context.Context, vehicleID string, status domain.Status) ([]*domain.Rental, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Rental
	for _, rental := range r.rentals {
		if rental.VehicleID == vehicleID && rental.Status == status {
			out = append(out, rental)
		}
	}
	return out, nil
}

func (r *memoryRentals) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rental, ok := r.rentals[id]
	if !ok {
		return domain.ErrNotFound
	}
	rental.Status = status
	return nil
}

func (r *memoryRentals) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rentals[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rentals, id)
	return nil
}

type memoryVehicles struct {
	mu       sync.Mutex
	vehicles map[string]*vehicles.Vehicle
}

func newMemoryVehicles(vs ...*vehicles.Vehicle) *memoryVehicles {
	repo := &memoryVehicles{vehicles: make(map[string]*vehicles.Vehicle)}
	for _, v := range vs {
		repo.vehicles[v.ID] = v
	}
	return repo
}

func (r *memoryVehicles) Insert(_ context.Context, v *vehicles.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.ID] = v
	return nil
}

func (r *memoryVehicles) FindByID(_ context.Context, id string) (*vehicles.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, vehicles.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *memoryVehicles) Find(_ context.Context, _ vehicles.Filter) ([]*vehicles.Vehicle, error) {
	return nil, nil
}

func (r *memoryVehicles) Update(_ context.Context, v *vehicles.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.ID] = v
	return nil
}

func (r *memoryVehicles) UpdateStatus(_ context.Context, id string, status vehicles.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return vehicles.ErrNotFound
	}
	v.Status = status
	return nil
}

func (r *memoryVehicles) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.vehicles, id)
	return nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []*rtdomain.Event
}

func (p *capturingPublisher) Publish(_ context.Context, event *rtdomain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) byType(eventType rtdomain.EventType) []*rtdomain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*rtdomain.Event
	for _, ev := range p.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

func availableVehicle(t *testing.T) *vehicles.Vehicle {
	t.Helper()
	v, err := vehicles.NewVehicle("Transit", "2021", vehicles.TypeVan, 80, vehicles.StatusAvailable, "Lisbon")
	if err != nil {
		t.Fatalf("build vehicle: %v", err)
	}
	return v
}

func rentalWindow() (time.Time, time.Time) {
	start := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 2)
}

func TestCreateRentalPricesFromVehicle(t *testing.T) {
	t.Parallel()

	vehicle := availableVehicle(t)
	pub := &capturingPublisher{}
	svc := NewService(newMemoryRentals(), newMemoryVehicles(vehicle), pub)

	start, end := rentalWindow()
	rental, err := svc.Create(context.Background(), "c1", vehicle.ID, start, end)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rental.Status != domain.StatusPending {
		t.Fatalf("expected PENDING, got %s", rental.Status)
	}
	if rental.TotalCost != 160 {
		t.Fatalf("unexpected cost: %v", rental.TotalCost)
	}

	requested := pub.byType(rtdomain.EventRentalRequested)
	if len(requested) != 1 {
		t.Fatalf("expected 1 requested event, got %d", len(requested))
	}
	if requested[0].Audience != rtdomain.AudienceEmployees {
		t.Fatalf("request should notify employees, got %q", requested[0].Audience)
	}
}

func TestCreateRentalRejectsUnavailableVehicle(t *testing.T) {
	t.Parallel()

	vehicle := availableVehicle(t)
	vehicle.Status = vehicles.StatusMaintenance
	svc := NewService(newMemoryRentals(), newMemoryVehicles(vehicle), &capturingPublisher{})

	start, end := rentalWindow()
	if _, err := svc.Create(context.Background(), "c1", vehicle.ID, start, end); !errors.Is(err, domain.ErrVehicleUnavailable) {
		t.Fatalf("expected ErrVehicleUnavailable, got %v", err)
	}
}

func TestCreateRentalUnknownVehicle(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemoryRentals(), newMemoryVehicles(), &capturingPublisher{})
	start, end := rentalWindow()
	if _, err := svc.Create(context.Background(), "c1", "ghost", start, end); !errors.Is(err, vehicles.ErrNotFound) {
		t.Fatalf("expected vehicles.ErrNotFound, got %v", err)
	}
}

func TestApproveRentalMarksVehicleRented(t *testing.T) {
	t.Parallel()

	vehicle := availableVehicle(t)
	vehicleRepo := newMemoryVehicles(vehicle)
	pub := &capturingPublisher{}
	svc := NewService(newMemoryRentals(), vehicleRepo, pub)

	start, end := rentalWindow()
	rental, err := svc.Create(context.Background(), "c1", vehicle.ID, start, end)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.UpdateStatus(context.Background(), rental.ID, domain.StatusApproved)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if updated.Status != domain.StatusApproved {
		t.Fatalf("unexpected status: %s", updated.Status)
	}

	stored, err := vehicleRepo.FindByID(context.Background(), vehicle.ID)
	if err != nil {
		t.Fatalf("vehicle lookup failed: %v", err)
	}
	if stored.Status != vehicles.StatusRented {
		t.Fatalf("vehicle should be RENTED, got %s", stored.Status)
	}

	approved := pub.byType(rtdomain.EventRentalApproved)
	if len(approved) != 1 {
		t.Fatalf("expected 1 approved event, got %d", len(approved))
	}
	if len(approved[0].TargetUserIDs) != 1 || approved[0].TargetUserIDs[0] != "c1" {
		t.Fatalf("approval should target the customer, got %v", approved[0].TargetUserIDs)
	}
	if len(pub.byType(rtdomain.EventVehicleStatusChanged)) != 1 {
		t.Fatal("missing vehicle status event")
	}
}

func TestCompleteRentalReleasesVehicle(t *testing.T) {
	t.Parallel()

	vehicle := availableVehicle(t)
	vehicleRepo := newMemoryVehicles(vehicle)
	pub := &capturingPublisher{}
	svc := NewService(newMemoryRentals(), vehicleRepo, pub)

	start, end := rentalWindow()
	rental, err := svc.Create(context.Background(), "c1", vehicle.ID, start, end)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), rental.ID, domain.StatusApproved); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), rental.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	stored, err := vehicleRepo.FindByID(context.Background(), vehicle.ID)
	if err != nil {
		t.Fatalf("vehicle lookup failed: %v", err)
	}
	if stored.Status != vehicles.StatusAvailable {
		t.Fatalf("vehicle should be AVAILABLE again, got %s", stored.Status)
	}
	if len(pub.byType(rtdomain.EventVehicleStatusChanged)) != 2 {
		t.Fatal("expected a vehicle status event per transition")
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	t.Parallel()

	vehicle := availableVehicle(t)
	svc := NewService(newMemoryRentals(), newMemoryVehicles(vehicle), &capturingPublisher{})

	start, end := rentalWindow()
	rental, err := svc.Create(context.Background(), "c1", vehicle.ID, start, end)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), rental.ID, domain.StatusCompleted); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("pending -> completed: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), rental.ID, domain.Status("LOST")); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("unknown status: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), rental.ID, domain.StatusRejected); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), rental.ID, domain.StatusApproved); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("rejected -> approved: expected ErrInvalidTransition, got %v", err)
	}
}

func TestHistoryForVehicle(t *testing.T) {
	t.Parallel()

	vehicle := availableVehicle(t)
	svc := NewService(newMemoryRentals(), newMemoryVehicles(vehicle), &capturingPublisher{})

	start, end := rentalWindow()
	rental, err := svc.Create(context.Background(), "c1", vehicle.ID, start, end)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), rental.ID, domain.StatusApproved); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	history, err := svc.HistoryForVehicle(context.Background(), vehicle.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("approved rental should not be history yet, got %d", len(history))
	}

	if _, err := svc.UpdateStatus(context.Background(), rental.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	history, err = svc.HistoryForVehicle(context.Background(), vehicle.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 || history[0].ID != rental.ID {
		t.Fatalf("unexpected history: %+v", history)
	}
}

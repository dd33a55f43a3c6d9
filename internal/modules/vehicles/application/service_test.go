package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	rtdomain "rentalWs/internal/modules/realtime/domain"
	"rentalWs/internal/modules/vehicles/domain"
)

type memoryRepo struct {
	mu       sync.Mutex
	vehicles map[string]*domain.Vehicle
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{vehicles: make(map[string]*domain.Vehicle)}
}

func (r *memoryRepo) Insert(_ context.Context, v *domain.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.ID] = v
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id string) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *memoryRepo) Find(_ context.Context, filter domain.Filter) ([]*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Vehicle
	for _, v := range r.vehicles {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.Type != "" && v.Type != filter.Type {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *memoryRepo) Update(_ context.Context, v *domain.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[v.ID]; !ok {
		return domain.ErrNotFound
	}
	r.vehicles[v.ID] = v
	return nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Status = status
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[id]; !ok {
		return domain.ErrNotFound
	}
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

func (p *capturingPublisher) published() []*rtdomain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*rtdomain.Event{}, p.events...)
}

func TestCreateVehiclePublishesEvent(t *testing.T) {
	t.Parallel()

	pub := &capturingPublisher{}
	svc := NewService(newMemoryRepo(), pub)

	vehicle, err := svc.Create(context.Background(), "Corolla", "2022", domain.TypeCar, 45, "", "Porto")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if vehicle.Status != domain.StatusAvailable {
		t.Fatalf("new vehicle should default to AVAILABLE, got %s", vehicle.Status)
	}
	events := pub.published()
	if len(events) != 1 || events[0].Type != rtdomain.EventVehicleCreated {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestChangeStatusToMaintenance(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	pub := &capturingPublisher{}
	svc := NewService(repo, pub)

	vehicle, err := svc.Create(context.Background(), "Corolla", "2022", domain.TypeCar, 45, "", "Porto")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.ChangeStatus(context.Background(), vehicle.ID, domain.StatusMaintenance); err != nil {
		t.Fatalf("change status failed: %v", err)
	}
	stored, err := repo.FindByID(context.Background(), vehicle.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if stored.Status != domain.StatusMaintenance {
		t.Fatalf("expected MAINTENANCE, got %s", stored.Status)
	}

	events := pub.published()
	if len(events) != 2 || events[1].Type != rtdomain.EventVehicleStatusChanged {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[1].SubjectID != vehicle.ID {
		t.Fatalf("unexpected event subject: %s", events[1].SubjectID)
	}
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepo()
	pub := &capturingPublisher{}
	svc := NewService(repo, pub)

	vehicle, err := svc.Create(context.Background(), "Corolla", "2022", domain.TypeCar, 45, "", "Porto")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.ChangeStatus(context.Background(), vehicle.ID, domain.Status("SCRAPPED")); !errors.Is(err, domain.ErrInvalidVehicle) {
		t.Fatalf("expected ErrInvalidVehicle, got %v", err)
	}
	stored, err := repo.FindByID(context.Background(), vehicle.ID)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if stored.Status != domain.StatusAvailable {
		t.Fatalf("rejected change must not touch the vehicle, got %s", stored.Status)
	}
	if len(pub.published()) != 1 {
		t.Fatal("no status event should be published for a rejected change")
	}
}

func TestChangeStatusUnknownVehicle(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemoryRepo(), &capturingPublisher{})
	if err := svc.ChangeStatus(context.Background(), "ghost", domain.StatusRented); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateKeepsID(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemoryRepo(), &capturingPublisher{})
	vehicle, err := svc.Create(context.Background(), "Corolla", "2022", domain.TypeCar, 45, "", "Porto")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(context.Background(), vehicle.ID, "Corolla", "2023", domain.TypeCar, 50, domain.StatusMaintenance, "Porto")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ID != vehicle.ID {
		t.Fatalf("update changed the id: %s != %s", updated.ID, vehicle.ID)
	}
	if updated.PricePerDay != 50 || updated.Status != domain.StatusMaintenance {
		t.Fatalf("unexpected vehicle after update: %+v", updated)
	}
}

func TestDeleteVehiclePublishesEvent(t *testing.T) {
	t.Parallel()

	pub := &capturingPublisher{}
	svc := NewService(newMemoryRepo(), pub)
	vehicle, err := svc.Create(context.Background(), "Corolla", "2022", domain.TypeCar, 45, "", "Porto")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), vehicle.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), vehicle.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	events := pub.published()
	if len(events) != 2 || events[1].Type != rtdomain.EventVehicleDeleted {
		t.Fatalf("unexpected events: %+v", events)
	}
}

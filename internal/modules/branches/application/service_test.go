package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"rentalWs/internal/modules/branches/domain"
	rtdomain "rentalWs/internal/modules/realtime/domain"
)

type memoryRepo struct {
	mu       sync.Mutex
	branches map[string]*domain.Branch
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{branches: make(map[string]*domain.Branch)}
}

func (r *memoryRepo) Insert(_ context.Context, b *domain.Branch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.branches[b.ID] = b
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id string) (*domain.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.branches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *memoryRepo) FindAll(_ context.Context) ([]*domain.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Branch, 0, len(r.branches))
	for _, b := range r.branches {
		out = append(out, b)
	}
	return out, nil
}

func (r *memoryRepo) Update(_ context.Context, b *domain.Branch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.branches[b.ID]; !ok {
		return domain.ErrNotFound
	}
	r.branches[b.ID] = b
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.branches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.branches, id)
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

func TestCreateBranchPublishesEvent(t *testing.T) {
	t.Parallel()

	pub := &capturingPublisher{}
	svc := NewService(newMemoryRepo(), pub)

	branch, err := svc.Create(context.Background(), "Downtown", "12 Main St", "555-0101")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if branch.ID == "" {
		t.Fatal("expected generated id")
	}
	if len(pub.events) != 1 || pub.events[0].Type != rtdomain.EventBranchCreated {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

func TestCreateBranchValidates(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemoryRepo(), &capturingPublisher{})
	if _, err := svc.Create(context.Background(), " ", "12 Main St", ""); !errors.Is(err, domain.ErrInvalidBranch) {
		t.Fatalf("expected ErrInvalidBranch, got %v", err)
	}
}

func TestUpdateBranchKeepsID(t *testing.T) {
	t.Parallel()

	pub := &capturingPublisher{}
	svc := NewService(newMemoryRepo(), pub)

	branch, err := svc.Create(context.Background(), "Downtown", "12 Main St", "555-0101")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	updated, err := svc.Update(context.Background(), branch.ID, "Downtown", "99 Harbor Rd", "555-0199")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ID != branch.ID {
		t.Fatalf("update changed the id: %s != %s", updated.ID, branch.ID)
	}
	if updated.Location != "99 Harbor Rd" {
		t.Fatalf("unexpected location: %s", updated.Location)
	}
	if len(pub.events) != 2 || pub.events[1].Type != rtdomain.EventBranchUpdated {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

func TestUpdateUnknownBranch(t *testing.T) {
	t.Parallel()

	svc := NewService(newMemoryRepo(), &capturingPublisher{})
	if _, err := svc.Update(context.Background(), "ghost", "Downtown", "12 Main St", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBranch(t *testing.T) {
	t.Parallel()

	pub := &capturingPublisher{}
	svc := NewService(newMemoryRepo(), pub)

	branch, err := svc.Create(context.Background(), "Downtown", "12 Main St", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), branch.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(context.Background(), branch.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if len(pub.events) != 2 || pub.events[1].Type != rtdomain.EventBranchDeleted {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
}

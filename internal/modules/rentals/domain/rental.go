package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("rental not found")
	ErrInvalidRental      = errors.New("invalid rental")
	ErrInvalidTransition  = errors.New("invalid rental status transition")
	ErrVehicleUnavailable = errors.New("vehicle is not available for rent")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo encodes the rental lifecycle: an employee decides on a
// pending request, and only an approved rental can be completed.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected
	case StatusApproved:
		return next == StatusCompleted
	default:
		return false
	}
}

// Rental is a customer's request to rent one vehicle for a date range. New
// rentals always start PENDING; TotalCost is fixed at creation from the
// vehicle's daily price.
type Rental struct {
	ID         string
	VehicleID  string
	CustomerID string
	StartDate  time.Time
	EndDate    time.Time
	TotalCost  float64
	Status     Status
}

// NewRental validates the request and prices it: price per day times the
// number of whole days in the range.
func NewRental(vehicleID, customerID string, start, end time.Time, pricePerDay float64) (*Rental, error) {
	if vehicleID == "" || customerID == "" {
		return nil, fmt.Errorf("%w: missing vehicle or customer id", ErrInvalidRental)
	}
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: missing rental dates", ErrInvalidRental)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrInvalidRental)
	}
	r := &Rental{
		ID:         uuid.NewString(),
		VehicleID:  vehicleID,
		CustomerID: customerID,
		StartDate:  start.UTC(),
		EndDate:    end.UTC(),
		Status:     StatusPending,
	}
	r.TotalCost = pricePerDay * float64(r.Days())
	return r, nil
}

// Days reports the whole-day length of the rental window.
func (r *Rental) Days() int {
	days := int(r.EndDate.Sub(r.StartDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

type Repository interface {
	Insert(ctx context.Context, rental *Rental) error
	FindByID(ctx context.Context, id string) (*Rental, error)
	FindAll(ctx context.Context) ([]*Rental, error)
	FindByVehicle(ctx context.Context, vehicleID string, status Status) ([]*Rental, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}

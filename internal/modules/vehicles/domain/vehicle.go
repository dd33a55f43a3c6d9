package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("vehicle not found")
	ErrInvalidVehicle = errors.New("invalid vehicle")
	ErrNotAvailable   = errors.New("vehicle not available")
)

type Type string

const (
	TypeCar        Type = "CAR"
	TypeTruck      Type = "TRUCK"
	TypeSUV        Type = "SUV"
	TypeVan        Type = "VAN"
	TypeMotorcycle Type = "MOTORCYCLE"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCar, TypeTruck, TypeSUV, TypeVan, TypeMotorcycle:
		return true
	default:
		return false
	}
}

// Status tracks whether a vehicle can currently be rented.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusRented      Status = "RENTED"
	StatusMaintenance Status = "MAINTENANCE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusRented, StatusMaintenance:
		return true
	default:
		return false
	}
}

type Vehicle struct {
	ID          string
	Name        string
	Model       string
	Type        Type
	PricePerDay float64
	Status      Status
	Location    string
}

// NewVehicle validates fields and assigns a fresh id. New vehicles start
// AVAILABLE unless a status is provided.
func NewVehicle(name, model string, vehicleType Type, pricePerDay float64, status Status, location string) (*Vehicle, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: missing name or model", ErrInvalidVehicle)
	}
	if !vehicleType.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidVehicle, vehicleType)
	}
	if pricePerDay <= 0 {
		return nil, fmt.Errorf("%w: rental price per day must be positive", ErrInvalidVehicle)
	}
	if status == "" {
		status = StatusAvailable
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidVehicle, status)
	}
	return &Vehicle{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Model:       strings.TrimSpace(model),
		Type:        vehicleType,
		PricePerDay: pricePerDay,
		Status:      status,
		Location:    strings.TrimSpace(location),
	}, nil
}

// RentalCost prices a rental of the given whole-day length.
func (v *Vehicle) RentalCost(days int) float64 {
	if days < 0 {
		days = 0
	}
	return v.PricePerDay * float64(days)
}

// Filter narrows vehicle listings; nil/empty fields match everything.
type Filter struct {
	Type     Type
	MinPrice *float64
	MaxPrice *float64
	Location string
	Status   Status
}

type Repository interface {
	Insert(ctx context.Context, vehicle *Vehicle) error
	FindByID(ctx context.Context, id string) (*Vehicle, error)
	Find(ctx context.Context, filter Filter) ([]*Vehicle, error)
	Update(ctx context.Context, vehicle *Vehicle) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}

package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("branch not found")
	ErrInvalidBranch = errors.New("invalid branch")
)

// Branch is a physical rental location.
type Branch struct {
	ID            string
	Name          string
	Location      string
	ContactNumber string
}

func NewBranch(name, location, contactNumber string) (*Branch, error) {
	name = strings.TrimSpace(name)
	location = strings.TrimSpace(location)
	if name == "" || location == "" {
		return nil, fmt.Errorf("%w: missing name or location", ErrInvalidBranch)
	}
	return &Branch{
		ID:            uuid.NewString(),
		Name:          name,
		Location:      location,
		ContactNumber: strings.TrimSpace(contactNumber),
	}, nil
}

type Repository interface {
	Insert(ctx context.Context, branch *Branch) error
	FindByID(ctx context.Context, id string) (*Branch, error)
	FindAll(ctx context.Context) ([]*Branch, error)
	Update(ctx context.Context, branch *Branch) error
	Delete(ctx context.Context, id string) error
}

package customer

import (
	"context"
	"errors"
)

var (
	// ErrNameRequired signals a missing full name on create.
	ErrNameRequired = errors.New("customer: full name required")
	// ErrPhoneRequired signals a missing phone on create.
	ErrPhoneRequired = errors.New("customer: phone required")
)

// Service exposes business-level customer operations.
type Service struct {
	repo Repository
}

// NewService builds a Service using the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a customer.
func (s *Service) Create(ctx context.Context, params CreateParams) (Customer, error) {
	if params.FullName == "" {
		return Customer{}, ErrNameRequired
	}
	if params.Phone == "" {
		return Customer{}, ErrPhoneRequired
	}
	return s.repo.Create(ctx, params)
}

// GetByID returns the customer for the given identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns up to limit customers ordered by name.
func (s *Service) List(ctx context.Context, limit int) ([]Customer, error) {
	return s.repo.List(ctx, limit)
}

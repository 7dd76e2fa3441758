package broker

import (
	"context"
	"errors"
)

// ErrNameRequired signals a missing broker name on create.
var ErrNameRequired = errors.New("broker: name required")

// ProfileStore abstracts repository operations for the service.
type ProfileStore interface {
	Create(ctx context.Context, params CreateParams) (Profile, error)
	GetByID(ctx context.Context, id string) (Profile, error)
	List(ctx context.Context, limit int) ([]Profile, error)
}

// Service exposes business-level broker operations.
type Service struct {
	repo ProfileStore
}

// NewService builds a Service using the provided repository.
func NewService(repo ProfileStore) *Service {
	return &Service{repo: repo}
}

// Create registers a broker profile.
func (s *Service) Create(ctx context.Context, params CreateParams) (Profile, error) {
	if params.Name == "" {
		return Profile{}, ErrNameRequired
	}
	return s.repo.Create(ctx, params)
}

// GetByID returns the broker profile for the given identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns up to limit broker profiles.
func (s *Service) List(ctx context.Context, limit int) ([]Profile, error) {
	return s.repo.List(ctx, limit)
}

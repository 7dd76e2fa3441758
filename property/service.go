package property

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnitNoRequired signals a missing unit number on create.
	ErrUnitNoRequired = errors.New("property: unit number required")
	// ErrInvalidPrice signals a negative price.
	ErrInvalidPrice = errors.New("property: price must not be negative")
)

// Service exposes business-level property-master operations.
type Service struct {
	repo Repository
}

// NewService builds a Service using the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new sellable unit. Units always start free; only the
// allotment service moves them to allotted.
func (s *Service) Create(ctx context.Context, params CreateParams) (Unit, error) {
	if params.UnitNo == "" {
		return Unit{}, ErrUnitNoRequired
	}
	if params.Price.IsNegative() {
		return Unit{}, ErrInvalidPrice
	}
	if params.PropertyType == "" {
		params.PropertyType = TypeFlat
	}
	if !isValidType(params.PropertyType) {
		return Unit{}, fmt.Errorf("property: invalid type %q", params.PropertyType)
	}

	return s.repo.Create(ctx, params)
}

// GetByID returns the unit for the given identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Unit, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns units matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Unit, error) {
	if filters.Status != "" && filters.Status != StatusFree && filters.Status != StatusAllotted {
		return nil, fmt.Errorf("property: invalid status filter %q", filters.Status)
	}
	if filters.PropertyType != "" && !isValidType(filters.PropertyType) {
		return nil, fmt.Errorf("property: invalid type filter %q", filters.PropertyType)
	}
	return s.repo.List(ctx, filters)
}

// Update changes detail fields only. Status transitions are owned by the
// allotment service and rejected here by construction.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (Unit, error) {
	if params.UnitNo != nil && *params.UnitNo == "" {
		return Unit{}, ErrUnitNoRequired
	}
	if params.Price != nil && params.Price.IsNegative() {
		return Unit{}, ErrInvalidPrice
	}
	return s.repo.UpdateDetails(ctx, id, params)
}

func isValidType(t Type) bool {
	switch t {
	case TypePlot, TypeFlat, TypeShop:
		return true
	default:
		return false
	}
}

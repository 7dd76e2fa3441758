package allotment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"estateops/property"
)

var (
	// ErrCustomerRequired signals a missing customer id on allocate.
	ErrCustomerRequired = errors.New("allotment: customer id required")
	// ErrPropertyRequired signals a missing property id on allocate.
	ErrPropertyRequired = errors.New("allotment: property id required")
	// ErrDateRequired signals a missing allotment date on allocate.
	ErrDateRequired = errors.New("allotment: allotment date required")
)

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service guarantees that at most one active allotment exists per property
// and keeps property status synchronized with allotment existence under
// concurrent requests. It holds no in-process state between calls; every
// write runs inside exactly one transaction.
type Service struct {
	pool  TxBeginner
	store Store
}

// NewService builds the allotment service on the given pool and store.
func NewService(pool TxBeginner, store Store) *Service {
	return &Service{pool: pool, store: store}
}

// Allocate allots a free property to a customer. The property row is read
// under an exclusive lock before the status check, so two concurrent calls
// for the same property serialize: exactly one inserts, the other observes
// status allotted and fails with ErrPropertyAllotted.
func (s *Service) Allocate(ctx context.Context, params AllocateParams) (Record, error) {
	if params.CustomerID == "" {
		return Record{}, ErrCustomerRequired
	}
	if params.PropertyID == "" {
		return Record{}, ErrPropertyRequired
	}
	if params.AllotmentDate.IsZero() {
		return Record{}, ErrDateRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("allotment: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	state, err := s.store.LockProperty(ctx, tx, params.PropertyID)
	if err != nil {
		return Record{}, err
	}
	if strings.EqualFold(string(state.Status), string(property.StatusAllotted)) {
		return Record{}, ErrPropertyAllotted
	}

	rec, err := s.store.InsertRecord(ctx, tx, params)
	if err != nil {
		return Record{}, err
	}

	if err := s.store.UpdatePropertyStatus(ctx, tx, params.PropertyID, property.StatusAllotted); err != nil {
		return Record{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Record{}, fmt.Errorf("allotment: commit tx: %w", err)
	}

	return rec, nil
}

// List returns allotments matching the filters, newest allotment date first.
func (s *Service) List(ctx context.Context, filters Filters) ([]Detail, error) {
	return s.store.List(ctx, filters)
}

// GetByID returns one allotment with customer and property summaries.
func (s *Service) GetByID(ctx context.Context, allotmentID string) (Detail, error) {
	return s.store.GetByID(ctx, allotmentID)
}

// Update applies partial changes to an allotment. Changing the property is
// treated as release-old plus allocate-new inside the same transaction: both
// property rows are locked in primary-key order, the new property must be
// free, and the old one is reset to free.
func (s *Service) Update(ctx context.Context, allotmentID string, params UpdateParams) (Record, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("allotment: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.store.LockRecord(ctx, tx, allotmentID)
	if err != nil {
		return Record{}, err
	}

	if params.CustomerID != nil && *params.CustomerID != current.CustomerID {
		exists, err := s.store.CustomerExists(ctx, tx, *params.CustomerID)
		if err != nil {
			return Record{}, err
		}
		if !exists {
			return Record{}, ErrCustomerNotFound
		}
	}

	if params.PropertyID != nil && *params.PropertyID != current.PropertyID {
		if err := s.reassignProperty(ctx, tx, current.PropertyID, *params.PropertyID); err != nil {
			return Record{}, err
		}
	}

	rec, err := s.store.UpdateRecord(ctx, tx, allotmentID, params)
	if err != nil {
		return Record{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Record{}, fmt.Errorf("allotment: commit tx: %w", err)
	}

	return rec, nil
}

// reassignProperty locks old and new property rows in id order so two
// concurrent reassignments touching the same pair cannot deadlock.
func (s *Service) reassignProperty(ctx context.Context, tx pgx.Tx, oldID, newID string) error {
	first, second := oldID, newID
	if second < first {
		first, second = second, first
	}

	var newState PropertyState
	for _, id := range []string{first, second} {
		state, err := s.store.LockProperty(ctx, tx, id)
		if err != nil {
			return err
		}
		if id == newID {
			newState = state
		}
	}

	if strings.EqualFold(string(newState.Status), string(property.StatusAllotted)) {
		return ErrPropertyAllotted
	}

	if err := s.store.UpdatePropertyStatus(ctx, tx, oldID, property.StatusFree); err != nil {
		return err
	}
	return s.store.UpdatePropertyStatus(ctx, tx, newID, property.StatusAllotted)
}

// Release deletes the allotment and frees its property in one transaction.
// The record is locked first so a concurrent Update or second Release on the
// same id serializes behind this call. Returns the deleted record.
func (s *Service) Release(ctx context.Context, allotmentID string) (Record, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("allotment: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rec, err := s.store.LockRecord(ctx, tx, allotmentID)
	if err != nil {
		return Record{}, err
	}

	if err := s.store.DeleteRecord(ctx, tx, allotmentID); err != nil {
		return Record{}, err
	}

	if err := s.store.UpdatePropertyStatus(ctx, tx, rec.PropertyID, property.StatusFree); err != nil {
		return Record{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Record{}, fmt.Errorf("allotment: commit tx: %w", err)
	}

	return rec, nil
}

// CheckAvailability reports whether the property exists and, when allotted,
// which customer currently holds it. Read-only.
func (s *Service) CheckAvailability(ctx context.Context, propertyID string) (Availability, error) {
	if propertyID == "" {
		return Availability{}, ErrPropertyRequired
	}
	return s.store.PropertyWithAllotment(ctx, propertyID)
}

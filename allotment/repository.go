package allotment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"estateops/property"
)

var (
	// ErrNotFound is returned when no allotment row exists for the identifier.
	ErrNotFound = errors.New("allotment: not found")
	// ErrPropertyNotFound signals the referenced property does not exist.
	ErrPropertyNotFound = errors.New("allotment: property not found")
	// ErrCustomerNotFound signals the referenced customer does not exist.
	ErrCustomerNotFound = errors.New("allotment: customer not found")
	// ErrPropertyAllotted signals the property is already allotted.
	ErrPropertyAllotted = errors.New("allotment: property already allotted")
	// ErrCustomerReference signals a foreign-key violation on customer_id.
	ErrCustomerReference = errors.New("allotment: invalid customer reference")
	// ErrPropertyReference signals a foreign-key violation on property_id.
	ErrPropertyReference = errors.New("allotment: invalid property reference")
)

// Store defines the data access required by the allotment service. Write
// methods run inside the caller's transaction so the lock-check-write
// sequence stays atomic; read methods run against the pool directly.
type Store interface {
	LockProperty(ctx context.Context, tx pgx.Tx, propertyID string) (PropertyState, error)
	InsertRecord(ctx context.Context, tx pgx.Tx, params AllocateParams) (Record, error)
	UpdatePropertyStatus(ctx context.Context, tx pgx.Tx, propertyID string, status property.Status) error
	LockRecord(ctx context.Context, tx pgx.Tx, allotmentID string) (Record, error)
	UpdateRecord(ctx context.Context, tx pgx.Tx, allotmentID string, params UpdateParams) (Record, error)
	DeleteRecord(ctx context.Context, tx pgx.Tx, allotmentID string) error
	CustomerExists(ctx context.Context, tx pgx.Tx, customerID string) (bool, error)

	List(ctx context.Context, filters Filters) ([]Detail, error)
	GetByID(ctx context.Context, allotmentID string) (Detail, error)
	PropertyWithAllotment(ctx context.Context, propertyID string) (Availability, error)
}

// PGStore implements Store backed by PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgxpool-backed store implementation.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// LockProperty reads the property row under an exclusive row lock held until
// the transaction ends. This lock is what serializes concurrent allocations
// of the same property.
func (s *PGStore) LockProperty(ctx context.Context, tx pgx.Tx, propertyID string) (PropertyState, error) {
	const lockSQL = `
		SELECT id, status::text
		FROM properties
		WHERE id = $1
		FOR UPDATE
	`

	var state PropertyState
	if err := tx.QueryRow(ctx, lockSQL, propertyID).Scan(&state.ID, &state.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PropertyState{}, ErrPropertyNotFound
		}
		return PropertyState{}, fmt.Errorf("allotment: lock property: %w", err)
	}
	return state, nil
}

func (s *PGStore) InsertRecord(ctx context.Context, tx pgx.Tx, params AllocateParams) (Record, error) {
	const insertSQL = `
		INSERT INTO allotments (customer_id, property_id, allotment_date, remark)
		VALUES ($1, $2, $3, $4)
		RETURNING id, customer_id, property_id, allotment_date, remark, created_at, updated_at
	`

	rec, err := scanRecord(tx.QueryRow(ctx, insertSQL, params.CustomerID, params.PropertyID, params.AllotmentDate, params.Remark))
	if err != nil {
		return Record{}, mapWriteError("insert record", err)
	}
	return rec, nil
}

func (s *PGStore) UpdatePropertyStatus(ctx context.Context, tx pgx.Tx, propertyID string, status property.Status) error {
	tag, err := tx.Exec(ctx, `
		UPDATE properties
		SET status = $2::property_status, updated_at = now()
		WHERE id = $1
	`, propertyID, status)
	if err != nil {
		return fmt.Errorf("allotment: update property status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// LockRecord reads an allotment row under FOR UPDATE so release and update
// cannot race each other on the same record.
func (s *PGStore) LockRecord(ctx context.Context, tx pgx.Tx, allotmentID string) (Record, error) {
	const lockSQL = `
		SELECT id, customer_id, property_id, allotment_date, remark, created_at, updated_at
		FROM allotments
		WHERE id = $1
		FOR UPDATE
	`

	rec, err := scanRecord(tx.QueryRow(ctx, lockSQL, allotmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("allotment: lock record: %w", err)
	}
	return rec, nil
}

func (s *PGStore) UpdateRecord(ctx context.Context, tx pgx.Tx, allotmentID string, params UpdateParams) (Record, error) {
	const updateSQL = `
		UPDATE allotments
		SET customer_id    = COALESCE($2, customer_id),
		    property_id    = COALESCE($3, property_id),
		    allotment_date = COALESCE($4, allotment_date),
		    remark         = COALESCE($5, remark),
		    updated_at     = now()
		WHERE id = $1
		RETURNING id, customer_id, property_id, allotment_date, remark, created_at, updated_at
	`

	rec, err := scanRecord(tx.QueryRow(ctx, updateSQL, allotmentID, params.CustomerID, params.PropertyID, params.AllotmentDate, params.Remark))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, mapWriteError("update record", err)
	}
	return rec, nil
}

func (s *PGStore) DeleteRecord(ctx context.Context, tx pgx.Tx, allotmentID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM allotments WHERE id = $1`, allotmentID)
	if err != nil {
		return fmt.Errorf("allotment: delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) CustomerExists(ctx context.Context, tx pgx.Tx, customerID string) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, customerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("allotment: customer exists: %w", err)
	}
	return exists, nil
}

const detailColumns = `
	a.id, a.customer_id, a.property_id, a.allotment_date, a.remark, a.created_at, a.updated_at,
	c.full_name, c.phone, p.unit_no, p.property_type::text
`

func (s *PGStore) List(ctx context.Context, filters Filters) ([]Detail, error) {
	query := `
		SELECT ` + detailColumns + `
		FROM allotments a
		JOIN customers c ON c.id = a.customer_id
		JOIN properties p ON p.id = a.property_id
		WHERE 1=1
	`
	args := []any{}

	if filters.CustomerID != "" {
		args = append(args, filters.CustomerID)
		query += fmt.Sprintf(" AND a.customer_id = $%d", len(args))
	}
	if filters.PropertyID != "" {
		args = append(args, filters.PropertyID)
		query += fmt.Sprintf(" AND a.property_id = $%d", len(args))
	}
	if filters.DateFrom != nil {
		args = append(args, *filters.DateFrom)
		query += fmt.Sprintf(" AND a.allotment_date >= $%d", len(args))
	}
	if filters.DateTo != nil {
		args = append(args, *filters.DateTo)
		query += fmt.Sprintf(" AND a.allotment_date <= $%d", len(args))
	}
	query += " ORDER BY a.allotment_date DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("allotment: list: %w", err)
	}
	defer rows.Close()

	details := make([]Detail, 0, 8)
	for rows.Next() {
		detail, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("allotment: scan detail: %w", err)
		}
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("allotment: iterate details: %w", err)
	}
	return details, nil
}

func (s *PGStore) GetByID(ctx context.Context, allotmentID string) (Detail, error) {
	query := `
		SELECT ` + detailColumns + `
		FROM allotments a
		JOIN customers c ON c.id = a.customer_id
		JOIN properties p ON p.id = a.property_id
		WHERE a.id = $1
	`

	detail, err := scanDetail(s.pool.QueryRow(ctx, query, allotmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, fmt.Errorf("allotment: get by id: %w", err)
	}
	return detail, nil
}

func (s *PGStore) PropertyWithAllotment(ctx context.Context, propertyID string) (Availability, error) {
	const unitSQL = `
		SELECT id, unit_no, property_type::text, block, size_sqft, price, status::text, broker_id, created_at, updated_at
		FROM properties
		WHERE id = $1
	`

	var (
		unit     property.Unit
		brokerID *string
	)
	err := s.pool.QueryRow(ctx, unitSQL, propertyID).Scan(
		&unit.ID,
		&unit.UnitNo,
		&unit.PropertyType,
		&unit.Block,
		&unit.SizeSqft,
		&unit.Price,
		&unit.Status,
		&brokerID,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Availability{}, nil
		}
		return Availability{}, fmt.Errorf("allotment: fetch property: %w", err)
	}
	unit.BrokerID = brokerID

	avail := Availability{
		Exists:     true,
		IsAllotted: unit.Status == property.StatusAllotted,
		Property:   &unit,
	}
	if !avail.IsAllotted {
		return avail, nil
	}

	query := `
		SELECT ` + detailColumns + `
		FROM allotments a
		JOIN customers c ON c.id = a.customer_id
		JOIN properties p ON p.id = a.property_id
		WHERE a.property_id = $1
	`
	detail, err := scanDetail(s.pool.QueryRow(ctx, query, propertyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Status says allotted but no record exists; surface the state
			// without a holder rather than failing the read.
			return avail, nil
		}
		return Availability{}, fmt.Errorf("allotment: fetch holder: %w", err)
	}
	avail.Allotment = &detail
	return avail, nil
}

func mapWriteError(verb string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		if strings.Contains(pgErr.ConstraintName, "customer") {
			return ErrCustomerReference
		}
		return ErrPropertyReference
	}
	return fmt.Errorf("allotment: %s: %w", verb, err)
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec    Record
		remark *string
	)
	err := row.Scan(
		&rec.ID,
		&rec.CustomerID,
		&rec.PropertyID,
		&rec.AllotmentDate,
		&remark,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Remark = remark
	return rec, nil
}

func scanDetail(row pgx.Row) (Detail, error) {
	var (
		detail Detail
		remark *string
	)
	err := row.Scan(
		&detail.ID,
		&detail.CustomerID,
		&detail.PropertyID,
		&detail.AllotmentDate,
		&remark,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.CustomerName,
		&detail.CustomerPhone,
		&detail.UnitNo,
		&detail.PropertyType,
	)
	if err != nil {
		return Detail{}, err
	}
	detail.Remark = remark
	return detail, nil
}

package property

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the requested property does not exist.
	ErrNotFound = errors.New("property: not found")
	// ErrDuplicateUnit signals another property already uses the unit number.
	ErrDuplicateUnit = errors.New("property: unit number already exists")
	// ErrBrokerReference signals the broker id does not reference a broker row.
	ErrBrokerReference = errors.New("property: invalid broker reference")
)

// Repository defines the data access required by the property service.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Unit, error)
	GetByID(ctx context.Context, id string) (Unit, error)
	List(ctx context.Context, filters ListFilters) ([]Unit, error)
	UpdateDetails(ctx context.Context, id string, params UpdateParams) (Unit, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const unitColumns = `id, unit_no, property_type::text, block, size_sqft, price, status::text, broker_id, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Unit, error) {
	insertSQL := `
		INSERT INTO properties (unit_no, property_type, block, size_sqft, price, broker_id)
		VALUES ($1, $2::property_type, $3, $4, $5, $6)
		RETURNING ` + unitColumns

	unit, err := scanUnit(r.pool.QueryRow(ctx, insertSQL,
		params.UnitNo,
		params.PropertyType,
		params.Block,
		params.SizeSqft,
		params.Price,
		params.BrokerID,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Unit{}, ErrDuplicateUnit
			case "23503":
				return Unit{}, ErrBrokerReference
			}
		}
		return Unit{}, fmt.Errorf("property: create: %w", err)
	}
	return unit, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Unit, error) {
	selectSQL := `SELECT ` + unitColumns + ` FROM properties WHERE id = $1`

	unit, err := scanUnit(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Unit{}, ErrNotFound
		}
		return Unit{}, fmt.Errorf("property: get by id: %w", err)
	}
	return unit, nil
}

func (r *PGRepository) List(ctx context.Context, filters ListFilters) ([]Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM properties WHERE 1=1`
	args := []any{}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d::property_status", len(args))
	}
	if filters.PropertyType != "" {
		args = append(args, filters.PropertyType)
		query += fmt.Sprintf(" AND property_type = $%d::property_type", len(args))
	}
	if filters.Block != "" {
		args = append(args, filters.Block)
		query += fmt.Sprintf(" AND block = $%d", len(args))
	}
	query += " ORDER BY unit_no ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("property: list: %w", err)
	}
	defer rows.Close()

	units := make([]Unit, 0, 16)
	for rows.Next() {
		unit, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("property: scan unit: %w", err)
		}
		units = append(units, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("property: iterate units: %w", err)
	}
	return units, nil
}

func (r *PGRepository) UpdateDetails(ctx context.Context, id string, params UpdateParams) (Unit, error) {
	updateSQL := `
		UPDATE properties
		SET unit_no   = COALESCE($2, unit_no),
		    block     = COALESCE($3, block),
		    size_sqft = COALESCE($4, size_sqft),
		    price     = COALESCE($5, price),
		    broker_id = COALESCE($6, broker_id),
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + unitColumns

	unit, err := scanUnit(r.pool.QueryRow(ctx, updateSQL,
		id,
		params.UnitNo,
		params.Block,
		params.SizeSqft,
		params.Price,
		params.BrokerID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Unit{}, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Unit{}, ErrDuplicateUnit
			case "23503":
				return Unit{}, ErrBrokerReference
			}
		}
		return Unit{}, fmt.Errorf("property: update details: %w", err)
	}
	return unit, nil
}

func scanUnit(row pgx.Row) (Unit, error) {
	var (
		unit     Unit
		brokerID *string
	)
	err := row.Scan(
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
		return Unit{}, err
	}
	unit.BrokerID = brokerID
	return unit, nil
}

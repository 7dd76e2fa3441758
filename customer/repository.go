package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the requested customer does not exist.
	ErrNotFound = errors.New("customer: not found")
	// ErrDuplicatePhone signals the phone number is already registered.
	ErrDuplicatePhone = errors.New("customer: phone already exists")
)

// Repository handles data access for customers.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	List(ctx context.Context, limit int) ([]Customer, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Customer, error) {
	const insertSQL = `
		INSERT INTO customers (full_name, phone, email, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, full_name, phone, email, address, created_at, updated_at
	`

	cust, err := scanCustomer(r.pool.QueryRow(ctx, insertSQL, params.FullName, params.Phone, params.Email, params.Address))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Customer{}, ErrDuplicatePhone
		}
		return Customer{}, fmt.Errorf("customer: create: %w", err)
	}
	return cust, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Customer, error) {
	const selectSQL = `
		SELECT id, full_name, phone, email, address, created_at, updated_at
		FROM customers
		WHERE id = $1
	`

	cust, err := scanCustomer(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, fmt.Errorf("customer: get by id: %w", err)
	}
	return cust, nil
}

func (r *PGRepository) List(ctx context.Context, limit int) ([]Customer, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	const query = `
		SELECT id, full_name, phone, email, address, created_at, updated_at
		FROM customers
		ORDER BY full_name ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("customer: list: %w", err)
	}
	defer rows.Close()

	customers := make([]Customer, 0, limit)
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("customer: scan: %w", err)
		}
		customers = append(customers, cust)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("customer: iterate: %w", err)
	}
	return customers, nil
}

func (r *PGRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("customer: exists: %w", err)
	}
	return exists, nil
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var (
		cust    Customer
		email   *string
		address *string
	)
	err := row.Scan(
		&cust.ID,
		&cust.FullName,
		&cust.Phone,
		&email,
		&address,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		return Customer{}, err
	}
	cust.Email = email
	cust.Address = address
	return cust, nil
}

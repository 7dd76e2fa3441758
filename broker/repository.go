package broker

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the requested broker does not exist.
	ErrNotFound = errors.New("broker: not found")
	// ErrDuplicateLicense signals the license number is already registered.
	ErrDuplicateLicense = errors.New("broker: license already exists")
)

// Repository provides access to broker profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create registers a broker profile.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Profile, error) {
	const insertSQL = `
		INSERT INTO brokers (name, license_no, phone)
		VALUES ($1, $2, $3)
		RETURNING id, name, license_no, phone, active, created_at
	`

	profile, err := scanProfile(r.pool.QueryRow(ctx, insertSQL, params.Name, params.LicenseNo, params.Phone))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Profile{}, ErrDuplicateLicense
		}
		return Profile{}, fmt.Errorf("broker: create: %w", err)
	}
	return profile, nil
}

// GetByID fetches a broker profile by its primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (Profile, error) {
	const query = `
		SELECT id, name, license_no, phone, active, created_at
		FROM brokers
		WHERE id = $1
	`

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("broker: query by id: %w", err)
	}
	return profile, nil
}

// List fetches up to limit broker profiles ordered by name.
func (r *Repository) List(ctx context.Context, limit int) ([]Profile, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	const query = `
		SELECT id, name, license_no, phone, active, created_at
		FROM brokers
		ORDER BY name ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("broker: list: %w", err)
	}
	defer rows.Close()

	profiles := make([]Profile, 0, limit)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("broker: scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("broker: iterate profiles: %w", err)
	}

	return profiles, nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var (
		profile Profile
		phone   *string
	)
	err := row.Scan(
		&profile.ID,
		&profile.Name,
		&profile.LicenseNo,
		&phone,
		&profile.Active,
		&profile.CreatedAt,
	)
	if err != nil {
		return Profile{}, err
	}
	profile.Phone = phone
	return profile, nil
}

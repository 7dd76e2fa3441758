package installment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrPlanNotFound signals the requested plan does not exist.
	ErrPlanNotFound = errors.New("installment: plan not found")
	// ErrAllotmentNotFound signals the ledger target allotment does not exist.
	ErrAllotmentNotFound = errors.New("installment: allotment not found")
	// ErrDuplicateReceipt signals a receipt number collision.
	ErrDuplicateReceipt = errors.New("installment: duplicate receipt number")
)

// Repository handles data access for plans and ledger entries.
type Repository interface {
	CreatePlan(ctx context.Context, params CreatePlanParams) (Plan, error)
	GetPlanByID(ctx context.Context, id string) (Plan, error)
	ListPlans(ctx context.Context) ([]Plan, error)
	PostEntry(ctx context.Context, receiptNo string, params PostParams) (Entry, error)
	EntriesForAllotment(ctx context.Context, allotmentID string) ([]Entry, error)
	PropertyPriceForAllotment(ctx context.Context, allotmentID string) (decimal.Decimal, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) CreatePlan(ctx context.Context, params CreatePlanParams) (Plan, error) {
	const insertSQL = `
		INSERT INTO installment_plans (name, months, down_payment_pct, markup_pct)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, months, down_payment_pct, markup_pct, created_at
	`

	var plan Plan
	err := r.pool.QueryRow(ctx, insertSQL, params.Name, params.Months, params.DownPaymentPct, params.MarkupPct).
		Scan(&plan.ID, &plan.Name, &plan.Months, &plan.DownPaymentPct, &plan.MarkupPct, &plan.CreatedAt)
	if err != nil {
		return Plan{}, fmt.Errorf("installment: create plan: %w", err)
	}
	return plan, nil
}

func (r *PGRepository) GetPlanByID(ctx context.Context, id string) (Plan, error) {
	const query = `
		SELECT id, name, months, down_payment_pct, markup_pct, created_at
		FROM installment_plans
		WHERE id = $1
	`

	var plan Plan
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&plan.ID, &plan.Name, &plan.Months, &plan.DownPaymentPct, &plan.MarkupPct, &plan.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Plan{}, ErrPlanNotFound
		}
		return Plan{}, fmt.Errorf("installment: get plan: %w", err)
	}
	return plan, nil
}

func (r *PGRepository) ListPlans(ctx context.Context) ([]Plan, error) {
	const query = `
		SELECT id, name, months, down_payment_pct, markup_pct, created_at
		FROM installment_plans
		ORDER BY months ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("installment: list plans: %w", err)
	}
	defer rows.Close()

	plans := make([]Plan, 0, 8)
	for rows.Next() {
		var plan Plan
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.Months, &plan.DownPaymentPct, &plan.MarkupPct, &plan.CreatedAt); err != nil {
			return nil, fmt.Errorf("installment: scan plan: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("installment: iterate plans: %w", err)
	}
	return plans, nil
}

func (r *PGRepository) PostEntry(ctx context.Context, receiptNo string, params PostParams) (Entry, error) {
	const insertSQL = `
		INSERT INTO ledger_entries (allotment_id, receipt_no, amount, method, paid_on)
		VALUES ($1, $2, $3, $4::payment_method, $5)
		RETURNING id, allotment_id, receipt_no, amount, method::text, paid_on, created_at
	`

	var entry Entry
	err := r.pool.QueryRow(ctx, insertSQL, params.AllotmentID, receiptNo, params.Amount, params.Method, params.PaidOn).
		Scan(&entry.ID, &entry.AllotmentID, &entry.ReceiptNo, &entry.Amount, &entry.Method, &entry.PaidOn, &entry.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23503":
				return Entry{}, ErrAllotmentNotFound
			case "23505":
				return Entry{}, ErrDuplicateReceipt
			}
		}
		return Entry{}, fmt.Errorf("installment: post entry: %w", err)
	}
	return entry, nil
}

func (r *PGRepository) EntriesForAllotment(ctx context.Context, allotmentID string) ([]Entry, error) {
	const query = `
		SELECT id, allotment_id, receipt_no, amount, method::text, paid_on, created_at
		FROM ledger_entries
		WHERE allotment_id = $1
		ORDER BY paid_on ASC, created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, allotmentID)
	if err != nil {
		return nil, fmt.Errorf("installment: list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, 8)
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.AllotmentID, &entry.ReceiptNo, &entry.Amount, &entry.Method, &entry.PaidOn, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("installment: scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("installment: iterate entries: %w", err)
	}
	return entries, nil
}

func (r *PGRepository) PropertyPriceForAllotment(ctx context.Context, allotmentID string) (decimal.Decimal, error) {
	const query = `
		SELECT p.price
		FROM allotments a
		JOIN properties p ON p.id = a.property_id
		WHERE a.id = $1
	`

	var price decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, allotmentID).Scan(&price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, ErrAllotmentNotFound
		}
		return decimal.Decimal{}, fmt.Errorf("installment: fetch price: %w", err)
	}
	return price, nil
}

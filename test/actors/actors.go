package actors

import (
	"context"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"estateops/allotment"
	"estateops/installment"
)

// Allocator hammers Allocate with random customer/property pairs. Under
// contention most calls lose with a conflict; the oracles verify that the
// winners never overlap.
func Allocator(ctx context.Context, svc *allotment.Service, customerIDs, propertyIDs []string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		_, _ = svc.Allocate(ctx, allotment.AllocateParams{
			CustomerID:    customerIDs[rand.Intn(len(customerIDs))],
			PropertyID:    propertyIDs[rand.Intn(len(propertyIDs))],
			AllotmentDate: time.Now().UTC(),
		})
		time.Sleep(time.Duration(10+rand.Intn(20)) * time.Millisecond)
	}
}

// Releaser picks a random active allotment and releases it, racing against
// allocators and reassigners on the same rows.
func Releaser(ctx context.Context, svc *allotment.Service, pool *pgxpool.Pool, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		var id string
		if err := pool.QueryRow(ctx, `SELECT id FROM allotments ORDER BY random() LIMIT 1`).Scan(&id); err == nil {
			_, _ = svc.Release(ctx, id)
		}
		time.Sleep(time.Duration(30+rand.Intn(50)) * time.Millisecond)
	}
}

// Reassigner moves a random allotment onto another property. The service must
// free the old unit and claim the new one atomically or fail cleanly.
func Reassigner(ctx context.Context, svc *allotment.Service, pool *pgxpool.Pool, propertyIDs []string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		var id string
		if err := pool.QueryRow(ctx, `SELECT id FROM allotments ORDER BY random() LIMIT 1`).Scan(&id); err == nil {
			target := propertyIDs[rand.Intn(len(propertyIDs))]
			_, _ = svc.Update(ctx, id, allotment.UpdateParams{PropertyID: &target})
		}
		time.Sleep(time.Duration(40+rand.Intn(60)) * time.Millisecond)
	}
}

// LedgerPoster posts small payments against random allotments. Posting against
// a just-released allotment must fail cleanly, never orphan a ledger row.
func LedgerPoster(ctx context.Context, svc *installment.Service, pool *pgxpool.Pool, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		var id string
		if err := pool.QueryRow(ctx, `SELECT id FROM allotments ORDER BY random() LIMIT 1`).Scan(&id); err == nil {
			_, _ = svc.Post(ctx, installment.PostParams{
				AllotmentID: id,
				Amount:      decimal.NewFromInt(int64(100 + rand.Intn(900))),
				PaidOn:      time.Now().UTC(),
			})
		}
		time.Sleep(time.Duration(50+rand.Intn(80)) * time.Millisecond)
	}
}

// AvailabilityReader keeps the read path hot while writers churn.
func AvailabilityReader(ctx context.Context, svc *allotment.Service, propertyIDs []string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		_, _ = svc.CheckAvailability(ctx, propertyIDs[rand.Intn(len(propertyIDs))])
		time.Sleep(time.Duration(15+rand.Intn(30)) * time.Millisecond)
	}
}

package allotment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"estateops/property"
)

// TestAllotment_Integration connects to a real PostgreSQL via DATABASE_URL and
// verifies the end-to-end store + service behavior, including the exclusivity
// guarantee under concurrent allocation attempts.
func TestAllotment_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is empty; set it to a live PostgreSQL to run integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	defer pool.Close()

	for _, tbl := range []string{"customers", "properties", "allotments"} {
		if !tableExists(ctx, t, pool, tbl) {
			t.Skipf("table %s missing; apply migrations first", tbl)
		}
	}

	var (
		customerID string
		propertyID string
	)

	if err := pool.QueryRow(ctx, `INSERT INTO customers (full_name, phone) VALUES ($1, $2) RETURNING id`,
		"Integration Customer", fmt.Sprintf("0300-%d", time.Now().UnixNano()%10000000)).Scan(&customerID); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	if err := pool.QueryRow(ctx, `INSERT INTO properties (unit_no, property_type, block, size_sqft, price) VALUES ($1, 'flat', 'A', 1200, 2500000) RETURNING id`,
		fmt.Sprintf("IT-%d", time.Now().UnixNano())).Scan(&propertyID); err != nil {
		t.Fatalf("seed property: %v", err)
	}

	t.Cleanup(func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel2()
		pool.Exec(ctx2, `DELETE FROM allotments WHERE property_id = $1`, propertyID)
		pool.Exec(ctx2, `DELETE FROM properties WHERE id = $1`, propertyID)
		pool.Exec(ctx2, `DELETE FROM customers WHERE id = $1`, customerID)
	})

	svc := NewService(pool, NewStore(pool))
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Concurrency: eight simultaneous allocations, exactly one winner.
	var wins, conflicts atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := svc.Allocate(gctx, AllocateParams{
				CustomerID:    customerID,
				PropertyID:    propertyID,
				AllotmentDate: date,
			})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrPropertyAllotted):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent allocate: %v", err)
	}
	if wins.Load() != 1 || conflicts.Load() != 7 {
		t.Fatalf("expected 1 winner and 7 conflicts, got %d/%d", wins.Load(), conflicts.Load())
	}

	var recordCount int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM allotments WHERE property_id = $1`, propertyID).Scan(&recordCount); err != nil {
		t.Fatalf("count records: %v", err)
	}
	if recordCount != 1 {
		t.Fatalf("expected exactly one allotment row, got %d", recordCount)
	}

	var status string
	if err := pool.QueryRow(ctx, `SELECT status::text FROM properties WHERE id = $1`, propertyID).Scan(&status); err != nil {
		t.Fatalf("check status: %v", err)
	}
	if status != string(property.StatusAllotted) {
		t.Fatalf("expected property allotted, got %s", status)
	}

	// Availability reflects the holder.
	avail, err := svc.CheckAvailability(ctx, propertyID)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !avail.Exists || !avail.IsAllotted || avail.Allotment == nil {
		t.Fatalf("unexpected availability: %+v", avail)
	}
	if avail.Allotment.CustomerID != customerID {
		t.Fatalf("expected holder %s, got %s", customerID, avail.Allotment.CustomerID)
	}

	// Repeated reads with no writes in between are identical.
	first, err := svc.GetByID(ctx, avail.Allotment.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := svc.GetByID(ctx, avail.Allotment.ID)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical reads, got %+v vs %+v", first, second)
	}

	// Round trip: release frees the property and a fresh allocate succeeds.
	released, err := svc.Release(ctx, avail.Allotment.ID)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.PropertyID != propertyID {
		t.Fatalf("expected released record for property, got %+v", released)
	}
	if err := pool.QueryRow(ctx, `SELECT status::text FROM properties WHERE id = $1`, propertyID).Scan(&status); err != nil {
		t.Fatalf("check status: %v", err)
	}
	if status != string(property.StatusFree) {
		t.Fatalf("expected property free after release, got %s", status)
	}
	if _, err := svc.GetByID(ctx, released.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after release, got %v", err)
	}
	if _, err := svc.Allocate(ctx, AllocateParams{
		CustomerID:    customerID,
		PropertyID:    propertyID,
		AllotmentDate: date,
	}); err != nil {
		t.Fatalf("re-allocate after release: %v", err)
	}
}

func tableExists(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name string) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)`, name).Scan(&exists)
	if err != nil {
		t.Fatalf("check table %s: %v", name, err)
	}
	return exists
}

package test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"estateops/allotment"
	"estateops/installment"
	"estateops/test/actors"
	"estateops/test/chaos"
	"estateops/test/infra"
	"estateops/test/oracles"
)

var (
	flDuration    = flag.Duration("duration", 90*time.Second, "how long to run stress")
	flConcurrency = flag.Int("concurrency", 8, "number of concurrent allocators")
	flSeed        = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flDSN         = flag.String("dsn", "", "existing Postgres DSN to reuse (avoids Docker)")
)

func TestAllotmentConcurrency(t *testing.T) {
	flag.Parse()
	seed := *flSeed
	rand.Seed(seed)

	var (
		pgC        *infra.PGContainer
		dsn        string
		err        error
		usedShared bool
	)
	ctx, cancel := context.WithTimeout(context.Background(), *flDuration+60*time.Second)
	defer cancel()

	switch {
	case *flDSN != "":
		dsn = *flDSN
		usedShared = true
		pgC = &infra.PGContainer{}
	case os.Getenv("ESTATEOPS_STRESS_PG_DSN") != "":
		dsn = os.Getenv("ESTATEOPS_STRESS_PG_DSN")
		usedShared = true
		pgC = &infra.PGContainer{}
	default:
		if dockerAvailable(ctx) {
			pgC, dsn, err = infra.StartPostgres16(ctx, "")
			if err != nil {
				t.Fatalf("start postgres: %v", err)
			}
		} else {
			dsn, err = infra.InitLocalDatabase(ctx)
			if err != nil {
				t.Fatalf("init local database: %v", err)
			}
			pgC = &infra.PGContainer{}
		}
	}
	defer pgC.Terminate(context.Background())

	pool, teardown, err := infra.ApplyMigrations(ctx, dsn, usedShared)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	defer pool.Close()
	defer func() {
		if err := teardown(context.Background()); err != nil {
			t.Logf("teardown warning: %v", err)
		}
	}()

	customerIDs, propertyIDs := mustSeed(t, ctx, pool)

	allotSvc := allotment.NewService(pool, allotment.NewStore(pool))
	ledgerSvc := installment.NewService(installment.NewRepository(pool))

	g, ctx2 := errgroup.WithContext(ctx)
	stop := make(chan struct{})

	for i := 0; i < *flConcurrency; i++ {
		g.Go(func() error { return actors.Allocator(ctx2, allotSvc, customerIDs, propertyIDs, stop) })
	}
	g.Go(func() error { return actors.Releaser(ctx2, allotSvc, pool, stop) })
	g.Go(func() error { return actors.Reassigner(ctx2, allotSvc, pool, propertyIDs, stop) })
	g.Go(func() error { return actors.LedgerPoster(ctx2, ledgerSvc, pool, stop) })
	g.Go(func() error { return actors.AvailabilityReader(ctx2, allotSvc, propertyIDs, stop) })
	go chaos.TerminateRandomBackend(ctx2, pool, stop)

	deadline := time.Now().Add(*flDuration)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	var failed bool
loop:
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			name, row, err := oracles.Run(ctx2, pool)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					break loop
				}
				// A terminated backend can fail the oracle query itself.
				t.Logf("oracle query error (retrying): %v", err)
				continue
			}
			if name != "" {
				failed = true
				dumpRecent(t, ctx2, pool)
				t.Fatalf("Oracle %s failed. First row: %s (seed=%d)", name, row, seed)
			}
		}
	}

	close(stop)
	if err := g.Wait(); err != nil && !failed {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("actors errored: %v", err)
		}
	}
}

func dockerAvailable(ctx context.Context) bool {
	if _, err := exec.LookPath("docker"); err != nil {
		return false
	}
	c := exec.CommandContext(ctx, "docker", "info")
	c.Stdout = io.Discard
	c.Stderr = io.Discard
	return c.Run() == nil
}

func mustSeed(t *testing.T, ctx context.Context, pool *pgxpool.Pool) (customerIDs, propertyIDs []string) {
	t.Helper()

	for i := 0; i < 4; i++ {
		var id string
		err := pool.QueryRow(ctx,
			`INSERT INTO customers (full_name, phone) VALUES ($1, $2) RETURNING id`,
			fmt.Sprintf("Stress Customer %d", i),
			fmt.Sprintf("0300-%07d", rand.Intn(10000000)),
		).Scan(&id)
		if err != nil {
			t.Fatalf("seed customer: %v", err)
		}
		customerIDs = append(customerIDs, id)
	}

	for i := 0; i < 6; i++ {
		var id string
		err := pool.QueryRow(ctx,
			`INSERT INTO properties (unit_no, property_type, block, size_sqft, price)
             VALUES ($1, 'flat', 'A', 1200, $2) RETURNING id`,
			fmt.Sprintf("ST-%d-%d", i, rand.Int63()),
			decimal.NewFromInt(int64(1000000+i*50000)),
		).Scan(&id)
		if err != nil {
			t.Fatalf("seed property: %v", err)
		}
		propertyIDs = append(propertyIDs, id)
	}

	return customerIDs, propertyIDs
}

func dumpRecent(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	type dump struct {
		name string
		sql  string
	}
	dumps := []dump{
		{"allotments", `SELECT id, customer_id, property_id, allotment_date, created_at FROM allotments ORDER BY created_at DESC LIMIT 50`},
		{"properties", `SELECT id, unit_no, status, updated_at FROM properties ORDER BY updated_at DESC LIMIT 50`},
		{"ledger_entries", `SELECT id, allotment_id, receipt_no, amount, created_at FROM ledger_entries ORDER BY created_at DESC LIMIT 50`},
	}
	for _, d := range dumps {
		rows, err := pool.Query(ctx, d.sql)
		if err != nil {
			t.Logf("dump %s error: %v", d.name, err)
			continue
		}
		cols := rows.FieldDescriptions()
		t.Logf("-- %s --", d.name)
		for rows.Next() {
			vals, _ := rows.Values()
			buf := make([]any, 0, len(vals))
			for i := range vals {
				buf = append(buf, fmt.Sprintf("%s=%v", string(cols[i].Name), vals[i]))
			}
			t.Logf("%s", buf)
		}
		rows.Close()
	}
}

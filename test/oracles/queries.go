package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

// All returns the invariant checks run against committed state while the
// actors churn. Any returned row is a violation.
func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_exclusive_allotment",
			SQL: `SELECT property_id, COUNT(*) FROM allotments
                  GROUP BY property_id HAVING COUNT(*) > 1`,
		},
		{
			Name: "O2_status_matches_record",
			SQL: `SELECT p.id, p.status FROM properties p
                  LEFT JOIN allotments a ON a.property_id = p.id
                  WHERE (p.status = 'allotted') <> (a.id IS NOT NULL)`,
		},
		{
			Name: "O3_ledger_targets_live_allotment",
			SQL: `SELECT l.id FROM ledger_entries l
                  LEFT JOIN allotments a ON a.id = l.allotment_id
                  WHERE a.id IS NULL`,
		},
		{
			Name: "O4_receipt_unique",
			SQL: `SELECT receipt_no, COUNT(*) FROM ledger_entries
                  GROUP BY receipt_no HAVING COUNT(*) > 1`,
		},
		{
			Name: "O5_ledger_positive_amounts",
			SQL:  `SELECT id, amount FROM ledger_entries WHERE amount <= 0`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and a sample
// row) or an empty name when everything holds.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		if rows.Next() {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}

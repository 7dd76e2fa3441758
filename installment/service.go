package installment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidMonths signals a plan with a non-positive month count.
	ErrInvalidMonths = errors.New("installment: months must be positive")
	// ErrInvalidPct signals a percentage outside [0, 100].
	ErrInvalidPct = errors.New("installment: percentage must be between 0 and 100")
	// ErrInvalidAmount signals a non-positive payment amount.
	ErrInvalidAmount = errors.New("installment: amount must be positive")
)

var hundred = decimal.NewFromInt(100)

// Service exposes plan-master and customer-ledger operations.
type Service struct {
	repo      Repository
	receiptNo func() string
}

// NewService builds a Service using the provided repository.
func NewService(repo Repository) *Service {
	return &Service{
		repo:      repo,
		receiptNo: func() string { return "RCPT-" + uuid.NewString() },
	}
}

// CreatePlan registers an installment-plan master.
func (s *Service) CreatePlan(ctx context.Context, params CreatePlanParams) (Plan, error) {
	if params.Name == "" {
		return Plan{}, fmt.Errorf("installment: plan name required")
	}
	if params.Months <= 0 {
		return Plan{}, ErrInvalidMonths
	}
	if !validPct(params.DownPaymentPct) || !validPct(params.MarkupPct) {
		return Plan{}, ErrInvalidPct
	}
	return s.repo.CreatePlan(ctx, params)
}

// GetPlanByID returns the plan for the given identifier.
func (s *Service) GetPlanByID(ctx context.Context, id string) (Plan, error) {
	return s.repo.GetPlanByID(ctx, id)
}

// ListPlans returns all plan masters ordered by tenure.
func (s *Service) ListPlans(ctx context.Context) ([]Plan, error) {
	return s.repo.ListPlans(ctx)
}

// Post records a payment against an allotment and assigns a receipt number.
func (s *Service) Post(ctx context.Context, params PostParams) (Entry, error) {
	if params.AllotmentID == "" {
		return Entry{}, fmt.Errorf("installment: allotment id required")
	}
	if !params.Amount.IsPositive() {
		return Entry{}, ErrInvalidAmount
	}
	if params.Method == "" {
		params.Method = MethodCash
	}
	if params.PaidOn.IsZero() {
		params.PaidOn = time.Now().UTC()
	}
	if !validMethod(params.Method) {
		return Entry{}, fmt.Errorf("installment: invalid method %q", params.Method)
	}
	return s.repo.PostEntry(ctx, s.receiptNo(), params)
}

// Statement returns all ledger entries for an allotment plus computed totals.
func (s *Service) Statement(ctx context.Context, allotmentID string) (Statement, error) {
	price, err := s.repo.PropertyPriceForAllotment(ctx, allotmentID)
	if err != nil {
		return Statement{}, err
	}

	entries, err := s.repo.EntriesForAllotment(ctx, allotmentID)
	if err != nil {
		return Statement{}, err
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}

	return Statement{
		AllotmentID:   allotmentID,
		PropertyPrice: price,
		TotalPaid:     total,
		Balance:       price.Sub(total),
		Entries:       entries,
	}, nil
}

// Schedule splits a price into a down payment plus equal monthly
// installments with markup applied to the financed portion. The final line
// absorbs rounding so the lines always sum to the exact payable amount.
func Schedule(price decimal.Decimal, plan Plan) ([]ScheduleLine, error) {
	if plan.Months <= 0 {
		return nil, ErrInvalidMonths
	}
	if price.IsNegative() {
		return nil, ErrInvalidAmount
	}

	down := price.Mul(plan.DownPaymentPct).Div(hundred).Round(2)
	financed := price.Sub(down)
	payable := financed.Mul(hundred.Add(plan.MarkupPct)).Div(hundred).Round(2)

	months := int64(plan.Months)
	monthly := payable.Div(decimal.NewFromInt(months)).Round(2)
	last := payable.Sub(monthly.Mul(decimal.NewFromInt(months - 1)))

	lines := make([]ScheduleLine, 0, plan.Months+1)
	lines = append(lines, ScheduleLine{Sequence: 0, DueLabel: "down payment", Amount: down})
	for i := 1; i < plan.Months; i++ {
		lines = append(lines, ScheduleLine{Sequence: i, DueLabel: fmt.Sprintf("month %d", i), Amount: monthly})
	}
	lines = append(lines, ScheduleLine{Sequence: plan.Months, DueLabel: fmt.Sprintf("month %d", plan.Months), Amount: last})

	return lines, nil
}

func validPct(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

func validMethod(m Method) bool {
	switch m {
	case MethodCash, MethodBank, MethodOnline:
		return true
	default:
		return false
	}
}

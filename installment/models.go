package installment

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is an installment-plan master: how a property price is split into a
// down payment and monthly installments with markup.
type Plan struct {
	ID             string
	Name           string
	Months         int
	DownPaymentPct decimal.Decimal
	MarkupPct      decimal.Decimal
	CreatedAt      time.Time
}

// CreatePlanParams contains write parameters for a plan master.
type CreatePlanParams struct {
	Name           string
	Months         int
	DownPaymentPct decimal.Decimal
	MarkupPct      decimal.Decimal
}

// Method enumerates accepted payment channels.
type Method string

const (
	MethodCash   Method = "cash"
	MethodBank   Method = "bank"
	MethodOnline Method = "online"
)

// Entry is one customer-ledger line: a payment posted against an allotment.
type Entry struct {
	ID          string
	AllotmentID string
	ReceiptNo   string
	Amount      decimal.Decimal
	Method      Method
	PaidOn      time.Time
	CreatedAt   time.Time
}

// PostParams contains write parameters for a ledger entry. ReceiptNo is
// generated by the service.
type PostParams struct {
	AllotmentID string
	Amount      decimal.Decimal
	Method      Method
	PaidOn      time.Time
}

// Statement is the computed customer ledger for one allotment.
type Statement struct {
	AllotmentID   string
	PropertyPrice decimal.Decimal
	TotalPaid     decimal.Decimal
	Balance       decimal.Decimal
	Entries       []Entry
}

// ScheduleLine is one row of a computed payment schedule.
type ScheduleLine struct {
	Sequence int
	DueLabel string
	Amount   decimal.Decimal
}

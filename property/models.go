package property

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the allocation states of a property unit. The canonical
// spelling is "allotted" everywhere, in SQL and in Go.
type Status string

const (
	StatusFree     Status = "free"
	StatusAllotted Status = "allotted"
)

// Type enumerates the unit kinds the marketing site sells.
type Type string

const (
	TypePlot Type = "plot"
	TypeFlat Type = "flat"
	TypeShop Type = "shop"
)

// Unit is the domain representation of a sellable property. It mirrors the
// properties table and carries no JSON annotations so it can be reused by
// different presentation layers.
type Unit struct {
	ID           string
	UnitNo       string
	PropertyType Type
	Block        string
	SizeSqft     float64
	Price        decimal.Decimal
	Status       Status
	BrokerID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateParams contains write parameters for registering a unit.
type CreateParams struct {
	UnitNo       string
	PropertyType Type
	Block        string
	SizeSqft     float64
	Price        decimal.Decimal
	BrokerID     *string
}

// UpdateParams carries the detail fields the ops console may change. Nil
// fields retain their previous values. Status is deliberately absent: only
// the allotment service flips it.
type UpdateParams struct {
	UnitNo   *string
	Block    *string
	SizeSqft *float64
	Price    *decimal.Decimal
	BrokerID *string
}

// ListFilters narrows List results. Zero values mean "no filter".
type ListFilters struct {
	Status       Status
	PropertyType Type
	Block        string
}

package allotment

import (
	"time"

	"estateops/property"
)

// Record mirrors the allotments table. One active record exists per property
// while it is allotted; releasing deletes the row.
type Record struct {
	ID            string
	CustomerID    string
	PropertyID    string
	AllotmentDate time.Time
	Remark        *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Detail is a Record joined with customer and property summary columns for
// list and lookup responses.
type Detail struct {
	Record
	CustomerName  string
	CustomerPhone string
	UnitNo        string
	PropertyType  property.Type
}

// AllocateParams enumerates the required fields to allot a property.
type AllocateParams struct {
	CustomerID    string
	PropertyID    string
	AllotmentDate time.Time
	Remark        *string
}

// UpdateParams carries partial-update fields. Nil fields retain previous
// values.
type UpdateParams struct {
	CustomerID    *string
	PropertyID    *string
	AllotmentDate *time.Time
	Remark        *string
}

// Filters narrows List results. All supplied filters apply conjunctively.
type Filters struct {
	CustomerID string
	PropertyID string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// PropertyState is the slice of a property row the allocation transaction
// needs while holding its lock.
type PropertyState struct {
	ID     string
	Status property.Status
}

// Availability reports whether a property exists and who, if anyone, holds it.
type Availability struct {
	Exists     bool
	IsAllotted bool
	Property   *property.Unit
	Allotment  *Detail
}

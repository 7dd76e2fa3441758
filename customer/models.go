package customer

import "time"

// Customer is the party on whose behalf a property gets allotted. Mirrors the
// customers table.
type Customer struct {
	ID        string
	FullName  string
	Phone     string
	Email     *string
	Address   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams contains write parameters for registering a customer.
type CreateParams struct {
	FullName string
	Phone    string
	Email    *string
	Address  *string
}

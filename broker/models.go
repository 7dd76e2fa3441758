package broker

import "time"

// Profile captures the broker-master data exposed via the ops console.
type Profile struct {
	ID        string
	Name      string
	LicenseNo string
	Phone     *string
	Active    bool
	CreatedAt time.Time
}

// CreateParams contains write parameters for registering a broker.
type CreateParams struct {
	Name      string
	LicenseNo string
	Phone     *string
}

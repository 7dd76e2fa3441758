package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"estateops/allotment"
	"estateops/auth"
	"estateops/broker"
	"estateops/customer"
	"estateops/installment"
	"estateops/property"
)

// Request bodies. Dates arrive as "2006-01-02"; RFC 3339 is accepted too so
// scripted clients can pass timestamps straight through.

type allocateRequest struct {
	CustomerID    string  `json:"customerId"`
	PropertyID    string  `json:"propertyId"`
	AllotmentDate string  `json:"allotmentDate"`
	Remark        *string `json:"remark"`
}

type updateAllotmentRequest struct {
	CustomerID    *string `json:"customerId"`
	PropertyID    *string `json:"propertyId"`
	AllotmentDate *string `json:"allotmentDate"`
	Remark        *string `json:"remark"`
}

type createPropertyRequest struct {
	UnitNo       string          `json:"unitNo"`
	PropertyType string          `json:"propertyType"`
	Block        string          `json:"block"`
	SizeSqft     float64         `json:"sizeSqft"`
	Price        decimal.Decimal `json:"price"`
	BrokerID     *string         `json:"brokerId"`
}

type updatePropertyRequest struct {
	UnitNo   *string          `json:"unitNo"`
	Block    *string          `json:"block"`
	SizeSqft *float64         `json:"sizeSqft"`
	Price    *decimal.Decimal `json:"price"`
	BrokerID *string          `json:"brokerId"`
}

type createCustomerRequest struct {
	FullName string  `json:"fullName"`
	Phone    string  `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
}

type createBrokerRequest struct {
	Name      string  `json:"name"`
	LicenseNo string  `json:"licenseNo"`
	Phone     *string `json:"phone"`
}

type createPlanRequest struct {
	Name           string          `json:"name"`
	Months         int             `json:"months"`
	DownPaymentPct decimal.Decimal `json:"downPaymentPct"`
	MarkupPct      decimal.Decimal `json:"markupPct"`
}

type postEntryRequest struct {
	AllotmentID string          `json:"allotmentId"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	PaidOn      string          `json:"paidOn"`
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
}

// Response bodies.

type allotmentResponse struct {
	ID            string  `json:"id"`
	CustomerID    string  `json:"customerId"`
	PropertyID    string  `json:"propertyId"`
	AllotmentDate string  `json:"allotmentDate"`
	Remark        *string `json:"remark"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

type allotmentDetailResponse struct {
	allotmentResponse
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	UnitNo        string `json:"unitNo"`
	PropertyType  string `json:"propertyType"`
}

func toAllotmentResponse(rec allotment.Record) allotmentResponse {
	return allotmentResponse{
		ID:            rec.ID,
		CustomerID:    rec.CustomerID,
		PropertyID:    rec.PropertyID,
		AllotmentDate: rec.AllotmentDate.Format("2006-01-02"),
		Remark:        rec.Remark,
		CreatedAt:     rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     rec.UpdatedAt.Format(time.RFC3339),
	}
}

func toAllotmentDetail(d allotment.Detail) allotmentDetailResponse {
	return allotmentDetailResponse{
		allotmentResponse: toAllotmentResponse(d.Record),
		CustomerName:      d.CustomerName,
		CustomerPhone:     d.CustomerPhone,
		UnitNo:            d.UnitNo,
		PropertyType:      string(d.PropertyType),
	}
}

type propertyResponse struct {
	ID           string          `json:"id"`
	UnitNo       string          `json:"unitNo"`
	PropertyType string          `json:"propertyType"`
	Block        string          `json:"block"`
	SizeSqft     float64         `json:"sizeSqft"`
	Price        decimal.Decimal `json:"price"`
	Status       string          `json:"status"`
	BrokerID     *string         `json:"brokerId"`
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
}

func toPropertyResponse(u property.Unit) propertyResponse {
	return propertyResponse{
		ID:           u.ID,
		UnitNo:       u.UnitNo,
		PropertyType: string(u.PropertyType),
		Block:        u.Block,
		SizeSqft:     u.SizeSqft,
		Price:        u.Price,
		Status:       string(u.Status),
		BrokerID:     u.BrokerID,
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    u.UpdatedAt.Format(time.RFC3339),
	}
}

type availabilityResponse struct {
	Exists     bool                     `json:"exists"`
	IsAllotted bool                     `json:"isAllotted"`
	Property   *propertyResponse        `json:"property,omitempty"`
	Allotment  *allotmentDetailResponse `json:"allotment,omitempty"`
}

func toAvailabilityResponse(av allotment.Availability) availabilityResponse {
	out := availabilityResponse{Exists: av.Exists, IsAllotted: av.IsAllotted}
	if av.Property != nil {
		p := toPropertyResponse(*av.Property)
		out.Property = &p
	}
	if av.Allotment != nil {
		d := toAllotmentDetail(*av.Allotment)
		out.Allotment = &d
	}
	return out
}

type customerResponse struct {
	ID        string  `json:"id"`
	FullName  string  `json:"fullName"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
	Address   *string `json:"address"`
	CreatedAt string  `json:"createdAt"`
}

func toCustomerResponse(c customer.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		FullName:  c.FullName,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

type brokerResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	LicenseNo string  `json:"licenseNo"`
	Phone     *string `json:"phone"`
	Active    bool    `json:"active"`
	CreatedAt string  `json:"createdAt"`
}

func toBrokerResponse(p broker.Profile) brokerResponse {
	return brokerResponse{
		ID:        p.ID,
		Name:      p.Name,
		LicenseNo: p.LicenseNo,
		Phone:     p.Phone,
		Active:    p.Active,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

type planResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Months         int             `json:"months"`
	DownPaymentPct decimal.Decimal `json:"downPaymentPct"`
	MarkupPct      decimal.Decimal `json:"markupPct"`
	CreatedAt      string          `json:"createdAt"`
}

func toPlanResponse(p installment.Plan) planResponse {
	return planResponse{
		ID:             p.ID,
		Name:           p.Name,
		Months:         p.Months,
		DownPaymentPct: p.DownPaymentPct,
		MarkupPct:      p.MarkupPct,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}

type entryResponse struct {
	ID          string          `json:"id"`
	AllotmentID string          `json:"allotmentId"`
	ReceiptNo   string          `json:"receiptNo"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	PaidOn      string          `json:"paidOn"`
	CreatedAt   string          `json:"createdAt"`
}

func toEntryResponse(e installment.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		AllotmentID: e.AllotmentID,
		ReceiptNo:   e.ReceiptNo,
		Amount:      e.Amount,
		Method:      string(e.Method),
		PaidOn:      e.PaidOn.Format("2006-01-02"),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

type statementResponse struct {
	AllotmentID   string          `json:"allotmentId"`
	PropertyPrice decimal.Decimal `json:"propertyPrice"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	Balance       decimal.Decimal `json:"balance"`
	Entries       []entryResponse `json:"entries"`
}

func toStatementResponse(stmt installment.Statement) statementResponse {
	entries := make([]entryResponse, 0, len(stmt.Entries))
	for _, e := range stmt.Entries {
		entries = append(entries, toEntryResponse(e))
	}
	return statementResponse{
		AllotmentID:   stmt.AllotmentID,
		PropertyPrice: stmt.PropertyPrice,
		TotalPaid:     stmt.TotalPaid,
		Balance:       stmt.Balance,
		Entries:       entries,
	}
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

func toUserResponse(u auth.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     string(u.Role),
	}
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

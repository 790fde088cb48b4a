package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InvoicePrefix = "INV"
	QuotePrefix   = "QTN"

	// DateLayout is the wire and storage layout of business dates.
	DateLayout = "2006-01-02"
)

type LineItem struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// Amount is the item's contribution to the subtotal.
func (l LineItem) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(l.Quantity)
}

type PaymentStatus string

const (
	PaymentOpen    PaymentStatus = "OPEN"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "DRAFT"
	QuoteSent     QuoteStatus = "SENT"
	QuoteAccepted QuoteStatus = "ACCEPTED"
	QuoteDeclined QuoteStatus = "DECLINED"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteDraft, QuoteSent, QuoteAccepted, QuoteDeclined:
		return true
	}
	return false
}

type QuoteCategory string

const (
	CategoryResidential QuoteCategory = "Residential"
	CategoryCommercial  QuoteCategory = "Commercial"
	CategoryIndustrial  QuoteCategory = "Industrial"
)

func (c QuoteCategory) Valid() bool {
	switch c {
	case CategoryResidential, CategoryCommercial, CategoryIndustrial:
		return true
	}
	return false
}

type Invoice struct {
	ID               string          `json:"id" db:"id"`
	Number           string          `json:"invoice_number" db:"number"`
	ClientName       string          `json:"client_name" db:"client_name"`
	ClientPhone      *string         `json:"client_phone,omitempty" db:"client_phone"`
	ClientAddress    string          `json:"client_address" db:"client_address"`
	PostalCode       string          `json:"post_code" db:"postal_code"`
	PaymentOption    string          `json:"payment_option" db:"payment_option"`
	Category         string          `json:"category" db:"category"`
	Services         []LineItem      `json:"services" db:"services"`
	NumberOfServices int             `json:"number_of_services" db:"number_of_services"`
	Discount         decimal.Decimal `json:"discount" db:"discount"`
	Subtotal         decimal.Decimal `json:"subtotal" db:"subtotal"`
	TotalPrice       decimal.Decimal `json:"total_price" db:"total_price"`
	PaidAmount       decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	PaymentStatus    PaymentStatus   `json:"payment_status" db:"payment_status"`
	IssuedOn         time.Time       `json:"issued_on" db:"issued_on"`
	ReferenceNumber  *string         `json:"reference_number,omitempty" db:"reference_number"`
	PaidDate         *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	Version          int64           `json:"version" db:"version"`
	RecordedAt       time.Time       `json:"recorded_at" db:"recorded_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// DerivePaymentStatus reports where the invoice sits in OPEN -> PARTIAL -> PAID.
func (i *Invoice) DerivePaymentStatus() PaymentStatus {
	switch {
	case i.RemainingAmount.IsZero():
		return PaymentPaid
	case i.PaidAmount.IsPositive():
		return PaymentPartial
	default:
		return PaymentOpen
	}
}

type Quote struct {
	ID                string          `json:"id" db:"id"`
	Number            string          `json:"quote_number" db:"number"`
	ClientName        string          `json:"client_name" db:"client_name"`
	ClientPhone       *string         `json:"client_phone,omitempty" db:"client_phone"`
	ClientAddress     *string         `json:"client_address,omitempty" db:"client_address"`
	PostalCode        string          `json:"post_code" db:"postal_code"`
	Category          QuoteCategory   `json:"category" db:"category"`
	Services          []LineItem      `json:"services" db:"services"`
	Materials         []LineItem      `json:"materials" db:"materials"`
	NumberOfServices  int             `json:"number_of_services" db:"number_of_services"`
	NumberOfMaterials int             `json:"number_of_materials" db:"number_of_materials"`
	Discount          decimal.Decimal `json:"discount" db:"discount"`
	Subtotal          decimal.Decimal `json:"subtotal" db:"subtotal"`
	TotalPrice        decimal.Decimal `json:"total_price" db:"total_price"`
	IssuedOn          time.Time       `json:"issued_on" db:"issued_on"`
	ValidUntil        *time.Time      `json:"valid_until,omitempty" db:"valid_until"`
	Status            QuoteStatus     `json:"status" db:"status"`
	Notes             string          `json:"notes" db:"notes"`
	Version           int64           `json:"version" db:"version"`
	RecordedAt        time.Time       `json:"recorded_at" db:"recorded_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

type Payment struct {
	ID              string          `json:"id" db:"id"`
	InvoiceID       string          `json:"invoice_id" db:"invoice_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	IdempotencyKey  *string         `json:"idempotency_key,omitempty" db:"idempotency_key"`
	ReferenceNumber *string         `json:"reference_number,omitempty" db:"reference_number"`
	PaidOn          time.Time       `json:"paid_on" db:"paid_on"`
	RecordedAt      time.Time       `json:"recorded_at" db:"recorded_at"`
}

func NewUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

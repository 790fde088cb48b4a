package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/billing/internal/errs"
	"github.com/jesses-code-adventures/billing/internal/models"
	"github.com/jesses-code-adventures/billing/internal/numbering"
	"github.com/jesses-code-adventures/billing/internal/pricing"
	"github.com/jesses-code-adventures/billing/internal/utils"
)

// InvoiceInput creates an invoice. Date is the business date (YYYY-MM-DD) that scopes the
// invoice number. Discount and PaidAmount accept anything pricing.ParseAmount does.
type InvoiceInput struct {
	ClientName    string
	ClientPhone   *string
	ClientAddress string
	PostalCode    string
	PaymentOption string
	Category      string
	Services      []pricing.RawItem
	Discount      any
	PaidAmount    any
	Date          string
}

// InvoiceUpdate lists the fields an edit may change. Nil means unchanged; an empty ClientPhone
// clears it. Number and issue date are not editable.
type InvoiceUpdate struct {
	ExpectedVersion *int64
	ClientName      *string
	ClientPhone     *string
	ClientAddress   *string
	PostalCode      *string
	PaymentOption   *string
	Category        *string
	Services        *[]pricing.RawItem
	Discount        any
	PaidAmount      any
	ReferenceNumber *string
	PaidDate        *string
}

type QuoteInput struct {
	ClientName    string
	ClientPhone   *string
	ClientAddress *string
	PostalCode    string
	Category      models.QuoteCategory
	Services      []pricing.RawItem
	Materials     []pricing.RawItem
	Discount      any
	Date          string
	ValidUntil    string
	Notes         string
}

// QuoteUpdate lists the fields a quote edit may change. An empty ValidUntil, ClientPhone or
// ClientAddress clears the field.
type QuoteUpdate struct {
	ExpectedVersion *int64
	ClientName      *string
	ClientPhone     *string
	ClientAddress   *string
	PostalCode      *string
	Category        *models.QuoteCategory
	Services        *[]pricing.RawItem
	Materials       *[]pricing.RawItem
	Discount        any
	Status          *models.QuoteStatus
	ValidUntil      *string
	Notes           *string
}

type PaymentInput struct {
	Amount          any
	ReferenceNumber *string
	PaidDate        string
	// IdempotencyKey makes a retried payment a no-op. Optional.
	IdempotencyKey string
}

// ConvertInput turns a quote into an invoice. Date defaults to today.
type ConvertInput struct {
	Date          string
	PaymentOption string
	ClientAddress *string
}

func required(op, field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errs.NewValidation(op, field, "is required")
	}
	return value, nil
}

// paidAmount reads a paid amount: missing is zero, anything else must be a finite number >= 0.
func paidAmount(op string, v any) (decimal.Decimal, error) {
	if pricing.IsMissing(v) {
		return decimal.Zero, nil
	}
	d, ok := pricing.ParseAmount(v)
	if !ok || d.IsNegative() {
		return decimal.Zero, errs.NewValidation(op, "paidAmount", "must be a number of at least 0")
	}
	return d.Round(2), nil
}

func optionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := numbering.ParseBusinessDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (in InvoiceInput) build(op string) (*models.Invoice, error) {
	inv := &models.Invoice{ClientPhone: utils.TrimPtr(in.ClientPhone)}

	var err error
	if inv.ClientName, err = required(op, "clientName", in.ClientName); err != nil {
		return nil, err
	}
	if inv.ClientAddress, err = required(op, "clientAddress", in.ClientAddress); err != nil {
		return nil, err
	}
	if inv.PostalCode, err = required(op, "postCode", in.PostalCode); err != nil {
		return nil, err
	}
	if inv.PaymentOption, err = required(op, "paymentOption", in.PaymentOption); err != nil {
		return nil, err
	}
	if inv.Category, err = required(op, "category", in.Category); err != nil {
		return nil, err
	}
	if inv.Services, err = pricing.RequireItems(op, "services", in.Services); err != nil {
		return nil, err
	}
	if inv.PaidAmount, err = paidAmount(op, in.PaidAmount); err != nil {
		return nil, err
	}
	if _, err = required(op, "date", in.Date); err != nil {
		return nil, err
	}
	if inv.IssuedOn, err = numbering.ParseBusinessDate(in.Date); err != nil {
		return nil, err
	}

	inv.Discount = pricing.ToAmount(in.Discount)
	return inv, nil
}

func (u InvoiceUpdate) apply(op string, inv *models.Invoice) error {
	if u.ClientName != nil {
		v, err := required(op, "clientName", *u.ClientName)
		if err != nil {
			return err
		}
		inv.ClientName = v
	}
	if u.ClientPhone != nil {
		inv.ClientPhone = utils.TrimPtr(u.ClientPhone)
	}
	if u.ClientAddress != nil {
		v, err := required(op, "clientAddress", *u.ClientAddress)
		if err != nil {
			return err
		}
		inv.ClientAddress = v
	}
	if u.PostalCode != nil {
		v, err := required(op, "postCode", *u.PostalCode)
		if err != nil {
			return err
		}
		inv.PostalCode = v
	}
	if u.PaymentOption != nil {
		v, err := required(op, "paymentOption", *u.PaymentOption)
		if err != nil {
			return err
		}
		inv.PaymentOption = v
	}
	if u.Category != nil {
		v, err := required(op, "category", *u.Category)
		if err != nil {
			return err
		}
		inv.Category = v
	}
	if u.Services != nil {
		items, err := pricing.RequireItems(op, "services", *u.Services)
		if err != nil {
			return err
		}
		inv.Services = items
	}
	if !pricing.IsMissing(u.Discount) {
		inv.Discount = pricing.ToAmount(u.Discount)
	}
	if !pricing.IsMissing(u.PaidAmount) {
		paid, err := paidAmount(op, u.PaidAmount)
		if err != nil {
			return err
		}
		inv.PaidAmount = paid
	}
	if u.ReferenceNumber != nil {
		inv.ReferenceNumber = utils.TrimPtr(u.ReferenceNumber)
	}
	if u.PaidDate != nil {
		d, err := optionalDate(*u.PaidDate)
		if err != nil {
			return err
		}
		inv.PaidDate = d
	}
	return nil
}

func (in QuoteInput) build(op string) (*models.Quote, error) {
	q := &models.Quote{
		ClientPhone:   utils.TrimPtr(in.ClientPhone),
		ClientAddress: utils.TrimPtr(in.ClientAddress),
		Category:      in.Category,
		Status:        models.QuoteDraft,
		Notes:         strings.TrimSpace(in.Notes),
	}

	var err error
	if q.ClientName, err = required(op, "clientName", in.ClientName); err != nil {
		return nil, err
	}
	if q.PostalCode, err = required(op, "postCode", in.PostalCode); err != nil {
		return nil, err
	}
	if _, err = required(op, "category", string(in.Category)); err != nil {
		return nil, err
	}
	if !in.Category.Valid() {
		return nil, errs.NewValidation(op, "category", "must be Residential, Commercial or Industrial")
	}
	if q.Services, err = pricing.RequireItems(op, "services", in.Services); err != nil {
		return nil, err
	}
	q.Materials = pricing.NormalizeItems(in.Materials)
	if _, err = required(op, "date", in.Date); err != nil {
		return nil, err
	}
	if q.IssuedOn, err = numbering.ParseBusinessDate(in.Date); err != nil {
		return nil, err
	}
	if q.ValidUntil, err = optionalDate(in.ValidUntil); err != nil {
		return nil, err
	}

	q.Discount = pricing.ToAmount(in.Discount)
	return q, nil
}

func (u QuoteUpdate) apply(op string, q *models.Quote) error {
	if u.ClientName != nil {
		v, err := required(op, "clientName", *u.ClientName)
		if err != nil {
			return err
		}
		q.ClientName = v
	}
	if u.ClientPhone != nil {
		q.ClientPhone = utils.TrimPtr(u.ClientPhone)
	}
	if u.ClientAddress != nil {
		q.ClientAddress = utils.TrimPtr(u.ClientAddress)
	}
	if u.PostalCode != nil {
		v, err := required(op, "postCode", *u.PostalCode)
		if err != nil {
			return err
		}
		q.PostalCode = v
	}
	if u.Category != nil {
		if !u.Category.Valid() {
			return errs.NewValidation(op, "category", "must be Residential, Commercial or Industrial")
		}
		q.Category = *u.Category
	}
	if u.Services != nil {
		items, err := pricing.RequireItems(op, "services", *u.Services)
		if err != nil {
			return err
		}
		q.Services = items
	}
	if u.Materials != nil {
		q.Materials = pricing.NormalizeItems(*u.Materials)
	}
	if !pricing.IsMissing(u.Discount) {
		q.Discount = pricing.ToAmount(u.Discount)
	}
	if u.Status != nil {
		if !u.Status.Valid() {
			return errs.NewValidation(op, "status", "must be DRAFT, SENT, ACCEPTED or DECLINED")
		}
		q.Status = *u.Status
	}
	if u.ValidUntil != nil {
		d, err := optionalDate(*u.ValidUntil)
		if err != nil {
			return err
		}
		q.ValidUntil = d
	}
	if u.Notes != nil {
		q.Notes = strings.TrimSpace(*u.Notes)
	}
	return nil
}

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/billing/internal/db"
	"github.com/jesses-code-adventures/billing/internal/models"
)

const timestampLayout = time.RFC3339Nano

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", value, err)
	}
	return t, nil
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func parseMoney(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount %q: %w", value, err)
	}
	return d, nil
}

func encodeItems(items []models.LineItem) (string, error) {
	if items == nil {
		items = []models.LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode line items: %w", err)
	}
	return string(b), nil
}

func decodeItems(value string) ([]models.LineItem, error) {
	items := []models.LineItem{}
	if value == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, fmt.Errorf("failed to decode line items: %w", err)
	}
	return items, nil
}

func ptrToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullStringToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func datePtrToNullString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(*t), Valid: true}
}

func nullStringToDatePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type moneyField struct {
	dst   *decimal.Decimal
	value string
}

func parseMoneyFields(fields ...moneyField) error {
	for _, f := range fields {
		d, err := parseMoney(f.value)
		if err != nil {
			return err
		}
		*f.dst = d
	}
	return nil
}

func convertDBInvoiceToModel(row db.Invoice) (*models.Invoice, error) {
	inv := &models.Invoice{
		ID:               row.ID,
		Number:           row.Number,
		ClientName:       row.ClientName,
		ClientPhone:      nullStringToPtr(row.ClientPhone),
		ClientAddress:    row.ClientAddress,
		PostalCode:       row.PostalCode,
		PaymentOption:    row.PaymentOption,
		Category:         row.Category,
		NumberOfServices: int(row.NumberOfServices),
		PaymentStatus:    models.PaymentStatus(row.PaymentStatus),
		ReferenceNumber:  nullStringToPtr(row.ReferenceNumber),
		Version:          row.Version,
	}

	var err error
	if inv.Services, err = decodeItems(row.Services); err != nil {
		return nil, err
	}
	if err := parseMoneyFields(
		moneyField{&inv.Discount, row.Discount},
		moneyField{&inv.Subtotal, row.Subtotal},
		moneyField{&inv.TotalPrice, row.TotalPrice},
		moneyField{&inv.PaidAmount, row.PaidAmount},
		moneyField{&inv.RemainingAmount, row.RemainingAmount},
	); err != nil {
		return nil, err
	}
	if inv.IssuedOn, err = parseDate(row.IssuedOn); err != nil {
		return nil, err
	}
	if inv.PaidDate, err = nullStringToDatePtr(row.PaidDate); err != nil {
		return nil, err
	}
	if inv.RecordedAt, err = parseTimestamp(row.RecordedAt); err != nil {
		return nil, err
	}
	if inv.UpdatedAt, err = parseTimestamp(row.UpdatedAt); err != nil {
		return nil, err
	}
	return inv, nil
}

func convertDBQuoteToModel(row db.Quote) (*models.Quote, error) {
	q := &models.Quote{
		ID:                row.ID,
		Number:            row.Number,
		ClientName:        row.ClientName,
		ClientPhone:       nullStringToPtr(row.ClientPhone),
		ClientAddress:     nullStringToPtr(row.ClientAddress),
		PostalCode:        row.PostalCode,
		Category:          models.QuoteCategory(row.Category),
		NumberOfServices:  int(row.NumberOfServices),
		NumberOfMaterials: int(row.NumberOfMaterials),
		Status:            models.QuoteStatus(row.Status),
		Notes:             row.Notes,
		Version:           row.Version,
	}

	var err error
	if q.Services, err = decodeItems(row.Services); err != nil {
		return nil, err
	}
	if q.Materials, err = decodeItems(row.Materials); err != nil {
		return nil, err
	}
	if err := parseMoneyFields(
		moneyField{&q.Discount, row.Discount},
		moneyField{&q.Subtotal, row.Subtotal},
		moneyField{&q.TotalPrice, row.TotalPrice},
	); err != nil {
		return nil, err
	}
	if q.IssuedOn, err = parseDate(row.IssuedOn); err != nil {
		return nil, err
	}
	if q.ValidUntil, err = nullStringToDatePtr(row.ValidUntil); err != nil {
		return nil, err
	}
	if q.RecordedAt, err = parseTimestamp(row.RecordedAt); err != nil {
		return nil, err
	}
	if q.UpdatedAt, err = parseTimestamp(row.UpdatedAt); err != nil {
		return nil, err
	}
	return q, nil
}

func convertDBPaymentToModel(row db.Payment) (*models.Payment, error) {
	p := &models.Payment{
		ID:              row.ID,
		InvoiceID:       row.InvoiceID,
		IdempotencyKey:  nullStringToPtr(row.IdempotencyKey),
		ReferenceNumber: nullStringToPtr(row.ReferenceNumber),
	}

	var err error
	if p.Amount, err = parseMoney(row.Amount); err != nil {
		return nil, err
	}
	if p.PaidOn, err = parseDate(row.PaidOn); err != nil {
		return nil, err
	}
	if p.RecordedAt, err = parseTimestamp(row.RecordedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// invoiceRow flattens inv into the stored representation shared by every store.
func invoiceRow(inv *models.Invoice) (db.Invoice, error) {
	services, err := encodeItems(inv.Services)
	if err != nil {
		return db.Invoice{}, err
	}
	return db.Invoice{
		ID:               inv.ID,
		Number:           inv.Number,
		ClientName:       inv.ClientName,
		ClientPhone:      ptrToNullString(inv.ClientPhone),
		ClientAddress:    inv.ClientAddress,
		PostalCode:       inv.PostalCode,
		PaymentOption:    inv.PaymentOption,
		Category:         inv.Category,
		Services:         services,
		NumberOfServices: int64(inv.NumberOfServices),
		Discount:         formatMoney(inv.Discount),
		Subtotal:         formatMoney(inv.Subtotal),
		TotalPrice:       formatMoney(inv.TotalPrice),
		PaidAmount:       formatMoney(inv.PaidAmount),
		RemainingAmount:  formatMoney(inv.RemainingAmount),
		PaymentStatus:    string(inv.PaymentStatus),
		IssuedOn:         formatDate(inv.IssuedOn),
		ReferenceNumber:  ptrToNullString(inv.ReferenceNumber),
		PaidDate:         datePtrToNullString(inv.PaidDate),
		Version:          inv.Version,
		RecordedAt:       formatTimestamp(inv.RecordedAt),
		UpdatedAt:        formatTimestamp(inv.UpdatedAt),
	}, nil
}

func quoteRow(q *models.Quote) (db.Quote, error) {
	services, err := encodeItems(q.Services)
	if err != nil {
		return db.Quote{}, err
	}
	materials, err := encodeItems(q.Materials)
	if err != nil {
		return db.Quote{}, err
	}
	return db.Quote{
		ID:                q.ID,
		Number:            q.Number,
		ClientName:        q.ClientName,
		ClientPhone:       ptrToNullString(q.ClientPhone),
		ClientAddress:     ptrToNullString(q.ClientAddress),
		PostalCode:        q.PostalCode,
		Category:          string(q.Category),
		Services:          services,
		Materials:         materials,
		NumberOfServices:  int64(q.NumberOfServices),
		NumberOfMaterials: int64(q.NumberOfMaterials),
		Discount:          formatMoney(q.Discount),
		Subtotal:          formatMoney(q.Subtotal),
		TotalPrice:        formatMoney(q.TotalPrice),
		IssuedOn:          formatDate(q.IssuedOn),
		ValidUntil:        datePtrToNullString(q.ValidUntil),
		Status:            string(q.Status),
		Notes:             q.Notes,
		Version:           q.Version,
		RecordedAt:        formatTimestamp(q.RecordedAt),
		UpdatedAt:         formatTimestamp(q.UpdatedAt),
	}, nil
}

func paymentRow(p *models.Payment) db.Payment {
	return db.Payment{
		ID:              p.ID,
		InvoiceID:       p.InvoiceID,
		Amount:          formatMoney(p.Amount),
		IdempotencyKey:  ptrToNullString(p.IdempotencyKey),
		ReferenceNumber: ptrToNullString(p.ReferenceNumber),
		PaidOn:          formatDate(p.PaidOn),
		RecordedAt:      formatTimestamp(p.RecordedAt),
	}
}

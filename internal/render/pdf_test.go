package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/billing/internal/models"
)

func TestInvoicePDF(t *testing.T) {
	ref := "TXN-1"
	paid := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	inv := &models.Invoice{
		Number:        "INV-0325-101",
		ClientName:    "Harbour Cafe",
		ClientAddress: "1 Wharf St",
		PostalCode:    "2000",
		PaymentOption: "Card",
		Category:      "Plumbing",
		Services: []models.LineItem{
			{Name: "A very long description of the work that was carried out on site and needs wrapping", UnitPrice: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(2)},
		},
		Subtotal:        decimal.NewFromInt(200),
		Discount:        decimal.NewFromInt(20),
		TotalPrice:      decimal.NewFromInt(180),
		PaidAmount:      decimal.NewFromInt(180),
		RemainingAmount: decimal.Zero,
		PaymentStatus:   models.PaymentPaid,
		IssuedOn:        time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		ReferenceNumber: &ref,
		PaidDate:        &paid,
	}

	var buf bytes.Buffer
	if err := InvoicePDF(&buf, Company{Name: "Acme Services", ABN: "12 345 678 901"}, inv); err != nil {
		t.Fatalf("failed to render invoice: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output is not a PDF")
	}
}

func TestQuotePDF(t *testing.T) {
	q := &models.Quote{
		Number:     "QTN-1125-101",
		ClientName: "Depot Co",
		PostalCode: "3000",
		Category:   models.CategoryCommercial,
		Services:   []models.LineItem{{Name: "Install", UnitPrice: decimal.NewFromInt(400), Quantity: decimal.NewFromInt(1)}},
		Materials:  []models.LineItem{{Name: "Pipe", UnitPrice: decimal.RequireFromString("12.5"), Quantity: decimal.NewFromInt(4)}},
		Subtotal:   decimal.NewFromInt(450),
		TotalPrice: decimal.NewFromInt(450),
		IssuedOn:   time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC),
		Status:     models.QuoteDraft,
		Notes:      "Access through the loading dock.",
	}

	var buf bytes.Buffer
	if err := QuotePDF(&buf, Company{}, q); err != nil {
		t.Fatalf("failed to render quote: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty output")
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("invoice", "INV-0325-101"); got != "invoice_INV-0325-101.pdf" {
		t.Errorf("FileName = %q", got)
	}
	if got := sanitizeFileName("quote for/Depot Co?.pdf"); got != "quote_forDepot_Co.pdf" {
		t.Errorf("sanitizeFileName = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 9)
	if strings.Join(lines, "|") != "one two|three|four five" {
		t.Errorf("wrapText = %q", lines)
	}
	if got := money(decimal.RequireFromString("-5")); got != "-$5.00" {
		t.Errorf("money = %q", got)
	}
}

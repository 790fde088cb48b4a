package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/billing/internal/models"
)

// Company is the issuer block printed on every document.
type Company struct {
	Name    string
	Address string
	Phone   string
	Email   string
	ABN     string
	Bank    string
}

// InvoicePDF writes inv as an A4 PDF to w.
func InvoicePDF(w io.Writer, company Company, inv *models.Invoice) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	header(pdf, company, fmt.Sprintf("Invoice %s", inv.Number))

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 6, fmt.Sprintf("Issued: %s", inv.IssuedOn.Format(models.DateLayout)))
	pdf.Ln(6)
	pdf.Cell(40, 6, fmt.Sprintf("Category: %s", inv.Category))
	pdf.Ln(10)

	billTo(pdf, inv.ClientName, &inv.ClientAddress, inv.PostalCode, inv.ClientPhone)

	itemTable(pdf, "Services", inv.Services)

	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 11)
	totalLine(pdf, "Subtotal:", inv.Subtotal)
	totalLine(pdf, "Discount:", inv.Discount.Neg())
	pdf.SetFont("Arial", "B", 12)
	totalLine(pdf, "Total:", inv.TotalPrice)
	pdf.SetFont("Arial", "", 11)
	totalLine(pdf, "Paid:", inv.PaidAmount)
	pdf.SetFont("Arial", "B", 12)
	totalLine(pdf, "Balance due:", inv.RemainingAmount)

	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 8, "Payment Details:")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 6, fmt.Sprintf("Status: %s", inv.PaymentStatus))
	pdf.Ln(6)
	pdf.Cell(40, 6, fmt.Sprintf("Payment option: %s", inv.PaymentOption))
	pdf.Ln(6)
	if inv.ReferenceNumber != nil {
		pdf.Cell(40, 6, fmt.Sprintf("Reference: %s", *inv.ReferenceNumber))
		pdf.Ln(6)
	}
	if inv.PaidDate != nil {
		pdf.Cell(40, 6, fmt.Sprintf("Paid on: %s", inv.PaidDate.Format(models.DateLayout)))
		pdf.Ln(6)
	}
	if company.Bank != "" {
		pdf.Cell(40, 6, fmt.Sprintf("Bank: %s", company.Bank))
		pdf.Ln(6)
	}

	return pdf.Output(w)
}

// QuotePDF writes q as an A4 PDF to w.
func QuotePDF(w io.Writer, company Company, q *models.Quote) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	header(pdf, company, fmt.Sprintf("Quotation %s", q.Number))

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 6, fmt.Sprintf("Issued: %s", q.IssuedOn.Format(models.DateLayout)))
	pdf.Ln(6)
	if q.ValidUntil != nil {
		pdf.Cell(40, 6, fmt.Sprintf("Valid until: %s", q.ValidUntil.Format(models.DateLayout)))
		pdf.Ln(6)
	}
	pdf.Cell(40, 6, fmt.Sprintf("Category: %s", q.Category))
	pdf.Ln(10)

	billTo(pdf, q.ClientName, q.ClientAddress, q.PostalCode, q.ClientPhone)

	itemTable(pdf, "Services", q.Services)
	if len(q.Materials) > 0 {
		pdf.Ln(4)
		itemTable(pdf, "Materials", q.Materials)
	}

	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 11)
	totalLine(pdf, "Subtotal:", q.Subtotal)
	totalLine(pdf, "Discount:", q.Discount.Neg())
	pdf.SetFont("Arial", "B", 12)
	totalLine(pdf, "Total:", q.TotalPrice)

	if q.Notes != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(40, 8, "Notes:")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		for _, line := range wrapText(q.Notes, 95) {
			pdf.Cell(190, 5, line)
			pdf.Ln(5)
		}
	}

	return pdf.Output(w)
}

func header(pdf *gofpdf.Fpdf, company Company, title string) {
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, title)
	pdf.Ln(12)

	if company.Name == "" {
		return
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(95, 6, company.Name)
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{company.Address, company.Phone, company.Email} {
		if line != "" {
			pdf.Cell(95, 5, line)
			pdf.Ln(5)
		}
	}
	if company.ABN != "" {
		pdf.Cell(95, 5, fmt.Sprintf("ABN: %s", company.ABN))
		pdf.Ln(5)
	}
	pdf.Ln(4)
}

func billTo(pdf *gofpdf.Fpdf, name string, address *string, postalCode string, phone *string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 8, "Bill To:")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	leftColY := pdf.GetY()
	pdf.Cell(95, 6, name)
	pdf.Ln(6)
	if address != nil && *address != "" {
		pdf.Cell(95, 6, *address)
		pdf.Ln(6)
	}
	if postalCode != "" {
		pdf.Cell(95, 6, postalCode)
		pdf.Ln(6)
	}
	bottomY := pdf.GetY()

	if phone != nil && *phone != "" {
		pdf.SetXY(105, leftColY)
		pdf.Cell(85, 6, fmt.Sprintf("Phone: %s", *phone))
	}

	pdf.SetXY(10, bottomY)
	pdf.Ln(6)
}

func itemTable(pdf *gofpdf.Fpdf, title string, items []models.LineItem) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(40, 8, title)
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(100, 8, "Description", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Unit price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Amount", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, item := range items {
		lines := wrapText(item.Name, 55)
		rowHeight := float64(len(lines)) * 6
		if rowHeight < 6 {
			rowHeight = 6
		}

		x, y := pdf.GetXY()
		pdf.Rect(x, y, 100, rowHeight, "D")
		for i, line := range lines {
			pdf.SetXY(x+1, y+float64(i)*6)
			pdf.Cell(98, 6, line)
		}

		pdf.SetXY(x+100, y)
		pdf.CellFormat(30, rowHeight, money(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, rowHeight, item.Quantity.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, rowHeight, money(item.Amount()), "1", 1, "R", false, 0, "")
	}
}

func totalLine(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.Cell(155, 8, label)
	pdf.CellFormat(35, 8, money(amount), "", 1, "R", false, 0, "")
}

func money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// FileName builds a filesystem safe name such as invoice_INV-0325-101.pdf.
func FileName(kind, number string) string {
	return sanitizeFileName(fmt.Sprintf("%s_%s.pdf", kind, number))
}

func sanitizeFileName(fileName string) string {
	var b strings.Builder
	for _, r := range fileName {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'), r == '_', r == '-', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

func wrapText(text string, maxChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	var lines []string
	var currentLine string
	for _, word := range strings.Fields(text) {
		testLine := currentLine
		if testLine != "" {
			testLine += " "
		}
		testLine += word

		if len(testLine) <= maxChars {
			currentLine = testLine
		} else {
			if currentLine != "" {
				lines = append(lines, currentLine)
			}
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}

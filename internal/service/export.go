package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jesses-code-adventures/billing/internal/archive"
	"github.com/jesses-code-adventures/billing/internal/errs"
	"github.com/jesses-code-adventures/billing/internal/models"
	"github.com/jesses-code-adventures/billing/internal/render"
	"github.com/jesses-code-adventures/billing/internal/utils"
)

const pdfContentType = "application/pdf"

// ExportInvoicesCSV writes every invoice to w as CSV, newest first.
func (s *DocumentService) ExportInvoicesCSV(ctx context.Context, w io.Writer) error {
	const op = "ExportInvoicesCSV"
	invoices, err := s.ListInvoices(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"Number", "Date", "Client", "Phone", "Address", "Post Code", "Category", "Payment Option",
		"Services", "Subtotal", "Discount", "Total", "Paid", "Remaining", "Status", "Reference", "Paid Date", "Version",
	}); err != nil {
		return s.fail(op, errs.NewInternal(op, fmt.Errorf("failed to write CSV header: %w", err)))
	}

	for _, inv := range invoices {
		paidDate := ""
		if inv.PaidDate != nil {
			paidDate = inv.PaidDate.Format(models.DateLayout)
		}
		record := []string{
			inv.Number,
			inv.IssuedOn.Format(models.DateLayout),
			inv.ClientName,
			utils.FromPtr(inv.ClientPhone),
			inv.ClientAddress,
			inv.PostalCode,
			inv.Category,
			inv.PaymentOption,
			strconv.Itoa(inv.NumberOfServices),
			inv.Subtotal.StringFixed(2),
			inv.Discount.StringFixed(2),
			inv.TotalPrice.StringFixed(2),
			inv.PaidAmount.StringFixed(2),
			inv.RemainingAmount.StringFixed(2),
			string(inv.PaymentStatus),
			utils.FromPtr(inv.ReferenceNumber),
			paidDate,
			strconv.FormatInt(inv.Version, 10),
		}
		if err := writer.Write(record); err != nil {
			return s.fail(op, errs.NewInternal(op, fmt.Errorf("failed to write CSV record: %w", err)))
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return s.fail(op, errs.NewInternal(op, err))
	}
	return nil
}

// ExportQuotesCSV writes every quote to w as CSV, newest first.
func (s *DocumentService) ExportQuotesCSV(ctx context.Context, w io.Writer) error {
	const op = "ExportQuotesCSV"
	quotes, err := s.ListQuotes(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"Number", "Date", "Valid Until", "Client", "Phone", "Address", "Post Code", "Category",
		"Services", "Materials", "Subtotal", "Discount", "Total", "Status", "Notes", "Version",
	}); err != nil {
		return s.fail(op, errs.NewInternal(op, fmt.Errorf("failed to write CSV header: %w", err)))
	}

	for _, q := range quotes {
		validUntil := ""
		if q.ValidUntil != nil {
			validUntil = q.ValidUntil.Format(models.DateLayout)
		}
		record := []string{
			q.Number,
			q.IssuedOn.Format(models.DateLayout),
			validUntil,
			q.ClientName,
			utils.FromPtr(q.ClientPhone),
			utils.FromPtr(q.ClientAddress),
			q.PostalCode,
			string(q.Category),
			strconv.Itoa(q.NumberOfServices),
			strconv.Itoa(q.NumberOfMaterials),
			q.Subtotal.StringFixed(2),
			q.Discount.StringFixed(2),
			q.TotalPrice.StringFixed(2),
			string(q.Status),
			q.Notes,
			strconv.FormatInt(q.Version, 10),
		}
		if err := writer.Write(record); err != nil {
			return s.fail(op, errs.NewInternal(op, fmt.Errorf("failed to write CSV record: %w", err)))
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return s.fail(op, errs.NewInternal(op, err))
	}
	return nil
}

// RenderInvoicePDF writes the invoice with the given number to w as a PDF.
func (s *DocumentService) RenderInvoicePDF(ctx context.Context, number string, w io.Writer) error {
	const op = "RenderInvoicePDF"
	inv, err := s.GetInvoice(ctx, number)
	if err != nil {
		return err
	}
	if err := render.InvoicePDF(w, s.company, inv); err != nil {
		return s.fail(op, errs.NewInternal(op, err))
	}
	return nil
}

func (s *DocumentService) RenderQuotePDF(ctx context.Context, number string, w io.Writer) error {
	const op = "RenderQuotePDF"
	quote, err := s.GetQuote(ctx, number)
	if err != nil {
		return err
	}
	if err := render.QuotePDF(w, s.company, quote); err != nil {
		return s.fail(op, errs.NewInternal(op, err))
	}
	return nil
}

// ArchiveInvoicePDF renders the invoice and uploads it to the configured archive.
func (s *DocumentService) ArchiveInvoicePDF(ctx context.Context, number string) (string, error) {
	return s.archivePDF(ctx, "ArchiveInvoicePDF", "invoices", number, s.RenderInvoicePDF)
}

func (s *DocumentService) ArchiveQuotePDF(ctx context.Context, number string) (string, error) {
	return s.archivePDF(ctx, "ArchiveQuotePDF", "quotes", number, s.RenderQuotePDF)
}

func (s *DocumentService) archivePDF(ctx context.Context, op, family, number string, renderPDF func(context.Context, string, io.Writer) error) (string, error) {
	if s.archive == nil {
		return "", s.fail(op, errs.NewValidation(op, "archive", "no archive bucket is configured"))
	}

	var buf bytes.Buffer
	if err := renderPDF(ctx, number, &buf); err != nil {
		return "", err
	}

	location, err := s.archive.Put(ctx, archive.ObjectKey(family, number, "pdf"), buf.Bytes(), pdfContentType)
	if err != nil {
		return "", s.fail(op, err)
	}

	s.log.Info().Str("number", number).Str("location", location).Msg("document archived")
	return location, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jesses-code-adventures/billing/internal/database"
	"github.com/jesses-code-adventures/billing/internal/models"
	"github.com/jesses-code-adventures/billing/internal/numbering"
	"github.com/jesses-code-adventures/billing/internal/pricing"
)

// CreateInvoice validates in, prices it and stores it under a freshly allocated number. The
// counter advance and the insert commit together.
func (s *DocumentService) CreateInvoice(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	return s.createInvoice(ctx, "CreateInvoice", in)
}

func (s *DocumentService) createInvoice(ctx context.Context, op string, in InvoiceInput) (*models.Invoice, error) {
	inv, err := in.build(op)
	if err != nil {
		return nil, s.fail(op, err)
	}

	inv.ID = models.NewUUID()
	inv.RecordedAt = s.now().UTC()
	s.settleInvoice(inv)

	err = s.db.InTx(ctx, func(q database.Querier) error {
		_, err := s.allocator.AllocateAndStore(ctx, s.counterFor(q), models.InvoicePrefix, in.Date, func(n numbering.Number) error {
			inv.Number = n.String()
			err := q.CreateInvoice(ctx, inv)
			if errors.Is(err, database.ErrDuplicate) {
				return fmt.Errorf("%s: %w", inv.Number, numbering.ErrNumberTaken)
			}
			return err
		})
		return err
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.IncCreated(models.InvoicePrefix)
	s.log.Info().Str("number", inv.Number).Str("total", inv.TotalPrice.StringFixed(2)).Msg("invoice created")
	return inv, nil
}

// EditInvoice applies u to the invoice with the given id.
func (s *DocumentService) EditInvoice(ctx context.Context, id string, u InvoiceUpdate) (*models.Invoice, error) {
	return s.editInvoice(ctx, "EditInvoice", id, u, func(q database.Querier) (*models.Invoice, error) {
		return q.GetInvoiceByID(ctx, id)
	})
}

// EditInvoiceByNumber applies u to the invoice with the given number.
func (s *DocumentService) EditInvoiceByNumber(ctx context.Context, number string, u InvoiceUpdate) (*models.Invoice, error) {
	return s.editInvoice(ctx, "EditInvoiceByNumber", number, u, func(q database.Querier) (*models.Invoice, error) {
		return q.GetInvoiceByNumber(ctx, number)
	})
}

func (s *DocumentService) editInvoice(ctx context.Context, op, key string, u InvoiceUpdate, load func(database.Querier) (*models.Invoice, error)) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.db.InTx(ctx, func(q database.Querier) error {
		var err error
		inv, err = load(q)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return notFound(op, "invoice", key)
			}
			return err
		}
		if err := checkVersion(op, u.ExpectedVersion, inv.Version); err != nil {
			return err
		}
		if err := u.apply(op, inv); err != nil {
			return err
		}

		s.settleInvoice(inv)
		inv.UpdatedAt = s.now().UTC()
		return q.UpdateInvoice(ctx, inv)
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.IncEdited(models.InvoicePrefix)
	s.log.Info().Str("number", inv.Number).Int64("version", inv.Version).Msg("invoice edited")
	return inv, nil
}

// GetInvoice finds an invoice by number.
func (s *DocumentService) GetInvoice(ctx context.Context, number string) (*models.Invoice, error) {
	const op = "GetInvoice"
	inv, err := s.db.GetInvoiceByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, s.fail(op, notFound(op, "invoice", number))
		}
		return nil, s.fail(op, err)
	}
	return inv, nil
}

// ListInvoices returns every invoice, newest business date first.
func (s *DocumentService) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	invoices, err := s.db.ListInvoices(ctx)
	if err != nil {
		return nil, s.fail("ListInvoices", err)
	}
	return invoices, nil
}

// DeleteInvoice removes an invoice and its payments.
func (s *DocumentService) DeleteInvoice(ctx context.Context, number string) error {
	const op = "DeleteInvoice"
	if err := s.db.DeleteInvoiceByNumber(ctx, number); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return s.fail(op, notFound(op, "invoice", number))
		}
		return s.fail(op, err)
	}

	s.metrics.IncDeleted(models.InvoicePrefix)
	s.log.Info().Str("number", number).Msg("invoice deleted")
	return nil
}

// settleInvoice recomputes totals and payment state from the invoice's items, discount and paid
// amount. Below PAID the completion record is cleared; at PAID a missing paid date becomes today.
func (s *DocumentService) settleInvoice(inv *models.Invoice) {
	totals := pricing.Compute([][]models.LineItem{inv.Services}, inv.Discount, &inv.PaidAmount)

	inv.NumberOfServices = len(inv.Services)
	inv.Subtotal = totals.Subtotal
	inv.Discount = totals.Discount
	inv.TotalPrice = totals.TotalPrice
	inv.RemainingAmount = *totals.RemainingAmount
	inv.PaymentStatus = inv.DerivePaymentStatus()

	if inv.PaymentStatus != models.PaymentPaid {
		inv.ReferenceNumber = nil
		inv.PaidDate = nil
		return
	}
	if inv.PaidDate == nil {
		today := s.today()
		inv.PaidDate = &today
	}
}

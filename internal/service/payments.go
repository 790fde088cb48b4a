package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jesses-code-adventures/billing/internal/database"
	"github.com/jesses-code-adventures/billing/internal/errs"
	"github.com/jesses-code-adventures/billing/internal/models"
	"github.com/jesses-code-adventures/billing/internal/pricing"
	"github.com/jesses-code-adventures/billing/internal/utils"
)

// ApplyPayment adds in.Amount to the invoice's paid amount. The payment that brings the
// remaining amount to zero records the reference number and paid date. Replaying a payment with
// an idempotency key that was already applied to this invoice returns the invoice unchanged.
func (s *DocumentService) ApplyPayment(ctx context.Context, number string, in PaymentInput) (*models.Invoice, error) {
	const op = "ApplyPayment"

	amount, ok := pricing.ParseAmount(in.Amount)
	if !ok || !amount.IsPositive() {
		return nil, s.fail(op, errs.NewValidation(op, "amount", "must be a number greater than 0"))
	}
	amount = amount.Round(2)
	if amount.IsZero() {
		return nil, s.fail(op, errs.NewValidation(op, "amount", "must be at least 0.01"))
	}

	paidOn, err := optionalDate(in.PaidDate)
	if err != nil {
		return nil, s.fail(op, err)
	}
	key := strings.TrimSpace(in.IdempotencyKey)

	var inv *models.Invoice
	replayed := false
	err = s.db.InTx(ctx, func(q database.Querier) error {
		var err error
		inv, err = q.GetInvoiceByNumber(ctx, number)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return notFound(op, "invoice", number)
			}
			return err
		}

		if key != "" {
			prior, err := q.GetPaymentByKey(ctx, key)
			switch {
			case err == nil && prior.InvoiceID == inv.ID:
				replayed = true
				return nil
			case err == nil:
				return errs.NewConflict(op, "idempotency key was already used for another invoice", nil)
			case !errors.Is(err, database.ErrNotFound):
				return err
			}
		}

		now := s.now().UTC()
		if inv.PaymentStatus != models.PaymentPaid {
			inv.ReferenceNumber = utils.TrimPtr(in.ReferenceNumber)
			inv.PaidDate = paidOn
		}
		inv.PaidAmount = inv.PaidAmount.Add(amount)
		s.settleInvoice(inv)
		inv.UpdatedAt = now
		if err := q.UpdateInvoice(ctx, inv); err != nil {
			return err
		}

		payment := &models.Payment{
			ID:              models.NewUUID(),
			InvoiceID:       inv.ID,
			Amount:          amount,
			ReferenceNumber: utils.TrimPtr(in.ReferenceNumber),
			PaidOn:          s.today(),
			IdempotencyKey:  utils.NilIfBlank(key),
			RecordedAt:      now,
		}
		if paidOn != nil {
			payment.PaidOn = *paidOn
		}
		if err := q.CreatePayment(ctx, payment); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return errs.NewConflict(op, "payment with this idempotency key is already being applied", err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	if replayed {
		s.metrics.IncPaymentReplay()
		s.log.Info().Str("number", number).Str("key", key).Msg("payment already applied")
		return inv, nil
	}

	s.metrics.IncPayment()
	s.log.Info().
		Str("number", inv.Number).
		Str("amount", amount.StringFixed(2)).
		Str("status", string(inv.PaymentStatus)).
		Msg("payment applied")
	return inv, nil
}

// ListPayments returns the payments recorded against an invoice, oldest first.
func (s *DocumentService) ListPayments(ctx context.Context, number string) ([]*models.Payment, error) {
	const op = "ListPayments"
	inv, err := s.db.GetInvoiceByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, s.fail(op, notFound(op, "invoice", number))
		}
		return nil, s.fail(op, err)
	}

	payments, err := s.db.ListPayments(ctx, inv.ID)
	if err != nil {
		return nil, s.fail(op, err)
	}
	return payments, nil
}

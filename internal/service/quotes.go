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

func (s *DocumentService) CreateQuote(ctx context.Context, in QuoteInput) (*models.Quote, error) {
	const op = "CreateQuote"
	quote, err := in.build(op)
	if err != nil {
		return nil, s.fail(op, err)
	}

	quote.ID = models.NewUUID()
	quote.RecordedAt = s.now().UTC()
	settleQuote(quote)

	err = s.db.InTx(ctx, func(q database.Querier) error {
		_, err := s.allocator.AllocateAndStore(ctx, s.counterFor(q), models.QuotePrefix, in.Date, func(n numbering.Number) error {
			quote.Number = n.String()
			err := q.CreateQuote(ctx, quote)
			if errors.Is(err, database.ErrDuplicate) {
				return fmt.Errorf("%s: %w", quote.Number, numbering.ErrNumberTaken)
			}
			return err
		})
		return err
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.IncCreated(models.QuotePrefix)
	s.log.Info().Str("number", quote.Number).Str("total", quote.TotalPrice.StringFixed(2)).Msg("quote created")
	return quote, nil
}

func (s *DocumentService) EditQuote(ctx context.Context, id string, u QuoteUpdate) (*models.Quote, error) {
	return s.editQuote(ctx, "EditQuote", id, u, func(q database.Querier) (*models.Quote, error) {
		return q.GetQuoteByID(ctx, id)
	})
}

func (s *DocumentService) EditQuoteByNumber(ctx context.Context, number string, u QuoteUpdate) (*models.Quote, error) {
	return s.editQuote(ctx, "EditQuoteByNumber", number, u, func(q database.Querier) (*models.Quote, error) {
		return q.GetQuoteByNumber(ctx, number)
	})
}

func (s *DocumentService) editQuote(ctx context.Context, op, key string, u QuoteUpdate, load func(database.Querier) (*models.Quote, error)) (*models.Quote, error) {
	var quote *models.Quote
	err := s.db.InTx(ctx, func(q database.Querier) error {
		var err error
		quote, err = load(q)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return notFound(op, "quote", key)
			}
			return err
		}
		if err := checkVersion(op, u.ExpectedVersion, quote.Version); err != nil {
			return err
		}
		if err := u.apply(op, quote); err != nil {
			return err
		}

		settleQuote(quote)
		quote.UpdatedAt = s.now().UTC()
		return q.UpdateQuote(ctx, quote)
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.metrics.IncEdited(models.QuotePrefix)
	s.log.Info().Str("number", quote.Number).Int64("version", quote.Version).Msg("quote edited")
	return quote, nil
}

func (s *DocumentService) GetQuote(ctx context.Context, number string) (*models.Quote, error) {
	const op = "GetQuote"
	quote, err := s.db.GetQuoteByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, s.fail(op, notFound(op, "quote", number))
		}
		return nil, s.fail(op, err)
	}
	return quote, nil
}

func (s *DocumentService) ListQuotes(ctx context.Context) ([]*models.Quote, error) {
	quotes, err := s.db.ListQuotes(ctx)
	if err != nil {
		return nil, s.fail("ListQuotes", err)
	}
	return quotes, nil
}

func (s *DocumentService) DeleteQuote(ctx context.Context, number string) error {
	const op = "DeleteQuote"
	if err := s.db.DeleteQuoteByNumber(ctx, number); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return s.fail(op, notFound(op, "quote", number))
		}
		return s.fail(op, err)
	}

	s.metrics.IncDeleted(models.QuotePrefix)
	s.log.Info().Str("number", number).Msg("quote deleted")
	return nil
}

// settleQuote prices services and materials together.
func settleQuote(q *models.Quote) {
	totals := pricing.Compute([][]models.LineItem{q.Services, q.Materials}, q.Discount, nil)

	q.NumberOfServices = len(q.Services)
	q.NumberOfMaterials = len(q.Materials)
	q.Subtotal = totals.Subtotal
	q.Discount = totals.Discount
	q.TotalPrice = totals.TotalPrice
}

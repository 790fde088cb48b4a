package service

import (
	"context"
	"errors"

	"github.com/jesses-code-adventures/billing/internal/database"
	"github.com/jesses-code-adventures/billing/internal/models"
	"github.com/jesses-code-adventures/billing/internal/pricing"
	"github.com/jesses-code-adventures/billing/internal/utils"
)

// MaterialPrefix marks quote materials carried onto an invoice's services.
const MaterialPrefix = "(Material) "

// ConvertQuote creates an invoice from a quote: its services followed by its materials, the same
// flat discount and nothing paid. The quote itself is left as it is.
func (s *DocumentService) ConvertQuote(ctx context.Context, quoteNumber string, in ConvertInput) (*models.Invoice, error) {
	const op = "ConvertQuote"

	quote, err := s.db.GetQuoteByNumber(ctx, quoteNumber)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, s.fail(op, notFound(op, "quote", quoteNumber))
		}
		return nil, s.fail(op, err)
	}

	date := in.Date
	if date == "" {
		date = s.today().Format(models.DateLayout)
	}
	address := quote.ClientAddress
	if in.ClientAddress != nil {
		address = in.ClientAddress
	}

	services := make([]pricing.RawItem, 0, len(quote.Services)+len(quote.Materials))
	for _, item := range quote.Services {
		services = append(services, pricing.RawItem{Name: item.Name, Price: item.UnitPrice, Quantity: item.Quantity})
	}
	for _, item := range quote.Materials {
		services = append(services, pricing.RawItem{Name: MaterialPrefix + item.Name, Price: item.UnitPrice, Quantity: item.Quantity})
	}

	inv, err := s.createInvoice(ctx, op, InvoiceInput{
		ClientName:    quote.ClientName,
		ClientPhone:   quote.ClientPhone,
		ClientAddress: utils.FromPtr(address),
		PostalCode:    quote.PostalCode,
		PaymentOption: in.PaymentOption,
		Category:      string(quote.Category),
		Services:      services,
		Discount:      quote.Discount,
		Date:          date,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("quote", quote.Number).Str("invoice", inv.Number).Msg("quote converted")
	return inv, nil
}

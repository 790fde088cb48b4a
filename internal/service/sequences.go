package service

import (
	"context"

	"github.com/jesses-code-adventures/billing/internal/numbering"
)

// HighestSequences returns the last sequence stored in every scope, keyed like the counters.
// Counters that live outside the record store are seeded from it before first use.
func (s *DocumentService) HighestSequences(ctx context.Context) (map[string]int64, error) {
	const op = "HighestSequences"

	invoices, err := s.db.ListInvoices(ctx)
	if err != nil {
		return nil, s.fail(op, err)
	}
	quotes, err := s.db.ListQuotes(ctx)
	if err != nil {
		return nil, s.fail(op, err)
	}

	numbers := make([]string, 0, len(invoices)+len(quotes))
	for _, inv := range invoices {
		numbers = append(numbers, inv.Number)
	}
	for _, q := range quotes {
		numbers = append(numbers, q.Number)
	}

	highest := make(map[string]int64)
	for _, number := range numbers {
		n, err := numbering.ParseNumber(number)
		if err != nil {
			s.log.Warn().Err(err).Str("number", number).Msg("skipping unrecognised document number")
			continue
		}
		if seq := int64(n.Seq); seq > highest[n.Scope.Key()] {
			highest[n.Scope.Key()] = seq
		}
	}
	return highest, nil
}

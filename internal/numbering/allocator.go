package numbering

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jesses-code-adventures/billing/internal/errs"
	"github.com/jesses-code-adventures/billing/internal/logger"
	"github.com/jesses-code-adventures/billing/internal/metrics"
)

// DefaultMaxAttempts bounds how many numbers AllocateAndStore tries before reporting contention.
const DefaultMaxAttempts = 3

// ErrNumberTaken is returned by a store callback when the record store already holds the number.
var ErrNumberTaken = errors.New("document number already taken")

type Allocator struct {
	MaxAttempts int

	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewAllocator(m *metrics.Metrics) *Allocator {
	return &Allocator{
		MaxAttempts: DefaultMaxAttempts,
		log:         logger.WithComponent("numbering"),
		metrics:     m,
	}
}

// Allocate issues the next number in the scope of prefix and businessDate. Every call advances
// the counter, so concurrent callers never receive the same sequence.
func (a *Allocator) Allocate(ctx context.Context, counter Counter, prefix, businessDate string) (Number, error) {
	date, err := ParseBusinessDate(businessDate)
	if err != nil {
		return Number{}, err
	}
	scope := ScopeFor(prefix, date)

	seq, err := counter.NextSequence(ctx, scope.Key())
	if err != nil {
		return Number{}, fmt.Errorf("failed to advance sequence for %s: %w", scope, err)
	}
	if seq > MaxSequence {
		a.metrics.IncExhausted(prefix)
		a.log.Warn().Str("scope", scope.Key()).Int64("seq", seq).Msg("sequence exhausted")
		return Number{}, errs.NewSequenceExhausted("Allocate", scope.Key())
	}
	if seq < 1 {
		return Number{}, fmt.Errorf("counter returned invalid sequence %d for %s", seq, scope)
	}

	a.metrics.IncAllocated(prefix)
	return Number{Scope: scope, Seq: int(seq)}, nil
}

// AllocateAndStore couples allocation with persistence. When store reports ErrNumberTaken the
// number is abandoned and a fresh one is allocated, up to MaxAttempts times. Any other store
// error is returned as is; the number it was given is never handed out again.
func (a *Allocator) AllocateAndStore(ctx context.Context, counter Counter, prefix, businessDate string, store func(Number) error) (Number, error) {
	attempts := a.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		number, err := a.Allocate(ctx, counter, prefix, businessDate)
		if err != nil {
			return Number{}, err
		}

		err = store(number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, ErrNumberTaken) {
			return Number{}, err
		}

		lastErr = err
		a.metrics.IncAllocationConflict(prefix)
		a.log.Warn().
			Str("number", number.String()).
			Int("attempt", attempt).
			Msg("allocated number already taken, retrying")
	}

	return Number{}, errs.NewConflict("Allocate", fmt.Sprintf("could not allocate a free %s number after %d attempts", prefix, attempts), lastErr)
}

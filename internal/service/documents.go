package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jesses-code-adventures/billing/internal/database"
	"github.com/jesses-code-adventures/billing/internal/errs"
	"github.com/jesses-code-adventures/billing/internal/logger"
	"github.com/jesses-code-adventures/billing/internal/metrics"
	"github.com/jesses-code-adventures/billing/internal/numbering"
	"github.com/jesses-code-adventures/billing/internal/render"
)

// Archiver stores a rendered document and returns where it went.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// DocumentService runs the invoice and quote lifecycle against a record store.
type DocumentService struct {
	db        database.DB
	allocator *numbering.Allocator
	counter   numbering.Counter
	metrics   *metrics.Metrics
	archive   Archiver
	company   render.Company
	now       func() time.Time
	log       zerolog.Logger
}

type Option func(*DocumentService)

// WithCounter numbers documents from c instead of the record store's own counter table.
func WithCounter(c numbering.Counter) Option {
	return func(s *DocumentService) { s.counter = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *DocumentService) { s.metrics = m }
}

func WithArchive(a Archiver) Option {
	return func(s *DocumentService) { s.archive = a }
}

func WithCompany(c render.Company) Option {
	return func(s *DocumentService) { s.company = c }
}

// WithClock replaces time.Now, which drives recordedAt/updatedAt and the default paid date.
func WithClock(now func() time.Time) Option {
	return func(s *DocumentService) { s.now = now }
}

func NewDocumentService(db database.DB, opts ...Option) *DocumentService {
	s := &DocumentService{
		db:  db,
		now: time.Now,
		log: logger.WithComponent("documents"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.allocator = numbering.NewAllocator(s.metrics)
	return s
}

// counterFor returns the counter used inside a create transaction. The store's counter row
// commits or rolls back with the document it numbered.
func (s *DocumentService) counterFor(q database.Querier) numbering.Counter {
	if s.counter != nil {
		return s.counter
	}
	return q
}

func (s *DocumentService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// fail classifies err for the caller, records it and logs the full chain.
func (s *DocumentService) fail(op string, err error) error {
	classified := classify(op, err)

	kind := errs.KindOf(classified)
	s.metrics.IncFailure(op, string(kind))

	event := s.log.Warn()
	if kind == errs.KindStoreFailure || kind == errs.KindInternal {
		event = s.log.Error()
	}
	event.Err(err).Str("op", op).Str("kind", string(kind)).Msg("operation failed")

	return classified
}

func classify(op string, err error) error {
	var e *errs.Error
	switch {
	case errors.As(err, &e):
		return err
	case errors.Is(err, database.ErrNotFound):
		return errs.NewNotFound(op, "document not found")
	case errors.Is(err, database.ErrStale):
		return errs.NewConflict(op, "document was changed by another request, reload and try again", err)
	case errors.Is(err, database.ErrDuplicate):
		return errs.NewConflict(op, "document already exists", err)
	default:
		return errs.NewStoreFailure(op, err)
	}
}

func notFound(op, family, key string) error {
	return errs.NewNotFound(op, family+" "+key+" not found")
}

// checkVersion rejects an edit made against a copy older than the stored record.
func checkVersion(op string, expected *int64, actual int64) error {
	if expected != nil && *expected != actual {
		return errs.NewConflict(op, "document was changed by another request, reload and try again", database.ErrStale)
	}
	return nil
}

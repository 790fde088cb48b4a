package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jesses-code-adventures/billing/internal/config"
	"github.com/jesses-code-adventures/billing/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record with this number already exists")
	ErrStale     = errors.New("record was modified since it was read")
)

// Querier is the record store contract. Implementations are returned both for the plain
// connection and for the inside of a transaction.
type Querier interface {
	// NextSequence increments and returns the counter for scope. The first call returns 1.
	NextSequence(ctx context.Context, scope string) (int64, error)

	// CreateInvoice inserts inv, or returns ErrDuplicate when its number is taken.
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	GetInvoiceByID(ctx context.Context, id string) (*models.Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error)
	ListInvoices(ctx context.Context) ([]*models.Invoice, error)
	// UpdateInvoice writes inv if its Version still matches the stored one, and bumps Version.
	UpdateInvoice(ctx context.Context, inv *models.Invoice) error
	DeleteInvoiceByNumber(ctx context.Context, number string) error

	CreateQuote(ctx context.Context, q *models.Quote) error
	GetQuoteByID(ctx context.Context, id string) (*models.Quote, error)
	GetQuoteByNumber(ctx context.Context, number string) (*models.Quote, error)
	ListQuotes(ctx context.Context) ([]*models.Quote, error)
	UpdateQuote(ctx context.Context, q *models.Quote) error
	DeleteQuoteByNumber(ctx context.Context, number string) error

	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPaymentByKey(ctx context.Context, key string) (*models.Payment, error)
	ListPayments(ctx context.Context, invoiceID string) ([]*models.Payment, error)
}

type DB interface {
	Querier

	// InTx runs fn inside one transaction. fn must only use the Querier it is given.
	InTx(ctx context.Context, fn func(q Querier) error) error
	Migrate(ctx context.Context) error
	Close() error
}

// Open picks the store implementation for the configured driver.
func Open(ctx context.Context, cfg *config.Config) (DB, error) {
	switch strings.ToLower(cfg.DatabaseDriver) {
	case "sqlite3", "libsql":
		return NewDB(cfg)
	case "postgres", "pgx":
		return NewPostgresDB(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

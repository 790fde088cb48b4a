package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/jesses-code-adventures/billing/internal/config"
	"github.com/jesses-code-adventures/billing/internal/db"
	"github.com/jesses-code-adventures/billing/internal/models"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

const sqliteBusyTimeout = 5 * time.Second

type SQLiteDB struct {
	sqliteStore
	conn *sql.DB
}

// sqliteStore implements Querier over either the connection or an open transaction.
type sqliteStore struct {
	queries *db.Queries
}

func NewDB(cfg *config.Config) (*SQLiteDB, error) {
	conn, err := sql.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.DatabaseDriver == "sqlite3" {
		// A local file has one writer; a single connection queues writers in-process instead of
		// failing them with SQLITE_BUSY.
		conn.SetMaxOpenConns(1)
	}
	for _, pragma := range connectionPragmas(cfg.DatabaseDriver) {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to configure database: %w", err)
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := SQLiteDB{
		sqliteStore: sqliteStore{queries: db.New(conn)},
		conn:        conn,
	}
	return &s, nil
}

// connectionPragmas lists the statements run on a new connection. Foreign keys are off by default
// in both sqlite3 and libSQL, and payments cascade with their invoice.
func connectionPragmas(driver string) []string {
	pragmas := []string{"PRAGMA foreign_keys = ON"}
	if driver == "sqlite3" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", sqliteBusyTimeout.Milliseconds()))
	}
	return pragmas
}

func (s *SQLiteDB) Close() error {
	return s.conn.Close()
}

func (s *SQLiteDB) Migrate(ctx context.Context) error {
	for _, stmt := range splitStatements(sqliteSchema) {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteDB) InTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&sqliteStore{queries: s.queries.WithTx(tx)}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *sqliteStore) NextSequence(ctx context.Context, scope string) (int64, error) {
	last, err := s.queries.NextSequence(ctx, db.NextSequenceParams{
		Scope:     scope,
		UpdatedAt: formatTimestamp(time.Now()),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", scope, err)
	}
	return last, nil
}

func (s *sqliteStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	row, err := invoiceRow(inv)
	if err != nil {
		return err
	}

	_, err = s.queries.CreateInvoice(ctx, db.CreateInvoiceParams{
		ID:               row.ID,
		Number:           row.Number,
		ClientName:       row.ClientName,
		ClientPhone:      row.ClientPhone,
		ClientAddress:    row.ClientAddress,
		PostalCode:       row.PostalCode,
		PaymentOption:    row.PaymentOption,
		Category:         row.Category,
		Services:         row.Services,
		NumberOfServices: row.NumberOfServices,
		Discount:         row.Discount,
		Subtotal:         row.Subtotal,
		TotalPrice:       row.TotalPrice,
		PaidAmount:       row.PaidAmount,
		RemainingAmount:  row.RemainingAmount,
		PaymentStatus:    row.PaymentStatus,
		IssuedOn:         row.IssuedOn,
		ReferenceNumber:  row.ReferenceNumber,
		PaidDate:         row.PaidDate,
		RecordedAt:       row.RecordedAt,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	inv.Version = 1
	inv.UpdatedAt = inv.RecordedAt
	return nil
}

func (s *sqliteStore) GetInvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	row, err := s.queries.GetInvoiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice by ID: %w", err)
	}
	return convertDBInvoiceToModel(row)
}

func (s *sqliteStore) GetInvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	row, err := s.queries.GetInvoiceByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice by number: %w", err)
	}
	return convertDBInvoiceToModel(row)
}

func (s *sqliteStore) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	rows, err := s.queries.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	result := make([]*models.Invoice, len(rows))
	for i, row := range rows {
		if result[i], err = convertDBInvoiceToModel(row); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *sqliteStore) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	row, err := invoiceRow(inv)
	if err != nil {
		return err
	}

	affected, err := s.queries.UpdateInvoice(ctx, db.UpdateInvoiceParams{
		ID:               row.ID,
		Version:          row.Version,
		ClientName:       row.ClientName,
		ClientPhone:      row.ClientPhone,
		ClientAddress:    row.ClientAddress,
		PostalCode:       row.PostalCode,
		PaymentOption:    row.PaymentOption,
		Category:         row.Category,
		Services:         row.Services,
		NumberOfServices: row.NumberOfServices,
		Discount:         row.Discount,
		Subtotal:         row.Subtotal,
		TotalPrice:       row.TotalPrice,
		PaidAmount:       row.PaidAmount,
		RemainingAmount:  row.RemainingAmount,
		PaymentStatus:    row.PaymentStatus,
		ReferenceNumber:  row.ReferenceNumber,
		PaidDate:         row.PaidDate,
		UpdatedAt:        row.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetInvoiceByID(ctx, inv.ID); err != nil {
			return err
		}
		return ErrStale
	}

	inv.Version++
	return nil
}

func (s *sqliteStore) DeleteInvoiceByNumber(ctx context.Context, number string) error {
	inv, err := s.GetInvoiceByNumber(ctx, number)
	if err != nil {
		return err
	}
	if err := s.queries.DeletePaymentsByInvoice(ctx, inv.ID); err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}

	affected, err := s.queries.DeleteInvoiceByNumber(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) CreateQuote(ctx context.Context, q *models.Quote) error {
	row, err := quoteRow(q)
	if err != nil {
		return err
	}

	_, err = s.queries.CreateQuote(ctx, db.CreateQuoteParams{
		ID:                row.ID,
		Number:            row.Number,
		ClientName:        row.ClientName,
		ClientPhone:       row.ClientPhone,
		ClientAddress:     row.ClientAddress,
		PostalCode:        row.PostalCode,
		Category:          row.Category,
		Services:          row.Services,
		Materials:         row.Materials,
		NumberOfServices:  row.NumberOfServices,
		NumberOfMaterials: row.NumberOfMaterials,
		Discount:          row.Discount,
		Subtotal:          row.Subtotal,
		TotalPrice:        row.TotalPrice,
		IssuedOn:          row.IssuedOn,
		ValidUntil:        row.ValidUntil,
		Status:            row.Status,
		Notes:             row.Notes,
		RecordedAt:        row.RecordedAt,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create quote: %w", err)
	}

	q.Version = 1
	q.UpdatedAt = q.RecordedAt
	return nil
}

func (s *sqliteStore) GetQuoteByID(ctx context.Context, id string) (*models.Quote, error) {
	row, err := s.queries.GetQuoteByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote by ID: %w", err)
	}
	return convertDBQuoteToModel(row)
}

func (s *sqliteStore) GetQuoteByNumber(ctx context.Context, number string) (*models.Quote, error) {
	row, err := s.queries.GetQuoteByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote by number: %w", err)
	}
	return convertDBQuoteToModel(row)
}

func (s *sqliteStore) ListQuotes(ctx context.Context) ([]*models.Quote, error) {
	rows, err := s.queries.ListQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	result := make([]*models.Quote, len(rows))
	for i, row := range rows {
		if result[i], err = convertDBQuoteToModel(row); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *sqliteStore) UpdateQuote(ctx context.Context, q *models.Quote) error {
	row, err := quoteRow(q)
	if err != nil {
		return err
	}

	affected, err := s.queries.UpdateQuote(ctx, db.UpdateQuoteParams{
		ID:                row.ID,
		Version:           row.Version,
		ClientName:        row.ClientName,
		ClientPhone:       row.ClientPhone,
		ClientAddress:     row.ClientAddress,
		PostalCode:        row.PostalCode,
		Category:          row.Category,
		Services:          row.Services,
		Materials:         row.Materials,
		NumberOfServices:  row.NumberOfServices,
		NumberOfMaterials: row.NumberOfMaterials,
		Discount:          row.Discount,
		Subtotal:          row.Subtotal,
		TotalPrice:        row.TotalPrice,
		ValidUntil:        row.ValidUntil,
		Status:            row.Status,
		Notes:             row.Notes,
		UpdatedAt:         row.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetQuoteByID(ctx, q.ID); err != nil {
			return err
		}
		return ErrStale
	}

	q.Version++
	return nil
}

func (s *sqliteStore) DeleteQuoteByNumber(ctx context.Context, number string) error {
	affected, err := s.queries.DeleteQuoteByNumber(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	row := paymentRow(p)
	err := s.queries.CreatePayment(ctx, db.CreatePaymentParams{
		ID:              row.ID,
		InvoiceID:       row.InvoiceID,
		Amount:          row.Amount,
		IdempotencyKey:  row.IdempotencyKey,
		ReferenceNumber: row.ReferenceNumber,
		PaidOn:          row.PaidOn,
		RecordedAt:      row.RecordedAt,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (s *sqliteStore) GetPaymentByKey(ctx context.Context, key string) (*models.Payment, error) {
	row, err := s.queries.GetPaymentByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment by key: %w", err)
	}
	return convertDBPaymentToModel(row)
}

func (s *sqliteStore) ListPayments(ctx context.Context, invoiceID string) ([]*models.Payment, error) {
	rows, err := s.queries.ListPaymentsByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	result := make([]*models.Payment, len(rows))
	for i, row := range rows {
		if result[i], err = convertDBPaymentToModel(row); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// isUniqueViolation matches the constraint message shared by the sqlite3 and libsql drivers.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func splitStatements(schema string) []string {
	var stmts []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jesses-code-adventures/billing/internal/db"
	"github.com/jesses-code-adventures/billing/internal/models"
)

//go:embed schema/postgres.sql
var postgresSchema string

const pgUniqueViolation = "23505"

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresDB struct {
	postgresStore
	pool *pgxpool.Pool
}

type postgresStore struct {
	q pgxQuerier
}

func NewPostgresDB(ctx context.Context, connStr string) (*PostgresDB, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 1 * time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &PostgresDB{postgresStore: postgresStore{q: pool}, pool: pool}, nil
}

func (p *PostgresDB) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresDB) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (p *PostgresDB) InTx(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(&postgresStore{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const pgInvoiceColumns = `id::text, number, client_name, client_phone, client_address, postal_code, payment_option,
	category, services::text, number_of_services, discount::text, subtotal::text, total_price::text,
	paid_amount::text, remaining_amount::text, payment_status, issued_on::text, reference_number,
	paid_date::text, version, recorded_at, updated_at`

const pgQuoteColumns = `id::text, number, client_name, client_phone, client_address, postal_code, category,
	services::text, materials::text, number_of_services, number_of_materials, discount::text,
	subtotal::text, total_price::text, issued_on::text, valid_until::text, status, notes, version,
	recorded_at, updated_at`

const pgPaymentColumns = `id::text, invoice_id::text, amount::text, idempotency_key, reference_number,
	paid_on::text, recorded_at`

func (s *postgresStore) NextSequence(ctx context.Context, scope string) (int64, error) {
	// The upsert holds the counter row lock until the surrounding transaction ends.
	var last int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO document_sequences (scope, last_value, updated_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (scope) DO UPDATE
		SET last_value = document_sequences.last_value + 1, updated_at = NOW()
		RETURNING last_value`, scope).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", scope, err)
	}
	return last, nil
}

func (s *postgresStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	row, err := invoiceRow(inv)
	if err != nil {
		return err
	}

	var id string
	err = s.q.QueryRow(ctx, `
		INSERT INTO invoices (id, number, client_name, client_phone, client_address, postal_code,
			payment_option, category, services, number_of_services, discount, subtotal, total_price,
			paid_amount, remaining_amount, payment_status, issued_on, reference_number, paid_date,
			version, recorded_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, 1, $20, $20)
		ON CONFLICT (number) DO NOTHING
		RETURNING id::text`,
		row.ID, row.Number, row.ClientName, row.ClientPhone, row.ClientAddress, row.PostalCode,
		row.PaymentOption, row.Category, row.Services, row.NumberOfServices, row.Discount,
		row.Subtotal, row.TotalPrice, row.PaidAmount, row.RemainingAmount, row.PaymentStatus,
		row.IssuedOn, row.ReferenceNumber, row.PaidDate, inv.RecordedAt.UTC(),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isPgUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	inv.Version = 1
	inv.UpdatedAt = inv.RecordedAt
	return nil
}

func (s *postgresStore) GetInvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	inv, err := scanPgInvoice(s.q.QueryRow(ctx, `SELECT `+pgInvoiceColumns+` FROM invoices WHERE id::text = $1`, id))
	if err != nil {
		return nil, pgNotFound(err, "failed to get invoice by ID")
	}
	return inv, nil
}

func (s *postgresStore) GetInvoiceByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	inv, err := scanPgInvoice(s.q.QueryRow(ctx, `SELECT `+pgInvoiceColumns+` FROM invoices WHERE number = $1`, number))
	if err != nil {
		return nil, pgNotFound(err, "failed to get invoice by number")
	}
	return inv, nil
}

func (s *postgresStore) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	rows, err := s.q.Query(ctx, `SELECT `+pgInvoiceColumns+` FROM invoices ORDER BY issued_on DESC, number DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var result []*models.Invoice
	for rows.Next() {
		inv, err := scanPgInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		result = append(result, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return result, nil
}

func (s *postgresStore) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	row, err := invoiceRow(inv)
	if err != nil {
		return err
	}

	tag, err := s.q.Exec(ctx, `
		UPDATE invoices
		SET client_name = $3, client_phone = $4, client_address = $5, postal_code = $6,
			payment_option = $7, category = $8, services = $9, number_of_services = $10,
			discount = $11, subtotal = $12, total_price = $13, paid_amount = $14,
			remaining_amount = $15, payment_status = $16, reference_number = $17, paid_date = $18,
			updated_at = $19, version = version + 1
		WHERE id::text = $1 AND version = $2`,
		row.ID, row.Version, row.ClientName, row.ClientPhone, row.ClientAddress, row.PostalCode,
		row.PaymentOption, row.Category, row.Services, row.NumberOfServices, row.Discount,
		row.Subtotal, row.TotalPrice, row.PaidAmount, row.RemainingAmount, row.PaymentStatus,
		row.ReferenceNumber, row.PaidDate, inv.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetInvoiceByID(ctx, inv.ID); err != nil {
			return err
		}
		return ErrStale
	}

	inv.Version++
	return nil
}

func (s *postgresStore) DeleteInvoiceByNumber(ctx context.Context, number string) error {
	// payments go with the invoice through ON DELETE CASCADE
	tag, err := s.q.Exec(ctx, `DELETE FROM invoices WHERE number = $1`, number)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) CreateQuote(ctx context.Context, q *models.Quote) error {
	row, err := quoteRow(q)
	if err != nil {
		return err
	}

	var id string
	err = s.q.QueryRow(ctx, `
		INSERT INTO quotes (id, number, client_name, client_phone, client_address, postal_code,
			category, services, materials, number_of_services, number_of_materials, discount,
			subtotal, total_price, issued_on, valid_until, status, notes, version, recorded_at,
			updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 1, $19, $19)
		ON CONFLICT (number) DO NOTHING
		RETURNING id::text`,
		row.ID, row.Number, row.ClientName, row.ClientPhone, row.ClientAddress, row.PostalCode,
		row.Category, row.Services, row.Materials, row.NumberOfServices, row.NumberOfMaterials,
		row.Discount, row.Subtotal, row.TotalPrice, row.IssuedOn, row.ValidUntil, row.Status,
		row.Notes, q.RecordedAt.UTC(),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isPgUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create quote: %w", err)
	}

	q.Version = 1
	q.UpdatedAt = q.RecordedAt
	return nil
}

func (s *postgresStore) GetQuoteByID(ctx context.Context, id string) (*models.Quote, error) {
	q, err := scanPgQuote(s.q.QueryRow(ctx, `SELECT `+pgQuoteColumns+` FROM quotes WHERE id::text = $1`, id))
	if err != nil {
		return nil, pgNotFound(err, "failed to get quote by ID")
	}
	return q, nil
}

func (s *postgresStore) GetQuoteByNumber(ctx context.Context, number string) (*models.Quote, error) {
	q, err := scanPgQuote(s.q.QueryRow(ctx, `SELECT `+pgQuoteColumns+` FROM quotes WHERE number = $1`, number))
	if err != nil {
		return nil, pgNotFound(err, "failed to get quote by number")
	}
	return q, nil
}

func (s *postgresStore) ListQuotes(ctx context.Context) ([]*models.Quote, error) {
	rows, err := s.q.Query(ctx, `SELECT `+pgQuoteColumns+` FROM quotes ORDER BY issued_on DESC, number DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var result []*models.Quote
	for rows.Next() {
		q, err := scanPgQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		result = append(result, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	return result, nil
}

func (s *postgresStore) UpdateQuote(ctx context.Context, q *models.Quote) error {
	row, err := quoteRow(q)
	if err != nil {
		return err
	}

	tag, err := s.q.Exec(ctx, `
		UPDATE quotes
		SET client_name = $3, client_phone = $4, client_address = $5, postal_code = $6,
			category = $7, services = $8, materials = $9, number_of_services = $10,
			number_of_materials = $11, discount = $12, subtotal = $13, total_price = $14,
			valid_until = $15, status = $16, notes = $17, updated_at = $18, version = version + 1
		WHERE id::text = $1 AND version = $2`,
		row.ID, row.Version, row.ClientName, row.ClientPhone, row.ClientAddress, row.PostalCode,
		row.Category, row.Services, row.Materials, row.NumberOfServices, row.NumberOfMaterials,
		row.Discount, row.Subtotal, row.TotalPrice, row.ValidUntil, row.Status, row.Notes,
		q.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetQuoteByID(ctx, q.ID); err != nil {
			return err
		}
		return ErrStale
	}

	q.Version++
	return nil
}

func (s *postgresStore) DeleteQuoteByNumber(ctx context.Context, number string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM quotes WHERE number = $1`, number)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	row := paymentRow(p)
	_, err := s.q.Exec(ctx, `
		INSERT INTO payments (id, invoice_id, amount, idempotency_key, reference_number, paid_on, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		row.ID, row.InvoiceID, row.Amount, row.IdempotencyKey, row.ReferenceNumber, row.PaidOn,
		p.RecordedAt.UTC(),
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (s *postgresStore) GetPaymentByKey(ctx context.Context, key string) (*models.Payment, error) {
	p, err := scanPgPayment(s.q.QueryRow(ctx, `SELECT `+pgPaymentColumns+` FROM payments WHERE idempotency_key = $1`, key))
	if err != nil {
		return nil, pgNotFound(err, "failed to get payment by key")
	}
	return p, nil
}

func (s *postgresStore) ListPayments(ctx context.Context, invoiceID string) ([]*models.Payment, error) {
	rows, err := s.q.Query(ctx, `SELECT `+pgPaymentColumns+` FROM payments WHERE invoice_id::text = $1 ORDER BY recorded_at ASC`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var result []*models.Payment
	for rows.Next() {
		p, err := scanPgPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return result, nil
}

// scanPgInvoice reads the text-cast columns into the shared row type and converts it. Timestamps
// come back as timestamptz and are formatted so the shared converter can read them.
func scanPgInvoice(row pgx.Row) (*models.Invoice, error) {
	var (
		r                     db.Invoice
		recordedAt, updatedAt time.Time
	)
	err := row.Scan(
		&r.ID, &r.Number, &r.ClientName, &r.ClientPhone, &r.ClientAddress, &r.PostalCode,
		&r.PaymentOption, &r.Category, &r.Services, &r.NumberOfServices, &r.Discount, &r.Subtotal,
		&r.TotalPrice, &r.PaidAmount, &r.RemainingAmount, &r.PaymentStatus, &r.IssuedOn,
		&r.ReferenceNumber, &r.PaidDate, &r.Version, &recordedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.RecordedAt = formatTimestamp(recordedAt)
	r.UpdatedAt = formatTimestamp(updatedAt)
	return convertDBInvoiceToModel(r)
}

func scanPgQuote(row pgx.Row) (*models.Quote, error) {
	var (
		r                     db.Quote
		recordedAt, updatedAt time.Time
	)
	err := row.Scan(
		&r.ID, &r.Number, &r.ClientName, &r.ClientPhone, &r.ClientAddress, &r.PostalCode,
		&r.Category, &r.Services, &r.Materials, &r.NumberOfServices, &r.NumberOfMaterials,
		&r.Discount, &r.Subtotal, &r.TotalPrice, &r.IssuedOn, &r.ValidUntil, &r.Status, &r.Notes,
		&r.Version, &recordedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.RecordedAt = formatTimestamp(recordedAt)
	r.UpdatedAt = formatTimestamp(updatedAt)
	return convertDBQuoteToModel(r)
}

func scanPgPayment(row pgx.Row) (*models.Payment, error) {
	var (
		r          db.Payment
		recordedAt time.Time
	)
	err := row.Scan(&r.ID, &r.InvoiceID, &r.Amount, &r.IdempotencyKey, &r.ReferenceNumber, &r.PaidOn, &recordedAt)
	if err != nil {
		return nil, err
	}
	r.RecordedAt = formatTimestamp(recordedAt)
	return convertDBPaymentToModel(r)
}

func pgNotFound(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

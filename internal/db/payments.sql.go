package db

import (
	"context"
	"database/sql"
)

const createPayment = `-- name: CreatePayment :exec
INSERT INTO payments (id, invoice_id, amount, idempotency_key, reference_number, paid_on, recorded_at)
VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7)
`

type CreatePaymentParams struct {
	ID              string
	InvoiceID       string
	Amount          string
	IdempotencyKey  sql.NullString
	ReferenceNumber sql.NullString
	PaidOn          string
	RecordedAt      string
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) error {
	_, err := q.db.ExecContext(ctx, createPayment,
		arg.ID,
		arg.InvoiceID,
		arg.Amount,
		arg.IdempotencyKey,
		arg.ReferenceNumber,
		arg.PaidOn,
		arg.RecordedAt,
	)
	return err
}

const getPaymentByKey = `-- name: GetPaymentByKey :one
SELECT id, invoice_id, amount, idempotency_key, reference_number, paid_on, recorded_at FROM payments
WHERE idempotency_key = ?1
`

func (q *Queries) GetPaymentByKey(ctx context.Context, key string) (Payment, error) {
	row := q.db.QueryRowContext(ctx, getPaymentByKey, key)
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.InvoiceID,
		&i.Amount,
		&i.IdempotencyKey,
		&i.ReferenceNumber,
		&i.PaidOn,
		&i.RecordedAt,
	)
	return i, err
}

const listPaymentsByInvoice = `-- name: ListPaymentsByInvoice :many
SELECT id, invoice_id, amount, idempotency_key, reference_number, paid_on, recorded_at FROM payments
WHERE invoice_id = ?1
ORDER BY recorded_at ASC
`

func (q *Queries) ListPaymentsByInvoice(ctx context.Context, invoiceID string) ([]Payment, error) {
	rows, err := q.db.QueryContext(ctx, listPaymentsByInvoice, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Payment
	for rows.Next() {
		var i Payment
		if err := rows.Scan(
			&i.ID,
			&i.InvoiceID,
			&i.Amount,
			&i.IdempotencyKey,
			&i.ReferenceNumber,
			&i.PaidOn,
			&i.RecordedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deletePaymentsByInvoice = `-- name: DeletePaymentsByInvoice :exec
DELETE FROM payments
WHERE invoice_id = ?1
`

func (q *Queries) DeletePaymentsByInvoice(ctx context.Context, invoiceID string) error {
	_, err := q.db.ExecContext(ctx, deletePaymentsByInvoice, invoiceID)
	return err
}

package db

import (
	"context"
	"database/sql"
)

const invoiceColumns = `id, number, client_name, client_phone, client_address, postal_code, payment_option, category,
    services, number_of_services, discount, subtotal, total_price, paid_amount, remaining_amount,
    payment_status, issued_on, reference_number, paid_date, version, recorded_at, updated_at`

const createInvoice = `-- name: CreateInvoice :one
INSERT INTO invoices (` + invoiceColumns + `)
VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10, ?11, ?12, ?13, ?14, ?15, ?16, ?17, ?18, ?19, 1, ?20, ?20)
ON CONFLICT (number) DO NOTHING
RETURNING id
`

type CreateInvoiceParams struct {
	ID               string
	Number           string
	ClientName       string
	ClientPhone      sql.NullString
	ClientAddress    string
	PostalCode       string
	PaymentOption    string
	Category         string
	Services         string
	NumberOfServices int64
	Discount         string
	Subtotal         string
	TotalPrice       string
	PaidAmount       string
	RemainingAmount  string
	PaymentStatus    string
	IssuedOn         string
	ReferenceNumber  sql.NullString
	PaidDate         sql.NullString
	RecordedAt       string
}

// CreateInvoice returns sql.ErrNoRows when the number is already taken.
func (q *Queries) CreateInvoice(ctx context.Context, arg CreateInvoiceParams) (string, error) {
	row := q.db.QueryRowContext(ctx, createInvoice,
		arg.ID,
		arg.Number,
		arg.ClientName,
		arg.ClientPhone,
		arg.ClientAddress,
		arg.PostalCode,
		arg.PaymentOption,
		arg.Category,
		arg.Services,
		arg.NumberOfServices,
		arg.Discount,
		arg.Subtotal,
		arg.TotalPrice,
		arg.PaidAmount,
		arg.RemainingAmount,
		arg.PaymentStatus,
		arg.IssuedOn,
		arg.ReferenceNumber,
		arg.PaidDate,
		arg.RecordedAt,
	)
	var id string
	err := row.Scan(&id)
	return id, err
}

const getInvoiceByID = `-- name: GetInvoiceByID :one
SELECT ` + invoiceColumns + ` FROM invoices
WHERE id = ?1
`

func (q *Queries) GetInvoiceByID(ctx context.Context, id string) (Invoice, error) {
	row := q.db.QueryRowContext(ctx, getInvoiceByID, id)
	return scanInvoice(row)
}

const getInvoiceByNumber = `-- name: GetInvoiceByNumber :one
SELECT ` + invoiceColumns + ` FROM invoices
WHERE number = ?1
`

func (q *Queries) GetInvoiceByNumber(ctx context.Context, number string) (Invoice, error) {
	row := q.db.QueryRowContext(ctx, getInvoiceByNumber, number)
	return scanInvoice(row)
}

const listInvoices = `-- name: ListInvoices :many
SELECT ` + invoiceColumns + ` FROM invoices
ORDER BY issued_on DESC, number DESC
`

func (q *Queries) ListInvoices(ctx context.Context) ([]Invoice, error) {
	rows, err := q.db.QueryContext(ctx, listInvoices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Invoice
	for rows.Next() {
		i, err := scanInvoice(rows)
		if err != nil {
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

const updateInvoice = `-- name: UpdateInvoice :execrows
UPDATE invoices
SET client_name = ?3,
    client_phone = ?4,
    client_address = ?5,
    postal_code = ?6,
    payment_option = ?7,
    category = ?8,
    services = ?9,
    number_of_services = ?10,
    discount = ?11,
    subtotal = ?12,
    total_price = ?13,
    paid_amount = ?14,
    remaining_amount = ?15,
    payment_status = ?16,
    reference_number = ?17,
    paid_date = ?18,
    updated_at = ?19,
    version = version + 1
WHERE id = ?1 AND version = ?2
`

type UpdateInvoiceParams struct {
	ID               string
	Version          int64
	ClientName       string
	ClientPhone      sql.NullString
	ClientAddress    string
	PostalCode       string
	PaymentOption    string
	Category         string
	Services         string
	NumberOfServices int64
	Discount         string
	Subtotal         string
	TotalPrice       string
	PaidAmount       string
	RemainingAmount  string
	PaymentStatus    string
	ReferenceNumber  sql.NullString
	PaidDate         sql.NullString
	UpdatedAt        string
}

func (q *Queries) UpdateInvoice(ctx context.Context, arg UpdateInvoiceParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateInvoice,
		arg.ID,
		arg.Version,
		arg.ClientName,
		arg.ClientPhone,
		arg.ClientAddress,
		arg.PostalCode,
		arg.PaymentOption,
		arg.Category,
		arg.Services,
		arg.NumberOfServices,
		arg.Discount,
		arg.Subtotal,
		arg.TotalPrice,
		arg.PaidAmount,
		arg.RemainingAmount,
		arg.PaymentStatus,
		arg.ReferenceNumber,
		arg.PaidDate,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteInvoiceByNumber = `-- name: DeleteInvoiceByNumber :execrows
DELETE FROM invoices
WHERE number = ?1
`

func (q *Queries) DeleteInvoiceByNumber(ctx context.Context, number string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteInvoiceByNumber, number)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (Invoice, error) {
	var i Invoice
	err := row.Scan(
		&i.ID,
		&i.Number,
		&i.ClientName,
		&i.ClientPhone,
		&i.ClientAddress,
		&i.PostalCode,
		&i.PaymentOption,
		&i.Category,
		&i.Services,
		&i.NumberOfServices,
		&i.Discount,
		&i.Subtotal,
		&i.TotalPrice,
		&i.PaidAmount,
		&i.RemainingAmount,
		&i.PaymentStatus,
		&i.IssuedOn,
		&i.ReferenceNumber,
		&i.PaidDate,
		&i.Version,
		&i.RecordedAt,
		&i.UpdatedAt,
	)
	return i, err
}

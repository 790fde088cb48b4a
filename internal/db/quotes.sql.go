package db

import (
	"context"
	"database/sql"
)

const quoteColumns = `id, number, client_name, client_phone, client_address, postal_code, category,
    services, materials, number_of_services, number_of_materials, discount, subtotal, total_price,
    issued_on, valid_until, status, notes, version, recorded_at, updated_at`

const createQuote = `-- name: CreateQuote :one
INSERT INTO quotes (` + quoteColumns + `)
VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10, ?11, ?12, ?13, ?14, ?15, ?16, ?17, ?18, 1, ?19, ?19)
ON CONFLICT (number) DO NOTHING
RETURNING id
`

type CreateQuoteParams struct {
	ID                string
	Number            string
	ClientName        string
	ClientPhone       sql.NullString
	ClientAddress     sql.NullString
	PostalCode        string
	Category          string
	Services          string
	Materials         string
	NumberOfServices  int64
	NumberOfMaterials int64
	Discount          string
	Subtotal          string
	TotalPrice        string
	IssuedOn          string
	ValidUntil        sql.NullString
	Status            string
	Notes             string
	RecordedAt        string
}

// CreateQuote returns sql.ErrNoRows when the number is already taken.
func (q *Queries) CreateQuote(ctx context.Context, arg CreateQuoteParams) (string, error) {
	row := q.db.QueryRowContext(ctx, createQuote,
		arg.ID,
		arg.Number,
		arg.ClientName,
		arg.ClientPhone,
		arg.ClientAddress,
		arg.PostalCode,
		arg.Category,
		arg.Services,
		arg.Materials,
		arg.NumberOfServices,
		arg.NumberOfMaterials,
		arg.Discount,
		arg.Subtotal,
		arg.TotalPrice,
		arg.IssuedOn,
		arg.ValidUntil,
		arg.Status,
		arg.Notes,
		arg.RecordedAt,
	)
	var id string
	err := row.Scan(&id)
	return id, err
}

const getQuoteByID = `-- name: GetQuoteByID :one
SELECT ` + quoteColumns + ` FROM quotes
WHERE id = ?1
`

func (q *Queries) GetQuoteByID(ctx context.Context, id string) (Quote, error) {
	row := q.db.QueryRowContext(ctx, getQuoteByID, id)
	return scanQuote(row)
}

const getQuoteByNumber = `-- name: GetQuoteByNumber :one
SELECT ` + quoteColumns + ` FROM quotes
WHERE number = ?1
`

func (q *Queries) GetQuoteByNumber(ctx context.Context, number string) (Quote, error) {
	row := q.db.QueryRowContext(ctx, getQuoteByNumber, number)
	return scanQuote(row)
}

const listQuotes = `-- name: ListQuotes :many
SELECT ` + quoteColumns + ` FROM quotes
ORDER BY issued_on DESC, number DESC
`

func (q *Queries) ListQuotes(ctx context.Context) ([]Quote, error) {
	rows, err := q.db.QueryContext(ctx, listQuotes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Quote
	for rows.Next() {
		i, err := scanQuote(rows)
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

const updateQuote = `-- name: UpdateQuote :execrows
UPDATE quotes
SET client_name = ?3,
    client_phone = ?4,
    client_address = ?5,
    postal_code = ?6,
    category = ?7,
    services = ?8,
    materials = ?9,
    number_of_services = ?10,
    number_of_materials = ?11,
    discount = ?12,
    subtotal = ?13,
    total_price = ?14,
    valid_until = ?15,
    status = ?16,
    notes = ?17,
    updated_at = ?18,
    version = version + 1
WHERE id = ?1 AND version = ?2
`

type UpdateQuoteParams struct {
	ID                string
	Version           int64
	ClientName        string
	ClientPhone       sql.NullString
	ClientAddress     sql.NullString
	PostalCode        string
	Category          string
	Services          string
	Materials         string
	NumberOfServices  int64
	NumberOfMaterials int64
	Discount          string
	Subtotal          string
	TotalPrice        string
	ValidUntil        sql.NullString
	Status            string
	Notes             string
	UpdatedAt         string
}

func (q *Queries) UpdateQuote(ctx context.Context, arg UpdateQuoteParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateQuote,
		arg.ID,
		arg.Version,
		arg.ClientName,
		arg.ClientPhone,
		arg.ClientAddress,
		arg.PostalCode,
		arg.Category,
		arg.Services,
		arg.Materials,
		arg.NumberOfServices,
		arg.NumberOfMaterials,
		arg.Discount,
		arg.Subtotal,
		arg.TotalPrice,
		arg.ValidUntil,
		arg.Status,
		arg.Notes,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteQuoteByNumber = `-- name: DeleteQuoteByNumber :execrows
DELETE FROM quotes
WHERE number = ?1
`

func (q *Queries) DeleteQuoteByNumber(ctx context.Context, number string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteQuoteByNumber, number)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanQuote(row rowScanner) (Quote, error) {
	var i Quote
	err := row.Scan(
		&i.ID,
		&i.Number,
		&i.ClientName,
		&i.ClientPhone,
		&i.ClientAddress,
		&i.PostalCode,
		&i.Category,
		&i.Services,
		&i.Materials,
		&i.NumberOfServices,
		&i.NumberOfMaterials,
		&i.Discount,
		&i.Subtotal,
		&i.TotalPrice,
		&i.IssuedOn,
		&i.ValidUntil,
		&i.Status,
		&i.Notes,
		&i.Version,
		&i.RecordedAt,
		&i.UpdatedAt,
	)
	return i, err
}

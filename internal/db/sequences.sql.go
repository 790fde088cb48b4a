package db

import (
	"context"
)

const nextSequence = `-- name: NextSequence :one
INSERT INTO document_sequences (scope, last_value, updated_at)
VALUES (?1, 1, ?2)
ON CONFLICT (scope) DO UPDATE
SET last_value = document_sequences.last_value + 1,
    updated_at = excluded.updated_at
RETURNING last_value
`

type NextSequenceParams struct {
	Scope     string
	UpdatedAt string
}

func (q *Queries) NextSequence(ctx context.Context, arg NextSequenceParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, nextSequence, arg.Scope, arg.UpdatedAt)
	var last_value int64
	err := row.Scan(&last_value)
	return last_value, err
}

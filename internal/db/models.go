package db

import (
	"database/sql"
)

type DocumentSequence struct {
	Scope     string
	LastValue int64
	UpdatedAt string
}

type Invoice struct {
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
	Version          int64
	RecordedAt       string
	UpdatedAt        string
}

type Quote struct {
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
	Version           int64
	RecordedAt        string
	UpdatedAt         string
}

type Payment struct {
	ID              string
	InvoiceID       string
	Amount          string
	IdempotencyKey  sql.NullString
	ReferenceNumber sql.NullString
	PaidOn          string
	RecordedAt      string
}

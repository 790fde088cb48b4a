package database

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jesses-code-adventures/billing/internal/models"
)

// Set BILLING_TEST_POSTGRES_URL to a disposable database to run these.
func newTestPostgres(t *testing.T) *PostgresDB {
	t.Helper()
	url := os.Getenv("BILLING_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("BILLING_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	store, err := NewPostgresDB(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	for _, table := range []string{"payments", "invoices", "quotes", "document_sequences"} {
		if _, err := store.pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("failed to clear %s: %v", table, err)
		}
	}
	return store
}

func TestPostgresInvoiceLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestPostgres(t)

	var number string
	err := store.InTx(ctx, func(q Querier) error {
		seq, err := q.NextSequence(ctx, "INV-0325-1")
		if err != nil {
			return err
		}
		if seq != 1 {
			t.Errorf("first sequence = %d", seq)
		}
		inv := testInvoice("INV-0325-101")
		number = inv.Number
		return q.CreateInvoice(ctx, inv)
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := store.CreateInvoice(ctx, testInvoice(number)); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	inv, err := store.GetInvoiceByNumber(ctx, number)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(inv.Services) != 2 || inv.TotalPrice.String() != "308.75" {
		t.Errorf("unexpected invoice %+v", inv)
	}

	stale := *inv
	inv.PaymentStatus = models.PaymentPartial
	if err := store.UpdateInvoice(ctx, inv); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := store.UpdateInvoice(ctx, &stale); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}

	if err := store.DeleteInvoiceByNumber(ctx, number); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.GetInvoiceByNumber(ctx, number); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

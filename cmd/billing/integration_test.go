package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jesses-code-adventures/billing/internal/config"
	"github.com/jesses-code-adventures/billing/internal/database"
	"github.com/jesses-code-adventures/billing/internal/errs"
	"github.com/jesses-code-adventures/billing/internal/logger"
	"github.com/jesses-code-adventures/billing/internal/service"
)

func TestIntegrationBillingCommands(t *testing.T) {
	logger.Discard()
	tempDir := t.TempDir()

	cfg := &config.Config{
		DatabaseURL:    filepath.Join(tempDir, "test.db"),
		DatabaseDriver: "sqlite3",
	}
	db, err := database.NewDB(cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	a := &app{store: db, docs: service.NewDocumentService(db)}
	ctx := context.Background()

	// Flags keep their values between executions, so every run gets a fresh command tree.
	execute := func(args ...string) (string, error) {
		var err error
		output := captureOutput(func() {
			rootCmd := newRootCmd(a)
			rootCmd.SetArgs(args)
			err = rootCmd.ExecuteContext(ctx)
		})
		return output, err
	}

	t.Run("Migrate", func(t *testing.T) {
		output, err := execute("migrate")
		if err != nil {
			t.Fatalf("migrate failed: %v", err)
		}
		if !strings.Contains(output, "Database schema is up to date") {
			t.Errorf("Expected migrate confirmation, got: %s", output)
		}
	})

	t.Run("Create Invoice", func(t *testing.T) {
		output, err := execute("invoices", "create",
			"-c", "Harbour Cafe", "-a", "1 Wharf St", "-p", "2000",
			"--payment-option", "Bank transfer", "--category", "Plumbing",
			"-s", "Labour:10:2", "-s", "Parts:5", "--discount", "5", "-d", "2025-03-03")
		if err != nil {
			t.Fatalf("invoices create failed: %v", err)
		}
		if !strings.Contains(output, "Created invoice INV-0325-101 (Total: $20.00)") {
			t.Errorf("Unexpected create output: %s", output)
		}
	})

	t.Run("Create Invoice Validation", func(t *testing.T) {
		_, err := execute("invoices", "create", "-c", "No Services", "-a", "x", "-p", "1",
			"--payment-option", "Cash", "--category", "Misc", "-d", "2025-03-03")
		if !errors.Is(err, errs.Validation) {
			t.Errorf("Expected a validation error, got %v", err)
		}
		if msg := describeError(err); !strings.Contains(msg, "at least one service is required") {
			t.Errorf("Unexpected error message: %s", msg)
		}
	})

	t.Run("List Invoices", func(t *testing.T) {
		output, err := execute("invoices", "list", "-v")
		if err != nil {
			t.Fatalf("invoices list failed: %v", err)
		}
		if !strings.Contains(output, "INV-0325-101 | 2025-03-03 | Harbour Cafe | $20.00 | OPEN") {
			t.Errorf("Unexpected list output: %s", output)
		}
		if !strings.Contains(output, "Parts: 1 x $5.00") {
			t.Errorf("Expected default quantity in verbose output: %s", output)
		}
	})

	t.Run("Pay Invoice", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			output, err := execute("invoices", "pay", "INV-0325-101", "--amount", "20", "--reference", "BANK-1", "--key", "txn-1")
			if err != nil {
				t.Fatalf("invoices pay failed: %v", err)
			}
			if !strings.Contains(output, "paid $20.00, remaining $0.00 (PAID)") {
				t.Errorf("Unexpected pay output on attempt %d: %s", i+1, output)
			}
		}

		output, err := execute("invoices", "payments", "INV-0325-101")
		if err != nil {
			t.Fatalf("invoices payments failed: %v", err)
		}
		if strings.Count(output, "BANK-1") != 1 {
			t.Errorf("Expected exactly one payment, got: %s", output)
		}
	})

	t.Run("Edit Invoice", func(t *testing.T) {
		output, err := execute("invoices", "edit", "INV-0325-101", "-s", "Labour:15:2")
		if err != nil {
			t.Fatalf("invoices edit failed: %v", err)
		}
		if !strings.Contains(output, "version 3") || !strings.Contains(output, "$25.00 | PARTIAL") {
			t.Errorf("Unexpected edit output: %s", output)
		}

		_, err = execute("invoices", "edit", "INV-0325-101", "--version", "1", "-c", "Stale Client")
		if !errors.Is(err, errs.Conflict) {
			t.Errorf("Expected a conflict for a stale version, got %v", err)
		}
	})

	t.Run("Export Invoices", func(t *testing.T) {
		output, err := execute("invoices", "export")
		if err != nil {
			t.Fatalf("invoices export failed: %v", err)
		}
		if !strings.HasPrefix(output, "Number,Date,Client") || !strings.Contains(output, "INV-0325-101") {
			t.Errorf("Unexpected export output: %s", output)
		}
	})

	t.Run("Invoice PDF", func(t *testing.T) {
		pdfPath := filepath.Join(tempDir, "invoice.pdf")
		output, err := execute("invoices", "pdf", "INV-0325-101", "-o", pdfPath)
		if err != nil {
			t.Fatalf("invoices pdf failed: %v", err)
		}
		if !strings.Contains(output, "Generated invoice") {
			t.Errorf("Unexpected pdf output: %s", output)
		}

		content, err := os.ReadFile(pdfPath)
		if err != nil {
			t.Fatalf("Failed to read PDF: %v", err)
		}
		if !bytes.HasPrefix(content, []byte("%PDF")) {
			t.Errorf("Output is not a PDF")
		}
	})

	t.Run("Quotes", func(t *testing.T) {
		output, err := execute("quotes", "create",
			"-c", "Ridge Builders", "-a", "40 Ridge Rd", "-p", "2155", "--category", "Commercial",
			"-s", "Design:100", "-m", "Pipe:20:3", "--discount", "10", "-d", "2025-03-03")
		if err != nil {
			t.Fatalf("quotes create failed: %v", err)
		}
		if !strings.Contains(output, "Created quote QTN-0325-101 (Total: $150.00)") {
			t.Errorf("Unexpected create output: %s", output)
		}

		output, err = execute("quotes", "edit", "QTN-0325-101", "--status", "ACCEPTED")
		if err != nil {
			t.Fatalf("quotes edit failed: %v", err)
		}
		if !strings.Contains(output, "ACCEPTED") {
			t.Errorf("Unexpected edit output: %s", output)
		}

		output, err = execute("quotes", "convert", "QTN-0325-101", "--payment-option", "Card", "-d", "2025-03-04")
		if err != nil {
			t.Fatalf("quotes convert failed: %v", err)
		}
		if !strings.Contains(output, "Created invoice INV-0325-102 from quote QTN-0325-101 (Total: $150.00)") {
			t.Errorf("Unexpected convert output: %s", output)
		}

		output, err = execute("invoices", "get", "INV-0325-102")
		if err != nil {
			t.Fatalf("invoices get failed: %v", err)
		}
		if !strings.Contains(output, "(Material) Pipe: 3 x $20.00") {
			t.Errorf("Expected converted material line, got: %s", output)
		}
	})

	t.Run("Delete Invoice", func(t *testing.T) {
		output, err := execute("invoices", "delete", "INV-0325-102")
		if err != nil {
			t.Fatalf("invoices delete failed: %v", err)
		}
		if !strings.Contains(output, "Deleted invoice INV-0325-102") {
			t.Errorf("Unexpected delete output: %s", output)
		}

		_, err = execute("invoices", "get", "INV-0325-102")
		if !errors.Is(err, errs.NotFound) {
			t.Fatalf("Expected not found, got %v", err)
		}
		if msg := describeError(err); msg != "invoice INV-0325-102 not found (not_found)" {
			t.Errorf("Unexpected error message: %s", msg)
		}
	})
}

func TestParseItems(t *testing.T) {
	items := parseItems([]string{"Call out", "Labour:95.50", "Pipe: 3/4\":12:4"})

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Name != "Call out" || items[0].Price != nil {
		t.Errorf("unexpected first item %+v", items[0])
	}
	if items[1].Price != "95.50" || items[1].Quantity != nil {
		t.Errorf("unexpected second item %+v", items[1])
	}
	if items[2].Name != "Pipe: 3/4\"" || items[2].Price != "12" || items[2].Quantity != "4" {
		t.Errorf("unexpected third item %+v", items[2])
	}
}

func TestDescribeErrorHidesInternals(t *testing.T) {
	err := errs.NewStoreFailure("ListInvoices", errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	if msg := describeError(err); strings.Contains(msg, "10.0.0.5") {
		t.Errorf("internal detail leaked: %s", msg)
	}

	plain := errors.New("unknown flag: --bogus")
	if msg := describeError(plain); msg != plain.Error() {
		t.Errorf("usage errors should pass through, got %s", msg)
	}
}

// Helper function to capture stdout
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf strings.Builder
	io.Copy(&buf, r)
	return buf.String()
}

package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindMatching(t *testing.T) {
	err := fmt.Errorf("failed to load invoice: %w", NewNotFound("GetInvoice", "invoice INV-0325-101 not found"))

	if !errors.Is(err, NotFound) {
		t.Errorf("expected errors.Is(err, NotFound) to be true")
	}
	if errors.Is(err, Conflict) {
		t.Errorf("expected errors.Is(err, Conflict) to be false")
	}
	if got := KindOf(err); got != KindNotFound {
		t.Errorf("KindOf = %s, want %s", got, KindNotFound)
	}
}

func TestPublicHidesInternalErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "plain error",
			err:      errors.New("pq: connection reset by peer"),
			wantKind: KindInternal,
			wantMsg:  "internal error",
		},
		{
			name:     "store failure keeps the cause private",
			err:      NewStoreFailure("ListInvoices", errors.New("dial tcp 10.0.0.1:5432: i/o timeout")),
			wantKind: KindStoreFailure,
			wantMsg:  "record store unavailable, try again",
		},
		{
			name:     "validation names the field",
			err:      NewValidation("CreateInvoice", "services", "at least one service is required"),
			wantKind: KindValidation,
			wantMsg:  "services: at least one service is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, msg := Public(tt.err)
			if kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", kind, tt.wantKind)
			}
			if msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	if !KindStoreFailure.Retryable() {
		t.Errorf("store failures should be retryable by the caller")
	}
	if KindConflict.Retryable() || KindValidation.Retryable() {
		t.Errorf("only store failures should be retryable")
	}
}

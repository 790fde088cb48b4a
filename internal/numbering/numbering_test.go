package numbering

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jesses-code-adventures/billing/internal/errs"
	"github.com/jesses-code-adventures/billing/internal/metrics"
)

func TestScopeFor(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2025-03-01", "INV-0325-1"},
		{"2025-03-07", "INV-0325-1"},
		{"2025-03-08", "INV-0325-2"},
		{"2025-03-21", "INV-0325-3"},
		{"2025-03-28", "INV-0325-4"},
		{"2025-03-29", "INV-0325-5"},
		{"2025-12-31", "INV-1225-5"},
		{"2024-02-29", "INV-0224-5"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			date, err := ParseBusinessDate(tt.date)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := ScopeFor("INV", date).Key(); got != tt.want {
				t.Errorf("scope = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseBusinessDateRejectsMalformedDates(t *testing.T) {
	for _, value := range []string{"", "2025-02-30", "2025-13-01", "03/01/2025", "2025-3-1", "yesterday"} {
		t.Run(value, func(t *testing.T) {
			_, err := ParseBusinessDate(value)
			if !errors.Is(err, errs.InvalidDate) {
				t.Errorf("expected InvalidDate for %q, got %v", value, err)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	n, err := ParseNumber("QTN-1125-107")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Prefix != "QTN" || n.MonthYear != "1125" || n.Week != 1 || n.Seq != 7 {
		t.Errorf("unexpected parse result %+v", n)
	}
	if n.String() != "QTN-1125-107" {
		t.Errorf("round trip = %s", n.String())
	}

	for _, bad := range []string{"INV-0325-100", "INV-0325-601", "INV-325-101", "INV0325101", "INV-0325-1011"} {
		if _, err := ParseNumber(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestAllocateSequencing(t *testing.T) {
	ctx := context.Background()
	allocator := NewAllocator(nil)
	counter := NewLocalCounter()

	first, err := allocator.Allocate(ctx, counter, "INV", "2025-03-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.String() != "INV-0325-101" {
		t.Errorf("first number = %s, want INV-0325-101", first)
	}

	second, err := allocator.Allocate(ctx, counter, "INV", "2025-03-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.String() != "INV-0325-102" {
		t.Errorf("second number = %s, want INV-0325-102", second)
	}

	other, err := allocator.Allocate(ctx, counter, "INV", "2025-03-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.String() != "INV-0325-201" {
		t.Errorf("next week starts again at 01, got %s", other)
	}

	for i := 3; i <= MaxSequence; i++ {
		if _, err := allocator.Allocate(ctx, counter, "INV", "2025-03-03"); err != nil {
			t.Fatalf("allocation %d failed: %v", i, err)
		}
	}

	_, err = allocator.Allocate(ctx, counter, "INV", "2025-03-03")
	if !errors.Is(err, errs.SequenceExhausted) {
		t.Fatalf("100th allocation should fail with SequenceExhausted, got %v", err)
	}
}

func TestAllocateInvalidDateDoesNotTouchCounter(t *testing.T) {
	calls := 0
	counter := CounterFunc(func(ctx context.Context, scope string) (int64, error) {
		calls++
		return 1, nil
	})

	_, err := NewAllocator(nil).Allocate(context.Background(), counter, "QTN", "2025-02-31")
	if !errors.Is(err, errs.InvalidDate) {
		t.Fatalf("expected InvalidDate, got %v", err)
	}
	if calls != 0 {
		t.Errorf("counter called %d times for an invalid date", calls)
	}
}

func TestConcurrentAllocationIsGapFree(t *testing.T) {
	const n = 60
	ctx := context.Background()
	allocator := NewAllocator(nil)
	counter := NewLocalCounter()

	var wg sync.WaitGroup
	results := make(chan int, n)
	failures := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := allocator.Allocate(ctx, counter, "INV", "2025-03-15")
			if err != nil {
				failures <- err
				return
			}
			results <- number.Seq
		}()
	}
	wg.Wait()
	close(results)
	close(failures)

	for err := range failures {
		t.Fatalf("allocation failed: %v", err)
	}

	var seqs []int
	for seq := range results {
		seqs = append(seqs, seq)
	}
	sort.Ints(seqs)

	if len(seqs) != n {
		t.Fatalf("expected %d sequences, got %d", n, len(seqs))
	}
	for i, seq := range seqs {
		if seq != i+1 {
			t.Fatalf("expected sequences 1..%d without duplicates or gaps, got %v", n, seqs)
		}
	}
}

func TestAllocateAndStoreRetriesTakenNumbers(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	allocator := NewAllocator(m)
	counter := NewLocalCounter()

	taken := map[string]bool{"INV-0325-101": true, "INV-0325-102": true}
	var stored []string

	number, err := allocator.AllocateAndStore(ctx, counter, "INV", "2025-03-01", func(n Number) error {
		if taken[n.String()] {
			return fmt.Errorf("insert invoice: %w", ErrNumberTaken)
		}
		stored = append(stored, n.String())
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if number.String() != "INV-0325-103" {
		t.Errorf("number = %s, want INV-0325-103", number)
	}
	if len(stored) != 1 {
		t.Errorf("expected one stored number, got %v", stored)
	}
	if got := testutil.ToFloat64(m.AllocationConflicts.WithLabelValues("INV")); got != 2 {
		t.Errorf("allocation conflicts = %v, want 2", got)
	}
}

func TestAllocateAndStoreGivesUpAfterMaxAttempts(t *testing.T) {
	allocator := NewAllocator(nil)
	allocator.MaxAttempts = 2

	attempts := 0
	_, err := allocator.AllocateAndStore(context.Background(), NewLocalCounter(), "QTN", "2025-11-02", func(n Number) error {
		attempts++
		return ErrNumberTaken
	})
	if !errors.Is(err, errs.Conflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("store called %d times, want 2", attempts)
	}
}

func TestAllocateAndStoreDoesNotReuseFailedNumbers(t *testing.T) {
	ctx := context.Background()
	allocator := NewAllocator(nil)
	counter := NewLocalCounter()
	boom := errors.New("disk full")

	_, err := allocator.AllocateAndStore(ctx, counter, "INV", "2025-03-01", func(n Number) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to surface, got %v", err)
	}

	next, err := allocator.Allocate(ctx, counter, "INV", "2025-03-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Seq != 2 {
		t.Errorf("expected the failed number to stay burned, got seq %d", next.Seq)
	}
}

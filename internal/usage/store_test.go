package usage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "test_stats.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenCreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test_stats.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	store.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	for i := 0; i < 2; i++ {
		if err := store.Record(ctx, SourceSlack, OutcomeOK); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if err := store.Record(ctx, SourceSlack, OutcomeError); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	count, err := store.CountByDate(ctx, SourceSlack, OutcomeOK, "2026-03-02")
	if err != nil {
		t.Fatalf("CountByDate failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 ok drafts, got %d", count)
	}

	count, err = store.CountByDate(ctx, SourceSlack, OutcomeError, "2026-03-02")
	if err != nil {
		t.Fatalf("CountByDate failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 failed draft, got %d", count)
	}

	count, err = store.CountByDate(ctx, SourceCLI, OutcomeOK, "2026-03-02")
	if err != nil {
		t.Fatalf("CountByDate failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 for unused source, got %d", count)
	}
}

func TestAllTotalsAcrossDays(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	day := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return day }
	_ = store.Record(ctx, SourceSlack, OutcomeOK)
	_ = store.Record(ctx, SourceCLI, OutcomeOK)

	day = day.AddDate(0, 0, 1)
	_ = store.Record(ctx, SourceSlack, OutcomeOK)
	_ = store.Record(ctx, SourceSlack, OutcomeError)

	totals, err := store.AllTotals(ctx)
	if err != nil {
		t.Fatalf("AllTotals failed: %v", err)
	}

	if got := totals[SourceSlack]; got != (Totals{OK: 2, Errors: 1}) {
		t.Errorf("slack totals = %+v", got)
	}
	if got := totals[SourceCLI]; got != (Totals{OK: 1}) {
		t.Errorf("cli totals = %+v", got)
	}
}

func TestAllTotalsEmpty(t *testing.T) {
	totals, err := openTestStore(t).AllTotals(context.Background())
	if err != nil {
		t.Fatalf("AllTotals failed: %v", err)
	}
	if len(totals) != len(Sources) {
		t.Fatalf("Expected %d sources, got %d", len(Sources), len(totals))
	}
	for src, got := range totals {
		if got != (Totals{}) {
			t.Errorf("%s: expected zero totals, got %+v", src, got)
		}
	}
}

func TestRecordConcurrent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Record(ctx, SourceSlack, OutcomeOK); err != nil {
				t.Errorf("Record failed: %v", err)
			}
		}()
	}
	wg.Wait()

	totals, err := store.AllTotals(ctx)
	if err != nil {
		t.Fatalf("AllTotals failed: %v", err)
	}
	if totals[SourceSlack].OK != 20 {
		t.Errorf("Expected 20, got %d", totals[SourceSlack].OK)
	}
}

func TestDataPersistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	store1, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = store1.Record(ctx, SourceCLI, OutcomeOK)
	_ = store1.Close()

	store2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = store2.Close() }()

	totals, err := store2.AllTotals(ctx)
	if err != nil {
		t.Fatalf("AllTotals failed: %v", err)
	}
	if totals[SourceCLI].OK != 1 {
		t.Errorf("Expected persisted count 1, got %d", totals[SourceCLI].OK)
	}
}

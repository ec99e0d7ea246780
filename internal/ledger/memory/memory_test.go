package memory

import (
	"context"
	"testing"
	"time"

	"duit/internal/core"
	"duit/internal/ledger"
)

func tx(user string, amount int64, ts time.Time) core.Transaction {
	return core.Transaction{
		UserID:      user,
		Amount:      core.Money{Cents: amount},
		Category:    "Food & Dining",
		Description: "nasi goreng",
		Timestamp:   ts,
	}
}

func TestAppendAndList(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Append out of chronological order.
	for i, off := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		ref, err := s.Append(ctx, tx("u1", int64(1000*(i+1)), base.Add(off)))
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		if ref == "" {
			t.Fatal("empty row ref")
		}
	}

	got, err := s.ListTransactions(ctx, "u1", base.Add(-time.Hour), base.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatal("results not ordered by timestamp")
		}
	}
}

func TestListWindowIsHalfOpen(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)

	s.Append(ctx, tx("u1", 1000, since))                      // included
	s.Append(ctx, tx("u1", 2000, until))                      // excluded
	s.Append(ctx, tx("u1", 3000, since.Add(-time.Second)))    // excluded
	s.Append(ctx, tx("u1", 4000, until.Add(-time.Second)))    // included
	s.Append(ctx, tx("other", 5000, since.Add(12*time.Hour))) // wrong user

	got, err := s.ListTransactions(ctx, "u1", since, until)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New(nil)
	bad := tx("u1", -5, time.Now())
	if _, err := s.Append(context.Background(), bad); err == nil {
		t.Fatal("negative amount should be rejected")
	}
}

func TestAppendNormalizesZone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	s := New(ledger.NewNormalizer(loc))
	ctx := context.Background()
	ts := time.Date(2025, 6, 1, 7, 30, 0, 0, time.UTC)
	if _, err := s.Append(ctx, tx("u1", 1000, ts)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err := s.ListTransactions(ctx, "u1", ts.Add(-time.Hour), ts.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Timestamp.Hour() != 14 {
		t.Fatalf("Hour = %d, want 14 in Asia/Jakarta", got[0].Timestamp.Hour())
	}
}

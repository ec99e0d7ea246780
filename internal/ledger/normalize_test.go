package ledger

import (
	"testing"
	"time"
)

func jakarta(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestParseNaiveTimestamp(t *testing.T) {
	n := NewNormalizer(jakarta(t))

	ts, err := n.Parse("2025-06-15 14:30:00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ts.Location().String() != "Asia/Jakarta" {
		t.Fatalf("naive timestamp must be interpreted in the canonical zone, got %v", ts.Location())
	}
	if ts.Hour() != 14 {
		t.Fatalf("Hour = %d, want 14", ts.Hour())
	}
}

func TestParseZonedTimestamp(t *testing.T) {
	n := NewNormalizer(jakarta(t))

	// 07:30 UTC is 14:30 in Jakarta (UTC+7).
	ts, err := n.Parse("2025-06-15T07:30:00Z")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ts.Hour() != 14 {
		t.Fatalf("Hour = %d, want 14 after conversion to Jakarta", ts.Hour())
	}
}

func TestParseDateOnly(t *testing.T) {
	n := NewNormalizer(jakarta(t))
	ts, err := n.Parse("2025-06-15")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ts.Hour() != 0 {
		t.Fatalf("date-only value should land at midnight, got hour %d", ts.Hour())
	}
}

func TestParseMalformed(t *testing.T) {
	n := NewNormalizer(jakarta(t))
	for _, raw := range []string{"", "yesterday", "15/06/2025", "2025-13-40 99:99:99"} {
		if _, err := n.Parse(raw); err == nil {
			t.Fatalf("Parse(%q) should fail", raw)
		}
	}
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(jakarta(t))
	utc := time.Date(2025, 6, 15, 7, 30, 0, 0, time.UTC)
	got := n.Normalize(utc)
	if got.Hour() != 14 {
		t.Fatalf("Hour = %d, want 14", got.Hour())
	}
	if !got.Equal(utc) {
		t.Fatalf("Normalize must not change the instant")
	}
}

func TestNormalizerDefaultsToUTC(t *testing.T) {
	n := NewNormalizer(nil)
	if n.Location() != time.UTC {
		t.Fatalf("nil location should default to UTC")
	}
}

package analytics

import (
	"strings"
	"testing"
	"time"

	"duit/internal/core"
)

func TestDailySummary(t *testing.T) {
	now := time.Date(2025, 6, 15, 21, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx(2_500_000, "Daily Needs", now.Add(-10*time.Hour)),
		tx(7_500_000, "Transportation", now.Add(-5*time.Hour)),
		tx(2_500_000, "Daily Needs", now.Add(-2*time.Hour)),
	}

	text, ok := NewComposer().DailySummary(txs, []string{"Budget Daily Needs hampir habis"})
	if !ok {
		t.Fatal("expected a summary")
	}
	if !strings.Contains(text, "Total pengeluaran: Rp 125.000") {
		t.Errorf("missing total:\n%s", text)
	}
	if !strings.Contains(text, "Jumlah transaksi: 3") {
		t.Errorf("missing count:\n%s", text)
	}
	// Largest category first.
	transportIdx := strings.Index(text, "Transportation")
	dailyIdx := strings.Index(text, "Daily Needs: ")
	if transportIdx == -1 || dailyIdx == -1 || transportIdx > dailyIdx {
		t.Errorf("categories not ordered by amount:\n%s", text)
	}
	if !strings.Contains(text, "Peringatan Budget:") {
		t.Errorf("missing warnings section:\n%s", text)
	}
}

func TestDailySummaryEmpty(t *testing.T) {
	if _, ok := NewComposer().DailySummary(nil, nil); ok {
		t.Fatal("no transactions should produce no summary")
	}
}

func TestMonthlyInsightsReport(t *testing.T) {
	now := time.Date(2025, 6, 30, 20, 0, 0, 0, time.UTC)
	var txs []core.Transaction
	for d := 1; d <= 12; d++ {
		txs = append(txs, tx(2_000_000, "Daily Needs", now.AddDate(0, 0, -d)))
	}
	txs = append(txs,
		tx(1_500_000, "Transportation", now.AddDate(0, 0, -4)),
		tx(5_000_000, "Entertainment", now.AddDate(0, 0, -40)),
	)

	text := NewComposer().MonthlyInsightsReport(txs, now)
	for _, want := range []string{
		"Laporan Analisis Pengeluaran June 2025",
		"Total Pengeluaran:",
		"Kategori Pengeluaran Terbesar:",
		"1. Daily Needs:",
		"Pola Pengeluaran:",
		"Tren Pengeluaran:",
		"Kecepatan Pengeluaran:",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in report:\n%s", want, text)
		}
	}
}

func TestMonthlyInsightsReportNoData(t *testing.T) {
	now := time.Date(2025, 6, 30, 20, 0, 0, 0, time.UTC)
	text := NewComposer().MonthlyInsightsReport(nil, now)
	if !strings.Contains(text, "Laporan Analisis Pengeluaran") {
		t.Errorf("header missing:\n%s", text)
	}
	if strings.Contains(text, "Kategori Pengeluaran Terbesar") {
		t.Errorf("data sections should be omitted without transactions:\n%s", text)
	}
}

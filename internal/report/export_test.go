package report

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/game-station/internal/model"
)

func TestWriteCSV(t *testing.T) {
	start := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	s := completed("PS5-1", "PS5", start, 90*time.Minute, 75.00)
	s.Customer = "Omar"
	s.PaymentMethod = "CASH"

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []model.CompletedSession{s}); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(records))
	}

	wantHeader := []string{"Date", "Device", "Customer", "Duration", "Cost", "Status", "Payment"}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Errorf("header = %v, want %v", records[0], wantHeader)
	}
	wantRow := []string{"2025-06-01 14:00", "PS5-1", "Omar", "01:30:00", "75.00", "COMPLETED", "CASH"}
	if !reflect.DeepEqual(records[1], wantRow) {
		t.Errorf("row = %v, want %v", records[1], wantRow)
	}
}

func TestWriteXLSX(t *testing.T) {
	start := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	s := completed("VIP-1", "ROOM", start, time.Hour, 120.00)

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, []model.CompletedSession{s}); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	name, err := f.GetCellValue("Sessions", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if name != "VIP-1" {
		t.Errorf("B2 = %q, want VIP-1", name)
	}
	cost, _ := f.GetCellValue("Sessions", "E2")
	if cost != "120.00" {
		t.Errorf("E2 = %q, want 120.00", cost)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{90 * time.Minute, "01:30:00"},
		{0, "00:00:00"},
		{-time.Minute, "00:00:00"},
		{25*time.Hour + 5*time.Second, "25:00:05"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

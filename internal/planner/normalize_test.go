package planner

import (
	"testing"
	"time"
)

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"1,234.5", 1234.5, true},
		{" 42 ", 42, true},
		{"0", 0, true},
		{"12,000", 12000, true},
		{"n/a", 0, false},
		{"", 0, false},
		{"  ", 0, false},
	}

	for _, tc := range tests {
		got := coerceNumber(tc.raw)
		if tc.ok {
			if got == nil || *got != tc.want {
				t.Errorf("coerceNumber(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		} else if got != nil {
			t.Errorf("coerceNumber(%q) = %v, want nil", tc.raw, *got)
		}
	}
}

func TestSynthesizePeriod(t *testing.T) {
	tests := []struct {
		year, month string
		want        time.Time
		ok          bool
	}{
		{"2024", "3", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024", "03", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024.0", "11.0", time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), true},
		{"2023", "Mar", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"2023", "January", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024", "13", time.Time{}, false},
		{"", "5", time.Time{}, false},
		{"2024", "", time.Time{}, false},
		{"twenty", "5", time.Time{}, false},
	}

	for _, tc := range tests {
		got, ok := synthesizePeriod(tc.year, tc.month)
		if ok != tc.ok {
			t.Errorf("synthesizePeriod(%q, %q) ok=%v, want %v", tc.year, tc.month, ok, tc.ok)
			continue
		}
		if ok && !got.Equal(tc.want) {
			t.Errorf("synthesizePeriod(%q, %q) = %v, want %v", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestNormalizeRows_DropsUnparseablePeriods(t *testing.T) {
	cols, err := ResolveColumns([]string{"item_code", "sales", "month", "year", "stock_on_hand"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	rows := [][]string{
		{"A1", "100", "1", "2024", "50"},
		{"A1", "120", "not-a-month", "2024", "60"},
		{"A1", "90", "2", "2024", "1,250"},
		{"", "10", "3", "2024", "5"},
	}

	records := NormalizeRows(cols, rows)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[1].Stock == nil || *records[1].Stock != 1250 {
		t.Errorf("comma-separated stock not coerced: %v", records[1].Stock)
	}
}

func TestNormalizeRows_ShortRowsDegradeToMissing(t *testing.T) {
	cols, err := ResolveColumns([]string{"item_code", "sales", "month", "year", "moq", "pack_size"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// Trailing empty cells are commonly truncated by spreadsheet readers.
	records := NormalizeRows(cols, [][]string{{"A1", "100", "1", "2024"}})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].MOQ != nil || records[0].PackSize != nil {
		t.Errorf("truncated cells should be missing, got moq=%v pack=%v", records[0].MOQ, records[0].PackSize)
	}
}

package planner

import (
	"errors"
	"testing"
)

func TestResolveColumns_KeywordMatching(t *testing.T) {
	headers := []string{" Item_Code ", "Product Name", "Supplier", "Sales Qty", "Month", "Year"}

	cols, err := ResolveColumns(headers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[Field]int{
		FieldItemCode: 0,
		FieldItemName: 1,
		FieldVendor:   2,
		FieldSales:    3,
		FieldMonth:    4,
		FieldYear:     5,
	}
	for f, idx := range want {
		got, ok := cols.Index(f)
		if !ok || got != idx {
			t.Errorf("field %s: got (%d, %v), want (%d, true)", f, got, ok, idx)
		}
	}
}

func TestResolveColumns_FirstMatchWins(t *testing.T) {
	// "sku" appears before "item"; the earlier column must win for item_code.
	headers := []string{"SKU", "Item Description", "Sales", "Month", "Year"}

	cols, err := ResolveColumns(headers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx, _ := cols.Index(FieldItemCode); idx != 0 {
		t.Errorf("item_code bound to column %d, want 0", idx)
	}
}

func TestResolveColumns_StockPriorityTier(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		wantIdx int
		wantOK  bool
	}{
		{
			name:    "priority term beats generic stock column",
			headers: []string{"item", "sales", "month", "year", "stock value", "Stock_On_Hand"},
			wantIdx: 5,
			wantOK:  true,
		},
		{
			name:    "spaced priority spelling",
			headers: []string{"item", "sales", "month", "year", "Current Stock"},
			wantIdx: 4,
			wantOK:  true,
		},
		{
			name:    "fallback accepts soh",
			headers: []string{"item", "sales", "month", "year", "SOH Qty"},
			wantIdx: 4,
			wantOK:  true,
		},
		{
			name:    "fallback excludes policy columns",
			headers: []string{"item", "sales", "month", "year", "min_stock_days", "max_stock_level"},
			wantOK:  false,
		},
		{
			name:    "inventory fallback",
			headers: []string{"item", "sales", "month", "year", "inventory"},
			wantIdx: 4,
			wantOK:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cols, err := ResolveColumns(tc.headers)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			idx, ok := cols.Index(FieldStock)
			if ok != tc.wantOK {
				t.Fatalf("stock resolved=%v, want %v", ok, tc.wantOK)
			}
			if ok && idx != tc.wantIdx {
				t.Errorf("stock bound to column %d, want %d", idx, tc.wantIdx)
			}
		})
	}
}

func TestResolveColumns_MissingRequiredIsFatal(t *testing.T) {
	headers := []string{"vendor", "lead_time", "stock_on_hand"}

	_, err := ResolveColumns(headers)
	if !errors.Is(err, ErrColumnUnresolved) {
		t.Fatalf("got %v, want ErrColumnUnresolved", err)
	}
}

func TestResolveColumns_PolicyColumnsDoNotShadowStock(t *testing.T) {
	headers := []string{"item_code", "sales", "month", "year", "min_stock_days", "closing_stock"}

	cols, err := ResolveColumns(headers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx, ok := cols.Index(FieldStock); !ok || idx != 5 {
		t.Errorf("stock bound to (%d, %v), want (5, true)", idx, ok)
	}
	if idx, ok := cols.Index(FieldMinDays); !ok || idx != 4 {
		t.Errorf("min_days bound to (%d, %v), want (4, true)", idx, ok)
	}
}

// Package planner holds the PO planning core: header resolution, row
// normalization and the per-item two-month computation engine. Everything in
// this package is pure; I/O lives in the repositories and services around it.
package planner

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Field identifies a canonical input field the resolver can bind a column to.
type Field string

const (
	FieldItemCode Field = "item_code"
	FieldItemName Field = "item_name"
	FieldVendor   Field = "vendor"
	FieldSales    Field = "sales"
	FieldMonth    Field = "month"
	FieldYear     Field = "year"
	FieldLead     Field = "lead"
	FieldTransit  Field = "transit"
	FieldTAT      Field = "tat"
	FieldMOQ      Field = "moq"
	FieldPack     Field = "pack"
	FieldMinDays  Field = "min_days"
	FieldMaxDays  Field = "max_days"
	FieldStock    Field = "stock"
)

// fieldKeywords maps each field to the header substrings that identify it,
// in match priority order.
var fieldKeywords = map[Field][]string{
	FieldItemCode: {"item_code", "sku", "item"},
	FieldItemName: {"item_name", "product"},
	FieldVendor:   {"vendor", "supplier"},
	FieldSales:    {"sales", "qty", "units", "demand"},
	FieldMonth:    {"month"},
	FieldYear:     {"year"},
	FieldLead:     {"lead"},
	FieldTransit:  {"transit"},
	FieldTAT:      {"tat"},
	FieldMOQ:      {"moq"},
	FieldPack:     {"pack"},
	FieldMinDays:  {"min_stock"},
	FieldMaxDays:  {"max_stock"},
}

// stockPriority is the first resolution tier for the stock column: exact
// substrings tried against every header before the generic fallback runs.
var stockPriority = []string{
	"stock_on_hand",
	"stock on hand",
	"current_stock",
	"current stock",
	"closing_stock",
	"available_stock",
}

// requiredFields are the fields without which processing cannot start.
var requiredFields = []Field{FieldItemCode, FieldSales, FieldMonth, FieldYear}

// ErrColumnUnresolved is the fatal configuration error returned when one or
// more required columns cannot be found in the input header row.
var ErrColumnUnresolved = errors.New("required column unresolved")

// ColumnMap binds canonical fields to zero-based column indexes. Optional
// fields that did not resolve are simply absent.
type ColumnMap map[Field]int

// Index returns the bound column index for f and whether it resolved.
func (m ColumnMap) Index(f Field) (int, bool) {
	idx, ok := m[f]
	return idx, ok
}

// ResolveColumns maps an arbitrary header row onto canonical fields. Headers
// are compared case-insensitively with surrounding whitespace trimmed; for
// each field the first column containing any of the field's keywords wins.
//
// Returns ErrColumnUnresolved (wrapped with the missing field names) when any
// required field fails to resolve.
func ResolveColumns(headers []string) (ColumnMap, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := make(ColumnMap, len(fieldKeywords)+1)
	for field, keywords := range fieldKeywords {
		if idx, ok := findColumn(normalized, keywords); ok {
			cols[field] = idx
		}
	}
	if idx, ok := findStockColumn(normalized); ok {
		cols[FieldStock] = idx
	}

	var missing []string
	for _, f := range requiredFields {
		if _, ok := cols[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrColumnUnresolved, strings.Join(missing, ", "))
	}

	return cols, nil
}

func findColumn(headers []string, keywords []string) (int, bool) {
	for i, h := range headers {
		for _, k := range keywords {
			if strings.Contains(h, k) {
				return i, true
			}
		}
	}
	return 0, false
}

// findStockColumn applies the two-tier stock resolution: a priority list of
// known stock header spellings, then a generic fallback that excludes policy
// columns such as "min_stock_days".
func findStockColumn(headers []string) (int, bool) {
	for _, p := range stockPriority {
		for i, h := range headers {
			if strings.Contains(h, p) {
				return i, true
			}
		}
	}

	for i, h := range headers {
		if !strings.Contains(h, "stock") && !strings.Contains(h, "inventory") && !strings.Contains(h, "soh") {
			continue
		}
		if strings.Contains(h, "min") || strings.Contains(h, "max") ||
			strings.Contains(h, "level") || strings.Contains(h, "days") {
			continue
		}
		return i, true
	}

	return 0, false
}

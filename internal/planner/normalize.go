package planner

import (
	"strconv"
	"strings"
	"time"

	"github.com/apollostores/poplanner/internal/domain/models"
)

// periodLayouts are the accepted spellings of the synthesized
// "year-month-01" period date, tried in order. Months may arrive as bare
// numbers ("3"), zero-padded numbers ("03") or names ("Mar", "March").
var periodLayouts = []string{
	"2006-1-2",
	"2006-Jan-2",
	"2006-January-2",
}

// NormalizeRows converts raw string cells into HistoryRecords using the
// resolved column map. Rows whose period date cannot be synthesized are
// dropped; every other malformed cell degrades to a missing (nil) field.
func NormalizeRows(cols ColumnMap, rows [][]string) []models.HistoryRecord {
	records := make([]models.HistoryRecord, 0, len(rows))

	for _, row := range rows {
		code := strings.TrimSpace(cell(row, cols, FieldItemCode))
		if code == "" {
			continue
		}

		period, ok := synthesizePeriod(cell(row, cols, FieldYear), cell(row, cols, FieldMonth))
		if !ok {
			continue
		}

		rec := models.HistoryRecord{
			ItemCode:     code,
			ItemName:     strings.TrimSpace(cell(row, cols, FieldItemName)),
			Vendor:       strings.TrimSpace(cell(row, cols, FieldVendor)),
			Period:       period,
			Sales:        coerceNumber(cell(row, cols, FieldSales)),
			Stock:        coerceNumber(cell(row, cols, FieldStock)),
			MinStockDays: coerceNumber(cell(row, cols, FieldMinDays)),
			MaxStockDays: coerceNumber(cell(row, cols, FieldMaxDays)),
			LeadDays:     coerceNumber(cell(row, cols, FieldLead)),
			TransitDays:  coerceNumber(cell(row, cols, FieldTransit)),
			TATDays:      coerceNumber(cell(row, cols, FieldTAT)),
			MOQ:          coerceNumber(cell(row, cols, FieldMOQ)),
			PackSize:     coerceNumber(cell(row, cols, FieldPack)),
		}
		records = append(records, rec)
	}

	return records
}

func cell(row []string, cols ColumnMap, f Field) string {
	idx, ok := cols.Index(f)
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// coerceNumber parses a raw cell as a float after stripping thousands
// separators and surrounding whitespace. Unparseable cells become nil, never
// an error.
func coerceNumber(raw string) *float64 {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// synthesizePeriod builds the first-of-month date from raw year and month
// cells. Spreadsheet numerics often surface as "2024.0"; the integer part is
// used. A period that parses under none of the accepted layouts drops the row.
func synthesizePeriod(year, month string) (time.Time, bool) {
	y := integerToken(year)
	m := integerToken(month)
	if y == "" || m == "" {
		return time.Time{}, false
	}

	composed := y + "-" + m + "-01"
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, composed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// integerToken trims a cell and collapses float renderings of integers
// ("2024.0" -> "2024") while leaving month names untouched.
func integerToken(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// resolveOr returns the pointed-to value or def when the field is missing.
func resolveOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

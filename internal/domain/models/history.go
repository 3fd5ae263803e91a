package models

import "time"

// HistoryRecord is one normalized input row: the sales and stock position of a
// single item for a single (year, month) period, together with the vendor
// policy fields carried on that row.
//
// Optional numeric fields are pointers; nil means the source cell was absent
// or unparseable and the engine should fall back to the field's default.
type HistoryRecord struct {
	ItemCode string
	ItemName string
	Vendor   string

	// Period is the synthesized first-of-month date built from the row's
	// year and month cells. Rows whose period cannot be parsed are dropped
	// before they reach the engine.
	Period time.Time

	Sales *float64
	Stock *float64

	MinStockDays *float64
	MaxStockDays *float64
	LeadDays     *float64
	TransitDays  *float64
	TATDays      *float64
	MOQ          *float64
	PackSize     *float64
}

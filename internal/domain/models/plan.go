package models

import "time"

// VendorRisk classifies a vendor's observed turn-around time against the
// lead time they promised.
type VendorRisk string

const (
	RiskLow    VendorRisk = "LOW"
	RiskMedium VendorRisk = "MEDIUM"
	RiskHigh   VendorRisk = "HIGH"
)

// StockStatus reports whether current stock covers the safety-stock floor.
type StockStatus string

const (
	StatusDeficit    StockStatus = "DEFICIT"
	StatusSufficient StockStatus = "SUFFICIENT"
)

// POPlan is one recommendation row: the two-month purchase-order plan for a
// single item, recomputed from scratch on every run and never persisted.
type POPlan struct {
	ItemCode             string      `json:"item_code"`
	ItemName             string      `json:"item_name"`
	Vendor               string      `json:"vendor"`
	AvgMonthlyDemand     int         `json:"avg_monthly_demand"`
	CurrentStock         int         `json:"current_stock"`
	MinStockQty          int         `json:"min_stock_qty"`
	POMonth1Qty          int         `json:"po_month_1_qty"`
	POMonth2Qty          int         `json:"po_month_2_qty"`
	PORaiseDate          time.Time   `json:"po_raise_date"`
	DeliveryRequiredDate time.Time   `json:"delivery_required_date"`
	VendorRisk           VendorRisk  `json:"vendor_risk"`
	Status               StockStatus `json:"status"`
}

// PlanColumns is the canonical column order of the exported plan workbook.
var PlanColumns = []string{
	"ITEM_CODE",
	"ITEM_NAME",
	"VENDOR",
	"AVG_MONTHLY_DEMAND",
	"CURRENT_STOCK",
	"MIN_STOCK_QTY",
	"PO_MONTH_1_QTY",
	"PO_MONTH_2_QTY",
	"PO_RAISE_DATE",
	"DELIVERY_REQUIRED_DATE",
	"VENDOR_RISK",
	"STATUS",
}

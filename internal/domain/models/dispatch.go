package models

import "time"

// DispatchRecord captures the outcome of one daily vendor-deficit mail run,
// stored in MongoDB for audit.
type DispatchRecord struct {
	RunID     string          `bson:"run_id" json:"run_id"`
	Triggered time.Time       `bson:"triggered" json:"triggered"`
	Recipient string          `bson:"recipient" json:"recipient"`
	ItemCount int             `bson:"item_count" json:"item_count"`
	Vendors   []VendorOutcome `bson:"vendors" json:"vendors"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
}

// VendorOutcome records the delivery result for one vendor's deficit document.
type VendorOutcome struct {
	Vendor string `bson:"vendor" json:"vendor"`
	Items  int    `bson:"items" json:"items"`
	Sent   bool   `bson:"sent" json:"sent"`
	Error  string `bson:"error,omitempty" json:"error,omitempty"`
}

package models

import "time"

// Inventory item lifecycle states.
const (
	StatusAvailable = "AVAILABLE"
	StatusSold      = "SOLD"
	StatusReserved  = "RESERVED"
)

// InventoryItem is one phone in stock, keyed by serial number.
// Date columns are serialized as YYYY-MM-DD strings to match the
// format the frontend sends and expects back.
type InventoryItem struct {
	SrNo             int       `json:"sr_no"`
	Date             string    `json:"date"`
	Brand            *string   `json:"brand"`
	Model            string    `json:"model"`
	IMEI             string    `json:"imei"`
	VariantGbColor   *string   `json:"variant_gb_color"`
	VendorPurchase   *string   `json:"vendor_purchase"`
	VendorPhone      *string   `json:"vendor_phone"`
	PurchaseAmount   float64   `json:"purchase_amount"`
	SellDate         *string   `json:"sell_date"`
	SellAmount       *float64  `json:"sell_amount"`
	CustomerName     *string   `json:"customer_name"`
	MobileNumber     *string   `json:"mobile_number"`
	Remarks          *string   `json:"remarks"`
	SalespersonName  *string   `json:"salesperson_name,omitempty"`
	Status           string    `json:"status"`
	KhatabookEntryID *int      `json:"khatabook_entry_id"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// InventoryFilter narrows inventory listings and exports.
type InventoryFilter struct {
	Query  string
	Status string
	Vendor string
	Brand  string
	From   string
	To     string
	Sort   string
	Order  string
}

// InventoryCounts summarizes the current filter slice by status.
type InventoryCounts struct {
	Available int `json:"available"`
	Sold      int `json:"sold"`
	Total     int `json:"total"`
}

// InventoryList is the list endpoint response envelope.
type InventoryList struct {
	Items        []InventoryItem `json:"items"`
	Counts       InventoryCounts `json:"counts"`
	VisibleIndex map[string]int  `json:"visibleIndex"`
}

type CreateItemRequest struct {
	Date           string  `json:"date"`
	Brand          string  `json:"brand"`
	Model          string  `json:"model"`
	IMEI           string  `json:"imei"`
	VariantGbColor string  `json:"variantGbColor"`
	VendorPurchase string  `json:"vendorPurchase"`
	VendorPhone    string  `json:"vendorPhone"`
	PurchaseAmount float64 `json:"purchaseAmount"`
	Remarks        string  `json:"remarks"`
}

// CreateItemsBatchRequest creates several items in one transaction.
// Top level values act as defaults for rows that omit them.
type CreateItemsBatchRequest struct {
	Date           string              `json:"date"`
	VendorPurchase string              `json:"vendorPurchase"`
	VendorPhone    string              `json:"vendorPhone"`
	PurchaseAmount float64             `json:"purchaseAmount"`
	Remarks        string              `json:"remarks"`
	Items          []CreateItemRequest `json:"items"`
}

// InventoryPatch holds the whitelisted updatable columns. Nil means
// "not provided" so a patch can clear a value with an empty string but
// never touches fields the caller left out.
type InventoryPatch struct {
	Date           *string  `json:"date"`
	Brand          *string  `json:"brand"`
	Model          *string  `json:"model"`
	IMEI           *string  `json:"imei"`
	VariantGbColor *string  `json:"variantGbColor"`
	VendorPurchase *string  `json:"vendorPurchase"`
	VendorPhone    *string  `json:"vendorPhone"`
	PurchaseAmount *float64 `json:"purchaseAmount"`
	Remarks        *string  `json:"remarks"`
	CustomerName   *string  `json:"customerName"`
	MobileNumber   *string  `json:"mobileNumber"`
	SellDate       *string  `json:"sellDate"`
	SellAmount     *float64 `json:"sellAmount"`
}

// SellRequest records a sale of one or more items to a customer.
type SellRequest struct {
	SrNos           []int   `json:"srNos,omitempty"`
	SellDate        string  `json:"sellDate"`
	SellAmount      float64 `json:"sellAmount"`
	CustomerName    string  `json:"customerName"`
	MobileNumber    string  `json:"mobileNumber"`
	CustomerAddress string  `json:"customerAddress"`
	Remarks         string  `json:"remarks"`
	SalespersonName string  `json:"salespersonName"`
}

// SoldItemRow is the slice of a sold item needed to build its ledger entry.
type SoldItemRow struct {
	SrNo           int
	Model          string
	VariantGbColor string
	IMEI           string
}

// VendorSuggestion is one row of the vendor typeahead.
type VendorSuggestion struct {
	Name     string     `json:"name"`
	Phone    string     `json:"phone"`
	Total    int        `json:"total"`
	LastUsed *time.Time `json:"last_used"`
}

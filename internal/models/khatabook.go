package models

import "time"

// KhatabookEntry is one row of the customer credit ledger. Amount is the
// total owed, Paid the portion received so far; both are non-negative and
// Paid never exceeds Amount.
type KhatabookEntry struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Mobile      string    `json:"mobile"`
	Amount      float64   `json:"amount"`
	Paid        float64   `json:"paid"`
	Description string    `json:"description"`
	Note        string    `json:"note"`
	EntryDate   time.Time `json:"entryDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateKhatabookEntryRequest struct {
	Name        string   `json:"name"`
	Mobile      string   `json:"mobile"`
	Amount      *float64 `json:"amount"`
	Paid        *float64 `json:"paid"`
	Description string   `json:"description"`
	Note        string   `json:"note"`
	EntryDate   string   `json:"entryDate"`
}

// KhatabookPatch updates an existing ledger entry. Nil fields are kept.
type KhatabookPatch struct {
	Name        *string  `json:"name"`
	Mobile      *string  `json:"mobile"`
	Amount      *float64 `json:"amount"`
	Paid        *float64 `json:"paid"`
	Description *string  `json:"description"`
	Note        *string  `json:"note"`
	EntryDate   *string  `json:"entryDate"`
}

// Ledger entry settlement states.
const (
	EntryStatusPending = "Pending"
	EntryStatusSettled = "Settled"
)

// LedgerEntry is a unified view row used by exports: either a stored
// manual khatabook entry or a sale synthesized from a SOLD inventory item.
type LedgerEntry struct {
	Type      string
	Name      string
	Mobile    string
	EntryDate time.Time
	Total     float64
	Paid      float64
	Remaining float64
	Status    string
	Item      string
	SrNo      string
	IMEI      string
	Notes     string
}

// CustomerGroup aggregates ledger entries that belong to one customer,
// keyed by phone digits when present, otherwise by lowercased name.
type CustomerGroup struct {
	Name           string
	DisplayMobile  string
	Entries        []LedgerEntry
	TotalAmount    float64
	TotalPaid      float64
	TotalRemaining float64
	Status         string
	LatestDate     time.Time
	Count          int
}

// StatusSummary totals entries for one settlement state.
type StatusSummary struct {
	Count       int
	Total       float64
	Paid        float64
	Outstanding float64
}

// SoldLedgerRow is the inventory slice needed to synthesize a sale entry.
type SoldLedgerRow struct {
	SrNo           int
	CustomerName   string
	MobileNumber   string
	SellAmount     float64
	Remarks        string
	Model          string
	VariantGbColor string
	IMEI           string
	SellDate       *time.Time
	Date           *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

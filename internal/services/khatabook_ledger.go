package services

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"jollybaba-backend/internal/models"
)

// Balances are compared against this epsilon so float noise from the even
// per-item split never keeps a fully paid entry stuck in Pending.
const settledEpsilon = 0.0001

// paidPattern recognizes the informal "Paid: ₹12,500" convention salespeople
// write into sale remarks. It is the only place a paid amount for a sale
// lives, so exports re-derive it from remarks every time.
var paidPattern = regexp.MustCompile(`(?i)paid\s*:?.*?₹?\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)

// ParsePaidFromRemarks extracts the paid amount noted in free-text remarks.
// Returns 0 when no amount is found.
func ParsePaidFromRemarks(remarks string) float64 {
	m := paidPattern.FindStringSubmatch(remarks)
	if m == nil {
		return 0
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ClampPaid keeps a paid amount inside [0, total].
func ClampPaid(paid, total float64) float64 {
	if paid < 0 {
		return 0
	}
	if paid > total {
		return total
	}
	return paid
}

// EntryStatus classifies a remaining balance.
func EntryStatus(remaining float64) string {
	if remaining <= settledEpsilon {
		return models.EntryStatusSettled
	}
	return models.EntryStatusPending
}

// SaleCustomerName falls back to "Customer" for nameless sales so their
// entries still group together instead of scattering.
func SaleCustomerName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "Customer"
}

// SaleDescription labels a sale ledger entry: "Sale • model • variant",
// falling back to the serial number when the model is blank.
func SaleDescription(model, variant string, srNo int) string {
	parts := []string{"Sale"}
	if m := strings.TrimSpace(model); m != "" {
		parts = append(parts, m)
		if v := strings.TrimSpace(variant); v != "" {
			parts = append(parts, v)
		}
		return strings.Join(parts, " • ")
	}
	return fmt.Sprintf("Sale • SR %d", srNo)
}

// SaleNote assembles the free-text note stored with a sale entry.
func SaleNote(imei, address, remarks string, remaining float64, srNo int) string {
	var parts []string
	if imei = strings.TrimSpace(imei); imei != "" {
		parts = append(parts, "IMEI: "+imei)
	}
	if address = strings.TrimSpace(address); address != "" {
		parts = append(parts, "Address: "+address)
	}
	if remarks = strings.TrimSpace(remarks); remarks != "" {
		parts = append(parts, remarks)
	}
	if remaining > settledEpsilon {
		parts = append(parts, fmt.Sprintf("Remaining: ₹%.2f", remaining))
	}
	parts = append(parts, fmt.Sprintf("SR No: %d", srNo))
	return strings.Join(parts, " | ")
}

// ManualLedgerEntry maps a stored khatabook row into the unified view.
func ManualLedgerEntry(e *models.KhatabookEntry) models.LedgerEntry {
	paid := ClampPaid(e.Paid, e.Amount)
	remaining := math.Max(0, e.Amount-paid)
	return models.LedgerEntry{
		Type:      "Manual",
		Name:      strings.TrimSpace(e.Name),
		Mobile:    strings.TrimSpace(e.Mobile),
		EntryDate: e.EntryDate,
		Total:     e.Amount,
		Paid:      paid,
		Remaining: remaining,
		Status:    EntryStatus(remaining),
		Item:      e.Description,
		Notes:     e.Note,
	}
}

// SaleLedgerEntry synthesizes the ledger view of a sold inventory item.
// Paid is re-derived from the remarks convention at read time.
func SaleLedgerEntry(row *models.SoldLedgerRow) models.LedgerEntry {
	paid := ClampPaid(ParsePaidFromRemarks(row.Remarks), row.SellAmount)
	remaining := math.Max(0, row.SellAmount-paid)

	entryDate := row.CreatedAt
	if row.SellDate != nil {
		entryDate = *row.SellDate
	} else if row.Date != nil {
		entryDate = *row.Date
	}

	return models.LedgerEntry{
		Type:      "Sale",
		Name:      SaleCustomerName(row.CustomerName),
		Mobile:    strings.TrimSpace(row.MobileNumber),
		EntryDate: entryDate,
		Total:     row.SellAmount,
		Paid:      paid,
		Remaining: remaining,
		Status:    EntryStatus(remaining),
		Item:      SaleDescription(row.Model, row.VariantGbColor, row.SrNo),
		SrNo:      strconv.Itoa(row.SrNo),
		IMEI:      strings.TrimSpace(row.IMEI),
		Notes:     strings.TrimSpace(row.Remarks),
	}
}

// CombineEntries merges stored and synthesized entries, newest first.
func CombineEntries(manual []models.KhatabookEntry, sold []models.SoldLedgerRow) []models.LedgerEntry {
	combined := make([]models.LedgerEntry, 0, len(manual)+len(sold))
	for i := range manual {
		combined = append(combined, ManualLedgerEntry(&manual[i]))
	}
	for i := range sold {
		combined = append(combined, SaleLedgerEntry(&sold[i]))
	}
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].EntryDate.After(combined[j].EntryDate)
	})
	return combined
}

// groupKey identifies a customer across inconsistently spelled entries:
// phone digits when present, otherwise the lowercased name. Entries with
// neither get a unique key so they stay singleton groups.
func groupKey(e *models.LedgerEntry, orphanSeq int) string {
	if d := digits(e.Mobile); d != "" {
		return "p:" + d
	}
	if n := strings.ToLower(strings.TrimSpace(e.Name)); n != "" {
		return "n:" + n
	}
	return fmt.Sprintf("orphan-%d", orphanSeq)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GroupEntries buckets ledger entries per customer and aggregates their
// balances. Group order follows each group's latest entry, newest first.
func GroupEntries(entries []models.LedgerEntry) []models.CustomerGroup {
	type bucket struct {
		entries   []models.LedgerEntry
		nameCount map[string]int
	}
	buckets := map[string]*bucket{}
	var order []string
	orphans := 0

	for i := range entries {
		e := &entries[i]
		key := groupKey(e, orphans)
		if strings.HasPrefix(key, "orphan-") {
			orphans++
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{nameCount: map[string]int{}}
			buckets[key] = b
			order = append(order, key)
		}
		b.entries = append(b.entries, *e)
		if name := strings.TrimSpace(e.Name); name != "" {
			b.nameCount[name]++
		}
	}

	groups := make([]models.CustomerGroup, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		g := models.CustomerGroup{
			Name:    displayName(b.nameCount),
			Entries: b.entries,
			Count:   len(b.entries),
			Status:  models.EntryStatusSettled,
		}
		for i := range b.entries {
			e := &b.entries[i]
			g.TotalAmount += e.Total
			g.TotalPaid += e.Paid
			g.TotalRemaining += e.Remaining
			if e.Status != models.EntryStatusSettled {
				g.Status = models.EntryStatusPending
			}
			if g.DisplayMobile == "" && e.Mobile != "" {
				g.DisplayMobile = e.Mobile
			}
			if e.EntryDate.After(g.LatestDate) {
				g.LatestDate = e.EntryDate
			}
		}
		groups = append(groups, g)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].LatestDate.After(groups[j].LatestDate)
	})
	return groups
}

// displayName picks the most frequently used spelling of a customer's name,
// breaking ties alphabetically.
func displayName(counts map[string]int) string {
	best := ""
	bestCount := 0
	for name, count := range counts {
		if count > bestCount || (count == bestCount && (best == "" || strings.Compare(name, best) < 0)) {
			best = name
			bestCount = count
		}
	}
	if best == "" {
		return "Unknown"
	}
	return best
}

// SummarizeByStatus totals the combined ledger per settlement state.
func SummarizeByStatus(entries []models.LedgerEntry) map[string]models.StatusSummary {
	summary := map[string]models.StatusSummary{}
	for i := range entries {
		e := &entries[i]
		s := summary[e.Status]
		s.Count++
		s.Total += e.Total
		s.Paid += e.Paid
		s.Outstanding += e.Remaining
		summary[e.Status] = s
	}
	return summary
}

// Round2 rounds to two decimals for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jollybaba-backend/internal/models"
)

func TestParsePaidFromRemarks(t *testing.T) {
	cases := []struct {
		remarks string
		want    float64
	}{
		{"Paid: 5000", 5000},
		{"paid 1200", 1200},
		{"PAID: ₹12,500", 12500},
		{"Paid: ₹ 1,00,000.50", 100000.50},
		{"exchange deal, paid: 300 advance", 300},
		{"customer will pay later", 0},
		{"", 0},
		{"Paid: none", 0},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ParsePaidFromRemarks(tc.remarks), "remarks=%q", tc.remarks)
	}
}

func TestClampPaid(t *testing.T) {
	require.Equal(t, 0.0, ClampPaid(-5, 100))
	require.Equal(t, 100.0, ClampPaid(150, 100))
	require.Equal(t, 40.0, ClampPaid(40, 100))
}

func TestEntryStatus(t *testing.T) {
	require.Equal(t, models.EntryStatusSettled, EntryStatus(0))
	require.Equal(t, models.EntryStatusSettled, EntryStatus(0.00005))
	require.Equal(t, models.EntryStatusPending, EntryStatus(0.01))
	require.Equal(t, models.EntryStatusPending, EntryStatus(500))
}

func TestSaleCustomerName(t *testing.T) {
	require.Equal(t, "Ramesh", SaleCustomerName(" Ramesh "))
	require.Equal(t, "Customer", SaleCustomerName(""))
	require.Equal(t, "Customer", SaleCustomerName("   "))
}

func TestSaleDescription(t *testing.T) {
	require.Equal(t, "Sale • iPhone 13 • 128GB Blue", SaleDescription("iPhone 13", "128GB Blue", 7))
	require.Equal(t, "Sale • iPhone 13", SaleDescription("iPhone 13", "  ", 7))
	require.Equal(t, "Sale • SR 42", SaleDescription("  ", "128GB", 42))
}

func TestSaleNote(t *testing.T) {
	note := SaleNote("356938035643809", "Sadar Bazar", "paid: 2000", 3000, 12)
	require.Equal(t, "IMEI: 356938035643809 | Address: Sadar Bazar | paid: 2000 | Remaining: ₹3000.00 | SR No: 12", note)

	// settled sale drops the remaining segment
	note = SaleNote("", "", "", 0, 9)
	require.Equal(t, "SR No: 9", note)
}

func TestSaleLedgerEntryDerivesPaidFromRemarks(t *testing.T) {
	sold := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	row := models.SoldLedgerRow{
		SrNo:           5,
		CustomerName:   " Ramesh ",
		MobileNumber:   "9876543210",
		SellAmount:     15000,
		Remarks:        "Paid: ₹10,000 at counter",
		Model:          "Redmi Note 12",
		VariantGbColor: "8/128",
		IMEI:           "123456789012345",
		SellDate:       &sold,
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	e := SaleLedgerEntry(&row)
	require.Equal(t, "Sale", e.Type)
	require.Equal(t, "Ramesh", e.Name)
	require.Equal(t, 10000.0, e.Paid)
	require.Equal(t, 5000.0, e.Remaining)
	require.Equal(t, models.EntryStatusPending, e.Status)
	require.Equal(t, sold, e.EntryDate)
	require.Equal(t, "Sale • Redmi Note 12 • 8/128", e.Item)
	require.Equal(t, "5", e.SrNo)
}

func TestSaleLedgerEntryBlankNameDefaults(t *testing.T) {
	rows := []models.SoldLedgerRow{
		{SrNo: 1, CustomerName: "  ", SellAmount: 100, CreatedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)},
		{SrNo: 2, SellAmount: 200, CreatedAt: time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)},
	}
	e := SaleLedgerEntry(&rows[0])
	require.Equal(t, "Customer", e.Name)
	require.Equal(t, "Sale • SR 1", e.Item)

	// both nameless sales fold into one "Customer" group
	groups := GroupEntries(CombineEntries(nil, rows))
	require.Len(t, groups, 1)
	require.Equal(t, "Customer", groups[0].Name)
	require.Equal(t, 2, groups[0].Count)
}

func TestSaleLedgerEntryDateFallback(t *testing.T) {
	created := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	purchased := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	row := models.SoldLedgerRow{SrNo: 1, SellAmount: 100, CreatedAt: created}
	require.Equal(t, created, SaleLedgerEntry(&row).EntryDate)

	row.Date = &purchased
	require.Equal(t, purchased, SaleLedgerEntry(&row).EntryDate)
}

func TestCombineEntriesNewestFirst(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC) }
	manual := []models.KhatabookEntry{
		{ID: 1, Name: "A", Amount: 100, EntryDate: day(2)},
		{ID: 2, Name: "B", Amount: 200, EntryDate: day(8)},
	}
	sold := []models.SoldLedgerRow{
		{SrNo: 3, CustomerName: "C", SellAmount: 300, CreatedAt: day(5)},
	}
	combined := CombineEntries(manual, sold)
	require.Len(t, combined, 3)
	require.Equal(t, "B", combined[0].Name)
	require.Equal(t, "C", combined[1].Name)
	require.Equal(t, "A", combined[2].Name)
}

func TestGroupEntriesByPhoneDigits(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC) }
	entries := []models.LedgerEntry{
		{Name: "Ramesh", Mobile: "98765 43210", Total: 100, Remaining: 100, Status: models.EntryStatusPending, EntryDate: day(1)},
		{Name: "Ramesh Kumar", Mobile: "9876543210", Total: 50, Paid: 50, Status: models.EntryStatusSettled, EntryDate: day(3)},
		{Name: "ramesh kumar", Mobile: "98765-43210", Total: 25, Paid: 25, Status: models.EntryStatusSettled, EntryDate: day(2)},
		{Name: "Suresh", Total: 10, Paid: 10, Status: models.EntryStatusSettled, EntryDate: day(4)},
	}
	groups := GroupEntries(entries)
	require.Len(t, groups, 2)

	// groups sort by latest entry, newest first
	require.Equal(t, "Suresh", groups[0].Name)
	require.Equal(t, models.EntryStatusSettled, groups[0].Status)

	g := groups[1]
	require.Equal(t, 3, g.Count)
	require.Equal(t, 175.0, g.TotalAmount)
	require.Equal(t, 100.0, g.TotalRemaining)
	require.Equal(t, models.EntryStatusPending, g.Status)
	require.Equal(t, "98765 43210", g.DisplayMobile)
	require.Equal(t, day(3), g.LatestDate)
}

func TestGroupEntriesDisplayName(t *testing.T) {
	entries := []models.LedgerEntry{
		{Name: "Anil", Mobile: "111"},
		{Name: "Anil Sharma", Mobile: "111"},
		{Name: "Anil Sharma", Mobile: "111"},
	}
	groups := GroupEntries(entries)
	require.Len(t, groups, 1)
	require.Equal(t, "Anil Sharma", groups[0].Name)

	// tie breaks alphabetically
	entries = []models.LedgerEntry{
		{Name: "Zed", Mobile: "222"},
		{Name: "Abe", Mobile: "222"},
	}
	groups = GroupEntries(entries)
	require.Equal(t, "Abe", groups[0].Name)

	// no usable name at all
	groups = GroupEntries([]models.LedgerEntry{{Mobile: "333"}})
	require.Equal(t, "Unknown", groups[0].Name)
}

func TestGroupEntriesOrphansStaySingletons(t *testing.T) {
	entries := []models.LedgerEntry{
		{Total: 10},
		{Total: 20},
	}
	groups := GroupEntries(entries)
	require.Len(t, groups, 2)
}

func TestSummarizeByStatus(t *testing.T) {
	entries := []models.LedgerEntry{
		{Status: models.EntryStatusPending, Total: 100, Paid: 40, Remaining: 60},
		{Status: models.EntryStatusPending, Total: 50, Paid: 0, Remaining: 50},
		{Status: models.EntryStatusSettled, Total: 30, Paid: 30},
	}
	summary := SummarizeByStatus(entries)
	require.Equal(t, 2, summary[models.EntryStatusPending].Count)
	require.Equal(t, 150.0, summary[models.EntryStatusPending].Total)
	require.Equal(t, 110.0, summary[models.EntryStatusPending].Outstanding)
	require.Equal(t, 1, summary[models.EntryStatusSettled].Count)
	require.Equal(t, 30.0, summary[models.EntryStatusSettled].Paid)
}

func TestRound2(t *testing.T) {
	require.Equal(t, 3333.33, Round2(9999.99/3))
	require.Equal(t, 0.1, Round2(0.1000004))
}

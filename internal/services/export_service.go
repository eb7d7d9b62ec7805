package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"jollybaba-backend/internal/models"
	"jollybaba-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/xuri/excelize/v2"
)

// ExportService renders the combined khatabook ledger as downloadable
// documents.
type ExportService struct {
	Khatabook *KhatabookService
}

func NewExportService(khatabook *KhatabookService) *ExportService {
	return &ExportService{Khatabook: khatabook}
}

const amountNumFmt = "#,##0.00"

// ExportXLSX builds a three-sheet workbook: per-status summary, per-customer
// balances, and the full combined entry list.
func (s *ExportService) ExportXLSX(ctx context.Context) ([]byte, error) {
	entries, err := s.Khatabook.CombinedLedger(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(amountNumFmt)})
	if err != nil {
		return nil, err
	}

	if err := writeSummarySheet(f, amountStyle, entries); err != nil {
		return nil, err
	}
	if err := writeCustomersSheet(f, amountStyle, entries); err != nil {
		return nil, err
	}
	if err := writeEntriesSheet(f, amountStyle, entries); err != nil {
		return nil, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func strPtr(s string) *string { return &s }

func writeSummarySheet(f *excelize.File, amountStyle int, entries []models.LedgerEntry) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	widths := []float64{14, 12, 18, 18, 18}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	if err := f.SetColStyle(sheet, "C:E", amountStyle); err != nil {
		return err
	}
	header := []interface{}{"Status", "Entries", "Total Amount", "Amount Paid", "Outstanding"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	summary := SummarizeByStatus(entries)
	row := 2
	for _, status := range []string{models.EntryStatusPending, models.EntryStatusSettled} {
		bucket := summary[status]
		cells := []interface{}{
			status, bucket.Count, Round2(bucket.Total), Round2(bucket.Paid), Round2(bucket.Outstanding),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeCustomersSheet(f *excelize.File, amountStyle int, entries []models.LedgerEntry) error {
	const sheet = "Customers"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	widths := []float64{28, 18, 10, 16, 16, 16, 12, 16}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	if err := f.SetColStyle(sheet, "D:F", amountStyle); err != nil {
		return err
	}
	header := []interface{}{
		"Customer Name", "Mobile", "Entries", "Total Amount", "Amount Paid",
		"Outstanding", "Status", "Last Entry Date",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, group := range GroupEntries(entries) {
		cells := []interface{}{
			group.Name,
			group.DisplayMobile,
			group.Count,
			Round2(group.TotalAmount),
			Round2(group.TotalPaid),
			Round2(group.TotalRemaining),
			group.Status,
			group.LatestDate.Format(timeutil.DateLayout),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return err
		}
	}
	return nil
}

func writeEntriesSheet(f *excelize.File, amountStyle int, entries []models.LedgerEntry) error {
	const sheet = "Entries"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	widths := []float64{14, 26, 18, 16, 12, 30, 12, 20, 16, 16, 16, 40}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	if err := f.SetColStyle(sheet, "I:K", amountStyle); err != nil {
		return err
	}
	header := []interface{}{
		"Date", "Customer Name", "Mobile", "Pending/Settled", "Entry Type",
		"Item / Model", "SR No", "IMEI", "Total Amount", "Amount Paid",
		"Outstanding", "Notes",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := range entries {
		e := &entries[i]
		name := e.Name
		if name == "" {
			name = "Unknown"
		}
		item := e.Item
		if item == "" {
			item = "-"
		}
		cells := []interface{}{
			e.EntryDate.Format(timeutil.DateLayout),
			name,
			e.Mobile,
			e.Status,
			e.Type,
			item,
			e.SrNo,
			e.IMEI,
			Round2(e.Total),
			Round2(e.Paid),
			Round2(e.Remaining),
			e.Notes,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &cells); err != nil {
			return err
		}
	}
	return nil
}

// ExportPDF renders a per-customer outstanding statement from the same
// combined ledger the workbook uses.
func (s *ExportService) ExportPDF(ctx context.Context) ([]byte, error) {
	entries, err := s.Khatabook.CombinedLedger(ctx)
	if err != nil {
		return nil, err
	}
	groups := GroupEntries(entries)
	summary := SummarizeByStatus(entries)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Khatabook Statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Khatabook Outstanding Statement")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, "Generated "+timeutil.Now().Format(timeutil.DateTimeLayout)+" IST")
	pdf.Ln(10)

	pending := summary[models.EntryStatusPending]
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Pending entries: %d    Outstanding: Rs %.2f",
		pending.Count, Round2(pending.Outstanding)))
	pdf.Ln(10)

	colWidths := []float64{58, 30, 16, 28, 28, 30}
	headers := []string{"Customer", "Mobile", "Entries", "Total", "Paid", "Outstanding"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, g := range groups {
		if g.TotalRemaining <= settledEpsilon {
			continue
		}
		cells := []string{
			truncate(g.Name, 34),
			g.DisplayMobile,
			fmt.Sprintf("%d", g.Count),
			fmt.Sprintf("%.2f", Round2(g.TotalAmount)),
			fmt.Sprintf("%.2f", Round2(g.TotalPaid)),
			fmt.Sprintf("%.2f", Round2(g.TotalRemaining)),
		}
		for i, c := range cells {
			pdf.CellFormat(colWidths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max-3])) + "..."
}

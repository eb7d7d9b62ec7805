package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"jollybaba-backend/internal/metrics"
	"jollybaba-backend/internal/models"
	"jollybaba-backend/internal/repositories"
	"jollybaba-backend/internal/timeutil"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Business errors mapped to status codes by the handler.
var (
	ErrNoItems      = errors.New("no items provided")
	ErrNoSrNos      = errors.New("no serial numbers provided")
	ErrInvalidItem  = errors.New("item needs at least model and imei")
	ErrNotAvailable = errors.New("item not available or not found")
	ErrNotSold      = errors.New("item is not sold")
)

type InventoryService struct {
	DB        *pgxpool.Pool
	Repo      *repositories.InventoryRepository
	Khatabook *repositories.KhatabookRepository
	Customers *repositories.CustomerRepository
}

func NewInventoryService(db *pgxpool.Pool, repo *repositories.InventoryRepository, khatabook *repositories.KhatabookRepository, customers *repositories.CustomerRepository) *InventoryService {
	return &InventoryService{
		DB:        db,
		Repo:      repo,
		Khatabook: khatabook,
		Customers: customers,
	}
}

// List returns the filtered items plus counts and the visible index: the
// 1-based position of each AVAILABLE item within the current ordering,
// which the shop floor uses as the short display number.
func (s *InventoryService) List(ctx context.Context, f *models.InventoryFilter) (*models.InventoryList, error) {
	items, counts, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	visible := map[string]int{}
	pos := 0
	for i := range items {
		if items[i].Status == models.StatusAvailable {
			pos++
			visible[strconv.Itoa(items[i].SrNo)] = pos
		}
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	return &models.InventoryList{Items: items, Counts: counts, VisibleIndex: visible}, nil
}

func normalizeItem(req *models.CreateItemRequest) error {
	req.Model = strings.TrimSpace(req.Model)
	req.IMEI = strings.TrimSpace(req.IMEI)
	req.Brand = strings.TrimSpace(req.Brand)
	req.VariantGbColor = strings.TrimSpace(req.VariantGbColor)
	req.VendorPurchase = strings.TrimSpace(req.VendorPurchase)
	req.VendorPhone = strings.TrimSpace(req.VendorPhone)
	req.Remarks = strings.TrimSpace(req.Remarks)
	if req.Date == "" {
		req.Date = timeutil.Now().Format(timeutil.DateLayout)
	}
	if req.Model == "" || req.IMEI == "" {
		return ErrInvalidItem
	}
	return nil
}

func (s *InventoryService) Create(ctx context.Context, req *models.CreateItemRequest) (*models.InventoryItem, error) {
	if err := normalizeItem(req); err != nil {
		return nil, err
	}
	srNo, err := s.Repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, srNo)
}

// CreateBatch inserts several items in one transaction, filling gaps in
// each row from the batch-level defaults.
func (s *InventoryService) CreateBatch(ctx context.Context, req *models.CreateItemsBatchRequest) ([]int, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}
	for i := range req.Items {
		item := &req.Items[i]
		if item.Date == "" {
			item.Date = req.Date
		}
		if item.VendorPurchase == "" {
			item.VendorPurchase = req.VendorPurchase
		}
		if item.VendorPhone == "" {
			item.VendorPhone = req.VendorPhone
		}
		if item.PurchaseAmount == 0 {
			item.PurchaseAmount = req.PurchaseAmount
		}
		if item.Remarks == "" {
			item.Remarks = req.Remarks
		}
		if err := normalizeItem(item); err != nil {
			return nil, err
		}
	}
	return s.Repo.CreateBatch(ctx, req.Items)
}

func (s *InventoryService) Update(ctx context.Context, srNo int, patch *models.InventoryPatch) (*models.InventoryItem, error) {
	if err := s.Repo.Update(ctx, srNo, patch); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, srNo)
}

func (s *InventoryService) UpdateRemarks(ctx context.Context, srNo int, remarks string) (*models.InventoryItem, error) {
	if err := s.Repo.UpdateRemarks(ctx, srNo, strings.TrimSpace(remarks)); err != nil {
		return nil, err
	}
	return s.Repo.Get(ctx, srNo)
}

// Sell marks a single item sold.
func (s *InventoryService) Sell(ctx context.Context, srNo int, req *models.SellRequest) ([]models.SoldItemRow, error) {
	return s.sell(ctx, []int{srNo}, req)
}

// SellMultiple sells several items to one customer for a combined amount.
func (s *InventoryService) SellMultiple(ctx context.Context, req *models.SellRequest) ([]models.SoldItemRow, error) {
	if len(req.SrNos) == 0 {
		return nil, ErrNoSrNos
	}
	return s.sell(ctx, req.SrNos, req)
}

// sell flips the requested AVAILABLE items to SOLD in one transaction.
// The combined amount is split evenly per item; the ledger entry created
// afterwards carries the total. Ledger and customer bookkeeping are
// advisory: their failure is logged but never undoes a committed sale.
// perItemAmount spreads a multi-sell total evenly across the sold rows;
// a single-item sale keeps the amount as given.
func perItemAmount(total float64, n int) float64 {
	if n <= 1 {
		return total
	}
	return total / float64(n)
}

func (s *InventoryService) sell(ctx context.Context, srNos []int, req *models.SellRequest) ([]models.SoldItemRow, error) {
	if req.SellDate == "" {
		req.SellDate = timeutil.Now().Format(timeutil.DateLayout)
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.MobileNumber = strings.TrimSpace(req.MobileNumber)

	perItem := perItemAmount(req.SellAmount, len(srNos))

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sold, err := s.Repo.MarkSoldTx(ctx, tx, srNos, perItem, req)
	if err != nil {
		return nil, err
	}
	if len(sold) == 0 {
		return nil, ErrNotAvailable
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.ItemsSoldTotal.Add(float64(len(sold)))
	s.recordSaleSideEffects(ctx, sold, req)
	return sold, nil
}

// recordSaleSideEffects creates the khatabook entry, links it to the sold
// items and upserts the customer. Runs after the sale committed; any
// failure is logged and swallowed.
func (s *InventoryService) recordSaleSideEffects(ctx context.Context, sold []models.SoldItemRow, req *models.SellRequest) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		log.Printf("[Inventory] sale bookkeeping skipped: %v", err)
		return
	}
	defer tx.Rollback(ctx)

	if req.SellAmount > 0 {
		first := sold[0]
		paid := ClampPaid(ParsePaidFromRemarks(req.Remarks), req.SellAmount)
		remaining := req.SellAmount - paid

		entryName := SaleCustomerName(req.CustomerName)
		description := SaleDescription(first.Model, first.VariantGbColor, first.SrNo)
		note := SaleNote(first.IMEI, req.CustomerAddress, req.Remarks, remaining, first.SrNo)

		entryID, err := s.Khatabook.CreateSaleEntryTx(ctx, tx,
			entryName, req.MobileNumber, req.SellAmount, paid,
			description, note, req.SellDate)
		if err != nil {
			log.Printf("[Inventory] khatabook entry for sale failed: %v", err)
			return
		}

		srNos := make([]int, len(sold))
		for i, row := range sold {
			srNos[i] = row.SrNo
		}
		if err := s.Repo.LinkLedgerEntryTx(ctx, tx, entryID, srNos); err != nil {
			log.Printf("[Inventory] linking khatabook entry failed: %v", err)
			return
		}
	}

	if req.CustomerName != "" {
		err := s.Customers.UpsertTx(ctx, tx, &models.CustomerUpsert{
			Name:           req.CustomerName,
			Phone:          req.MobileNumber,
			Address:        req.CustomerAddress,
			LastPurchaseAt: req.SellDate,
		})
		if err != nil {
			log.Printf("[Inventory] customer upsert failed: %v", err)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Printf("[Inventory] sale bookkeeping commit failed: %v", err)
	}
}

// MakeAvailable reverses a sale: clears the sale fields, drops the linked
// ledger entry and appends a dated cancellation note to the remarks.
func (s *InventoryService) MakeAvailable(ctx context.Context, srNo int) (*models.InventoryItem, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	state, err := s.Repo.LockForReversalTx(ctx, tx, srNo)
	if err != nil {
		return nil, err
	}
	if state.Status != models.StatusSold {
		return nil, ErrNotSold
	}

	if state.KhatabookEntryID != nil {
		if err := s.Khatabook.DeleteTx(ctx, tx, *state.KhatabookEntryID); err != nil {
			return nil, err
		}
	}

	note := "Sale cancelled on " + timeutil.Now().Format(timeutil.DateLayout)
	remarks := note
	if state.Remarks != "" {
		remarks = state.Remarks + " | " + note
	}

	item, err := s.Repo.RevertSaleTx(ctx, tx, srNo, remarks)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.SalesReversedTotal.Inc()
	return item, nil
}

var csvHeader = []string{
	"Sr No", "Date", "Brand", "Model", "IMEI", "Variant/GB/Color",
	"Vendor", "Vendor Phone", "Purchase Amount", "Sell Date", "Sell Amount",
	"Customer", "Mobile", "Salesperson", "Status", "Remarks",
}

// ExportCSV renders the filtered inventory as a flat CSV.
func (s *InventoryService) ExportCSV(ctx context.Context, f *models.InventoryFilter) ([]byte, error) {
	items, _, err := s.Repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for i := range items {
		it := &items[i]
		record := []string{
			strconv.Itoa(it.SrNo),
			it.Date,
			deref(it.Brand),
			it.Model,
			it.IMEI,
			deref(it.VariantGbColor),
			deref(it.VendorPurchase),
			deref(it.VendorPhone),
			fmt.Sprintf("%.2f", it.PurchaseAmount),
			deref(it.SellDate),
			formatAmount(it.SellAmount),
			deref(it.CustomerName),
			deref(it.MobileNumber),
			deref(it.SalespersonName),
			it.Status,
			deref(it.Remarks),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

// SearchCustomers backs the sell-form typeahead. Queries shorter than two
// characters return nothing.
func (s *InventoryService) SearchCustomers(ctx context.Context, query string) ([]models.Customer, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []models.Customer{}, nil
	}
	return s.Customers.Search(ctx, query, digits(query))
}

func (s *InventoryService) SearchVendors(ctx context.Context, query string) ([]models.VendorSuggestion, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []models.VendorSuggestion{}, nil
	}
	return s.Repo.SearchVendors(ctx, query, digits(query))
}

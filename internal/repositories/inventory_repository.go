package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jollybaba-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors surfaced to services for status mapping.
var (
	ErrDuplicateIMEI = errors.New("duplicate imei")
	ErrNotFound      = errors.New("not found")
	ErrNoFields      = errors.New("no updatable fields provided")
)

const inventoryColumns = `sr_no,
	to_char(date, 'YYYY-MM-DD') AS date,
	brand,
	model,
	imei,
	variant_gb_color,
	vendor_purchase,
	vendor_phone,
	purchase_amount::float,
	to_char(sell_date, 'YYYY-MM-DD') AS sell_date,
	sell_amount::float,
	customer_name,
	mobile_number,
	remarks,
	salesperson_name,
	status,
	khatabook_entry_id,
	created_at,
	updated_at`

type InventoryRepository struct {
	DB *pgxpool.Pool
}

func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{DB: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// buildWhere translates a filter into a WHERE clause with positional args.
func buildWhere(f *models.InventoryFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+strings.ToLower(q)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(imei) LIKE $%d OR LOWER(model) LIKE $%d)", len(args), len(args)))
	}
	if status := strings.TrimSpace(f.Status); status != "" {
		args = append(args, status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if vendor := strings.TrimSpace(f.Vendor); vendor != "" {
		args = append(args, "%"+strings.ToLower(vendor)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(vendor_purchase) LIKE $%d", len(args)))
	}
	if brand := strings.TrimSpace(f.Brand); brand != "" {
		args = append(args, brand)
		conditions = append(conditions, fmt.Sprintf("brand = $%d", len(args)))
	}
	if f.From != "" {
		args = append(args, f.From)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if f.To != "" {
		args = append(args, f.To)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func orderClause(f *models.InventoryFilter) string {
	sortCol := "date"
	if f.Sort == "price" {
		sortCol = "purchase_amount"
	}
	sortOrder := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		sortOrder = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, sr_no DESC", sortCol, sortOrder)
}

func scanItem(row pgx.Row) (*models.InventoryItem, error) {
	var it models.InventoryItem
	err := row.Scan(
		&it.SrNo, &it.Date, &it.Brand, &it.Model, &it.IMEI,
		&it.VariantGbColor, &it.VendorPurchase, &it.VendorPhone,
		&it.PurchaseAmount, &it.SellDate, &it.SellAmount,
		&it.CustomerName, &it.MobileNumber, &it.Remarks,
		&it.SalespersonName, &it.Status, &it.KhatabookEntryID,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// List returns all items matching the filter plus status counts over
// the same filter.
func (r *InventoryRepository) List(ctx context.Context, f *models.InventoryFilter) ([]models.InventoryItem, models.InventoryCounts, error) {
	where, args := buildWhere(f)

	query := fmt.Sprintf("SELECT %s FROM inventory_items %s %s", inventoryColumns, where, orderClause(f))
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, models.InventoryCounts{}, err
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, models.InventoryCounts{}, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, models.InventoryCounts{}, err
	}

	countQuery := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE status = 'AVAILABLE') AS available,
			COUNT(*) FILTER (WHERE status = 'SOLD') AS sold,
			COUNT(*) AS total
		FROM inventory_items %s`, where)

	var counts models.InventoryCounts
	if err := r.DB.QueryRow(ctx, countQuery, args...).Scan(&counts.Available, &counts.Sold, &counts.Total); err != nil {
		return nil, models.InventoryCounts{}, err
	}

	return items, counts, nil
}

// Get returns one item by serial number
func (r *InventoryRepository) Get(ctx context.Context, srNo int) (*models.InventoryItem, error) {
	query := fmt.Sprintf("SELECT %s FROM inventory_items WHERE sr_no = $1", inventoryColumns)
	it, err := scanItem(r.DB.QueryRow(ctx, query, srNo))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

const insertItemQuery = `
	INSERT INTO inventory_items (date, brand, model, imei, variant_gb_color, vendor_purchase, vendor_phone, purchase_amount, remarks, status, created_at, updated_at)
	VALUES ($1::date, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, NULLIF($9, ''), 'AVAILABLE', now(), now())
	RETURNING sr_no`

// Create inserts one AVAILABLE item, returning its serial number.
func (r *InventoryRepository) Create(ctx context.Context, req *models.CreateItemRequest) (int, error) {
	var srNo int
	err := r.DB.QueryRow(ctx, insertItemQuery,
		req.Date, req.Brand, req.Model, req.IMEI, req.VariantGbColor,
		req.VendorPurchase, req.VendorPhone, req.PurchaseAmount, req.Remarks,
	).Scan(&srNo)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateIMEI
		}
		return 0, fmt.Errorf("failed to create inventory item: %w", err)
	}
	return srNo, nil
}

// CreateBatch inserts many items in one transaction. All rows must already
// carry their effective values (defaults resolved by the service). Any
// duplicate imei rolls back the whole batch.
func (r *InventoryRepository) CreateBatch(ctx context.Context, items []models.CreateItemRequest) ([]int, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	srNos := make([]int, 0, len(items))
	for i := range items {
		req := &items[i]
		var srNo int
		err := tx.QueryRow(ctx, insertItemQuery,
			req.Date, req.Brand, req.Model, req.IMEI, req.VariantGbColor,
			req.VendorPurchase, req.VendorPhone, req.PurchaseAmount, req.Remarks,
		).Scan(&srNo)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, ErrDuplicateIMEI
			}
			return nil, fmt.Errorf("failed to create inventory item: %w", err)
		}
		srNos = append(srNos, srNo)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return srNos, nil
}

// Update applies a whitelisted partial update. Returns ErrNotFound when
// the serial number does not exist and pgx.ErrNoRows semantics otherwise.
func (r *InventoryRepository) Update(ctx context.Context, srNo int, patch *models.InventoryPatch) error {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addDate := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d::date", column, len(args)))
	}

	if patch.Date != nil {
		addDate("date", *patch.Date)
	}
	if patch.Brand != nil {
		add("brand", *patch.Brand)
	}
	if patch.Model != nil {
		add("model", *patch.Model)
	}
	if patch.IMEI != nil {
		add("imei", *patch.IMEI)
	}
	if patch.VariantGbColor != nil {
		add("variant_gb_color", *patch.VariantGbColor)
	}
	if patch.VendorPurchase != nil {
		add("vendor_purchase", *patch.VendorPurchase)
	}
	if patch.VendorPhone != nil {
		add("vendor_phone", *patch.VendorPhone)
	}
	if patch.PurchaseAmount != nil {
		add("purchase_amount", *patch.PurchaseAmount)
	}
	if patch.Remarks != nil {
		add("remarks", *patch.Remarks)
	}
	if patch.CustomerName != nil {
		add("customer_name", *patch.CustomerName)
	}
	if patch.MobileNumber != nil {
		add("mobile_number", *patch.MobileNumber)
	}
	if patch.SellDate != nil {
		addDate("sell_date", nullIfEmpty(*patch.SellDate))
	}
	if patch.SellAmount != nil {
		add("sell_amount", *patch.SellAmount)
	}

	if len(sets) == 0 {
		return ErrNoFields
	}

	args = append(args, srNo)
	query := fmt.Sprintf(
		"UPDATE inventory_items SET %s, updated_at = now() WHERE sr_no = $%d",
		strings.Join(sets, ", "), len(args),
	)

	tag, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIMEI
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// UpdateRemarks replaces the remarks text only
func (r *InventoryRepository) UpdateRemarks(ctx context.Context, srNo int, remarks string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE inventory_items SET remarks = NULLIF($1, ''), updated_at = now() WHERE sr_no = $2`,
		remarks, srNo,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSoldTx flips AVAILABLE items to SOLD inside the caller's transaction
// and returns the rows actually updated. Items already sold (or missing)
// are silently skipped; the caller decides whether zero rows is an error.
func (r *InventoryRepository) MarkSoldTx(ctx context.Context, tx pgx.Tx, srNos []int, perItemAmount float64, req *models.SellRequest) ([]models.SoldItemRow, error) {
	rows, err := tx.Query(ctx, `
		UPDATE inventory_items
		   SET sell_date = $1::date,
		       sell_amount = $2,
		       customer_name = NULLIF($3, ''),
		       mobile_number = NULLIF($4, ''),
		       remarks = NULLIF($5, ''),
		       salesperson_name = NULLIF($6, ''),
		       status = 'SOLD',
		       updated_at = now()
		 WHERE sr_no = ANY($7::int[]) AND status = 'AVAILABLE'
		 RETURNING sr_no, model, COALESCE(variant_gb_color, ''), COALESCE(imei, '')`,
		req.SellDate, perItemAmount, req.CustomerName, req.MobileNumber,
		req.Remarks, req.SalespersonName, srNos,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sold []models.SoldItemRow
	for rows.Next() {
		var row models.SoldItemRow
		if err := rows.Scan(&row.SrNo, &row.Model, &row.VariantGbColor, &row.IMEI); err != nil {
			return nil, err
		}
		sold = append(sold, row)
	}
	return sold, rows.Err()
}

// LinkLedgerEntryTx records which khatabook entry a sale produced
func (r *InventoryRepository) LinkLedgerEntryTx(ctx context.Context, tx pgx.Tx, entryID int, srNos []int) error {
	_, err := tx.Exec(ctx,
		`UPDATE inventory_items SET khatabook_entry_id = $1 WHERE sr_no = ANY($2::int[])`,
		entryID, srNos,
	)
	return err
}

// SaleState is the locked snapshot read before reversing a sale.
type SaleState struct {
	SrNo             int
	Status           string
	Remarks          string
	KhatabookEntryID *int
}

// LockForReversalTx reads the item's sale state under FOR UPDATE
func (r *InventoryRepository) LockForReversalTx(ctx context.Context, tx pgx.Tx, srNo int) (*SaleState, error) {
	var st SaleState
	err := tx.QueryRow(ctx, `
		SELECT sr_no, status, COALESCE(remarks, ''), khatabook_entry_id
		  FROM inventory_items
		 WHERE sr_no = $1
		 FOR UPDATE`, srNo,
	).Scan(&st.SrNo, &st.Status, &st.Remarks, &st.KhatabookEntryID)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// RevertSaleTx clears all sale fields and the ledger link, making the item
// AVAILABLE again with the given remarks.
func (r *InventoryRepository) RevertSaleTx(ctx context.Context, tx pgx.Tx, srNo int, remarks string) (*models.InventoryItem, error) {
	query := fmt.Sprintf(`
		UPDATE inventory_items
		   SET sell_date = NULL,
		       sell_amount = NULL,
		       customer_name = NULL,
		       mobile_number = NULL,
		       remarks = NULLIF($2, ''),
		       salesperson_name = NULL,
		       status = 'AVAILABLE',
		       khatabook_entry_id = NULL,
		       updated_at = now()
		 WHERE sr_no = $1
		 RETURNING %s`, inventoryColumns)

	return scanItem(tx.QueryRow(ctx, query, srNo, remarks))
}

// SearchVendors powers the vendor typeahead, grouping past purchases
func (r *InventoryRepository) SearchVendors(ctx context.Context, query, digits string) ([]models.VendorSuggestion, error) {
	like := "%" + query + "%"
	conditions := []string{"vendor_purchase ILIKE $1", "COALESCE(vendor_phone, '') ILIKE $2"}
	args := []interface{}{like, like}
	if digits != "" {
		args = append(args, "%"+digits+"%")
		conditions = append(conditions, fmt.Sprintf(`regexp_replace(COALESCE(vendor_phone, ''), '\D', '', 'g') LIKE $%d`, len(args)))
	}

	sql := fmt.Sprintf(`
		SELECT vendor_purchase AS name,
		       COALESCE(vendor_phone, '') AS phone,
		       COUNT(*) AS total,
		       MAX(updated_at) AS last_used
		  FROM inventory_items
		 WHERE vendor_purchase IS NOT NULL
		   AND (%s)
		 GROUP BY vendor_purchase, vendor_phone
		 ORDER BY last_used DESC NULLS LAST, total DESC
		 LIMIT 10`, strings.Join(conditions, " OR "))

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []models.VendorSuggestion
	for rows.Next() {
		var v models.VendorSuggestion
		if err := rows.Scan(&v.Name, &v.Phone, &v.Total, &v.LastUsed); err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

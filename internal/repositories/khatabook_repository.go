package repositories

import (
	"context"

	"jollybaba-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const khatabookColumns = `id, name, COALESCE(mobile, ''), amount::float, paid::float,
	COALESCE(description, ''), COALESCE(note, ''), entry_date, created_at, updated_at`

type KhatabookRepository struct {
	DB *pgxpool.Pool
}

func NewKhatabookRepository(db *pgxpool.Pool) *KhatabookRepository {
	return &KhatabookRepository{DB: db}
}

func scanEntry(row pgx.Row) (*models.KhatabookEntry, error) {
	var e models.KhatabookEntry
	err := row.Scan(&e.ID, &e.Name, &e.Mobile, &e.Amount, &e.Paid,
		&e.Description, &e.Note, &e.EntryDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns every stored ledger entry, newest first.
func (r *KhatabookRepository) List(ctx context.Context) ([]models.KhatabookEntry, error) {
	rows, err := r.DB.Query(ctx,
		"SELECT "+khatabookColumns+" FROM khatabook_entries ORDER BY entry_date DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.KhatabookEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (r *KhatabookRepository) Get(ctx context.Context, id int) (*models.KhatabookEntry, error) {
	e, err := scanEntry(r.DB.QueryRow(ctx,
		"SELECT "+khatabookColumns+" FROM khatabook_entries WHERE id = $1", id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

const insertEntryQuery = `
	INSERT INTO khatabook_entries (name, mobile, amount, paid, description, note, entry_date, created_at, updated_at)
	VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, ''),
	        COALESCE(NULLIF($7, '')::date, CURRENT_DATE), now(), now())
	RETURNING ` + khatabookColumns

// Create stores a manual ledger entry. Amounts arrive already validated
// and clamped by the service.
func (r *KhatabookRepository) Create(ctx context.Context, name, mobile string, amount, paid float64, description, note, entryDate string) (*models.KhatabookEntry, error) {
	return scanEntry(r.DB.QueryRow(ctx, insertEntryQuery,
		name, mobile, amount, paid, description, note, entryDate))
}

// CreateSaleEntryTx stores the ledger entry produced by a sale, inside the
// sale's transaction so the entry and the item link commit together.
func (r *KhatabookRepository) CreateSaleEntryTx(ctx context.Context, tx pgx.Tx, name, mobile string, amount, paid float64, description, note, entryDate string) (int, error) {
	var id int
	err := tx.QueryRow(ctx, `
		INSERT INTO khatabook_entries (name, mobile, amount, paid, description, note, entry_date, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, ''),
		        COALESCE(NULLIF($7, '')::date, CURRENT_DATE), now(), now())
		RETURNING id`,
		name, mobile, amount, paid, description, note, entryDate,
	).Scan(&id)
	return id, err
}

// Update writes the full merged row back. The service reads the current
// entry, folds the patch in and re-validates before calling this.
func (r *KhatabookRepository) Update(ctx context.Context, id int, e *models.KhatabookEntry) (*models.KhatabookEntry, error) {
	updated, err := scanEntry(r.DB.QueryRow(ctx, `
		UPDATE khatabook_entries
		   SET name = $1,
		       mobile = NULLIF($2, ''),
		       amount = $3,
		       paid = $4,
		       description = NULLIF($5, ''),
		       note = NULLIF($6, ''),
		       entry_date = $7,
		       updated_at = now()
		 WHERE id = $8
		 RETURNING `+khatabookColumns,
		e.Name, e.Mobile, e.Amount, e.Paid, e.Description, e.Note, e.EntryDate, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *KhatabookRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, "DELETE FROM khatabook_entries WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTx removes a sale's ledger entry inside the reversal transaction.
func (r *KhatabookRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int) error {
	_, err := tx.Exec(ctx, "DELETE FROM khatabook_entries WHERE id = $1", id)
	return err
}

// ListSoldRows returns every SOLD inventory item with the fields needed to
// synthesize its sale ledger entry for exports.
func (r *KhatabookRepository) ListSoldRows(ctx context.Context) ([]models.SoldLedgerRow, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT sr_no,
		       COALESCE(customer_name, ''),
		       COALESCE(mobile_number, ''),
		       COALESCE(sell_amount, 0)::float,
		       COALESCE(remarks, ''),
		       model,
		       COALESCE(variant_gb_color, ''),
		       COALESCE(imei, ''),
		       sell_date,
		       date,
		       created_at,
		       updated_at
		  FROM inventory_items
		 WHERE status = 'SOLD'
		 ORDER BY sell_date DESC NULLS LAST, sr_no DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sold []models.SoldLedgerRow
	for rows.Next() {
		var s models.SoldLedgerRow
		if err := rows.Scan(&s.SrNo, &s.CustomerName, &s.MobileNumber, &s.SellAmount,
			&s.Remarks, &s.Model, &s.VariantGbColor, &s.IMEI,
			&s.SellDate, &s.Date, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sold = append(sold, s)
	}
	return sold, rows.Err()
}

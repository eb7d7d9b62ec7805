package repositories

import (
	"context"
	"fmt"
	"strings"

	"jollybaba-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

// UpsertTx records a customer sighting keyed by normalized name plus phone
// digits. An existing row keeps its address unless the new one is non-empty.
func (r *CustomerRepository) UpsertTx(ctx context.Context, tx pgx.Tx, c *models.CustomerUpsert) error {
	nameKey := strings.ToLower(strings.TrimSpace(c.Name))
	if nameKey == "" {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO customers (name, phone, address, name_key, phone_digits, last_purchase_at, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, COALESCE(NULLIF($6, '')::timestamp, now()), now(), now())
		ON CONFLICT (name_key, phone_digits) DO UPDATE SET
			name = EXCLUDED.name,
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), customers.phone),
			address = COALESCE(NULLIF(EXCLUDED.address, ''), customers.address),
			last_purchase_at = GREATEST(customers.last_purchase_at, EXCLUDED.last_purchase_at),
			updated_at = now()`,
		strings.TrimSpace(c.Name), c.Phone, c.Address, nameKey, digitsOnly(c.Phone), c.LastPurchaseAt,
	)
	return err
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Search powers the customer typeahead on the sell form.
func (r *CustomerRepository) Search(ctx context.Context, query, digits string) ([]models.Customer, error) {
	like := "%" + query + "%"
	conditions := []string{"name ILIKE $1", "COALESCE(phone, '') ILIKE $2"}
	args := []interface{}{like, like}
	if digits != "" {
		args = append(args, "%"+digits+"%")
		conditions = append(conditions, fmt.Sprintf("phone_digits LIKE $%d", len(args)))
	}

	sql := fmt.Sprintf(`
		SELECT id, name, COALESCE(phone, ''), COALESCE(address, ''), last_purchase_at, created_at, updated_at
		  FROM customers
		 WHERE %s
		 ORDER BY last_purchase_at DESC NULLS LAST, updated_at DESC
		 LIMIT 10`, strings.Join(conditions, " OR "))

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.LastPurchaseAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

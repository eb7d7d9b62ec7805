package database

import (
	"context"
	"fmt"
	"log"

	"jollybaba-backend/internal/auth"
	"jollybaba-backend/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrator reconciles the database schema on startup. Every statement is
// idempotent (CREATE TABLE IF NOT EXISTS / ADD COLUMN IF NOT EXISTS) so the
// same binary can run against a fresh database or one carrying years of data.
type Migrator struct {
	pool *pgxpool.Pool
	cfg  *config.Config
}

func NewMigrator(pool *pgxpool.Pool, cfg *config.Config) *Migrator {
	return &Migrator{pool: pool, cfg: cfg}
}

// RunMigrations ensures all tables, columns and indexes exist, then seeds
// the dev admin account when allowed.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	log.Println("Ensuring database schema...")

	if err := m.ensureTables(ctx); err != nil {
		return fmt.Errorf("failed to ensure tables: %w", err)
	}

	if err := m.seedDevAdmin(ctx); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	log.Println("Schema ensured: technicians, tickets, inventory_items, customers, khatabook_entries, khatabook_messages")
	return nil
}

func (m *Migrator) ensureTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS technicians (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			phone TEXT,
			role TEXT DEFAULT 'technician',
			created_at TIMESTAMP DEFAULT now(),
			updated_at TIMESTAMP DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS tickets (
			id SERIAL PRIMARY KEY,
			receive_date TIMESTAMP,
			customer_name TEXT,
			mobile_number TEXT,
			device_model TEXT,
			imei TEXT,
			issue_description TEXT,
			assigned_technician TEXT,
			estimated_cost TEXT,
			device_photo TEXT,
			lock_code TEXT,
			repair_date TIMESTAMP,
			delivery_date TIMESTAMP,
			status TEXT,
			notes JSONB DEFAULT '[]'::jsonb,
			delivery_photo_1 TEXT,
			delivery_photo_2 TEXT,
			created_at TIMESTAMP DEFAULT now(),
			updated_at TIMESTAMP DEFAULT now()
		)`,

		// Columns added after the initial release. Kept as separate
		// statements so old databases pick them up one by one.
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS repaired_photo TEXT`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS repaired_photo_thumb TEXT`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS repaired_photo_uploaded_at TIMESTAMP`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS repaired_photo_uploaded_by TEXT`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS created_by_email TEXT`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS created_by_name TEXT`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS created_by_id INTEGER`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS assigned_technician_email TEXT`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS assigned_to TEXT`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS assigned_to_email TEXT`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS last_worked_by_email TEXT`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS last_worked_by_name TEXT`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS last_worked_by_id INTEGER`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS last_worked_at TIMESTAMP`,
		`ALTER TABLE tickets ADD COLUMN IF NOT EXISTS work_log JSONB DEFAULT '[]'::jsonb`,

		`CREATE TABLE IF NOT EXISTS inventory_items (
			sr_no SERIAL PRIMARY KEY,
			created_at TIMESTAMP NOT NULL DEFAULT now(),
			updated_at TIMESTAMP NOT NULL DEFAULT now(),
			date DATE NOT NULL,
			model TEXT NOT NULL,
			imei TEXT NOT NULL UNIQUE,
			variant_gb_color TEXT,
			vendor_purchase TEXT,
			brand TEXT,
			purchase_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			sell_date DATE,
			sell_amount NUMERIC(12,2),
			customer_name TEXT,
			mobile_number TEXT,
			remarks TEXT,
			vendor_phone TEXT,
			status TEXT NOT NULL DEFAULT 'AVAILABLE',
			CONSTRAINT inventory_items_status_chk CHECK (status IN ('AVAILABLE','SOLD','RESERVED'))
		)`,
		`ALTER TABLE inventory_items ADD COLUMN IF NOT EXISTS vendor_phone TEXT`,
		`ALTER TABLE inventory_items ADD COLUMN IF NOT EXISTS brand TEXT`,
		`ALTER TABLE inventory_items ADD COLUMN IF NOT EXISTS salesperson_name TEXT`,
		`ALTER TABLE inventory_items ADD COLUMN IF NOT EXISTS khatabook_entry_id INTEGER`,

		`CREATE TABLE IF NOT EXISTS customers (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			name_key TEXT NOT NULL,
			phone TEXT,
			phone_digits TEXT NOT NULL DEFAULT '',
			email TEXT,
			address TEXT,
			notes TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT now(),
			updated_at TIMESTAMP NOT NULL DEFAULT now(),
			last_purchase_at TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS customers_name_phone_key
			ON customers (name_key, phone_digits)`,

		`CREATE TABLE IF NOT EXISTS khatabook_entries (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			mobile TEXT,
			amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			paid NUMERIC(12,2) NOT NULL DEFAULT 0,
			description TEXT,
			note TEXT,
			entry_date DATE NOT NULL DEFAULT CURRENT_DATE,
			created_at TIMESTAMP NOT NULL DEFAULT now(),
			updated_at TIMESTAMP NOT NULL DEFAULT now(),
			CONSTRAINT khatabook_paid_nonnegative CHECK (paid >= 0),
			CONSTRAINT khatabook_amount_nonnegative CHECK (amount >= 0)
		)`,

		`DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_constraint
				WHERE conname = 'inventory_items_khatabook_entry_id_fkey'
			) THEN
				ALTER TABLE inventory_items
				ADD CONSTRAINT inventory_items_khatabook_entry_id_fkey
				FOREIGN KEY (khatabook_entry_id)
				REFERENCES khatabook_entries(id)
				ON DELETE SET NULL;
			END IF;
		END
		$$`,

		`CREATE TABLE IF NOT EXISTS khatabook_messages (
			id SERIAL PRIMARY KEY,
			entry_id INTEGER NOT NULL REFERENCES khatabook_entries(id) ON DELETE CASCADE,
			recipient_name TEXT NOT NULL,
			recipient_phone TEXT NOT NULL,
			template_key TEXT NOT NULL,
			text_snapshot TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'queued',
			provider_id TEXT,
			channel TEXT NOT NULL DEFAULT 'whatsapp',
			sandbox BOOLEAN NOT NULL DEFAULT false,
			error TEXT,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMP NOT NULL DEFAULT now(),
			updated_at TIMESTAMP NOT NULL DEFAULT now(),
			sent_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS khatabook_messages_entry_phone_idx
			ON khatabook_messages (entry_id, recipient_phone, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := m.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// seedDevAdmin creates or refreshes the development admin account.
// Skipped in production unless admin.seed_always is set, and never
// logs the password.
func (m *Migrator) seedDevAdmin(ctx context.Context) error {
	if m.cfg.IsProduction() && !m.cfg.Admin.SeedAlways {
		log.Println("Production environment detected, skipping dev admin seed")
		return nil
	}

	adminEmail := m.cfg.Admin.Email
	adminPassword := m.cfg.Admin.Password
	if adminEmail == "" || adminPassword == "" {
		log.Println("Admin email or password empty, skipping admin seed")
		return nil
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var id int
	var passwordHash string
	err = tx.QueryRow(ctx,
		"SELECT id, password_hash FROM technicians WHERE email = $1 FOR UPDATE",
		adminEmail,
	).Scan(&id, &passwordHash)

	switch {
	case err == pgx.ErrNoRows:
		hash, hashErr := auth.HashPassword(adminPassword)
		if hashErr != nil {
			return hashErr
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO technicians (name, email, password_hash, role, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, now(), now())`,
			"Administrator", adminEmail, hash, "admin",
		)
		if err != nil {
			return err
		}
		log.Printf("Dev admin created: %s", adminEmail)

	case err != nil:
		return err

	default:
		if !auth.VerifyPassword(passwordHash, adminPassword) {
			newHash, hashErr := auth.HashPassword(adminPassword)
			if hashErr != nil {
				return hashErr
			}
			_, err = tx.Exec(ctx,
				"UPDATE technicians SET password_hash = $1, updated_at = now() WHERE id = $2",
				newHash, id,
			)
			if err != nil {
				return err
			}
			log.Printf("Dev admin password updated for %s", adminEmail)
		} else {
			// Idempotent role repair in case the account was demoted
			_, err = tx.Exec(ctx,
				"UPDATE technicians SET role = $1, updated_at = now() WHERE id = $2 AND role IS DISTINCT FROM $1",
				"admin", id,
			)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

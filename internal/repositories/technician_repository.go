package repositories

import (
	"context"
	"fmt"

	"jollybaba-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TechnicianRepository struct {
	DB *pgxpool.Pool
}

func NewTechnicianRepository(db *pgxpool.Pool) *TechnicianRepository {
	return &TechnicianRepository{DB: db}
}

// Get returns a technician by id, or nil when not found
func (r *TechnicianRepository) Get(ctx context.Context, id int) (*models.Technician, error) {
	query := `
		SELECT id, name, email, password_hash, phone, COALESCE(role, 'technician'), created_at, updated_at
		FROM technicians
		WHERE id = $1
	`

	var t models.Technician
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.Phone, &t.Role, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByEmail returns a technician by email, or nil when not found
func (r *TechnicianRepository) GetByEmail(ctx context.Context, email string) (*models.Technician, error) {
	query := `
		SELECT id, name, email, password_hash, phone, COALESCE(role, 'technician'), created_at, updated_at
		FROM technicians
		WHERE email = $1
	`

	var t models.Technician
	err := r.DB.QueryRow(ctx, query, email).Scan(
		&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.Phone, &t.Role, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new technician and returns the stored row
func (r *TechnicianRepository) Create(ctx context.Context, name, email, passwordHash, phone, role string) (*models.Technician, error) {
	query := `
		INSERT INTO technicians (name, email, password_hash, phone, role)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING id, name, email, password_hash, phone, role, created_at, updated_at
	`

	var t models.Technician
	err := r.DB.QueryRow(ctx, query, name, email, passwordHash, phone, role).Scan(
		&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.Phone, &t.Role, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create technician: %w", err)
	}
	return &t, nil
}

// List returns all technicians, newest first
func (r *TechnicianRepository) List(ctx context.Context) ([]models.Technician, error) {
	query := `
		SELECT id, name, email, password_hash, phone, COALESCE(role, 'technician'), created_at, updated_at
		FROM technicians
		ORDER BY id DESC
	`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var technicians []models.Technician
	for rows.Next() {
		var t models.Technician
		if err := rows.Scan(&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.Phone, &t.Role, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		technicians = append(technicians, t)
	}
	return technicians, rows.Err()
}

// ListPublic returns the safe fields only, for assignment dropdowns
func (r *TechnicianRepository) ListPublic(ctx context.Context) ([]models.PublicTechnician, error) {
	query := `SELECT id, name, email, COALESCE(role, 'technician') FROM technicians ORDER BY id DESC`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var technicians []models.PublicTechnician
	for rows.Next() {
		var t models.PublicTechnician
		if err := rows.Scan(&t.ID, &t.Name, &t.Email, &t.Role); err != nil {
			return nil, err
		}
		technicians = append(technicians, t)
	}
	return technicians, rows.Err()
}

// PromoteToAdmin ensures the technician holds the admin role
func (r *TechnicianRepository) PromoteToAdmin(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE technicians SET role = 'admin', updated_at = now() WHERE id = $1 AND role IS DISTINCT FROM 'admin'`,
		id,
	)
	return err
}

// Delete removes a technician, returns false when the id does not exist
func (r *TechnicianRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM technicians WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"facilitator_activity_tracker/internal/domain/staff"
)

// Custom errors
var ErrFacilitatorNotFound = fmt.Errorf("facilitator not found")
var ErrManagerNotFound = fmt.Errorf("manager not found")
var ErrDuplicateStaffEmail = fmt.Errorf("staff member with this email already exists")

type PostgresStaffRepository struct {
	db *sql.DB
}

func NewPostgresStaffRepository(db *sql.DB) *PostgresStaffRepository {
	return &PostgresStaffRepository{db: db}
}

func (r *PostgresStaffRepository) CreateFacilitator(ctx context.Context, f *staff.Facilitator) error {
	query := `INSERT INTO facilitators (email, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, f.Email, f.FirstName, f.LastName, f.IsActive).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "facilitators_email_key") {
			return ErrDuplicateStaffEmail
		}
		return fmt.Errorf("error creating facilitator: %w", err)
	}
	return nil
}

func (r *PostgresStaffRepository) GetFacilitatorByID(ctx context.Context, id int64) (*staff.Facilitator, error) {
	query := `SELECT id, email, first_name, last_name, is_active, created_at, updated_at
		FROM facilitators WHERE id = $1`
	f := &staff.Facilitator{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&f.ID, &f.Email, &f.FirstName, &f.LastName, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFacilitatorNotFound
		}
		return nil, fmt.Errorf("error getting facilitator by ID: %w", err)
	}
	return f, nil
}

func (r *PostgresStaffRepository) UpdateFacilitator(ctx context.Context, f *staff.Facilitator) error {
	query := `UPDATE facilitators
		SET email = $1, first_name = $2, last_name = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, f.Email, f.FirstName, f.LastName, f.IsActive, f.ID).
		Scan(&f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrFacilitatorNotFound
		}
		return fmt.Errorf("error updating facilitator: %w", err)
	}
	return nil
}

func (r *PostgresStaffRepository) ListActiveFacilitators(ctx context.Context) ([]*staff.Facilitator, error) {
	query := `SELECT id, email, first_name, last_name, is_active, created_at, updated_at
		FROM facilitators WHERE is_active = TRUE ORDER BY first_name, last_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active facilitators: %w", err)
	}
	defer rows.Close()

	facilitators := make([]*staff.Facilitator, 0)
	for rows.Next() {
		f := &staff.Facilitator{}
		if err := rows.Scan(&f.ID, &f.Email, &f.FirstName, &f.LastName, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning active facilitator: %w", err)
		}
		facilitators = append(facilitators, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active facilitators: %w", err)
	}
	return facilitators, nil
}

func (r *PostgresStaffRepository) CreateManager(ctx context.Context, m *staff.Manager) error {
	query := `INSERT INTO managers (email, first_name, last_name, telegram_chat_id, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, m.Email, m.FirstName, m.LastName, m.TelegramChatID, m.IsActive).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "managers_email_key") {
			return ErrDuplicateStaffEmail
		}
		return fmt.Errorf("error creating manager: %w", err)
	}
	return nil
}

func (r *PostgresStaffRepository) GetManagerByID(ctx context.Context, id int64) (*staff.Manager, error) {
	query := `SELECT id, email, first_name, last_name, telegram_chat_id, is_active, created_at, updated_at
		FROM managers WHERE id = $1`
	m := &staff.Manager{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&m.ID, &m.Email, &m.FirstName, &m.LastName, &m.TelegramChatID, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrManagerNotFound
		}
		return nil, fmt.Errorf("error getting manager by ID: %w", err)
	}
	return m, nil
}

// ListActiveManagers backs alert fan-out; it runs at job processing time so
// the recipient set always reflects the current active managers.
func (r *PostgresStaffRepository) ListActiveManagers(ctx context.Context) ([]*staff.Manager, error) {
	query := `SELECT id, email, first_name, last_name, telegram_chat_id, is_active, created_at, updated_at
		FROM managers WHERE is_active = TRUE ORDER BY first_name, last_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active managers: %w", err)
	}
	defer rows.Close()

	managers := make([]*staff.Manager, 0)
	for rows.Next() {
		m := &staff.Manager{}
		if err := rows.Scan(&m.ID, &m.Email, &m.FirstName, &m.LastName, &m.TelegramChatID, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning active manager: %w", err)
		}
		managers = append(managers, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active managers: %w", err)
	}
	return managers, nil
}

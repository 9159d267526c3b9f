package database

import (
	"context"
	"database/sql"
	"fmt"

	"facilitator_activity_tracker/internal/domain/allocation"
)

var ErrAllocationNotFound = fmt.Errorf("allocation not found")

type PostgresAllocationRepository struct {
	db *sql.DB
}

func NewPostgresAllocationRepository(db *sql.DB) *PostgresAllocationRepository {
	return &PostgresAllocationRepository{db: db}
}

func (r *PostgresAllocationRepository) Create(ctx context.Context, a *allocation.Allocation) error {
	query := `INSERT INTO allocations
		(facilitator_id, module_name, cohort_name, class_name, delivery_mode, start_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		a.FacilitatorID, a.ModuleName, a.CohortName, a.ClassName, a.DeliveryMode, a.StartDate, a.IsActive,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating allocation: %w", err)
	}
	return nil
}

func (r *PostgresAllocationRepository) GetByID(ctx context.Context, id int64) (*allocation.Allocation, error) {
	query := `SELECT id, facilitator_id, module_name, cohort_name, class_name, delivery_mode,
		start_date, is_active, created_at, updated_at
		FROM allocations WHERE id = $1`
	a := &allocation.Allocation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.FacilitatorID, &a.ModuleName, &a.CohortName, &a.ClassName, &a.DeliveryMode,
		&a.StartDate, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAllocationNotFound
		}
		return nil, fmt.Errorf("error getting allocation by ID: %w", err)
	}
	return a, nil
}

// Update never touches start_date; the deadline anchor stays immutable.
func (r *PostgresAllocationRepository) Update(ctx context.Context, a *allocation.Allocation) error {
	query := `UPDATE allocations
		SET module_name = $1, cohort_name = $2, class_name = $3, delivery_mode = $4,
		    is_active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		a.ModuleName, a.CohortName, a.ClassName, a.DeliveryMode, a.IsActive, a.ID,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrAllocationNotFound
		}
		return fmt.Errorf("error updating allocation: %w", err)
	}
	return nil
}

func (r *PostgresAllocationRepository) ListActive(ctx context.Context) ([]*allocation.Allocation, error) {
	query := `SELECT id, facilitator_id, module_name, cohort_name, class_name, delivery_mode,
		start_date, is_active, created_at, updated_at
		FROM allocations WHERE is_active = TRUE ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing active allocations: %w", err)
	}
	defer rows.Close()

	allocations := make([]*allocation.Allocation, 0)
	for rows.Next() {
		a := &allocation.Allocation{}
		if err := rows.Scan(
			&a.ID, &a.FacilitatorID, &a.ModuleName, &a.CohortName, &a.ClassName, &a.DeliveryMode,
			&a.StartDate, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning active allocation: %w", err)
		}
		allocations = append(allocations, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active allocations: %w", err)
	}
	return allocations, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"facilitator_activity_tracker/internal/domain/activity"

	"github.com/lib/pq"
)

// Custom errors specific to the activity repository.
var ErrActivityRecordNotFound = fmt.Errorf("activity record not found")
var ErrDuplicateActivityRecord = fmt.Errorf("duplicate activity record (allocation_id, week_number)")
var ErrAlreadySubmitted = fmt.Errorf("activity record already submitted")

const activityColumns = `id, allocation_id, facilitator_id, week_number,
	attendance_monitoring, form_one_grading, form_two_grading,
	summative_grading, course_moderation, intranet_sync,
	attendance, notes, submitted_at, created_at, updated_at`

type PostgresActivityRepository struct {
	db *sql.DB
}

func NewPostgresActivityRepository(db *sql.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

func (r *PostgresActivityRepository) Create(ctx context.Context, rec *activity.Record) error {
	query := `INSERT INTO activity_records
		(allocation_id, facilitator_id, week_number,
		 attendance_monitoring, form_one_grading, form_two_grading,
		 summative_grading, course_moderation, intranet_sync,
		 attendance, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		rec.AllocationID, rec.FacilitatorID, rec.WeekNumber,
		rec.AttendanceMonitoring, rec.FormOneGrading, rec.FormTwoGrading,
		rec.SummativeGrading, rec.CourseModeration, rec.IntranetSync,
		pq.Array(rec.Attendance), rec.Notes,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "activity_allocation_week_unique") {
			return ErrDuplicateActivityRecord
		}
		return fmt.Errorf("error creating activity record: %w", err)
	}
	return nil
}

func scanActivityRecord(row interface{ Scan(...any) error }) (*activity.Record, error) {
	rec := &activity.Record{}
	var attendance pq.BoolArray
	var submittedAt sql.NullTime
	err := row.Scan(
		&rec.ID, &rec.AllocationID, &rec.FacilitatorID, &rec.WeekNumber,
		&rec.AttendanceMonitoring, &rec.FormOneGrading, &rec.FormTwoGrading,
		&rec.SummativeGrading, &rec.CourseModeration, &rec.IntranetSync,
		&attendance, &rec.Notes, &submittedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Attendance = []bool(attendance)
	if submittedAt.Valid {
		t := submittedAt.Time
		rec.SubmittedAt = &t
	}
	return rec, nil
}

func (r *PostgresActivityRepository) GetByID(ctx context.Context, id int64) (*activity.Record, error) {
	query := `SELECT ` + activityColumns + ` FROM activity_records WHERE id = $1`
	rec, err := scanActivityRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrActivityRecordNotFound
		}
		return nil, fmt.Errorf("error getting activity record by ID: %w", err)
	}
	return rec, nil
}

func (r *PostgresActivityRepository) GetByAllocationAndWeek(ctx context.Context, allocationID int64, weekNumber int) (*activity.Record, error) {
	query := `SELECT ` + activityColumns + ` FROM activity_records
		WHERE allocation_id = $1 AND week_number = $2`
	rec, err := scanActivityRecord(r.db.QueryRowContext(ctx, query, allocationID, weekNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrActivityRecordNotFound
		}
		return nil, fmt.Errorf("error getting activity record by allocation and week: %w", err)
	}
	return rec, nil
}

func (r *PostgresActivityRepository) Update(ctx context.Context, rec *activity.Record) error {
	query := `UPDATE activity_records
		SET attendance_monitoring = $1, form_one_grading = $2, form_two_grading = $3,
		    summative_grading = $4, course_moderation = $5, intranet_sync = $6,
		    attendance = $7, notes = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		rec.AttendanceMonitoring, rec.FormOneGrading, rec.FormTwoGrading,
		rec.SummativeGrading, rec.CourseModeration, rec.IntranetSync,
		pq.Array(rec.Attendance), rec.Notes, rec.ID,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrActivityRecordNotFound
		}
		return fmt.Errorf("error updating activity record: %w", err)
	}
	return nil
}

// Submit sets submitted_at only when it is currently NULL. The WHERE clause
// is the compare-and-swap that makes the transition one-way even under
// concurrent submissions.
func (r *PostgresActivityRepository) Submit(ctx context.Context, id int64, submittedAt time.Time) (*activity.Record, error) {
	query := `UPDATE activity_records
		SET submitted_at = $1, updated_at = NOW()
		WHERE id = $2 AND submitted_at IS NULL
		RETURNING ` + activityColumns

	rec, err := scanActivityRecord(r.db.QueryRowContext(ctx, query, submittedAt, id))
	if err != nil {
		if err == sql.ErrNoRows {
			// Distinguish "does not exist" from "already submitted".
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("error submitting activity record: %w", err)
	}
	return rec, nil
}

func (r *PostgresActivityRepository) listQuery(ctx context.Context, query string, args ...any) ([]*activity.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying activity records: %w", err)
	}
	defer rows.Close()

	records := make([]*activity.Record, 0)
	for rows.Next() {
		rec, err := scanActivityRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning activity record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity record rows: %w", err)
	}
	return records, nil
}

func (r *PostgresActivityRepository) ListUnsubmitted(ctx context.Context) ([]*activity.Record, error) {
	query := `SELECT ` + activityColumns + ` FROM activity_records
		WHERE submitted_at IS NULL ORDER BY facilitator_id, week_number`
	return r.listQuery(ctx, query)
}

func (r *PostgresActivityRepository) ListByFacilitator(ctx context.Context, facilitatorID int64) ([]*activity.Record, error) {
	query := `SELECT ` + activityColumns + ` FROM activity_records
		WHERE facilitator_id = $1 ORDER BY week_number`
	return r.listQuery(ctx, query, facilitatorID)
}

package repository

import (
	"context"

	"lexcase-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository handles database operations for community reports
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create creates a new report with a Pending verdict
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO reports (user_id, full_name, address, location, message, verdict)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		report.UserID,
		report.FullName,
		report.Address,
		report.Location,
		report.Message,
		report.Verdict,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)

	return err
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report := &models.Report{}
	query := `
		SELECT id, user_id, full_name, address, location, message, verdict, reason, created_at, updated_at
		FROM reports
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.UserID,
		&report.FullName,
		&report.Address,
		&report.Location,
		&report.Message,
		&report.Verdict,
		&report.Reason,
		&report.CreatedAt,
		&report.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return report, nil
}

// List retrieves all reports, newest first
func (r *ReportRepository) List(ctx context.Context) ([]*models.Report, error) {
	query := `
		SELECT id, user_id, full_name, address, location, message, verdict, reason, created_at, updated_at
		FROM reports
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		report := &models.Report{}
		err := rows.Scan(
			&report.ID,
			&report.UserID,
			&report.FullName,
			&report.Address,
			&report.Location,
			&report.Message,
			&report.Verdict,
			&report.Reason,
			&report.CreatedAt,
			&report.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// UpdateVerdict sets a report's verdict and optional reason
func (r *ReportRepository) UpdateVerdict(ctx context.Context, id uuid.UUID, verdict models.ReportVerdict, reason *string) (bool, error) {
	query := `
		UPDATE reports SET verdict = $2, reason = $3, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, verdict, reason)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

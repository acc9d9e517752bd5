package repository

import (
	"context"
	"fmt"

	"lexcase-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CaseRepository handles database operations for cases and their summaries
type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create creates a new case
func (r *CaseRepository) Create(ctx context.Context, c *models.Case) error {
	query := `
		INSERT INTO cases (user_id, title, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		c.UserID,
		c.Title,
		c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	return err
}

// GetByID retrieves a case by ID
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	c := &models.Case{}
	query := `
		SELECT id, user_id, title, status, created_at, updated_at
		FROM cases
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.UserID,
		&c.Title,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return c, nil
}

// ListByUserID retrieves all cases for a user, newest first
func (r *CaseRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Case, error) {
	query := `
		SELECT id, user_id, title, status, created_at, updated_at
		FROM cases
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*models.Case
	for rows.Next() {
		c := &models.Case{}
		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Title,
			&c.Status,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}

	return cases, rows.Err()
}

// Delete removes a case row. Only used to unwind a failed intake; cases
// that completed intake are never deleted.
func (r *CaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, "DELETE FROM cases WHERE id = $1", id)
	return err
}

// UpdateStatus moves a case to a new status. The WHERE clause only matches
// open cases so a closed case can never transition again.
func (r *CaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CaseStatus) (bool, error) {
	query := `
		UPDATE cases SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`

	tag, err := r.db.Exec(ctx, query, id, status, models.CaseStatusOpen)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// CreateSummary creates the case's summary record
func (r *CaseRepository) CreateSummary(ctx context.Context, s *models.CaseSummary) error {
	query := `
		INSERT INTO case_summaries (
			case_id, valid, legitimate, case_type, entities, assets,
			document, document_content, supporting_documents,
			supporting_document_content, summary, recommendations,
			reference_list, remarks
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		s.CaseID,
		s.Valid,
		s.Legitimate,
		s.CaseType,
		s.Entities,
		s.Assets,
		s.Document,
		s.DocumentContent,
		s.SupportingDocuments,
		s.SupportingContent,
		s.Summary,
		s.Recommendations,
		s.References,
		s.Remarks,
	).Scan(&s.ID, &s.CreatedAt)

	return err
}

// GetSummaryByCaseID retrieves the summary owned by a case
func (r *CaseRepository) GetSummaryByCaseID(ctx context.Context, caseID uuid.UUID) (*models.CaseSummary, error) {
	s := &models.CaseSummary{}
	query := `
		SELECT id, case_id, valid, legitimate, case_type, entities, assets,
			document, document_content, supporting_documents,
			supporting_document_content, summary, recommendations,
			reference_list, remarks, created_at
		FROM case_summaries
		WHERE case_id = $1`

	err := r.db.QueryRow(ctx, query, caseID).Scan(
		&s.ID,
		&s.CaseID,
		&s.Valid,
		&s.Legitimate,
		&s.CaseType,
		&s.Entities,
		&s.Assets,
		&s.Document,
		&s.DocumentContent,
		&s.SupportingDocuments,
		&s.SupportingContent,
		&s.Summary,
		&s.Recommendations,
		&s.References,
		&s.Remarks,
		&s.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return s, nil
}

// UpdateRemarks sets the summary's remarks. Remarks is the only summary
// field that may change after creation.
func (r *CaseRepository) UpdateRemarks(ctx context.Context, caseID uuid.UUID, remarks string) error {
	query := `UPDATE case_summaries SET remarks = $2 WHERE case_id = $1`

	tag, err := r.db.Exec(ctx, query, caseID, remarks)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no summary for case %s", caseID)
	}

	return nil
}

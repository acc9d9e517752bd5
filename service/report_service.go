package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lexcase-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// reportStore is the report persistence surface the service needs
type reportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	List(ctx context.Context) ([]*models.Report, error)
	UpdateVerdict(ctx context.Context, id uuid.UUID, verdict models.ReportVerdict, reason *string) (bool, error)
}

// ReportService manages community reports about properties and claims.
// Reports start Pending and are moved to Verified or Not Verified by an
// admin review.
type ReportService struct {
	reports reportStore
	logger  *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(reports reportStore, logger *zap.Logger) (*ReportService, error) {
	if reports == nil {
		return nil, errors.New("report store not set")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{reports: reports, logger: logger}, nil
}

// Create files a new report. The verdict always starts Pending regardless of
// what the caller supplied.
func (s *ReportService) Create(ctx context.Context, identity models.Identity, report *models.Report) (*models.Report, error) {
	if strings.TrimSpace(report.Message) == "" {
		return nil, errors.New("report message must not be empty")
	}
	if strings.TrimSpace(report.Address) == "" {
		return nil, errors.New("report address must not be empty")
	}

	report.UserID = identity.UserID
	report.Verdict = models.VerdictPending
	report.Reason = nil

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.logger.Info("report filed",
		zap.String("report_id", report.ID.String()),
		zap.String("address", report.Address))

	return report, nil
}

// Get returns a report by ID
func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

// List returns all reports, newest first
func (s *ReportService) List(ctx context.Context) ([]*models.Report, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// Verify marks a report Verified
func (s *ReportService) Verify(ctx context.Context, id uuid.UUID, reason *string) error {
	return s.review(ctx, id, models.VerdictVerified, reason)
}

// Reject marks a report Not Verified
func (s *ReportService) Reject(ctx context.Context, id uuid.UUID, reason *string) error {
	return s.review(ctx, id, models.VerdictNotVerified, reason)
}

func (s *ReportService) review(ctx context.Context, id uuid.UUID, verdict models.ReportVerdict, reason *string) error {
	updated, err := s.reports.UpdateVerdict(ctx, id, verdict, reason)
	if err != nil {
		return fmt.Errorf("update report verdict: %w", err)
	}
	if !updated {
		return ErrReportNotFound
	}

	s.logger.Info("report reviewed",
		zap.String("report_id", id.String()),
		zap.String("verdict", string(verdict)))

	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"lexcase-backend/models"
	"lexcase-backend/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// caseStore is the case persistence surface the service needs
type caseStore interface {
	Create(ctx context.Context, c *models.Case) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Case, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CaseStatus) (bool, error)
	CreateSummary(ctx context.Context, s *models.CaseSummary) error
	GetSummaryByCaseID(ctx context.Context, caseID uuid.UUID) (*models.CaseSummary, error)
	UpdateRemarks(ctx context.Context, caseID uuid.UUID, remarks string) error
}

// summarizer produces a structured summary from stored document references
type summarizer interface {
	Summarize(ctx context.Context, primaryRef string, supportingRefs []string) (*models.CaseSummary, error)
}

// CaseService owns the case lifecycle: intake with document analysis, then a
// single transition out of Open. A case is only ever created together with
// its summary; rejected intake leaves no case behind.
type CaseService struct {
	cases      caseStore
	files      fileCreator
	summarizer summarizer
	store      storage.Storage
	logger     *zap.Logger
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

// CaseWithStore sets the case store
func CaseWithStore(s caseStore) CaseServiceOption {
	return func(c *CaseService) {
		c.cases = s
	}
}

// CaseWithFileCreator sets the file metadata store
func CaseWithFileCreator(f fileCreator) CaseServiceOption {
	return func(c *CaseService) {
		c.files = f
	}
}

// CaseWithSummarizer sets the document summarizer
func CaseWithSummarizer(s summarizer) CaseServiceOption {
	return func(c *CaseService) {
		c.summarizer = s
	}
}

// CaseWithStorage sets the document store
func CaseWithStorage(s storage.Storage) CaseServiceOption {
	return func(c *CaseService) {
		c.store = s
	}
}

// CaseWithLogger sets the logger
func CaseWithLogger(l *zap.Logger) CaseServiceOption {
	return func(c *CaseService) {
		c.logger = l
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) (*CaseService, error) {
	c := &CaseService{}
	for _, opt := range opts {
		opt(c)
	}
	if c.cases == nil {
		return nil, errors.New("case store not set")
	}
	if c.files == nil {
		return nil, errors.New("file store not set")
	}
	if c.summarizer == nil {
		return nil, errors.New("summarizer not set")
	}
	if c.store == nil {
		return nil, errors.New("document storage not set")
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// storedUpload tracks a blob written during intake so it can be cleaned up
// if the intake is rejected
type storedUpload struct {
	fileID uuid.UUID
	upload *DocumentUpload
	path   string
}

// CreateCase runs case intake: store the uploaded documents, summarize them,
// and only then create the case with its summary. If the primary document
// yields no text the intake is rejected, the stored blobs are removed best
// effort, and no case exists afterwards.
func (c *CaseService) CreateCase(
	ctx context.Context,
	identity models.Identity,
	title string,
	primary *DocumentUpload,
	supporting []*DocumentUpload,
) (*models.Case, *models.CaseSummary, error) {
	if primary == nil {
		return nil, nil, ErrNoExtractableText
	}

	stored := make([]storedUpload, 0, len(supporting)+1)
	for _, u := range append([]*DocumentUpload{primary}, supporting...) {
		fileID := uuid.New()
		path, err := c.store.Upload(ctx, fileID, u.Filename, u.Data)
		if err != nil {
			c.removeStored(stored)
			return nil, nil, fmt.Errorf("store case document: %w", err)
		}
		stored = append(stored, storedUpload{fileID: fileID, upload: u, path: path})
	}

	supportingRefs := make([]string, 0, len(supporting))
	for _, s := range stored[1:] {
		supportingRefs = append(supportingRefs, s.path)
	}

	summary, err := c.summarizer.Summarize(ctx, stored[0].path, supportingRefs)
	if err != nil {
		c.removeStored(stored)
		return nil, nil, err
	}

	if title == "" {
		title = primary.Filename
	}
	kase := &models.Case{
		UserID: identity.UserID,
		Title:  title,
		Status: models.CaseStatusOpen,
	}
	if err := c.cases.Create(ctx, kase); err != nil {
		c.removeStored(stored)
		return nil, nil, fmt.Errorf("create case: %w", err)
	}

	summary.CaseID = kase.ID
	if err := c.cases.CreateSummary(ctx, summary); err != nil {
		// A case must never exist without its summary; unwind the row
		// and the stored blobs.
		if delErr := c.cases.Delete(ctx, kase.ID); delErr != nil {
			c.logger.Error("failed to unwind case after summary failure",
				zap.String("case_id", kase.ID.String()),
				zap.Error(delErr))
		}
		c.removeStored(stored)
		return nil, nil, fmt.Errorf("create case summary: %w", err)
	}

	for _, s := range stored {
		file := &models.File{
			ID:          s.fileID,
			UserID:      identity.UserID,
			CaseID:      &kase.ID,
			Filename:    s.upload.Filename,
			MimeType:    s.upload.MimeType,
			Size:        s.upload.Size,
			StoragePath: s.path,
		}
		if err := c.files.Create(ctx, file); err != nil {
			c.logger.Error("failed to record case document",
				zap.String("case_id", kase.ID.String()),
				zap.String("filename", s.upload.Filename),
				zap.Error(err))
		}
	}

	return kase, summary, nil
}

// removeStored deletes intake blobs after a rejected or failed intake.
// Deletion failures are logged, not surfaced: the caller's error is the
// intake failure itself.
func (c *CaseService) removeStored(stored []storedUpload) {
	for _, s := range stored {
		if err := c.store.Delete(context.Background(), s.path); err != nil {
			c.logger.Warn("failed to clean up intake document",
				zap.String("path", s.path),
				zap.Error(err))
		}
	}
}

// GetCase returns a case by ID
func (c *CaseService) GetCase(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	kase, err := c.cases.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCaseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	return kase, nil
}

// ListCases returns the caller's cases, newest first
func (c *CaseService) ListCases(ctx context.Context, identity models.Identity) ([]*models.Case, error) {
	cases, err := c.cases.ListByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return cases, nil
}

// GetSummary returns the summary owned by a case
func (c *CaseService) GetSummary(ctx context.Context, caseID uuid.UUID) (*models.CaseSummary, error) {
	summary, err := c.cases.GetSummaryByCaseID(ctx, caseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get case summary: %w", err)
	}
	return summary, nil
}

// Resolve closes a case as resolved, optionally recording closing remarks
func (c *CaseService) Resolve(ctx context.Context, caseID uuid.UUID, remarks *string) error {
	return c.close(ctx, caseID, models.CaseStatusResolved, remarks)
}

// Abort closes a case as aborted, optionally recording closing remarks
func (c *CaseService) Abort(ctx context.Context, caseID uuid.UUID, remarks *string) error {
	return c.close(ctx, caseID, models.CaseStatusAborted, remarks)
}

// close performs the single allowed transition out of Open. The status
// update is guarded in SQL, so a case that already left Open is never
// transitioned twice even under concurrent calls.
func (c *CaseService) close(ctx context.Context, caseID uuid.UUID, status models.CaseStatus, remarks *string) error {
	moved, err := c.cases.UpdateStatus(ctx, caseID, status)
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	if !moved {
		// Either the case does not exist or it is already closed.
		if _, err := c.cases.GetByID(ctx, caseID); errors.Is(err, pgx.ErrNoRows) {
			return ErrCaseNotFound
		} else if err != nil {
			return fmt.Errorf("get case: %w", err)
		}
		return ErrCaseClosed
	}

	if remarks != nil {
		if err := c.cases.UpdateRemarks(ctx, caseID, *remarks); err != nil {
			c.logger.Warn("failed to record closing remarks",
				zap.String("case_id", caseID.String()),
				zap.Error(err))
		}
	}

	return nil
}

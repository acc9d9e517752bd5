package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"lexcase-backend/llm"
	"lexcase-backend/models"
	"lexcase-backend/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Placeholders used when a case has no summary on record, so the prompt
// stays well-formed instead of carrying empty sections.
const (
	noDocumentPlaceholder   = "No documents provided"
	noSupportingPlaceholder = "No supporting documents provided"
)

// summaryFinder is the slice of the case store the chat path reads
type summaryFinder interface {
	GetSummaryByCaseID(ctx context.Context, caseID uuid.UUID) (*models.CaseSummary, error)
}

// chatLog is the append-only chat history store
type chatLog interface {
	Insert(ctx context.Context, turn *models.ChatTurn) error
	ListByUserID(ctx context.Context, userID uuid.UUID, caseID *uuid.UUID) ([]*models.ChatTurn, error)
}

// fileCreator records stored document metadata
type fileCreator interface {
	Create(ctx context.Context, file *models.File) error
}

// DocumentUpload carries an incoming document through the core without any
// framework request types
type DocumentUpload struct {
	Filename string
	MimeType string
	Size     int64
	Data     io.Reader
}

// ChatService answers user questions, choosing between a law-only answer and
// a case-grounded answer, and appends one ChatTurn per successful call.
// Each call is stateless given its inputs.
type ChatService struct {
	search    KnowledgeSearch
	completer llm.Completer
	summaries summaryFinder
	chats     chatLog
	files     fileCreator
	store     storage.Storage
	logger    *zap.Logger
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithKnowledgeSearch sets the knowledge search
func ChatWithKnowledgeSearch(s KnowledgeSearch) ChatServiceOption {
	return func(c *ChatService) {
		c.search = s
	}
}

// ChatWithCompleter sets the text completion client
func ChatWithCompleter(completer llm.Completer) ChatServiceOption {
	return func(c *ChatService) {
		c.completer = completer
	}
}

// ChatWithSummaryFinder sets the case summary lookup
func ChatWithSummaryFinder(f summaryFinder) ChatServiceOption {
	return func(c *ChatService) {
		c.summaries = f
	}
}

// ChatWithChatLog sets the chat history store
func ChatWithChatLog(log chatLog) ChatServiceOption {
	return func(c *ChatService) {
		c.chats = log
	}
}

// ChatWithFileCreator sets the file metadata store
func ChatWithFileCreator(f fileCreator) ChatServiceOption {
	return func(c *ChatService) {
		c.files = f
	}
}

// ChatWithStorage sets the document store
func ChatWithStorage(s storage.Storage) ChatServiceOption {
	return func(c *ChatService) {
		c.store = s
	}
}

// ChatWithLogger sets the logger
func ChatWithLogger(l *zap.Logger) ChatServiceOption {
	return func(c *ChatService) {
		c.logger = l
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) (*ChatService, error) {
	c := &ChatService{}
	for _, opt := range opts {
		opt(c)
	}
	if c.search == nil {
		return nil, errors.New("knowledge search not set")
	}
	if c.completer == nil {
		return nil, errors.New("completion client not set")
	}
	if c.summaries == nil {
		return nil, errors.New("summary finder not set")
	}
	if c.chats == nil {
		return nil, errors.New("chat log not set")
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// Answer resolves a user query into a persisted ChatTurn. The call either
// fully succeeds and the turn is on record, or fully fails and nothing is
// written: no partial responses, no turn for a failed completion.
func (c *ChatService) Answer(
	ctx context.Context,
	identity models.Identity,
	query string,
	caseID *uuid.UUID,
	upload *DocumentUpload,
) (*models.ChatTurn, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	// An uploaded document needs a case to attach to; without one there is
	// no attachment point and the document is not stored.
	var documentRef *string
	if upload != nil && caseID != nil {
		ref, err := c.storeUpload(ctx, identity, *caseID, upload)
		if err != nil {
			return nil, err
		}
		documentRef = ref
	} else if upload != nil {
		c.logger.Warn("uploaded document ignored: no case specified",
			zap.String("filename", upload.Filename))
	}

	passages, err := c.search.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("knowledge search: %w", err)
	}

	passageText := joinPassages(passages)
	if passageText == "" {
		passageText = fallbackPassage
	}

	var answer string
	if caseID == nil {
		answer, err = c.answerLawOnly(ctx, passageText, query)
	} else {
		answer, err = c.answerCaseGrounded(ctx, passageText, query, *caseID)
	}
	if err != nil {
		return nil, err
	}

	turn := &models.ChatTurn{
		UserID:   identity.UserID,
		CaseID:   caseID,
		Query:    models.ChatMessage{Role: models.RoleUser, Content: query},
		Response: models.ChatMessage{Role: models.RoleBot, Content: answer},
		Document: documentRef,
	}

	if err := c.chats.Insert(ctx, turn); err != nil {
		return nil, fmt.Errorf("persist chat turn: %w", err)
	}

	return turn, nil
}

// answerLawOnly answers from retrieved law passages and general knowledge
func (c *ChatService) answerLawOnly(ctx context.Context, passages, query string) (string, error) {
	promptText, err := lawOnlyTemplate.Render(map[string]string{
		"passages": passages,
		"query":    query,
	})
	if err != nil {
		return "", fmt.Errorf("render law-only prompt: %w", err)
	}

	answer, err := c.completer.Complete(ctx, llm.CompletionRequest{
		System:      chatSystem,
		Prompt:      promptText,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("generate law-only answer: %w", err)
	}
	return answer, nil
}

// answerCaseGrounded answers grounded in the case's summarized documents.
// A case without a summary on record is answered with placeholders rather
// than failing the call.
func (c *ChatService) answerCaseGrounded(ctx context.Context, passages, query string, caseID uuid.UUID) (string, error) {
	documentText := noDocumentPlaceholder
	supportingText := noSupportingPlaceholder

	summary, err := c.summaries.GetSummaryByCaseID(ctx, caseID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		c.logger.Warn("no summary on record for case",
			zap.String("case_id", caseID.String()))
	case err != nil:
		return "", fmt.Errorf("look up case summary: %w", err)
	default:
		if strings.TrimSpace(summary.DocumentContent) != "" {
			documentText = boundPromptText(summary.DocumentContent, maxDocumentPromptBytes)
		}
		if strings.TrimSpace(summary.SupportingContent) != "" {
			supportingText = boundPromptText(summary.SupportingContent, maxDocumentPromptBytes)
		}
	}

	promptText, err := caseGroundedTemplate.Render(map[string]string{
		"passages":             passages,
		"document":             documentText,
		"supporting_documents": supportingText,
		"query":                query,
	})
	if err != nil {
		return "", fmt.Errorf("render case-grounded prompt: %w", err)
	}

	answer, err := c.completer.Complete(ctx, llm.CompletionRequest{
		System:      chatSystem,
		Prompt:      promptText,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("generate case-grounded answer: %w", err)
	}
	return answer, nil
}

// storeUpload persists an uploaded document and its metadata, returning the
// document reference to record on the ChatTurn
func (c *ChatService) storeUpload(ctx context.Context, identity models.Identity, caseID uuid.UUID, upload *DocumentUpload) (*string, error) {
	if c.store == nil || c.files == nil {
		return nil, errors.New("document storage not configured")
	}

	fileID := uuid.New()
	path, err := c.store.Upload(ctx, fileID, upload.Filename, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("store uploaded document: %w", err)
	}

	file := &models.File{
		UserID:      identity.UserID,
		CaseID:      &caseID,
		Filename:    upload.Filename,
		MimeType:    upload.MimeType,
		Size:        upload.Size,
		StoragePath: path,
	}
	if err := c.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("record uploaded document: %w", err)
	}

	url := c.store.URL(path)
	return &url, nil
}

// History returns the caller's chat turns, newest first. A non-nil caseID
// restricts the listing to that case.
func (c *ChatService) History(ctx context.Context, identity models.Identity, caseID *uuid.UUID) ([]*models.ChatTurn, error) {
	turns, err := c.chats.ListByUserID(ctx, identity.UserID, caseID)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}
	return turns, nil
}

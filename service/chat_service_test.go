package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"lexcase-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearch serves canned passages
type fakeSearch struct {
	passages []string
	err      error
}

func (f *fakeSearch) Search(_ context.Context, _ string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

// fakeSummaryFinder serves one summary keyed by case ID
type fakeSummaryFinder struct {
	summaries map[uuid.UUID]*models.CaseSummary
}

func (f *fakeSummaryFinder) GetSummaryByCaseID(_ context.Context, caseID uuid.UUID) (*models.CaseSummary, error) {
	if s, ok := f.summaries[caseID]; ok {
		return s, nil
	}
	return nil, pgx.ErrNoRows
}

// fakeChatLog records inserted turns
type fakeChatLog struct {
	turns     []*models.ChatTurn
	insertErr error
}

func (f *fakeChatLog) Insert(_ context.Context, turn *models.ChatTurn) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	turn.ID = uuid.New()
	turn.CreatedAt = time.Now()
	f.turns = append(f.turns, turn)
	return nil
}

func (f *fakeChatLog) ListByUserID(_ context.Context, userID uuid.UUID, caseID *uuid.UUID) ([]*models.ChatTurn, error) {
	var out []*models.ChatTurn
	for i := len(f.turns) - 1; i >= 0; i-- {
		turn := f.turns[i]
		if turn.UserID != userID {
			continue
		}
		if caseID != nil && (turn.CaseID == nil || *turn.CaseID != *caseID) {
			continue
		}
		out = append(out, turn)
	}
	return out, nil
}

// fakeFileStore records created file rows
type fakeFileStore struct {
	files []*models.File
}

func (f *fakeFileStore) Create(_ context.Context, file *models.File) error {
	file.ID = uuid.New()
	f.files = append(f.files, file)
	return nil
}

// fakeBlobStore keeps uploads in memory
type fakeBlobStore struct {
	blobs   map[string][]byte
	deleted []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (f *fakeBlobStore) Upload(_ context.Context, fileID uuid.UUID, filename string, data io.Reader) (string, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	path := fileID.String() + "/" + filename
	f.blobs[path] = content
	return path, nil
}

func (f *fakeBlobStore) Download(_ context.Context, storagePath string) (io.ReadCloser, error) {
	content, ok := f.blobs[storagePath]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(string(content))), nil
}

func (f *fakeBlobStore) Delete(_ context.Context, storagePath string) error {
	delete(f.blobs, storagePath)
	f.deleted = append(f.deleted, storagePath)
	return nil
}

func (f *fakeBlobStore) URL(storagePath string) string {
	return "http://files.test/" + storagePath
}

func newChatService(t *testing.T, search KnowledgeSearch, completer *fakeCompleter, finder *fakeSummaryFinder, log *fakeChatLog) *ChatService {
	t.Helper()
	if finder == nil {
		finder = &fakeSummaryFinder{}
	}
	svc, err := NewChatService(
		ChatWithKnowledgeSearch(search),
		ChatWithCompleter(completer),
		ChatWithSummaryFinder(finder),
		ChatWithChatLog(log),
		ChatWithFileCreator(&fakeFileStore{}),
		ChatWithStorage(newFakeBlobStore()),
	)
	require.NoError(t, err)
	return svc
}

func TestAnswerLawOnly(t *testing.T) {
	t.Parallel()

	search := &fakeSearch{passages: []string{"Passage on land registration.", "Passage on adverse possession."}}
	completer := &fakeCompleter{output: "You should register the transfer promptly."}
	log := &fakeChatLog{}
	svc := newChatService(t, search, completer, nil, log)

	identity := models.Authenticated(uuid.New())
	turn, err := svc.Answer(context.Background(), identity, "How do I register land?", nil, nil)
	require.NoError(t, err)

	assert.Nil(t, turn.CaseID, "law-only answers carry no case")
	assert.Nil(t, turn.Document)
	assert.Equal(t, models.RoleUser, turn.Query.Role)
	assert.Equal(t, "How do I register land?", turn.Query.Content)
	assert.Equal(t, models.RoleBot, turn.Response.Role)
	assert.Equal(t, "You should register the transfer promptly.", turn.Response.Content)

	require.Len(t, completer.reqs, 1)
	assert.Contains(t, completer.reqs[0].Prompt, "Passage on land registration.")
	assert.Contains(t, completer.reqs[0].Prompt, "Passage on adverse possession.")

	require.Len(t, log.turns, 1)
}

func TestAnswerEmptyQuery(t *testing.T) {
	t.Parallel()

	log := &fakeChatLog{}
	svc := newChatService(t, &fakeSearch{}, &fakeCompleter{output: "x"}, nil, log)

	_, err := svc.Answer(context.Background(), models.Authenticated(uuid.New()), "   ", nil, nil)
	require.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, log.turns)
}

func TestAnswerFallbackPassage(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{output: "General guidance."}
	log := &fakeChatLog{}
	svc := newChatService(t, &fakeSearch{}, completer, nil, log)

	_, err := svc.Answer(context.Background(), models.Authenticated(uuid.New()), "What is escheat?", nil, nil)
	require.NoError(t, err)

	require.Len(t, completer.reqs, 1)
	assert.Contains(t, completer.reqs[0].Prompt, fallbackPassage,
		"empty retrieval falls back to the canned passage")
}

func TestAnswerSearchFailure(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{output: "unused"}
	log := &fakeChatLog{}
	svc := newChatService(t, &fakeSearch{err: errors.New("index offline")}, completer, nil, log)

	_, err := svc.Answer(context.Background(), models.Authenticated(uuid.New()), "What is escheat?", nil, nil)
	require.Error(t, err)
	assert.Empty(t, completer.reqs, "a failed search never reaches the model")
	assert.Empty(t, log.turns)
}

func TestAnswerCaseGrounded(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	finder := &fakeSummaryFinder{summaries: map[uuid.UUID]*models.CaseSummary{
		caseID: {
			CaseID:            caseID,
			DocumentContent:   "Will of the deceased leaving Plot 14 to Jane.",
			SupportingContent: "1. Deed of transfer.",
		},
	}}
	completer := &fakeCompleter{output: "The will controls."}
	log := &fakeChatLog{}
	svc := newChatService(t, &fakeSearch{passages: []string{"Succession Act passage."}}, completer, finder, log)

	turn, err := svc.Answer(context.Background(), models.Authenticated(uuid.New()), "Who inherits Plot 14?", &caseID, nil)
	require.NoError(t, err)

	require.NotNil(t, turn.CaseID)
	assert.Equal(t, caseID, *turn.CaseID)

	require.Len(t, completer.reqs, 1)
	assert.Contains(t, completer.reqs[0].Prompt, "Will of the deceased leaving Plot 14 to Jane.")
	assert.Contains(t, completer.reqs[0].Prompt, "1. Deed of transfer.")
	assert.Contains(t, completer.reqs[0].Prompt, "Succession Act passage.")
}

func TestAnswerCaseWithoutSummary(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	completer := &fakeCompleter{output: "I have no documents for this case."}
	log := &fakeChatLog{}
	svc := newChatService(t, &fakeSearch{}, completer, &fakeSummaryFinder{}, log)

	_, err := svc.Answer(context.Background(), models.Authenticated(uuid.New()), "What do my documents say?", &caseID, nil)
	require.NoError(t, err, "a case without a summary still gets an answer")

	require.Len(t, completer.reqs, 1)
	assert.Contains(t, completer.reqs[0].Prompt, noDocumentPlaceholder)
	assert.Contains(t, completer.reqs[0].Prompt, noSupportingPlaceholder)

	require.Len(t, log.turns, 1)
	require.NotNil(t, log.turns[0].CaseID)
	assert.Equal(t, caseID, *log.turns[0].CaseID)
}

func TestAnswerCompletionFailureWritesNothing(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{err: errors.New("upstream unavailable")}
	log := &fakeChatLog{}
	svc := newChatService(t, &fakeSearch{passages: []string{"p"}}, completer, nil, log)

	_, err := svc.Answer(context.Background(), models.Authenticated(uuid.New()), "Question?", nil, nil)
	require.Error(t, err)
	assert.Empty(t, log.turns, "no turn is recorded for a failed completion")
	assert.Len(t, completer.reqs, 1, "completions are not retried")
}

func TestAnswerInsertFailure(t *testing.T) {
	t.Parallel()

	completer := &fakeCompleter{output: "An answer."}
	log := &fakeChatLog{insertErr: errors.New("db down")}
	svc := newChatService(t, &fakeSearch{passages: []string{"p"}}, completer, nil, log)

	turn, err := svc.Answer(context.Background(), models.Authenticated(uuid.New()), "Question?", nil, nil)
	require.Error(t, err)
	assert.Nil(t, turn, "the call fails as a whole when the turn cannot be recorded")
}

func TestAnswerStoresUploadForCase(t *testing.T) {
	t.Parallel()

	caseID := uuid.New()
	files := &fakeFileStore{}
	blobs := newFakeBlobStore()
	log := &fakeChatLog{}
	completer := &fakeCompleter{output: "Noted."}
	svc, err := NewChatService(
		ChatWithKnowledgeSearch(&fakeSearch{}),
		ChatWithCompleter(completer),
		ChatWithSummaryFinder(&fakeSummaryFinder{}),
		ChatWithChatLog(log),
		ChatWithFileCreator(files),
		ChatWithStorage(blobs),
	)
	require.NoError(t, err)

	identity := models.Authenticated(uuid.New())
	upload := &DocumentUpload{
		Filename: "notice.pdf",
		MimeType: "application/pdf",
		Size:     4,
		Data:     strings.NewReader("%PDF"),
	}
	turn, err := svc.Answer(context.Background(), identity, "Please note this document.", &caseID, upload)
	require.NoError(t, err)

	require.NotNil(t, turn.Document)
	assert.Contains(t, *turn.Document, "notice.pdf")

	require.Len(t, files.files, 1)
	assert.Equal(t, identity.UserID, files.files[0].UserID)
	require.NotNil(t, files.files[0].CaseID)
	assert.Equal(t, caseID, *files.files[0].CaseID)
	assert.Len(t, blobs.blobs, 1)
}

func TestAnswerIgnoresUploadWithoutCase(t *testing.T) {
	t.Parallel()

	files := &fakeFileStore{}
	blobs := newFakeBlobStore()
	log := &fakeChatLog{}
	svc, err := NewChatService(
		ChatWithKnowledgeSearch(&fakeSearch{}),
		ChatWithCompleter(&fakeCompleter{output: "Answer."}),
		ChatWithSummaryFinder(&fakeSummaryFinder{}),
		ChatWithChatLog(log),
		ChatWithFileCreator(files),
		ChatWithStorage(blobs),
	)
	require.NoError(t, err)

	upload := &DocumentUpload{Filename: "stray.pdf", Data: strings.NewReader("%PDF")}
	turn, err := svc.Answer(context.Background(), models.Authenticated(uuid.New()), "Question?", nil, upload)
	require.NoError(t, err)

	assert.Nil(t, turn.Document, "an upload without a case is not stored")
	assert.Empty(t, files.files)
	assert.Empty(t, blobs.blobs)
}

func TestHistoryFiltersAndOrders(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	caseID := uuid.New()
	otherCase := uuid.New()
	log := &fakeChatLog{}
	svc := newChatService(t, &fakeSearch{}, &fakeCompleter{output: "x"}, nil, log)

	for _, cid := range []*uuid.UUID{nil, &caseID, &otherCase, &caseID} {
		require.NoError(t, log.Insert(context.Background(), &models.ChatTurn{
			UserID: userID,
			CaseID: cid,
		}))
	}

	all, err := svc.History(context.Background(), models.Authenticated(userID), nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	scoped, err := svc.History(context.Background(), models.Authenticated(userID), &caseID)
	require.NoError(t, err)
	assert.Len(t, scoped, 2)
}

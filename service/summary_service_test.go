package service

import (
	"context"
	"errors"
	"testing"

	"lexcase-backend/extract"
	"lexcase-backend/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor serves canned text per storage path
type fakeExtractor struct {
	texts map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeExtractor) Extract(_ context.Context, storagePath string) (string, error) {
	f.calls = append(f.calls, storagePath)
	if err, ok := f.errs[storagePath]; ok {
		return "", err
	}
	return f.texts[storagePath], nil
}

// fakeCompleter returns a canned completion and records the prompts it saw
type fakeCompleter struct {
	output string
	err    error
	reqs   []llm.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

const fullSummaryJSON = `{
	"valid": true,
	"legitimate": true,
	"case_type": "Inheritance",
	"entities": [{"name": "Jane Doe", "entity_type": "person", "valid": true}],
	"assets": [{"name": "Plot 14", "location": "Riverside", "asset_type": "land", "net_worth": null, "coordinates": null}],
	"summary": "A contested inheritance over Plot 14.",
	"recommendations": ["Obtain the original title deed"],
	"references": ["Succession Act s.32"]
}`

func newSummaryService(t *testing.T, extractor *fakeExtractor, completer *fakeCompleter) *SummaryService {
	t.Helper()
	svc, err := NewSummaryService(
		SummaryWithExtractor(extractor),
		SummaryWithCompleter(completer),
	)
	require.NoError(t, err)
	return svc
}

func TestSummarizeFullOutput(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{texts: map[string]string{
		"docs/will.pdf": "Last will and testament of John Doe.",
	}}
	completer := &fakeCompleter{output: fullSummaryJSON}
	svc := newSummaryService(t, extractor, completer)

	summary, err := svc.Summarize(context.Background(), "docs/will.pdf", nil)
	require.NoError(t, err)

	assert.True(t, summary.Valid)
	assert.True(t, summary.Legitimate)
	assert.Equal(t, "Inheritance", summary.CaseType)
	assert.Equal(t, "A contested inheritance over Plot 14.", summary.Summary)
	assert.Equal(t, "docs/will.pdf", summary.Document)
	assert.Equal(t, "Last will and testament of John Doe.", summary.DocumentContent)
	require.Len(t, summary.Entities, 1)
	assert.Equal(t, "Jane Doe", summary.Entities[0].Name)
	require.Len(t, summary.Assets, 1)
	assert.Equal(t, "Plot 14", summary.Assets[0].Name)
	assert.Equal(t, []string{"Obtain the original title deed"}, summary.Recommendations)
	assert.Equal(t, []string{"Succession Act s.32"}, summary.References)
}

func TestSummarizeRejectsUnreadablePrimary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extractor *fakeExtractor
	}{
		{
			name: "extraction error",
			extractor: &fakeExtractor{errs: map[string]error{
				"docs/scan.pdf": extract.ErrNoText,
			}},
		},
		{
			name: "whitespace only",
			extractor: &fakeExtractor{texts: map[string]string{
				"docs/scan.pdf": "   \n\t ",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			completer := &fakeCompleter{output: fullSummaryJSON}
			svc := newSummaryService(t, tt.extractor, completer)

			summary, err := svc.Summarize(context.Background(), "docs/scan.pdf", []string{"docs/extra.pdf"})
			require.ErrorIs(t, err, ErrNoExtractableText)
			assert.Nil(t, summary)
			assert.Empty(t, completer.reqs, "rejected input must not reach the model")
		})
	}
}

func TestSummarizeDropsFailedSupportingDocuments(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{
		texts: map[string]string{
			"docs/will.pdf":    "Primary document text.",
			"docs/deed.pdf":    "Deed of transfer.",
			"docs/receipt.pdf": "Payment receipt.",
		},
		errs: map[string]error{
			"docs/survey.pdf": extract.ErrNoText,
		},
	}
	completer := &fakeCompleter{output: fullSummaryJSON}
	svc := newSummaryService(t, extractor, completer)

	summary, err := svc.Summarize(context.Background(), "docs/will.pdf",
		[]string{"docs/deed.pdf", "docs/survey.pdf", "docs/receipt.pdf"})
	require.NoError(t, err)

	// Survivors keep the ordinal of their input position.
	assert.Equal(t, "1. Deed of transfer.\n3. Payment receipt.", summary.SupportingContent)
	assert.Equal(t, []string{"docs/deed.pdf", "docs/survey.pdf", "docs/receipt.pdf"},
		summary.SupportingDocuments)

	require.Len(t, completer.reqs, 1)
	assert.Contains(t, completer.reqs[0].Prompt, "1. Deed of transfer.")
	assert.Contains(t, completer.reqs[0].Prompt, "3. Payment receipt.")
	assert.NotContains(t, completer.reqs[0].Prompt, "2. ")
}

func TestSummarizeAppliesDefaults(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{texts: map[string]string{
		"docs/will.pdf": "Some document text.",
	}}
	completer := &fakeCompleter{output: `{
		"valid": null,
		"legitimate": true,
		"case_type": null,
		"entities": null,
		"assets": null,
		"summary": "",
		"recommendations": null,
		"references": null
	}`}
	svc := newSummaryService(t, extractor, completer)

	summary, err := svc.Summarize(context.Background(), "docs/will.pdf", nil)
	require.NoError(t, err)

	assert.False(t, summary.Valid, "null valid defaults to false")
	assert.True(t, summary.Legitimate, "explicit true survives")
	assert.Equal(t, "Dispute", summary.CaseType)
	assert.Equal(t, "No summary generated", summary.Summary)
	assert.NotNil(t, summary.Entities)
	assert.Empty(t, summary.Entities)
	assert.NotNil(t, summary.Assets)
	assert.Empty(t, summary.Assets)
	assert.NotNil(t, summary.Recommendations)
	assert.Empty(t, summary.Recommendations)
}

func TestSummarizeMalformedOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
	}{
		{"plain prose", "I could not analyze this document."},
		{"truncated object", `{"valid": true, "legitimate":`},
		{"unknown field", `{"valid": true, "verdict": "ok"}`},
		{"trailing content", `{"valid": true} and some commentary`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			extractor := &fakeExtractor{texts: map[string]string{
				"docs/will.pdf": "Some document text.",
			}}
			completer := &fakeCompleter{output: tt.output}
			svc := newSummaryService(t, extractor, completer)

			summary, err := svc.Summarize(context.Background(), "docs/will.pdf", nil)
			require.ErrorIs(t, err, ErrMalformedModelOutput)
			assert.Nil(t, summary)
		})
	}
}

func TestSummarizeStripsCodeFences(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{texts: map[string]string{
		"docs/will.pdf": "Some document text.",
	}}
	completer := &fakeCompleter{output: "```json\n" + fullSummaryJSON + "\n```"}
	svc := newSummaryService(t, extractor, completer)

	summary, err := svc.Summarize(context.Background(), "docs/will.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "Inheritance", summary.CaseType)
}

func TestSummarizeCompletionFailure(t *testing.T) {
	t.Parallel()

	extractor := &fakeExtractor{texts: map[string]string{
		"docs/will.pdf": "Some document text.",
	}}
	completer := &fakeCompleter{err: errors.New("upstream unavailable")}
	svc := newSummaryService(t, extractor, completer)

	summary, err := svc.Summarize(context.Background(), "docs/will.pdf", nil)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Len(t, completer.reqs, 1, "completions are not retried")
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lexcase-backend/extract"
	"lexcase-backend/llm"
	"lexcase-backend/models"

	"go.uber.org/zap"
)

// Defaults applied when the model omits or nulls a required summary field
const (
	defaultCaseType = "Dispute"
	defaultSummary  = "No summary generated"
)

// SummaryService turns a case's documents into a structured CaseSummary.
// It does not persist: CaseService writes the case and its summary together
// so a rejected intake never leaves a partial record behind.
type SummaryService struct {
	extractor extract.Extractor
	completer llm.Completer
	logger    *zap.Logger
}

// SummaryServiceOption is a functional option for SummaryService
type SummaryServiceOption func(*SummaryService)

// SummaryWithExtractor sets the document extractor
func SummaryWithExtractor(e extract.Extractor) SummaryServiceOption {
	return func(s *SummaryService) {
		s.extractor = e
	}
}

// SummaryWithCompleter sets the text completion client
func SummaryWithCompleter(c llm.Completer) SummaryServiceOption {
	return func(s *SummaryService) {
		s.completer = c
	}
}

// SummaryWithLogger sets the logger
func SummaryWithLogger(l *zap.Logger) SummaryServiceOption {
	return func(s *SummaryService) {
		s.logger = l
	}
}

// NewSummaryService creates a new summary service
func NewSummaryService(opts ...SummaryServiceOption) (*SummaryService, error) {
	s := &SummaryService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		return nil, errors.New("document extractor not set")
	}
	if s.completer == nil {
		return nil, errors.New("completion client not set")
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s, nil
}

// modelSummary is the shape the model is instructed to return. Pointer
// fields distinguish "model said null" from a real value so defaults can be
// applied per field.
type modelSummary struct {
	Valid           *bool             `json:"valid"`
	Legitimate      *bool             `json:"legitimate"`
	CaseType        *string           `json:"case_type"`
	Entities        models.EntityList `json:"entities"`
	Assets          models.AssetList  `json:"assets"`
	Summary         *string           `json:"summary"`
	Recommendations []string          `json:"recommendations"`
	References      []string          `json:"references"`
}

// Summarize extracts the case documents and asks the model for a structured
// analysis. A primary document without readable text is rejected input; a
// supporting document without readable text is dropped and the rest keep
// their original 1-based ordinals.
func (s *SummaryService) Summarize(
	ctx context.Context,
	primaryRef string,
	supportingRefs []string,
) (*models.CaseSummary, error) {
	text, err := s.extractor.Extract(ctx, primaryRef)
	if err != nil {
		if errors.Is(err, extract.ErrNoText) {
			return nil, ErrNoExtractableText
		}
		return nil, fmt.Errorf("extract primary document: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoExtractableText
	}

	supportingText := s.extractSupporting(ctx, supportingRefs)

	vars := map[string]string{
		"document": boundPromptText(text, maxDocumentPromptBytes),
	}
	if supportingText != "" {
		vars["supporting_documents"] = boundPromptText(supportingText, maxDocumentPromptBytes)
	}

	promptText, err := summaryTemplate.Render(vars)
	if err != nil {
		return nil, fmt.Errorf("render summary prompt: %w", err)
	}

	raw, err := s.completer.Complete(ctx, llm.CompletionRequest{
		System:      summarySystem,
		Prompt:      promptText,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	parsed, err := parseModelSummary(raw)
	if err != nil {
		s.logger.Error("model returned malformed summary",
			zap.Int("output_bytes", len(raw)),
			zap.Error(err))
		return nil, err
	}

	summary := &models.CaseSummary{
		Valid:               false,
		Legitimate:          false,
		CaseType:            defaultCaseType,
		Entities:            parsed.Entities,
		Assets:              parsed.Assets,
		Document:            primaryRef,
		DocumentContent:     text,
		SupportingDocuments: supportingRefs,
		SupportingContent:   supportingText,
		Summary:             defaultSummary,
		Recommendations:     parsed.Recommendations,
		References:          parsed.References,
	}
	if parsed.Valid != nil {
		summary.Valid = *parsed.Valid
	}
	if parsed.Legitimate != nil {
		summary.Legitimate = *parsed.Legitimate
	}
	if parsed.CaseType != nil && *parsed.CaseType != "" {
		summary.CaseType = *parsed.CaseType
	}
	if parsed.Summary != nil && *parsed.Summary != "" {
		summary.Summary = *parsed.Summary
	}
	if summary.Entities == nil {
		summary.Entities = models.EntityList{}
	}
	if summary.Assets == nil {
		summary.Assets = models.AssetList{}
	}
	if summary.Recommendations == nil {
		summary.Recommendations = []string{}
	}

	return summary, nil
}

// extractSupporting extracts each supporting document independently. A
// document that fails extraction is omitted; the survivors keep the ordinal
// of their input position.
func (s *SummaryService) extractSupporting(ctx context.Context, refs []string) string {
	var parts []string
	for i, ref := range refs {
		text, err := s.extractor.Extract(ctx, ref)
		if err != nil || strings.TrimSpace(text) == "" {
			s.logger.Warn("supporting document omitted",
				zap.String("document", ref),
				zap.Int("ordinal", i+1),
				zap.Error(err))
			continue
		}
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, text))
	}
	return strings.Join(parts, "\n")
}

// parseModelSummary parses completion output strictly as the summary schema
func parseModelSummary(raw string) (*modelSummary, error) {
	cleaned := stripCodeFences(raw)

	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.DisallowUnknownFields()

	var parsed modelSummary
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing content after JSON object", ErrMalformedModelOutput)
	}

	return &parsed, nil
}

// stripCodeFences removes a markdown code fence the model sometimes wraps
// around JSON despite being told not to
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

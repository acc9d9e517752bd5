package service

import "errors"

var (
	// ErrNoExtractableText means the primary document yielded no readable
	// text. This is rejected input, never retried.
	ErrNoExtractableText = errors.New("primary document has no extractable text")

	// ErrMalformedModelOutput means a completion did not parse as the
	// expected structure. Always fatal for the request; nothing derived
	// from it is persisted.
	ErrMalformedModelOutput = errors.New("model output does not match expected structure")

	ErrEmptyQuery      = errors.New("query must not be empty")
	ErrCaseNotFound    = errors.New("case not found")
	ErrCaseClosed      = errors.New("case is already resolved or aborted")
	ErrSummaryNotFound = errors.New("case summary not found")
	ErrReportNotFound  = errors.New("report not found")
)

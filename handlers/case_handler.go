package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"lexcase-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CaseHandler handles HTTP requests for case operations
type CaseHandler struct {
	caseService *service.CaseService
	maxFileSize int64
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(caseService *service.CaseService) *CaseHandler {
	return &CaseHandler{
		caseService: caseService,
		maxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// CreateCase handles POST /api/cases. The request is multipart: a title, one
// primary document and any number of supporting documents.
func (h *CaseHandler) CreateCase(c *gin.Context) {
	identity := callerIdentity(c)
	title := c.PostForm("title")

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FORM",
				"message": "Multipart form is required",
			},
		})
		return
	}

	primaryHeaders := form.File["document"]
	if len(primaryHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_DOCUMENT",
				"message": "A primary document is required",
			},
		})
		return
	}

	primary, closer, ok := h.openUpload(c, primaryHeaders[0])
	if !ok {
		return
	}
	defer closer.Close()

	var supporting []*service.DocumentUpload
	var closers []multipart.File
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()
	for _, header := range form.File["supporting_documents"] {
		upload, file, ok := h.openUpload(c, header)
		if !ok {
			return
		}
		closers = append(closers, file)
		supporting = append(supporting, upload)
	}

	kase, summary, err := h.caseService.CreateCase(c.Request.Context(), identity, title, primary, supporting)
	if err != nil {
		if errors.Is(err, service.ErrNoExtractableText) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_EXTRACTABLE_TEXT",
					"message": "The primary document contains no readable text",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CASE_CREATION_FAILED",
				"message": fmt.Sprintf("Failed to create case: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"case":    kase,
			"summary": summary,
		},
	})
}

// openUpload opens one multipart file as a DocumentUpload, writing the error
// response itself on failure
func (h *CaseHandler) openUpload(c *gin.Context, header *multipart.FileHeader) (*service.DocumentUpload, multipart.File, bool) {
	if header.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return nil, nil, false
	}

	return &service.DocumentUpload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Data:     file,
	}, file, true
}

// GetCase handles GET /api/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	kase, err := h.caseService.GetCase(c.Request.Context(), id)
	if err != nil {
		h.writeCaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    kase,
	})
}

// ListCases handles GET /api/cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	identity := callerIdentity(c)

	cases, err := h.caseService.ListCases(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": fmt.Sprintf("Failed to list cases: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cases,
	})
}

// GetSummary handles GET /api/cases/:id/summary
func (h *CaseHandler) GetSummary(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.caseService.GetSummary(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSummaryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Case summary not found",
				},
			})
			return
		}
		h.writeCaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}

// closeRequest is the JSON body for resolve/abort
type closeRequest struct {
	Remarks *string `json:"remarks"`
}

// ResolveCase handles POST /api/cases/:id/resolve
func (h *CaseHandler) ResolveCase(c *gin.Context) {
	h.closeCase(c, h.caseService.Resolve)
}

// AbortCase handles POST /api/cases/:id/abort
func (h *CaseHandler) AbortCase(c *gin.Context) {
	h.closeCase(c, h.caseService.Abort)
}

func (h *CaseHandler) closeCase(c *gin.Context, apply func(ctx context.Context, id uuid.UUID, remarks *string) error) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req closeRequest
	// The body is optional; remarks just stay unset.
	_ = c.ShouldBindJSON(&req)

	if err := apply(c.Request.Context(), id, req.Remarks); err != nil {
		h.writeCaseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// writeCaseError maps service errors to HTTP responses
func (h *CaseHandler) writeCaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCaseNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Case not found",
			},
		})
	case errors.Is(err, service.ErrCaseClosed):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CASE_CLOSED",
				"message": "Case is already resolved or aborted",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": err.Error(),
			},
		})
	}
}

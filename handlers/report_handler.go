package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"lexcase-backend/models"
	"lexcase-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportHandler handles HTTP requests for community reports
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// createReportRequest is the JSON body for filing a report
type createReportRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Address  string `json:"address" binding:"required"`
	Location string `json:"location"`
	Message  string `json:"message" binding:"required"`
}

// CreateReport handles POST /api/reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	identity := callerIdentity(c)

	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	report, err := h.reportService.Create(c.Request.Context(), identity, &models.Report{
		FullName: req.FullName,
		Address:  req.Address,
		Location: req.Location,
		Message:  req.Message,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REPORT_CREATION_FAILED",
				"message": fmt.Sprintf("Failed to create report: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    report,
	})
}

// GetReport handles GET /api/reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	report, err := h.reportService.Get(c.Request.Context(), id)
	if err != nil {
		h.writeReportError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// ListReports handles GET /api/reports
func (h *ReportHandler) ListReports(c *gin.Context) {
	reports, err := h.reportService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": fmt.Sprintf("Failed to list reports: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reports,
	})
}

// reviewRequest is the JSON body for a verdict update
type reviewRequest struct {
	Reason *string `json:"reason"`
}

// VerifyReport handles POST /api/reports/:id/verify (admin only)
func (h *ReportHandler) VerifyReport(c *gin.Context) {
	h.review(c, h.reportService.Verify)
}

// RejectReport handles POST /api/reports/:id/reject (admin only)
func (h *ReportHandler) RejectReport(c *gin.Context) {
	h.review(c, h.reportService.Reject)
}

func (h *ReportHandler) review(c *gin.Context, apply func(ctx context.Context, id uuid.UUID, reason *string) error) {
	if !requireAdmin(c) {
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	_ = c.ShouldBindJSON(&req)

	if err := apply(c.Request.Context(), id, req.Reason); err != nil {
		h.writeReportError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

// writeReportError maps service errors to HTTP responses
func (h *ReportHandler) writeReportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Report not found",
			},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	})
}

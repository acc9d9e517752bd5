package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"lexcase-backend/service"

	"github.com/gin-gonic/gin"
)

// GISHandler handles HTTP requests for location analysis
type GISHandler struct {
	gisService *service.GISService
}

// NewGISHandler creates a new GIS handler
func NewGISHandler(gisService *service.GISService) *GISHandler {
	return &GISHandler{gisService: gisService}
}

// analyzeRequest is the JSON body for a location analysis
type analyzeRequest struct {
	Address string `json:"address" binding:"required"`
}

// AnalyzeLocation handles POST /api/gis/analyze
func (h *GISHandler) AnalyzeLocation(c *gin.Context) {
	var req analyzeRequest
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

	analysis, err := h.gisService.AnalyzeLocation(c.Request.Context(), req.Address)
	if err != nil {
		if errors.Is(err, service.ErrMalformedModelOutput) {
			c.JSON(http.StatusBadGateway, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ANALYSIS_UNAVAILABLE",
					"message": "Location analysis could not be generated",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": fmt.Sprintf("Failed to analyze location: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    analysis,
	})
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"lexcase-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler handles HTTP requests for the legal chat
type ChatHandler struct {
	chatService *service.ChatService
	maxFileSize int64
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		maxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

// Ask handles POST /api/chat
func (h *ChatHandler) Ask(c *gin.Context) {
	identity := callerIdentity(c)

	query := c.PostForm("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_QUERY",
				"message": "query is required",
			},
		})
		return
	}

	var caseID *uuid.UUID
	if caseIDStr := c.PostForm("case_id"); caseIDStr != "" {
		id, err := uuid.Parse(caseIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_CASE_ID",
					"message": "Invalid case_id format",
				},
			})
			return
		}
		caseID = &id
	}

	var upload *service.DocumentUpload
	fileHeader, err := c.FormFile("document")
	if err == nil {
		if fileHeader.Size > h.maxFileSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FILE_TOO_LARGE",
					"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
				},
			})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FILE_OPEN_ERROR",
					"message": err.Error(),
				},
			})
			return
		}
		defer file.Close()

		upload = &service.DocumentUpload{
			Filename: fileHeader.Filename,
			MimeType: fileHeader.Header.Get("Content-Type"),
			Size:     fileHeader.Size,
			Data:     file,
		}
	}

	turn, err := h.chatService.Answer(c.Request.Context(), identity, query, caseID, upload)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_QUERY",
					"message": "query is required",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CHAT_FAILED",
				"message": fmt.Sprintf("Failed to answer query: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    turn,
	})
}

// History handles GET /api/chat/history
func (h *ChatHandler) History(c *gin.Context) {
	identity := callerIdentity(c)

	var caseID *uuid.UUID
	if caseIDStr := c.Query("case_id"); caseIDStr != "" {
		id, err := uuid.Parse(caseIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_CASE_ID",
					"message": "Invalid case_id format",
				},
			})
			return
		}
		caseID = &id
	}

	turns, err := h.chatService.History(c.Request.Context(), identity, caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "HISTORY_FAILED",
				"message": fmt.Sprintf("Failed to list chat history: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    turns,
	})
}

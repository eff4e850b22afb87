package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docuchat/internal/ai"
	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type AskRequest struct {
	Question string `json:"question" binding:"required,max=4000"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Ask(c *gin.Context) {
	email, ok := ownerEmail(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	answer, err := h.chatService.Ask(c.Request.Context(), email, req.Question)
	if err != nil {
		var embedErr *ai.EmbeddingError
		var genErr *ai.GenerationError
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrOwnerNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.As(err, &embedErr), errors.As(err, &genErr):
			response.Error(c, http.StatusBadGateway, response.CodeUpstreamModel, "model backend failed")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "answer question failed")
		}
		return
	}

	response.OK(c, gin.H{"answer": answer})
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	email, ok := ownerEmail(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	turns, err := h.chatService.GetHistory(c.Request.Context(), email, limit)
	if err != nil {
		if errors.Is(err, app.ErrOwnerNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch history failed")
		return
	}

	items := make([]gin.H, 0, len(turns))
	for _, t := range turns {
		items = append(items, gin.H{
			"role":       t.Role,
			"text":       t.Text,
			"created_at": t.CreatedAt,
		})
	}
	response.OK(c, gin.H{"turns": items})
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatbot-platform/internal/app"
	"chatbot-platform/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Send(c *gin.Context) {
	_, project, ok := scope(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	exchange, err := h.chatService.Send(c.Request.Context(), project, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidMessage):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidMessage, err.Error())
		case errors.Is(err, app.ErrLLMNotConfigured):
			response.Error(c, http.StatusServiceUnavailable, response.CodeServiceUnavailable, err.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "send message failed")
		}
		return
	}
	response.OK(c, exchange)
}

func (h *ChatHandler) History(c *gin.Context) {
	_, project, ok := scope(c)
	if !ok {
		return
	}

	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "limit must be an integer")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "offset must be an integer")
		return
	}

	page, err := h.chatService.History(c.Request.Context(), project, limit, offset)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		return
	}
	response.OK(c, page)
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

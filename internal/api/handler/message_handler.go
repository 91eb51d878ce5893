package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/veilchat/chat-server/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// MessageHandler serves the REST read path for conversations: the history
// fetch offline receivers use to catch up, and the chat list.
type MessageHandler struct {
	service ports.MessageService
}

func NewMessageHandler(service ports.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Chats handles GET /v1/messages/chats.
//
// @Summary      List the authenticated user's conversations
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ports.ChatSummary
// @Failure      401  {object}  errorResponse
// @Router       /v1/messages/chats [get]
func (h *MessageHandler) Chats(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	chats, err := h.service.Chats(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chats)
}

// History handles GET /v1/messages/:other_id?page=N.
//
// @Summary      Fetch one page of conversation history with another user
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        other_id  path      string  true   "Peer identity id"
// @Param        page      query     int     false  "1-based page number"
// @Success      200       {array}   domain.Message
// @Failure      401       {object}  errorResponse
// @Router       /v1/messages/{other_id} [get]
func (h *MessageHandler) History(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	msgs, err := h.service.History(c.Request().Context(), userID, c.Param("other_id"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msgs)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/service"
)

// ChatHandler serves the assistant endpoint.
type ChatHandler struct {
	Assistant *service.Assistant
}

func NewChatHandler(a *service.Assistant) *ChatHandler { return &ChatHandler{Assistant: a} }

type chatReq struct {
	Message string `json:"message"`
}

// Reply answers a free-text question from the canned response set.
func (h *ChatHandler) Reply(c echo.Context) error {
	var req chatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "message required"})
	}
	return c.JSON(http.StatusOK, echo.Map{"response": h.Assistant.Reply(req.Message)})
}

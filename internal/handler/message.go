package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blood-uber/server/internal/model"
	"github.com/blood-uber/server/internal/repository"
)

// MessageHandler serves the inbox: conversation threads, sending and
// read receipts.
type MessageHandler struct {
	Messages *repository.MessageRepo
	Users    *repository.UserRepo
}

func NewMessageHandler(m *repository.MessageRepo, u *repository.UserRepo) *MessageHandler {
	return &MessageHandler{Messages: m, Users: u}
}

// Send stores a message between two users.
func (h *MessageHandler) Send(c echo.Context) error {
	var m model.Message
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if errs := model.ValidateMessage(&m); errs != nil {
		return validationFailed(c, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, m.SenderID); err != nil {
		return storageErr(c, err, "sender")
	}
	if _, err := h.Users.GetByID(ctx, m.RecipientID); err != nil {
		return storageErr(c, err, "recipient")
	}
	if err := h.Messages.Create(ctx, &m); err != nil {
		return storageErr(c, err, "message")
	}
	return c.JSON(http.StatusCreated, m)
}

// Thread returns the full history between two users, oldest first.
func (h *MessageHandler) Thread(c echo.Context) error {
	u1, ok := pathID(c, "user1Id")
	if !ok {
		return notFound(c, "user")
	}
	u2, ok := pathID(c, "user2Id")
	if !ok {
		return notFound(c, "user")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	msgs, err := h.Messages.ListBetween(ctx, u1, u2)
	if err != nil {
		return storageErr(c, err, "messages")
	}
	return c.JSON(http.StatusOK, msgs)
}

// Conversations returns one entry per counterpart the user has
// messaged with, most recent thread first.
func (h *MessageHandler) Conversations(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return notFound(c, "user")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	convs, err := h.Messages.ConversationsForUser(ctx, userID)
	if err != nil {
		return storageErr(c, err, "conversations")
	}
	return c.JSON(http.StatusOK, convs)
}

type markReadReq struct {
	UserID        uint64 `json:"userId"`
	CounterpartID uint64 `json:"counterpartId"`
}

// MarkRead flips the read flag on every message the counterpart sent
// to the user and reports how many changed.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	var req markReadReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.UserID == 0 || req.CounterpartID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "userId and counterpartId required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	n, err := h.Messages.MarkRead(ctx, req.UserID, req.CounterpartID)
	if err != nil {
		return storageErr(c, err, "messages")
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

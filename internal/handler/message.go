package handler

import (
	"errors"
	"net/http"
	"time"

	"shift-tracker/internal/auth"
	"shift-tracker/internal/messaging"
	"shift-tracker/internal/middleware"
	"shift-tracker/internal/models"
	"shift-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// MessageHandler exposes the messaging subsystem over HTTP.
type MessageHandler struct {
	Svc *messaging.Service
}

func NewMessageHandler(svc *messaging.Service) *MessageHandler {
	return &MessageHandler{Svc: svc}
}

type messageResp struct {
	ID        uint      `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	Timestamp time.Time `json:"timestamp"`
}

func toMessageResp(m *models.Message) messageResp {
	return messageResp{
		ID:        m.ID,
		From:      m.FromUser,
		To:        m.ToUser,
		Message:   m.Body,
		IsRead:    m.IsRead,
		Timestamp: m.CreatedAt,
	}
}

// Conversations returns the caller's derived conversation list.
func (h *MessageHandler) Conversations(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	conversations, err := h.Svc.Conversations(user.Username, auth.IsAdministrative(user.Role))
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to load conversations")
		return
	}
	util.Success(c, gin.H{"conversations": conversations})
}

// ListWith returns the full exchange with one user, oldest first. Viewing
// the exchange marks its incoming messages read.
func (h *MessageHandler) ListWith(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	messages, err := h.Svc.ListWith(user.Username, c.Param("username"))
	if err != nil {
		if errors.Is(err, messaging.ErrUserNotFound) {
			util.Error(c, http.StatusNotFound, "user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "failed to load messages")
		}
		return
	}

	out := make([]messageResp, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResp(&messages[i]))
	}
	util.Success(c, gin.H{"messages": out})
}

type sendMessageReq struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "recipient is required")
		return
	}

	msg, err := h.Svc.Send(user.Username, req.To, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, messaging.ErrUserNotFound):
			util.Error(c, http.StatusNotFound, "recipient not found")
		case errors.Is(err, messaging.ErrEmptyMessage), errors.Is(err, messaging.ErrMessageTooLong):
			util.Error(c, http.StatusBadRequest, err.Error())
		default:
			util.Error(c, http.StatusInternalServerError, "failed to send message")
		}
		return
	}

	util.Created(c, gin.H{"message": toMessageResp(msg)})
}

// MarkRead flags the incoming direction of one conversation as read.
// Calling it again is a no-op.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.Svc.MarkRead(user.Username, c.Param("username")); err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to mark messages read")
		return
	}
	util.Success(c, gin.H{"message": "messages marked as read"})
}

// UnreadCount returns the caller's unread total across all conversations.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	count, err := h.Svc.UnreadCount(user.Username)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to count unread messages")
		return
	}
	util.Success(c, gin.H{"count": count})
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/webapps/backend/internal/market/models"
	"github.com/anonto42/webapps/backend/internal/market/repositories"
	"github.com/anonto42/webapps/backend/internal/market/services"
	"github.com/anonto42/webapps/backend/pkg/httperr"
	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/anonto42/webapps/backend/pkg/paging"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatHandler serves direct messages between shoppers and vendors
type ChatHandler struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	log      *logger.Logger
	now      func() time.Time
}

func NewChatHandler(messages repositories.MessageRepository, users repositories.UserRepository, log *logger.Logger) *ChatHandler {
	return &ChatHandler{messages: messages, users: users, log: log, now: time.Now}
}

func (h *ChatHandler) RegisterChatRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.Use(auth)
	g.POST("/messages", h.Send)
	g.GET("/conversations", h.Conversations)
	g.GET("/conversations/:userId/messages", h.Thread)
	g.PUT("/messages/:id/read", h.MarkRead)
	g.GET("/unread-count", h.UnreadCount)
}

func (h *ChatHandler) Send(c echo.Context) error {
	var req models.MessageRequest
	if err := httperr.Bind(c, &req); err != nil {
		return err
	}
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	if req.ReceiverID == uid.Hex() {
		return httperr.BadRequest("CANNOT_MESSAGE_SELF", "You cannot message yourself")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return httperr.BadRequest("MESSAGE_REQUIRED", "Message content is required")
	}
	ctx := c.Request().Context()

	receiver, err := h.users.GetByID(ctx, req.ReceiverID)
	if err != nil {
		return lookupErr(err, "RECIPIENT_NOT_FOUND", "Recipient not found", "SEND_MESSAGE_ERROR", "Error sending message")
	}

	msg := &models.Message{
		ConversationID: services.ConversationID(uid.Hex(), receiver.ID.Hex()),
		Sender:         uid,
		Receiver:       receiver.ID,
		Content:        content,
		CreatedAt:      h.now(),
	}
	if req.ProductID != "" {
		pid, _ := primitive.ObjectIDFromHex(req.ProductID)
		msg.ProductID = &pid
	}
	if err := h.messages.Create(ctx, msg); err != nil {
		return httperr.Internal("SEND_MESSAGE_ERROR", "Error sending message", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Message sent successfully",
		"data":    msg,
	})
}

// Conversations lists the caller's threads with the other participant's
// profile attached.
func (h *ChatHandler) Conversations(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	convs, err := h.messages.Conversations(ctx, uid)
	if err != nil {
		return httperr.Internal("FETCH_CONVERSATIONS_ERROR", "Error fetching conversations", err)
	}

	ids := make([]primitive.ObjectID, 0, len(convs))
	for _, conv := range convs {
		ids = append(ids, conv.OtherUserID)
	}
	profiles, err := h.users.Summaries(ctx, ids)
	if err != nil {
		h.log.Warn("failed to load conversation participants", "user_id", uid.Hex(), "error", err)
	}
	for i := range convs {
		if p, ok := profiles[convs[i].OtherUserID]; ok {
			convs[i].OtherUser = &p
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": convs})
}

// Thread pages the conversation with :userId oldest first and marks what the
// caller received as read.
func (h *ChatHandler) Thread(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	other, err := pathID(c, "userId", "USER_NOT_FOUND", "User not found")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	convID := services.ConversationID(uid.Hex(), other.Hex())

	page := paging.FromQuery(c, 50, 100)
	msgs, total, err := h.messages.Thread(ctx, convID, page.Skip(), page.Limit)
	if err != nil {
		return httperr.Internal("FETCH_MESSAGES_ERROR", "Error fetching messages", err)
	}

	if _, err := h.messages.MarkThreadRead(ctx, convID, uid, h.now()); err != nil {
		h.log.Warn("failed to mark conversation read", "conversation_id", convID, "error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"conversationId": convID,
		"messages":       msgs,
		"pagination":     page.Meta(total, "totalMessages"),
	})
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	msg, err := h.messages.MarkRead(c.Request().Context(), c.Param("id"), uid, h.now())
	if err != nil {
		return lookupErr(err, "MESSAGE_NOT_FOUND", "Message not found", "MARK_READ_ERROR", "Error marking message as read")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Message marked as read", "data": msg})
}

func (h *ChatHandler) UnreadCount(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	n, err := h.messages.UnreadCount(c.Request().Context(), uid)
	if err != nil {
		return httperr.Internal("UNREAD_COUNT_ERROR", "Error fetching unread count", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unreadCount": n})
}

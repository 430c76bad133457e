package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Anasanas60/krishokbazar/internal/messages"
	"github.com/Anasanas60/krishokbazar/pkg/ctxmanage"
	"github.com/Anasanas60/krishokbazar/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// SendMessage delivers a direct message to another user.
func (h *Handler) SendMessage(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	_, senderID, ok := currentUser(c, traceId)
	if !ok {
		return
	}

	var nm messages.NewMessage
	if err := c.ShouldBindJSON(&nm); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": http.StatusText(http.StatusBadRequest)})
		return
	}
	if err := h.validate.Struct(nm); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	msg, err := h.m.Send(c.Request.Context(), senderID, nm)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    msg,
	})
}

// GetConversation returns the full thread with one other user, oldest first.
func (h *Handler) GetConversation(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	_, userID, ok := currentUser(c, traceId)
	if !ok {
		return
	}
	otherID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	list, err := h.m.Conversation(c.Request.Context(), userID, otherID)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(list),
		"data":    list,
	})
}

// GetConversations returns one aggregated entry per counterpart.
func (h *Handler) GetConversations(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	_, userID, ok := currentUser(c, traceId)
	if !ok {
		return
	}

	list, err := h.m.Conversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(list),
		"data":    list,
	})
}

// MarkMessagesRead flags the thread from the given user as read.
func (h *Handler) MarkMessagesRead(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	_, userID, ok := currentUser(c, traceId)
	if !ok {
		return
	}
	senderID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	if err := h.m.MarkRead(c.Request.Context(), senderID, userID); err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Messages marked as read",
	})
}

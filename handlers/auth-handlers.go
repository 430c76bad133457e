package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Anasanas60/krishokbazar/internal/users"
	"github.com/Anasanas60/krishokbazar/pkg/ctxmanage"
	"github.com/Anasanas60/krishokbazar/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// Register creates an account and returns it with a signed token.
func (h *Handler) Register(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var newUser users.NewUser
	if err := c.ShouldBindJSON(&newUser); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": http.StatusText(http.StatusBadRequest)})
		return
	}
	if err := h.validate.Struct(newUser); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := h.u.InsertUser(c.Request.Context(), newUser)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already exists"})
			return
		}
		respondError(c, traceId, err)
		return
	}

	token, err := h.keys.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// Login verifies credentials and returns the account with a signed token.
func (h *Handler) Login(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var login users.Login
	if err := c.ShouldBindJSON(&login); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": http.StatusText(http.StatusBadRequest)})
		return
	}
	if err := h.validate.Struct(login); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := h.u.Authenticate(c.Request.Context(), login)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}
		respondError(c, traceId, err)
		return
	}

	token, err := h.keys.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// GetMe returns the authenticated user's account.
func (h *Handler) GetMe(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	_, userID, ok := currentUser(c, traceId)
	if !ok {
		return
	}

	user, err := h.u.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

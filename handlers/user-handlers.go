package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Anasanas60/krishokbazar/internal/users"
	"github.com/Anasanas60/krishokbazar/pkg/ctxmanage"
	"github.com/Anasanas60/krishokbazar/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// GetAllFarmers lists every farmer account. Public.
func (h *Handler) GetAllFarmers(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.u.ListFarmers(c.Request.Context())
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

// GetFarmerProfile returns a farmer account with its farm page. Public.
func (h *Handler) GetFarmerProfile(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	farmerID, ok := pathID(c, "id")
	if !ok {
		return
	}

	farmer, profile, err := h.u.GetFarmerProfile(c.Request.Context(), farmerID)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	data := gin.H{"farmer": farmer}
	if profile != nil {
		data["profile"] = profile
	} else {
		data["profile"] = gin.H{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// UpdateFarmerProfile creates or updates the caller's farm page. Farmer only.
func (h *Handler) UpdateFarmerProfile(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	_, userID, ok := currentUser(c, traceId)
	if !ok {
		return
	}

	var up users.UpdateFarmerProfile
	if err := c.ShouldBindJSON(&up); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": http.StatusText(http.StatusBadRequest)})
		return
	}
	if err := h.validate.Struct(up); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	profile, err := h.u.UpsertFarmerProfile(c.Request.Context(), userID, up)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    profile,
	})
}

// GetAllUsers lists every account. Admin only.
func (h *Handler) GetAllUsers(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.u.ListAll(c.Request.Context())
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

// DeleteUser removes an account. Admin only.
func (h *Handler) DeleteUser(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.u.Delete(c.Request.Context(), userID); err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User removed",
	})
}

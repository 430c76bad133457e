package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Anasanas60/krishokbazar/internal/categories"
	"github.com/Anasanas60/krishokbazar/pkg/ctxmanage"
	"github.com/Anasanas60/krishokbazar/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// CreateCategory adds a category. Admin only.
func (h *Handler) CreateCategory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var nc categories.NewCategory
	if err := c.ShouldBindJSON(&nc); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": http.StatusText(http.StatusBadRequest)})
		return
	}
	if err := h.validate.Struct(nc); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	category, err := h.cat.Insert(c.Request.Context(), nc)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    category,
	})
}

// GetAllCategories lists every category. Public.
func (h *Handler) GetAllCategories(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.cat.ListAll(c.Request.Context())
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

// GetCategory returns one category. Public.
func (h *Handler) GetCategory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	category, err := h.cat.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    category,
	})
}

// UpdateCategory replaces a category's fields. Admin only.
func (h *Handler) UpdateCategory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var nc categories.NewCategory
	if err := c.ShouldBindJSON(&nc); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": http.StatusText(http.StatusBadRequest)})
		return
	}

	category, err := h.cat.Update(c.Request.Context(), id, nc)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    category,
	})
}

// DeleteCategory removes a category. Admin only.
func (h *Handler) DeleteCategory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.cat.Delete(c.Request.Context(), id); err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Category removed",
	})
}

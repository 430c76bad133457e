package handlers

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/Anasanas60/krishokbazar/internal/auth"
	"github.com/Anasanas60/krishokbazar/internal/products"
	"github.com/Anasanas60/krishokbazar/pkg/ctxmanage"
	"github.com/Anasanas60/krishokbazar/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateProduct adds a catalog entry owned by the authenticated farmer.
func (h *Handler) CreateProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	_, farmerID, ok := currentUser(c, traceId)
	if !ok {
		return
	}

	if c.Request.ContentLength > 5*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Request body too large."})
		return
	}

	var newProduct products.NewProduct
	if err := c.ShouldBindJSON(&newProduct); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": http.StatusText(http.StatusBadRequest)})
		return
	}
	if err := h.validate.Struct(newProduct); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	product, err := h.p.InsertProduct(c.Request.Context(), farmerID, newProduct)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    product,
	})
}

// GetProduct returns one catalog entry. Public.
func (h *Handler) GetProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.p.GetByID(c.Request.Context(), productID)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// GetAllProducts lists active products with search, category, farmer and
// price filters plus pagination. Public.
func (h *Handler) GetAllProducts(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	filter := products.Filter{
		Search:   c.Query("search"),
		Category: queryInt(c, "category"),
		Farmer:   queryInt(c, "farmer"),
		Page:     int(queryInt(c, "page")),
		Limit:    int(queryInt(c, "limit")),
	}
	if v := c.Query("minPrice"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filter.MinPrice = &d
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filter.MaxPrice = &d
		}
	}

	list, total, err := h.p.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(list),
		"total":       total,
		"totalPages":  int(math.Ceil(float64(total) / float64(limit))),
		"currentPage": page,
		"data":        list,
	})
}

// GetFeaturedProducts lists the featured storefront products. Public.
func (h *Handler) GetFeaturedProducts(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.p.ListFeatured(c.Request.Context())
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

// GetFarmerProducts lists the authenticated farmer's own products.
func (h *Handler) GetFarmerProducts(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	_, farmerID, ok := currentUser(c, traceId)
	if !ok {
		return
	}

	page := int(queryInt(c, "page"))
	limit := int(queryInt(c, "limit"))
	list, total, err := h.p.ListByFarmer(c.Request.Context(), farmerID, page, limit)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(list),
		"total":       total,
		"totalPages":  int(math.Ceil(float64(total) / float64(limit))),
		"currentPage": page,
		"data":        list,
	})
}

// UpdateProduct applies a partial update. Only the owning farmer or an admin.
func (h *Handler) UpdateProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	claims, userID, ok := currentUser(c, traceId)
	if !ok {
		return
	}
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	current, err := h.p.GetByID(c.Request.Context(), productID)
	if err != nil {
		respondError(c, traceId, err)
		return
	}
	if current.FarmerID != userID && claims.Role != auth.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to update this product"})
		return
	}

	var up products.UpdateProduct
	if err := c.ShouldBindJSON(&up); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": http.StatusText(http.StatusBadRequest)})
		return
	}

	product, err := h.p.UpdateProduct(c.Request.Context(), productID, up)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// DeleteProduct soft-deletes a product. Only the owning farmer or an admin.
func (h *Handler) DeleteProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	claims, userID, ok := currentUser(c, traceId)
	if !ok {
		return
	}
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	current, err := h.p.GetByID(c.Request.Context(), productID)
	if err != nil {
		respondError(c, traceId, err)
		return
	}
	if current.FarmerID != userID && claims.Role != auth.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to delete this product"})
		return
	}

	if err := h.p.SoftDelete(c.Request.Context(), productID); err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted successfully",
	})
}

func queryInt(c *gin.Context, name string) int64 {
	v, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

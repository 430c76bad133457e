package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Anasanas60/krishokbazar/internal/orders"
	"github.com/Anasanas60/krishokbazar/internal/stores/kafka"
	"github.com/Anasanas60/krishokbazar/pkg/ctxmanage"
	"github.com/Anasanas60/krishokbazar/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateOrder runs the order creation workflow for the authenticated consumer
// and responds with the fully associated order.
func (h *Handler) CreateOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	_, consumerID, ok := currentUser(c, traceId)
	if !ok {
		return
	}

	if c.Request.ContentLength > 64*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Request body too large."})
		return
	}

	var req orders.NewOrder
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": http.StatusText(http.StatusBadRequest)})
		return
	}

	order, err := h.o.CreateOrder(c.Request.Context(), consumerID, req)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	h.publishOrderCreated(traceId, order)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetOrder returns one order; only its consumer, its farmer or an admin may
// read it.
func (h *Handler) GetOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	claims, _, ok := currentUser(c, traceId)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.o.GetOrder(c.Request.Context(), claims, orderID)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetConsumerOrders lists the authenticated consumer's orders.
func (h *Handler) GetConsumerOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	_, userID, ok := currentUser(c, traceId)
	if !ok {
		return
	}

	list, err := h.o.ListByConsumer(c.Request.Context(), userID)
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

// GetFarmerOrders lists the authenticated farmer's incoming orders.
func (h *Handler) GetFarmerOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	_, userID, ok := currentUser(c, traceId)
	if !ok {
		return
	}

	list, err := h.o.ListByFarmer(c.Request.Context(), userID)
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

// GetAllOrders lists every order. Admin only.
func (h *Handler) GetAllOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.o.ListAll(c.Request.Context())
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

// UpdateOrderStatus transitions an order's status on behalf of its farmer or
// an admin.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	claims, actorID, ok := currentUser(c, traceId)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": http.StatusText(http.StatusBadRequest)})
		return
	}

	order, err := h.o.UpdateStatus(c.Request.Context(), claims, orderID, body.Status)
	if err != nil {
		respondError(c, traceId, err)
		return
	}

	h.publishStatusChanged(traceId, order, actorID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// publishOrderCreated emits the order-created event without blocking the
// response; failures are logged, never surfaced to the caller.
func (h *Handler) publishOrderCreated(traceId string, order *orders.Order) {
	if h.k == nil {
		return
	}
	go func() {
		event := kafka.OrderCreatedEvent{
			OrderID:     order.ID,
			ConsumerID:  order.ConsumerID,
			FarmerID:    order.FarmerID,
			TotalAmount: order.TotalAmount.String(),
			ItemCount:   len(order.Items),
			CreatedAt:   time.Now().UTC(),
		}
		jsonData, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal OrderCreatedEvent", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
			return
		}
		key := []byte(uuid.NewString())
		if err := h.k.ProduceMessage(kafka.TopicOrderCreated, key, jsonData); err != nil {
			slog.Error("failed to produce message", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
			return
		}
		slog.Info("order event produced", slog.String(logkey.TraceID, traceId), slog.Int64(logkey.OrderID, order.ID))
	}()
}

func (h *Handler) publishStatusChanged(traceId string, order *orders.Order, actorID int64) {
	if h.k == nil {
		return
	}
	go func() {
		event := kafka.OrderStatusChangedEvent{
			OrderID:   order.ID,
			Status:    order.Status,
			ChangedBy: actorID,
			ChangedAt: time.Now().UTC(),
		}
		jsonData, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal OrderStatusChangedEvent", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
			return
		}
		key := []byte(uuid.NewString())
		if err := h.k.ProduceMessage(kafka.TopicOrderStatusChanged, key, jsonData); err != nil {
			slog.Error("failed to produce message", slog.String(logkey.TraceID, traceId), slog.String(logkey.Error, err.Error()))
			return
		}
		slog.Info("order status event produced", slog.String(logkey.TraceID, traceId), slog.Int64(logkey.OrderID, order.ID))
	}()
}

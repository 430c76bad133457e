package kafka

import "time"

const (
	TopicOrderCreated       = `order-service.order-created`
	TopicOrderStatusChanged = `order-service.order-status-changed`
)

// Representation of events that we publish to kafka

type OrderCreatedEvent struct {
	OrderID     int64     `json:"order_id"`
	ConsumerID  int64     `json:"consumer_id"`
	FarmerID    int64     `json:"farmer_id"`
	TotalAmount string    `json:"total_amount"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderID   int64     `json:"order_id"`
	Status    string    `json:"status"`
	ChangedBy int64     `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

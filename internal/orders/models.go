package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. Transitions are driven by the farmer who owns the order
// or an admin; new orders always start as pending.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Payment methods accepted at checkout.
const (
	PaymentCash         = "cash"
	PaymentBankTransfer = "bank_transfer"
	PaymentOther        = "other"
)

// ValidStatuses lists every status accepted by UpdateStatus.
var ValidStatuses = []string{
	StatusPending, StatusConfirmed, StatusProcessing,
	StatusShipped, StatusDelivered, StatusCancelled,
}

// Order represents one purchase transaction between a consumer and a farmer.
// Exactly one of the pickup or delivery field groups is populated.
type Order struct {
	ID            int64           `json:"id"`
	ConsumerID    int64           `json:"consumerId"`
	FarmerID      int64           `json:"farmerId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`

	PickupDate     *string `json:"pickupDate,omitempty"`
	PickupTime     *string `json:"pickupTime,omitempty"`
	PickupLocation *string `json:"pickupLocation,omitempty"`

	DeliveryStreet  *string `json:"deliveryStreet,omitempty"`
	DeliveryCity    *string `json:"deliveryCity,omitempty"`
	DeliveryState   *string `json:"deliveryState,omitempty"`
	DeliveryZipCode *string `json:"deliveryZipCode,omitempty"`
	DeliveryDate    *string `json:"deliveryDate,omitempty"`
	DeliveryTime    *string `json:"deliveryTime,omitempty"`

	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Consumer *UserSummary `json:"consumer,omitempty"`
	Farmer   *UserSummary `json:"farmer,omitempty"`
	Items    []OrderItem  `json:"orderItems,omitempty"`
}

// OrderItem is one product/quantity row of an order. Price is the unit price
// captured at order time, not a live reference to the product's price.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   *ProductSummary `json:"product,omitempty"`
}

// UserSummary is the slice of a user embedded in order responses.
type UserSummary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// ProductSummary is the slice of a product embedded in order item responses.
type ProductSummary struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Unit   string   `json:"unit"`
	Images []string `json:"images"`
}

// NewOrder is the create-order request body.
type NewOrder struct {
	FarmerID        int64            `json:"farmerId"`
	Items           []NewOrderItem   `json:"items"`
	PickupDetails   *PickupDetails   `json:"pickupDetails,omitempty"`
	DeliveryDetails *DeliveryDetails `json:"deliveryDetails,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	PaymentMethod   string           `json:"paymentMethod,omitempty"`
}

type NewOrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type PickupDetails struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

type DeliveryDetails struct {
	Address Address `json:"address"`
	Date    string  `json:"date"`
	Time    string  `json:"time"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

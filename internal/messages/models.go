package messages

import "time"

// Message is one direct message between two users, optionally tied to an order.
type Message struct {
	ID             int64     `json:"id"`
	SenderID       int64     `json:"senderId"`
	ReceiverID     int64     `json:"receiverId"`
	Content        string    `json:"content"`
	RelatedOrderID *int64    `json:"relatedOrderId,omitempty"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Sender   *Participant `json:"sender,omitempty"`
	Receiver *Participant `json:"receiver,omitempty"`
}

// Participant is the slice of a user embedded in message responses.
type Participant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// NewMessage is the send request body.
type NewMessage struct {
	ReceiverID   int64  `json:"receiverId" validate:"required"`
	Message      string `json:"message" validate:"required"`
	RelatedOrder *int64 `json:"relatedOrder"`
}

// Conversation aggregates a message thread with one other user.
type Conversation struct {
	User        Participant `json:"user"`
	LastMessage struct {
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"createdAt"`
		IsRead    bool      `json:"isRead"`
	} `json:"lastMessage"`
	UnreadCount int `json:"unreadCount"`
}

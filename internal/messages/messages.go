// Package messages implements direct messaging between consumers and farmers.
package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrReceiverNotFound = errors.New("receiver not found")

type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

const queryMessageColumns = `
	SELECT m.id, m.sender_id, m.receiver_id, m.content, m.related_order_id, m.is_read,
	       m.created_at, m.updated_at,
	       s.id, s.name, s.role,
	       r.id, r.name, r.role
	FROM messages m
	JOIN users s ON s.id = m.sender_id
	JOIN users r ON r.id = m.receiver_id
`

// Send stores a message after confirming the receiver exists.
func (c *Conf) Send(ctx context.Context, senderID int64, nm NewMessage) (*Message, error) {
	var receiverID int64
	err := c.db.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1`, nm.ReceiverID).Scan(&receiverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReceiverNotFound
		}
		return nil, fmt.Errorf("failed to query receiver: %w", err)
	}

	now := time.Now().UTC()
	const queryInsert = `
		INSERT INTO messages (sender_id, receiver_id, content, related_order_id, is_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6)
		RETURNING id
	`
	var id int64
	err = c.db.QueryRowContext(ctx, queryInsert,
		senderID, nm.ReceiverID, nm.Message, nm.RelatedOrder, now, now).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	row := c.db.QueryRowContext(ctx, queryMessageColumns+` WHERE m.id = $1`, id)
	msg, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("failed to query message %d: %w", id, err)
	}
	return msg, nil
}

// Conversation returns every message between the two users, oldest first.
func (c *Conf) Conversation(ctx context.Context, userID, otherID int64) ([]Message, error) {
	query := queryMessageColumns + `
		WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		   OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at ASC
	`
	return c.listQuery(ctx, query, userID, otherID)
}

// Conversations folds every message involving the user into one entry per
// counterpart, carrying the latest message and the unread count.
func (c *Conf) Conversations(ctx context.Context, userID int64) ([]Conversation, error) {
	query := queryMessageColumns + `
		WHERE m.sender_id = $1 OR m.receiver_id = $1
		ORDER BY m.created_at DESC
	`
	msgs, err := c.listQuery(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	byUser := make(map[int64]*Conversation)
	var ordered []int64
	for _, msg := range msgs {
		other := msg.Sender
		if msg.SenderID == userID {
			other = msg.Receiver
		}

		conv, ok := byUser[other.ID]
		if !ok {
			conv = &Conversation{User: *other}
			conv.LastMessage.Content = msg.Content
			conv.LastMessage.CreatedAt = msg.CreatedAt
			conv.LastMessage.IsRead = msg.IsRead
			byUser[other.ID] = conv
			ordered = append(ordered, other.ID)
		}
		if msg.ReceiverID == userID && !msg.IsRead {
			conv.UnreadCount++
		}
	}

	out := make([]Conversation, 0, len(ordered))
	for _, id := range ordered {
		out = append(out, *byUser[id])
	}
	return out, nil
}

// MarkRead flags every unread message from sender to receiver as read.
func (c *Conf) MarkRead(ctx context.Context, senderID, receiverID int64) error {
	const query = `
		UPDATE messages SET is_read = TRUE, updated_at = $1
		WHERE sender_id = $2 AND receiver_id = $3 AND is_read = FALSE
	`
	if _, err := c.db.ExecContext(ctx, query, time.Now().UTC(), senderID, receiverID); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

func (c *Conf) listQuery(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*Message, error) {
	var (
		msg      Message
		sender   Participant
		receiver Participant
	)
	err := row.Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.RelatedOrderID,
		&msg.IsRead, &msg.CreatedAt, &msg.UpdatedAt,
		&sender.ID, &sender.Name, &sender.Role,
		&receiver.ID, &receiver.Name, &receiver.Role,
	)
	if err != nil {
		return nil, err
	}
	msg.Sender = &sender
	msg.Receiver = &receiver
	return &msg, nil
}

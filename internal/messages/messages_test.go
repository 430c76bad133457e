package messages_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Anasanas60/krishokbazar/internal/messages"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'consumer',
    phone TEXT,
    street TEXT,
    city TEXT,
    state TEXT,
    zip_code TEXT,
    profile_picture TEXT,
    lat REAL,
    lng REAL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE TABLE messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sender_id INTEGER NOT NULL REFERENCES users (id),
    receiver_id INTEGER NOT NULL REFERENCES users (id),
    content TEXT NOT NULL,
    related_order_id INTEGER,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

func setup(t *testing.T) (*messages.Conf, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	conf, err := messages.NewConf(db)
	require.NoError(t, err)
	return conf, db
}

func insertUser(t *testing.T, db *sql.DB, name, role string) int64 {
	t.Helper()
	now := time.Now().UTC()
	var id int64
	err := db.QueryRow(`
		INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, 'x', $3, $4, $5)
		RETURNING id
	`, name, name+"@example.com", role, now, now).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestSend(t *testing.T) {
	conf, db := setup(t)
	ctx := context.Background()

	consumer := insertUser(t, db, "consumer", "consumer")
	farmer := insertUser(t, db, "farmer", "farmer")

	orderRef := int64(42)
	msg, err := conf.Send(ctx, consumer, messages.NewMessage{
		ReceiverID:   farmer,
		Message:      "Is the honey still available?",
		RelatedOrder: &orderRef,
	})
	require.NoError(t, err)

	assert.Equal(t, consumer, msg.SenderID)
	assert.Equal(t, farmer, msg.ReceiverID)
	assert.Equal(t, "Is the honey still available?", msg.Content)
	assert.False(t, msg.IsRead)
	require.NotNil(t, msg.RelatedOrderID)
	assert.Equal(t, int64(42), *msg.RelatedOrderID)
	require.NotNil(t, msg.Sender)
	assert.Equal(t, "consumer", msg.Sender.Name)
	require.NotNil(t, msg.Receiver)
	assert.Equal(t, "farmer", msg.Receiver.Role)

	_, err = conf.Send(ctx, consumer, messages.NewMessage{ReceiverID: 999, Message: "hello?"})
	require.ErrorIs(t, err, messages.ErrReceiverNotFound)
}

func TestConversation(t *testing.T) {
	conf, db := setup(t)
	ctx := context.Background()

	consumer := insertUser(t, db, "consumer", "consumer")
	farmer := insertUser(t, db, "farmer", "farmer")
	bystander := insertUser(t, db, "bystander", "consumer")

	for _, m := range []struct {
		from, to int64
		text     string
	}{
		{consumer, farmer, "Do you deliver on Fridays?"},
		{farmer, consumer, "Yes, after 2pm."},
		{consumer, farmer, "Great, see you then."},
		{bystander, farmer, "Unrelated question"},
	} {
		_, err := conf.Send(ctx, m.from, messages.NewMessage{ReceiverID: m.to, Message: m.text})
		require.NoError(t, err)
	}

	thread, err := conf.Conversation(ctx, consumer, farmer)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, "Do you deliver on Fridays?", thread[0].Content, "oldest first")
	assert.Equal(t, "Great, see you then.", thread[2].Content)
}

func TestConversationsAndMarkRead(t *testing.T) {
	conf, db := setup(t)
	ctx := context.Background()

	farmer := insertUser(t, db, "farmer", "farmer")
	alice := insertUser(t, db, "alice", "consumer")
	bob := insertUser(t, db, "bob", "consumer")

	send := func(from, to int64, text string) {
		t.Helper()
		_, err := conf.Send(ctx, from, messages.NewMessage{ReceiverID: to, Message: text})
		require.NoError(t, err)
	}
	send(alice, farmer, "First from alice")
	send(alice, farmer, "Second from alice")
	send(farmer, alice, "Reply to alice")
	send(bob, farmer, "Hello from bob")

	convs, err := conf.Conversations(ctx, farmer)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	byName := make(map[string]messages.Conversation, len(convs))
	for _, conv := range convs {
		byName[conv.User.Name] = conv
	}

	aliceConv, ok := byName["alice"]
	require.True(t, ok)
	assert.Equal(t, 2, aliceConv.UnreadCount, "only inbound unread messages count")
	assert.Equal(t, "Reply to alice", aliceConv.LastMessage.Content)

	bobConv, ok := byName["bob"]
	require.True(t, ok)
	assert.Equal(t, 1, bobConv.UnreadCount)

	require.NoError(t, conf.MarkRead(ctx, alice, farmer))

	convs, err = conf.Conversations(ctx, farmer)
	require.NoError(t, err)
	for _, conv := range convs {
		if conv.User.Name == "alice" {
			assert.Equal(t, 0, conv.UnreadCount)
		}
	}
}

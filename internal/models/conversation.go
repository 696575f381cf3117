package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	SenderUser      = "user"
	SenderAssistant = "ai"

	UserDisplayName      = "You"
	AssistantDisplayName = "Genius Guide"
)

// Message is immutable once appended to a conversation.
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Sender     string             `bson:"sender" json:"sender"` // "user" | "ai"
	SenderName string             `bson:"sender_name" json:"senderName"`
	Text       string             `bson:"text" json:"text"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// Conversation is one interview instance. The transcript is append-only and
// CurrentSection only ever advances through the fixed section order.
type Conversation struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProfileID      string             `bson:"profile_id" json:"profile_id"`
	UserID         string             `bson:"user_id" json:"user_id"`
	Messages       []Message          `bson:"messages" json:"messages"`
	CurrentSection string             `bson:"current_section,omitempty" json:"current_section,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

const (
	TypeText     = "text"
	TypeImage    = "image"
	TypeVideo    = "video"
	TypeAudio    = "audio"
	TypeDocument = "document"
	TypeSticker  = "sticker"
	TypeLocation = "location"
	TypeCall     = "call"
	TypeOther    = "other"
)

// Message is an immutable append-only fact. GatewayID is the dedup key:
// delivering the same gateway id twice stores the message once.
type Message struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	GatewayID      string             `json:"gateway_id" bson:"gateway_id"`
	ConversationID primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	Direction      string             `json:"direction" bson:"direction"`
	Type           string             `json:"msg_type" bson:"msg_type"`
	Content        string             `json:"content,omitempty" bson:"content,omitempty"`
	MediaURL       string             `json:"media_url,omitempty" bson:"media_url,omitempty"`
	Timestamp      time.Time          `json:"timestamp" bson:"timestamp"`
	IsDeleted      bool               `json:"is_deleted" bson:"is_deleted"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`

	// Group messages: who inside the group sent it.
	SenderPhone string `json:"sender_phone,omitempty" bson:"sender_phone,omitempty"`
	SenderName  string `json:"sender_name,omitempty" bson:"sender_name,omitempty"`

	// Call messages.
	CallOutcome      string `json:"call_outcome,omitempty" bson:"call_outcome,omitempty"`
	CallDurationSecs *int   `json:"call_duration_secs,omitempty" bson:"call_duration_secs,omitempty"`
	IsVideoCall      bool   `json:"is_video_call,omitempty" bson:"is_video_call,omitempty"`
}

package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuickReply is a canned answer template agents can reuse.
type QuickReply struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Text      string             `json:"text" bson:"text"`
	Active    bool               `json:"active" bson:"active"`
	SortOrder int                `json:"sort_order" bson:"sort_order"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

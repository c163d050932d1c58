package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleManager = "manager"
	RoleAgent   = "agent"
)

// Attendant is a human handler bound to one instance.
type Attendant struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Phone      string             `json:"phone" bson:"phone"`
	Email      string             `json:"email,omitempty" bson:"email,omitempty"`
	Role       string             `json:"role" bson:"role"` // "manager" | "agent"
	InstanceID primitive.ObjectID `json:"instance_id" bson:"instance_id"`
	TeamID     primitive.ObjectID `json:"team_id,omitempty" bson:"team_id,omitempty"`
	Active     bool               `json:"active" bson:"active"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Instance is a gateway endpoint owning agents and conversations.
type Instance struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	InstanceName string             `json:"instance_name" bson:"instance_name"`
	ApiURL       string             `json:"api_url" bson:"api_url"`
	ApiKey       string             `json:"-" bson:"api_key"`
	PhoneNumber  string             `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	Active       bool               `json:"active" bson:"active"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team is a routing target scoped to an instance. Keywords are free-text
// hints handed to the routing model alongside name and description.
type Team struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Keywords    string             `json:"keywords,omitempty" bson:"keywords,omitempty"`
	InstanceID  primitive.ObjectID `json:"instance_id" bson:"instance_id"`
	Active      bool               `json:"active" bson:"active"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

package attendant

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
)

type Core interface {
	ListAttendants(instanceID primitive.ObjectID) ([]entity.Attendant, error)
	CreateAttendant(att *entity.Attendant) error
	DeactivateAttendant(id primitive.ObjectID) (bool, error)
}

package instance

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
)

type Core interface {
	ListInstances() ([]entity.Instance, error)
	GetInstance(id primitive.ObjectID) (*entity.Instance, error)
	CreateInstance(inst *entity.Instance) error
	DeactivateInstance(id primitive.ObjectID) (bool, error)
}

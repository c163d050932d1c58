package team

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
)

type Core interface {
	ListTeams(instanceID primitive.ObjectID) ([]entity.Team, error)
	CreateTeam(team *entity.Team) error
	DeactivateTeam(id primitive.ObjectID) (bool, error)
}

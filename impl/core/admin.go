package core

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
)

func (c *Core) ListInstances() ([]entity.Instance, error) {
	return c.repo.ListInstances()
}

func (c *Core) GetInstance(id primitive.ObjectID) (*entity.Instance, error) {
	return c.repo.GetInstance(id)
}

func (c *Core) CreateInstance(inst *entity.Instance) error {
	return c.repo.CreateInstance(inst)
}

func (c *Core) DeactivateInstance(id primitive.ObjectID) (bool, error) {
	return c.repo.DeactivateInstance(id)
}

func (c *Core) ListAttendants(instanceID primitive.ObjectID) ([]entity.Attendant, error) {
	return c.repo.ListAttendants(instanceID)
}

func (c *Core) CreateAttendant(att *entity.Attendant) error {
	return c.repo.CreateAttendant(att)
}

func (c *Core) DeactivateAttendant(id primitive.ObjectID) (bool, error) {
	return c.repo.DeactivateAttendant(id)
}

func (c *Core) ListTeams(instanceID primitive.ObjectID) ([]entity.Team, error) {
	return c.repo.ListTeams(instanceID)
}

func (c *Core) CreateTeam(team *entity.Team) error {
	return c.repo.CreateTeam(team)
}

func (c *Core) DeactivateTeam(id primitive.ObjectID) (bool, error) {
	return c.repo.DeactivateTeam(id)
}

func (c *Core) ListQuickReplies() ([]entity.QuickReply, error) {
	return c.repo.ListQuickReplies()
}

func (c *Core) CreateQuickReply(reply *entity.QuickReply) error {
	return c.repo.CreateQuickReply(reply)
}

func (c *Core) DeactivateQuickReply(id primitive.ObjectID) (bool, error) {
	return c.repo.DeactivateQuickReply(id)
}

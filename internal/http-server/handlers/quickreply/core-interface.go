package quickreply

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
)

type Core interface {
	ListQuickReplies() ([]entity.QuickReply, error)
	CreateQuickReply(reply *entity.QuickReply) error
	DeactivateQuickReply(id primitive.ObjectID) (bool, error)
}

package metric

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
)

type Core interface {
	Overview(instanceID primitive.ObjectID) (*entity.OverviewMetrics, error)
	RecentConversations(instanceID primitive.ObjectID, status string, attendantID primitive.ObjectID, isGroup bool, limit int64) ([]entity.Conversation, error)
	GetConversation(id primitive.ObjectID) (*entity.Conversation, error)
	ConversationMessages(id primitive.ObjectID) ([]entity.Message, error)
	CloseConversation(id primitive.ObjectID, status string) (bool, error)
	AssignConversation(id, attendantID primitive.ObjectID) (bool, error)
}

package core

import (
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
	"zapdesk/internal/lib/sl"
)

func (c *Core) Overview(instanceID primitive.ObjectID) (*entity.OverviewMetrics, error) {
	return c.repo.Overview(instanceID)
}

func (c *Core) RecentConversations(instanceID primitive.ObjectID, status string, attendantID primitive.ObjectID, isGroup bool, limit int64) ([]entity.Conversation, error) {
	return c.repo.RecentConversations(instanceID, status, attendantID, isGroup, limit)
}

func (c *Core) GetConversation(id primitive.ObjectID) (*entity.Conversation, error) {
	return c.repo.GetConversation(id)
}

func (c *Core) ConversationMessages(conversationID primitive.ObjectID) ([]entity.Message, error) {
	return c.repo.ConversationMessages(conversationID)
}

// CloseConversation finishes an open thread. A resolved close queues the
// post-conversation analysis; a close on an already terminal thread is a
// no-op reported to the caller.
func (c *Core) CloseConversation(id primitive.ObjectID, status string) (bool, error) {
	if status != entity.StatusResolved && status != entity.StatusAbandoned {
		return false, fmt.Errorf("invalid close status %q", status)
	}

	closed, err := c.repo.CloseConversation(id, status, time.Now().UTC())
	if err != nil || !closed {
		return closed, err
	}

	if status == entity.StatusResolved && c.analysis != nil {
		c.analysis.AnalyzeAsync(id)
	}

	event := entity.NotifyConversationUpdated
	if status == entity.StatusResolved {
		event = entity.NotifyConversationResolved
	}
	if conv, err := c.repo.GetConversation(id); err == nil && conv != nil {
		c.publish(event, conv)
	} else if err != nil {
		c.log.With(sl.Err(err), slog.String("id", id.Hex())).Error("load closed conversation")
	}

	return true, nil
}

func (c *Core) AssignConversation(id, attendantID primitive.ObjectID) (bool, error) {
	assigned, err := c.repo.AssignAttendant(id, attendantID)
	if err != nil || !assigned {
		return assigned, err
	}

	if conv, err := c.repo.GetConversation(id); err == nil && conv != nil {
		c.publish(entity.NotifyConversationAssigned, conv)
	}

	return true, nil
}

package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zapdesk/entity"
)

func (m *MongoDB) ListQuickReplies() ([]entity.QuickReply, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(quickRepliesCollection)

	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}})
	cursor, err := collection.Find(m.ctx, bson.D{{Key: "active", Value: true}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find quick replies: %w", err)
	}
	defer cursor.Close(m.ctx)

	var replies []entity.QuickReply
	if err := cursor.All(m.ctx, &replies); err != nil {
		return nil, fmt.Errorf("mongodb decode quick replies: %w", err)
	}
	return replies, nil
}

func (m *MongoDB) CreateQuickReply(reply *entity.QuickReply) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(quickRepliesCollection)

	reply.ID = primitive.NewObjectID()
	reply.Active = true
	reply.CreatedAt = time.Now().UTC()

	if _, err := collection.InsertOne(m.ctx, reply); err != nil {
		return insertError(err)
	}
	return nil
}

func (m *MongoDB) DeactivateQuickReply(id primitive.ObjectID) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(quickRepliesCollection)

	res, err := collection.UpdateOne(m.ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "active", Value: false}}}},
	)
	if err != nil {
		return false, fmt.Errorf("mongodb deactivate quick reply: %w", err)
	}
	return res.MatchedCount > 0, nil
}

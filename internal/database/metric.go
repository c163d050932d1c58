package repository

import (
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"zapdesk/entity"
)

// Overview computes the dashboard headline numbers. A zero instanceID
// means all instances.
func (m *MongoDB) Overview(instanceID primitive.ObjectID) (*entity.OverviewMetrics, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	db := connection.Database(m.database)
	conversations := db.Collection(conversationsCollection)

	scope := bson.D{}
	if !instanceID.IsZero() {
		scope = bson.D{{Key: "instance_id", Value: instanceID}}
	}

	count := func(extra bson.D) (int64, error) {
		filter := append(append(bson.D{}, scope...), extra...)
		n, err := conversations.CountDocuments(m.ctx, filter)
		if err != nil {
			return 0, fmt.Errorf("mongodb count conversations: %w", err)
		}
		return n, nil
	}

	out := &entity.OverviewMetrics{}
	if out.TotalConversations, err = count(nil); err != nil {
		return nil, err
	}
	if out.OpenConversations, err = count(bson.D{{Key: "status", Value: entity.StatusOpen}}); err != nil {
		return nil, err
	}
	if out.ResolvedConversations, err = count(bson.D{{Key: "status", Value: entity.StatusResolved}}); err != nil {
		return nil, err
	}
	if out.AbandonedConversations, err = count(bson.D{{Key: "status", Value: entity.StatusAbandoned}}); err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if out.TotalConversationsToday, err = count(bson.D{{Key: "opened_at", Value: bson.D{{Key: "$gte", Value: today}}}}); err != nil {
		return nil, err
	}

	if out.TotalConversations > 0 {
		rate := float64(out.ResolvedConversations) / float64(out.TotalConversations) * 100
		out.ResolutionRate = math.Round(rate*10) / 10
	}

	avgMatch := append(append(bson.D{}, scope...),
		bson.E{Key: "first_response_seconds", Value: bson.D{{Key: "$ne", Value: nil}}})
	cursor, err := conversations.Aggregate(m.ctx, mongo.Pipeline{
		{{Key: "$match", Value: avgMatch}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$first_response_seconds"}}},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("mongodb aggregate first response: %w", err)
	}
	var avgRows []struct {
		Avg *float64 `bson:"avg"`
	}
	if err := cursor.All(m.ctx, &avgRows); err != nil {
		return nil, fmt.Errorf("mongodb decode first response avg: %w", err)
	}
	if len(avgRows) > 0 {
		out.AvgFirstResponseSeconds = avgRows[0].Avg
	}

	out.TotalMessagesToday, err = m.countMessagesSince(db, instanceID, today)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// countMessagesSince counts messages since a cutoff, joining through
// conversations when an instance scope is requested.
func (m *MongoDB) countMessagesSince(db *mongo.Database, instanceID primitive.ObjectID, since time.Time) (int64, error) {
	messages := db.Collection(messagesCollection)

	if instanceID.IsZero() {
		n, err := messages.CountDocuments(m.ctx, bson.D{{Key: "timestamp", Value: bson.D{{Key: "$gte", Value: since}}}})
		if err != nil {
			return 0, fmt.Errorf("mongodb count messages: %w", err)
		}
		return n, nil
	}

	cursor, err := messages.Aggregate(m.ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "timestamp", Value: bson.D{{Key: "$gte", Value: since}}}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: conversationsCollection},
			{Key: "localField", Value: "conversation_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "conv"},
		}}},
		{{Key: "$unwind", Value: "$conv"}},
		{{Key: "$match", Value: bson.D{{Key: "conv.instance_id", Value: instanceID}}}},
		{{Key: "$count", Value: "n"}},
	})
	if err != nil {
		return 0, fmt.Errorf("mongodb count instance messages: %w", err)
	}
	var rows []struct {
		N int64 `bson:"n"`
	}
	if err := cursor.All(m.ctx, &rows); err != nil {
		return 0, fmt.Errorf("mongodb decode message count: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].N, nil
}

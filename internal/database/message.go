package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zapdesk/entity"
)

// InsertMessage appends an immutable message fact. A redelivered gateway id
// hits the unique index and comes back as ErrDuplicateKey; callers treat
// that as a no-op, not a failure.
func (m *MongoDB) InsertMessage(msg *entity.Message) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()

	if _, err := collection.InsertOne(m.ctx, msg); err != nil {
		return insertError(err)
	}
	return nil
}

// MessageExists reports whether a gateway id has already been stored. The
// resolver checks it up front so a redelivery cannot open a conversation.
func (m *MongoDB) MessageExists(gatewayID string) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	count, err := collection.CountDocuments(m.ctx, bson.D{{Key: "gateway_id", Value: gatewayID}})
	if err != nil {
		return false, fmt.Errorf("mongodb count messages: %w", err)
	}
	return count > 0, nil
}

// UpsertCallMessage stores a live call signal keyed by its synthetic gateway
// id. A later signal for the same call updates outcome, content and
// timestamp in place. Returns true when a new message row was created.
func (m *MongoDB) UpsertCallMessage(msg *entity.Message) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	filter := bson.D{{Key: "gateway_id", Value: msg.GatewayID}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "call_outcome", Value: msg.CallOutcome},
			{Key: "content", Value: msg.Content},
			{Key: "timestamp", Value: msg.Timestamp},
			{Key: "call_duration_secs", Value: msg.CallDurationSecs},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "conversation_id", Value: msg.ConversationID},
			{Key: "direction", Value: msg.Direction},
			{Key: "msg_type", Value: entity.TypeCall},
			{Key: "is_video_call", Value: msg.IsVideoCall},
			{Key: "is_deleted", Value: false},
			{Key: "created_at", Value: time.Now().UTC()},
		}},
	}

	res, err := collection.UpdateOne(m.ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("mongodb upsert call message: %w", err)
	}
	return res.UpsertedCount > 0, nil
}

func (m *MongoDB) MarkMessageDeleted(gatewayID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	_, err = collection.UpdateOne(m.ctx,
		bson.D{{Key: "gateway_id", Value: gatewayID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "is_deleted", Value: true}}}},
	)
	if err != nil {
		return fmt.Errorf("mongodb mark message deleted: %w", err)
	}
	return nil
}

// FirstInboundTexts returns the oldest inbound messages with text content,
// the routing model's context window.
func (m *MongoDB) FirstInboundTexts(conversationID primitive.ObjectID, limit int64) ([]entity.Message, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	filter := bson.D{
		{Key: "conversation_id", Value: conversationID},
		{Key: "direction", Value: entity.DirectionInbound},
		{Key: "content", Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}}).
		SetLimit(limit)

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find inbound texts: %w", err)
	}
	defer cursor.Close(m.ctx)

	var messages []entity.Message
	if err := cursor.All(m.ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongodb decode inbound texts: %w", err)
	}
	return messages, nil
}

// ConversationMessages returns the visible transcript, oldest first.
func (m *MongoDB) ConversationMessages(conversationID primitive.ObjectID) ([]entity.Message, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	filter := bson.D{
		{Key: "conversation_id", Value: conversationID},
		{Key: "is_deleted", Value: false},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find conversation messages: %w", err)
	}
	defer cursor.Close(m.ctx)

	var messages []entity.Message
	if err := cursor.All(m.ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongodb decode conversation messages: %w", err)
	}
	return messages, nil
}

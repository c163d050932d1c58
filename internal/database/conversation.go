package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zapdesk/entity"
)

func (m *MongoDB) GetConversation(id primitive.ObjectID) (*entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	var conv entity.Conversation
	if err := collection.FindOne(m.ctx, bson.D{{Key: "_id", Value: id}}).Decode(&conv); err != nil {
		return nil, m.findError(err)
	}
	return &conv, nil
}

// FindOpenConversation returns the single open conversation for a contact
// within an instance, or nil when the contact has none.
func (m *MongoDB) FindOpenConversation(instanceID primitive.ObjectID, contactPhone string) (*entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)
	filter := bson.D{
		{Key: "instance_id", Value: instanceID},
		{Key: "contact_phone", Value: contactPhone},
		{Key: "status", Value: entity.StatusOpen},
	}

	var conv entity.Conversation
	if err := collection.FindOne(m.ctx, filter).Decode(&conv); err != nil {
		return nil, m.findError(err)
	}
	return &conv, nil
}

// InsertConversation creates a new open conversation. A concurrent create
// for the same contact trips the partial unique index and surfaces as
// ErrDuplicateKey so the caller can retry against the winner.
func (m *MongoDB) InsertConversation(conv *entity.Conversation) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	conv.ID = primitive.NewObjectID()
	if _, err := collection.InsertOne(m.ctx, conv); err != nil {
		return insertError(err)
	}
	return nil
}

// TouchConversation refreshes last-activity and bumps the directional
// counter after a message was attached. An empty contactName leaves the
// stored name alone; a non-empty one only fills a missing name.
func (m *MongoDB) TouchConversation(id primitive.ObjectID, direction string, at time.Time, contactName string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	counter := "inbound_count"
	if direction == entity.DirectionOutbound {
		counter = "outbound_count"
	}

	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "last_message_at", Value: at}}},
		{Key: "$inc", Value: bson.D{{Key: counter, Value: 1}}},
	}
	if _, err := collection.UpdateOne(m.ctx, bson.D{{Key: "_id", Value: id}}, update); err != nil {
		return fmt.Errorf("mongodb touch conversation: %w", err)
	}

	if contactName != "" {
		nameFilter := bson.D{
			{Key: "_id", Value: id},
			{Key: "contact_name", Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}},
		}
		nameUpdate := bson.D{{Key: "$set", Value: bson.D{{Key: "contact_name", Value: contactName}}}}
		if _, err := collection.UpdateOne(m.ctx, nameFilter, nameUpdate); err != nil {
			return fmt.Errorf("mongodb set contact name: %w", err)
		}
	}
	return nil
}

// SetFirstResponse records the first-response timer. The filter makes the
// write monotonic: once first_response_at is set no later outbound message
// can move it.
func (m *MongoDB) SetFirstResponse(id primitive.ObjectID, at time.Time, seconds float64) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "first_response_at", Value: nil},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "first_response_at", Value: at},
		{Key: "first_response_seconds", Value: seconds},
	}}}

	res, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("mongodb set first response: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// CloseConversation moves an open conversation to a terminal status. The
// open-status filter makes the transition one-way: closing twice, or
// closing an already-terminal conversation, changes nothing.
func (m *MongoDB) CloseConversation(id primitive.ObjectID, status string, at time.Time) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "status", Value: entity.StatusOpen},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: status},
		{Key: "resolved_at", Value: at},
	}}}

	res, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("mongodb close conversation: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (m *MongoDB) AssignAttendant(id, attendantID primitive.ObjectID) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	res, err := collection.UpdateOne(m.ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "attendant_id", Value: attendantID}}}},
	)
	if err != nil {
		return false, fmt.Errorf("mongodb assign attendant: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// SetConversationTeam is write-once: routing never overwrites an existing
// assignment.
func (m *MongoDB) SetConversationTeam(id, teamID primitive.ObjectID) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "team_id", Value: bson.D{{Key: "$exists", Value: false}}},
	}
	res, err := collection.UpdateOne(m.ctx, filter,
		bson.D{{Key: "$set", Value: bson.D{{Key: "team_id", Value: teamID}}}},
	)
	if err != nil {
		return false, fmt.Errorf("mongodb set conversation team: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// UpdateGroupProfile refreshes the subject / avatar of a group conversation
// from a groups.upsert event. Missing conversations are a silent no-op.
func (m *MongoDB) UpdateGroupProfile(instanceID primitive.ObjectID, contactPhone, subject, pictureURL string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	set := bson.D{}
	if subject != "" {
		set = append(set, bson.E{Key: "contact_name", Value: subject})
	}
	if pictureURL != "" {
		set = append(set, bson.E{Key: "contact_avatar_url", Value: pictureURL})
	}
	if len(set) == 0 {
		return nil
	}

	filter := bson.D{
		{Key: "instance_id", Value: instanceID},
		{Key: "contact_phone", Value: contactPhone},
		{Key: "is_group", Value: true},
	}
	if _, err := collection.UpdateMany(m.ctx, filter, bson.D{{Key: "$set", Value: set}}); err != nil {
		return fmt.Errorf("mongodb update group profile: %w", err)
	}
	return nil
}

func (m *MongoDB) SetAnalysis(id primitive.ObjectID, category, sentiment string, satisfaction int, summary string, at time.Time) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "analysis_category", Value: category},
		{Key: "analysis_sentiment", Value: sentiment},
		{Key: "analysis_satisfaction", Value: satisfaction},
		{Key: "analysis_summary", Value: summary},
		{Key: "analysis_analyzed_at", Value: at},
	}}}
	if _, err := collection.UpdateOne(m.ctx, bson.D{{Key: "_id", Value: id}}, update); err != nil {
		return fmt.Errorf("mongodb set analysis: %w", err)
	}
	return nil
}

// ConversationsOpenedSince is the Stage 1 source query: every non-group
// conversation of the instance opened inside the lookback window, any status.
func (m *MongoDB) ConversationsOpenedSince(instanceID primitive.ObjectID, since time.Time) ([]entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)
	filter := bson.D{
		{Key: "instance_id", Value: instanceID},
		{Key: "is_group", Value: false},
		{Key: "opened_at", Value: bson.D{{Key: "$gte", Value: since}}},
	}

	cursor, err := collection.Find(m.ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongodb find conversations: %w", err)
	}
	defer cursor.Close(m.ctx)

	var convs []entity.Conversation
	if err := cursor.All(m.ctx, &convs); err != nil {
		return nil, fmt.Errorf("mongodb decode conversations: %w", err)
	}
	return convs, nil
}

// RecentConversations lists conversations by last activity for the API
// surface. Zero-value filters are skipped.
func (m *MongoDB) RecentConversations(instanceID primitive.ObjectID, status string, attendantID primitive.ObjectID, isGroup bool, limit int64) ([]entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	filter := bson.D{{Key: "is_group", Value: isGroup}}
	if !instanceID.IsZero() {
		filter = append(filter, bson.E{Key: "instance_id", Value: instanceID})
	}
	if status != "" {
		filter = append(filter, bson.E{Key: "status", Value: status})
	}
	if !attendantID.IsZero() {
		filter = append(filter, bson.E{Key: "attendant_id", Value: attendantID})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "last_message_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find recent conversations: %w", err)
	}
	defer cursor.Close(m.ctx)

	var convs []entity.Conversation
	if err := cursor.All(m.ctx, &convs); err != nil {
		return nil, fmt.Errorf("mongodb decode recent conversations: %w", err)
	}
	return convs, nil
}

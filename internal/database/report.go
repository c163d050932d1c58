package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zapdesk/entity"
)

// ReplaceConversationFact is the Stage 1 upsert: each run rewrites the
// fact row for a conversation wholesale, never merges.
func (m *MongoDB) ReplaceConversationFact(fact *entity.ConversationFact) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationFactsCollection)

	fact.ID = primitive.NewObjectID()
	fact.CreatedAt = time.Now().UTC()

	filter := bson.D{{Key: "conversation_id", Value: fact.ConversationID}}
	_, err = collection.ReplaceOne(m.ctx, filter, fact, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb replace conversation fact: %w", err)
	}
	return nil
}

// FactsForWeek returns Stage 1 rows for one instance and week. When
// assignedOnly is set, rows without an attendant are excluded (Stages 2
// and 3 only aggregate assigned work).
func (m *MongoDB) FactsForWeek(instanceID primitive.ObjectID, week time.Time, assignedOnly bool) ([]entity.ConversationFact, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationFactsCollection)

	filter := bson.D{
		{Key: "instance_id", Value: instanceID},
		{Key: "period_week", Value: week},
	}
	if assignedOnly {
		filter = append(filter, bson.E{Key: "attendant_id", Value: bson.D{{Key: "$exists", Value: true}}})
	}

	opts := options.Find().SetSort(bson.D{{Key: "opened_at", Value: 1}})
	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find conversation facts: %w", err)
	}
	defer cursor.Close(m.ctx)

	var facts []entity.ConversationFact
	if err := cursor.All(m.ctx, &facts); err != nil {
		return nil, fmt.Errorf("mongodb decode conversation facts: %w", err)
	}
	return facts, nil
}

// ReplaceContactAgentWeeks implements Stage 2's delete-then-insert: all
// rollup rows for (instance, week) are dropped and the recomputed set is
// bulk inserted.
func (m *MongoDB) ReplaceContactAgentWeeks(instanceID primitive.ObjectID, week time.Time, rows []entity.ContactAgentWeek) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(contactAgentWeeksCollection)

	filter := bson.D{
		{Key: "instance_id", Value: instanceID},
		{Key: "period_week", Value: week},
	}
	if _, err := collection.DeleteMany(m.ctx, filter); err != nil {
		return fmt.Errorf("mongodb delete contact-agent rollups: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(rows))
	for i := range rows {
		rows[i].ID = primitive.NewObjectID()
		docs = append(docs, rows[i])
	}
	if _, err := collection.InsertMany(m.ctx, docs); err != nil {
		return fmt.Errorf("mongodb insert contact-agent rollups: %w", err)
	}
	return nil
}

// UpsertAttendantWeek writes Stage 3 output. Numeric fields are always
// rewritten; llm_summary and generated_at are deliberately left untouched
// so a rerun does not erase an earlier narrative.
func (m *MongoDB) UpsertAttendantWeek(row *entity.AttendantWeek) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(attendantWeeksCollection)

	filter := bson.D{
		{Key: "attendant_id", Value: row.AttendantID},
		{Key: "period_week", Value: row.PeriodWeek},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "attendant_name", Value: row.AttendantName},
			{Key: "role", Value: row.Role},
			{Key: "instance_id", Value: row.InstanceID},
			{Key: "total_conversations", Value: row.TotalConversations},
			{Key: "resolved_conversations", Value: row.ResolvedConversations},
			{Key: "abandoned_conversations", Value: row.AbandonedConversations},
			{Key: "resolution_rate", Value: row.ResolutionRate},
			{Key: "avg_first_response_seconds", Value: row.AvgFirstResponseSeconds},
			{Key: "avg_resolution_seconds", Value: row.AvgResolutionSeconds},
			{Key: "total_messages_sent", Value: row.TotalMessagesSent},
			{Key: "total_messages_received", Value: row.TotalMessagesReceived},
			{Key: "avg_satisfaction", Value: row.AvgSatisfaction},
			{Key: "sla_5min_rate", Value: row.Sla5MinRate},
			{Key: "sla_15min_rate", Value: row.Sla15MinRate},
			{Key: "sla_30min_rate", Value: row.Sla30MinRate},
			{Key: "top_categories", Value: row.TopCategories},
			{Key: "top_sentiments", Value: row.TopSentiments},
			{Key: "last_updated", Value: time.Now().UTC()},
		}},
	}

	_, err = collection.UpdateOne(m.ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb upsert attendant week: %w", err)
	}
	return nil
}

// AttendantWeeks lists Stage 3 rows for an instance and week.
func (m *MongoDB) AttendantWeeks(instanceID primitive.ObjectID, week time.Time) ([]entity.AttendantWeek, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(attendantWeeksCollection)

	filter := bson.D{{Key: "period_week", Value: week}}
	if !instanceID.IsZero() {
		filter = append(filter, bson.E{Key: "instance_id", Value: instanceID})
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "resolution_rate", Value: -1},
		{Key: "attendant_name", Value: 1},
	})

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find attendant weeks: %w", err)
	}
	defer cursor.Close(m.ctx)

	var rows []entity.AttendantWeek
	if err := cursor.All(m.ctx, &rows); err != nil {
		return nil, fmt.Errorf("mongodb decode attendant weeks: %w", err)
	}
	return rows, nil
}

// LatestAttendantWeek returns the most recent week that has rollup rows,
// used as the default period for summary listings.
func (m *MongoDB) LatestAttendantWeek(instanceID primitive.ObjectID) (time.Time, error) {
	connection, err := m.connect()
	if err != nil {
		return time.Time{}, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(attendantWeeksCollection)

	filter := bson.D{}
	if !instanceID.IsZero() {
		filter = append(filter, bson.E{Key: "instance_id", Value: instanceID})
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "period_week", Value: -1}})

	var row entity.AttendantWeek
	if err := collection.FindOne(m.ctx, filter, opts).Decode(&row); err != nil {
		return time.Time{}, m.findError(err)
	}
	return row.PeriodWeek, nil
}

// SetAttendantWeekSummary attaches the Stage 4 narrative to one rollup row.
func (m *MongoDB) SetAttendantWeekSummary(attendantID primitive.ObjectID, week time.Time, summary string, at time.Time) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(attendantWeeksCollection)

	filter := bson.D{
		{Key: "attendant_id", Value: attendantID},
		{Key: "period_week", Value: week},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "llm_summary", Value: summary},
		{Key: "generated_at", Value: at},
	}}}
	if _, err := collection.UpdateOne(m.ctx, filter, update); err != nil {
		return fmt.Errorf("mongodb set attendant week summary: %w", err)
	}
	return nil
}

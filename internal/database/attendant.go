package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zapdesk/entity"
)

func (m *MongoDB) GetAttendant(id primitive.ObjectID) (*entity.Attendant, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(attendantsCollection)

	var att entity.Attendant
	if err := collection.FindOne(m.ctx, bson.D{{Key: "_id", Value: id}}).Decode(&att); err != nil {
		return nil, m.findError(err)
	}
	return &att, nil
}

// FirstActiveAttendant picks the default handler a fresh individual
// conversation is assigned to.
func (m *MongoDB) FirstActiveAttendant(instanceID primitive.ObjectID) (*entity.Attendant, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(attendantsCollection)
	filter := bson.D{
		{Key: "instance_id", Value: instanceID},
		{Key: "active", Value: true},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})

	var att entity.Attendant
	if err := collection.FindOne(m.ctx, filter, opts).Decode(&att); err != nil {
		return nil, m.findError(err)
	}
	return &att, nil
}

func (m *MongoDB) ListAttendants(instanceID primitive.ObjectID) ([]entity.Attendant, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(attendantsCollection)

	filter := bson.D{{Key: "active", Value: true}}
	if !instanceID.IsZero() {
		filter = append(filter, bson.E{Key: "instance_id", Value: instanceID})
	}

	cursor, err := collection.Find(m.ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongodb find attendants: %w", err)
	}
	defer cursor.Close(m.ctx)

	var attendants []entity.Attendant
	if err := cursor.All(m.ctx, &attendants); err != nil {
		return nil, fmt.Errorf("mongodb decode attendants: %w", err)
	}
	return attendants, nil
}

func (m *MongoDB) CreateAttendant(att *entity.Attendant) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(attendantsCollection)

	att.ID = primitive.NewObjectID()
	att.Active = true
	att.CreatedAt = time.Now().UTC()
	att.UpdatedAt = att.CreatedAt

	if _, err := collection.InsertOne(m.ctx, att); err != nil {
		return insertError(err)
	}
	return nil
}

func (m *MongoDB) DeactivateAttendant(id primitive.ObjectID) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(attendantsCollection)

	res, err := collection.UpdateOne(m.ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "active", Value: false},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return false, fmt.Errorf("mongodb deactivate attendant: %w", err)
	}
	return res.MatchedCount > 0, nil
}

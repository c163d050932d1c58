package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
)

// GetInstanceByName resolves the webhook scoping key. Returns nil when the
// instance is unknown.
func (m *MongoDB) GetInstanceByName(name string) (*entity.Instance, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(instancesCollection)
	filter := bson.D{{Key: "instance_name", Value: name}}

	var inst entity.Instance
	if err := collection.FindOne(m.ctx, filter).Decode(&inst); err != nil {
		return nil, m.findError(err)
	}
	return &inst, nil
}

func (m *MongoDB) GetInstance(id primitive.ObjectID) (*entity.Instance, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(instancesCollection)

	var inst entity.Instance
	if err := collection.FindOne(m.ctx, bson.D{{Key: "_id", Value: id}}).Decode(&inst); err != nil {
		return nil, m.findError(err)
	}
	return &inst, nil
}

func (m *MongoDB) ListInstances() ([]entity.Instance, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(instancesCollection)

	cursor, err := collection.Find(m.ctx, bson.D{{Key: "active", Value: true}})
	if err != nil {
		return nil, fmt.Errorf("mongodb find instances: %w", err)
	}
	defer cursor.Close(m.ctx)

	var instances []entity.Instance
	if err := cursor.All(m.ctx, &instances); err != nil {
		return nil, fmt.Errorf("mongodb decode instances: %w", err)
	}
	return instances, nil
}

func (m *MongoDB) CreateInstance(inst *entity.Instance) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(instancesCollection)

	inst.ID = primitive.NewObjectID()
	inst.Active = true
	inst.CreatedAt = time.Now().UTC()
	inst.UpdatedAt = inst.CreatedAt

	if _, err := collection.InsertOne(m.ctx, inst); err != nil {
		return insertError(err)
	}
	return nil
}

func (m *MongoDB) DeactivateInstance(id primitive.ObjectID) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(instancesCollection)

	res, err := collection.UpdateOne(m.ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "active", Value: false},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return false, fmt.Errorf("mongodb deactivate instance: %w", err)
	}
	return res.MatchedCount > 0, nil
}

package repository

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"zapdesk/entity"
)

func (m *MongoDB) ListTeams(instanceID primitive.ObjectID) ([]entity.Team, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(teamsCollection)

	filter := bson.D{{Key: "active", Value: true}}
	if !instanceID.IsZero() {
		filter = append(filter, bson.E{Key: "instance_id", Value: instanceID})
	}

	cursor, err := collection.Find(m.ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongodb find teams: %w", err)
	}
	defer cursor.Close(m.ctx)

	var teams []entity.Team
	if err := cursor.All(m.ctx, &teams); err != nil {
		return nil, fmt.Errorf("mongodb decode teams: %w", err)
	}
	return teams, nil
}

func (m *MongoDB) CreateTeam(team *entity.Team) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(teamsCollection)

	team.ID = primitive.NewObjectID()
	team.Active = true
	team.CreatedAt = time.Now().UTC()

	if _, err := collection.InsertOne(m.ctx, team); err != nil {
		return insertError(err)
	}
	return nil
}

func (m *MongoDB) DeactivateTeam(id primitive.ObjectID) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(teamsCollection)

	res, err := collection.UpdateOne(m.ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "active", Value: false}}}},
	)
	if err != nil {
		return false, fmt.Errorf("mongodb deactivate team: %w", err)
	}
	return res.MatchedCount > 0, nil
}

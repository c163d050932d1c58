package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"zapdesk/internal/config"
	"zapdesk/internal/lib/sl"
)

const (
	instancesCollection         = "instances"
	attendantsCollection        = "attendants"
	conversationsCollection     = "conversations"
	messagesCollection          = "messages"
	teamsCollection             = "teams"
	quickRepliesCollection      = "quick-replies"
	conversationFactsCollection = "conversation-facts"
	contactAgentWeeksCollection = "contact-agent-weeks"
	attendantWeeksCollection    = "attendant-weeks"
)

// ErrDuplicateKey is returned when an insert collides with a uniqueness
// constraint (message dedup, single open conversation, instance name).
var ErrDuplicateKey = errors.New("duplicate key")

type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
	log           *slog.Logger
}

func NewMongoClient(conf *config.Config, logger *slog.Logger) (*MongoDB, error) {
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
		log:           logger.With(sl.Module("mongodb")),
	}
	return client, nil
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	_ = connection.Disconnect(m.ctx)
}

func (m *MongoDB) findError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return fmt.Errorf("mongodb find error: %w", err)
}

func insertError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return fmt.Errorf("mongodb insert error: %w", err)
}

// EnsureIndexes creates every uniqueness constraint and lookup index the
// pipeline relies on. Safe to call on every start.
func (m *MongoDB) EnsureIndexes() error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	db := connection.Database(m.database)

	indexes := map[string][]mongo.IndexModel{
		instancesCollection: {
			{
				Keys:    bson.D{{Key: "instance_name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		attendantsCollection: {
			{
				Keys:    bson.D{{Key: "phone", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "instance_id", Value: 1}, {Key: "active", Value: 1}}},
		},
		conversationsCollection: {
			// Single open conversation per (contact, instance). Losers of
			// a concurrent create race get a duplicate key error and retry
			// against the winner row.
			{
				Keys: bson.D{{Key: "instance_id", Value: 1}, {Key: "contact_phone", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.D{{Key: "status", Value: "open"}}),
			},
			{Keys: bson.D{{Key: "instance_id", Value: 1}, {Key: "opened_at", Value: -1}}},
			{Keys: bson.D{{Key: "last_message_at", Value: -1}}},
		},
		messagesCollection: {
			// Gateway id is the dedup key across all time.
			{
				Keys:    bson.D{{Key: "gateway_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
		conversationFactsCollection: {
			{
				Keys:    bson.D{{Key: "conversation_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "instance_id", Value: 1}, {Key: "period_week", Value: 1}}},
		},
		contactAgentWeeksCollection: {
			{
				Keys: bson.D{
					{Key: "contact_phone", Value: 1},
					{Key: "attendant_id", Value: 1},
					{Key: "period_week", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
		attendantWeeksCollection: {
			{
				Keys:    bson.D{{Key: "attendant_id", Value: 1}, {Key: "period_week", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "instance_id", Value: 1}, {Key: "period_week", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(m.ctx, models); err != nil {
			return fmt.Errorf("mongodb create indexes for %s: %w", name, err)
		}
	}

	return nil
}

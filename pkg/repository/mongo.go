package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/storeadmin/pkg/config"
	"github.com/example/storeadmin/pkg/orders"
)

const auditService = "order-admin"

// MongoRepository keeps the order lifecycle audit trail.
type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoDBConfig
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return newMongoRepository(client, cfg), nil
}

func newMongoRepository(client *mongo.Client, cfg *config.MongoDBConfig) *MongoRepository {
	return &MongoRepository{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        string    `bson:"_id,omitempty"`
	Service   string    `bson:"service"`
	Action    string    `bson:"action"`
	EntityID  string    `bson:"entity_id"`
	Data      bson.M    `bson:"data"`
	CreatedAt time.Time `bson:"created_at"`
}

// Record implements orders.Auditor.
func (m *MongoRepository) Record(ctx context.Context, entry orders.AuditEntry) error {
	return m.CreateAuditLog(ctx, &AuditLog{
		Service:   auditService,
		Action:    entry.Action,
		EntityID:  entry.OrderID,
		Data:      bson.M(entry.Data),
		CreatedAt: entry.At,
	})
}

func (m *MongoRepository) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	collection := m.database.Collection(m.config.Collection)
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	_, err := collection.InsertOne(ctx, log)
	return err
}

// History implements orders.AuditTrail.
func (m *MongoRepository) History(ctx context.Context, orderID string, limit int64) ([]orders.AuditEntry, error) {
	logs, err := m.GetAuditLogs(ctx, orderID, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]orders.AuditEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, orders.AuditEntry{
			Action:  l.Action,
			OrderID: l.EntityID,
			Data:    map[string]interface{}(l.Data),
			At:      l.CreatedAt,
		})
	}
	return entries, nil
}

// GetAuditLogs returns the newest limit entries of this service for one order.
func (m *MongoRepository) GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*AuditLog, error) {
	collection := m.database.Collection(m.config.Collection)

	filter := bson.M{"service": auditService, "entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []*AuditLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

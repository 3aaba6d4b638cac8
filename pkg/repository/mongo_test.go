package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/example/storeadmin/pkg/config"
	"github.com/example/storeadmin/pkg/orders"
)

func mockAuditRepo(mt *mtest.T) *MongoRepository {
	return newMongoRepository(mt.Client, &config.MongoDBConfig{Database: "storeadmin", Collection: "audit_logs"})
}

func TestMongoAuditTrail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("record", func(mt *mtest.T) {
		repo := mockAuditRepo(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Record(context.Background(), orders.AuditEntry{
			Action:  "update_status",
			OrderID: "o1",
			Data:    map[string]interface{}{"status": "shipped"},
			At:      at,
		})
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "insert", evt.CommandName)
		doc := evt.Command.Lookup("documents", "0").Document()
		assert.Equal(mt, auditService, doc.Lookup("service").StringValue())
		assert.Equal(mt, "update_status", doc.Lookup("action").StringValue())
		assert.Equal(mt, "o1", doc.Lookup("entity_id").StringValue())
		assert.Equal(mt, "shipped", doc.Lookup("data", "status").StringValue())
	})

	mt.Run("history", func(mt *mtest.T) {
		repo := mockAuditRepo(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "storeadmin.audit_logs", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "2"},
				{Key: "service", Value: auditService},
				{Key: "action", Value: "update_status"},
				{Key: "entity_id", Value: "o1"},
				{Key: "data", Value: bson.D{{Key: "status", Value: "shipped"}}},
				{Key: "created_at", Value: at},
			},
			bson.D{
				{Key: "_id", Value: "1"},
				{Key: "service", Value: auditService},
				{Key: "action", Value: "create_order"},
				{Key: "entity_id", Value: "o1"},
				{Key: "data", Value: bson.D{{Key: "total", Value: "1370"}}},
				{Key: "created_at", Value: at.Add(-time.Hour)},
			},
		))

		entries, err := repo.History(context.Background(), "o1", 10)
		require.NoError(mt, err)

		require.Len(mt, entries, 2)
		assert.Equal(mt, "update_status", entries[0].Action)
		assert.Equal(mt, "o1", entries[0].OrderID)
		assert.Equal(mt, "shipped", entries[0].Data["status"])
		assert.True(mt, at.Equal(entries[0].At))
		assert.Equal(mt, "create_order", entries[1].Action)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.Equal(mt, "o1", evt.Command.Lookup("filter", "entity_id").StringValue())
		assert.Equal(mt, auditService, evt.Command.Lookup("filter", "service").StringValue())
		assert.Equal(mt, int64(10), evt.Command.Lookup("limit").AsInt64())
	})

	mt.Run("history failure", func(mt *mtest.T) {
		repo := mockAuditRepo(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad query",
		}))

		_, err := repo.History(context.Background(), "o1", 10)

		assert.Error(mt, err)
	})
}

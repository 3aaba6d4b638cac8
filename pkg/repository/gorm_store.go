package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/storeadmin/pkg/config"
	"github.com/example/storeadmin/pkg/models"
	"github.com/example/storeadmin/pkg/orders"
)

// Publisher announces committed writes on a change feed. It is used where
// the database cannot notify by itself (MySQL).
type Publisher interface {
	Publish(ctx context.Context, evt models.ChangeEvent) error
}

// GormStore persists order headers and line items in a relational database.
type GormStore struct {
	db        *gorm.DB
	publisher Publisher
	logger    *zap.Logger
}

// OpenDB connects to the database selected by cfg.Store.Driver.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var (
		dialector gorm.Dialector
		idle      int
		open      int
	)
	switch cfg.Store.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.MySQL.DSN())
		idle, open = cfg.MySQL.MaxIdleConns, cfg.MySQL.MaxOpenConns
	case "postgres":
		dialector = postgres.Open(cfg.Postgres.DSN)
		idle, open = cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns
	default:
		return nil, fmt.Errorf("store driver %q is not relational", cfg.Store.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Store.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(idle)
	sqlDB.SetMaxOpenConns(open)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func NewGormStore(db *gorm.DB, publisher Publisher, logger *zap.Logger) *GormStore {
	return &GormStore{
		db:        db,
		publisher: publisher,
		logger:    logger.Named("gorm-store"),
	}
}

var channelName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Migrate creates the order tables. On Postgres it also installs the trigger
// that feeds PgChangeFeed through pg_notify on channel.
func (s *GormStore) Migrate(ctx context.Context, channel string) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&models.OrderRecord{}, &models.OrderItemRecord{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	if !channelName.MatchString(channel) {
		return fmt.Errorf("invalid notify channel %q", channel)
	}

	stmts := []string{
		fmt.Sprintf(`CREATE OR REPLACE FUNCTION notify_order_change() RETURNS trigger AS $$
DECLARE rec RECORD;
BEGIN
	IF TG_OP = 'DELETE' THEN rec := OLD; ELSE rec := NEW; END IF;
	PERFORM pg_notify('%s', json_build_object('table', TG_TABLE_NAME, 'op', TG_OP, 'id', rec.id)::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`, channel),
		`DROP TRIGGER IF EXISTS orders_notify ON orders`,
		`CREATE TRIGGER orders_notify AFTER INSERT OR UPDATE OR DELETE ON orders
	FOR EACH ROW EXECUTE FUNCTION notify_order_change()`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to install order change trigger: %w", err)
		}
	}
	return nil
}

func (s *GormStore) InsertOrder(ctx context.Context, rec *models.OrderRecord) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	s.publish(ctx, models.ChangeEvent{Table: "orders", Op: models.ChangeInsert, ID: rec.ID})
	return nil
}

func (s *GormStore) InsertOrderItems(ctx context.Context, items []models.OrderItemRecord) error {
	if len(items) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to insert order items: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateOrder(ctx context.Context, id string, fields map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.OrderRecord{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports 0 for a row whose values did not change.
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.OrderRecord{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check order: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("update order %s: %w", id, orders.ErrNotFound)
		}
	}
	s.publish(ctx, models.ChangeEvent{Table: "orders", Op: models.ChangeUpdate, ID: id})
	return nil
}

func (s *GormStore) ListOrders(ctx context.Context) ([]models.OrderRecord, error) {
	var recs []models.OrderRecord
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return recs, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) publish(ctx context.Context, evt models.ChangeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("Failed to publish order change",
			zap.String("order_id", evt.ID),
			zap.String("op", string(evt.Op)),
			zap.Error(err))
	}
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/example/storeadmin/pkg/models"
	"github.com/example/storeadmin/pkg/orders"
)

// PgChangeFeed listens for the notifications the orders trigger sends with
// pg_notify (see GormStore.Migrate).
type PgChangeFeed struct {
	pool    *pgxpool.Pool
	channel string
	logger  *zap.Logger
}

func NewPgPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

func NewPgChangeFeed(pool *pgxpool.Pool, channel string, logger *zap.Logger) *PgChangeFeed {
	return &PgChangeFeed{
		pool:    pool,
		channel: channel,
		logger:  logger.Named("pg-feed"),
	}
}

// Subscribe holds one pooled connection in LISTEN mode until the
// subscription is closed or ctx is done.
func (f *PgChangeFeed) Subscribe(ctx context.Context, handler func(models.ChangeEvent)) (orders.Subscription, error) {
	if !channelName.MatchString(f.channel) {
		return nil, fmt.Errorf("invalid notify channel %q", f.channel)
	}

	pooled, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	// A connection in LISTEN mode must not go back to the pool.
	conn := pooled.Hijack()
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{f.channel}.Sanitize()); err != nil {
		conn.Close(context.Background())
		return nil, fmt.Errorf("failed to listen on %s: %w", f.channel, err)
	}

	listenCtx, cancel := context.WithCancel(ctx)
	sub := &pgSubscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		defer conn.Close(context.Background())

		for {
			n, err := conn.WaitForNotification(listenCtx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					f.logger.Error("Change feed connection lost", zap.Error(err))
				}
				return
			}
			var evt models.ChangeEvent
			if err := json.Unmarshal([]byte(n.Payload), &evt); err != nil {
				f.logger.Warn("Dropping malformed change event", zap.String("payload", n.Payload), zap.Error(err))
				continue
			}
			handler(evt)
		}
	}()
	return sub, nil
}

type pgSubscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *pgSubscription) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

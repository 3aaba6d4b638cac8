package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/example/storeadmin/pkg/config"
	"github.com/example/storeadmin/pkg/models"
	"github.com/example/storeadmin/pkg/orders"
)

// RedisChangeFeed carries order change events over Redis pub/sub. The store
// publishes after each committed write; the manager subscribes.
type RedisChangeFeed struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisChangeFeed(client *redis.Client, channel string, logger *zap.Logger) *RedisChangeFeed {
	return &RedisChangeFeed{
		client:  client,
		channel: channel,
		logger:  logger.Named("redis-feed"),
	}
}

func (f *RedisChangeFeed) Ping(ctx context.Context) error {
	return f.client.Ping(ctx).Err()
}

func (f *RedisChangeFeed) Publish(ctx context.Context, evt models.ChangeEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel, data).Err()
}

// Subscribe delivers every event on the channel to handler from a single
// goroutine until the subscription is closed or ctx is done.
func (f *RedisChangeFeed) Subscribe(ctx context.Context, handler func(models.ChangeEvent)) (orders.Subscription, error) {
	ps := f.client.Subscribe(ctx, f.channel)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", f.channel, err)
	}

	sub := &redisSubscription{ps: ps, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		ch := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt models.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					f.logger.Warn("Dropping malformed change event", zap.String("payload", msg.Payload), zap.Error(err))
					continue
				}
				handler(evt)
			}
		}
	}()
	return sub, nil
}

func (f *RedisChangeFeed) Close() error {
	return f.client.Close()
}

type redisSubscription struct {
	ps   *redis.PubSub
	done chan struct{}
	once sync.Once
	err  error
}

func (s *redisSubscription) Close() error {
	s.once.Do(func() {
		s.err = s.ps.Close()
		<-s.done
	})
	return s.err
}

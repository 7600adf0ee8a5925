package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/mandi/pkg/logger"
)

const (
	redisKeyPrefix  = "mandi:store:"
	redisChangeChan = "mandi:store:changed"
)

// Redis is a go-redis backed store. Writes PUBLISH the changed key so every
// process subscribed via Watch sees the same change signal the file driver
// gets from the filesystem.
type Redis struct {
	rdb *redis.Client
	ctx context.Context
}

// NewRedis connects and verifies the connection with a ping.
func NewRedis(addr, password string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("store/redis: ping: %w", err)
	}
	return &Redis{rdb: rdb, ctx: ctx}, nil
}

func (r *Redis) Read(key string) (json.RawMessage, bool) {
	val, err := r.rdb.Get(r.ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	if !json.Valid(val) {
		logger.Warn("store/redis: corrupt value, treating as absent", "key", key)
		return nil, false
	}
	return val, true
}

func (r *Redis) Write(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store/redis: marshal %s: %w", key, err)
	}
	if err := r.rdb.Set(r.ctx, redisKeyPrefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("store/redis: set %s: %w", key, err)
	}
	r.publish(key)
	return nil
}

func (r *Redis) Remove(key string) error {
	if err := r.rdb.Del(r.ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("store/redis: del %s: %w", key, err)
	}
	r.publish(key)
	return nil
}

func (r *Redis) publish(key string) {
	if err := r.rdb.Publish(r.ctx, redisChangeChan, key).Err(); err != nil {
		logger.Warn("store/redis: publish change", "key", key, "error", err)
	}
}

func (r *Redis) Watch(ctx context.Context) (<-chan string, error) {
	sub := r.rdb.Subscribe(ctx, redisChangeChan)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("store/redis: subscribe: %w", err)
	}

	ch := make(chan string, 64)
	go func() {
		defer close(ch)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case ch <- msg.Payload:
				default:
				}
			}
		}
	}()
	return ch, nil
}

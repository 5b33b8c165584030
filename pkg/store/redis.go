package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// RedisConfig is the environment-driven Redis connection configuration.
type RedisConfig struct {
	URL            string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  uint64        `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"1s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"els"`
}

// ConnectRedis parses cfg.URL and pings the server, retrying with
// exponential backoff starting at RetryInterval.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, ErrInvalidURL
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = time.Second
	}

	client := redis.NewClient(opts)
	backoff := retry.WithMaxRetries(cfg.RetryAttempts, retry.NewExponential(interval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrConnect, err)
	}
	return client, nil
}

// Redis stores items as JSON strings in a hash (<prefix>:<collection>). A
// sorted set (<prefix>:<collection>:order) scored by a counter
// (<prefix>:<collection>:seq) holds creation order.
type Redis[T any] struct {
	client redis.UniversalClient
	hash   string
	order  string
	seq    string
}

// NewRedis creates a collection on client. prefix may be empty.
func NewRedis[T any](client redis.UniversalClient, prefix, collection string) (*Redis[T], error) {
	if err := validName(collection); err != nil {
		return nil, err
	}
	key := collection
	if prefix != "" {
		key = prefix + ":" + collection
	}
	return &Redis[T]{client: client, hash: key, order: key + ":order", seq: key + ":seq"}, nil
}

// Ping checks the server connection.
func (s *Redis[T]) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrHealthcheck, err)
	}
	return nil
}

func (s *Redis[T]) Get(ctx context.Context, id string) (Item[T], error) {
	raw, err := s.client.HGet(ctx, s.hash, id).Result()
	if errors.Is(err, redis.Nil) {
		return Item[T]{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Item[T]{}, fmt.Errorf("store: redis get: %w", err)
	}
	return decodeItem[T](raw)
}

func (s *Redis[T]) List(ctx context.Context) ([]Item[T], error) {
	ids, err := s.client.ZRange(ctx, s.order, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("store: redis list: %w", err)
	}
	out := []Item[T]{}
	if len(ids) == 0 {
		return out, nil
	}
	values, err := s.client.HMGet(ctx, s.hash, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("store: redis list: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		item, err := decodeItem[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Redis[T]) Create(ctx context.Context, data T) (Item[T], error) {
	ts := now()
	item := Item[T]{ID: newID(), Data: data, CreatedAt: ts, UpdatedAt: ts}
	raw, err := json.Marshal(item)
	if err != nil {
		return Item[T]{}, errors.Join(ErrEncode, err)
	}
	seq, err := s.client.Incr(ctx, s.seq).Result()
	if err != nil {
		return Item[T]{}, fmt.Errorf("store: redis create: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.hash, item.ID, raw)
		p.ZAdd(ctx, s.order, redis.Z{Score: float64(seq), Member: item.ID})
		return nil
	})
	if err != nil {
		return Item[T]{}, fmt.Errorf("store: redis create: %w", err)
	}
	return item, nil
}

func (s *Redis[T]) Update(ctx context.Context, id string, data T) (Item[T], error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return Item[T]{}, err
	}
	item.Data = data
	item.UpdatedAt = now()
	raw, err := json.Marshal(item)
	if err != nil {
		return Item[T]{}, errors.Join(ErrEncode, err)
	}
	if err := s.client.HSet(ctx, s.hash, id, raw).Err(); err != nil {
		return Item[T]{}, fmt.Errorf("store: redis update: %w", err)
	}
	return item, nil
}

func (s *Redis[T]) Delete(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		removed = p.HDel(ctx, s.hash, id)
		p.ZRem(ctx, s.order, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: redis delete: %w", err)
	}
	if removed.Val() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func decodeItem[T any](raw string) (Item[T], error) {
	var item Item[T]
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return Item[T]{}, errors.Join(ErrDecode, err)
	}
	return item, nil
}

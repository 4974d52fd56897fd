package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultKeyPrefix = "league-sim:league:"
	scanBatch        = 100
)

// RedisStore keeps snapshots as plain string values under a key prefix
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	logger    *logrus.Entry
}

// NewRedisStore connects and pings the server before returning
func NewRedisStore(redisURL, keyPrefix string, logger *logrus.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	s := &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger.WithField("component", "redis_store"),
	}
	s.logger.WithFields(logrus.Fields{
		"addr":       opt.Addr,
		"database":   opt.DB,
		"key_prefix": keyPrefix,
	}).Info("Redis store initialized")
	return s, nil
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}

func (s *RedisStore) Save(ctx context.Context, id string, data []byte) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(id), data, 0).Err(); err != nil {
		s.logger.WithError(err).WithField("league_id", id).Error("Failed to save league")
		return fmt.Errorf("failed to save league %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		s.logger.WithError(err).WithField("league_id", id).Error("Failed to load league")
		return nil, fmt.Errorf("failed to load league %s: %w", id, err)
	}
	return data, nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), s.keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete league %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

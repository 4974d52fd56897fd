package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound    = errors.New("league not found")
	ErrInvalidID   = errors.New("invalid league id")
	ErrInvalidName = errors.New("invalid league name")
)

// Store persists encoded league snapshots by ID
type Store interface {
	Save(ctx context.Context, id string, data []byte) error
	Load(ctx context.Context, id string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Config selects and configures a backend
type Config struct {
	Backend   string `mapstructure:"backend" json:"backend"`
	Dir       string `mapstructure:"dir" json:"dir"`
	RedisURL  string `mapstructure:"redis_url" json:"redis_url"`
	KeyPrefix string `mapstructure:"key_prefix" json:"key_prefix"`
}

// Open builds the configured backend. An empty backend means memory.
func Open(cfg Config, logger *logrus.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		s, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := NewRedisStore(cfg.RedisURL, cfg.KeyPrefix, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// checkID rejects IDs that could escape a key namespace or directory
func checkID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

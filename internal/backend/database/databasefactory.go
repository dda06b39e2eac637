package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrUnsupportedStore = errors.New("unsupported store type")

const (
	TypeMemory = "memory"
	TypeSQLite = "sqlite"
	TypeRedis  = "redis"
)

type Options struct {
	Type             string
	ConnectionString string
	Address          string
	Password         string
	Key              string
}

func NewDatabase(ctx context.Context, options Options) (database DatabaseService, err error) {
	switch options.Type {
	case "", TypeMemory:
		return NewMemoryDatabase(), nil
	case TypeSQLite:
		connectionString := options.ConnectionString
		if connectionString == "" {
			connectionString = ":memory:"
		}
		sqlite, err := NewSQLiteDatabase(connectionString)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := sqlite.Ping(ctx); err != nil {
			_ = sqlite.Close()
			return nil, fmt.Errorf("failed to reach sqlite database %s: %w", connectionString, err)
		}
		// Ensure database schema exists (idempotent), important for in-memory SQLite
		slog.Info("initializing database schema (ensuring tables exist)")
		if err := sqlite.CreateDatabase(); err != nil {
			_ = sqlite.Close()
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
		return sqlite, nil
	case TypeRedis:
		redis := NewRedisDatabase(options.Address, options.Password, options.Key)
		if err := redis.Ping(ctx); err != nil {
			_ = redis.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", options.Address, err)
		}
		return redis, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStore, options.Type)
	}
}

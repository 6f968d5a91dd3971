// Package redis builds a pinged go-redis client.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Option configures the client.
type Option func(*Config)

// Config holds Redis connection settings.
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	PoolTimeout  time.Duration
	PingTimeout  time.Duration
}

// WithAddr sets host:port.
func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Addr = addr
	}
}

// WithPassword sets the AUTH password.
func WithPassword(password string) Option {
	return func(c *Config) {
		c.Password = password
	}
}

// WithDB selects the database number.
func WithDB(db int) Option {
	return func(c *Config) {
		c.DB = db
	}
}

// WithPool sets connection pool settings.
func WithPool(size, minIdle int, timeout time.Duration) Option {
	return func(c *Config) {
		c.PoolSize = size
		c.MinIdleConns = minIdle
		c.PoolTimeout = timeout
	}
}

func defaultConfig() *Config {
	return &Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		PoolTimeout:  30 * time.Second,
		PingTimeout:  5 * time.Second,
	}
}

// NewClient connects and pings. The client is closed again if the ping fails.
func NewClient(opts ...Option) (*goredis.Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	client := goredis.NewClient(cfg.options())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func (c *Config) options() *goredis.Options {
	return &goredis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		PoolTimeout:  c.PoolTimeout,
	}
}

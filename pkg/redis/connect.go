package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config is the connection configuration. Zero values take defaults.
type Config struct {
	URL           string        `yaml:"url"`
	PoolSize      int           `yaml:"pool_size"`
	MinIdleConns  int           `yaml:"min_idle_conns"`
	MaxIdleTime   time.Duration `yaml:"max_idle_time"`
	MaxActiveTime time.Duration `yaml:"max_active_time"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
}

func (c Config) withDefaults() Config {
	def := func(v *time.Duration, d time.Duration) {
		if *v <= 0 {
			*v = d
		}
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 5
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	def(&c.MaxIdleTime, 10*time.Minute)
	def(&c.MaxActiveTime, 30*time.Minute)
	def(&c.RetryInterval, 5*time.Second)
	def(&c.ReadTimeout, 3*time.Second)
	def(&c.WriteTimeout, 3*time.Second)
	def(&c.DialTimeout, 5*time.Second)
	return c
}

// Option adjusts a Config.
type Option func(*Config)

// WithPoolSize sets the maximum number of connections. Default: 10.
func WithPoolSize(n int) Option {
	return func(c *Config) {
		c.PoolSize = n
	}
}

// WithMinIdleConns sets the number of idle connections kept open.
// Default: 5.
func WithMinIdleConns(n int) Option {
	return func(c *Config) {
		c.MinIdleConns = n
	}
}

// WithRetry sets how often connecting is attempted and the base wait
// between attempts, which grows linearly. Default: 3 attempts, 5 seconds.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(c *Config) {
		c.RetryAttempts = attempts
		c.RetryInterval = interval
	}
}

// WithTimeouts sets dial, read and write timeouts. Zero keeps the default.
func WithTimeouts(dial, read, write time.Duration) Option {
	return func(c *Config) {
		c.DialTimeout = dial
		c.ReadTimeout = read
		c.WriteTimeout = write
	}
}

// Open connects to the redis:// or rediss:// URL, retrying until the server
// answers a ping.
//
// Example:
//
//	client, err := redis.Open(ctx, "redis://localhost:6379/0",
//	    redis.WithPoolSize(20),
//	    redis.WithRetry(5, time.Second),
//	)
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	cfg := Config{URL: url}
	for _, opt := range opts {
		opt(&cfg)
	}
	return Connect(ctx, cfg)
}

// Connect is Open driven by a Config.
func Connect(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	cfg = cfg.withDefaults()
	ropts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	ropts.PoolSize = cfg.PoolSize
	ropts.MinIdleConns = cfg.MinIdleConns
	ropts.ConnMaxIdleTime = cfg.MaxIdleTime
	ropts.ConnMaxLifetime = cfg.MaxActiveTime
	ropts.ReadTimeout = cfg.ReadTimeout
	ropts.WriteTimeout = cfg.WriteTimeout
	ropts.DialTimeout = cfg.DialTimeout

	var lastErr error
	for i := range cfg.RetryAttempts {
		client := redis.NewClient(ropts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == cfg.RetryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client accès Redis : sessions, tentatives de connexion, cache du tableau de bord
type Client struct {
	rdb  *redis.Client
	keys *RedisKeyGenerator
}

type RedisConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	Password    string        `yaml:"password"`
	Database    int           `yaml:"database"`
	MaxRetries  int           `yaml:"max_retries"`
	PoolSize    int           `yaml:"pool_size"`
	PoolTimeout time.Duration `yaml:"pool_timeout"`
}

func (c *RedisConfig) options() *redis.Options {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.Host, c.Port),
		Password:     c.Password,
		DB:           c.Database,
		MaxRetries:   3,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	if c.MaxRetries > 0 {
		opts.MaxRetries = c.MaxRetries
	}
	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}
	if c.PoolTimeout > 0 {
		opts.PoolTimeout = c.PoolTimeout
	}
	return opts
}

// NewClient connexion vérifiée au démarrage ; Redis est obligatoire
func NewClient(config *RedisConfig, keys *RedisKeyGenerator) (*Client, error) {
	client := &Client{rdb: redis.NewClient(config.options()), keys: keys}
	if err := client.Ping(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping Redis échoué: %w", err)
	}
	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return errors.New("client Redis nil")
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping échoué: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
}

// Client accès direct pour les pipelines et les ensembles
func (c *Client) Client() *redis.Client {
	return c.rdb
}

// Get redis.Nil si la clé est absente
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

func (c *Client) HSet(ctx context.Context, key string, values ...interface{}) error {
	return c.rdb.HSet(ctx, key, values...).Err()
}

func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, key).Result()
}

// Incr le TTL n'est posé qu'au premier incrément : la fenêtre ne glisse pas
func (c *Client) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 && window > 0 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return n, fmt.Errorf("expiration compteur: %w", err)
		}
	}
	return n, nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.Ping(ctx); err != nil {
		return err
	}
	if c.rdb.PoolStats().TotalConns == 0 {
		return errors.New("aucune connexion Redis disponible")
	}
	return nil
}

func (c *Client) Stats() *redis.PoolStats {
	return c.rdb.PoolStats()
}

// SetWithPattern écrit sous la clé du pattern, avec son TTL (0 : sans expiration)
func (c *Client) SetWithPattern(ctx context.Context, pattern string, value interface{}, ids ...string) error {
	key, err := c.keys.GenerateKey(pattern, ids...)
	if err != nil {
		return err
	}
	ttl, err := c.keys.GetTTL(pattern)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, value, time.Duration(ttl)*time.Second).Err()
}

func (c *Client) GetWithPattern(ctx context.Context, pattern string, ids ...string) (string, error) {
	key, err := c.keys.GenerateKey(pattern, ids...)
	if err != nil {
		return "", err
	}
	return c.Get(ctx, key)
}

func (c *Client) DelWithPattern(ctx context.Context, pattern string, ids ...string) error {
	key, err := c.keys.GenerateKey(pattern, ids...)
	if err != nil {
		return err
	}
	return c.Del(ctx, key)
}

// IsNil clé absente
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier surface commune au pool et aux transactions
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) error
}

type Client struct {
	pool *pgxpool.Pool
}

type DatabaseConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Database       string        `yaml:"database"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	SSLMode        string        `yaml:"ssl_mode"`
	MaxConnections int           `yaml:"max_connections"`
	ConnectionTTL  time.Duration `yaml:"connection_ttl"`
	QueryTimeout   time.Duration `yaml:"query_timeout"`
}

// DSN chaîne de connexion pgx
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

func (c *DatabaseConfig) poolConfig() (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("DSN PostgreSQL invalide: %w", err)
	}

	cfg.MaxConns = 25
	if c.MaxConnections > 0 {
		cfg.MaxConns = int32(c.MaxConnections)
	}
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 5 * time.Minute
	if c.ConnectionTTL > 0 {
		cfg.MaxConnLifetime = c.ConnectionTTL
	}
	cfg.MaxConnIdleTime = 30 * time.Second

	statementTimeout := "30s"
	if c.QueryTimeout > 0 {
		statementTimeout = fmt.Sprintf("%dms", c.QueryTimeout.Milliseconds())
	}
	cfg.ConnConfig.ConnectTimeout = 30 * time.Second
	params := cfg.ConnConfig.RuntimeParams
	params["statement_timeout"] = statementTimeout
	params["idle_in_transaction_session_timeout"] = "60s"
	params["application_name"] = "crm-pharma-core"
	return cfg, nil
}

// NewClient ouvre le pool et vérifie la connexion
func NewClient(config *DatabaseConfig) (*Client, error) {
	poolConfig, err := config.poolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("création pool PostgreSQL échouée: %w", err)
	}

	client := &Client{pool: pool}
	if err := client.Ping(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping PostgreSQL échoué: %w", err)
	}
	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.pool == nil {
		return errors.New("pool PostgreSQL nil")
	}
	if err := c.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping échoué: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func (c *Client) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return c.pool.Query(ctx, sql, args...)
}

func (c *Client) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return c.pool.QueryRow(ctx, sql, args...)
}

func (c *Client) Exec(ctx context.Context, sql string, args ...interface{}) error {
	_, err := c.pool.Exec(ctx, sql, args...)
	return err
}

func (c *Client) Stats() *pgxpool.Stat {
	return c.pool.Stat()
}

// HealthCheck pool non vide, non saturé, et ping
func (c *Client) HealthCheck(ctx context.Context) error {
	stats := c.Stats()
	switch {
	case stats.TotalConns() == 0:
		return errors.New("aucune connexion PostgreSQL disponible")
	case stats.IdleConns() == 0 && stats.AcquiredConns() >= stats.MaxConns():
		return errors.New("pool PostgreSQL saturé")
	}
	return c.Ping(ctx)
}

// IsUndefinedTable erreur 42P01 : table absente (schéma en retard)
func IsUndefinedTable(err error) bool {
	return pgErrorCode(err) == "42P01"
}

// IsUndefinedColumn erreur 42703 : colonne absente (schéma en retard)
func IsUndefinedColumn(err error) bool {
	return pgErrorCode(err) == "42703"
}

func IsUniqueViolation(err error) bool {
	return pgErrorCode(err) == "23505"
}

func IsForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == "23503"
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

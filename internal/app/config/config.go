package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"crm-pharma-core/internal/infrastructure/database/mongodb"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/infrastructure/database/redis"
	"crm-pharma-core/internal/infrastructure/events"
	"crm-pharma-core/internal/infrastructure/textgen"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvDocker      = "docker"
)

// Config lue exclusivement depuis l'environnement (.env facultatif)
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	MongoDB     MongoConfig
	Schema      SchemaConfig
	Session     SessionConfig
	Kafka       KafkaConfig
	GenAI       GenAIConfig
	Analysis    AnalysisConfig
	Seed        SeedConfig
	Logging     LoggingConfig
	CORS        CORSConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ShutdownWait time.Duration
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host           string
	Port           int
	Name           string
	Username       string
	Password       string
	SSLMode        string
	MaxConnections int
	ConnectionTTL  time.Duration
	QueryTimeout   time.Duration
}

type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	Database    int
	MaxRetries  int
	PoolSize    int
	PoolTimeout time.Duration
}

// MongoConfig URI vide : journal d'audit désactivé
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    int
}

type SchemaConfig struct {
	AutoMigrate      bool
	MigrationTimeout time.Duration
}

// SessionConfig sessions opaques, anti-bruteforce et purge périodique
type SessionConfig struct {
	TTL              time.Duration
	SecretPepper     string
	MaxLoginAttempts int
	LoginWindow      time.Duration
	CleanupInterval  time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type GenAIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type AnalysisConfig struct {
	DashboardCacheTTL time.Duration
}

type SeedConfig struct {
	SuperAdminEmail    string
	SuperAdminPassword string
}

type LoggingConfig struct {
	Level string
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// NewConfig charge .env s'il existe, lit l'environnement puis valide
func NewConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("lecture .env: %w", err)
	}

	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration invalide: %w", err)
	}
	return cfg, nil
}

// Load lit l'environnement courant ; une valeur présente mais illisible est une erreur
func Load() (*Config, error) {
	e := &env{}
	cfg := &Config{Environment: e.str("APP_ENV", EnvDevelopment)}

	cfg.Server = ServerConfig{
		Host:         e.str("SERVER_HOST", "localhost"),
		Port:         e.int("SERVER_PORT", 4000),
		ReadTimeout:  e.duration("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout: e.duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ShutdownWait: e.duration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	cfg.Database = DatabaseConfig{
		Host:           e.str("DB_HOST", "localhost"),
		Port:           e.int("DB_PORT", 5432),
		Name:           e.str("DB_NAME", "crm_pharma"),
		Username:       e.str("DB_USERNAME", "postgres"),
		Password:       e.str("DB_PASSWORD", ""),
		SSLMode:        e.str("DB_SSL_MODE", "disable"),
		MaxConnections: e.int("DB_MAX_CONNECTIONS", 25),
		ConnectionTTL:  e.duration("DB_CONNECTION_TTL", 5*time.Minute),
		QueryTimeout:   e.duration("DB_QUERY_TIMEOUT", 30*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:        e.str("REDIS_HOST", "localhost"),
		Port:        e.int("REDIS_PORT", 6379),
		Password:    e.str("REDIS_PASSWORD", ""),
		Database:    e.int("REDIS_DATABASE", 0),
		MaxRetries:  e.int("REDIS_MAX_RETRIES", 3),
		PoolSize:    e.int("REDIS_POOL_SIZE", 10),
		PoolTimeout: e.duration("REDIS_POOL_TIMEOUT", 30*time.Second),
	}

	mongoURI := ""
	if cfg.Environment == EnvDevelopment {
		mongoURI = "mongodb://localhost:27017"
	}
	cfg.MongoDB = MongoConfig{
		URI:            e.str("MONGODB_URI", mongoURI),
		Database:       e.str("MONGODB_DATABASE", "crm_pharma_journal"),
		ConnectTimeout: e.duration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
		MaxPoolSize:    e.int("MONGODB_MAX_POOL_SIZE", 50),
	}

	cfg.Schema = SchemaConfig{
		AutoMigrate:      e.bool("SCHEMA_AUTO_MIGRATE", true),
		MigrationTimeout: e.duration("SCHEMA_MIGRATION_TIMEOUT", time.Minute),
	}

	cfg.Session = SessionConfig{
		TTL:              e.duration("SESSION_TTL", 8*time.Hour),
		SecretPepper:     e.str("SESSION_SECRET_PEPPER", ""),
		MaxLoginAttempts: e.int("SESSION_MAX_LOGIN_ATTEMPTS", 5),
		LoginWindow:      e.duration("SESSION_LOGIN_WINDOW", 15*time.Minute),
		CleanupInterval:  e.duration("SESSION_CLEANUP_INTERVAL", time.Hour),
	}

	cfg.Kafka = KafkaConfig{
		Brokers: e.list("KAFKA_BROKERS", nil),
		Topic:   e.str("KAFKA_TOPIC_MISSION_ALERTS", "crm.mission.alerts"),
	}

	cfg.GenAI = GenAIConfig{
		APIKey:  e.str("GENAI_API_KEY", ""),
		Model:   e.str("GENAI_MODEL", "gemini-2.0-flash"),
		Timeout: e.duration("GENAI_TIMEOUT", 30*time.Second),
	}

	cfg.Analysis = AnalysisConfig{
		DashboardCacheTTL: e.duration("ANALYSIS_DASHBOARD_CACHE_TTL", time.Minute),
	}

	cfg.Seed = SeedConfig{
		SuperAdminEmail:    e.str("SEED_SUPER_ADMIN_EMAIL", "admin@crm-pharma.dz"),
		SuperAdminPassword: e.str("SEED_SUPER_ADMIN_PASSWORD", ""),
	}

	cfg.Logging = LoggingConfig{Level: e.str("LOG_LEVEL", "debug")}

	cfg.CORS = CORSConfig{
		AllowedOrigins:   e.list("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		AllowedMethods:   e.list("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders:   e.list("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		AllowCredentials: e.bool("CORS_ALLOW_CREDENTIALS", true),
		MaxAge:           e.int("CORS_MAX_AGE", 3600),
	}

	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate secrets obligatoires hors développement
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment:
		return nil
	case EnvDocker:
	default:
		return fmt.Errorf("APP_ENV %q inconnu (attendu %s ou %s)", c.Environment, EnvDevelopment, EnvDocker)
	}

	var missing []string
	if c.Database.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if c.Session.SecretPepper == "" {
		missing = append(missing, "SESSION_SECRET_PEPPER")
	}
	if len(missing) > 0 {
		return fmt.Errorf("variables requises en %s: %s", c.Environment, strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// Conversions vers les configurations d'infrastructure, fournies à Fx

func NewPostgresConfig(c *Config) *postgres.DatabaseConfig {
	d := c.Database
	return &postgres.DatabaseConfig{
		Host:           d.Host,
		Port:           d.Port,
		Database:       d.Name,
		Username:       d.Username,
		Password:       d.Password,
		SSLMode:        d.SSLMode,
		MaxConnections: d.MaxConnections,
		ConnectionTTL:  d.ConnectionTTL,
		QueryTimeout:   d.QueryTimeout,
	}
}

func NewRedisConfig(c *Config) *redis.RedisConfig {
	r := c.Redis
	return &redis.RedisConfig{
		Host:        r.Host,
		Port:        r.Port,
		Password:    r.Password,
		Database:    r.Database,
		MaxRetries:  r.MaxRetries,
		PoolSize:    r.PoolSize,
		PoolTimeout: r.PoolTimeout,
	}
}

func NewMongoConfig(c *Config) *mongodb.MongoConfig {
	m := c.MongoDB
	return &mongodb.MongoConfig{
		URI:            m.URI,
		Database:       m.Database,
		ConnectTimeout: m.ConnectTimeout,
		MaxPoolSize:    m.MaxPoolSize,
	}
}

func NewKafkaConfig(c *Config) *events.KafkaConfig {
	return &events.KafkaConfig{Brokers: c.Kafka.Brokers, Topic: c.Kafka.Topic}
}

func NewGenAIConfig(c *Config) *textgen.Config {
	return &textgen.Config{APIKey: c.GenAI.APIKey, Model: c.GenAI.Model, Timeout: c.GenAI.Timeout}
}

// env lecture typée ; les valeurs illisibles s'accumulent dans errs
type env struct {
	errs []error
}

func (e *env) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func (e *env) fail(key, value, want string) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q: %s attendu", key, value, want))
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, "entier")
		return def
	}
	return n
}

func (e *env) bool(key string, def bool) bool {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, "booléen")
		return def
	}
	return b
}

// duration "90s", "15m" ou un nombre de secondes
func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, "durée")
		return def
	}
	return d
}

func (e *env) list(key string, def []string) []string {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

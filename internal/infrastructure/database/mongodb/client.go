package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client MongoDB optionnel : Available() faux si aucune connexion n'a pu être établie
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	MaxPoolSize    int           `yaml:"max_pool_size"`
}

// NewClient ne retourne jamais d'erreur de connectivité : le service tourne sans MongoDB
func NewClient(config *MongoConfig) (*Client, error) {
	if config.URI == "" {
		fmt.Printf("[MONGODB] ⚠️  MONGODB_URI vide - journal d'audit désactivé\n")
		return &Client{}, nil
	}

	timeout := config.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.URI)

	poolSize := uint64(50)
	if config.MaxPoolSize > 0 {
		poolSize = uint64(config.MaxPoolSize)
	}
	clientOptions.SetMaxPoolSize(poolSize)
	clientOptions.SetMinPoolSize(1)
	clientOptions.SetMaxConnIdleTime(30 * time.Minute)
	clientOptions.SetConnectTimeout(timeout)
	clientOptions.SetServerSelectionTimeout(5 * time.Second)
	clientOptions.SetRetryWrites(true)
	clientOptions.SetRetryReads(true)

	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		fmt.Printf("[MONGODB] ⚠️  Connexion impossible - journal d'audit désactivé: %v\n", err)
		return &Client{}, nil
	}

	client := &Client{
		client:   mongoClient,
		database: mongoClient.Database(config.Database),
	}

	if err := client.Ping(ctx); err != nil {
		fmt.Printf("[MONGODB] ⚠️  Ping échoué - journal d'audit désactivé: %v\n", err)
		_ = mongoClient.Disconnect(context.Background())
		return &Client{}, nil
	}

	return client, nil
}

// Available indique si le journal peut être utilisé
func (c *Client) Available() bool {
	return c != nil && c.database != nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("client MongoDB nil")
	}

	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping échoué: %w", err)
	}

	return nil
}

func (c *Client) Close(ctx context.Context) error {
	if c.client != nil {
		return c.client.Disconnect(ctx)
	}
	return nil
}

func (c *Client) Database() *mongo.Database {
	return c.database
}

func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

func (c *Client) ListCollectionNames(ctx context.Context) ([]string, error) {
	return c.database.ListCollectionNames(ctx, bson.D{})
}

func (c *Client) CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) error {
	_, err := c.Collection(collection).Indexes().CreateMany(ctx, models)
	return err
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.Available() {
		return fmt.Errorf("MongoDB non configuré")
	}
	return c.Ping(ctx)
}

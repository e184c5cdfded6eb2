package mongodb

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrJournalUnavailable MongoDB absent ou injoignable
var ErrJournalUnavailable = errors.New("journal d'audit indisponible")

// Kind entité journalisée
type Kind string

const (
	KindMission  Kind = "mission"
	KindProspect Kind = "prospect"
)

// CollectionName journal_missions, journal_prospects
func (k Kind) CollectionName() string {
	return fmt.Sprintf("journal_%ss", k)
}

// Entry événement append-only
type Entry struct {
	EntityID  string                 `bson:"entity_id" json:"entity_id"`
	Event     string                 `bson:"event" json:"event"`
	ActorID   string                 `bson:"actor_id" json:"actor_id"`
	ActorRole string                 `bson:"actor_role" json:"actor_role"`
	Details   map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}

// Journal écriture/lecture du journal d'audit
type Journal struct {
	client *Client
}

func NewJournal(client *Client) *Journal {
	return &Journal{client: client}
}

func (j *Journal) Available() bool {
	return j != nil && j.client.Available()
}

// Record ajoute une entrée ; sans MongoDB l'appel est ignoré
func (j *Journal) Record(ctx context.Context, kind Kind, entry Entry) error {
	if !j.Available() {
		return nil
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if _, err := j.client.Collection(kind.CollectionName()).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("écriture journal %s: %w", kind, err)
	}
	return nil
}

// List entrées d'une entité, plus récentes d'abord
func (j *Journal) List(ctx context.Context, kind Kind, entityID string, limit int64) ([]Entry, error) {
	if !j.Available() {
		return nil, ErrJournalUnavailable
	}
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := j.client.Collection(kind.CollectionName()).Find(ctx, bson.M{"entity_id": entityID}, opts)
	if err != nil {
		return nil, fmt.Errorf("lecture journal %s: %w", kind, err)
	}
	defer cursor.Close(ctx)

	entries := []Entry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("décodage journal %s: %w", kind, err)
	}
	return entries, nil
}

// EnsureCollections crée les collections avec validateur et index si absentes
func (j *Journal) EnsureCollections(ctx context.Context) error {
	if !j.Available() {
		return nil
	}

	existing, err := j.client.ListCollectionNames(ctx)
	if err != nil {
		return fmt.Errorf("liste collections: %w", err)
	}

	for _, kind := range []Kind{KindMission, KindProspect} {
		name := kind.CollectionName()
		if !slices.Contains(existing, name) {
			opts := options.CreateCollection().SetValidator(journalValidator())
			if err := j.client.Database().CreateCollection(ctx, name, opts); err != nil {
				return fmt.Errorf("création collection %s: %w", name, err)
			}
		}

		indexes := []mongo.IndexModel{
			{Keys: bson.D{{Key: "entity_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "actor_id", Value: 1}}},
		}
		if err := j.client.CreateIndexes(ctx, name, indexes); err != nil {
			return fmt.Errorf("index collection %s: %w", name, err)
		}
	}

	fmt.Printf("[MONGODB] ✅ Collections journal prêtes\n")
	return nil
}

func journalValidator() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"entity_id", "event", "created_at"},
			"properties": bson.M{
				"entity_id": bson.M{
					"bsonType":    "string",
					"description": "Identifiant de la mission ou du prospect",
				},
				"event": bson.M{
					"bsonType":    "string",
					"description": "Type d'événement",
				},
				"actor_id": bson.M{
					"bsonType": "string",
				},
				"actor_role": bson.M{
					"bsonType": "string",
				},
				"details": bson.M{
					"bsonType": "object",
				},
				"created_at": bson.M{
					"bsonType": "date",
				},
			},
		},
	}
}

package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "journal_missions", KindMission.CollectionName())
	assert.Equal(t, "journal_prospects", KindProspect.CollectionName())
}

func TestJournal_DegradedWithoutMongo(t *testing.T) {
	client, err := NewClient(&MongoConfig{URI: ""})
	require.NoError(t, err)
	assert.False(t, client.Available())

	journal := NewJournal(client)
	ctx := context.Background()

	assert.NoError(t, journal.Record(ctx, KindMission, Entry{EntityID: "m-1", Event: "mission_started"}))
	assert.NoError(t, journal.EnsureCollections(ctx))

	_, err = journal.List(ctx, KindMission, "m-1", 10)
	assert.ErrorIs(t, err, ErrJournalUnavailable)
	assert.Error(t, client.HealthCheck(ctx))
}

package textgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_DisabledWithoutKey(t *testing.T) {
	c, err := NewClient(&Config{})
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	_, err = c.Generate(context.Background(), "Résume ce prospect")
	assert.ErrorIs(t, err, ErrDisabled)

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
}

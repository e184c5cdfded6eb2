package scripts

import (
	"strings"
	"testing"

	"crm-pharma-core/internal/domain/prospect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClients(t *testing.T) {
	input := strings.Join([]string{
		"raison_sociale;contact;telephone;wilaya;secteur",
		"Pharmacie El Nour;Karim;0555 12 34 56;Alger;officine",
		"Pharmacie Sans Tel;Nadia;;Oran;officine",
		"Ligne courte;Ali",
		"Grossiste Atlas;Samir;0661234567;Blida;Grossiste",
	}, "\n")

	clients, rejects, err := ParseClients(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, clients, 2)
	assert.Equal(t, "Pharmacie El Nour", clients[0].RaisonSociale)
	assert.Equal(t, "0555123456", clients[0].Telephone)
	assert.Equal(t, prospect.StatusActif, clients[0].Statut)
	assert.Equal(t, prospect.TemperatureAcquis, clients[1].Temperature)
	assert.Equal(t, "16", clients[0].Wilaya)
	assert.Equal(t, "09", clients[1].Wilaya)

	require.Len(t, rejects, 2)
	assert.Equal(t, 3, rejects[0].Line)
	assert.Contains(t, rejects[0].Fields, "telephone")
	assert.Equal(t, 4, rejects[1].Line)
	assert.Error(t, rejects[1].Err)
}

func TestParseClients_NoHeader(t *testing.T) {
	clients, rejects, err := ParseClients(strings.NewReader("Pharmacie Ibn Sina;Yacine;0770112233;Sétif;officine\n"))
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Empty(t, rejects)
	assert.Equal(t, "19", clients[0].Wilaya)
}

func TestParseClients_WilayaLikeProspectForm(t *testing.T) {
	input := strings.Join([]string{
		"Pharmacie A;Karim;0555123456;9;officine",
		"Pharmacie B;Nadia;0555123457; oran ;officine",
		"Pharmacie C;Ali;0555123458;Atlantide;officine",
	}, "\n")

	clients, rejects, err := ParseClients(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "09", clients[0].Wilaya)
	assert.Equal(t, "31", clients[1].Wilaya)

	require.Len(t, rejects, 1)
	assert.Equal(t, 3, rejects[0].Line)
	assert.Contains(t, rejects[0].Fields, "wilaya")
}

func TestBatches(t *testing.T) {
	clients := make([]prospect.Prospect, 7)

	batches := Batches(clients, 3)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[2], 1)

	assert.Len(t, Batches(clients, 0), 1)
	assert.Empty(t, Batches(nil, 50))
}

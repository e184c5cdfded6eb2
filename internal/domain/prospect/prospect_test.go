package prospect

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

func TestNormalizeSecteur(t *testing.T) {
	assert.Equal(t, "GROSSISTE PHARM", NormalizeSecteur("grossiste pharm"))
	assert.Equal(t, "LABO PROD", NormalizeSecteur(" LABO PROD "))
	assert.Equal(t, SecteurAutre, NormalizeSecteur("Officine"))
	assert.Equal(t, SecteurAutre, NormalizeSecteur(""))
}

func TestValidate(t *testing.T) {
	p := &Prospect{RaisonSociale: "Pharma Est", Contact: "M. Benali", Telephone: "0555 12 34 56"}
	assert.Nil(t, Validate(p))

	p = &Prospect{Telephone: "0455123456", Email: "pas-un-email", Temperature: "glacial"}
	errs := Validate(p)
	assert.Equal(t, FieldErrors{
		"raison_sociale": "La raison sociale est obligatoire",
		"contact":        "Le contact est obligatoire",
		"telephone":      "Format de téléphone invalide (ex: 0555123456)",
		"email":          "Format d'email invalide",
		"temperature":    "Température invalide",
	}, errs)
}

func TestConvert_PreservesHistory(t *testing.T) {
	legacy := []LegacyEntry{{Action: "creation", Details: "Prospect créé", CreatedAt: now.Add(-48 * time.Hour)}}
	p := &Prospect{ID: "p-1", Statut: StatusProspect, HistoriqueActions: legacy}
	table := []HistoryEntry{
		{ID: "h-1", ProspectID: "p-1", Action: ActionAppel, Description: "Premier appel", CreatedAt: now.Add(-24 * time.Hour)},
		{ID: "h-2", ProspectID: "p-1", Action: ActionDemo, Description: "Démo faite", CreatedAt: now.Add(-time.Hour)},
	}
	before := Merge(p.ID, table, p.HistoriqueActions)

	require.ErrorIs(t, p.Convert(false, now), ErrConfirmationMissing)
	assert.Equal(t, StatusProspect, p.Statut)

	require.NoError(t, p.Convert(true, now))
	assert.Equal(t, StatusActif, p.Statut)
	assert.Equal(t, TemperatureAcquis, p.Temperature)

	table = append(table, ConversionEntry(p.ID, "u-1", now))
	after := Merge(p.ID, table, p.HistoriqueActions)

	require.Len(t, after, len(before)+1)
	assert.Equal(t, ActionConversion, after[0].Action)
	if diff := cmp.Diff(before, after[1:]); diff != "" {
		t.Errorf("historique modifié par la conversion (-avant +après):\n%s", diff)
	}

	assert.ErrorIs(t, p.Convert(true, now), ErrAlreadyClient)
}

func TestChangeStatus(t *testing.T) {
	p := &Prospect{Statut: StatusActif}
	assert.ErrorIs(t, p.ChangeStatus(StatusInactif, false, now), ErrAdminRequired)
	require.NoError(t, p.ChangeStatus(StatusInactif, true, now))
	require.NoError(t, p.ChangeStatus(StatusActif, true, now))
	assert.ErrorIs(t, p.ChangeStatus(StatusProspect, true, now), ErrStatusChange, "pas de rétrogradation via l'API")

	p = &Prospect{Statut: StatusProspect}
	assert.ErrorIs(t, p.ChangeStatus(StatusActif, true, now), ErrStatusChange, "la conversion passe par Convert")
	assert.NoError(t, p.ChangeStatus(StatusProspect, false, now))
}

func TestValidateEntry_Installation(t *testing.T) {
	errs := ValidateEntry(HistoryEntry{Action: ActionInstallation})
	assert.Contains(t, errs, "date_debut")
	assert.Contains(t, errs, "date_fin")
	assert.Contains(t, errs, "application")
	assert.Contains(t, errs, "chef_mission")

	debut, fin := now, now.Add(-time.Hour)
	errs = ValidateEntry(HistoryEntry{Action: ActionInstallation, DateDebut: &debut, DateFin: &fin, Application: "PharmaPro", ChefMission: "chef"})
	assert.Equal(t, FieldErrors{"date_fin": "La date de fin doit être après la date de début"}, errs)

	assert.Nil(t, ValidateEntry(HistoryEntry{Action: ActionRelance}))
	assert.Contains(t, ValidateEntry(HistoryEntry{Action: "fax"}), "action")
}

func TestRecord(t *testing.T) {
	client := &Prospect{Statut: StatusActif}
	assert.Equal(t, Outcome{Skipped: true}, Record(client, HistoryEntry{Action: ActionAppel}, now))
	assert.Equal(t, Outcome{}, Record(client, HistoryEntry{Action: ActionAbonnementAutoRenew}, now))

	p := &Prospect{Statut: StatusProspect}
	assert.Equal(t, Outcome{}, Record(p, HistoryEntry{Action: ActionRDV}, now))
	assert.Equal(t, Outcome{Converted: true}, Record(p, HistoryEntry{Action: ActionInstallation}, now))
	assert.Equal(t, StatusActif, p.Statut)
}

func TestMerge_Dedupe(t *testing.T) {
	table := []HistoryEntry{
		{ID: "h-1", Action: ActionAppel, Description: "Appel", CreatedAt: now},
		{ID: "h-2", Action: ActionEmail, Description: "Brochure", CreatedAt: now.Add(-time.Hour)},
	}
	legacy := []LegacyEntry{
		{Action: "appel", Details: "autre texte", CreatedAt: now.Add(20 * time.Second)},
		{Action: "email", Details: "Brochure", CreatedAt: now.Add(-5 * time.Hour)},
		{Action: "relance", Details: "Relance", CreatedAt: now.Add(-2 * time.Hour)},
		{Action: "appel", Details: "Ancien appel", CreatedAt: now.Add(-72 * time.Hour)},
	}

	merged := Merge("p-1", table, legacy)
	require.Len(t, merged, 4)
	assert.Equal(t, "h-1", merged[0].ID)
	assert.Equal(t, "h-2", merged[1].ID)
	assert.Equal(t, ActionRelance, merged[2].Action)
	assert.True(t, merged[2].Legacy)
	assert.Equal(t, "Ancien appel", merged[3].Description)
}

func TestRemoveLegacy(t *testing.T) {
	legacy := []LegacyEntry{
		{Action: "demo", Details: "Démo", CreatedAt: now.Add(5 * time.Second)},
		{Action: "demo", Details: "Autre démo", CreatedAt: now.Add(-time.Hour)},
		{Action: "appel", Details: "Démo", CreatedAt: now},
	}
	kept, removed := RemoveLegacy(legacy, HistoryEntry{Action: ActionDemo, Description: "Démo", CreatedAt: now})
	assert.Equal(t, 1, removed)
	assert.Len(t, kept, 2)
}

func TestHasInstallation(t *testing.T) {
	assert.False(t, HasInstallation(nil, nil))
	assert.True(t, HasInstallation(nil, []LegacyEntry{{Action: "installation"}}))
	assert.True(t, HasInstallation([]HistoryEntry{{Action: ActionInstallation}}, nil))
}

func TestSearch(t *testing.T) {
	list := []Prospect{
		{ID: "1", RaisonSociale: "Pharmacie El Amel", Contact: "Karim", Telephone: "0555000001", Statut: StatusProspect},
		{ID: "2", RaisonSociale: "Grossiste Sud", Contact: "Amina", Email: "contact@sud.dz", Statut: StatusActif},
		{ID: "3", RaisonSociale: "Labo Nord", Contact: "Yacine", Telephone: "0661000002", Statut: StatusInactif},
	}

	ids := func(ps []Prospect) []string {
		out := []string{}
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1"}, ids(Search(list, Filter{Query: "AMEL"})))
	assert.Equal(t, []string{"2"}, ids(Search(list, Filter{Query: "@SUD"})))
	assert.Equal(t, []string{"3"}, ids(Search(list, Filter{Query: "0661"})))
	assert.Equal(t, []string{"1", "2", "3"}, ids(Search(list, Filter{Statut: "all"})))
	assert.Equal(t, []string{"2"}, ids(Search(list, Filter{Statut: "actif", Query: "a"})))

	assert.Equal(t, Stats{Total: 3, Prospects: 1, Actifs: 1, Inactifs: 1}, ComputeStats(list))
}

package queries

const prospectColumns = `
	id, raison_sociale, secteur, contact, telephone, email, wilaya, adresse, statut,
	temperature, commercial_assigne, notes, historique_actions,
	COALESCE(created_by::text, ''), created_at, updated_at
`

var ProspectQueries = struct {
	List          string
	Get           string
	GetForUpdate  string
	Create        string
	Update        string
	UpdateStatus  string
	UpdateLegacy  string
	Delete        string
	ListHistory   string
	GetHistory    string
	InsertHistory string
	DeleteHistory string
}{
	// $1 = statut ('' ou 'all' = tous)
	List: `
		SELECT` + prospectColumns + `
		FROM prospects
		WHERE ($1 = '' OR $1 = 'all' OR statut = $1)
		ORDER BY updated_at DESC
	`,

	Get: `
		SELECT` + prospectColumns + `
		FROM prospects
		WHERE id = $1
	`,

	GetForUpdate: `
		SELECT` + prospectColumns + `
		FROM prospects
		WHERE id = $1
		FOR UPDATE
	`,

	Create: `
		INSERT INTO prospects (
			raison_sociale, secteur, contact, telephone, email, wilaya, adresse,
			statut, temperature, commercial_assigne, notes, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, '')::uuid)
		RETURNING id::text, created_at, updated_at
	`,

	Update: `
		UPDATE prospects SET
			raison_sociale = $2, secteur = $3, contact = $4, telephone = $5, email = $6,
			wilaya = $7, adresse = $8, statut = $9, temperature = $10,
			commercial_assigne = $11, notes = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`,

	UpdateStatus: `
		UPDATE prospects SET statut = $2, temperature = $3, updated_at = NOW()
		WHERE id = $1
	`,

	UpdateLegacy: `
		UPDATE prospects SET historique_actions = $2, updated_at = NOW()
		WHERE id = $1
	`,

	Delete: `
		DELETE FROM prospects WHERE id = $1
	`,

	ListHistory: `
		SELECT id, prospect_id, type_action, description, application, chef_mission,
		       date_debut, date_fin, conversion, anciens_logiciels, created_by, created_at
		FROM prospect_history
		WHERE prospect_id = $1
		ORDER BY created_at DESC
	`,

	GetHistory: `
		SELECT id, prospect_id, type_action, description, application, chef_mission,
		       date_debut, date_fin, conversion, anciens_logiciels, created_by, created_at
		FROM prospect_history
		WHERE id = $1 AND prospect_id = $2
	`,

	InsertHistory: `
		INSERT INTO prospect_history (
			prospect_id, type_action, description, application, chef_mission,
			date_debut, date_fin, conversion, anciens_logiciels, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id::text
	`,

	DeleteHistory: `
		DELETE FROM prospect_history WHERE id = $1
	`,
}

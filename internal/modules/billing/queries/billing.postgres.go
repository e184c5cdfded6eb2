package queries

const installationColumns = `
		i.id::text, i.client_id::text, p.raison_sociale, COALESCE(i.application_id::text, ''),
		i.application_installee, i.type, i.montant, i.montant_abonnement, i.date_installation,
		i.statut, COALESCE(i.mission_id::text, ''), COALESCE(i.created_by::text, ''),
		i.created_at, i.updated_at
		FROM installations i
		JOIN prospects p ON p.id = i.client_id`

var InstallationQueries = struct {
	List         string
	Get          string
	GetForUpdate string
	Create       string
	Update       string
	Delete       string
}{
	// $1 = '' : toutes les installations
	List: `
		SELECT` + installationColumns + `
		WHERE $1 = '' OR i.client_id::text = $1
		ORDER BY i.date_installation DESC, i.created_at DESC
	`,

	Get: `
		SELECT` + installationColumns + `
		WHERE i.id = $1
	`,

	GetForUpdate: `
		SELECT` + installationColumns + `
		WHERE i.id = $1
		FOR UPDATE OF i
	`,

	Create: `
		INSERT INTO installations (
			client_id, application_id, application_installee, type, montant, montant_abonnement,
			date_installation, statut, mission_id, created_by
		) VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::uuid, NULLIF($10, '')::uuid)
		RETURNING id::text, created_at, updated_at
	`,

	Update: `
		UPDATE installations SET
			application_id = NULLIF($2, '')::uuid, application_installee = $3, type = $4, montant = $5,
			montant_abonnement = $6, date_installation = $7, statut = $8,
			mission_id = NULLIF($9, '')::uuid, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`,

	// abonnements et paiements suivent par ON DELETE CASCADE
	Delete: `
		DELETE FROM installations WHERE id = $1
	`,
}

const paymentColumns = `
		pa.id::text, pa.client_id::text, p.raison_sociale, pa.installation_id::text, pa.type,
		pa.montant, pa.mode_paiement, pa.date_paiement, pa.created_at
		FROM paiements pa
		JOIN prospects p ON p.id = pa.client_id`

var PaymentQueries = struct {
	List   string
	Get    string
	Create string
	Update string
	Delete string
}{
	List: `
		SELECT` + paymentColumns + `
		WHERE $1 = '' OR pa.client_id::text = $1
		ORDER BY pa.date_paiement DESC, pa.created_at DESC
	`,

	Get: `
		SELECT` + paymentColumns + `
		WHERE pa.id = $1
	`,

	Create: `
		INSERT INTO paiements (client_id, installation_id, type, montant, mode_paiement, date_paiement, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid)
		RETURNING id::text, created_at
	`,

	Update: `
		UPDATE paiements SET type = $2, montant = $3, mode_paiement = $4, date_paiement = $5
		WHERE id = $1
	`,

	Delete: `
		DELETE FROM paiements WHERE id = $1
	`,
}

var SubscriptionQueries = struct {
	List         string
	Insert       string
	UpdateStatus string
}{
	// $1 = '' : tous les abonnements
	List: `
		SELECT a.id::text, a.installation_id::text, a.date_debut, a.date_fin, a.montant, a.statut,
		       a.source, a.auto_generated, a.created_at,
		       i.client_id::text, p.raison_sociale, i.application_installee, i.type
		FROM abonnements a
		JOIN installations i ON i.id = a.installation_id
		JOIN prospects p ON p.id = i.client_id
		WHERE $1 = '' OR a.installation_id::text = $1
		ORDER BY a.date_fin, a.created_at
	`,

	Insert: `
		INSERT INTO abonnements (installation_id, date_debut, date_fin, montant, statut, source, auto_generated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, created_at
	`,

	UpdateStatus: `
		UPDATE abonnements SET statut = $2, updated_at = NOW()
		WHERE id = $1
	`,
}

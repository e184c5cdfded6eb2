package queries

const missionColumns = `
	m.id, m.titre, m.description, m.prospect_id::text, COALESCE(p.raison_sociale, ''),
	m.type_mission, m.wilaya, m.date_debut, m.date_fin_prevue, m.priorite,
	m.budget_alloue, m.budget_depense, m.avancement, m.statut,
	m.chef_mission_id::text, m.accompagnateurs_ids::text[], m.created_by::text, m.date_demarrage,
	m.cloturee_par_chef, m.date_clot_chef, m.commentaire_clot_chef,
	m.cloturee_definitive, m.date_clot_definitive, m.commentaire_clot_admin,
	COALESCE(m.validee_par::text, ''),
	m.rapport_technique, m.actions_realisees, m.logiciels_materiels,
	m.problemes_resolutions, m.commentaires_techniques, m.commentaires_financiers,
	m.created_at, m.updated_at
`

const missionFrom = `
	FROM missions m
	LEFT JOIN prospects p ON p.id = m.prospect_id
`

var MissionQueries = struct {
	List            string
	Get             string
	GetForUpdate    string
	Create          string
	Update          string
	UpdateLifecycle string
	UpdateTechnical string
	UpdateFinancial string
	Delete          string
	ClientExists    string
	ActiveUser      string
	ListAdminIDs    string
}{
	/**
	 * $1 = voir toutes les missions (admin), $2 = utilisateur (chef ou accompagnateur)
	 */
	List: `
		SELECT` + missionColumns + missionFrom + `
		WHERE $1 OR m.chef_mission_id::text = $2 OR $2 = ANY(m.accompagnateurs_ids::text[])
		ORDER BY m.date_fin_prevue, m.created_at DESC
	`,

	Get: `
		SELECT` + missionColumns + missionFrom + `
		WHERE m.id = $1
	`,

	GetForUpdate: `
		SELECT` + missionColumns + missionFrom + `
		WHERE m.id = $1
		FOR UPDATE OF m
	`,

	Create: `
		INSERT INTO missions (
			titre, description, prospect_id, type_mission, wilaya, date_debut, date_fin_prevue,
			priorite, budget_alloue, statut, chef_mission_id, accompagnateurs_ids, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::uuid[], $13)
		RETURNING id::text, created_at, updated_at
	`,

	Update: `
		UPDATE missions SET
			titre = $2, description = $3, type_mission = $4, wilaya = $5, date_debut = $6,
			date_fin_prevue = $7, priorite = $8, budget_alloue = $9, avancement = $10,
			statut = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`,

	UpdateLifecycle: `
		UPDATE missions SET
			statut = $2, avancement = $3, date_demarrage = $4,
			cloturee_par_chef = $5, date_clot_chef = $6, commentaire_clot_chef = $7,
			cloturee_definitive = $8, date_clot_definitive = $9, commentaire_clot_admin = $10,
			validee_par = NULLIF($11, '')::uuid, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`,

	UpdateTechnical: `
		UPDATE missions SET
			rapport_technique = $2, actions_realisees = $3, logiciels_materiels = $4,
			problemes_resolutions = $5, commentaires_techniques = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`,

	UpdateFinancial: `
		UPDATE missions SET commentaires_financiers = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`,

	Delete: `
		DELETE FROM missions WHERE id = $1
	`,

	ClientExists: `
		SELECT EXISTS(SELECT 1 FROM prospects WHERE id = $1)
	`,

	ActiveUser: `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND statut = 'actif')
	`,

	ListAdminIDs: `
		SELECT id::text FROM users
		WHERE role IN ('admin', 'super_admin') AND statut = 'actif'
	`,
}

var ExpenseQueries = struct {
	List          string
	Get           string
	Insert        string
	Update        string
	Delete        string
	RefreshBudget string
}{
	List: `
		SELECT id::text, mission_id::text, type_depense, montant, description, justificatif_url,
		       created_by::text, created_at
		FROM mission_expenses
		WHERE mission_id = $1
		ORDER BY created_at DESC
	`,

	Get: `
		SELECT id::text, mission_id::text, type_depense, montant, description, justificatif_url,
		       created_by::text, created_at
		FROM mission_expenses
		WHERE id = $1 AND mission_id = $2
	`,

	Insert: `
		INSERT INTO mission_expenses (mission_id, type_depense, montant, description, justificatif_url, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, created_at
	`,

	Update: `
		UPDATE mission_expenses SET
			type_depense = $3, montant = $4, description = $5, justificatif_url = $6
		WHERE id = $1 AND mission_id = $2
	`,

	Delete: `
		DELETE FROM mission_expenses WHERE id = $1 AND mission_id = $2
	`,

	// budget_depense est toujours la somme des dépenses
	RefreshBudget: `
		UPDATE missions SET
			budget_depense = COALESCE((SELECT SUM(montant) FROM mission_expenses WHERE mission_id = $1), 0),
			updated_at = NOW()
		WHERE id = $1
		RETURNING budget_depense
	`,
}

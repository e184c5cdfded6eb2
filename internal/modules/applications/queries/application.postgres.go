package queries

var ApplicationQueries = struct {
	List   string
	Get    string
	Create string
	Update string
	Delete string
}{
	// $1 = inclure les applications désactivées
	List: `
		SELECT id, nom, description, prix, actif, created_at, updated_at
		FROM applications
		WHERE actif OR $1
		ORDER BY nom
	`,

	Get: `
		SELECT id, nom, description, prix, actif, created_at, updated_at
		FROM applications
		WHERE id = $1
	`,

	Create: `
		INSERT INTO applications (nom, description, prix, actif)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at, updated_at
	`,

	Update: `
		UPDATE applications
		SET nom = $2, description = $3, prix = $4, actif = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`,

	Delete: `
		DELETE FROM applications WHERE id = $1
	`,
}

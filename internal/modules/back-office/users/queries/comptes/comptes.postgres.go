package comptes

// ComptesQueries requêtes de gestion des comptes
var ComptesQueries = struct {
	CheckEmailExists string
	CreateUser       string
	ListUsers        string
	GetUser          string
	UpdateStatus     string
	ListAdminIDs     string
}{
	CheckEmailExists: `
		SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)
	`,

	CreateUser: `
		INSERT INTO users (email, nom, prenoms, telephone, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text
	`,

	/**
	 * $1 = rôle ('' = tous), $2 = statut ('' = tous), $3 = recherche ('' = aucune)
	 */
	ListUsers: `
		SELECT id, email, nom, prenoms, telephone, role, statut, last_login_at, created_at
		FROM users
		WHERE ($1 = '' OR role = $1)
		  AND ($2 = '' OR statut = $2)
		  AND ($3 = '' OR nom ILIKE '%' || $3 || '%' OR prenoms ILIKE '%' || $3 || '%' OR email ILIKE '%' || $3 || '%')
		ORDER BY nom, prenoms
	`,

	GetUser: `
		SELECT id, email, nom, prenoms, telephone, role, statut, last_login_at, created_at
		FROM users
		WHERE id = $1
	`,

	UpdateStatus: `
		UPDATE users SET statut = $2, updated_at = NOW() WHERE id = $1
	`,

	ListAdminIDs: `
		SELECT id FROM users
		WHERE role IN ('admin', 'super_admin') AND statut = 'actif'
	`,
}

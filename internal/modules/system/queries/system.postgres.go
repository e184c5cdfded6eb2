package queries

// RequiredTables tables attendues par l'application, dans l'ordre des migrations
var RequiredTables = []string{
	"users",
	"user_session",
	"wilayas",
	"applications",
	"prospects",
	"prospect_history",
	"missions",
	"mission_expenses",
	"installations",
	"paiements",
	"abonnements",
	"schema_migrations",
}

// SystemQueries regroupe les requêtes SQL du module System
var SystemQueries = struct {
	TableExists string
	CountRows   string
	Overview    string
}{
	/**
	 * Paramètres: $1 = nom de table
	 */
	TableExists: `
		SELECT to_regclass('public.' || $1) IS NOT NULL
	`,

	// CountRows gabarit : le nom de table est injecté après pgx.Identifier.Sanitize
	CountRows: `SELECT COUNT(*) FROM %s`,

	/**
	 * Volumétrie affichée par /system/info
	 */
	Overview: `
		SELECT
			(SELECT COUNT(*) FROM users WHERE statut = 'actif'),
			(SELECT COUNT(*) FROM prospects WHERE statut = 'prospect'),
			(SELECT COUNT(*) FROM prospects WHERE statut <> 'prospect'),
			(SELECT COUNT(*) FROM missions),
			(SELECT COUNT(*) FROM installations)
	`,
}

package queries

// UserQueries requêtes SQL utilisateurs et sessions
var UserQueries = struct {
	GetByEmail                string
	GetByID                   string
	TouchLastLogin            string
	UpdatePassword            string
	CreateSession             string
	GetSessionByToken         string
	TouchSession              string
	DeleteSession             string
	GetActiveSessionsByUserID string
	CleanExpiredSessions      string
}{
	/**
	 * $1 = email (minuscules)
	 */
	GetByEmail: `
		SELECT id, email, nom, prenoms, telephone, role, password_hash, statut
		FROM users
		WHERE email = $1
	`,

	GetByID: `
		SELECT id, email, nom, prenoms, telephone, role, password_hash, statut
		FROM users
		WHERE id = $1
	`,

	TouchLastLogin: `
		UPDATE users SET last_login_at = NOW() WHERE id = $1
	`,

	UpdatePassword: `
		UPDATE users SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND statut = 'actif'
	`,

	/**
	 * $1 = token, $2 = user_id, $3 = ip, $4 = user_agent, $5 = expires_at
	 */
	CreateSession: `
		INSERT INTO user_session (token, user_id, ip_address, user_agent, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO NOTHING
	`,

	// la session PG porte le rôle courant de l'utilisateur
	GetSessionByToken: `
		SELECT s.user_id, u.email, u.nom, u.role, s.ip_address, s.user_agent,
		       s.created_at, s.last_activity, s.expires_at
		FROM user_session s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1
		  AND s.expires_at > NOW()
		  AND u.statut = 'actif'
	`,

	TouchSession: `
		UPDATE user_session
		SET last_activity = NOW(), updated_at = NOW()
		WHERE token = $1
	`,

	DeleteSession: `
		DELETE FROM user_session WHERE token = $1
	`,

	GetActiveSessionsByUserID: `
		SELECT token FROM user_session
		WHERE user_id = $1 AND expires_at > NOW()
	`,

	CleanExpiredSessions: `
		DELETE FROM user_session WHERE expires_at <= NOW()
	`,
}

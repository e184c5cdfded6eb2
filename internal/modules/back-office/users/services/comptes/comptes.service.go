package comptes

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"crm-pharma-core/internal/app/config"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	dto "crm-pharma-core/internal/modules/back-office/users/dto/comptes"
	queries "crm-pharma-core/internal/modules/back-office/users/queries/comptes"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"
	"crm-pharma-core/internal/shared/utils"

	"github.com/jackc/pgx/v5"
)

// SessionRevoker révocation des sessions à la désactivation
type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID string) error
}

type ComptesService struct {
	db       postgres.Querier
	sessions SessionRevoker
	pepper   string
}

func NewComptesService(db *postgres.Client, sessions SessionRevoker, cfg *config.Config) *ComptesService {
	return &ComptesService{db: db, sessions: sessions, pepper: cfg.Session.SecretPepper}
}

func (s *ComptesService) CreateUser(ctx context.Context, actor permissions.Actor, req dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	if !permissions.CanManageUsers(actor) {
		return nil, response.NewForbidden("CANNOT_MANAGE_USERS", "Seul un Administrateur peut créer des utilisateurs")
	}
	// seul un super admin crée un super admin
	if permissions.Role(req.Role) == permissions.RoleSuperAdmin && actor.Role != permissions.RoleSuperAdmin {
		return nil, response.NewForbidden("CANNOT_CREATE_SUPER_ADMIN", "Seul un Super Administrateur peut créer ce rôle")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var exists bool
	if err := s.db.QueryRow(ctx, queries.ComptesQueries.CheckEmailExists, email).Scan(&exists); err != nil {
		return nil, fmt.Errorf("vérification email: %w", err)
	}
	if exists {
		return nil, &response.ServiceError{
			Type:    response.TypeConflict,
			Code:    "DUPLICATE_EMAIL",
			Message: "Cet email est déjà utilisé",
			Details: map[string]interface{}{"champs": map[string]string{"email": "Cet email existe déjà"}},
		}
	}

	var generated *string
	password := ""
	if req.Password != nil {
		password = *req.Password
	} else {
		tmp, err := temporaryPassword()
		if err != nil {
			return nil, err
		}
		password = tmp
		generated = &tmp
	}

	hash, err := utils.HashPassword(password, s.pepper)
	if err != nil {
		return nil, response.NewValidation(map[string]string{"password": err.Error()})
	}

	var id string
	err = s.db.QueryRow(ctx, queries.ComptesQueries.CreateUser,
		email, strings.TrimSpace(req.Nom), strings.TrimSpace(req.Prenoms),
		strings.TrimSpace(req.Telephone), req.Role, hash,
	).Scan(&id)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, response.NewConflict("DUPLICATE_EMAIL", errors.New("cet email est déjà utilisé"))
		}
		return nil, fmt.Errorf("création utilisateur: %w", err)
	}

	return &dto.CreateUserResponse{
		ID:                 id,
		Email:              email,
		PasswordTemporaire: generated,
		Message:            "Utilisateur créé avec succès",
	}, nil
}

func (s *ComptesService) ListUsers(ctx context.Context, filters dto.ListUsersFilters) ([]dto.UserSummary, error) {
	rows, err := s.db.Query(ctx, queries.ComptesQueries.ListUsers,
		filters.Role, filters.Statut, strings.TrimSpace(filters.Search))
	if err != nil {
		return nil, fmt.Errorf("liste utilisateurs: %w", err)
	}
	defer rows.Close()

	users := []dto.UserSummary{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *ComptesService) GetUser(ctx context.Context, id string) (*dto.UserSummary, error) {
	u, err := scanUser(s.db.QueryRow(ctx, queries.ComptesQueries.GetUser, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, response.NewNotFound("USER_NOT_FOUND", "Utilisateur introuvable")
		}
		return nil, err
	}
	return u, nil
}

// UpdateStatus désactivation : les sessions ouvertes sont révoquées
func (s *ComptesService) UpdateStatus(ctx context.Context, actor permissions.Actor, id string, req dto.UpdateStatusRequest) error {
	if !permissions.CanManageUsers(actor) {
		return response.NewForbidden("CANNOT_MANAGE_USERS", "Seul un Administrateur peut modifier un compte")
	}
	if id == actor.UserID && req.Statut == "inactif" {
		return response.NewInvalid("CANNOT_DEACTIVATE_SELF", errors.New("impossible de désactiver son propre compte"))
	}

	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	if err := s.db.Exec(ctx, queries.ComptesQueries.UpdateStatus, id, req.Statut); err != nil {
		return fmt.Errorf("mise à jour statut: %w", err)
	}

	if req.Statut == "inactif" && s.sessions != nil {
		return s.sessions.RevokeUserSessions(ctx, id)
	}
	return nil
}

// AdminIDs destinataires des alertes mission
func (s *ComptesService) AdminIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, queries.ComptesQueries.ListAdminIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanUser(row pgx.Row) (*dto.UserSummary, error) {
	var u dto.UserSummary
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Nom, &u.Prenoms, &u.Telephone, &role, &u.Statut, &u.LastLoginAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = permissions.Role(role)
	u.RoleLabel = u.Role.Label()
	return &u, nil
}

const passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz23456789"

func temporaryPassword() (string, error) {
	b := make([]byte, 12)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("génération mot de passe: %w", err)
		}
		b[i] = passwordAlphabet[n.Int64()]
	}
	return string(b), nil
}

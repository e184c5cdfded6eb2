package comptes

import (
	"time"

	"crm-pharma-core/internal/shared/permissions"
)

type CreateUserRequest struct {
	Email     string  `json:"email" validate:"required,email,max=150"`
	Nom       string  `json:"nom" validate:"required,min=2,max=100"`
	Prenoms   string  `json:"prenoms" validate:"max=100"`
	Telephone string  `json:"telephone" validate:"max=20"`
	Role      string  `json:"role" validate:"required,oneof=super_admin admin chef_mission technicien commercial comptabilite client"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

type CreateUserResponse struct {
	ID                 string  `json:"id"`
	Email              string  `json:"email"`
	PasswordTemporaire *string `json:"password_temporaire,omitempty"`
	Message            string  `json:"message"`
}

type UpdateStatusRequest struct {
	Statut string `json:"statut" validate:"required,oneof=actif inactif"`
}

// ListUsersFilters filtres de GET /users
type ListUsersFilters struct {
	Role   string `form:"role"`
	Statut string `form:"statut"`
	Search string `form:"q"`
}

type UserSummary struct {
	ID          string           `json:"id"`
	Email       string           `json:"email"`
	Nom         string           `json:"nom"`
	Prenoms     string           `json:"prenoms"`
	Telephone   string           `json:"telephone"`
	Role        permissions.Role `json:"role"`
	RoleLabel   string           `json:"role_label"`
	Statut      string           `json:"statut"`
	LastLoginAt *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

package dto

import (
	"time"

	"crm-pharma-core/internal/shared/permissions"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt string   `json:"expires_at"`
	User      UserData `json:"user"`
}

type UserData struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	Nom       string           `json:"nom"`
	Prenoms   string           `json:"prenoms"`
	Telephone string           `json:"telephone"`
	Role      permissions.Role `json:"role"`
	RoleLabel string           `json:"role_label"`
}

type MeResponse struct {
	User    UserData    `json:"user"`
	Session SessionInfo `json:"session"`
}

type SessionInfo struct {
	ExpiresAt    string `json:"expires_at"`
	LastActivity string `json:"last_activity"`
}

// SessionData contenu d'une session (hash Redis ou ligne user_session)
type SessionData struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Nom          string `json:"nom"`
	Role         string `json:"role"`
	IPAddress    string `json:"ip_address"`
	UserAgent    string `json:"user_agent"`
	CreatedAt    string `json:"created_at"`
	LastActivity string `json:"last_activity"`
	ExpiresAt    string `json:"expires_at"`
}

// ToMap pour HSET
func (s *SessionData) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"user_id":       s.UserID,
		"email":         s.Email,
		"nom":           s.Nom,
		"role":          s.Role,
		"ip_address":    s.IPAddress,
		"user_agent":    s.UserAgent,
		"created_at":    s.CreatedAt,
		"last_activity": s.LastActivity,
		"expires_at":    s.ExpiresAt,
	}
}

func SessionFromMap(data map[string]string) *SessionData {
	return &SessionData{
		UserID:       data["user_id"],
		Email:        data["email"],
		Nom:          data["nom"],
		Role:         data["role"],
		IPAddress:    data["ip_address"],
		UserAgent:    data["user_agent"],
		CreatedAt:    data["created_at"],
		LastActivity: data["last_activity"],
		ExpiresAt:    data["expires_at"],
	}
}

// Expired vrai si expires_at est dépassé ou illisible
func (s *SessionData) Expired(now time.Time) bool {
	expiresAt, err := time.Parse(time.RFC3339, s.ExpiresAt)
	return err != nil || !now.Before(expiresAt)
}

// Actor acteur porté par les vérifications de permissions
func (s *SessionData) Actor() permissions.Actor {
	return permissions.Actor{
		UserID: s.UserID,
		Email:  s.Email,
		Nom:    s.Nom,
		Role:   permissions.Role(s.Role),
	}
}

// AuthError erreur d'authentification
type AuthError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *AuthError) Error() string {
	return e.Message
}

func NewAuthError(code, message string, details map[string]interface{}) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Codes d'erreur d'authentification
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenRevoked       = "TOKEN_REVOKED"
	CodeUserInactive       = "USER_INACTIVE"
)

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,min=8"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=100"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

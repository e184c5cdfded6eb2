package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"crm-pharma-core/internal/app/config"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	redisInfra "crm-pharma-core/internal/infrastructure/database/redis"
	"crm-pharma-core/internal/modules/auth/dto"
	"crm-pharma-core/internal/modules/auth/queries"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AuthService struct {
	db             *postgres.Client
	redisClient    *redisInfra.Client
	keys           *redisInfra.RedisKeyGenerator
	sessionService *SessionService
	pepper         string
	maxAttempts    int
	window         time.Duration
	log            *zap.Logger
}

func NewAuthService(
	db *postgres.Client,
	redisClient *redisInfra.Client,
	keys *redisInfra.RedisKeyGenerator,
	sessionService *SessionService,
	cfg *config.Config,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		db:             db,
		redisClient:    redisClient,
		keys:           keys,
		sessionService: sessionService,
		pepper:         cfg.Session.SecretPepper,
		maxAttempts:    cfg.Session.MaxLoginAttempts,
		window:         cfg.Session.LoginWindow,
		log:            log.Named("auth"),
	}
}

type userRow struct {
	ID           string
	Email        string
	Nom          string
	Prenoms      string
	Telephone    string
	Role         string
	PasswordHash string
	Statut       string
}

func (u *userRow) data() dto.UserData {
	role := permissions.Role(u.Role)
	return dto.UserData{
		ID:        u.ID,
		Email:     u.Email,
		Nom:       u.Nom,
		Prenoms:   u.Prenoms,
		Telephone: u.Telephone,
		Role:      role,
		RoleLabel: role.Label(),
	}
}

func (s *AuthService) fetchUser(ctx context.Context, query, arg string) (*userRow, error) {
	var u userRow
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Nom, &u.Prenoms, &u.Telephone, &u.Role, &u.PasswordHash, &u.Statut,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authentifie par email et mot de passe puis ouvre une session
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.checkRateLimit(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.fetchUser(ctx, queries.UserQueries.GetByEmail, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.incrementFailedAttempt(ctx, email)
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("récupération utilisateur: %w", err)
	}

	if !utils.VerifyPassword(req.Password, s.pepper, user.PasswordHash) {
		s.incrementFailedAttempt(ctx, email)
		return nil, invalidCredentials()
	}

	if user.Statut != "actif" {
		return nil, dto.NewAuthError(dto.CodeUserInactive, "Compte désactivé", nil)
	}

	token, err := utils.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(s.sessionService.TTL())
	session := &dto.SessionData{
		UserID:       user.ID,
		Email:        user.Email,
		Nom:          user.Nom,
		Role:         user.Role,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		CreatedAt:    now.Format(time.RFC3339),
		LastActivity: now.Format(time.RFC3339),
		ExpiresAt:    expiresAt.Format(time.RFC3339),
	}

	if err := s.sessionService.CreateSession(ctx, token, session); err != nil {
		return nil, err
	}

	s.clearRateLimit(ctx, email)
	if err := s.db.Exec(ctx, queries.UserQueries.TouchLastLogin, user.ID); err != nil {
		s.log.Warn("last_login_at non mis à jour", zap.Error(err))
	}

	s.log.Info("connexion", zap.String("user_id", user.ID), zap.String("role", user.Role), zap.String("ip", ipAddress))

	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user.data(),
	}, nil
}

// Logout toujours idempotent
func (s *AuthService) Logout(ctx context.Context, token string) error {
	var userID string
	if session, err := s.sessionService.ValidateSession(ctx, token); err == nil {
		userID = session.UserID
	}
	if err := s.sessionService.DeleteSession(ctx, token, userID); err != nil {
		s.log.Warn("suppression session PostgreSQL échouée", zap.Error(err))
	}
	return nil
}

func (s *AuthService) ValidateSession(ctx context.Context, token string) (*dto.SessionData, error) {
	return s.sessionService.ValidateSession(ctx, token)
}

// Me profil courant, rôle relu en base
func (s *AuthService) Me(ctx context.Context, session *dto.SessionData) (*dto.MeResponse, error) {
	user, err := s.fetchUser(ctx, queries.UserQueries.GetByID, session.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dto.NewAuthError(dto.CodeInvalidToken, "Utilisateur introuvable", nil)
		}
		return nil, err
	}

	return &dto.MeResponse{
		User: user.data(),
		Session: dto.SessionInfo{
			ExpiresAt:    session.ExpiresAt,
			LastActivity: session.LastActivity,
		},
	}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error {
	user, err := s.fetchUser(ctx, queries.UserQueries.GetByID, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(req.CurrentPassword, s.pepper, user.PasswordHash) {
		return dto.NewAuthError("INVALID_CURRENT_PASSWORD", "Mot de passe actuel incorrect", nil)
	}

	hash, err := utils.HashPassword(req.NewPassword, s.pepper)
	if err != nil {
		return dto.NewAuthError("WEAK_PASSWORD", err.Error(), nil)
	}
	return s.db.Exec(ctx, queries.UserQueries.UpdatePassword, userID, hash)
}

func invalidCredentials() error {
	return dto.NewAuthError(dto.CodeInvalidCredentials, "Email ou mot de passe incorrect", nil)
}

func (s *AuthService) checkRateLimit(ctx context.Context, email string) error {
	if s.maxAttempts <= 0 {
		return nil
	}
	val, err := s.redisClient.Get(ctx, s.keys.MustKey(redisInfra.PatternLoginAttempts, email))
	if err != nil {
		return nil
	}
	attempts, _ := strconv.Atoi(val)
	if attempts >= s.maxAttempts {
		return dto.NewAuthError(dto.CodeRateLimited, "Trop de tentatives de connexion, réessayez plus tard",
			map[string]interface{}{"retry_after_seconds": int(s.window.Seconds())})
	}
	return nil
}

func (s *AuthService) incrementFailedAttempt(ctx context.Context, email string) {
	if _, err := s.redisClient.Incr(ctx, s.keys.MustKey(redisInfra.PatternLoginAttempts, email), s.window); err != nil {
		s.log.Debug("compteur de tentatives indisponible", zap.Error(err))
	}
}

func (s *AuthService) clearRateLimit(ctx context.Context, email string) {
	_ = s.redisClient.Del(ctx, s.keys.MustKey(redisInfra.PatternLoginAttempts, email))
}

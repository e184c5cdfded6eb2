package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-pharma-core/internal/app/config"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	redisInfra "crm-pharma-core/internal/infrastructure/database/redis"
	"crm-pharma-core/internal/modules/auth/dto"
	"crm-pharma-core/internal/modules/auth/queries"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SessionService sessions Redis d'abord, PostgreSQL en secours
type SessionService struct {
	db          postgres.Querier
	redisClient *redisInfra.Client
	keys        *redisInfra.RedisKeyGenerator
	ttl         time.Duration
	log         *zap.Logger
}

func NewSessionService(db postgres.Querier, redisClient *redisInfra.Client, keys *redisInfra.RedisKeyGenerator, cfg *config.Config, log *zap.Logger) *SessionService {
	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &SessionService{
		db:          db,
		redisClient: redisClient,
		keys:        keys,
		ttl:         ttl,
		log:         log.Named("session"),
	}
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// CreateSession écrit toujours en PostgreSQL ; Redis est un cache best-effort
func (s *SessionService) CreateSession(ctx context.Context, token string, session *dto.SessionData) error {
	if err := s.createSessionPostgres(ctx, token, session); err != nil {
		return fmt.Errorf("création session: %w", err)
	}
	if err := s.createSessionRedis(ctx, token, session); err != nil {
		s.log.Warn("session non mise en cache Redis", zap.Error(err))
	}
	return nil
}

// ValidateSession récupère une session valide
func (s *SessionService) ValidateSession(ctx context.Context, token string) (*dto.SessionData, error) {
	if s.isTokenBlacklisted(ctx, token) {
		return nil, dto.NewAuthError(dto.CodeTokenRevoked, "Token révoqué", nil)
	}

	now := time.Now()
	session, err := s.getSessionRedis(ctx, token)
	if err == nil && !session.Expired(now) {
		s.touch(ctx, token)
		return session, nil
	}

	session, err = s.getSessionPostgres(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dto.NewAuthError(dto.CodeInvalidToken, "Session invalide ou expirée", nil)
		}
		return nil, err
	}

	if err := s.createSessionRedis(ctx, token, session); err != nil {
		s.log.Debug("resynchronisation Redis impossible", zap.Error(err))
	}
	return session, nil
}

// DeleteSession idempotent : un token inconnu ou déjà révoqué n'est pas une erreur
func (s *SessionService) DeleteSession(ctx context.Context, token, userID string) error {
	pipe := s.redisClient.Client().Pipeline()
	blacklistKey := s.keys.MustKey(redisInfra.PatternBlacklist, token)
	pipe.Set(ctx, blacklistKey, "revoked_at:"+time.Now().Format(time.RFC3339), s.ttl)
	pipe.Del(ctx, s.keys.MustKey(redisInfra.PatternSession, token))
	if userID != "" {
		pipe.SRem(ctx, s.keys.MustKey(redisInfra.PatternUserSessions, userID), token)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("révocation Redis incomplète", zap.Error(err))
	}

	return s.db.Exec(ctx, queries.UserQueries.DeleteSession, token)
}

// RevokeUserSessions utilisé à la désactivation d'un compte
func (s *SessionService) RevokeUserSessions(ctx context.Context, userID string) error {
	tokens, err := s.GetActiveUserSessions(ctx, userID)
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if err := s.DeleteSession(ctx, token, userID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SessionService) GetActiveUserSessions(ctx context.Context, userID string) ([]string, error) {
	tokens, err := s.redisClient.Client().SMembers(ctx, s.keys.MustKey(redisInfra.PatternUserSessions, userID)).Result()
	if err == nil && len(tokens) > 0 {
		return tokens, nil
	}

	rows, err := s.db.Query(ctx, queries.UserQueries.GetActiveSessionsByUserID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		sessions = append(sessions, token)
	}
	return sessions, rows.Err()
}

func (s *SessionService) CleanExpiredSessions(ctx context.Context) error {
	return s.db.Exec(ctx, queries.UserQueries.CleanExpiredSessions)
}

// RunCleanup purge les sessions expirées toutes les every jusqu'à l'annulation de ctx
func (s *SessionService) RunCleanup(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.CleanExpiredSessions(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn("purge des sessions expirées échouée", zap.Error(err))
			}
		}
	}
}

func (s *SessionService) createSessionRedis(ctx context.Context, token string, session *dto.SessionData) error {
	pipe := s.redisClient.Client().Pipeline()

	sessionKey := s.keys.MustKey(redisInfra.PatternSession, token)
	pipe.HSet(ctx, sessionKey, session.ToMap())
	pipe.Expire(ctx, sessionKey, s.ttl)

	userSessionsKey := s.keys.MustKey(redisInfra.PatternUserSessions, session.UserID)
	pipe.SAdd(ctx, userSessionsKey, token)
	pipe.Expire(ctx, userSessionsKey, s.ttl)

	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionService) getSessionRedis(ctx context.Context, token string) (*dto.SessionData, error) {
	data, err := s.redisClient.HGetAll(ctx, s.keys.MustKey(redisInfra.PatternSession, token))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("session absente du cache")
	}
	return dto.SessionFromMap(data), nil
}

func (s *SessionService) createSessionPostgres(ctx context.Context, token string, session *dto.SessionData) error {
	expiresAt, err := time.Parse(time.RFC3339, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("expires_at invalide: %w", err)
	}
	return s.db.Exec(ctx, queries.UserQueries.CreateSession,
		token, session.UserID, session.IPAddress, session.UserAgent, expiresAt)
}

func (s *SessionService) getSessionPostgres(ctx context.Context, token string) (*dto.SessionData, error) {
	var session dto.SessionData
	var createdAt, lastActivity, expiresAt time.Time

	err := s.db.QueryRow(ctx, queries.UserQueries.GetSessionByToken, token).Scan(
		&session.UserID, &session.Email, &session.Nom, &session.Role,
		&session.IPAddress, &session.UserAgent,
		&createdAt, &lastActivity, &expiresAt,
	)
	if err != nil {
		return nil, err
	}

	session.CreatedAt = createdAt.Format(time.RFC3339)
	session.LastActivity = lastActivity.Format(time.RFC3339)
	session.ExpiresAt = expiresAt.Format(time.RFC3339)
	return &session, nil
}

func (s *SessionService) touch(ctx context.Context, token string) {
	now := time.Now().Format(time.RFC3339)
	if err := s.redisClient.HSet(ctx, s.keys.MustKey(redisInfra.PatternSession, token), "last_activity", now); err != nil {
		s.log.Debug("last_activity Redis non mis à jour", zap.Error(err))
	}
	if err := s.db.Exec(ctx, queries.UserQueries.TouchSession, token); err != nil {
		s.log.Debug("last_activity PostgreSQL non mis à jour", zap.Error(err))
	}
}

func (s *SessionService) isTokenBlacklisted(ctx context.Context, token string) bool {
	exists, err := s.redisClient.Exists(ctx, s.keys.MustKey(redisInfra.PatternBlacklist, token))
	return err == nil && exists
}

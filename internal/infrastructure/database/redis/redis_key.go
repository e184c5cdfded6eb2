package redis

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const keyPrefix = "crm_pharma_"

// RedisKeyGenerator clés Redis du CRM et leurs TTL
type RedisKeyGenerator struct {
	mu        sync.RWMutex
	overrides map[string]int
}

func NewRedisKeyGenerator() *RedisKeyGenerator {
	return &RedisKeyGenerator{overrides: map[string]int{}}
}

// OverrideTTL remplace le TTL d'un pattern (configuration); ttl <= 0 ignoré
func (rkg *RedisKeyGenerator) OverrideTTL(patternName string, ttl time.Duration) error {
	if _, exists := RedisKeyPatterns[patternName]; !exists {
		return fmt.Errorf("pattern Redis non trouvé: %s", patternName)
	}
	if ttl <= 0 {
		return nil
	}
	rkg.mu.Lock()
	rkg.overrides[patternName] = int(ttl / time.Second)
	rkg.mu.Unlock()
	return nil
}

// RedisKeyPattern pattern : crm_pharma_{domain}_{context}:{identifier}
type RedisKeyPattern struct {
	Domain  string
	Context string
	TTL     int // secondes, 0 = pas d'expiration
}

// Noms de patterns utilisés par les modules
const (
	PatternSession         = "auth_session"
	PatternUserSessions    = "auth_user_sessions"
	PatternBlacklist       = "auth_blacklist"
	PatternLoginAttempts   = "auth_login_attempts"
	PatternDashboard       = "cache_dashboard"
	PatternMigrationBanner = "preference_migration_banner"
)

var RedisKeyPatterns = map[string]RedisKeyPattern{
	PatternSession:         {Domain: "auth", Context: "session", TTL: 8 * 3600},
	PatternUserSessions:    {Domain: "auth", Context: "user_sessions", TTL: 8 * 3600},
	PatternBlacklist:       {Domain: "auth", Context: "blacklist", TTL: 8 * 3600},
	PatternLoginAttempts:   {Domain: "auth", Context: "login_attempts", TTL: 900},
	PatternDashboard:       {Domain: "cache", Context: "dashboard", TTL: 60},
	PatternMigrationBanner: {Domain: "preference", Context: "migration_banner", TTL: 0},
}

// GenerateKey construit crm_pharma_{domain}_{context}[:{id1_id2}]
func (rkg *RedisKeyGenerator) GenerateKey(patternName string, identifier ...string) (string, error) {
	pattern, exists := RedisKeyPatterns[patternName]
	if !exists {
		return "", fmt.Errorf("pattern Redis non trouvé: %s", patternName)
	}

	prefix := fmt.Sprintf("%s%s_%s", keyPrefix, pattern.Domain, pattern.Context)
	if len(identifier) == 0 {
		return prefix, nil
	}

	return fmt.Sprintf("%s:%s", prefix, strings.Join(identifier, "_")), nil
}

// MustKey variante sans erreur pour les patterns déclarés ci-dessus
func (rkg *RedisKeyGenerator) MustKey(patternName string, identifier ...string) string {
	key, err := rkg.GenerateKey(patternName, identifier...)
	if err != nil {
		panic(err)
	}
	return key
}

func (rkg *RedisKeyGenerator) GetTTL(patternName string) (int, error) {
	pattern, exists := RedisKeyPatterns[patternName]
	if !exists {
		return 0, fmt.Errorf("pattern Redis non trouvé: %s", patternName)
	}
	rkg.mu.RLock()
	defer rkg.mu.RUnlock()
	if ttl, ok := rkg.overrides[patternName]; ok {
		return ttl, nil
	}
	return pattern.TTL, nil
}

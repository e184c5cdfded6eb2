package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"crm-pharma-core/internal/domain/analysis"
	"crm-pharma-core/internal/infrastructure/database/redis"
	"crm-pharma-core/internal/modules/analysis/dto"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryCache struct {
	values map[string]string
	err    error
}

func (m *memoryCache) key(pattern string, ids []string) string {
	k := pattern
	for _, id := range ids {
		k += ":" + id
	}
	return k
}

func (m *memoryCache) GetWithPattern(_ context.Context, pattern string, ids ...string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.values[m.key(pattern, ids)]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *memoryCache) SetWithPattern(_ context.Context, pattern string, value interface{}, ids ...string) error {
	m.values[m.key(pattern, ids)] = string(value.([]byte))
	return nil
}

func newService(cache DashboardCache) *AnalysisService {
	return &AnalysisService{cache: cache, log: zap.NewNop(), now: time.Now}
}

func TestDashboard_CacheHitPerScope(t *testing.T) {
	cache := &memoryCache{values: map[string]string{}}
	svc := newService(cache)
	ctx := context.Background()

	admin := &dto.Dashboard{Missions: analysis.Performance{MissionCount: 12}}
	svc.store(ctx, "admin", admin)

	got, err := svc.Dashboard(ctx, permissions.Actor{UserID: "u-adm", Role: permissions.RoleSuperAdmin})
	require.NoError(t, err)
	assert.True(t, got.Cache)
	assert.Equal(t, 12, got.Missions.MissionCount)

	raw, _ := json.Marshal(&dto.Dashboard{Missions: analysis.Performance{MissionCount: 2}})
	cache.values[redis.PatternDashboard+":u-tech"] = string(raw)

	got, err = svc.Dashboard(ctx, permissions.Actor{UserID: "u-tech", Role: permissions.RoleTechnicien})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Missions.MissionCount)
}

func TestCached_MissOrCorrupt(t *testing.T) {
	ctx := context.Background()

	_, ok := newService(nil).cached(ctx, "admin")
	assert.False(t, ok)

	cache := &memoryCache{values: map[string]string{redis.PatternDashboard + ":admin": "{pas du json"}}
	_, ok = newService(cache).cached(ctx, "admin")
	assert.False(t, ok)

	_, ok = newService(&memoryCache{err: errors.New("connexion refusée")}).cached(ctx, "admin")
	assert.False(t, ok)
}

func TestProspectSummary_Forbidden(t *testing.T) {
	svc := newService(nil)

	_, err := svc.ProspectSummary(context.Background(), permissions.Actor{UserID: "u-cpt", Role: permissions.RoleComptabilite}, "p-1")
	var svcErr *response.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "CANNOT_MANAGE_PROSPECTS", svcErr.Code)
}

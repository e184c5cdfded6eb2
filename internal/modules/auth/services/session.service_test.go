package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"crm-pharma-core/internal/app/config"
	"crm-pharma-core/internal/infrastructure/database/postgres/pgtest"
	"crm-pharma-core/internal/modules/auth/queries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionService_DefaultTTL(t *testing.T) {
	svc := NewSessionService(pgtest.New(), nil, nil, &config.Config{}, zap.NewNop())
	assert.Equal(t, 8*time.Hour, svc.TTL())
}

func TestCleanExpiredSessions(t *testing.T) {
	db := pgtest.New().Returns(queries.UserQueries.CleanExpiredSessions, pgtest.Result{})
	svc := NewSessionService(db, nil, nil, &config.Config{}, zap.NewNop())

	require.NoError(t, svc.CleanExpiredSessions(context.Background()))
	assert.Len(t, db.CallsTo(queries.UserQueries.CleanExpiredSessions), 1)
}

func TestRunCleanup_RepeatsUntilCancelled(t *testing.T) {
	var runs atomic.Int32
	db := pgtest.New().On(queries.UserQueries.CleanExpiredSessions, func([]interface{}) pgtest.Result {
		// un échec ne doit pas arrêter la boucle
		if runs.Add(1) == 1 {
			return pgtest.Fail(errors.New("connexion perdue"))
		}
		return pgtest.Result{}
	})
	svc := NewSessionService(db, nil, nil, &config.Config{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.RunCleanup(ctx, 5*time.Millisecond)
	}()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup ne s'arrête pas après annulation")
	}
}

func TestRunCleanup_DisabledWithoutInterval(t *testing.T) {
	db := pgtest.New()
	svc := NewSessionService(db, nil, nil, &config.Config{}, zap.NewNop())

	svc.RunCleanup(context.Background(), 0)
	assert.Empty(t, db.Calls())
}

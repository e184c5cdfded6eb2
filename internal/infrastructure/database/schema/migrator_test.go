package schema

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	migrations, err := Load(migrationFiles)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, "0001", migrations[0].Version)
	assert.Equal(t, "users_reference", migrations[0].Name)
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
	for _, m := range migrations {
		assert.Contains(t, m.SQL, "CREATE TABLE")
	}
}

func TestLoad_SortsAndRejectsBadNames(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_b.sql": {Data: []byte("SELECT 2")},
		"migrations/0001_a.sql": {Data: []byte("SELECT 1")},
	}
	migrations, err := Load(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001", "0002"}, []string{migrations[0].Version, migrations[1].Version})

	_, err = Load(fstest.MapFS{"migrations/init.sql": {Data: []byte("SELECT 1")}})
	assert.ErrorIs(t, err, ErrInvalidVersion)

	_, err = Load(fstest.MapFS{
		"migrations/0001_a.sql":   {Data: []byte("SELECT 1")},
		"migrations/0001_bis.sql": {Data: []byte("SELECT 1")},
	})
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestBuildReport(t *testing.T) {
	migrations := []Migration{{Version: "0001", Name: "a"}, {Version: "0002", Name: "b"}, {Version: "0003", Name: "c"}}
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	report := BuildReport(migrations, map[string]time.Time{"0001": at, "0002": at})
	assert.Equal(t, "0002", report.CurrentVersion)
	assert.Equal(t, "0003", report.LatestVersion)
	assert.Equal(t, 1, report.Pending)
	assert.False(t, report.UpToDate)
	assert.True(t, report.Migrations[0].Applied)
	assert.Nil(t, report.Migrations[2].AppliedAt)

	report = BuildReport(migrations, map[string]time.Time{"0001": at, "0002": at, "0003": at})
	assert.True(t, report.UpToDate)

	report = BuildReport(migrations, map[string]time.Time{})
	assert.Empty(t, report.CurrentVersion)
	assert.Equal(t, 3, report.Pending)
}

func TestMigrationError(t *testing.T) {
	cause := errors.New("syntax error")
	err := error(&MigrationError{Version: "0004", Name: "billing", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "0004")

	var me *MigrationError
	assert.True(t, errors.As(err, &me))
}

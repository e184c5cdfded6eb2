package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	undefinedTable := fmt.Errorf("requête missions: %w", &pgconn.PgError{Code: "42P01"})
	undefinedColumn := &pgconn.PgError{Code: "42703"}
	unique := &pgconn.PgError{Code: "23505"}
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsUndefinedTable(undefinedTable))
	assert.True(t, IsUndefinedColumn(undefinedColumn))
	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsForeignKeyViolation(fk))

	assert.False(t, IsUndefinedTable(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestDSN(t *testing.T) {
	cfg := &DatabaseConfig{Host: "localhost", Port: 5432, Database: "crm_pharma", Username: "postgres", Password: "pw", SSLMode: "disable"}
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/crm_pharma?sslmode=disable", cfg.DSN())
}

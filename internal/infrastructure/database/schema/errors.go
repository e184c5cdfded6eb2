package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationRequired la base est en retard sur le code
	ErrMigrationRequired = errors.New("migration du schéma requise")
	ErrInvalidVersion    = errors.New("version de migration invalide")
)

// MigrationError échec d'application d'une migration précise
type MigrationError struct {
	Version string
	Name    string
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s (%s) échouée: %v", e.Version, e.Name, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

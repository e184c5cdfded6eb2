package seeds

import "fmt"

// SeedingError erreur typée du seeding initial
type SeedingError struct {
	Message string                 `json:"message"`
	Type    string                 `json:"type"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *SeedingError) Error() string {
	return e.Message
}

func NewSeedingError(message, errorType string, details map[string]interface{}) *SeedingError {
	return &SeedingError{
		Message: message,
		Type:    errorType,
		Details: details,
	}
}

var (
	ErrValidation = func(message string) error {
		return NewSeedingError(message, "validation_error", nil)
	}

	ErrCatalogLoad = func(file string, err error) error {
		return NewSeedingError(
			fmt.Sprintf("impossible de charger le catalogue %s: %v", file, err),
			"catalog_load_error",
			map[string]interface{}{"file": file, "error": err.Error()},
		)
	}

	ErrDatabaseOperation = func(operation string, err error) error {
		return NewSeedingError(
			fmt.Sprintf("erreur base de données lors de %s: %v", operation, err),
			"database_error",
			map[string]interface{}{"operation": operation, "error": err.Error()},
		)
	}
)

package response

import "fmt"

// Types d'erreur métier
const (
	TypeValidation = "validation"
	TypeNotFound   = "not_found"
	TypeConflict   = "conflict"
	TypeForbidden  = "forbidden"
	TypeSchema     = "schema"
	TypeInternal   = "internal"
)

// ServiceError erreur métier commune à tous les services
type ServiceError struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

func NewValidation(champs map[string]string) *ServiceError {
	return &ServiceError{
		Type:    TypeValidation,
		Code:    "VALIDATION_ERROR",
		Message: "Erreur de validation",
		Details: map[string]interface{}{"champs": champs},
	}
}

// NewInvalid erreur de validation sans champ précis
func NewInvalid(code string, err error) *ServiceError {
	return &ServiceError{Type: TypeValidation, Code: code, Message: err.Error(), Err: err}
}

func NewNotFound(code, message string) *ServiceError {
	return &ServiceError{Type: TypeNotFound, Code: code, Message: message}
}

func NewConflict(code string, err error) *ServiceError {
	return &ServiceError{Type: TypeConflict, Code: code, Message: err.Error(), Err: err}
}

func NewForbidden(code, message string) *ServiceError {
	return &ServiceError{Type: TypeForbidden, Code: code, Message: message}
}

func NewInternal(message string, err error) *ServiceError {
	return &ServiceError{Type: TypeInternal, Code: "INTERNAL_ERROR", Message: message, Err: err}
}

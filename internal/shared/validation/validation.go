package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError erreurs par champ, renvoyées sous details
type ValidationError struct {
	Code   string            `json:"code"`
	Champs map[string]string `json:"champs"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Champs))
	for field, msg := range e.Champs {
		parts = append(parts, field+": "+msg)
	}
	return "validation: " + strings.Join(parts, ", ")
}

// FromFields nil si aucun champ en erreur
func FromFields(fields map[string]string) *ValidationError {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Code: "VALIDATION_ERROR", Champs: fields}
}

// Validator validator/v10 avec les noms JSON des champs
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct retourne *ValidationError ou nil
func (val *Validator) Struct(req interface{}) *ValidationError {
	err := val.v.Struct(req)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FromFields(map[string]string{"_": err.Error()})
	}

	champs := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		champs[fe.Field()] = Message(fe)
	}
	return FromFields(champs)
}

// Message libellé français d'une règle
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Ce champ est requis"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Doit contenir au moins %s caractères", fe.Param())
		}
		return fmt.Sprintf("Doit être supérieur ou égal à %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Doit contenir au maximum %s caractères", fe.Param())
		}
		return fmt.Sprintf("Doit être inférieur ou égal à %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Doit être supérieur ou égal à %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Doit être inférieur ou égal à %s", fe.Param())
	case "email":
		return "Format d'email invalide"
	case "uuid", "uuid4":
		return "Format UUID invalide"
	case "oneof":
		return fmt.Sprintf("Valeur invalide. Valeurs autorisées: %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("Format de date invalide (attendu %s)", fe.Param())
	case "url":
		return "URL invalide"
	default:
		return "Valeur invalide"
	}
}

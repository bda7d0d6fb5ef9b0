package v1

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"cv-tracker-backend/pkg/apperror"
	"cv-tracker-backend/pkg/validation"
)

// bindingError turns a gin binding failure into a 400. Struct validation
// failures keep their per-field messages.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperror.Validation(validation.FieldErrors(err))
	}
	return apperror.BadRequest("Cuerpo de la solicitud inválido")
}

// optionalBool parses "true"/"false" style query values; empty means unset.
func optionalBool(value string) (*bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

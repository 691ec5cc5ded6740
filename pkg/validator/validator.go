package validator

import (
	"errors"

	"github.com/ahmadrazza2001/backend-trynbuy/pkg/response"
	"github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo's Context.Validate.
type RequestValidator struct {
	validate *validator.Validate
}

func New() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// FieldErrors flattens validator failures into the response error list.
// It returns nil when err is not a validation failure.
func FieldErrors(err error) []response.ValidationError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	fields := make([]response.ValidationError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, response.ValidationError{
			Field: fe.Namespace(),
			Tag:   fe.Tag(),
		})
	}
	return fields
}

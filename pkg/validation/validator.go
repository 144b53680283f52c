package validation

import (
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator instance with the designer's custom tags
// registered: python_identifier for io names and free_text for name,
// category and description fields.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for empty tags or nil funcs.
	_ = validate.RegisterValidation("python_identifier", func(fl validator.FieldLevel) bool {
		return ValidIdentifier(fl.Field().String())
	})

	_ = validate.RegisterValidation("free_text", func(fl validator.FieldLevel) bool {
		return ValidFreeText(fl.Field().String())
	})

	return validate
}

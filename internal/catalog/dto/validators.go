package dto

import (
	"fmt"

	"stormbringer/internal/derivation"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterCustomValidators(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterCustomValidators registers the catalog validation rules
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("characteristic", validateCharacteristic); err != nil {
		return fmt.Errorf("failed to register characteristic validator: %w", err)
	}
	if err := v.RegisterValidation("skill_category", validateSkillCategory); err != nil {
		return fmt.Errorf("failed to register skill_category validator: %w", err)
	}
	return nil
}

func validateCharacteristic(fl validator.FieldLevel) bool {
	_, ok := derivation.ParseCharacteristicKey(fl.Field().String())
	return ok
}

func validateSkillCategory(fl validator.FieldLevel) bool {
	_, ok := derivation.ParseCategory(fl.Field().String())
	return ok
}

// Validate checks s and returns one readable message per failed field
func Validate(s interface{}) []string {
	var errors []string
	if err := validate.Struct(s); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []string{err.Error()}
		}
		for _, fe := range verrs {
			errors = append(errors, formatValidationError(fe))
		}
	}
	return errors
}

func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Namespace())
	case "required_if":
		return fmt.Sprintf("%s is required for variants", err.Namespace())
	case "characteristic":
		return fmt.Sprintf("%s: unknown characteristic %q", err.Namespace(), err.Value())
	case "skill_category":
		return fmt.Sprintf("%s: unknown skill category %q", err.Namespace(), err.Value())
	case "min", "max", "gtefield":
		return fmt.Sprintf("%s is out of range", err.Namespace())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", err.Namespace(), err.Param())
	default:
		return fmt.Sprintf("%s is invalid", err.Namespace())
	}
}

package dto

import (
	"fmt"
	"strings"

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

// RegisterCustomValidators registers the sheet validation rules
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("characteristic", func(fl validator.FieldLevel) bool {
		_, ok := derivation.ParseCharacteristicKey(fl.Field().String())
		return ok
	}); err != nil {
		return fmt.Errorf("failed to register characteristic validator: %w", err)
	}
	if err := v.RegisterValidation("skill_category", func(fl validator.FieldLevel) bool {
		_, ok := derivation.ParseCategory(fl.Field().String())
		return ok
	}); err != nil {
		return fmt.Errorf("failed to register skill_category validator: %w", err)
	}
	return nil
}

// ValidationError collects every failed field of a request
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid character: " + strings.Join(e.Messages, "; ")
}

// Validate checks s and returns a *ValidationError when any field fails
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Messages: []string{err.Error()}}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fe.Namespace()))
		case "characteristic":
			messages = append(messages, fmt.Sprintf("unknown characteristic %q", fe.Value()))
		case "skill_category":
			messages = append(messages, fmt.Sprintf("unknown skill category %q", fe.Value()))
		case "min", "max":
			messages = append(messages, fmt.Sprintf("%s is out of range", fe.Namespace()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fe.Namespace()))
		}
	}
	return &ValidationError{Messages: messages}
}

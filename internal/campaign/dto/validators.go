package dto

import (
	"errors"
	"fmt"
	"strings"

	"stormbringer/internal/campaign/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("campaign_status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	}); err != nil {
		panic(fmt.Sprintf("failed to register campaign_status validator: %v", err))
	}
	return v
}

// Validate checks s and reports every failed field in one error
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fe.Field()))
		case "campaign_status":
			messages = append(messages, fmt.Sprintf("unknown status %q", fe.Value()))
		case "url":
			messages = append(messages, fmt.Sprintf("%s must be a URL", fe.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}

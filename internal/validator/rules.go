package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"paidlinks-api/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._]{3,32}$`)

func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("media_kind", func(fl validator.FieldLevel) bool {
		return models.MediaKind(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}

	return v.RegisterValidation("slug_username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}

package service

import (
	"errors"

	"github.com/Miraines/MindHaven/auth-service/internal/app/auth/password"
	customErrors "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/errors"
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the custom tags used by the request
// DTOs. It panics if a tag cannot be registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := registerTags(v); err != nil {
		panic(err)
	}
	return v
}

func registerTags(v *validator.Validate) error {
	return v.RegisterValidation("pwdlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= password.MaxBcryptBytes
	})
}

// validationError turns a validator failure into the domain taxonomy: an
// absent field is ErrMissingFields, anything else is ErrInvalidArgument.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return customErrors.NewInvalidArgument(err.Error())
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return customErrors.ErrMissingFields
		}
	}
	fe := fieldErrs[0]
	if fe.Tag() == "pwdlen" {
		return customErrors.NewInvalidArgument("password is too long")
	}
	return customErrors.NewInvalidArgument(fe.Field() + " is invalid")
}

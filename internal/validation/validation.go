// Package validation validates procedure inputs and maps failures to
// VALIDATION_ERROR application errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"dogpark/internal/models"

	"github.com/go-playground/validator/v10"
)

// Field limits shared by the procedure inputs.
const (
	UsernameMinLen  = 3
	UsernameMaxLen  = 20
	PasswordMinLen  = 8
	PasswordMaxLen  = 72 // bcrypt input limit, in bytes
	EmailMaxLen     = 320
	TitleMaxLen     = 100
	ContentMaxLen   = 10000
	CommentMaxLen   = 500
	BioMaxLen       = 500
	TagNameMaxLen   = 20
	FilenameMaxLen  = 255
	MaxPageSize     = 100
	DefaultPageSize = 20
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String()) == nil
		})
		_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String()) == nil
		})
	})
	return validate
}

// Struct validates v against its `validate` tags. The first failing field is
// reported as a VALIDATION_ERROR.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return models.NewValidationError(message(fieldErrs[0]))
	}
	return models.NewValidationError("Invalid input")
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	isCollection := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array || fe.Kind() == reflect.Map
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max", "lte":
		if isCollection {
			return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min", "gte":
		if isCollection {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "base64":
		return fmt.Sprintf("%s must be base64 encoded", field)
	case "username":
		return ValidateUsername(fmt.Sprint(fe.Value())).Error()
	case "password":
		return ValidatePassword(fmt.Sprint(fe.Value())).Error()
	}
	return fmt.Sprintf("%s is invalid", field)
}

// ValidatePassword checks the password length rules.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLen {
		return fmt.Errorf("password must be at least %d characters long", PasswordMinLen)
	}
	if len(password) > PasswordMaxLen {
		return fmt.Errorf("password must not exceed %d bytes", PasswordMaxLen)
	}
	return nil
}

// ValidateUsername checks the username length rules.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLen || n > UsernameMaxLen {
		return fmt.Errorf("username must be between %d and %d characters", UsernameMinLen, UsernameMaxLen)
	}
	return nil
}

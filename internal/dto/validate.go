package dto

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"notebook-loans-backend/internal/apperr"
)

var usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = newValidator()

// chooser is implemented by the closed enum types in the model package.
type chooser interface {
	Valid() bool
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "choice", func(fl validator.FieldLevel) bool {
		c, ok := fl.Field().Interface().(chooser)
		return ok && c.Valid()
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// validateStruct adds one message per failing field to verr, skipping fields
// that already failed to bind. A non-nil only restricts the check to its keys.
func validateStruct(target any, only fieldMask, verr *apperr.ValidationError) {
	err := validate.Struct(target)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add(NonFieldErrors, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		name := fe.Field()
		if verr.Has(name) || (only != nil && !only[name]) {
			continue
		}
		verr.Add(name, message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgBlank
	case "max":
		return fmt.Sprintf(msgMaxLength, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return msgEmptyList
		}
		return fmt.Sprintf(msgMinLength, fe.Param())
	case "choice":
		return fmt.Sprintf(msgChoice, fe.Value())
	case "email":
		return msgEmail
	case "username":
		return msgUsername
	case "url", "http_url":
		return "Insira uma URL válida."
	}
	return msgInvalidValue
}

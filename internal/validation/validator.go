// Package validation wraps go-playground/validator with the domain tags used
// by request bodies:
//
//	bloodgroup   one of the eight clinical types or "Other"
//	accounttype  individual, hospital or ngo
//	timestamp    an RFC3339 instant such as 2026-10-17T09:30:00.000Z
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"sevagan-backend/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failed rule
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Error is returned for malformed input
type Error struct {
	Fields []FieldError
}

// NewError builds a single-field validation error
func NewError(field, tag, message string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Tag: tag, Message: message}}}
}

// Error implements error
func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, f.Message)
	}
	return strings.Join(messages, "; ")
}

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		mustRegister("bloodgroup", func(fl validator.FieldLevel) bool {
			return models.BloodGroup(fl.Field().String()).Valid()
		})
		mustRegister("accounttype", func(fl validator.FieldLevel) bool {
			return models.AccountType(fl.Field().String()).Valid()
		})
		mustRegister("timestamp", func(fl validator.FieldLevel) bool {
			_, err := models.ParseNeededAt(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Struct validates s against its `validate` tags
func Struct(s interface{}) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "bloodgroup":
		return fe.Field() + " must be a valid blood group"
	case "accounttype":
		return fe.Field() + " must be individual, hospital or ngo"
	case "timestamp":
		return fe.Field() + " must be an ISO-8601 timestamp"
	case "email":
		return fe.Field() + " must be a valid email"
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

const passwordRule = "Password must be at least 8 characters long and contain an uppercase letter, a lowercase letter and a number"

var registerOnce sync.Once

// FieldError is one entry of a "Validation Error" details list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RegisterValidators installs the custom binding tags on gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				for _, key := range []string{"form", "uri"} {
					if n := strings.SplitN(f.Tag.Get(key), ",", 2)[0]; n != "" {
						return n
					}
				}
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return validPassword(fl.Field().String())
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return domain.Role(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("bookingstatus", func(fl validator.FieldLevel) bool {
			return models.BookingStatus(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			return validCurrency(fl.Field().String())
		})
	})
}

func validPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func validCurrency(s string) bool {
	s = strings.ToUpper(s)
	for _, c := range models.Currencies {
		if s == c {
			return true
		}
	}
	return false
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "uuid", "uuid4":
		return field + " must be a valid UUID"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "password":
		return passwordRule
	case "role":
		return field + " must be one of: USER, ADMIN, SUPPORT"
	case "bookingstatus":
		return field + " must be one of: PENDING, CONFIRMED, CANCELLED, REFUNDED"
	case "currency":
		return field + " must be one of: " + strings.Join(models.Currencies, ", ")
	default:
		return field + " is invalid"
	}
}

// fieldPath drops the top-level struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// bindError turns binding failures into a ValidationError.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
		}
		return domain.ValidationError{Msg: "Validation Error", Details: details, Err: err}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return domain.ValidationError{
			Msg:     "Validation Error",
			Details: []FieldError{{Field: typeErr.Field, Message: typeErr.Field + " has the wrong type"}},
			Err:     err,
		}
	}
	if errors.Is(err, io.EOF) {
		return domain.ValidationError{Msg: "Request body is required", Err: err}
	}
	return domain.ValidationError{Msg: "Invalid request body", Err: err}
}

func fieldError(field, message string) error {
	return domain.ValidationError{
		Field:   field,
		Msg:     "Validation Error",
		Details: []FieldError{{Field: field, Message: message}},
	}
}

// Package validation wraps a shared go-playground validator and translates
// its failures into apperrors.ValidationError.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "storepulse/internal/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names so details line up with the request body.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		// Decimals are validated as numbers (gte=0 and friends).
		validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})

		// cents: at most two decimal places, as the money columns store.
		_ = validate.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.Float64 {
				return false
			}
			scaled := fl.Field().Float() * 100
			return math.Abs(scaled-math.Round(scaled)) < 1e-6
		})
	})
	return validate
}

// Struct validates s and returns a *apperrors.ValidationError listing every
// failing field, or nil.
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(err.Error())
	}

	details := make([]apperrors.ValidationDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperrors.ValidationDetail{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return apperrors.NewValidationError("validation failed", details...)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "cents":
		return "must have at most 2 decimal places"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Var validates a single value (a path or query parameter) and reports it
// under field.
func Var(field string, value any, tag string) error {
	err := Get().Var(value, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidationError(err.Error())
	}
	return apperrors.NewValidationError("invalid "+field, apperrors.ValidationDetail{
		Field:   field,
		Message: message(verrs[0]),
	})
}

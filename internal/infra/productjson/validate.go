package productjson

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"storefront/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d, ok := f.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		fl, _ := d.Float64()
		return fl
	}, decimal.Decimal{})
	return v
}

// validateStruct runs tag validation and keys failures by JSON field name,
// prefixed with prefix when non-empty.
func validateStruct(s any, prefix string) *domain.ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.PayloadError("%s", err.Error())
	}
	verr := domain.NewValidationError()
	for _, fe := range fieldErrs {
		key := fe.Field()
		if prefix != "" {
			key = prefix + "." + key
		}
		verr.Add(key, fieldMessage(fe))
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.String {
			return fmt.Sprintf("The field %s must be a string or array type with a minimum length of '%s'.", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("The field %s must be at least %s.", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("The field %s must be greater than or equal to %s.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("The field %s is invalid.", fe.Field())
	}
}

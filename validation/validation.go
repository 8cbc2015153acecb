// Package validation runs validator/v10 struct tags on request bodies and
// turns the failures into client facing messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"rentals-api/domain"
)

// Validator wraps a configured validator.Validate.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// notblank rejects whitespace-only text; maxbytes caps the encoded size,
	// which is what bcrypt limits, instead of the rune count max checks
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("maxbytes", maxBytes)

	return &Validator{validate: v}
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Struct validates s. It returns nil, a *domain.ValidationError with one
// message per violated rule, or the validator's own error when s is not a
// struct.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &domain.ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), Message(fe))
	}
	return out
}

// Message renders a single failed rule.
func Message(fe validator.FieldError) string {
	field := Label(fe.Field())
	param := fe.Param()

	switch fe.Tag() {
	case "required", "required_without":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if isText(fe.Kind()) {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isText(fe.Kind()) {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, param)
	case "notblank":
		return field + " must not be blank"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(param), ", "))
	case "numeric":
		return field + " must contain only digits"
	case "datetime":
		return field + " must be a date in the format YYYY-MM-DD"
	case "latitude":
		return field + " must be a valid latitude"
	case "longitude":
		return field + " must be a valid longitude"
	case "uuid4", "uuid":
		return field + " must be a valid token"
	case "dive":
		return field + " is invalid"
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

// Label turns a json field name into a sentence subject:
// "number_guests_allowed" becomes "Number guests allowed". Element names
// such as "facilities[0]" keep only the field part.
func Label(jsonName string) string {
	name, _, _ := strings.Cut(jsonName, "[")
	switch name {
	case "vat_number":
		return "VAT number"
	case "":
		return "Field"
	}
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToUpper(name[:1]) + name[1:]
}

func isText(k reflect.Kind) bool {
	return k == reflect.String
}

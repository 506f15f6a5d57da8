package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/pkg/apperror"
)

var validate = validator.New()

func init() {
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
	// notblank rejects strings made only of whitespace
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidateStruct runs struct tag validation and reports one FieldError per failed field.
// prefix is prepended to field names, e.g. "items[0].service_info".
func ValidateStruct(data interface{}, prefix string) []apperror.FieldError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperror.FieldError{{Field: prefix, Message: err.Error()}}
	}

	fieldErrors := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if prefix != "" {
			field = prefix + "." + field
		}
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field:   field,
			Message: message(fe),
		})
	}
	return fieldErrors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank", "uuid_required":
		return fe.Field() + " is required"
	case "min", "gt", "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " failed on " + fe.Tag()
	}
}

package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON binds and validates a JSON payload. Validator failures come
// back as the API's {"errors": [...]} shape with one message per field,
// so a client sees every violation at once rather than the first.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err == nil {
		return true
	}

	var validatorErrs validator.ValidationErrors

	if errors.As(err, &validatorErrs) {
		msgs := make([]string, 0, len(validatorErrs))

		for _, fe := range validatorErrs {
			msgs = append(msgs, validationMessage(jsonFieldName(out, fe.StructField()), fe.Tag(), fe.Param()))
		}

		RespondValidationErrors(ctx, msgs)
		return false
	}

	RespondBadRequest(ctx, "Invalid request body")
	return false
}

// jsonFieldName maps a struct field back to its json tag name. Payload
// structs here are flat, nested paths are not needed.
func jsonFieldName(out interface{}, structField string) string {
	t := reflect.TypeOf(out)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}

	sf, ok := t.FieldByName(structField)

	if !ok {
		return structField
	}

	tag := sf.Tag.Get("json")

	if tag == "" {
		return structField
	}

	name, _, _ := strings.Cut(tag, ",")

	if name == "" || name == "-" {
		return structField
	}

	return name
}

func validationMessage(field, rule, param string) string {
	switch rule {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + param + " characters"
	case "max":
		return field + " must be at most " + param + " characters"
	default:
		return field + " failed " + rule + " validation"
	}
}

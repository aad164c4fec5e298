package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ReadAndValidateRequest binds query/body params, applies struct defaults and
// validates. Returns nil on success, a []ValidationError payload otherwise.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return validatorDefaultRules(err)
	}

	if err := defaults.Set(req); err != nil {
		return validatorDefaultRules(err)
	}

	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return validatorDefaultRules(err)
	}

	return nil
}

func validatorDefaultRules(err error) interface{} {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errs := make([]ValidationError, 0, len(validationErrors))
		for _, e := range validationErrors {
			code := "ERR_" + strings.ToUpper(e.Tag())
			errs = append(errs, ValidationError{
				Code:    code,
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
		return errs
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{
			Code:    "ERR_UNKNOWN",
			Message: fmt.Sprintf("%v", he.Message),
		}}
	}

	return []ValidationError{{
		Code:    "ERR_UNKNOWN",
		Message: err.Error(),
	}}
}

func getErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

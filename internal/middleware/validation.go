package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/krbank/backoffice/internal/models"
)

var (
	phoneRe = regexp.MustCompile(models.PhonePattern)
	ssnRe   = regexp.MustCompile(models.SSNPattern)

	validate = newValidator()
)

// customTags are registered on the shared validator. A registration error
// is a programming error and panics at init.
var customTags = map[string]*regexp.Regexp{
	"bankphone": phoneRe,
	"bankssn":   ssnRe,
}

func newValidator() *validator.Validate {
	v := validator.New()
	for tag, re := range customTags {
		mustRegister(v, tag, re)
	}
	return v
}

func mustRegister(v *validator.Validate, tag string, re *regexp.Regexp) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("registering validation %q: %v", tag, err))
	}
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type BadRequestErrorResponse struct {
	Message string            `json:"message"`
	Details []ValidationError `json:"details"`
}

func ValidateRequest(obj any) []ValidationError {
	var validationErrors []ValidationError

	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Message: err.Error(), Type: "invalid"}}
	}

	for _, err := range fieldErrs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: getErrorMsg(err),
			Type:    err.Tag(),
		})
	}

	return validationErrors
}

func getErrorMsg(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "oneof":
		return "Value must be one of: " + err.Param()
	case "datetime":
		return "Date must use the format " + err.Param()
	case "bankphone":
		return "Phone number must be 10 to 15 digits with an optional leading +"
	case "bankssn":
		return "SSN must use the format XXX-XX-XXXX"
	default:
		return "Invalid value"
	}
}

func RespondWithValidationError(c *gin.Context, validationErrors []ValidationError) {
	c.JSON(http.StatusBadRequest, BadRequestErrorResponse{
		Message: "Invalid request data",
		Details: validationErrors,
	})
}

func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"message": message,
	})
}

package helper

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CodedError is a business-rule failure that carries its own error_code.
type CodedError struct {
	Status  int
	Code    string
	Message string
}

func NewCodedError(status int, code, message string) *CodedError {
	return &CodedError{Status: status, Code: code, Message: message}
}

func (e *CodedError) Error() string { return e.Message }

// FromFiberError turns a service/transaction error into the JSON error envelope.
// Anything it does not recognise is logged and answered with a generic 500.
func FromFiberError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	var ce *CodedError
	if errors.As(err, &ce) {
		return JsonErrorCode(c, ce.Status, ce.Code, ce.Message)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= 500 {
			log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
		}
		return JsonError(c, fe.Code, fe.Message)
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return JsonValidationError(c, ValidationErrors(ve))
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return JsonError(c, fiber.StatusNotFound, "resource not found")
	case IsUniqueViolation(err):
		return JsonError(c, fiber.StatusConflict, "resource already exists")
	}

	log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
	return JsonError(c, fiber.StatusInternalServerError, "")
}

// ValidationErrors flattens validator output into field -> messages.
func ValidationErrors(ve validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = append(out[fe.Field()], validationMessage(fe))
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gtefield":
		return "must be greater than or equal to " + fe.Param()
	case "ltefield":
		return "must be less than or equal to " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

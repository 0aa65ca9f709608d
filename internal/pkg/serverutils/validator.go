package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// HttpError carries an explicit status through the error middleware.
type HttpError struct {
	Status  int
	Message string
}

func (e *HttpError) Error() string {
	return e.Message
}

func BadRequest(format string, args ...interface{}) *HttpError {
	return &HttpError{Status: 400, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *HttpError {
	return &HttpError{Status: 404, Message: fmt.Sprintf(format, args...)}
}

// ValidateRequest runs struct-tag validation and converts failures into a
// 400 with a readable field list.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return BadRequest("invalid request body")
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return BadRequest("validation failed: %s", strings.Join(fields, ", "))
}

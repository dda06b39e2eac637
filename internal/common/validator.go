package common

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GenericEchoValidator adapts go-playground/validator to echo.Validator.
// Build it with NewGenericEchoValidator; it is safe for concurrent use.
type GenericEchoValidator struct {
	validate *validator.Validate
}

func NewGenericEchoValidator() *GenericEchoValidator {
	return &GenericEchoValidator{validate: validator.New()}
}

// Validate checks struct tags and maps failures to 400 responses.
func (gv *GenericEchoValidator) Validate(i interface{}) error {
	if err := gv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid request body: %v", err))
	}
	return nil
}

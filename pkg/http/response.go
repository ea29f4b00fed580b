package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SuccessResponse writes a 200 response. The payload carries its own
// top-level "ok" field, so it is serialized as-is.
func SuccessResponse(c echo.Context, payload interface{}) error {
	return c.JSON(http.StatusOK, payload)
}

// FailResponse writes an {ok:false, error} body with the given status.
func FailResponse(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorBody{OK: false, Error: message})
}

// BadRequestResponse writes a 400 failure.
func BadRequestResponse(c echo.Context, message string) error {
	return FailResponse(c, http.StatusBadRequest, message)
}

// InternalErrorResponse writes a 500 failure.
func InternalErrorResponse(c echo.Context, message string) error {
	return FailResponse(c, http.StatusInternalServerError, message)
}

// ValidationFailResponse flattens validation errors into one 400 message.
func ValidationFailResponse(c echo.Context, verr interface{}) error {
	if errs, ok := verr.([]ValidationError); ok && len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Message)
		}
		return BadRequestResponse(c, strings.Join(msgs, "; "))
	}
	return BadRequestResponse(c, "invalid request")
}

package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error code to HTTP status mapping.
var statusMapping = map[string]int{
	ErrInternal:          http.StatusInternalServerError,
	ErrValidation:        http.StatusBadRequest,
	ErrNotFound:          http.StatusNotFound,
	ErrUnauthenticated:   http.StatusUnauthorized,
	ErrUnauthorized:      http.StatusForbidden,
	ErrInsufficientFunds: http.StatusUnprocessableEntity,
	ErrInvalidOTP:        http.StatusBadRequest,
	ErrExpired:           http.StatusGone,
	ErrAlreadyProcessed:  http.StatusConflict,
}

// ToHTTPStatus converts an error code to an HTTP status code.
func ToHTTPStatus(code string) int {
	if status, ok := statusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// JSONResponse writes the error as the standard JSON error body.
func JSONResponse(c echo.Context, err error) error {
	var appErr *AppError
	if As(err, &appErr) {
		return c.JSON(ToHTTPStatus(appErr.Code()), echo.Map{
			"error": appErr.Error(),
			"code":  appErr.Code(),
		})
	}

	if echoErr, ok := err.(*echo.HTTPError); ok {
		return echoErr
	}

	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error": "internal server error",
		"code":  ErrInternal,
	})
}

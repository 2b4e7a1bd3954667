package controller

import (
	stderrors "errors"
	"net/http"

	"event-service/core/errors"
	"event-service/core/logger"

	"github.com/labstack/echo/v4"
)

// Response types
type (
	ErrorResponse struct {
		Detail any `json:"detail"`
	}

	ValidationError struct {
		Field   string `json:"field,omitempty"`
		Message string `json:"msg"`
	}

	HealthResponse struct {
		Status string `json:"status"`
	}
)

// Response handler interface and implementation
type BaseController interface {
	NotFound(message string) *echo.HTTPError
	UnprocessableEntity(message string, details ...ValidationError) *echo.HTTPError
	InternalServerError(message string, cause error) *echo.HTTPError
	SuccessResponse(c echo.Context, status int, data any) error
	NoContent(c echo.Context) error
	ErrorResponse(err *errors.AppError) *echo.HTTPError
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

// Error response functions
func NewErrorResponse(httpStatusCode int, detail any) *echo.HTTPError {
	return echo.NewHTTPError(httpStatusCode, ErrorResponse{Detail: detail})
}

// Validation functions
func NewValidationError(field, message string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: message,
	}
}

// HTTP Error handlers
func (h *responseHandler) NotFound(message string) *echo.HTTPError {
	return NewErrorResponse(http.StatusNotFound, message)
}

func (h *responseHandler) UnprocessableEntity(message string, details ...ValidationError) *echo.HTTPError {
	if len(details) > 0 {
		return NewErrorResponse(http.StatusUnprocessableEntity, details)
	}
	return NewErrorResponse(http.StatusUnprocessableEntity, message)
}

func (h *responseHandler) InternalServerError(message string, cause error) *echo.HTTPError {
	return NewErrorResponse(http.StatusInternalServerError, message).SetInternal(cause)
}

func (h *responseHandler) SuccessResponse(c echo.Context, status int, data any) error {
	return c.JSON(status, data)
}

func (h *responseHandler) NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// ErrorResponse maps an application error onto its HTTP status.
func (h *responseHandler) ErrorResponse(err *errors.AppError) *echo.HTTPError {
	if err == nil {
		return h.InternalServerError(http.StatusText(http.StatusInternalServerError), nil)
	}
	switch err.Code {
	case errors.ErrNotFound:
		return h.NotFound(err.Message)
	case errors.ErrInvalidInput, errors.ErrInvalidRequest, errors.ErrValidationError:
		return h.UnprocessableEntity(err.Message)
	default:
		return h.InternalServerError(err.Message, err)
	}
}

// HTTPErrorHandler renders every error as {"detail": ...}. Errors that are not
// HTTP errors are logged with a stack trace and answered with a bare 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !stderrors.As(err, &he) {
		logger.ErrorStack("HTTPErrorHandler: unhandled error", err,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
		)
		he = NewErrorResponse(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	} else if he.Internal != nil && he.Code >= http.StatusInternalServerError {
		logger.Error("HTTPErrorHandler: request failed",
			"status", he.Code,
			"path", c.Request().URL.Path,
			"error", he.Internal,
		)
	}

	body := he.Message
	switch m := he.Message.(type) {
	case ErrorResponse:
	case string:
		body = ErrorResponse{Detail: m}
	case nil:
		body = ErrorResponse{Detail: http.StatusText(he.Code)}
	default:
		body = ErrorResponse{Detail: m}
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(he.Code)
	} else {
		writeErr = c.JSON(he.Code, body)
	}
	if writeErr != nil {
		logger.Error("HTTPErrorHandler: write response", writeErr)
	}
}

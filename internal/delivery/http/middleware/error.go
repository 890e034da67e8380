package middleware

import (
	"errors"

	"getjobs/internal/pkg/logging"
	"getjobs/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// AppError carries the status and client-facing message for a failed
// request. Cause is logged for 5xx responses and never sent to the client.
type AppError struct {
	StatusCode int
	Message    string
	Data       any
	Cause      error
}

func NewAppError(statusCode int, message string, data any, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

type ErrorMiddleware struct {
	logger *logging.Logger
}

func NewErrorMiddleware(logger *logging.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ErrorMiddleware{logger: logger.With("component", "http")}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("panic recovered", "panic", r, "method", c.Method(), "path", c.Path(), "request_id", requestID(c))
				err = response.Error(c, fiber.StatusInternalServerError, "", nil)
			}
		}()

		if err = c.Next(); err == nil {
			return nil
		}

		out := toPublic(err)
		if out.StatusCode >= 500 {
			m.logger.Error("request failed",
				"status", out.StatusCode,
				"method", c.Method(),
				"path", c.Path(),
				"request_id", requestID(c),
				"err", err,
			)
		}
		return response.Error(c, out.StatusCode, out.Message, out.Data)
	}
}

// toPublic reduces err to what may be shown to a client. Server errors keep
// only their status class; 503 stays distinguishable so clients can retry.
func toPublic(err error) AppError {
	status, msg := fiber.StatusInternalServerError, ""
	var data any

	var appErr *AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		status, msg, data = appErr.StatusCode, appErr.Message, appErr.Data
	case errors.As(err, &fiberErr):
		status, msg = fiberErr.Code, fiberErr.Message
	}

	if status <= 0 {
		status = fiber.StatusInternalServerError
	}
	if status >= 500 {
		if status != fiber.StatusServiceUnavailable {
			status = fiber.StatusInternalServerError
		}
		return AppError{StatusCode: status, Message: response.Message(status)}
	}
	if msg == "" {
		msg = response.Message(status)
	}
	return AppError{StatusCode: status, Message: msg, Data: data}
}

package response

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Envelope is the body of every API response.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	MessageOK                  = "ok"
	MessageInternalServerError = "internal server error"
	MessageServiceUnavailable  = "service unavailable"
)

func Success(c fiber.Ctx, status int, message string, data any) error {
	return write(c, status, message, data)
}

func Error(c fiber.Ctx, status int, message string, data any) error {
	return write(c, status, message, data)
}

func write(c fiber.Ctx, status int, message string, data any) error {
	if status < 100 || status > 599 {
		status = fiber.StatusInternalServerError
	}
	if message == "" {
		message = Message(status)
	}
	return c.Status(status).JSON(Envelope{Status: status, Message: message, Data: data})
}

// Message is the lower-case reason phrase for status, with every unknown
// 5xx collapsed to "internal server error".
func Message(status int) string {
	switch {
	case status == fiber.StatusServiceUnavailable:
		return MessageServiceUnavailable
	case status >= 500:
		return MessageInternalServerError
	}
	if text := http.StatusText(status); text != "" {
		return strings.ToLower(text)
	}
	return "error"
}

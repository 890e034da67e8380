package v1

import (
	"getjobs/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterUsers(r fiber.Router, userJobsHandler *handler.UserJobsHandler) {
	if r == nil {
		return
	}
	if userJobsHandler == nil {
		return
	}

	userJobsHandler.RegisterRoutes(r)
}

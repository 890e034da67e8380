package v1

import (
	"getjobs/internal/delivery/http/handler"
	"getjobs/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Jobs       *handler.JobsHandler
	UserJobs   *handler.UserJobsHandler
	Newsletter *handler.NewsletterHandler
	AuthMw     *middleware.AuthMiddleware
}

func Register(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}
	if h.Newsletter != nil {
		h.Newsletter.RegisterRoutes(r)
	}

	RegisterJobs(r.Group("/jobs"), h.Jobs)

	if h.AuthMw != nil {
		RegisterUsers(r.Group("/users", h.AuthMw.Middleware()), h.UserJobs)
	}
}

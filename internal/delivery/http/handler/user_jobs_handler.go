package handler

import (
	"getjobs/internal/delivery/http/dto"
	"getjobs/internal/delivery/http/middleware"
	"getjobs/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type UserJobsHandler struct {
	uc JobUsecase
}

func NewUserJobsHandler(uc JobUsecase) *UserJobsHandler {
	return &UserJobsHandler{uc: uc}
}

// RegisterRoutes expects r to sit behind the auth middleware.
func (h *UserJobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/me/jobs", h.HandleList)
	r.Post("/me/jobs/renew", h.HandleRenewMany)
	r.Post("/me/jobs/:id/renew", h.HandleRenewOne)
}

func (h *UserJobsHandler) HandleList(c fiber.Ctx) error {
	_, email, ok := middleware.Identity(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	view, err := h.uc.GetUserJobView(c.Context(), email)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "success", dto.NewUserJobsResponse(view))
}

func (h *UserJobsHandler) HandleRenewMany(c fiber.Ctx) error {
	userID, _, ok := middleware.Identity(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	var req dto.RenewJobsRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	n, err := h.uc.MarkJobsOK(c.Context(), userID, req.IDs)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "renewed", dto.RenewJobsResponse{Renewed: n})
}

func (h *UserJobsHandler) HandleRenewOne(c fiber.Ctx) error {
	userID, _, ok := middleware.Identity(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	if err := h.uc.RenewJob(c.Context(), userID, id); err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "renewed", dto.RenewJobsResponse{Renewed: 1})
}

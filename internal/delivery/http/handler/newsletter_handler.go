package handler

import (
	"getjobs/internal/delivery/http/dto"
	"getjobs/internal/pkg/response"
	"getjobs/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type NewsletterHandler struct {
	uc usecase.NewsletterUsecase
}

func NewNewsletterHandler(uc usecase.NewsletterUsecase) *NewsletterHandler {
	return &NewsletterHandler{uc: uc}
}

func (h *NewsletterHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/newsletter", h.Subscribe)
}

func (h *NewsletterHandler) Subscribe(c fiber.Ctx) error {
	var req dto.NewsletterRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}
	if err := h.uc.Subscribe(c.Context(), req.Email); err != nil {
		return mapNewsletterUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "subscribed", nil)
}

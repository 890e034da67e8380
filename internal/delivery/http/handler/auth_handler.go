package handler

import (
	"context"

	"getjobs/internal/delivery/http/dto"
	"getjobs/internal/domain/user"
	"getjobs/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type AuthUsecase interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (user.User, string, error)
	Signup(ctx context.Context, name, email string) (user.User, error)
	Exists(ctx context.Context, email string) (bool, error)
}

type AuthHandler struct {
	uc AuthUsecase
}

func NewAuthHandler(uc AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/otp", h.RequestOTP)
	r.Post("/verify", h.Verify)
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
}

func (h *AuthHandler) RequestOTP(c fiber.Ctx) error {
	var req dto.OTPRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	if err := h.uc.RequestOTP(c.Context(), req.Email); err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "otp sent", nil)
}

func (h *AuthHandler) Verify(c fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	usr, token, err := h.uc.VerifyOTP(c.Context(), req.Email, req.Code)
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.TokenResponse{
		User:        dto.NewUserResponse(usr),
		AccessToken: token,
	})
}

func (h *AuthHandler) Signup(c fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	usr, err := h.uc.Signup(c.Context(), req.Name, req.Email)
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "created", dto.NewUserResponse(usr))
}

// Login only reports whether the account exists; the client then asks for
// an OTP.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	exists, err := h.uc.Exists(c.Context(), req.Email)
	if err != nil {
		return mapAuthUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]bool{"exists": exists})
}

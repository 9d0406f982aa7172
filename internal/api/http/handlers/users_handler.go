package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/amats-service/internal/api/dto"
	"github.com/spec-kit/amats-service/internal/domain"
	"github.com/spec-kit/amats-service/internal/service"
)

// UsersHandler exposes auth endpoints for end-users.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /auth/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	account, token, exp, err := h.auth.RegisterUser(c.UserContext(), service.RegisterInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Password:      req.Password,
		Role:          domain.Role(req.Role),
		LicenseNumber: req.LicenseNumber,
		Company:       req.Company,
		VehicleCount:  req.VehicleCount,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"account": dto.NewAccountResponse(account),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/users/login. Blocked outcomes answer 403 with the outcome in the
// data envelope so the client can render the countdown.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	result, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	resp := dto.LoginResponse{Outcome: result.Outcome, Account: dto.NewAccountResponse(result.Account)}
	switch result.Outcome {
	case domain.LoginProceed, domain.LoginReactivated:
		resp.Auth = &dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt}
		if result.Outcome == domain.LoginReactivated {
			resp.Message = "your suspension has ended"
		}
		return c.JSON(fiber.Map{"data": resp})
	case domain.LoginBlockedCountdown:
		resp.Message = "account suspended"
		resp.Countdown = dto.NewCountdownResponse(*result.Countdown)
	default:
		resp.Message = "account suspended, contact an administrator"
	}
	return c.Status(http.StatusForbidden).JSON(fiber.Map{"data": resp})
}

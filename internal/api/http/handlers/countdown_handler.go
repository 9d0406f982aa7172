package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/amats-service/internal/api/dto"
	"github.com/spec-kit/amats-service/internal/suspension"
)

// CountdownTokenHeader carries the token returned with a blocked login.
const CountdownTokenHeader = "X-Countdown-Token"

// CountdownSessions is the token-checked side of the countdown presenter.
type CountdownSessions interface {
	Lookup(email, token string) (suspension.CountdownState, bool)
	Release(email, token string) bool
}

// CountdownHandler lets a blocked client poll or close its countdown dialog. Only the
// client holding the token issued at login can see or dismiss the dialog; anyone
// else gets the same 404 as for a missing countdown.
type CountdownHandler struct {
	sessions CountdownSessions
}

// NewCountdownHandler constructs handler.
func NewCountdownHandler(sessions CountdownSessions) *CountdownHandler {
	return &CountdownHandler{sessions: sessions}
}

// Get handles GET /auth/countdown/:email.
func (h *CountdownHandler) Get(c *fiber.Ctx) error {
	state, ok := h.sessions.Lookup(c.Params("email"), c.Get(CountdownTokenHeader))
	if !ok {
		return fiber.NewError(http.StatusNotFound, "no active countdown")
	}
	return c.JSON(fiber.Map{"data": dto.NewCountdownResponse(state)})
}

// Dismiss handles DELETE /auth/countdown/:email. The suspension stays in place.
func (h *CountdownHandler) Dismiss(c *fiber.Ctx) error {
	if !h.sessions.Release(c.Params("email"), c.Get(CountdownTokenHeader)) {
		return fiber.NewError(http.StatusNotFound, "no active countdown")
	}
	return c.SendStatus(http.StatusNoContent)
}

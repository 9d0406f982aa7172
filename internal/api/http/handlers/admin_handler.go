package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/amats-service/internal/api/dto"
	"github.com/spec-kit/amats-service/internal/auth"
	"github.com/spec-kit/amats-service/internal/domain"
	"github.com/spec-kit/amats-service/internal/service"
	"github.com/spec-kit/amats-service/internal/suspension"
	apperrors "github.com/spec-kit/amats-service/pkg/util/errorutil"
)

// AdminHandler exposes the account administration dashboard endpoints.
type AdminHandler struct {
	suspensions *service.SuspensionService
	accounts    *service.AccountService
	audit       *service.AuditService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(suspensions *service.SuspensionService, accounts *service.AccountService, audit *service.AuditService) *AdminHandler {
	return &AdminHandler{suspensions: suspensions, accounts: accounts, audit: audit}
}

// ListAccounts handles GET /admin/accounts.
func (h *AdminHandler) ListAccounts(c *fiber.Ctx) error {
	filter := service.AccountFilter{
		Role:          domain.Role(c.Query("role")),
		SuspendedOnly: c.QueryBool("suspended", false),
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": string(filter.Role)})
	}

	summaries, err := h.accounts.ListAccounts(c.UserContext(), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.AccountSummaryResponse, 0, len(summaries))
	for i := range summaries {
		s := summaries[i]
		resp = append(resp, dto.AccountSummaryResponse{
			AccountResponse:  dto.NewAccountResponse(&s.Account),
			SuspensionLabel:  s.SuspensionLabel,
			RemainingLabel:   s.RemainingLabel,
			RemainingMinutes: s.RemainingMinutes,
			EndsAt:           s.EndsAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Suspend handles POST /admin/accounts/:email/suspend.
func (h *AdminHandler) Suspend(c *fiber.Ctx) error {
	var req dto.SuspendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	unit, err := suspension.ParseUnit(req.Unit)
	if err != nil {
		return apperrors.NewValidationError("unknown duration unit", map[string]any{"unit": req.Unit})
	}

	result, err := h.suspensions.SuspendFor(c.UserContext(), c.Params("email"), actorEmail(c), req.Quantity, unit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": actionResponse(c.Params("email"), result)})
}

// Activate handles POST /admin/accounts/:email/activate.
func (h *AdminHandler) Activate(c *fiber.Ctx) error {
	result, err := h.suspensions.Activate(c.UserContext(), c.Params("email"), actorEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": actionResponse(c.Params("email"), result)})
}

// Delete handles DELETE /admin/accounts/:email.
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	result, err := h.suspensions.Delete(c.UserContext(), c.Params("email"), actorEmail(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": actionResponse(c.Params("email"), result)})
}

// Audit handles GET /admin/audit.
func (h *AdminHandler) Audit(c *fiber.Ctx) error {
	entries, err := h.audit.ListAudit(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	resp := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.AuditEntryResponse{
			ID:        e.ID,
			Action:    e.Action,
			Target:    e.Target,
			Actor:     e.Actor,
			Outcome:   e.Outcome,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

func actorEmail(c *fiber.Ctx) string {
	if p, ok := auth.PrincipalFromContext(c); ok && p.Account != nil {
		return p.Account.Email
	}
	return ""
}

func actionResponse(email string, result *service.ActionResult) dto.ActionResponse {
	return dto.ActionResponse{
		Outcome: result.Outcome,
		Email:   domain.NormalizeEmail(email),
		Account: dto.NewAccountResponse(result.Account),
	}
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hireiq/identity-service/internal/core/ports"
)

// AdminHandler owns the administrative account operations. Routes using it
// must sit behind the admin RBAC middleware.
type AdminHandler struct {
	identity ports.IdentityService
}

func NewAdminHandler(identity ports.IdentityService) *AdminHandler {
	return &AdminHandler{identity: identity}
}

// Deactivate flips an account inactive; the account can no longer
// authenticate.
//
// @Summary      Deactivate an account
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/accounts/{id}/deactivate [post]
func (h *AdminHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false, "Account deactivated")
}

// Reactivate flips an account back to active.
//
// @Summary      Reactivate an account
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /admin/accounts/{id}/reactivate [post]
func (h *AdminHandler) Reactivate(c echo.Context) error {
	return h.setActive(c, true, "Account reactivated")
}

func (h *AdminHandler) setActive(c echo.Context, active bool, message string) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account id is required")
	}

	if err := h.identity.SetAccountActive(c.Request().Context(), id, active); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: message})
}

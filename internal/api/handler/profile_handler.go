package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hireiq/identity-service/internal/core/ports"
)

type ProfileHandler struct {
	identity ports.IdentityService
}

func NewProfileHandler(identity ports.IdentityService) *ProfileHandler {
	return &ProfileHandler{identity: identity}
}

// updateProfileRequest is a partial update: absent fields are untouched.
// Role-specific fields sent by an account of another role are rejected.
type updateProfileRequest struct {
	Bio      *string `json:"bio"`
	Location *string `json:"location" validate:"omitempty,max=100"`

	Skills          *[]string `json:"skills"`
	ExperienceYears *int      `json:"experience_years" validate:"omitempty,min=0"`
	Education       *[]string `json:"education"`

	CompanyName        *string `json:"company_name" validate:"omitempty,max=200"`
	CompanyWebsite     *string `json:"company_website" validate:"omitempty,url"`
	CompanyDescription *string `json:"company_description"`
}

// Get returns the authenticated caller's profile.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  domain.Profile
// @Security     BearerAuth
// @Router       /profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	profile, err := h.identity.Profile(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Update applies a partial update to the caller's role-shaped profile.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Profile fields to update"
// @Success      200   {object}  domain.Profile
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Security     BearerAuth
// @Router       /profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	accountID, err := ctxAccountID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile, err := h.identity.UpdateProfile(c.Request().Context(), accountID, ports.UpdateProfileInput{
		Bio:                req.Bio,
		Location:           req.Location,
		Skills:             req.Skills,
		ExperienceYears:    req.ExperienceYears,
		Education:          req.Education,
		CompanyName:        req.CompanyName,
		CompanyWebsite:     req.CompanyWebsite,
		CompanyDescription: req.CompanyDescription,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

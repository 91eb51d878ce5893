package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/veilchat/chat-server/internal/api/metrics"
	"github.com/veilchat/chat-server/internal/core/domain"
	"github.com/veilchat/chat-server/internal/core/ports"
)

// DuressHandler serves the companion endpoints for the identity switch:
// settings read/write and the switch trigger itself.
type DuressHandler struct {
	service ports.DuressService
}

func NewDuressHandler(service ports.DuressService) *DuressHandler {
	return &DuressHandler{service: service}
}

type decoyCredentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password"`
}

type updateSettingsRequest struct {
	ShowTimestamps bool                     `json:"showTimestamps"`
	MinTimeMinutes int                      `json:"minTimeInMinutes"    validate:"gte=1"`
	MaxTimeMinutes int                      `json:"maxTimeInMinutes"    validate:"gtefield=MinTimeMinutes"`
	NumFakeUsers   int                      `json:"numberOfFakeUsers"   validate:"gte=1,lte=20"`
	Personas       []string                 `json:"personas"            validate:"max=5"`
	Decoy          *decoyCredentialsRequest `json:"underDuressAccount"`
}

type settingsResponse struct {
	ShowTimestamps bool            `json:"showTimestamps"`
	MinTimeMinutes int             `json:"minTimeInMinutes"`
	MaxTimeMinutes int             `json:"maxTimeInMinutes"`
	NumFakeUsers   int             `json:"numberOfFakeUsers"`
	Personas       []string        `json:"personas"`
	Decoy          *domain.Profile `json:"underDuressAccount,omitempty"`
}

type switchResponse struct {
	Token string         `json:"token"`
	User  domain.Profile `json:"user"`
}

// GetSettings handles GET /v1/duress/settings.
//
// @Summary      Get duress settings
// @Tags         duress
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  settingsResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/duress/settings [get]
func (h *DuressHandler) GetSettings(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	view, err := h.service.GetSettings(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, settingsResponse{
		ShowTimestamps: view.ShowTimestamps,
		MinTimeMinutes: view.MinTimeMinutes,
		MaxTimeMinutes: view.MaxTimeMinutes,
		NumFakeUsers:   view.NumFakeUsers,
		Personas:       view.Personas,
		Decoy:          view.Decoy,
	})
}

// UpdateSettings handles PUT /v1/duress/settings.
//
// @Summary      Update duress settings, optionally provisioning the decoy
// @Tags         duress
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateSettingsRequest  true  "Settings payload"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/duress/settings [put]
func (h *DuressHandler) UpdateSettings(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	in := ports.UpdateSettingsInput{
		ShowTimestamps: req.ShowTimestamps,
		MinTimeMinutes: req.MinTimeMinutes,
		MaxTimeMinutes: req.MaxTimeMinutes,
		NumFakeUsers:   req.NumFakeUsers,
		Personas:       req.Personas,
	}
	if req.Decoy != nil {
		in.Decoy = &ports.DecoyCredentials{
			Username: req.Decoy.Username,
			Email:    req.Decoy.Email,
			Password: req.Decoy.Password,
		}
	}

	if err := h.service.UpdateSettings(c.Request().Context(), ownerID, in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "settings updated"})
}

// Switch handles POST /v1/duress/switch.
//
// @Summary      Switch the session to the decoy account
// @Tags         duress
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  switchResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/duress/switch [post]
func (h *DuressHandler) Switch(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	result, err := h.service.Switch(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}

	metrics.DuressSwitchesTotal.Inc()
	return c.JSON(http.StatusOK, switchResponse{Token: result.Token, User: result.Decoy})
}

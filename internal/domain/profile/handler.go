package profile

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medfatt/medfatt/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "billing"))
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.SaveProfile)
}

func issuerFromContext(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing issuer identity")
	}
	return id, nil
}

func (h *Handler) GetProfile(c echo.Context) error {
	issuerID, err := issuerFromContext(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), issuerID)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "fiscal profile not configured")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) SaveProfile(c echo.Context) error {
	issuerID, err := issuerFromContext(c)
	if err != nil {
		return err
	}
	var p FiscalProfile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.IssuerID = issuerID
	if err := h.svc.Save(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

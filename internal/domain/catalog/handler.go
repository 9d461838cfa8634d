package catalog

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medfatt/medfatt/internal/platform/auth"
	"github.com/medfatt/medfatt/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "billing"))
	g.GET("/services", h.ListServices)
	g.POST("/services", h.CreateService)
	g.DELETE("/services/:id", h.RetireService)
}

func issuerFromContext(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing issuer identity")
	}
	return id, nil
}

func (h *Handler) ListServices(c echo.Context) error {
	issuerID, err := issuerFromContext(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	activeOnly := c.QueryParam("active") == "true"

	items, total, err := h.svc.List(c.Request().Context(), issuerID, activeOnly, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreateService(c echo.Context) error {
	issuerID, err := issuerFromContext(c)
	if err != nil {
		return err
	}
	var svc BillableService
	if err := c.Bind(&svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	svc.IssuerID = issuerID
	if err := h.svc.Create(c.Request().Context(), &svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, svc)
}

func (h *Handler) RetireService(c echo.Context) error {
	issuerID, err := issuerFromContext(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Retire(c.Request().Context(), issuerID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "service not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

package invoice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medfatt/medfatt/internal/domain/profile"
	"github.com/medfatt/medfatt/internal/platform/auth"
	"github.com/medfatt/medfatt/internal/platform/sdi"
	"github.com/medfatt/medfatt/pkg/pagination"
)

// ProfileStore is the slice of the profile service the handler needs to load
// the issuer's fiscal configuration per request.
type ProfileStore interface {
	Get(ctx context.Context, issuerID uuid.UUID) (*profile.FiscalProfile, error)
}

type Handler struct {
	svc      *Service
	profiles ProfileStore
}

func NewHandler(svc *Service, profiles ProfileStore) *Handler {
	return &Handler{svc: svc, profiles: profiles}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "billing"))
	g.POST("/invoices", h.CreateInvoice)
	g.GET("/invoices", h.ListInvoices)
	g.GET("/invoices/:id", h.GetInvoice)
	g.PATCH("/invoices/:id/status", h.UpdateStatus)
	g.POST("/invoices/:id/duplicate", h.DuplicateInvoice)
	g.GET("/invoices/:id/xml", h.DownloadXML)
}

func issuerFromContext(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing issuer identity")
	}
	return id, nil
}

// httpError maps the domain error taxonomy onto HTTP statuses.
func httpError(err error) error {
	var (
		valErr    *ValidationError
		svcErr    *UnknownServiceError
		transErr  *InvalidTransitionError
		structErr *sdi.StructureError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "invoice not found")
	case errors.As(err, &valErr):
		return echo.NewHTTPError(http.StatusBadRequest, valErr.Error())
	case errors.As(err, &svcErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, svcErr.Error())
	case errors.As(err, &transErr):
		return echo.NewHTTPError(http.StatusConflict, transErr.Error())
	case errors.Is(err, ErrSequenceConflict):
		return echo.NewHTTPError(http.StatusConflict, "invoice numbering contention, retry the request")
	case errors.Is(err, ErrStoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "record store unavailable")
	case errors.As(err, &structErr):
		return echo.NewHTTPError(http.StatusInternalServerError, structErr.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (h *Handler) loadProfile(c echo.Context, issuerID uuid.UUID) (*profile.FiscalProfile, error) {
	prof, err := h.profiles.Get(c.Request().Context(), issuerID)
	if errors.Is(err, profile.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusPreconditionFailed, "fiscal profile not configured")
	}
	if err != nil {
		return nil, httpError(err)
	}
	return prof, nil
}

type createRequest struct {
	ClientID      uuid.UUID   `json:"client_id"`
	Lines         []LineInput `json:"lines"`
	IssueDate     string      `json:"issue_date,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	Note          string      `json:"note,omitempty"`
}

func (h *Handler) CreateInvoice(c echo.Context) error {
	issuerID, err := issuerFromContext(c)
	if err != nil {
		return err
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var issueDate time.Time
	if req.IssueDate != "" {
		issueDate, err = time.Parse("2006-01-02", req.IssueDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "issue_date must be YYYY-MM-DD")
		}
	}

	prof, err := h.loadProfile(c, issuerID)
	if err != nil {
		return err
	}

	inv, err := h.svc.Create(c.Request().Context(), issuerID, CreateInput{
		ClientID:      req.ClientID,
		Lines:         req.Lines,
		IssueDate:     issueDate,
		PaymentMethod: PaymentMethod(req.PaymentMethod),
		Note:          req.Note,
	}, prof)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, inv)
}

func (h *Handler) ListInvoices(c echo.Context) error {
	issuerID, err := issuerFromContext(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	year, _ := strconv.Atoi(c.QueryParam("year"))

	items, total, err := h.svc.List(c.Request().Context(), issuerID, year, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetInvoice(c echo.Context) error {
	issuerID, err := issuerFromContext(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	inv, err := h.svc.Get(c.Request().Context(), issuerID, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, inv)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	issuerID, err := issuerFromContext(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	inv, err := h.svc.UpdateStatus(c.Request().Context(), issuerID, id, Status(req.Status))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) DuplicateInvoice(c echo.Context) error {
	issuerID, err := issuerFromContext(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	dup, err := h.svc.Duplicate(c.Request().Context(), issuerID, id, time.Now())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dup)
}

func (h *Handler) DownloadXML(c echo.Context) error {
	issuerID, err := issuerFromContext(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	prof, err := h.loadProfile(c, issuerID)
	if err != nil {
		return err
	}

	data, filename, err := h.svc.RenderDocument(c.Request().Context(), issuerID, id, prof)
	if err != nil {
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/xml", data)
}

package eligibility

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/picker/internal/domain/reference"
	"github.com/ehr/picker/internal/domain/selection"
)

type storeLoader interface {
	Load(ctx context.Context) *reference.Store
}

// Handler exposes stateless filtering: each request loads a fresh reference
// snapshot and evaluates the posted selection against it.
type Handler struct {
	engine *Engine
	loader storeLoader
}

// NewHandler builds the stateless endpoints. Every request calls
// loader.Load, so pass a *reference.Snapshot (or a loader over a cached
// source) rather than a bare *reference.Loader to avoid fetching all three
// collections per keystroke.
func NewHandler(engine *Engine, loader storeLoader) *Handler {
	return &Handler{engine: engine, loader: loader}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/eligibility")
	g.GET("/cities", h.Cities)
	g.POST("/specialties", h.Specialties)
	g.POST("/doctors", h.Doctors)
	g.POST("/synchronize", h.Synchronize)
}

func bindSelection(c echo.Context) (selection.Selection, error) {
	var sel selection.Selection
	if err := c.Bind(&sel); err != nil {
		return sel, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if _, ok := reference.ParseGender(string(sel.Sex)); !ok {
		return sel, echo.NewHTTPError(http.StatusBadRequest, "sex must be \"Male\", \"Female\" or empty")
	}
	return sel, nil
}

func (h *Handler) Cities(c echo.Context) error {
	store := h.loader.Load(c.Request().Context())
	return c.JSON(http.StatusOK, h.engine.Cities(store))
}

func (h *Handler) Specialties(c echo.Context) error {
	sel, err := bindSelection(c)
	if err != nil {
		return err
	}
	store := h.loader.Load(c.Request().Context())
	return c.JSON(http.StatusOK, h.engine.Specialties(sel, store))
}

func (h *Handler) Doctors(c echo.Context) error {
	sel, err := bindSelection(c)
	if err != nil {
		return err
	}
	store := h.loader.Load(c.Request().Context())
	return c.JSON(http.StatusOK, h.engine.Doctors(sel, store))
}

func (h *Handler) Synchronize(c echo.Context) error {
	sel, err := bindSelection(c)
	if err != nil {
		return err
	}
	store := h.loader.Load(c.Request().Context())
	return c.JSON(http.StatusOK, selection.Synchronize(sel, store))
}

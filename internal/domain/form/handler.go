package form

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	ctrl *Controller
}

func NewHandler(ctrl *Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/forms")
	g.POST("", h.Open)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Close)
	g.PATCH("/:id/fields/:field", h.Change)
	g.POST("/:id/touch/:field", h.Touch)
	g.POST("/:id/reload", h.Reload)
	g.POST("/:id/reset", h.Reset)
	g.POST("/:id/submit", h.Submit)
}

type changeRequest struct {
	Value string `json:"value"`
}

// httpError maps controller errors onto HTTP status codes.
func httpError(err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
			"message": "validation failed",
			"errors":  verr.Fields,
		})
	case errors.Is(err, ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnknownField), errors.Is(err, ErrInvalidValue):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSubmitFailed):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// Open handles POST /forms.
func (h *Handler) Open(c echo.Context) error {
	view, err := h.ctrl.Open(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	c.Set("form_id", view.ID)
	return c.JSON(http.StatusCreated, view)
}

// Get handles GET /forms/:id.
func (h *Handler) Get(c echo.Context) error {
	c.Set("form_id", c.Param("id"))
	view, err := h.ctrl.Get(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// Change handles PATCH /forms/:id/fields/:field.
func (h *Handler) Change(c echo.Context) error {
	c.Set("form_id", c.Param("id"))
	var req changeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	view, err := h.ctrl.Change(c.Param("id"), c.Param("field"), req.Value)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// Touch handles POST /forms/:id/touch/:field.
func (h *Handler) Touch(c echo.Context) error {
	c.Set("form_id", c.Param("id"))
	view, err := h.ctrl.Touch(c.Param("id"), c.Param("field"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// Reload handles POST /forms/:id/reload.
func (h *Handler) Reload(c echo.Context) error {
	c.Set("form_id", c.Param("id"))
	view, err := h.ctrl.Reload(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// Reset handles POST /forms/:id/reset.
func (h *Handler) Reset(c echo.Context) error {
	c.Set("form_id", c.Param("id"))
	view, err := h.ctrl.Reset(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// Submit handles POST /forms/:id/submit.
func (h *Handler) Submit(c echo.Context) error {
	c.Set("form_id", c.Param("id"))
	sub, err := h.ctrl.Submit(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusAccepted, sub)
}

// Close handles DELETE /forms/:id.
func (h *Handler) Close(c echo.Context) error {
	c.Set("form_id", c.Param("id"))
	if err := h.ctrl.Close(c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

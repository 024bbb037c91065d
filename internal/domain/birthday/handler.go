package birthday

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	nowFn func() time.Time
}

func NewHandler(nowFn func() time.Time) *Handler {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Handler{nowFn: nowFn}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/birthday/normalize", h.Normalize)
}

// NormalizeResponse is the result of formatting one raw input.
type NormalizeResponse struct {
	Value    string `json:"value"`
	Complete bool   `json:"complete"`
	Age      *int   `json:"age,omitempty"`
}

// Describe normalizes raw and, when the result is a full date, adds the age.
func Describe(raw string, now time.Time) NormalizeResponse {
	resp := NormalizeResponse{Value: Normalize(raw, now)}
	resp.Complete = Complete(resp.Value)
	if !resp.Complete {
		return resp
	}
	if age, err := AgeInYears(resp.Value, now); err == nil {
		resp.Age = &age
	}
	return resp
}

func (h *Handler) Normalize(c echo.Context) error {
	return c.JSON(http.StatusOK, Describe(c.QueryParam("value"), h.nowFn()))
}

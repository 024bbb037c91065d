package reference

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// StoreLoader produces a fresh Store; *Loader satisfies it.
type StoreLoader interface {
	Load(ctx context.Context) *Store
}

type Handler struct {
	loader StoreLoader
}

func NewHandler(loader StoreLoader) *Handler {
	return &Handler{loader: loader}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reference/status", h.Status)
	api.GET("/reference/:collection", h.GetCollection)
}

// -- REST Endpoints --

func (h *Handler) GetCollection(c echo.Context) error {
	coll, ok := ParseCollection(c.Param("collection"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown collection")
	}

	store := h.loader.Load(c.Request().Context())
	if f := store.Failure(coll); f != nil {
		return echo.NewHTTPError(http.StatusBadGateway, f.Error())
	}

	switch coll {
	case CollectionCities:
		return c.JSON(http.StatusOK, nonNil(store.Cities))
	case CollectionSpecialties:
		return c.JSON(http.StatusOK, nonNil(store.Specialties))
	default:
		return c.JSON(http.StatusOK, nonNil(store.Doctors))
	}
}

type collectionStatus struct {
	Collection Collection `json:"collection"`
	Loaded     bool       `json:"loaded"`
	Count      int        `json:"count"`
	Error      string     `json:"error,omitempty"`
}

// Status reports per-collection load outcome without failing the request.
func (h *Handler) Status(c echo.Context) error {
	store := h.loader.Load(c.Request().Context())
	counts := map[Collection]int{
		CollectionCities:      len(store.Cities),
		CollectionSpecialties: len(store.Specialties),
		CollectionDoctors:     len(store.Doctors),
	}

	out := make([]collectionStatus, 0, len(Collections))
	for _, coll := range Collections {
		st := collectionStatus{Collection: coll, Loaded: true, Count: counts[coll]}
		if f := store.Failure(coll); f != nil {
			st.Loaded = false
			st.Error = f.Error()
		}
		out = append(out, st)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"loaded_at":   store.LoadedAt,
		"collections": out,
	})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

package reference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type staticLoader struct{ store *Store }

func (l staticLoader) Load(ctx context.Context) *Store { return l.store }

func newTestHandler(store *Store) (*Handler, *echo.Echo) {
	return NewHandler(staticLoader{store: store}), echo.New()
}

func TestHandler_GetCollection(t *testing.T) {
	h, e := newTestHandler(testStore())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("collection")
	c.SetParamValues("doctors")

	if err := h.GetCollection(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var doctors []Doctor
	if err := json.Unmarshal(rec.Body.Bytes(), &doctors); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doctors) != 3 {
		t.Errorf("expected 3 doctors, got %d", len(doctors))
	}
}

func TestHandler_GetCollection_Failed(t *testing.T) {
	src := newFakeSource()
	src.citiesErr = errors.New("timeout")
	store := NewLoader(src, nopLogger()).Load(context.Background())
	h, e := newTestHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("collection")
	c.SetParamValues("cities")

	err := h.GetCollection(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", he.Code)
	}
	if he.Message != "Cities error: timeout" {
		t.Errorf("unexpected message: %v", he.Message)
	}
}

func TestHandler_GetCollection_Unknown(t *testing.T) {
	h, e := newTestHandler(testStore())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("collection")
	c.SetParamValues("patients")

	err := h.GetCollection(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_GetCollection_EmptyIsArray(t *testing.T) {
	h, e := newTestHandler(&Store{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("collection")
	c.SetParamValues("cities")

	if err := h.GetCollection(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("expected empty array, got %q", got)
	}
}

func TestHandler_Status(t *testing.T) {
	store := testStore()
	store.Doctors = nil
	store.Failures = map[Collection]*FetchFailure{CollectionDoctors: {Collection: CollectionDoctors, Detail: "down"}}
	h, e := newTestHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reference/status", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Status(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Collections []collectionStatus `json:"collections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body.Collections) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(body.Collections))
	}
	doctors := body.Collections[2]
	if doctors.Loaded || doctors.Error != "Doctors error: down" {
		t.Errorf("unexpected doctors status: %+v", doctors)
	}
	if !body.Collections[0].Loaded || body.Collections[0].Count != 2 {
		t.Errorf("unexpected cities status: %+v", body.Collections[0])
	}
}

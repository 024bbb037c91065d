package eligibility

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ehr/picker/internal/domain/reference"
	"github.com/ehr/picker/internal/domain/selection"
)

type staticLoader struct{ store *reference.Store }

func (l staticLoader) Load(ctx context.Context) *reference.Store { return l.store }

func newTestHandler() (*Handler, *echo.Echo) {
	return NewHandler(newTestEngine(), staticLoader{store: springfieldStore()}), echo.New()
}

func postJSON(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_Doctors(t *testing.T) {
	h, e := newTestHandler()
	c, rec := postJSON(e, `{"city":"Springfield","specialty":"Cardiology","birthday":"01/01/2015"}`)

	if err := h.Doctors(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var opts DoctorOptions
	if err := json.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts.Items) != 1 || opts.Items[0].ID != 1 {
		t.Errorf("expected only doctor 1, got %+v", opts.Items)
	}
}

func TestHandler_Specialties(t *testing.T) {
	h, e := newTestHandler()
	c, rec := postJSON(e, `{"sex":"Female"}`)

	if err := h.Specialties(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var opts struct {
		State State `json:"state"`
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts.Items) != 2 || opts.Items[1].Name != "Gynecology" {
		t.Errorf("expected Cardiology and Gynecology, got %+v", opts.Items)
	}
}

func TestHandler_Synchronize(t *testing.T) {
	h, e := newTestHandler()
	c, rec := postJSON(e, `{"doctor":"Bob","city":"Shelbyville","specialty":"Urology"}`)

	if err := h.Synchronize(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sel selection.Selection
	if err := json.Unmarshal(rec.Body.Bytes(), &sel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.City != "Springfield" || sel.Specialty != "Cardiology" {
		t.Errorf("expected Springfield/Cardiology, got %q/%q", sel.City, sel.Specialty)
	}
}

func TestHandler_InvalidSex(t *testing.T) {
	h, e := newTestHandler()
	c, _ := postJSON(e, `{"sex":"other"}`)

	err := h.Specialties(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Cities(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := h.Cities(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"state":"ready"`) {
		t.Errorf("expected ready state, got %s", rec.Body.String())
	}
}

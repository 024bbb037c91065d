package reference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnexpectedStatus is wrapped when an upstream answers with a non-2xx code.
var ErrUnexpectedStatus = errors.New("request failed")

// Endpoints holds the upstream URL of each collection.
type Endpoints struct {
	Cities      string
	Specialties string
	Doctors     string
}

// HTTPSource reads the collections from JSON endpoints that return a bare
// array per collection.
type HTTPSource struct {
	endpoints  Endpoints
	httpClient *http.Client
}

type HTTPSourceOption func(*HTTPSource)

func WithHTTPClient(c *http.Client) HTTPSourceOption {
	return func(s *HTTPSource) { s.httpClient = c }
}

func NewHTTPSource(endpoints Endpoints, timeout time.Duration, opts ...HTTPSourceOption) *HTTPSource {
	s := &HTTPSource{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPSource) Cities(ctx context.Context) ([]City, error) {
	var out []City
	if err := s.getJSON(ctx, s.endpoints.Cities, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPSource) Specialties(ctx context.Context) ([]Specialty, error) {
	var out []Specialty
	if err := s.getJSON(ctx, s.endpoints.Specialties, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPSource) Doctors(ctx context.Context) ([]Doctor, error) {
	var out []Doctor
	if err := s.getJSON(ctx, s.endpoints.Doctors, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, url string, out interface{}) error {
	if url == "" {
		return errors.New("no endpoint configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w with status code %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

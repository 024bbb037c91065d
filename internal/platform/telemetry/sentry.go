package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// ReporterConfig configures the Sentry client.
type ReporterConfig struct {
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
}

// Reporter sends errors to Sentry. A nil *Reporter is valid and drops
// everything, which is what NewReporter returns when no DSN is set.
type Reporter struct {
	hub *sentry.Hub
}

func NewReporter(cfg ReporterConfig) (*Reporter, error) {
	if cfg.DSN == "" {
		return nil, nil
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		SampleRate:  cfg.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry initialization failed: %w", err)
	}
	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// CaptureError reports err with the given tags.
func (r *Reporter) CaptureError(err error, tags map[string]string) {
	if r == nil || err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		r.hub.CaptureException(err)
	})
}

// ObserveFetch reports failed reference fetches.
func (r *Reporter) ObserveFetch(collection string, took time.Duration, err error) {
	if err == nil {
		return
	}
	r.CaptureError(err, map[string]string{
		"component":  "reference.fetch",
		"collection": collection,
		"took":       took.String(),
	})
}

// Flush waits for buffered events to be sent.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if r == nil {
		return true
	}
	return r.hub.Flush(timeout)
}

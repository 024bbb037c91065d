package telemetry

import (
	"errors"
	"testing"
	"time"
)

func TestNewReporter_NoDSN(t *testing.T) {
	r, err := NewReporter(ReporterConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != nil {
		t.Fatal("expected nil reporter without DSN")
	}

	// A nil reporter must be safe to use.
	r.CaptureError(errors.New("ignored"), nil)
	r.ObserveFetch("cities", time.Millisecond, errors.New("ignored"))
	if !r.Flush(time.Millisecond) {
		t.Error("expected nil reporter flush to succeed")
	}
}

func TestNewReporter_InvalidDSN(t *testing.T) {
	if _, err := NewReporter(ReporterConfig{DSN: "not a dsn"}); err == nil {
		t.Error("expected error for malformed DSN")
	}
}

func TestNewReporter_ValidDSN(t *testing.T) {
	r, err := NewReporter(ReporterConfig{DSN: "https://public@sentry.example.com/1", Environment: "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r == nil {
		t.Fatal("expected reporter")
	}
	r.ObserveFetch("doctors", time.Millisecond, nil)
}

package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type fakePublisher struct {
	key, value []byte
	err        error
}

func (p *fakePublisher) Publish(ctx context.Context, key, value []byte) error {
	if p.err != nil {
		return p.err
	}
	p.key, p.value = key, value
	return nil
}

func TestLogSubmitter_LogsValues(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSubmitter(zerolog.New(&buf))

	err := s.Submit(context.Background(), Submission{ID: "sub-1", Selection: validSelection()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"submission_id":"sub-1"`) || !strings.Contains(out, `"city":"Springfield"`) {
		t.Errorf("expected submission fields in log, got %s", out)
	}
}

func TestPublishSubmitter_EncodesJSON(t *testing.T) {
	pub := &fakePublisher{}
	s := NewPublishSubmitter(pub)

	sub := Submission{ID: "sub-2", FormID: "form-1", Selection: validSelection(), SubmittedAt: testNow}
	if err := s.Submit(context.Background(), sub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(pub.key) != "sub-2" {
		t.Errorf("expected key sub-2, got %q", pub.key)
	}
	var decoded Submission
	if err := json.Unmarshal(pub.value, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Selection.Name != "Pat" || decoded.FormID != "form-1" {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestPublishSubmitter_WrapsError(t *testing.T) {
	pub := &fakePublisher{err: errUpstream}
	err := NewPublishSubmitter(pub).Submit(context.Background(), Submission{ID: "x"})
	if !errors.Is(err, errUpstream) {
		t.Errorf("expected wrapped publisher error, got %v", err)
	}
}

package form

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/picker/internal/domain/selection"
)

// Submission is the snapshot handed to a Submitter when a valid form is sent.
type Submission struct {
	ID          string              `json:"id"`
	FormID      string              `json:"form_id"`
	Selection   selection.Selection `json:"selection"`
	SubmittedAt time.Time           `json:"submitted_at"`
}

// Submitter delivers a submission. Implementations must not retain the
// Submission beyond the call.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) error
}

// LogSubmitter writes submissions to the log and nothing else.
type LogSubmitter struct {
	logger zerolog.Logger
}

func NewLogSubmitter(logger zerolog.Logger) *LogSubmitter {
	return &LogSubmitter{logger: logger}
}

func (s *LogSubmitter) Submit(_ context.Context, sub Submission) error {
	sel := sub.Selection
	s.logger.Info().
		Str("submission_id", sub.ID).
		Str("form_id", sub.FormID).
		Str("name", sel.Name).
		Str("birthday", sel.Birthday).
		Str("sex", string(sel.Sex)).
		Str("city", sel.City).
		Str("specialty", sel.Specialty).
		Str("doctor", sel.Doctor).
		Str("email", sel.Email).
		Str("mobile", sel.Mobile).
		Msg("appointment request submitted")
	return nil
}

// Publisher sends one keyed message to a topic.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// PublishSubmitter encodes submissions as JSON and publishes them keyed by
// submission id.
type PublishSubmitter struct {
	pub Publisher
}

func NewPublishSubmitter(pub Publisher) *PublishSubmitter {
	return &PublishSubmitter{pub: pub}
}

func (s *PublishSubmitter) Submit(ctx context.Context, sub Submission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	if err := s.pub.Publish(ctx, []byte(sub.ID), payload); err != nil {
		return fmt.Errorf("publish submission %s: %w", sub.ID, err)
	}
	return nil
}

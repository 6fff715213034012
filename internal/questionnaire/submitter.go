// Package questionnaire turns a filled-in form into a prediction request and
// presents the outcome as either a result dialog or an error notification.
package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aidetect/internal/features"
	"aidetect/internal/logging"
	"aidetect/pkg/models"
)

const (
	// ResultTitle heads every result dialog.
	ResultTitle = "Analysis Result"
	// NormalCondition is shown, without asking the service, for an empty form.
	NormalCondition = "Normal Condition 🟢"
)

// ErrSubmission marks every error returned by Submit.
var ErrSubmission = errors.New("submission failed")

// Predictor is the remote prediction call.
type Predictor interface {
	Predict(ctx context.Context, v features.Vector) (string, error)
}

// Recorder stores completed submissions.
type Recorder interface {
	Record(ctx context.Context, s models.Submission) error
}

// Result is the content of the result dialog.
type Result struct {
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Prediction string          `json:"prediction,omitempty"`
	Vector     features.Vector `json:"-"`
	Remote     bool            `json:"remote"`
}

// Notification is a dismissible error toast.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// SubmissionError wraps a failed prediction call. The form is left intact
// so the user can submit again.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSubmission, e.Err)
}

func (e *SubmissionError) Unwrap() []error {
	return []error{ErrSubmission, e.Err}
}

// Notification renders the error as a toast.
func (e *SubmissionError) Notification() Notification {
	return Notification{
		Title:       "Error",
		Description: "Could not connect to the server: " + e.Err.Error(),
		Variant:     "destructive",
	}
}

// Submitter encodes forms and sends them to a Predictor.
type Submitter struct {
	client   Predictor
	schema   *features.Schema
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithSchema sets the feature schema. Defaults to features.DefaultSchema.
func WithSchema(s *features.Schema) Option {
	return func(sub *Submitter) { sub.schema = s }
}

// WithRecorder stores successful remote predictions.
func WithRecorder(r Recorder) Option {
	return func(sub *Submitter) { sub.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(sub *Submitter) { sub.logger = l }
}

// NewSubmitter creates a submitter that predicts through client.
func NewSubmitter(client Predictor, opts ...Option) *Submitter {
	s := &Submitter{
		client: client,
		schema: features.DefaultSchema(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

// Submit predicts for form. An entirely empty form short-circuits to the
// normal-condition result without a network call. A non-empty form whose
// answers match no label is still sent, as an all-zero vector.
func (s *Submitter) Submit(ctx context.Context, form models.FormState) (Result, error) {
	if form.Empty() {
		s.logger.Info("Empty form, skipping prediction request")
		return Result{
			Title:   ResultTitle,
			Message: "Predicted Disease: " + NormalCondition,
		}, nil
	}

	vector := features.Encode(s.schema, form)
	labels := vector.Ones()
	s.logger.Debug("Encoded form", zap.Strings("labels", labels))

	prediction, err := s.client.Predict(ctx, vector)
	if err != nil {
		s.logger.Error("Prediction request failed", zap.Error(err))
		return Result{}, &SubmissionError{Err: err}
	}

	if s.recorder != nil {
		sub := models.Submission{
			ID:         uuid.NewString(),
			Form:       form,
			Labels:     labels,
			Vector:     vector.Floats(),
			Prediction: prediction,
			RecordedAt: s.now().UTC(),
		}
		if err := s.recorder.Record(ctx, sub); err != nil {
			s.logger.Warn("Failed to record submission", zap.String("id", sub.ID), zap.Error(err))
		}
	}

	return Result{
		Title:      ResultTitle,
		Message:    "Predicted Disease: " + prediction,
		Prediction: prediction,
		Vector:     vector,
		Remote:     true,
	}, nil
}

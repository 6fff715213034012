package questionnaire

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aidetect/pkg/models"
)

// Batch submits forms with at most workers in flight and returns one result
// per form, in input order. A failed submission is reported in its result
// and does not stop the batch. Once ctx is done, forms not yet submitted
// are reported with the context error.
func (s *Submitter) Batch(ctx context.Context, forms []models.FormState, workers int) []models.BatchResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]models.BatchResult, len(forms))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, form := range forms {
		job := models.BatchJob{Index: i, Form: form}
		g.Go(func() error {
			results[job.Index] = s.submitJob(ctx, job)
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Warn("Batch interrupted", zap.Error(err))
	}

	var failed int
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	s.logger.Info("Batch complete",
		zap.Int("forms", len(forms)), zap.Int("failed", failed), zap.Int("workers", workers))
	return results
}

func (s *Submitter) submitJob(ctx context.Context, job models.BatchJob) models.BatchResult {
	out := models.BatchResult{Index: job.Index}
	if err := ctx.Err(); err != nil {
		out.Error = err.Error()
		return out
	}

	s.logger.Debug("Submitting form", zap.Int("index", job.Index))
	res, err := s.Submit(ctx, job.Form)
	out.Title = res.Title
	out.Message = res.Message
	out.Prediction = res.Prediction
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

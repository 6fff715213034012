package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aidetect/internal/availability"
	"aidetect/internal/features"
	"aidetect/internal/questionnaire"
)

var (
	predictForm formFlags
	predictFile string
	predictWait bool
	predictJSON bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Submit questionnaire answers and print the predicted condition",
	Long: `Encodes the answers as the service's 62-label feature vector and posts it.
Answers that match no label are dropped. With no answers at all the result is
"Normal Condition" and nothing is sent.

Example:
  aidetect predict --age 40+ --gender Male --symptom Headache
  aidetect predict --file forms.yaml`,
	RunE: runPredict,
}

func init() {
	predictForm.bind(predictCmd)
	predictCmd.Flags().StringVarP(&predictFile, "file", "f", "", "YAML/JSON file with one form or a list of forms")
	predictCmd.Flags().BoolVar(&predictWait, "wait", false, "Wake the service and wait until it is online first")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Print results as JSON")
}

func runPredict(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := newClient(logger)

	if predictWait {
		monitor := availability.New(client,
			availability.WithInterval(cfg.RetryInterval),
			availability.WithLogger(logger),
		)
		if err := waitOnline(ctx, cmd, monitor); err != nil {
			return err
		}
	}

	opts := []questionnaire.Option{
		questionnaire.WithSchema(features.DefaultSchema()),
		questionnaire.WithLogger(logger),
	}
	if cfg.HistoryEnabled() {
		history, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer history.Close()
		opts = append(opts, questionnaire.WithRecorder(history))
	}
	submitter := questionnaire.NewSubmitter(client, opts...)

	if predictFile != "" {
		return runBatch(ctx, cmd, submitter)
	}

	result, err := submitter.Submit(ctx, predictForm.form)
	if err != nil {
		var subErr *questionnaire.SubmissionError
		if errors.As(err, &subErr) {
			n := subErr.Notification()
			return fmt.Errorf("%s: %s", n.Title, n.Description)
		}
		return err
	}

	if predictJSON {
		return printJSON(cmd, result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", result.Title, result.Message)
	return nil
}

func runBatch(ctx context.Context, cmd *cobra.Command, submitter *questionnaire.Submitter) error {
	forms, err := loadForms(predictFile)
	if err != nil {
		return err
	}
	if len(forms) == 0 {
		return fmt.Errorf("no forms found in %s", predictFile)
	}
	logger.Info("Submitting forms", zap.Int("count", len(forms)), zap.Int("workers", cfg.Batch.Workers))

	results := submitter.Batch(ctx, forms, cfg.Batch.Workers)
	if predictJSON {
		return printJSON(cmd, results)
	}

	var failed int
	for _, r := range results {
		if r.Error != "" {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "#%d  error: %s\n", r.Index+1, r.Error)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "#%d  %s\n", r.Index+1, r.Message)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d submissions failed", failed, len(results))
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aidetect/internal/features"
	"aidetect/internal/storage"
)

var (
	historyForm  formFlags
	historyLimit uint64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded predictions (requires QDRANT_HOST)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if !cfg.HistoryEnabled() {
			return fmt.Errorf("history is disabled: set qdrant.host or QDRANT_HOST")
		}
		return nil
	},
}

var historySimilarCmd = &cobra.Command{
	Use:   "similar",
	Short: "Find recorded predictions for answers like these",
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer history.Close()

		vector := features.Encode(features.DefaultSchema(), historyForm.form)
		matches, err := history.Similar(cmd.Context(), vector.Floats(), historyLimit)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recorded predictions.")
			return nil
		}
		for _, m := range matches {
			fmt.Fprintf(cmd.OutOrStdout(), "%.3f  %-24s  %s  [%s]\n",
				m.Score, m.Prediction, m.RecordedAt, strings.Join(m.Labels, ", "))
		}
		return nil
	},
}

var historyCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of recorded predictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer history.Close()

		n, err := history.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every recorded prediction",
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer history.Close()

		matches, err := history.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recorded predictions.")
			return nil
		}
		for _, m := range matches {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-24s  %s  [%s]\n",
				m.ID, m.Prediction, m.RecordedAt, strings.Join(m.Labels, ", "))
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Remove a recorded prediction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer history.Close()

		point, err := history.GetPoint(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if point == nil {
			return fmt.Errorf("no recorded prediction with id %s", args[0])
		}
		if err := history.DeletePoint(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", args[0], point.Prediction)
		return nil
	},
}

func init() {
	historyForm.bind(historySimilarCmd)
	historySimilarCmd.Flags().Uint64Var(&historyLimit, "limit", 5, "Maximum matches to print")

	historyCmd.AddCommand(historySimilarCmd, historyListCmd, historyCountCmd, historyDeleteCmd)
}

// openHistory connects to Qdrant and makes sure the collection exists.
func openHistory(ctx context.Context) (*storage.Service, error) {
	logger.Info("Connecting to Qdrant", zap.String("host", cfg.Qdrant.Host), zap.Int("port", cfg.Qdrant.Port))
	svc, err := storage.NewService(cfg.Qdrant.Host, cfg.Qdrant.Port, features.DefaultSchema().Len())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage service: %w", err)
	}
	if err := svc.InitializeCollection(ctx); err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}

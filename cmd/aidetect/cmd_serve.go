package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aidetect/internal/availability"
	"aidetect/internal/features"
	"aidetect/internal/questionnaire"
	"aidetect/internal/webapp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the landing page and questionnaire as a local JSON API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting server",
		zap.String("endpoint", cfg.Endpoint),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("retry_interval", cfg.RetryInterval),
		zap.Bool("history", cfg.HistoryEnabled()),
	)

	client := newClient(logger)
	schema := features.DefaultSchema()

	// Landing page and questionnaire each keep their own poll.
	monitor := availability.New(client,
		availability.WithInterval(cfg.RetryInterval),
		availability.WithLogger(logger.Named("landing")),
	)
	watcher := availability.NewWatcher(client,
		availability.WithInterval(cfg.RetryInterval),
		availability.WithLogger(logger.Named("questionnaire")),
	)

	subOpts := []questionnaire.Option{
		questionnaire.WithSchema(schema),
		questionnaire.WithLogger(logger),
	}
	serverCfg := webapp.Config{
		Monitor: monitor,
		Watcher: watcher,
		Schema:  schema,
		Catalog: features.DefaultCatalog(),
		APIKey:  cfg.Server.APIKey,
		Logger:  logger,
	}
	if cfg.HistoryEnabled() {
		history, err := openHistory(ctx)
		if err != nil {
			return err
		}
		defer history.Close()
		subOpts = append(subOpts, questionnaire.WithRecorder(history))
		serverCfg.History = history
	}
	serverCfg.Submitter = questionnaire.NewSubmitter(client, subOpts...)

	go monitor.Start(ctx)
	go watcher.Start(ctx)

	server := webapp.NewServer(serverCfg)
	return webapp.Run(ctx, fmt.Sprintf(":%d", cfg.Server.Port), server.Routes(), logger)
}

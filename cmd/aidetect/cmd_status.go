package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aidetect/internal/availability"
	"aidetect/internal/tui"
)

var statusPlain bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Wake the prediction service and wait until its model is loaded",
	Long: `Sends the wake-up call, then checks the status endpoint at a fixed interval
until the service reports "online". A failed wake-up call ends the run with an error.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusPlain, "plain", false, "Log state changes instead of drawing the indicator")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if statusPlain {
		monitor := availability.New(newClient(logger),
			availability.WithInterval(cfg.RetryInterval),
			availability.WithLogger(logger),
		)
		return waitOnline(ctx, cmd, monitor)
	}

	// The indicator owns the terminal; keep logs out of it.
	monitor := availability.New(newClient(nil), availability.WithInterval(cfg.RetryInterval))
	updates := monitor.Subscribe()
	go monitor.Start(ctx)

	final, err := tea.NewProgram(tui.NewStatusModel(updates), tea.WithContext(ctx)).Run()
	if err != nil {
		return indicatorError(ctx, err)
	}
	if m, ok := final.(tui.StatusModel); ok && m.Aborted() {
		return context.Canceled
	}
	return reportMonitor(cmd, monitor)
}

// indicatorError reports a cancelled run as the context error rather than
// as a killed program.
func indicatorError(ctx context.Context, err error) error {
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("status indicator: %w", err)
}

func waitOnline(ctx context.Context, cmd *cobra.Command, monitor *availability.Monitor) error {
	go monitor.Start(ctx)

	select {
	case <-monitor.Done():
	case <-ctx.Done():
		logger.Warn("Stopped waiting for server", zap.Stringer("state", monitor.State()))
		return ctx.Err()
	}
	return reportMonitor(cmd, monitor)
}

func reportMonitor(cmd *cobra.Command, monitor *availability.Monitor) error {
	if monitor.State() == availability.Error {
		return fmt.Errorf("server unavailable: %w", monitor.Err())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Server is online (%d status checks).\n", monitor.Attempts())
	return nil
}

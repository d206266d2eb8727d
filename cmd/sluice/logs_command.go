package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sluice/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the most recent run's log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path, err := logs.Latest(cfg.Paths.LogDir, "sluice-*.log")
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No run logs found")
				return nil
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			stdout := cmd.OutOrStdout()
			limit := lines
			if limit < 0 {
				limit = 0
			}
			result, err := logs.Tail(signalCtx, path, logs.Options{Offset: -1, Limit: limit})
			if err != nil {
				return fmt.Errorf("tail logs: %w", err)
			}
			for _, line := range result.Lines {
				fmt.Fprintln(stdout, line)
			}
			if !follow {
				if len(result.Lines) == 0 {
					fmt.Fprintln(stdout, "No log entries available")
				}
				return nil
			}

			offset := result.Offset
			for {
				select {
				case <-signalCtx.Done():
					return nil
				default:
				}
				result, err := logs.Tail(signalCtx, path, logs.Options{
					Offset: offset,
					Follow: true,
					Wait:   time.Second,
				})
				if err != nil {
					return fmt.Errorf("tail logs: %w", err)
				}
				for _, line := range result.Lines {
					fmt.Fprintln(stdout, line)
				}
				offset = result.Offset
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 starts at the end)")
	return cmd
}

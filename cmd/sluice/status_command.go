package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sluice/internal/config"
	"sluice/internal/deps"
	"sluice/internal/preflight"
	"sluice/internal/runlog"
	"sluice/internal/stages"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var runLimit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show environment, dependency, artifact, and run status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := isTerminal(stdout)

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, result := range preflight.RunAll(cfg) {
				kind := statusError
				if result.Passed {
					kind = statusOK
				}
				fmt.Fprintln(stdout, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(preflight.CheckSystemDeps(cfg), colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Artifacts", colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout, renderTable(stdout,
				[]string{"STAGE", "ARTIFACT", "STATUS", "SIZE"},
				artifactRows(cfg),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Recent Runs", colorize) {
				fmt.Fprintln(stdout, line)
			}
			rows, err := recentRunRows(cmd, cfg, runLimit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(stdout, "No runs recorded")
				return nil
			}
			fmt.Fprintln(stdout, renderTable(stdout,
				[]string{"RUN", "RANGE", "STATUS", "STARTED", "DURATION"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().IntVar(&runLimit, "runs", 5, "Number of recent runs to show")
	return cmd
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	missing := make([]string, 0)
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		if !dep.Optional {
			missing = append(missing, dep.Name)
		}
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn,
			fmt.Sprintf("%s (install them before running the affected stages)", strings.Join(missing, ", ")), colorize))
	}
	return lines
}

func artifactRows(cfg *config.Config) [][]string {
	specs := stages.TerminalArtifacts(cfg)
	rows := make([][]string, 0, len(specs))
	for _, spec := range specs {
		status := "missing"
		size := ""
		if info, err := os.Stat(spec.Path); err == nil {
			if spec.Dir {
				if info.IsDir() {
					status = "present"
				}
			} else if info.Size() > 0 {
				status = "present"
				size = humanize.IBytes(uint64(info.Size()))
			} else {
				status = "empty"
			}
		}
		rows = append(rows, []string{spec.Stage, spec.Path, status, size})
	}
	return rows
}

func recentRunRows(cmd *cobra.Command, cfg *config.Config, limit int) ([][]string, error) {
	store, err := runlog.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return nil, fmt.Errorf("read run history: %w", err)
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := ""
		if run.FinishedAt != nil {
			duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			shortRunID(run.ID),
			fmt.Sprintf("%d..%d", run.FirstStage, run.LastStage),
			string(run.Status),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
		})
	}
	return rows, nil
}

// shortRunID abbreviates a run UUID for table display.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

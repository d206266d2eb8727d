package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sluice/internal/config"
	"sluice/internal/logging"
	"sluice/internal/pipeline"
	"sluice/internal/runlog"
	"sluice/internal/stages"
)

type runOptions struct {
	firstStage  int
	stopStage   int
	stopSet     bool
	vocabSizes  []int
	jobs        int
	downloadDir string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the pipeline over an inclusive stage range",
		Long: "Run executes the pipeline stages in order, skipping work whose " +
			"artifacts already exist. --stage and --stop-stage bound the run " +
			"inclusively; stages outside the range are skipped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.stopSet = cmd.Flags().Changed("stop-stage")
			return runPipeline(cmd, ctx, opts)
		},
	}

	cmd.Flags().IntVar(&opts.firstStage, "stage", 0, "First stage index to execute")
	cmd.Flags().IntVar(&opts.stopStage, "stop-stage", -1, "Last stage index to execute (defaults to the final stage)")
	cmd.Flags().IntSliceVar(&opts.vocabSizes, "vocab-size", nil, "BPE vocabulary size override (repeatable)")
	cmd.Flags().IntVar(&opts.jobs, "jobs", 0, "Parallelism override for fan-out stages")
	cmd.Flags().StringVar(&opts.downloadDir, "download-dir", "", "Download directory override")
	return cmd
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, opts runOptions) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loaded, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg, err := applyRunOverrides(loaded, opts)
	if err != nil {
		return err
	}

	logger, err := newRunLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	store, err := runlog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer store.Close()

	built, err := stages.Build(stages.Env{Config: cfg, Logger: logger, Store: store})
	if err != nil {
		return fmt.Errorf("build stages: %w", err)
	}
	runner, err := pipeline.New(logger, cfg.Paths.DataDir, built, pipeline.WithRunLog(store))
	if err != nil {
		return fmt.Errorf("build runner: %w", err)
	}

	rng, err := resolveRange(runner.Bounds(), opts)
	if err != nil {
		return err
	}

	if unhealthy := unhealthyStages(runner.Health(signalCtx, rng)); len(unhealthy) > 0 {
		for _, health := range unhealthy {
			fmt.Fprintf(cmd.ErrOrStderr(), "not ready: %s: %s\n", health.Name, health.Detail)
		}
		return fmt.Errorf("%d stage(s) not ready to run", len(unhealthy))
	}

	summary, err := runner.Run(signalCtx, rng)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %s finished: %d stage(s) executed, %d skipped in %s\n",
		summary.RunID, len(summary.Executed), len(summary.Skipped),
		summary.Duration.Round(time.Millisecond))
	return nil
}

// applyRunOverrides layers per-run flag overrides over a copy of the loaded
// config. The loaded config itself stays untouched.
func applyRunOverrides(loaded *config.Config, opts runOptions) (*config.Config, error) {
	cfg := *loaded
	if len(opts.vocabSizes) > 0 {
		for _, size := range opts.vocabSizes {
			if size < 1 {
				return nil, fmt.Errorf("--vocab-size %d: sizes must be positive", size)
			}
		}
		cfg.BPE.Sizes = append([]int(nil), opts.vocabSizes...)
	}
	if opts.jobs < 0 {
		return nil, fmt.Errorf("--jobs %d: must be zero or positive", opts.jobs)
	}
	if opts.jobs > 0 {
		cfg.Pipeline.Jobs = opts.jobs
	}
	if opts.downloadDir != "" {
		expanded, err := config.ExpandPath(opts.downloadDir)
		if err != nil {
			return nil, fmt.Errorf("resolve download dir: %w", err)
		}
		cfg.Paths.DownloadDir = expanded
	}
	return &cfg, nil
}

// resolveRange turns the stage flags into an inclusive range inside bounds.
func resolveRange(bounds pipeline.Range, opts runOptions) (pipeline.Range, error) {
	rng := pipeline.Range{Lo: opts.firstStage, Hi: bounds.Hi}
	if opts.stopSet {
		rng.Hi = opts.stopStage
	}
	if rng.Lo < bounds.Lo || rng.Lo > bounds.Hi {
		return pipeline.Range{}, fmt.Errorf("--stage %d: valid stages are %s", rng.Lo, bounds)
	}
	if rng.Hi < bounds.Lo || rng.Hi > bounds.Hi {
		return pipeline.Range{}, fmt.Errorf("--stop-stage %d: valid stages are %s", rng.Hi, bounds)
	}
	if rng.Lo > rng.Hi {
		return pipeline.Range{}, fmt.Errorf("--stage %d is past --stop-stage %d", rng.Lo, rng.Hi)
	}
	return rng, nil
}

func unhealthyStages(health []pipeline.Health) []pipeline.Health {
	var out []pipeline.Health
	for _, h := range health {
		if !h.Ready {
			out = append(out, h)
		}
	}
	return out
}

// newRunLogger builds the run's logger, writing to stdout and a timestamped
// file, and sweeps logs past the retention window.
func newRunLogger(cfg *config.Config) (*slog.Logger, error) {
	stamp := time.Now().UTC().Format("20060102T150405Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("sluice-%s.log", stamp))
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return nil, err
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "sluice-*.log", Exclude: []string{logPath}})
	return logger, nil
}

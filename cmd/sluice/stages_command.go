package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sluice/internal/config"
	"sluice/internal/logging"
	"sluice/internal/runlog"
	"sluice/internal/stages"
)

var stageDescriptions = map[string]string{
	stages.StageDownload:  "Verify licensed corpora, fetch MUSAN",
	stages.StageManifests: "Prepare per-corpus recording/supervision manifests",
	stages.StageCombine:   "Merge per-corpus supervisions into one manifest",
	stages.StageNormalize: "Normalize transcripts, drop empty supervisions",
	stages.StageSplit:     "Partition sessions into train and dev sets",
	stages.StageLangPhone: "Build the phone lexicon lang directory",
	stages.StageLangBPE:   "Train BPE vocabularies and their lang directories",
	stages.StageLM:        "Estimate the n-gram language model",
	stages.StageHLG:       "Compose decoding graphs for every lang directory",
}

func newStagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List pipeline stages and their last outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			built, err := stages.Build(stages.Env{Config: cfg, Logger: logging.NewNop()})
			if err != nil {
				return fmt.Errorf("build stages: %w", err)
			}

			outcomes, err := lastOutcomes(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(built))
			for _, stage := range built {
				outcome := outcomes[stage.Index]
				if outcome == "" {
					outcome = "never run"
				}
				rows = append(rows, []string{
					strconv.Itoa(stage.Index),
					stage.Name,
					stageDescriptions[stage.Name],
					outcome,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]string{"#", "STAGE", "DESCRIPTION", "LAST OUTCOME"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}
}

// lastOutcomes reads each stage's status from the most recent run. A missing
// or empty run log reports no outcomes rather than an error.
func lastOutcomes(ctx context.Context, cfg *config.Config) (map[int]string, error) {
	store, err := runlog.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	defer store.Close()

	outcomes := make(map[int]string)
	run, err := store.LastRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("read last run: %w", err)
	}
	if run == nil {
		return outcomes, nil
	}
	stageRuns, err := store.StageRuns(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("read stage outcomes: %w", err)
	}
	for _, sr := range stageRuns {
		outcomes[sr.StageIndex] = string(sr.Status)
	}
	return outcomes, nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that the configuration can drive a pipeline run. It
// collects every problem it finds so a user can fix a config file in one
// pass instead of replaying the command per mistake.
func (c *Config) Validate() error {
	var problems []string
	problems = append(problems, c.validatePaths()...)
	problems = append(problems, c.validatePipeline()...)
	problems = append(problems, c.validateSplit()...)
	problems = append(problems, c.validateLM()...)
	problems = append(problems, c.validateBPE()...)
	problems = append(problems, c.validateTools()...)
	problems = append(problems, c.validateLogging()...)
	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}

func (c *Config) validatePaths() []string {
	var problems []string
	if strings.TrimSpace(c.Paths.CorpusDir) == "" {
		problems = append(problems, "paths.corpus_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		problems = append(problems, "paths.download_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must be set")
	}
	return problems
}

func (c *Config) validatePipeline() []string {
	var problems []string
	if c.Pipeline.Jobs < 1 {
		problems = append(problems, fmt.Sprintf("pipeline.jobs must be at least 1 (got %d)", c.Pipeline.Jobs))
	}
	if c.Pipeline.ToolTimeout < 0 {
		problems = append(problems, "pipeline.tool_timeout must not be negative")
	}
	return problems
}

func (c *Config) validateSplit() []string {
	var problems []string
	if c.Split.DevSessions < 1 {
		problems = append(problems, fmt.Sprintf("split.dev_sessions must be at least 1 (got %d)", c.Split.DevSessions))
	}
	return problems
}

func (c *Config) validateLM() []string {
	var problems []string
	if c.LM.Order < 1 {
		problems = append(problems, fmt.Sprintf("lm.order must be at least 1 (got %d)", c.LM.Order))
	}
	return problems
}

func (c *Config) validateBPE() []string {
	var problems []string
	if len(c.BPE.Sizes) == 0 {
		problems = append(problems, "bpe.sizes must list at least one vocabulary size")
	}
	seen := make(map[int]bool, len(c.BPE.Sizes))
	for _, size := range c.BPE.Sizes {
		if size < 1 {
			problems = append(problems, fmt.Sprintf("bpe.sizes entries must be positive (got %d)", size))
			continue
		}
		if seen[size] {
			problems = append(problems, fmt.Sprintf("bpe.sizes lists %d more than once", size))
		}
		seen[size] = true
	}
	if c.BPE.CharacterCoverage <= 0 || c.BPE.CharacterCoverage > 1 {
		problems = append(problems, fmt.Sprintf("bpe.character_coverage must be in (0, 1] (got %g)", c.BPE.CharacterCoverage))
	}
	if c.BPE.InputSentenceSize < 1 {
		problems = append(problems, fmt.Sprintf("bpe.input_sentence_size must be at least 1 (got %d)", c.BPE.InputSentenceSize))
	}
	return problems
}

func (c *Config) validateTools() []string {
	var problems []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			problems = append(problems, fmt.Sprintf("tools.%s must be set", name))
		}
	}
	check("lhotse", c.Tools.Lhotse)
	check("spm_train", c.Tools.SpmTrain)
	check("g2p", c.Tools.G2P)
	check("estimator", c.Tools.Estimator)
	check("compile_lg", c.Tools.CompileLG)
	check("compile_hlg", c.Tools.CompileHLG)
	return problems
}

func (c *Config) validateLogging() []string {
	var problems []string
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json (got %q)", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level))
	}
	return problems
}

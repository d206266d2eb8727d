package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeBPE()
	c.normalizeLogging()
	if c.Normalize.RulesPath != "" {
		expanded, err := expandPath(c.Normalize.RulesPath)
		if err != nil {
			return fmt.Errorf("normalize.rules_path: %w", err)
		}
		c.Normalize.RulesPath = expanded
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.CorpusDir, err = expandPath(c.Paths.CorpusDir); err != nil {
		return fmt.Errorf("paths.corpus_dir: %w", err)
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	trim := func(value, fallback string) string {
		value = strings.TrimSpace(value)
		if value == "" {
			return fallback
		}
		return value
	}
	c.Tools.Lhotse = trim(c.Tools.Lhotse, defaultLhotseBinary)
	c.Tools.SpmTrain = trim(c.Tools.SpmTrain, defaultSpmTrainBinary)
	c.Tools.G2P = trim(c.Tools.G2P, defaultG2PBinary)
	c.Tools.Estimator = trim(c.Tools.Estimator, defaultEstimatorBinary)
	c.Tools.CompileLG = trim(c.Tools.CompileLG, defaultCompileLGBinary)
	c.Tools.CompileHLG = trim(c.Tools.CompileHLG, defaultCompileHLGBinary)
}

func (c *Config) normalizeBPE() {
	if len(c.BPE.Sizes) == 0 {
		c.BPE.Sizes = defaultBPESizes()
	}
	if c.BPE.CharacterCoverage == 0 {
		c.BPE.CharacterCoverage = defaultCharacterCoverage
	}
	if c.BPE.InputSentenceSize == 0 {
		c.BPE.InputSentenceSize = defaultInputSentenceSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
}

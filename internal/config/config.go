package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// CorpusDir holds the licensed source corpora (Fisher, Switchboard).
	CorpusDir string `toml:"corpus_dir"`
	// DownloadDir receives corpora the pipeline fetches itself (MUSAN).
	DownloadDir string `toml:"download_dir"`
	// DataDir is the working root every stage writes under.
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Pipeline contains run-wide execution settings.
type Pipeline struct {
	// Jobs bounds parallel work inside a stage (the BPE fan-out).
	Jobs int `toml:"jobs"`
	// ToolTimeout caps each external tool invocation in seconds.
	// Zero disables the cap.
	ToolTimeout int `toml:"tool_timeout"`
}

// Split configures the train/dev partition.
type Split struct {
	// DevSessions is the exact number of sessions held out for the dev set.
	DevSessions int `toml:"dev_sessions"`
	// Seed pins the session shuffle so repeated runs produce identical splits.
	Seed int64 `toml:"seed"`
}

// LM configures n-gram language model estimation.
type LM struct {
	Order int `toml:"order"`
}

// BPE configures subword vocabulary training.
type BPE struct {
	// Sizes lists the vocabulary sizes; each produces its own lang dir.
	Sizes             []int   `toml:"sizes"`
	CharacterCoverage float64 `toml:"character_coverage"`
	InputSentenceSize int     `toml:"input_sentence_size"`
}

// Tools names the external binaries each stage invokes.
type Tools struct {
	Lhotse     string `toml:"lhotse"`
	SpmTrain   string `toml:"spm_train"`
	G2P        string `toml:"g2p"`
	Estimator  string `toml:"estimator"`
	CompileLG  string `toml:"compile_lg"`
	CompileHLG string `toml:"compile_hlg"`
}

// Normalize configures transcript normalization.
type Normalize struct {
	// RulesPath overrides the embedded normalization rule set when non-empty.
	RulesPath string `toml:"rules_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for the pipeline.
//
// Configuration sections by subsystem:
//   - Paths: corpus roots and the working data directory
//   - Pipeline: parallelism and tool timeout limits
//   - Split: train/dev partition parameters
//   - LM: n-gram order
//   - BPE: vocabulary sizes and trainer parameters
//   - Tools: external binary names
//   - Normalize: transcript rule overrides
//   - Logging: log format, level, and retention
type Config struct {
	Paths     Paths     `toml:"paths"`
	Pipeline  Pipeline  `toml:"pipeline"`
	Split     Split     `toml:"split"`
	LM        LM        `toml:"lm"`
	BPE       BPE       `toml:"bpe"`
	Tools     Tools     `toml:"tools"`
	Normalize Normalize `toml:"normalize"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sluice/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized, and is treated as
// immutable for the remainder of the run.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sluice.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into. The corpus
// directory is deliberately not created: its absence is a precondition
// failure, not something to paper over.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DownloadDir, c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ManifestDir returns the manifest artifact directory under the data root.
func (c *Config) ManifestDir() string {
	return filepath.Join(c.Paths.DataDir, "manifests")
}

// LMDir returns the language-model artifact directory under the data root.
func (c *Config) LMDir() string {
	return filepath.Join(c.Paths.DataDir, "lm")
}

// LangPhoneDir returns the phone lexicon directory under the data root.
func (c *Config) LangPhoneDir() string {
	return filepath.Join(c.Paths.DataDir, "lang_phone")
}

// LangBPEDir returns the lexicon directory for one BPE vocabulary size.
// The name is a downstream contract: training code locates lang dirs by it.
func (c *Config) LangBPEDir(size int) string {
	return filepath.Join(c.Paths.DataDir, fmt.Sprintf("lang_bpe_%d", size))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"sluice/internal/config"
)

// Requirement defines an external tool the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional requirements are reported but never fail a readiness check.
	Optional bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists every external binary the configured pipeline can
// invoke, in stage order.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	return []Requirement{
		{
			Name:        "lhotse",
			Command:     cfg.Tools.Lhotse,
			Description: "Corpus download and manifest preparation",
		},
		{
			Name:        "spm_train",
			Command:     cfg.Tools.SpmTrain,
			Description: "BPE vocabulary training",
		},
		{
			Name:        "g2p",
			Command:     cfg.Tools.G2P,
			Description: "Pronunciations for words missing from the seed lexicon",
		},
		{
			Name:        "estimator",
			Command:     cfg.Tools.Estimator,
			Description: "ARPA language-model estimation",
		},
		{
			Name:        "compile_lg",
			Command:     cfg.Tools.CompileLG,
			Description: "Lexicon FST compilation",
		},
		{
			Name:        "compile_hlg",
			Command:     cfg.Tools.CompileHLG,
			Description: "Decoding graph composition",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Missing filters statuses down to required dependencies that are absent.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}

// LookPathOne is a convenience for single-binary stage health checks.
func LookPathOne(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", fmt.Errorf("command not configured")
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return "", fmt.Errorf("binary %q not found", command)
	}
	return path, nil
}

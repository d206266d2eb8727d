package textnorm

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule is one ordered rewrite: a regular expression applied to the
// uppercased transcript and its replacement. Replacements may reference
// capture groups ($1) and the {noise} placeholder.
type Rule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`

	compiled *regexp.Regexp
	replace  string
}

// RuleSet is an ordered transcript rewrite program.
type RuleSet struct {
	NoiseToken string `yaml:"noise_token"`
	Rules      []Rule `yaml:"rules"`
}

// DefaultRules returns the embedded Fisher/Switchboard rule set.
func DefaultRules() (*RuleSet, error) {
	return parseRules(defaultRulesYAML, "embedded rules")
}

// LoadRules reads a rule set from a YAML file, used when the configuration
// overrides the embedded defaults.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return parseRules(data, path)
}

func parseRules(data []byte, source string) (*RuleSet, error) {
	var ruleSet RuleSet
	if err := yaml.Unmarshal(data, &ruleSet); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", source, err)
	}
	if len(ruleSet.Rules) == 0 {
		return nil, fmt.Errorf("parse rules %s: no rules defined", source)
	}
	if err := ruleSet.compile(); err != nil {
		return nil, fmt.Errorf("compile rules %s: %w", source, err)
	}
	return &ruleSet, nil
}

func (rs *RuleSet) compile() error {
	for i := range rs.Rules {
		rule := &rs.Rules[i]
		if strings.TrimSpace(rule.Pattern) == "" {
			return fmt.Errorf("rule %q: empty pattern", rule.Name)
		}
		compiled, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		rule.compiled = compiled
		rule.replace = strings.ReplaceAll(rule.Replace, "{noise}", rs.NoiseToken)
	}
	return nil
}

package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk shape of a custom keyword list:
//
//	version: "2026.02-local"
//	spam: [casino, viagra]
//	potential: [click here]
//	rules:
//	  - pattern: loan
//	    tier: spam
//
// Tier lists come first (spam, then potential); explicit rules follow.
type ruleFile struct {
	Version   string   `yaml:"version"`
	Spam      []string `yaml:"spam"`
	Potential []string `yaml:"potential"`
	Rules     []Rule   `yaml:"rules"`
}

// LoadRuleSet reads a YAML keyword list. Any ambiguity in the file is
// returned as a *ConfigurationError.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file %s: %w", path, err)
	}
	return ParseRuleSet(data)
}

// ParseRuleSet decodes a YAML keyword list.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}
	if f.Version == "" {
		return nil, &ConfigurationError{Index: -1, Reason: "version is required"}
	}

	rules := make([]Rule, 0, len(f.Spam)+len(f.Potential)+len(f.Rules))
	for _, p := range f.Spam {
		rules = append(rules, Rule{Pattern: p, Tier: TierSpam})
	}
	for _, p := range f.Potential {
		rules = append(rules, Rule{Pattern: p, Tier: TierPotential})
	}
	rules = append(rules, f.Rules...)

	return NewRuleSet(f.Version, rules)
}

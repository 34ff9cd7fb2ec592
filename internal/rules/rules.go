// Package rules provides the default trading rule set seeded for new users.
package rules

import (
	_ "embed"
	"fmt"

	"github.com/trogers1052/trademind/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

type ruleFile struct {
	Rules []models.RuleSeed `yaml:"rules"`
}

// Defaults returns the built-in default rules
func Defaults() ([]models.RuleSeed, error) {
	return Parse(defaultRulesYAML)
}

// Parse decodes a rule set document and validates every entry
func Parse(data []byte) ([]models.RuleSeed, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rule set: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("rule set is empty")
	}
	for i, r := range f.Rules {
		if r.Text == "" {
			return nil, fmt.Errorf("rule %d: text is required", i+1)
		}
		if !r.Category.Valid() {
			return nil, fmt.Errorf("rule %d: unknown category %q", i+1, r.Category)
		}
	}
	return f.Rules, nil
}

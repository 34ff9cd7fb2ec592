package models

import "time"

// RuleCategory groups trading rules for display
type RuleCategory string

const (
	CategoryRiskManagement RuleCategory = "Risk Management"
	CategoryProfitTaking   RuleCategory = "Profit Taking"
	CategoryDiscipline     RuleCategory = "Discipline"
	CategoryGeneral        RuleCategory = "General"
)

// Valid reports whether c is a known category
func (c RuleCategory) Valid() bool {
	switch c {
	case CategoryRiskManagement, CategoryProfitTaking, CategoryDiscipline, CategoryGeneral:
		return true
	}
	return false
}

// TradingRule is one item of a user's checklist. Default rules cannot be deleted.
type TradingRule struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	RuleText  string       `json:"rule_text"`
	Category  RuleCategory `json:"category"`
	IsDefault bool         `json:"is_default"`
	IsActive  bool         `json:"is_active"`
	SortOrder int          `json:"sort_order"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ActiveRuleIDs returns the ids of the active rules in rules
func ActiveRuleIDs(rules []*TradingRule) []string {
	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.IsActive {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// RuleSeed is a default rule inserted for new users
type RuleSeed struct {
	Text     string       `yaml:"text" json:"rule_text"`
	Category RuleCategory `yaml:"category" json:"category"`
}

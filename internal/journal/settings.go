package journal

import (
	"context"
	"strings"

	"github.com/trogers1052/trademind/internal/cache"
	"github.com/trogers1052/trademind/internal/models"
)

// Settings is the settings page: profile and every rule
type Settings struct {
	Profile *models.Profile       `json:"profile"`
	Rules   []*models.TradingRule `json:"rules"`
}

// RuleInput creates or edits a rule. An empty category means General.
type RuleInput struct {
	Text     string              `json:"rule_text"`
	Category models.RuleCategory `json:"category"`
}

func (in RuleInput) normalize() (RuleInput, error) {
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return in, models.NewValidationError("rule_text", "is required")
	}
	if in.Category == "" {
		in.Category = models.CategoryGeneral
	}
	if !in.Category.Valid() {
		return in, models.NewValidationError("category", "is not a known category")
	}
	return in, nil
}

// Settings loads the profile and all rules
func (s *Service) Settings(ctx context.Context, userID string) (*Settings, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules(ctx, userID, false)
	if err != nil {
		return nil, s.fail("settings", userID, err)
	}
	return &Settings{Profile: profile, Rules: rules}, nil
}

// UpdateProfile validates and saves the editable profile fields
func (s *Service) UpdateProfile(ctx context.Context, userID string, in models.ProfileSettings) (*models.Profile, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	p, err := s.store.UpdateProfile(ctx, userID, in)
	if err != nil {
		return nil, s.fail("update_profile", userID, err)
	}
	s.invalidate(ctx, userID, cache.EntityProfile)
	s.publish(ctx, models.EventSettingsUpdated, userID, "", map[string]string{"section": "profile"})
	return p, nil
}

// Rules lists the user's rules, optionally only the active ones
func (s *Service) Rules(ctx context.Context, userID string, activeOnly bool) ([]*models.TradingRule, error) {
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}
	rules, err := s.rules(ctx, userID, activeOnly)
	if err != nil {
		return nil, s.fail("rules", userID, err)
	}
	return rules, nil
}

// CreateRule appends a user rule to the end of the checklist
func (s *Service) CreateRule(ctx context.Context, userID string, in RuleInput) (*models.TradingRule, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	r, err := s.store.CreateRule(ctx, userID, in.Text, in.Category)
	if err != nil {
		return nil, s.fail("create_rule", userID, err)
	}
	s.rulesChanged(ctx, userID, "created", r.ID)
	return r, nil
}

// UpdateRule edits a rule's text and category
func (s *Service) UpdateRule(ctx context.Context, userID, id string, in RuleInput) (*models.TradingRule, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	r, err := s.store.UpdateRule(ctx, userID, id, in.Text, in.Category)
	if err != nil {
		return nil, s.fail("update_rule", userID, err)
	}
	s.rulesChanged(ctx, userID, "updated", id)
	return r, nil
}

// SetRuleActive toggles a rule in or out of the checklist
func (s *Service) SetRuleActive(ctx context.Context, userID, id string, active bool) (*models.TradingRule, error) {
	r, err := s.store.SetRuleActive(ctx, userID, id, active)
	if err != nil {
		return nil, s.fail("set_rule_active", userID, err)
	}
	s.rulesChanged(ctx, userID, "toggled", id)
	return r, nil
}

// DeleteRule removes a user-created rule. Default rules return ErrDefaultRule.
func (s *Service) DeleteRule(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteRule(ctx, userID, id); err != nil {
		return s.fail("delete_rule", userID, err)
	}
	s.rulesChanged(ctx, userID, "deleted", id)
	return nil
}

func (s *Service) rulesChanged(ctx context.Context, userID, action, ruleID string) {
	s.invalidate(ctx, userID, cache.EntityRules)
	s.publish(ctx, models.EventSettingsUpdated, userID, "", map[string]string{
		"section": "rules",
		"action":  action,
		"rule_id": ruleID,
	})
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trogers1052/trademind/internal/models"
)

const ruleColumns = `id, user_id, rule_text, category, is_default, is_active, sort_order, created_at, updated_at`

func scanRule(row rowScanner) (*models.TradingRule, error) {
	var r models.TradingRule
	err := row.Scan(&r.ID, &r.UserID, &r.RuleText, &r.Category, &r.IsDefault, &r.IsActive,
		&r.SortOrder, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRules returns the user's rules ordered by sort order
func (db *DB) ListRules(ctx context.Context, userID string, activeOnly bool) ([]*models.TradingRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM trading_rules WHERE user_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, created_at ASC`

	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	rules := make([]*models.TradingRule, 0)
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return rules, nil
}

// CreateRule appends a user rule after the existing ones
func (db *DB) CreateRule(ctx context.Context, userID, text string, category models.RuleCategory) (*models.TradingRule, error) {
	query := `
		INSERT INTO trading_rules (user_id, rule_text, category, is_default, is_active, sort_order)
		SELECT $1, $2, $3, FALSE, TRUE, COALESCE(MAX(sort_order), 0) + 1
		FROM trading_rules WHERE user_id = $1
		RETURNING ` + ruleColumns

	r, err := scanRule(db.conn.QueryRowContext(ctx, query, userID, text, category))
	if err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}
	return r, nil
}

// UpdateRule changes a rule's text and category
func (db *DB) UpdateRule(ctx context.Context, userID, id, text string, category models.RuleCategory) (*models.TradingRule, error) {
	query := `
		UPDATE trading_rules SET rule_text = $3, category = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + ruleColumns

	r, err := scanRule(db.conn.QueryRowContext(ctx, query, id, userID, text, category))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}
	return r, nil
}

// SetRuleActive toggles whether a rule is part of the checklist
func (db *DB) SetRuleActive(ctx context.Context, userID, id string, active bool) (*models.TradingRule, error) {
	query := `
		UPDATE trading_rules SET is_active = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + ruleColumns

	r, err := scanRule(db.conn.QueryRowContext(ctx, query, id, userID, active))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set rule active: %w", err)
	}
	return r, nil
}

// DeleteRule removes a user-created rule. Default rules are never deleted.
func (db *DB) DeleteRule(ctx context.Context, userID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM trading_rules WHERE id = $1 AND user_id = $2 AND is_default = FALSE`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if n > 0 {
		return nil
	}

	var isDefault bool
	err = db.conn.QueryRowContext(ctx,
		`SELECT is_default FROM trading_rules WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&isDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("rule %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check rule: %w", err)
	}
	return fmt.Errorf("rule %s: %w", id, models.ErrDefaultRule)
}

// SeedDefaultRules inserts the default rule set for a user that has no rules
// yet. It returns the number of rules inserted.
func (db *DB) SeedDefaultRules(ctx context.Context, userID string, seeds []models.RuleSeed) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trading_rules WHERE user_id = $1`, userID,
	).Scan(&existing); err != nil {
		return 0, fmt.Errorf("failed to count rules: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trading_rules (user_id, rule_text, category, is_default, is_active, sort_order)
		VALUES ($1, $2, $3, TRUE, TRUE, $4)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare rule insert: %w", err)
	}
	defer stmt.Close()

	for i, s := range seeds {
		if _, err := stmt.ExecContext(ctx, userID, s.Text, s.Category, i+1); err != nil {
			return 0, fmt.Errorf("failed to seed rule %q: %w", s.Text, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rule seed: %w", err)
	}
	return len(seeds), nil
}

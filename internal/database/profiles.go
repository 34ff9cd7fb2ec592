package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trogers1052/trademind/internal/models"
)

const profileColumns = `id, email, full_name, trading_capital, daily_loss_limit, per_trade_risk,
		max_trades_per_day, daily_target, weekly_target, monthly_target,
		onboarding_completed, created_at, updated_at`

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	var email, fullName sql.NullString
	err := row.Scan(
		&p.ID, &email, &fullName, &p.TradingCapital, &p.DailyLossLimit, &p.PerTradeRisk,
		&p.MaxTradesPerDay, &p.DailyTarget, &p.WeeklyTarget, &p.MonthlyTarget,
		&p.OnboardingComplete, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Email = nullString(email)
	p.FullName = nullString(fullName)
	return &p, nil
}

// GetProfile retrieves a user's profile
func (db *DB) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	p, err := scanProfile(db.conn.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// EnsureProfile creates the user's profile with default limits when it does
// not exist yet and returns the stored profile. The boolean reports whether
// a row was created.
func (db *DB) EnsureProfile(ctx context.Context, userID string, defaults models.ProfileDefaults) (*models.Profile, bool, error) {
	result, err := db.conn.ExecContext(ctx, `
		INSERT INTO profiles (id, per_trade_risk, daily_loss_limit)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, userID, defaults.PerTradeRisk, defaults.DailyLossLimit)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure profile: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure profile: %w", err)
	}

	p, err := db.GetProfile(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return p, n > 0, nil
}

// UpdateProfile writes the editable profile fields
func (db *DB) UpdateProfile(ctx context.Context, userID string, s models.ProfileSettings) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET full_name = $2, trading_capital = $3, daily_loss_limit = $4, per_trade_risk = $5,
		    max_trades_per_day = $6, daily_target = $7, weekly_target = $8, monthly_target = $9,
		    onboarding_completed = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	p, err := scanProfile(db.conn.QueryRowContext(ctx, query,
		userID, s.FullName, s.TradingCapital, s.DailyLossLimit, s.PerTradeRisk,
		s.MaxTradesPerDay, s.DailyTarget, s.WeeklyTarget, s.MonthlyTarget,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/trogers1052/trademind/internal/models"
)

// ListActiveQuotes returns every active quote
func (db *DB) ListActiveQuotes(ctx context.Context) ([]*models.Quote, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, quote_text, author, category, is_active, created_at
		FROM quotes
		WHERE is_active = TRUE
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]*models.Quote, 0)
	for rows.Next() {
		var q models.Quote
		var author sql.NullString
		if err := rows.Scan(&q.ID, &q.QuoteText, &author, &q.Category, &q.IsActive, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		q.Author = nullString(author)
		quotes = append(quotes, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}
	return quotes, nil
}

package artifacts

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/temcen/hybrec/internal/interactions"
)

// Querier is the subset of a pgx pool used to read interaction history.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

const interactionHistoryQuery = `
	SELECT user_id::text, item_id::text
	FROM user_interactions
	WHERE user_id IS NOT NULL
		AND item_id IS NOT NULL
	ORDER BY timestamp ASC, id ASC`

// LoadInteractionsPostgres reads interaction history oldest first.
func LoadInteractionsPostgres(ctx context.Context, db Querier) (*interactions.Index, error) {
	rows, err := db.Query(ctx, interactionHistoryQuery)
	if err != nil {
		return nil, fmt.Errorf("interaction history query failed: %w", err)
	}
	defer rows.Close()

	builder := interactions.NewBuilder()
	for rows.Next() {
		var userID, itemID string
		if err := rows.Scan(&userID, &itemID); err != nil {
			return nil, fmt.Errorf("failed to scan interaction row: %w", err)
		}
		builder.Add(userID, itemID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interaction history rows: %w", err)
	}

	return builder.Build(), nil
}

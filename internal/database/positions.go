package database

import (
	"fmt"

	"github.com/finaura/paper-trading/internal/models"
)

// GetPositions retrieves all open positions for a user.
func (db *DB) GetPositions(userID string) ([]*models.Position, error) {
	query := `
		SELECT id, user_id, symbol, shares, avg_cost, created_at, updated_at
		FROM positions
		WHERE user_id = $1
		ORDER BY symbol
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []*models.Position
	for rows.Next() {
		var p models.Position
		err := rows.Scan(&p.ID, &p.UserID, &p.Symbol, &p.Shares, &p.AvgCost, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, &p)
	}

	return positions, nil
}

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finaura/paper-trading/internal/models"
)

// ApplyBuy debits the account, upserts the position with a
// value-weighted average cost, and appends a BUY transaction. All
// three writes commit as one unit or not at all.
func (db *DB) ApplyBuy(userID, symbol string, shares, price decimal.Decimal) (*models.Transaction, decimal.Decimal, error) {
	total := shares.Mul(price)

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	balance, err := lockAccount(tx, userID, db.initialBalance)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if balance.LessThan(total) {
		return nil, decimal.Zero, ErrInsufficientFunds
	}

	oldShares, oldAvgCost, found, err := lockPosition(tx, userID, symbol)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if found {
		newShares := oldShares.Add(shares)
		// Weighted by purchase cost: (oldAvg*oldShares + total) / newShares.
		newAvgCost := oldAvgCost.Mul(oldShares).Add(total).Div(newShares)
		_, err = tx.Exec(
			`UPDATE positions SET shares = $3, avg_cost = $4, updated_at = now()
			 WHERE user_id = $1 AND symbol = $2`,
			userID, symbol, newShares, newAvgCost,
		)
	} else {
		_, err = tx.Exec(
			`INSERT INTO positions (user_id, symbol, shares, avg_cost) VALUES ($1, $2, $3, $4)`,
			userID, symbol, shares, price,
		)
	}
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to upsert position: %w", err)
	}

	newBalance := balance.Sub(total)
	if err := updateBalance(tx, userID, newBalance); err != nil {
		return nil, decimal.Zero, err
	}

	txn := &models.Transaction{
		UserID: userID,
		Symbol: symbol,
		Side:   models.TradeTypeBuy,
		Shares: shares,
		Price:  price,
		Total:  total,
		Pnl:    decimal.Zero,
	}
	if err := appendTransaction(tx, txn); err != nil {
		return nil, decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to commit buy: %w", err)
	}
	return txn, newBalance, nil
}

// ApplySell reduces or removes the position, credits the proceeds, and
// appends a SELL transaction carrying the realized pnl. A sell that
// brings the held shares to zero or below closes the position row
// entirely; a partial sell leaves the average cost untouched.
func (db *DB) ApplySell(userID, symbol string, shares, price decimal.Decimal) (*models.Transaction, decimal.Decimal, error) {
	proceeds := shares.Mul(price)

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	balance, err := lockAccount(tx, userID, db.initialBalance)
	if err != nil {
		return nil, decimal.Zero, err
	}

	oldShares, avgCost, found, err := lockPosition(tx, userID, symbol)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if !found || oldShares.LessThan(shares) {
		return nil, decimal.Zero, ErrInsufficientShares
	}

	pnl := price.Sub(avgCost).Mul(shares)
	remaining := oldShares.Sub(shares)

	if remaining.Sign() <= 0 {
		_, err = tx.Exec(`DELETE FROM positions WHERE user_id = $1 AND symbol = $2`, userID, symbol)
	} else {
		_, err = tx.Exec(
			`UPDATE positions SET shares = $3, updated_at = now() WHERE user_id = $1 AND symbol = $2`,
			userID, symbol, remaining,
		)
	}
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to update position: %w", err)
	}

	newBalance := balance.Add(proceeds)
	if err := updateBalance(tx, userID, newBalance); err != nil {
		return nil, decimal.Zero, err
	}

	txn := &models.Transaction{
		UserID: userID,
		Symbol: symbol,
		Side:   models.TradeTypeSell,
		Shares: shares,
		Price:  price,
		Total:  proceeds,
		Pnl:    pnl,
	}
	if err := appendTransaction(tx, txn); err != nil {
		return nil, decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to commit sell: %w", err)
	}
	return txn, newBalance, nil
}

// lockPosition reads the position row under FOR UPDATE. found is false
// when the user holds no shares of the symbol.
func lockPosition(tx *sql.Tx, userID, symbol string) (shares, avgCost decimal.Decimal, found bool, err error) {
	err = tx.QueryRow(
		`SELECT shares, avg_cost FROM positions WHERE user_id = $1 AND symbol = $2 FOR UPDATE`,
		userID, symbol,
	).Scan(&shares, &avgCost)

	if err == sql.ErrNoRows {
		return decimal.Zero, decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("failed to lock position: %w", err)
	}
	return shares, avgCost, true, nil
}

func updateBalance(tx *sql.Tx, userID string, balance decimal.Decimal) error {
	_, err := tx.Exec(`UPDATE accounts SET balance = $2 WHERE user_id = $1`, userID, balance)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

func appendTransaction(tx *sql.Tx, t *models.Transaction) error {
	now := time.Now()
	err := tx.QueryRow(
		`INSERT INTO transactions (user_id, symbol, side, shares, price, total, pnl, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		t.UserID, t.Symbol, t.Side, t.Shares, t.Price, t.Total, t.Pnl, now,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	t.CreatedAt = now
	return nil
}

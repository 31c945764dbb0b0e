package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finaura/paper-trading/internal/models"
)

func TestGetAccountSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("fresh account", func(t *testing.T) {
		testDB.TruncateAll(t)

		snapshot, err := testDB.GetAccountSnapshot("u1")
		require.NoError(t, err)

		assert.Equal(t, "u1", snapshot.UserID)
		assert.True(t, testInitialBalance.Equal(snapshot.Balance))
		assert.Empty(t, snapshot.Positions)
		assert.Empty(t, snapshot.Transactions)
		assert.Empty(t, snapshot.Watchlist)
		assert.Empty(t, snapshot.LimitOrders)
	})

	t.Run("assembles all account state", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, _, err := testDB.ApplyBuy("u1", "NABIL", dec("10"), dec("500"))
		require.NoError(t, err)
		_, _, err = testDB.ApplySell("u1", "NABIL", dec("4"), dec("520"))
		require.NoError(t, err)

		require.NoError(t, testDB.AddWatchlistSymbol("u1", "EBL"))

		order := &models.LimitOrder{
			UserID: "u1", Symbol: "NICA", Side: models.TradeTypeBuy,
			TargetPrice: dec("750"), Shares: dec("5"),
		}
		require.NoError(t, testDB.CreateLimitOrder(order))
		cancelled := &models.LimitOrder{
			UserID: "u1", Symbol: "SBI", Side: models.TradeTypeSell,
			TargetPrice: dec("330"), Shares: dec("2"),
		}
		require.NoError(t, testDB.CreateLimitOrder(cancelled))
		require.NoError(t, testDB.CancelLimitOrder("u1", cancelled.ID))

		snapshot, err := testDB.GetAccountSnapshot("u1")
		require.NoError(t, err)

		assert.True(t, dec("22080").Equal(snapshot.Balance), "balance = %s", snapshot.Balance)

		require.Len(t, snapshot.Positions, 1)
		assert.True(t, dec("6").Equal(snapshot.Positions[0].Shares))

		require.Len(t, snapshot.Transactions, 2)
		assert.Equal(t, models.TradeTypeSell, snapshot.Transactions[0].Side, "newest first")

		assert.Equal(t, []string{"EBL"}, snapshot.Watchlist)

		require.Len(t, snapshot.LimitOrders, 1)
		assert.Equal(t, "NICA", snapshot.LimitOrders[0].Symbol)
	})

	t.Run("does not leak other accounts", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, _, err := testDB.ApplyBuy("u2", "NABIL", dec("1"), dec("500"))
		require.NoError(t, err)

		snapshot, err := testDB.GetAccountSnapshot("u1")
		require.NoError(t, err)
		assert.Empty(t, snapshot.Positions)
		assert.Empty(t, snapshot.Transactions)
	})
}

func TestAuditTrades(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("create and existence check", func(t *testing.T) {
		testDB.TruncateAll(t)

		trade := &models.AuditTrade{
			TransactionID: 42,
			UserID:        "u1",
			Symbol:        "NABIL",
			Side:          models.TradeTypeBuy,
			Shares:        dec("10"),
			Price:         dec("500"),
			Total:         dec("5000"),
			Pnl:           dec("0"),
			ExecutedAt:    time.Now(),
		}
		require.NoError(t, testDB.CreateAuditTrade(trade))
		assert.NotZero(t, trade.ID)

		exists, err := testDB.AuditTradeExists(42)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = testDB.AuditTradeExists(43)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate transaction id is rejected by the unique index", func(t *testing.T) {
		testDB.TruncateAll(t)

		trade := &models.AuditTrade{
			TransactionID: 7, UserID: "u1", Symbol: "NABIL",
			Side: models.TradeTypeSell, Shares: dec("1"), Price: dec("500"),
			Total: dec("500"), Pnl: dec("10"), ExecutedAt: time.Now(),
		}
		require.NoError(t, testDB.CreateAuditTrade(trade))

		dup := *trade
		dup.ID = 0
		assert.Error(t, testDB.CreateAuditTrade(&dup))
	})
}

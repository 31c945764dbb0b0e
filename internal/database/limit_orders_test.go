package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finaura/paper-trading/internal/models"
)

func TestLimitOrders(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	newOrder := func(userID, symbol string) *models.LimitOrder {
		return &models.LimitOrder{
			UserID:      userID,
			Symbol:      symbol,
			Side:        models.TradeTypeBuy,
			TargetPrice: dec("480"),
			Shares:      dec("10"),
		}
	}

	t.Run("create and fetch", func(t *testing.T) {
		testDB.TruncateAll(t)

		order := newOrder("u1", "NABIL")
		require.NoError(t, testDB.CreateLimitOrder(order))
		assert.NotZero(t, order.ID)
		assert.Equal(t, models.OrderStatusActive, order.Status)
		assert.False(t, order.CreatedAt.IsZero())

		fetched, err := testDB.GetLimitOrder("u1", order.ID)
		require.NoError(t, err)
		assert.Equal(t, "NABIL", fetched.Symbol)
		assert.True(t, dec("480").Equal(fetched.TargetPrice))
	})

	t.Run("cancel moves the order out of the active list", func(t *testing.T) {
		testDB.TruncateAll(t)

		order := newOrder("u1", "NABIL")
		require.NoError(t, testDB.CreateLimitOrder(order))
		keep := newOrder("u1", "EBL")
		require.NoError(t, testDB.CreateLimitOrder(keep))

		require.NoError(t, testDB.CancelLimitOrder("u1", order.ID))

		active, err := testDB.GetActiveLimitOrders("u1")
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "EBL", active[0].Symbol)

		cancelled, err := testDB.GetLimitOrder("u1", order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	})

	t.Run("cancelling twice is a no-op", func(t *testing.T) {
		testDB.TruncateAll(t)

		order := newOrder("u1", "NABIL")
		require.NoError(t, testDB.CreateLimitOrder(order))

		require.NoError(t, testDB.CancelLimitOrder("u1", order.ID))
		assert.NoError(t, testDB.CancelLimitOrder("u1", order.ID))
	})

	t.Run("cancelling a missing or foreign order fails", func(t *testing.T) {
		testDB.TruncateAll(t)

		err := testDB.CancelLimitOrder("u1", 9999)
		assert.ErrorIs(t, err, ErrOrderNotFound)

		order := newOrder("u1", "NABIL")
		require.NoError(t, testDB.CreateLimitOrder(order))

		err = testDB.CancelLimitOrder("u2", order.ID)
		assert.ErrorIs(t, err, ErrOrderNotFound, "orders are scoped to their owner")

		fetched, err := testDB.GetLimitOrder("u1", order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusActive, fetched.Status)
	})
}

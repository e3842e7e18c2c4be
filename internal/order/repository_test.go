package order

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *Order {
	note := "leave at gate"
	size := "XL"
	return &Order{
		ID:          "ZQN-1700000000000-0042",
		UserID:      GuestUserID,
		Subtotal:    decimal.NewFromInt(1500),
		Discount:    decimal.NewFromInt(100),
		CouponCode:  "EID10",
		ShippingFee: decimal.NewFromInt(60),
		TotalAmount: decimal.NewFromInt(1460),
		Items: []Item{
			{ProductID: "p1", Name: "Panjabi", Quantity: 1, PriceAtPurchase: decimal.NewFromInt(1500), SelectedSize: &size},
		},
		DeliveryInfo: DeliveryInfo{
			Name:    "Rahim Uddin",
			Phone:   "01712345678",
			Email:   "rahim@example.com",
			City:    "Dhaka",
			Address: "House 12 Road 4",
			Note:    &note,
		},
		PaymentInfo: PaymentInfo{
			Method:        "cod",
			TransactionID: CODTransactionID,
			Status:        "pending",
		},
		Status: StatusPending,
		Metadata: Metadata{
			IP:        "10.0.0.1",
			UserAgent: "Mozilla/5.0",
			BotScore:  0.9,
			Timestamp: time.Now(),
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)
		o := sampleOrder()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO orders`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(o.ID, "p1", "Panjabi", 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE stock_locks SET order_id = \$1 WHERE reservation_id = \$2`).
			WithArgs(o.ID, "res-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Create(ctx, o, "res-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateID", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO orders`).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err = repo.Create(ctx, sampleOrder(), "res-1")
		assert.ErrorIs(t, err, ErrDuplicateID)
	})
}

func TestRepository_Counts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	since := time.Now().Add(-24 * time.Hour)

	t.Run("ByUser", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE user_id = \$1 AND created_at >= \$2`).
			WithArgs("u1", since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountByUserSince(ctx, "u1", since)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("ByIP", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE ip = \$1`).
			WithArgs("10.0.0.1", since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		count, err := repo.CountByIPSince(ctx, "10.0.0.1", since)
		require.NoError(t, err)
		assert.Equal(t, 5, count)
	})

	t.Run("ByPhone", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE delivery_phone = \$1`).
			WithArgs("01712345678", since).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		count, err := repo.CountByPhoneSince(ctx, "01712345678", since)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

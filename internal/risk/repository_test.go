package risk

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklistRepository_AnyBlocked(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBlacklistRepository(db)
	ctx := context.Background()

	t.Run("Blocked", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		blocked, err := repo.AnyBlocked(ctx, []string{"01712345678", "10.0.0.1"})
		require.NoError(t, err)
		assert.True(t, blocked)
	})

	t.Run("Clean", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		blocked, err := repo.AnyBlocked(ctx, []string{"ok@example.com"})
		require.NoError(t, err)
		assert.False(t, blocked)
	})
}

func TestBlacklistRepository_AllValues(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBlacklistRepository(db)

	mock.ExpectQuery(`SELECT value FROM blacklist`).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).
			AddRow("banned@example.com").
			AddRow("01799999999"))

	values, err := repo.AllValues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"banned@example.com", "01799999999"}, values)
}

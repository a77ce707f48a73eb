package artifacts

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadInteractionsPostgres(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	t.Run("builds history in row order", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"user_id", "item_id"}).
			AddRow("ghost", "iC").
			AddRow("u1", "iB").
			AddRow("ghost", "iA").
			AddRow("", "iZ")

		mockDB.ExpectQuery("SELECT user_id::text, item_id::text").WillReturnRows(rows)

		idx, err := LoadInteractionsPostgres(context.Background(), mockDB)
		require.NoError(t, err)

		assert.Equal(t, []string{"iC", "iA"}, idx.History("ghost"))
		assert.Equal(t, []string{"iB"}, idx.History("u1"))
		assert.Equal(t, 3, idx.Total())
		require.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		mockDB.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

		_, err := LoadInteractionsPostgres(context.Background(), mockDB)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		require.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("row failure", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"user_id", "item_id"}).
			AddRow("u1", "iA").
			AddRow("u1", "iB").
			RowError(1, errors.New("broken row"))

		mockDB.ExpectQuery("SELECT").WillReturnRows(rows)

		_, err := LoadInteractionsPostgres(context.Background(), mockDB)
		require.Error(t, err)
		require.NoError(t, mockDB.ExpectationsWereMet())
	})
}

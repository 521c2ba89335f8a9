package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-storefront/internal/coordinator/sagalog"

	_ "modernc.org/sqlite"
)

func TestRepository_SaveAndHistory(t *testing.T) {
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "saga.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	repo, err := New(ctx, db)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, sagalog.NewEntry(ctx, "ORD-1", sagalog.StatusStarted, "", `{"total":"10.00"}`, nil)))
	require.NoError(t, repo.Save(ctx, sagalog.NewEntry(ctx, "ORD-1", sagalog.StatusFailed, "Payment_Charge_Step", "", []string{"declined"})))
	require.NoError(t, repo.Save(ctx, sagalog.NewEntry(ctx, "ORD-2", sagalog.StatusStarted, "", "", nil)))

	history, err := repo.History(ctx, "ORD-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, sagalog.StatusStarted, history[0].Status)
	assert.Equal(t, `{"total":"10.00"}`, history[0].Payload)
	assert.Equal(t, sagalog.StatusFailed, history[1].Status)
	assert.Equal(t, `["declined"]`, history[1].ErrorMessages)
	assert.Empty(t, history[1].Payload)
	assert.False(t, history[1].UpdatedAt.IsZero())

	// re-applying the schema is harmless
	_, err = New(ctx, db)
	require.NoError(t, err)
}

func TestRepository_SaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &Repository{db: db}
	mock.ExpectExec("INSERT INTO saga_logs").WillReturnError(errors.New("database is locked"))

	err = repo.Save(context.Background(), sagalog.NewEntry(context.Background(), "ORD-9", sagalog.StatusStarted, "", "", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ORD-9"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

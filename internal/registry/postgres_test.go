package registry

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharani043/result-bot/internal/monitor"
)

func TestPostgresStoreLoad(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostgresStoreWithPool(mock, "subscribers")
	require.NoError(t, err)

	query := `SELECT roll, dob, chat_id, notified FROM subscribers ORDER BY position`
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WillReturnRows(
			pgxmock.NewRows([]string{"roll", "dob", "chat_id", "notified"}).
				AddRow("A1", "15/08/2005", int64(100), false).
				AddRow("B2", "01/01/2001", int64(200), true),
		)

	subs, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, monitor.Subscriber{Roll: "A1", DOB: "15/08/2005", ChatID: 100}, subs[0])
	assert.True(t, subs[1].Notified)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveRewritesWholeSet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostgresStoreWithPool(mock, "subscribers")
	require.NoError(t, err)

	insert := `INSERT INTO subscribers (position, roll, dob, chat_id, notified) VALUES ($1, $2, $3, $4, $5)`

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subscribers`)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(regexp.QuoteMeta(insert)).
		WithArgs(0, "A1", "15/08/2005", int64(100), true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(insert)).
		WithArgs(1, "B2", "01/01/2001", int64(200), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = store.Save(context.Background(), []monitor.Subscriber{
		{Roll: "A1", DOB: "15/08/2005", ChatID: 100, Notified: true},
		{Roll: "B2", DOB: "01/01/2001", ChatID: 200},
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveRollsBackOnInsertFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewPostgresStoreWithPool(mock, "subscribers")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subscribers`)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO subscribers`)).
		WithArgs(0, "A1", "d", int64(1), false).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = store.Save(context.Background(), []monitor.Subscriber{
		{Roll: "A1", DOB: "d", ChatID: 1},
	})
	require.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreRejectsBadTableName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewPostgresStoreWithPool(mock, "subscribers; drop table x")
	assert.Error(t, err)
}

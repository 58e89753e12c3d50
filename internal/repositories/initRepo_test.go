package repositories

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"CafPlanner/internal/models/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Repository{
		DB:     sqlx.NewDb(db, "sqlmock"),
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		schema: "caf_planner",
	}, mock
}

func TestClearUnrankedPriorities(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE projet SET priority = NULL`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, r.ClearUnrankedPriorities(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRuleRetriesContention(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO regle_complexite`).
		WillReturnError(&pq.Error{Code: "40001"})
	mock.ExpectQuery(`INSERT INTO regle_complexite`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := r.CreateRule(context.Background(), domain.ComplexityRule{
		Fibo: 1, ScoreMin: 0, ScoreMax: 5, BaseValue: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRuleGivesUpAfterRetries(t *testing.T) {
	r, mock := newMockRepo(t)

	for i := 0; i < retryAttempts; i++ {
		mock.ExpectQuery(`INSERT INTO regle_complexite`).
			WillReturnError(&pq.Error{Code: "55P03"})
	}

	_, err := r.CreateRule(context.Background(), domain.ComplexityRule{
		Fibo: 1, ScoreMin: 0, ScoreMax: 5, BaseValue: 3,
	})
	require.ErrorIs(t, err, ErrStorageContention)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecRetryPassesThroughPlainErrors(t *testing.T) {
	r, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE projet SET priority = NULL`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := r.ClearUnrankedPriorities(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStorageContention)
}

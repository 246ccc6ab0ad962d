package repository

import (
	"context"
	"testing"
	"time"

	"gradebook/internal/domain"
	"gradebook/internal/util"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreRows = []string{"ID", "USER_ID", "EXAM_TYPE_ID", "VALUE", "CREATED_AT", "UPDATED_AT"}

func TestScoreGetByUser(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewScoreDatabaseAdapter(db)

	now := time.Now()
	rows := sqlmock.NewRows(scoreRows).
		AddRow(util.NewULID(), "u1", "e1", 88.5, now, now).
		AddRow(util.NewULID(), "u1", "e2", 0.0, now, now)

	mock.ExpectQuery(`SELECT .* FROM scores WHERE user_id = :1`).
		WithArgs("u1").
		WillReturnRows(rows)

	result, err := repo.GetByUser(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, 88.5, result[0].Value)
	assert.Equal(t, 0.0, result[1].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreGetByPairNotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewScoreDatabaseAdapter(db)

	mock.ExpectQuery(`SELECT .* FROM scores WHERE user_id = :1 AND exam_type_id = :2`).
		WithArgs("u1", "e9").
		WillReturnRows(sqlmock.NewRows(scoreRows))

	result, err := repo.GetByPair(context.Background(), "u1", "e9")

	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoreUpsert(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewScoreDatabaseAdapter(db)

	mock.ExpectExec(`MERGE INTO scores`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	score := &domain.Score{UserID: "u1", ExamTypeID: "e1", Value: 95}
	err := repo.Upsert(context.Background(), score)

	assert.NoError(t, err)
	assert.NotEmpty(t, score.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

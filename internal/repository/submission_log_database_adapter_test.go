package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gradebook/internal/domain"
	"gradebook/internal/util"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var submissionLogRows = []string{"ID", "USER_ID", "EXAM_TYPE_ID", "ATTEMPT_COUNT", "STATUS", "LAST_ATTEMPT_TIME", "AI_RESPONSE", "CREATED_AT"}

func TestSubmissionLogListByPairNewestFirst(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSubmissionLogDatabaseAdapter(db)

	now := time.Now()
	rows := sqlmock.NewRows(submissionLogRows).
		AddRow(util.NewULID(), "u1", "e1", 2, "REJECTED", now, `{"confidence":40}`, now).
		AddRow(util.NewULID(), "u1", "e1", 1, "REJECTED", now.Add(-time.Hour), nil, now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT .* FROM submission_logs\s+WHERE user_id = :1 AND exam_type_id = :2\s+ORDER BY attempt_count DESC`).
		WithArgs("u1", "e1").
		WillReturnRows(rows)

	result, err := repo.ListByPair(context.Background(), "u1", "e1")

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, 2, result[0].AttemptCount)
	assert.Equal(t, domain.StatusRejected, result[0].Status)
	assert.JSONEq(t, `{"confidence":40}`, string(result[0].AIResponse))
	assert.Nil(t, result[1].AIResponse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionLogAppend(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSubmissionLogDatabaseAdapter(db)

	mock.ExpectExec(`INSERT INTO submission_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	log := &domain.SubmissionLog{
		UserID:       "u1",
		ExamTypeID:   "e1",
		AttemptCount: 1,
		Status:       domain.StatusApproved,
		AIResponse:   json.RawMessage(`{"confidence":90}`),
	}
	err := repo.Append(context.Background(), log)

	assert.NoError(t, err)
	assert.NotEmpty(t, log.ID)
	assert.False(t, log.LastAttemptTime.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionLogLockPairAnchorsOnUserRow(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSubmissionLogDatabaseAdapter(db)

	// A pair with no log rows yet must still acquire a lock, so the anchor
	// is the user row rather than the (possibly empty) log history.
	mock.ExpectQuery(`SELECT id FROM users WHERE id = :1 FOR UPDATE`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"ID"}).AddRow("u1"))

	err := repo.LockPair(context.Background(), "u1", "e1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionLogLockPairUnknownUser(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSubmissionLogDatabaseAdapter(db)

	mock.ExpectQuery(`SELECT id FROM users WHERE id = :1 FOR UPDATE`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"ID"}))

	err := repo.LockPair(context.Background(), "ghost", "e1")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionLogListRecentWithUserFilter(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSubmissionLogDatabaseAdapter(db)

	now := time.Now()
	rows := sqlmock.NewRows(submissionLogRows).
		AddRow(util.NewULID(), "u1", "e2", 1, "PENDING", now, nil, now)

	mock.ExpectQuery(`SELECT .* FROM submission_logs\s+WHERE user_id = :1\s+ORDER BY created_at DESC\s+FETCH FIRST :2 ROWS ONLY`).
		WithArgs("u1", 20).
		WillReturnRows(rows)

	result, err := repo.ListRecent(context.Background(), "u1", 20)

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "e2", result[0].ExamTypeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

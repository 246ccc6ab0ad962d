package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gradebook/internal/domain"
	"gradebook/internal/repository/models"
	"gradebook/internal/util"

	"github.com/jmoiron/sqlx"
)

type SubmissionLogDatabaseAdapter struct {
	db *sqlx.DB
}

// NewSubmissionLogDatabaseAdapter creates a new instance of SubmissionLogDatabaseAdapter
func NewSubmissionLogDatabaseAdapter(db *sqlx.DB) domain.SubmissionLogRepository {
	return &SubmissionLogDatabaseAdapter{db: db}
}

const submissionLogColumns = `id, user_id, exam_type_id, attempt_count, status, last_attempt_time, ai_response, created_at`

// ListByPair returns the pair's attempt rows newest first.
func (r *SubmissionLogDatabaseAdapter) ListByPair(ctx context.Context, userID, examTypeID string) ([]*domain.SubmissionLog, error) {
	executor := GetExecutor(ctx, r.db)

	var logs []models.SubmissionLog
	query := `SELECT ` + submissionLogColumns + ` FROM submission_logs
	          WHERE user_id = :1 AND exam_type_id = :2
	          ORDER BY attempt_count DESC, created_at DESC`
	if err := executor.SelectContext(ctx, &logs, query, userID, examTypeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*domain.SubmissionLog{}, nil
		}
		return nil, fmt.Errorf("failed to list submission logs by pair: %w", err)
	}

	result := make([]*domain.SubmissionLog, len(logs))
	for i := range logs {
		result[i] = convertToDomainSubmissionLog(&logs[i])
	}
	return result, nil
}

// LockPair serializes concurrent submissions for one (student, exam) pair.
// The lock is anchored on the student's user row: locking the pair's own log
// rows would lock nothing on a first attempt, letting two concurrent
// submissions both read count zero and both append attempt one. The user row
// exists before any attempt does. Must run inside a transaction; the lock is
// released at commit or rollback.
func (r *SubmissionLogDatabaseAdapter) LockPair(ctx context.Context, userID, examTypeID string) error {
	executor := GetExecutor(ctx, r.db)

	var id string
	query := `SELECT id FROM users WHERE id = :1 FOR UPDATE`
	if err := executor.GetContext(ctx, &id, query, userID); err != nil {
		return fmt.Errorf("failed to lock submissions for user %s: %w", userID, err)
	}
	return nil
}

// Append inserts one attempt row. The history is append-only; rows are never
// updated or removed outside of an exam cascade delete.
func (r *SubmissionLogDatabaseAdapter) Append(ctx context.Context, log *domain.SubmissionLog) error {
	executor := GetExecutor(ctx, r.db)

	model := convertToModelSubmissionLog(log)
	model.ID = util.NewULID()
	model.CreatedAt = time.Now()
	if model.LastAttemptTime.IsZero() {
		model.LastAttemptTime = model.CreatedAt
	}

	query := `INSERT INTO submission_logs (id, user_id, exam_type_id, attempt_count, status, last_attempt_time, ai_response, created_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`
	_, err := executor.ExecContext(ctx, query,
		model.ID, model.UserID, model.ExamTypeID, model.AttemptCount,
		model.Status, model.LastAttemptTime, model.AIResponse, model.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append submission log: %w", err)
	}

	log.ID = model.ID
	log.CreatedAt = model.CreatedAt
	log.LastAttemptTime = model.LastAttemptTime
	return nil
}

// ListRecent returns the newest rows across all users, capped at limit.
// An empty userID means no user filter.
func (r *SubmissionLogDatabaseAdapter) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.SubmissionLog, error) {
	executor := GetExecutor(ctx, r.db)

	var logs []models.SubmissionLog
	var err error
	if userID == "" {
		query := `SELECT ` + submissionLogColumns + ` FROM submission_logs
		          ORDER BY created_at DESC
		          FETCH FIRST :1 ROWS ONLY`
		err = executor.SelectContext(ctx, &logs, query, limit)
	} else {
		query := `SELECT ` + submissionLogColumns + ` FROM submission_logs
		          WHERE user_id = :1
		          ORDER BY created_at DESC
		          FETCH FIRST :2 ROWS ONLY`
		err = executor.SelectContext(ctx, &logs, query, userID, limit)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*domain.SubmissionLog{}, nil
		}
		return nil, fmt.Errorf("failed to list recent submission logs: %w", err)
	}

	result := make([]*domain.SubmissionLog, len(logs))
	for i := range logs {
		result[i] = convertToDomainSubmissionLog(&logs[i])
	}
	return result, nil
}

func convertToDomainSubmissionLog(model *models.SubmissionLog) *domain.SubmissionLog {
	var raw json.RawMessage
	if model.AIResponse.Valid {
		raw = json.RawMessage(model.AIResponse.String)
	}
	return &domain.SubmissionLog{
		ID:              model.ID,
		UserID:          model.UserID,
		ExamTypeID:      model.ExamTypeID,
		AttemptCount:    model.AttemptCount,
		Status:          domain.SubmissionStatus(model.Status),
		LastAttemptTime: model.LastAttemptTime,
		AIResponse:      raw,
		CreatedAt:       model.CreatedAt,
	}
}

func convertToModelSubmissionLog(log *domain.SubmissionLog) *models.SubmissionLog {
	return &models.SubmissionLog{
		ID:              log.ID,
		UserID:          log.UserID,
		ExamTypeID:      log.ExamTypeID,
		AttemptCount:    log.AttemptCount,
		Status:          string(log.Status),
		LastAttemptTime: log.LastAttemptTime,
		AIResponse:      util.StringToNullString(string(log.AIResponse)),
		CreatedAt:       log.CreatedAt,
	}
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gradebook/internal/domain"
	"gradebook/internal/repository/models"
	"gradebook/internal/util"

	"github.com/jmoiron/sqlx"
)

type ScoreDatabaseAdapter struct {
	db *sqlx.DB
}

// NewScoreDatabaseAdapter creates a new instance of ScoreDatabaseAdapter
func NewScoreDatabaseAdapter(db *sqlx.DB) domain.ScoreRepository {
	return &ScoreDatabaseAdapter{db: db}
}

const scoreColumns = `id, user_id, exam_type_id, value, created_at, updated_at`

// GetByUser returns every recorded score for one student.
func (r *ScoreDatabaseAdapter) GetByUser(ctx context.Context, userID string) ([]*domain.Score, error) {
	executor := GetExecutor(ctx, r.db)

	var scores []models.Score
	query := `SELECT ` + scoreColumns + ` FROM scores WHERE user_id = :1`
	if err := executor.SelectContext(ctx, &scores, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*domain.Score{}, nil
		}
		return nil, fmt.Errorf("failed to get scores by user: %w", err)
	}
	return convertToDomainScores(scores), nil
}

// GetByPair returns the single recorded score for a (student, exam) pair.
// Returns nil, nil when the pair has no row.
func (r *ScoreDatabaseAdapter) GetByPair(ctx context.Context, userID, examTypeID string) (*domain.Score, error) {
	executor := GetExecutor(ctx, r.db)

	var score models.Score
	query := `SELECT ` + scoreColumns + ` FROM scores WHERE user_id = :1 AND exam_type_id = :2`
	if err := executor.GetContext(ctx, &score, query, userID, examTypeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get score by pair: %w", err)
	}
	return convertToDomainScore(&score), nil
}

// ListAll returns every recorded score across all students.
func (r *ScoreDatabaseAdapter) ListAll(ctx context.Context) ([]*domain.Score, error) {
	executor := GetExecutor(ctx, r.db)

	var scores []models.Score
	query := `SELECT ` + scoreColumns + ` FROM scores`
	if err := executor.SelectContext(ctx, &scores, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*domain.Score{}, nil
		}
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	return convertToDomainScores(scores), nil
}

// Upsert inserts the pair's row or updates its value in place. The unique
// constraint on (user_id, exam_type_id) keeps the pair at one row.
func (r *ScoreDatabaseAdapter) Upsert(ctx context.Context, score *domain.Score) error {
	executor := GetExecutor(ctx, r.db)

	now := time.Now()
	query := `MERGE INTO scores s
	          USING (SELECT :1 AS user_id, :2 AS exam_type_id FROM dual) src
	          ON (s.user_id = src.user_id AND s.exam_type_id = src.exam_type_id)
	          WHEN MATCHED THEN
	            UPDATE SET s.value = :3, s.updated_at = :4
	          WHEN NOT MATCHED THEN
	            INSERT (id, user_id, exam_type_id, value, created_at, updated_at)
	            VALUES (:5, :6, :7, :8, :9, :10)`

	newID := util.NewULID()
	_, err := executor.ExecContext(ctx, query,
		score.UserID, score.ExamTypeID,
		score.Value, now,
		newID, score.UserID, score.ExamTypeID, score.Value, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}

	if score.ID == "" {
		score.ID = newID
	}
	score.UpdatedAt = now
	return nil
}

func convertToDomainScore(model *models.Score) *domain.Score {
	return &domain.Score{
		ID:         model.ID,
		UserID:     model.UserID,
		ExamTypeID: model.ExamTypeID,
		Value:      model.Value,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func convertToDomainScores(scores []models.Score) []*domain.Score {
	result := make([]*domain.Score, len(scores))
	for i := range scores {
		result[i] = convertToDomainScore(&scores[i])
	}
	return result
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gradebook/internal/domain"
	"gradebook/internal/repository/models"
	"gradebook/internal/util"

	"github.com/jmoiron/sqlx"
)

type ExamTypeDatabaseAdapter struct {
	db *sqlx.DB
}

// NewExamTypeDatabaseAdapter creates a new instance of ExamTypeDatabaseAdapter
func NewExamTypeDatabaseAdapter(db *sqlx.DB) domain.ExamTypeRepository {
	return &ExamTypeDatabaseAdapter{db: db}
}

const examTypeColumns = `id, name, is_mandatory, is_open_for_submission, submission_deadline, created_at, updated_at`

// ListAll returns the full catalog in canonical order: mandatory exams first,
// then by name ascending.
func (r *ExamTypeDatabaseAdapter) ListAll(ctx context.Context) ([]*domain.ExamType, error) {
	executor := GetExecutor(ctx, r.db)

	var examTypes []models.ExamType
	query := `SELECT ` + examTypeColumns + ` FROM exam_types ORDER BY is_mandatory DESC, name ASC`
	if err := executor.SelectContext(ctx, &examTypes, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*domain.ExamType{}, nil
		}
		return nil, fmt.Errorf("failed to list exam types: %w", err)
	}

	result := make([]*domain.ExamType, len(examTypes))
	for i := range examTypes {
		result[i] = convertToDomainExamType(&examTypes[i])
	}
	return result, nil
}

// GetByID retrieves one exam by its ID. Returns nil, nil when not found.
func (r *ExamTypeDatabaseAdapter) GetByID(ctx context.Context, id string) (*domain.ExamType, error) {
	executor := GetExecutor(ctx, r.db)

	var examType models.ExamType
	query := `SELECT ` + examTypeColumns + ` FROM exam_types WHERE id = :1`
	if err := executor.GetContext(ctx, &examType, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exam type by id: %w", err)
	}
	return convertToDomainExamType(&examType), nil
}

// GetByName retrieves one exam by its unique name. Returns nil, nil when not found.
func (r *ExamTypeDatabaseAdapter) GetByName(ctx context.Context, name string) (*domain.ExamType, error) {
	executor := GetExecutor(ctx, r.db)

	var examType models.ExamType
	query := `SELECT ` + examTypeColumns + ` FROM exam_types WHERE name = :1`
	if err := executor.GetContext(ctx, &examType, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exam type by name: %w", err)
	}
	return convertToDomainExamType(&examType), nil
}

// Create inserts a new exam and writes the generated ID back onto the domain object.
func (r *ExamTypeDatabaseAdapter) Create(ctx context.Context, exam *domain.ExamType) error {
	executor := GetExecutor(ctx, r.db)

	model := convertToModelExamType(exam)
	model.ID = util.NewULID()
	model.CreatedAt = time.Now()
	model.UpdatedAt = model.CreatedAt

	query := `INSERT INTO exam_types (id, name, is_mandatory, is_open_for_submission, submission_deadline, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7)`
	_, err := executor.ExecContext(ctx, query,
		model.ID, model.Name, model.IsMandatory, model.IsOpenForSubmission,
		model.SubmissionDeadline, model.CreatedAt, model.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create exam type: %w", err)
	}

	exam.ID = model.ID
	exam.CreatedAt = model.CreatedAt
	exam.UpdatedAt = model.UpdatedAt
	return nil
}

// SetMandatory resets every exam's mandatory flag and marks only the given IDs.
// The two statements must run inside one transaction on the caller's context.
func (r *ExamTypeDatabaseAdapter) SetMandatory(ctx context.Context, mandatoryIDs []string) error {
	executor := GetExecutor(ctx, r.db)

	now := time.Now()
	if _, err := executor.ExecContext(ctx,
		`UPDATE exam_types SET is_mandatory = 0, updated_at = :1`, now); err != nil {
		return fmt.Errorf("failed to reset mandatory flags: %w", err)
	}

	if len(mandatoryIDs) == 0 {
		return nil
	}

	placeholders := make([]string, len(mandatoryIDs))
	args := make([]interface{}, 0, len(mandatoryIDs)+1)
	args = append(args, now)
	for i, id := range mandatoryIDs {
		placeholders[i] = fmt.Sprintf(":%d", i+2)
		args = append(args, id)
	}
	query := `UPDATE exam_types SET is_mandatory = 1, updated_at = :1 WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark mandatory exams: %w", err)
	}
	return nil
}

// SetOpenForSubmission flips the manual submission switch for one exam.
func (r *ExamTypeDatabaseAdapter) SetOpenForSubmission(ctx context.Context, id string, open bool) error {
	executor := GetExecutor(ctx, r.db)

	query := `UPDATE exam_types SET is_open_for_submission = :1, updated_at = :2 WHERE id = :3`
	result, err := executor.ExecContext(ctx, query, open, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set open for submission: %w", err)
	}
	return requireRowAffected(result, id)
}

// SetDeadline sets or clears (nil) the submission deadline for one exam.
func (r *ExamTypeDatabaseAdapter) SetDeadline(ctx context.Context, id string, deadline *time.Time) error {
	executor := GetExecutor(ctx, r.db)

	query := `UPDATE exam_types SET submission_deadline = :1, updated_at = :2 WHERE id = :3`
	result, err := executor.ExecContext(ctx, query, util.TimePtrToNullTime(deadline), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set submission deadline: %w", err)
	}
	return requireRowAffected(result, id)
}

// Delete removes the exam and cascades to its scores and submission logs.
// Callers run this inside a transaction so the three deletes commit together.
func (r *ExamTypeDatabaseAdapter) Delete(ctx context.Context, id string) error {
	executor := GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, `DELETE FROM scores WHERE exam_type_id = :1`, id); err != nil {
		return fmt.Errorf("failed to delete scores for exam type: %w", err)
	}
	if _, err := executor.ExecContext(ctx, `DELETE FROM submission_logs WHERE exam_type_id = :1`, id); err != nil {
		return fmt.Errorf("failed to delete submission logs for exam type: %w", err)
	}

	result, err := executor.ExecContext(ctx, `DELETE FROM exam_types WHERE id = :1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete exam type: %w", err)
	}
	return requireRowAffected(result, id)
}

func requireRowAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NewExamNotFoundError(id)
	}
	return nil
}

func convertToDomainExamType(model *models.ExamType) *domain.ExamType {
	return &domain.ExamType{
		ID:                  model.ID,
		Name:                model.Name,
		IsMandatory:         model.IsMandatory,
		IsOpenForSubmission: model.IsOpenForSubmission,
		SubmissionDeadline:  util.NullTimeToPtr(model.SubmissionDeadline),
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}

func convertToModelExamType(exam *domain.ExamType) *models.ExamType {
	return &models.ExamType{
		ID:                  exam.ID,
		Name:                exam.Name,
		IsMandatory:         exam.IsMandatory,
		IsOpenForSubmission: exam.IsOpenForSubmission,
		SubmissionDeadline:  util.TimePtrToNullTime(exam.SubmissionDeadline),
		CreatedAt:           exam.CreatedAt,
		UpdatedAt:           exam.UpdatedAt,
	}
}

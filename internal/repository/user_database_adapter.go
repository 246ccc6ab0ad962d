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

type UserDatabaseAdapter struct {
	db *sqlx.DB
}

// NewUserDatabaseAdapter creates a new instance of UserDatabaseAdapter
func NewUserDatabaseAdapter(db *sqlx.DB) domain.UserRepository {
	return &UserDatabaseAdapter{db: db}
}

const userColumns = `id, google_id, email, name, seat_number, role, created_at, updated_at, deleted_at`

// Create inserts a new user and writes the generated ID back onto the domain object.
func (r *UserDatabaseAdapter) Create(ctx context.Context, user *domain.User) error {
	executor := GetExecutor(ctx, r.db)

	model := convertToModelUser(user)
	model.ID = util.NewULID()
	model.CreatedAt = time.Now()
	model.UpdatedAt = model.CreatedAt

	query := `INSERT INTO users (id, google_id, email, name, seat_number, role, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`
	_, err := executor.ExecContext(ctx, query,
		model.ID, model.GoogleID, model.Email, model.Name,
		model.SeatNumber, model.Role, model.CreatedAt, model.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = model.ID
	user.CreatedAt = model.CreatedAt
	user.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID retrieves a user by internal ID. Returns nil, nil when not found.
func (r *UserDatabaseAdapter) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = :1 AND deleted_at IS NULL`, id)
}

// GetByEmail retrieves a user by email. Returns nil, nil when not found.
func (r *UserDatabaseAdapter) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = :1 AND deleted_at IS NULL`, email)
}

// GetByGoogleID retrieves a user by Google OAuth subject. Returns nil, nil when not found.
func (r *UserDatabaseAdapter) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE google_id = :1 AND deleted_at IS NULL`, googleID)
}

func (r *UserDatabaseAdapter) getOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	executor := GetExecutor(ctx, r.db)

	var user models.User
	if err := executor.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return convertToDomainUser(&user), nil
}

// Update rewrites the user's mutable fields.
func (r *UserDatabaseAdapter) Update(ctx context.Context, user *domain.User) error {
	executor := GetExecutor(ctx, r.db)

	user.UpdatedAt = time.Now()
	model := convertToModelUser(user)

	query := `UPDATE users SET google_id = :1, email = :2, name = :3, seat_number = :4, role = :5, updated_at = :6
	          WHERE id = :7 AND deleted_at IS NULL`
	result, err := executor.ExecContext(ctx, query,
		model.GoogleID, model.Email, model.Name, model.SeatNumber,
		model.Role, model.UpdatedAt, model.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NewUserNotFoundError(user.ID)
	}
	return nil
}

// ListStudents returns all active students ordered by seat number, then name.
func (r *UserDatabaseAdapter) ListStudents(ctx context.Context) ([]*domain.User, error) {
	executor := GetExecutor(ctx, r.db)

	var users []models.User
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE role = :1 AND deleted_at IS NULL
	          ORDER BY seat_number ASC, name ASC`
	if err := executor.SelectContext(ctx, &users, query, string(domain.RoleStudent)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*domain.User{}, nil
		}
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	result := make([]*domain.User, len(users))
	for i := range users {
		result[i] = convertToDomainUser(&users[i])
	}
	return result, nil
}

func convertToDomainUser(model *models.User) *domain.User {
	return &domain.User{
		ID:         model.ID,
		GoogleID:   model.GoogleID.String,
		Email:      model.Email,
		Name:       model.Name,
		SeatNumber: model.SeatNumber.String,
		Role:       domain.UserRole(model.Role),
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
		DeletedAt:  util.NullTimeToPtr(model.DeletedAt),
	}
}

func convertToModelUser(user *domain.User) *models.User {
	return &models.User{
		ID:         user.ID,
		GoogleID:   util.StringToNullString(user.GoogleID),
		Email:      user.Email,
		Name:       user.Name,
		SeatNumber: util.StringToNullString(user.SeatNumber),
		Role:       string(user.Role),
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
		DeletedAt:  util.TimePtrToNullTime(user.DeletedAt),
	}
}

package service

import (
	"context"
	"time"

	"gradebook/internal/domain"
	"gradebook/internal/dto"

	"github.com/stretchr/testify/mock"
)

// --- MockExamTypeRepository ---
type MockExamTypeRepository struct {
	mock.Mock
}

func (m *MockExamTypeRepository) ListAll(ctx context.Context) ([]*domain.ExamType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ExamType), args.Error(1)
}

func (m *MockExamTypeRepository) GetByID(ctx context.Context, id string) (*domain.ExamType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExamType), args.Error(1)
}

func (m *MockExamTypeRepository) GetByName(ctx context.Context, name string) (*domain.ExamType, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExamType), args.Error(1)
}

func (m *MockExamTypeRepository) Create(ctx context.Context, exam *domain.ExamType) error {
	args := m.Called(ctx, exam)
	return args.Error(0)
}

func (m *MockExamTypeRepository) SetMandatory(ctx context.Context, mandatoryIDs []string) error {
	args := m.Called(ctx, mandatoryIDs)
	return args.Error(0)
}

func (m *MockExamTypeRepository) SetOpenForSubmission(ctx context.Context, id string, open bool) error {
	args := m.Called(ctx, id, open)
	return args.Error(0)
}

func (m *MockExamTypeRepository) SetDeadline(ctx context.Context, id string, deadline *time.Time) error {
	args := m.Called(ctx, id, deadline)
	return args.Error(0)
}

func (m *MockExamTypeRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- MockScoreRepository ---
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) GetByUser(ctx context.Context, userID string) ([]*domain.Score, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Score), args.Error(1)
}

func (m *MockScoreRepository) GetByPair(ctx context.Context, userID, examTypeID string) (*domain.Score, error) {
	args := m.Called(ctx, userID, examTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Score), args.Error(1)
}

func (m *MockScoreRepository) ListAll(ctx context.Context) ([]*domain.Score, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Score), args.Error(1)
}

func (m *MockScoreRepository) Upsert(ctx context.Context, score *domain.Score) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

// --- MockSubmissionLogRepository ---
type MockSubmissionLogRepository struct {
	mock.Mock
}

func (m *MockSubmissionLogRepository) ListByPair(ctx context.Context, userID, examTypeID string) ([]*domain.SubmissionLog, error) {
	args := m.Called(ctx, userID, examTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SubmissionLog), args.Error(1)
}

func (m *MockSubmissionLogRepository) LockPair(ctx context.Context, userID, examTypeID string) error {
	args := m.Called(ctx, userID, examTypeID)
	return args.Error(0)
}

func (m *MockSubmissionLogRepository) Append(ctx context.Context, log *domain.SubmissionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockSubmissionLogRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.SubmissionLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SubmissionLog), args.Error(1)
}

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) ListStudents(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// --- MockTransactionManager ---
// Runs the function directly on the caller's context; repositories under test
// never see a real transaction.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// --- MockEvidenceVerifier ---
type MockEvidenceVerifier struct {
	mock.Mock
}

func (m *MockEvidenceVerifier) VerifyEvidence(ctx context.Context, ev domain.Evidence) (*domain.Verdict, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Verdict), args.Error(1)
}

// --- MockChallengeVerifier ---
type MockChallengeVerifier struct {
	mock.Mock
}

func (m *MockChallengeVerifier) VerifyChallenge(ctx context.Context, token, clientIP string) (bool, error) {
	args := m.Called(ctx, token, clientIP)
	return args.Bool(0), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockMailer ---
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendResult(ctx context.Context, email string, report *dto.ReportResponse) error {
	args := m.Called(ctx, email, report)
	return args.Error(0)
}

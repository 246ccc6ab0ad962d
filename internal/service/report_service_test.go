package service

import (
	"context"
	"encoding/json"
	"testing"

	"gradebook/internal/domain"
	"gradebook/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func student() *domain.User {
	return &domain.User{ID: "u1", Name: "Kim", SeatNumber: "12", Email: "kim@example.com", Role: domain.RoleStudent}
}

func TestGetStudentReportComputesAndCaches(t *testing.T) {
	userRepo := new(MockUserRepository)
	examRepo := new(MockExamTypeRepository)
	scoreRepo := new(MockScoreRepository)
	cacheMock := new(MockCache)
	svc := NewReportService(userRepo, examRepo, scoreRepo, nil, cacheMock)
	ctx := context.Background()

	cacheMock.On("Get", ctx, reportCacheKey("u1")).Return("", domain.ErrCacheMiss)
	userRepo.On("GetByID", ctx, "u1").Return(student(), nil)
	examRepo.On("ListAll", ctx).Return([]*domain.ExamType{
		{ID: "e1", Name: "Midterm", IsMandatory: true},
		{ID: "e2", Name: "Bonus", IsMandatory: false},
	}, nil)
	scoreRepo.On("GetByUser", ctx, "u1").Return([]*domain.Score{
		{UserID: "u1", ExamTypeID: "e1", Value: 80},
		{UserID: "u1", ExamTypeID: "e2", Value: 60},
	}, nil)
	cacheMock.On("Set", ctx, reportCacheKey("u1"), mock.Anything, reportCacheTTL).Return(nil)

	report, err := svc.GetStudentReport(ctx, "u1")

	require.NoError(t, err)
	// (80 + 60) / 20 slots = 7.00
	assert.Equal(t, 7.00, report.Average)
	assert.Equal(t, 2, report.ExamCount)
	assert.Equal(t, 2, report.ValidExamCount)
	assert.Len(t, report.Items, 2)
	cacheMock.AssertExpectations(t)
}

func TestGetStudentReportServesFromCache(t *testing.T) {
	userRepo := new(MockUserRepository)
	examRepo := new(MockExamTypeRepository)
	scoreRepo := new(MockScoreRepository)
	cacheMock := new(MockCache)
	svc := NewReportService(userRepo, examRepo, scoreRepo, nil, cacheMock)
	ctx := context.Background()

	cached := &dto.ReportResponse{UserID: "u1", Average: 42.5}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)
	cacheMock.On("Get", ctx, reportCacheKey("u1")).Return(string(payload), nil)

	report, err := svc.GetStudentReport(ctx, "u1")

	require.NoError(t, err)
	assert.Equal(t, 42.5, report.Average)
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	examRepo.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestGetStudentReportUnknownUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	examRepo := new(MockExamTypeRepository)
	scoreRepo := new(MockScoreRepository)
	svc := NewReportService(userRepo, examRepo, scoreRepo, nil, nil)
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "ghost").Return(nil, nil)

	_, err := svc.GetStudentReport(ctx, "ghost")

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.CodeUserNotFound, domainErr.Code)
}

func TestInvalidateUserReport(t *testing.T) {
	cacheMock := new(MockCache)
	svc := NewReportService(nil, nil, nil, nil, cacheMock)
	ctx := context.Background()

	cacheMock.On("Delete", ctx, reportCacheKey("u1")).Return(nil)

	svc.InvalidateUserReport(ctx, "u1")

	cacheMock.AssertExpectations(t)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gradebook/internal/cache"
	"gradebook/internal/domain"
	"gradebook/internal/dto"
	"gradebook/internal/logger"

	"go.uber.org/zap"
)

const (
	reportCacheService = "report"
	reportCacheObject  = "student"
	reportCacheTTL     = 10 * time.Minute
)

// ReportService assembles student report cards.
type ReportService interface {
	// GetStudentReport computes the student's report card. Results are cached;
	// every score or catalog mutation must go through a ReportInvalidator so
	// stale averages never outlive the write.
	GetStudentReport(ctx context.Context, userID string) (*dto.ReportResponse, error)

	ReportInvalidator
}

type reportService struct {
	userRepo      domain.UserRepository
	examRepo      domain.ExamTypeRepository
	scoreRepo     domain.ScoreRepository
	submissionSvc SubmissionService
	cache         domain.Cache
}

// NewReportService creates a new ReportService. cache may be nil to disable
// report caching.
func NewReportService(
	userRepo domain.UserRepository,
	examRepo domain.ExamTypeRepository,
	scoreRepo domain.ScoreRepository,
	submissionSvc SubmissionService,
	cacheClient domain.Cache,
) ReportService {
	return &reportService{
		userRepo:      userRepo,
		examRepo:      examRepo,
		scoreRepo:     scoreRepo,
		submissionSvc: submissionSvc,
		cache:         cacheClient,
	}
}

func (s *reportService) GetStudentReport(ctx context.Context, userID string) (*dto.ReportResponse, error) {
	l := logger.Get()

	if s.cache != nil {
		key := reportCacheKey(userID)
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var resp dto.ReportResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
			l.Warn("dropping undecodable cached report", zap.String("key", key))
			_ = s.cache.Delete(ctx, key)
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			l.Warn("report cache read failed", zap.Error(err))
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if user == nil {
		return nil, domain.NewUserNotFoundError(userID)
	}

	report, err := s.computeReport(ctx, user)
	if err != nil {
		return nil, err
	}
	resp := toReportResponse(report)

	if s.cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, reportCacheKey(userID), string(payload), reportCacheTTL); err != nil {
				l.Warn("report cache write failed", zap.Error(err))
			}
		}
	}
	return resp, nil
}

// computeReport loads the catalog and the student's scores, then applies the
// aggregation rule. The catalog is read fresh on every call; mid-session
// catalog edits show up in the very next report.
func (s *reportService) computeReport(ctx context.Context, user *domain.User) (*domain.Report, error) {
	catalog, err := s.examRepo.ListAll(ctx)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	scoreRows, err := s.scoreRepo.GetByUser(ctx, user.ID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	scores := make(map[string]float64, len(scoreRows))
	for _, row := range scoreRows {
		scores[row.ExamTypeID] = row.Value
	}

	var gate domain.SubmissionGate
	if s.submissionSvc != nil {
		gate = s.submissionSvc.Gate(ctx)
	}
	return domain.ComputeReport(user, catalog, scores, gate, time.Now()), nil
}

// InvalidateUserReport drops the student's cached report card.
func (s *reportService) InvalidateUserReport(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, reportCacheKey(userID)); err != nil {
		logger.Get().Warn("report cache invalidation failed",
			zap.Error(err), zap.String("user_id", userID))
	}
}

func reportCacheKey(userID string) string {
	return cache.GenerateCacheKey(reportCacheService, reportCacheObject, userID)
}

func toReportResponse(report *domain.Report) *dto.ReportResponse {
	items := make([]dto.ReportItemResponse, len(report.Items))
	for i, item := range report.Items {
		items[i] = dto.ReportItemResponse{
			ExamID:      item.ExamID,
			ExamName:    item.ExamName,
			IsMandatory: item.IsMandatory,
			Score:       item.Score,
			ZeroFilled:  item.ZeroFilled,
			Included:    item.Included,
			CanSubmit:   item.CanSubmit,
			Deadline:    item.Deadline,
		}
	}
	return &dto.ReportResponse{
		UserID:         report.UserID,
		UserName:       report.UserName,
		SeatNumber:     report.SeatNumber,
		Average:        report.Average,
		ExamCount:      report.ExamCount,
		ValidExamCount: report.ValidExamCount,
		Items:          items,
	}
}

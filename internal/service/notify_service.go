package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"gradebook/internal/domain"
	"gradebook/internal/dto"
	"gradebook/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Mailer sends one result notification. Implementations wrap the actual
// provider; the service only cares about per-recipient success.
type Mailer interface {
	SendResult(ctx context.Context, email string, report *dto.ReportResponse) error
}

// NotifyService sends report-card emails to students, throttled to the
// provider's request quota.
type NotifyService interface {
	NotifyResults(ctx context.Context, userIDs []string) (*dto.NotifyResponse, error)
}

type notifyService struct {
	userRepo  domain.UserRepository
	reportSvc ReportService
	mailer    Mailer
	limiter   *rate.Limiter
}

// NewNotifyService creates a NotifyService capped at ratePerSecond outbound
// calls.
func NewNotifyService(userRepo domain.UserRepository, reportSvc ReportService, mailer Mailer, ratePerSecond int) NotifyService {
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	return &notifyService{
		userRepo:  userRepo,
		reportSvc: reportSvc,
		mailer:    mailer,
		limiter:   rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

// NotifyResults emails each listed student their current report card. An
// empty userIDs means the whole roster. Per-recipient failures are counted
// and logged, not fatal; the batch keeps going.
func (s *notifyService) NotifyResults(ctx context.Context, userIDs []string) (*dto.NotifyResponse, error) {
	l := logger.Get()

	var targets []*domain.User
	if len(userIDs) == 0 {
		students, err := s.userRepo.ListStudents(ctx)
		if err != nil {
			return nil, domain.NewInternalError(err)
		}
		targets = students
	} else {
		for _, id := range userIDs {
			user, err := s.userRepo.GetByID(ctx, id)
			if err != nil {
				return nil, domain.NewInternalError(err)
			}
			if user == nil {
				return nil, domain.NewUserNotFoundError(id)
			}
			targets = append(targets, user)
		}
	}

	var sent, failed int64
	g, gctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		user := target
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}

			report, err := s.reportSvc.GetStudentReport(gctx, user.ID)
			if err != nil {
				l.Warn("skipping notification, report unavailable",
					zap.Error(err), zap.String("user_id", user.ID))
				atomic.AddInt64(&failed, 1)
				return nil
			}

			if err := s.mailer.SendResult(gctx, user.Email, report); err != nil {
				l.Warn("notification send failed",
					zap.Error(err), zap.String("email", user.Email))
				atomic.AddInt64(&failed, 1)
				return nil
			}
			atomic.AddInt64(&sent, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("notification batch aborted: %w", err)
	}

	l.Info("notification batch finished",
		zap.Int64("sent", sent), zap.Int64("failed", failed))
	return &dto.NotifyResponse{Sent: int(sent), Failed: int(failed)}, nil
}

package service

import (
	"context"
	"time"

	"gradebook/internal/domain"
	"gradebook/internal/dto"
	"gradebook/internal/logger"

	"go.uber.org/zap"
)

// AdminService covers the teacher-side operations: catalog management, direct
// score entry, the class score matrix and portable JSON snapshots.
type AdminService interface {
	CreateExam(ctx context.Context, req *dto.CreateExamRequest) (*dto.ExamResponse, error)
	ListExams(ctx context.Context) ([]*dto.ExamResponse, error)
	SetMandatoryExams(ctx context.Context, examIDs []string) error
	SetExamOpen(ctx context.Context, examID string, open bool) error
	SetExamDeadline(ctx context.Context, examID string, deadline *time.Time) error
	DeleteExam(ctx context.Context, examID string) error

	UpsertScore(ctx context.Context, req *dto.UpsertScoreRequest) error
	GetScoreMatrix(ctx context.Context) (*dto.ScoreMatrixResponse, error)
	ListRecentLogs(ctx context.Context, userID string, limit int) ([]*dto.SubmissionLogResponse, error)

	ImportRoster(ctx context.Context, req *dto.RosterImportRequest) (int, error)
	ExportBundle(ctx context.Context) (*dto.ExportBundle, error)
	ImportBundle(ctx context.Context, bundle *dto.ExportBundle) error
}

type adminService struct {
	userRepo    domain.UserRepository
	examRepo    domain.ExamTypeRepository
	scoreRepo   domain.ScoreRepository
	logRepo     domain.SubmissionLogRepository
	txManager   domain.TransactionManager
	invalidator ReportInvalidator
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	userRepo domain.UserRepository,
	examRepo domain.ExamTypeRepository,
	scoreRepo domain.ScoreRepository,
	logRepo domain.SubmissionLogRepository,
	txManager domain.TransactionManager,
	invalidator ReportInvalidator,
) AdminService {
	return &adminService{
		userRepo:    userRepo,
		examRepo:    examRepo,
		scoreRepo:   scoreRepo,
		logRepo:     logRepo,
		txManager:   txManager,
		invalidator: invalidator,
	}
}

func (s *adminService) CreateExam(ctx context.Context, req *dto.CreateExamRequest) (*dto.ExamResponse, error) {
	exam := domain.NewExamType(req.Name, req.IsMandatory)
	exam.SubmissionDeadline = req.Deadline
	if err := exam.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.examRepo.GetByName(ctx, exam.Name)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if existing != nil {
		return nil, domain.NewInvalidInputError("an exam with this name already exists")
	}

	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, domain.NewInternalError(err)
	}

	s.invalidateAllReports(ctx)
	return toExamResponse(exam), nil
}

func (s *adminService) ListExams(ctx context.Context) ([]*dto.ExamResponse, error) {
	catalog, err := s.examRepo.ListAll(ctx)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	result := make([]*dto.ExamResponse, len(catalog))
	for i, exam := range catalog {
		result[i] = toExamResponse(exam)
	}
	return result, nil
}

// SetMandatoryExams replaces the mandatory set wholesale: every exam is reset
// and only the given IDs are marked, inside one transaction.
func (s *adminService) SetMandatoryExams(ctx context.Context, examIDs []string) error {
	for _, id := range examIDs {
		exam, err := s.examRepo.GetByID(ctx, id)
		if err != nil {
			return domain.NewInternalError(err)
		}
		if exam == nil {
			return domain.NewExamNotFoundError(id)
		}
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.examRepo.SetMandatory(txCtx, examIDs)
	})
	if err != nil {
		return domain.NewInternalError(err)
	}

	s.invalidateAllReports(ctx)
	return nil
}

func (s *adminService) SetExamOpen(ctx context.Context, examID string, open bool) error {
	if err := s.examRepo.SetOpenForSubmission(ctx, examID, open); err != nil {
		return err
	}
	s.invalidateAllReports(ctx)
	return nil
}

func (s *adminService) SetExamDeadline(ctx context.Context, examID string, deadline *time.Time) error {
	if err := s.examRepo.SetDeadline(ctx, examID, deadline); err != nil {
		return err
	}
	s.invalidateAllReports(ctx)
	return nil
}

// DeleteExam removes the exam together with its scores and submission history
// in one transaction.
func (s *adminService) DeleteExam(ctx context.Context, examID string) error {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.examRepo.Delete(txCtx, examID)
	})
	if err != nil {
		return err
	}

	logger.Get().Info("exam deleted with cascade", zap.String("exam_type_id", examID))
	s.invalidateAllReports(ctx)
	return nil
}

func (s *adminService) UpsertScore(ctx context.Context, req *dto.UpsertScoreRequest) error {
	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return domain.NewInternalError(err)
	}
	if user == nil {
		return domain.NewUserNotFoundError(req.UserID)
	}

	exam, err := s.examRepo.GetByID(ctx, req.ExamTypeID)
	if err != nil {
		return domain.NewInternalError(err)
	}
	if exam == nil {
		return domain.NewExamNotFoundError(req.ExamTypeID)
	}

	score := &domain.Score{
		UserID:     req.UserID,
		ExamTypeID: req.ExamTypeID,
		Value:      req.Value,
	}
	if err := score.Validate(); err != nil {
		return err
	}
	if err := s.scoreRepo.Upsert(ctx, score); err != nil {
		return domain.NewInternalError(err)
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateUserReport(ctx, req.UserID)
	}
	return nil
}

// GetScoreMatrix builds the full class grid: every student's recorded value on
// every exam, with the per-student average.
func (s *adminService) GetScoreMatrix(ctx context.Context) (*dto.ScoreMatrixResponse, error) {
	catalog, err := s.examRepo.ListAll(ctx)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	students, err := s.userRepo.ListStudents(ctx)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	allScores, err := s.scoreRepo.ListAll(ctx)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	byUser := make(map[string]map[string]float64)
	for _, score := range allScores {
		if byUser[score.UserID] == nil {
			byUser[score.UserID] = make(map[string]float64)
		}
		byUser[score.UserID][score.ExamTypeID] = score.Value
	}

	exams := make([]dto.ExamResponse, len(catalog))
	for i, exam := range catalog {
		exams[i] = *toExamResponse(exam)
	}

	now := time.Now()
	rows := make([]dto.ScoreMatrixRow, len(students))
	for i, student := range students {
		scores := byUser[student.ID]
		if scores == nil {
			scores = map[string]float64{}
		}
		report := domain.ComputeReport(student, catalog, scores, nil, now)
		rows[i] = dto.ScoreMatrixRow{
			UserID:     student.ID,
			UserName:   student.Name,
			SeatNumber: student.SeatNumber,
			Scores:     scores,
			Average:    report.Average,
		}
	}

	return &dto.ScoreMatrixResponse{Exams: exams, Rows: rows}, nil
}

func (s *adminService) ListRecentLogs(ctx context.Context, userID string, limit int) ([]*dto.SubmissionLogResponse, error) {
	logs, err := s.logRepo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	result := make([]*dto.SubmissionLogResponse, len(logs))
	for i, log := range logs {
		result[i] = &dto.SubmissionLogResponse{
			ID:              log.ID,
			UserID:          log.UserID,
			ExamTypeID:      log.ExamTypeID,
			AttemptCount:    log.AttemptCount,
			Status:          string(log.Status),
			LastAttemptTime: log.LastAttemptTime,
			AIResponse:      log.AIResponse,
		}
	}
	return result, nil
}

// ImportRoster upserts students by email and returns how many rows changed.
func (s *adminService) ImportRoster(ctx context.Context, req *dto.RosterImportRequest) (int, error) {
	changed := 0
	for _, entry := range req.Students {
		if entry.Email == "" {
			return changed, domain.NewMissingFieldError("email")
		}

		existing, err := s.userRepo.GetByEmail(ctx, entry.Email)
		if err != nil {
			return changed, domain.NewInternalError(err)
		}
		if existing == nil {
			user := domain.NewUser("", entry.Email, domain.RoleStudent)
			user.Name = entry.Name
			user.SeatNumber = entry.SeatNumber
			if err := s.userRepo.Create(ctx, user); err != nil {
				return changed, domain.NewInternalError(err)
			}
			changed++
			continue
		}

		if existing.Name != entry.Name || existing.SeatNumber != entry.SeatNumber {
			existing.Name = entry.Name
			existing.SeatNumber = entry.SeatNumber
			if err := s.userRepo.Update(ctx, existing); err != nil {
				return changed, domain.NewInternalError(err)
			}
			changed++
		}
	}
	return changed, nil
}

// ExportBundle snapshots the whole gradebook keyed by exam name and student
// email so the bundle can be re-imported into a fresh database.
func (s *adminService) ExportBundle(ctx context.Context) (*dto.ExportBundle, error) {
	catalog, err := s.examRepo.ListAll(ctx)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	students, err := s.userRepo.ListStudents(ctx)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	allScores, err := s.scoreRepo.ListAll(ctx)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	examsByID := make(map[string]*domain.ExamType, len(catalog))
	exams := make([]dto.ExamResponse, len(catalog))
	for i, exam := range catalog {
		examsByID[exam.ID] = exam
		exams[i] = *toExamResponse(exam)
	}

	usersByID := make(map[string]*domain.User, len(students))
	roster := make([]dto.RosterEntry, len(students))
	for i, student := range students {
		usersByID[student.ID] = student
		roster[i] = dto.RosterEntry{
			Email:      student.Email,
			Name:       student.Name,
			SeatNumber: student.SeatNumber,
		}
	}

	records := make([]dto.ExportScoreRecord, 0, len(allScores))
	for _, score := range allScores {
		exam := examsByID[score.ExamTypeID]
		user := usersByID[score.UserID]
		if exam == nil || user == nil {
			// Scores of deleted users stay out of the snapshot.
			continue
		}
		records = append(records, dto.ExportScoreRecord{
			StudentEmail: user.Email,
			ExamName:     exam.Name,
			Value:        score.Value,
		})
	}

	return &dto.ExportBundle{
		ExportedAt: time.Now(),
		Exams:      exams,
		Students:   roster,
		Scores:     records,
	}, nil
}

// ImportBundle merges a snapshot into the current database: missing exams and
// students are created, scores are upserted by (email, exam name).
func (s *adminService) ImportBundle(ctx context.Context, bundle *dto.ExportBundle) error {
	for _, exam := range bundle.Exams {
		existing, err := s.examRepo.GetByName(ctx, exam.Name)
		if err != nil {
			return domain.NewInternalError(err)
		}
		if existing == nil {
			created := domain.NewExamType(exam.Name, exam.IsMandatory)
			created.IsOpenForSubmission = exam.IsOpenForSubmission
			created.SubmissionDeadline = exam.SubmissionDeadline
			if err := s.examRepo.Create(ctx, created); err != nil {
				return domain.NewInternalError(err)
			}
		}
	}

	if _, err := s.ImportRoster(ctx, &dto.RosterImportRequest{Students: bundle.Students}); err != nil {
		return err
	}

	for _, record := range bundle.Scores {
		user, err := s.userRepo.GetByEmail(ctx, record.StudentEmail)
		if err != nil {
			return domain.NewInternalError(err)
		}
		exam, err := s.examRepo.GetByName(ctx, record.ExamName)
		if err != nil {
			return domain.NewInternalError(err)
		}
		if user == nil || exam == nil {
			return domain.NewInvalidInputError("score record references an unknown student or exam")
		}
		score := &domain.Score{UserID: user.ID, ExamTypeID: exam.ID, Value: record.Value}
		if err := s.scoreRepo.Upsert(ctx, score); err != nil {
			return domain.NewInternalError(err)
		}
	}

	s.invalidateAllReports(ctx)
	return nil
}

// invalidateAllReports drops every student's cached report after a catalog
// mutation. The roster is class sized, so per-student deletes are fine.
func (s *adminService) invalidateAllReports(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	students, err := s.userRepo.ListStudents(ctx)
	if err != nil {
		logger.Get().Warn("report invalidation sweep failed", zap.Error(err))
		return
	}
	for _, student := range students {
		s.invalidator.InvalidateUserReport(ctx, student.ID)
	}
}

func toExamResponse(exam *domain.ExamType) *dto.ExamResponse {
	return &dto.ExamResponse{
		ID:                  exam.ID,
		Name:                exam.Name,
		IsMandatory:         exam.IsMandatory,
		IsOpenForSubmission: exam.IsOpenForSubmission,
		SubmissionDeadline:  exam.SubmissionDeadline,
	}
}

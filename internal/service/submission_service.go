package service

import (
	"context"
	"time"

	"gradebook/internal/domain"
	"gradebook/internal/dto"
	"gradebook/internal/logger"

	"go.uber.org/zap"
)

// SubmissionService runs the proof-of-score workflow: a student uploads a
// photo of a graded paper, an AI classifier checks it against the claimed
// score, and an approved claim is recorded as the pair's score.
type SubmissionService interface {
	// Submit adjudicates one evidence upload. Refusals (closed exam, spent
	// attempts, already approved) come back as outcomes, not errors; errors
	// are reserved for failed challenges, unavailable verification and
	// infrastructure faults.
	Submit(ctx context.Context, userID string, req *dto.SubmitScoreRequest, evidence domain.Evidence, clientIP string) (*dto.SubmissionResultResponse, error)

	// GetPairState returns the derived submission state for one exam.
	GetPairState(ctx context.Context, userID, examTypeID string) (*dto.SubmissionStateResponse, error)

	// ListUserLogs returns the student's recent attempt rows, newest first.
	ListUserLogs(ctx context.Context, userID string, limit int) ([]*dto.SubmissionLogResponse, error)

	// Gate builds a domain.SubmissionGate bound to ctx for report assembly.
	Gate(ctx context.Context) domain.SubmissionGate
}

type submissionService struct {
	examRepo          domain.ExamTypeRepository
	scoreRepo         domain.ScoreRepository
	logRepo           domain.SubmissionLogRepository
	txManager         domain.TransactionManager
	evidenceVerifier  domain.EvidenceVerifier
	challengeVerifier domain.ChallengeVerifier
	invalidator       ReportInvalidator
}

// ReportInvalidator drops cached reports after a score mutation. The report
// service implements it; a nil invalidator disables cache coupling in tests.
type ReportInvalidator interface {
	InvalidateUserReport(ctx context.Context, userID string)
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	examRepo domain.ExamTypeRepository,
	scoreRepo domain.ScoreRepository,
	logRepo domain.SubmissionLogRepository,
	txManager domain.TransactionManager,
	evidenceVerifier domain.EvidenceVerifier,
	challengeVerifier domain.ChallengeVerifier,
	invalidator ReportInvalidator,
) SubmissionService {
	return &submissionService{
		examRepo:          examRepo,
		scoreRepo:         scoreRepo,
		logRepo:           logRepo,
		txManager:         txManager,
		evidenceVerifier:  evidenceVerifier,
		challengeVerifier: challengeVerifier,
		invalidator:       invalidator,
	}
}

func (s *submissionService) Submit(ctx context.Context, userID string, req *dto.SubmitScoreRequest, evidence domain.Evidence, clientIP string) (*dto.SubmissionResultResponse, error) {
	l := logger.Get()

	exam, err := s.examRepo.GetByID(ctx, req.ExamTypeID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if exam == nil {
		return nil, domain.NewExamNotFoundError(req.ExamTypeID)
	}

	now := time.Now()
	if !exam.EffectivelyOpen(now) {
		return refusal(domain.OutcomeClosed, 0), nil
	}

	// Precondition pass without the lock. The transaction below re-derives
	// the state under a row lock before appending, so a stale read here can
	// only turn into an extra refusal, never an extra attempt.
	logs, err := s.logRepo.ListByPair(ctx, userID, req.ExamTypeID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	state := domain.DerivePairState(logs)
	if state.Exhausted() {
		return refusal(domain.OutcomeAttemptsExhausted, state.AttemptCount), nil
	}
	if state.Status == domain.StatusApproved {
		return refusal(domain.OutcomeAlreadyApproved, state.AttemptCount), nil
	}

	// A failed challenge consumes no attempt and leaves no log row.
	passed, err := s.challengeVerifier.VerifyChallenge(ctx, req.ChallengeToken, clientIP)
	if err != nil {
		l.Error("challenge verification unreachable", zap.Error(err))
		return nil, domain.NewVerificationUnavailableError(err)
	}
	if !passed {
		return nil, domain.NewChallengeFailedError()
	}

	// Classify outside the transaction so the row lock is not held for the
	// duration of the model call. Verifier failures surface before any row
	// is written: an unavailable classifier must not burn an attempt.
	// The claimed exam name comes from the catalog, never from the client.
	evidence.ExamName = exam.Name
	evidence.ClaimedScore = req.ClaimedScore
	verdict, err := s.evidenceVerifier.VerifyEvidence(ctx, evidence)
	if err != nil {
		return nil, err
	}

	var result *dto.SubmissionResultResponse
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.logRepo.LockPair(txCtx, userID, req.ExamTypeID); err != nil {
			return domain.NewInternalError(err)
		}

		lockedLogs, err := s.logRepo.ListByPair(txCtx, userID, req.ExamTypeID)
		if err != nil {
			return domain.NewInternalError(err)
		}
		lockedState := domain.DerivePairState(lockedLogs)
		if lockedState.Exhausted() {
			result = refusal(domain.OutcomeAttemptsExhausted, lockedState.AttemptCount)
			return nil
		}
		if lockedState.Status == domain.StatusApproved {
			result = refusal(domain.OutcomeAlreadyApproved, lockedState.AttemptCount)
			return nil
		}

		attempt := lockedState.AttemptCount + 1
		status := domain.StatusRejected
		outcome := domain.OutcomeRejected
		if verdict.Approves() {
			status = domain.StatusApproved
			outcome = domain.OutcomeApproved
		}

		log := &domain.SubmissionLog{
			UserID:          userID,
			ExamTypeID:      req.ExamTypeID,
			AttemptCount:    attempt,
			Status:          status,
			LastAttemptTime: now,
			AIResponse:      verdict.Raw,
		}
		if err := log.Validate(); err != nil {
			return err
		}
		if err := s.logRepo.Append(txCtx, log); err != nil {
			return domain.NewInternalError(err)
		}

		if status == domain.StatusApproved {
			score := &domain.Score{
				UserID:     userID,
				ExamTypeID: req.ExamTypeID,
				Value:      req.ClaimedScore,
			}
			if err := s.scoreRepo.Upsert(txCtx, score); err != nil {
				return domain.NewInternalError(err)
			}
		}

		result = &dto.SubmissionResultResponse{
			Outcome:           string(outcome),
			AttemptCount:      attempt,
			RemainingAttempts: remaining(attempt),
			Confidence:        verdict.Confidence,
			Reason:            verdict.Reason,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Outcome == string(domain.OutcomeApproved) && s.invalidator != nil {
		s.invalidator.InvalidateUserReport(ctx, userID)
	}

	l.Info("submission adjudicated",
		zap.String("user_id", userID),
		zap.String("exam_type_id", req.ExamTypeID),
		zap.String("outcome", result.Outcome),
		zap.Int("attempt_count", result.AttemptCount))
	return result, nil
}

func (s *submissionService) GetPairState(ctx context.Context, userID, examTypeID string) (*dto.SubmissionStateResponse, error) {
	exam, err := s.examRepo.GetByID(ctx, examTypeID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if exam == nil {
		return nil, domain.NewExamNotFoundError(examTypeID)
	}

	logs, err := s.logRepo.ListByPair(ctx, userID, examTypeID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	state := domain.DerivePairState(logs)

	canSubmit, err := s.pairCanSubmit(ctx, userID, exam, state, time.Now())
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	return &dto.SubmissionStateResponse{
		ExamTypeID:        examTypeID,
		Status:            string(state.Status),
		AttemptCount:      state.AttemptCount,
		RemainingAttempts: remaining(state.AttemptCount),
		CanSubmit:         canSubmit,
	}, nil
}

func (s *submissionService) ListUserLogs(ctx context.Context, userID string, limit int) ([]*dto.SubmissionLogResponse, error) {
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

// ctxGate adapts the service to domain.SubmissionGate for one request context.
type ctxGate struct {
	ctx context.Context
	svc *submissionService
}

func (g ctxGate) CanSubmit(userID, examID string) bool {
	logs, err := g.svc.logRepo.ListByPair(g.ctx, userID, examID)
	if err != nil {
		logger.Get().Warn("can_submit lookup failed", zap.Error(err), zap.String("exam_type_id", examID))
		return false
	}
	state := domain.DerivePairState(logs)
	return !state.Exhausted() && state.Status != domain.StatusApproved
}

func (s *submissionService) Gate(ctx context.Context) domain.SubmissionGate {
	return ctxGate{ctx: ctx, svc: s}
}

// pairCanSubmit mirrors the report affordance: open exam, attempts left, not
// yet approved, and no score already on record. A score can exist without an
// approved attempt when the teacher entered it directly.
func (s *submissionService) pairCanSubmit(ctx context.Context, userID string, exam *domain.ExamType, state domain.PairState, now time.Time) (bool, error) {
	if !exam.EffectivelyOpen(now) || state.Exhausted() || state.Status == domain.StatusApproved {
		return false, nil
	}
	score, err := s.scoreRepo.GetByPair(ctx, userID, exam.ID)
	if err != nil {
		return false, err
	}
	return score == nil, nil
}

func refusal(outcome domain.SubmitOutcome, attempts int) *dto.SubmissionResultResponse {
	return &dto.SubmissionResultResponse{
		Outcome:           string(outcome),
		AttemptCount:      attempts,
		RemainingAttempts: remaining(attempts),
	}
}

func remaining(attempts int) int {
	r := domain.MaxSubmissionAttempts - attempts
	if r < 0 {
		return 0
	}
	return r
}
